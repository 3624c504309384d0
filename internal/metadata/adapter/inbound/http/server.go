package http_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"

	lambdaHandler "github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/inbound/lambda"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/config"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server is the local stand-in for the HTTP API and the bucket trigger. It
// drives the same lambda handlers the deployed functions run.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	endpoint  *lambdaHandler.EndpointHandler
	generator *lambdaHandler.GeneratorHandler
	uploader  port.ObjectUploader
}

func NewServer(
	cfg *config.Config,
	endpoint *lambdaHandler.EndpointHandler,
	generator *lambdaHandler.GeneratorHandler,
	uploader port.ObjectUploader,
) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.BodyLimit,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	s := &Server{
		app:       app,
		cfg:       cfg,
		endpoint:  endpoint,
		generator: generator,
		uploader:  uploader,
	}

	// Routes
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Get(s.cfg.Server.RoutePrefix+"/:id", s.handleLookup)
	s.app.Post("/images", s.handleUpload)
	s.app.Post("/events/s3", s.handleS3Event)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// handleLookup decodes the id the way API Gateway does before invoking the
// lambda, so escaped keys resolve to the id ingestion stored.
func (s *Server) handleLookup(c *fiber.Ctx) error {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid id: %v", err))
	}

	resp, err := s.endpoint.Handle(c.UserContext(), events.APIGatewayV2HTTPRequest{
		RawPath:        c.Path(),
		PathParameters: map[string]string{lambdaHandler.IDParam: id},
	})
	if err != nil {
		sdklogger.Errorw("Lookup failed", "id", id, "error", err.Error())
		return s.sendJSONError(c, fiber.StatusInternalServerError, fmt.Sprintf("Lookup failed: %v", err))
	}

	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	return c.Status(resp.StatusCode).SendString(resp.Body)
}

// handleUpload stores the image like a client PUT into the bucket would, then
// delivers the object-created notification synchronously.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'file' part")
	}

	key := c.FormValue("key")
	if key == "" {
		key = path.Base(fileHeader.Filename)
	}

	if err := s.putFile(c.UserContext(), key, fileHeader); err != nil {
		sdklogger.Errorw("Upload failed", "key", key, "error", err.Error())
		return s.sendJSONError(c, fiber.StatusInternalServerError, fmt.Sprintf("Upload failed: %v", err))
	}

	event := events.S3Event{Records: []events.S3EventRecord{newCreatedRecord(s.cfg.ObjectStore.Bucket, key)}}
	if err := s.generator.Handle(c.UserContext(), event); err != nil {
		return s.sendJSONError(c, fiber.StatusInternalServerError, fmt.Sprintf("Ingestion failed: %v", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key": key,
		"id":  domain.RecordID(key),
	})
}

func (s *Server) putFile(ctx context.Context, key string, fileHeader *multipart.FileHeader) error {
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return s.uploader.PutObject(ctx, s.cfg.ObjectStore.Bucket, key, file, fileHeader.Size)
}

// handleS3Event accepts a raw notification document, as a lambda invoke would.
func (s *Server) handleS3Event(c *fiber.Ctx) error {
	var event events.S3Event
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid S3 event: %v", err))
	}
	if len(event.Records) == 0 {
		return s.sendJSONError(c, fiber.StatusBadRequest, "S3 event has no records")
	}

	if err := s.generator.Handle(c.UserContext(), event); err != nil {
		return s.sendJSONError(c, fiber.StatusInternalServerError, fmt.Sprintf("Ingestion failed: %v", err))
	}

	return c.JSON(fiber.Map{
		"processed": len(event.Records),
	})
}

func newCreatedRecord(bucket, key string) events.S3EventRecord {
	return events.S3EventRecord{
		EventSource: "aws:s3",
		EventName:   "ObjectCreated:Put",
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucket},
			Object: events.S3Object{Key: key, URLDecodedKey: key},
		},
	}
}
