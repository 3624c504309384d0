package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	httpHandler "github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/inbound/http"
	lambdaHandler "github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/inbound/lambda"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/outbound/dynamodb"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/outbound/miniostore"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/outbound/redisstore"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/outbound/rekognition"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/outbound/s3store"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/config"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/service"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsrekognition "github.com/aws/aws-sdk-go-v2/service/rekognition"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
)

// App wires adapters for one binary. Clients are built once per process and
// reused by every invocation.
type App struct {
	cfg     *config.Config
	aws     *aws.Config
	redis   *redis.Client
	objects objectBackend
	server  *httpHandler.Server
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	return &App{cfg: cfg}, nil
}

// GeneratorHandler wires the ingestion lambda.
func (a *App) GeneratorHandler(ctx context.Context) (*lambdaHandler.GeneratorHandler, error) {
	svc, err := a.ingestionService(ctx)
	if err != nil {
		return nil, err
	}
	return lambdaHandler.NewGeneratorHandler(svc), nil
}

// EndpointHandler wires the lookup lambda.
func (a *App) EndpointHandler(ctx context.Context) (*lambdaHandler.EndpointHandler, error) {
	records, err := a.recordStore(ctx)
	if err != nil {
		return nil, err
	}
	return lambdaHandler.NewEndpointHandler(service.NewLookupService(records)), nil
}

// RunGateway serves the local gateway until SIGINT/SIGTERM.
func (a *App) RunGateway(ctx context.Context) error {
	generator, err := a.GeneratorHandler(ctx)
	if err != nil {
		return err
	}
	endpoint, err := a.EndpointHandler(ctx)
	if err != nil {
		return err
	}
	uploader, err := a.objectUploader(ctx)
	if err != nil {
		return err
	}
	a.server = httpHandler.NewServer(a.cfg, endpoint, generator, uploader)

	logger.Infow("Metadata gateway starting", "addr", a.cfg.Server.Addr, "route_prefix", a.cfg.Server.RoutePrefix)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("Gateway exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down metadata gateway")
	if err := a.server.Stop(context.Background()); err != nil {
		logger.Errorw("Gateway shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warnw("Redis close error", "error", err.Error())
		}
	}

	return runErr
}

func (a *App) ingestionService(ctx context.Context) (*service.IngestionServiceImpl, error) {
	objects, err := a.objectStore(ctx)
	if err != nil {
		return nil, err
	}
	records, err := a.recordStore(ctx)
	if err != nil {
		return nil, err
	}
	awsCfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}

	recognizer := rekognition.NewRecognizer(
		awsrekognition.NewFromConfig(*awsCfg, a.withRekognitionEndpoint),
		rekognition.Mode(a.cfg.Recognition.Mode),
		rekognition.Options{
			MaxLabels:     a.cfg.Recognition.MaxLabels,
			MinConfidence: a.cfg.Recognition.MinConfidence,
		},
	)
	return service.NewIngestionService(objects, recognizer, records), nil
}

func (a *App) recordStore(ctx context.Context) (port.RecordStore, error) {
	if a.cfg.Table.Driver == config.DriverRedis {
		return redisstore.NewStore(a.redisClient(), a.cfg.Redis.KeyPrefix, a.cfg.Table.Name), nil
	}

	awsCfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := awsdynamodb.NewFromConfig(*awsCfg, func(o *awsdynamodb.Options) {
		if a.cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.AWS.Endpoint)
		}
	})
	return dynamodb.NewTable(client, a.cfg.Table.Name), nil
}

// objectBackend implements both object ports for either driver.
type objectBackend interface {
	port.ObjectStore
	port.ObjectUploader
}

func (a *App) objectBackend(ctx context.Context) (objectBackend, error) {
	if a.objects != nil {
		return a.objects, nil
	}

	if a.cfg.ObjectStore.Driver == config.DriverMinio {
		m := a.cfg.ObjectStore.Minio
		client, err := miniostore.NewClient(m.Endpoint, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			return nil, err
		}
		a.objects = miniostore.NewStore(client)
		return a.objects, nil
	}

	awsCfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := awss3.NewFromConfig(*awsCfg, func(o *awss3.Options) {
		if a.cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.AWS.Endpoint)
			o.UsePathStyle = true
		}
	})
	a.objects = s3store.NewStore(client)
	return a.objects, nil
}

func (a *App) objectStore(ctx context.Context) (port.ObjectStore, error) {
	return a.objectBackend(ctx)
}

// objectUploader also makes sure the local upload bucket exists on MinIO.
func (a *App) objectUploader(ctx context.Context) (port.ObjectUploader, error) {
	backend, err := a.objectBackend(ctx)
	if err != nil {
		return nil, err
	}
	if store, ok := backend.(*miniostore.Store); ok && a.cfg.ObjectStore.Bucket != "" {
		if err := store.EnsureBucket(ctx, a.cfg.ObjectStore.Bucket); err != nil {
			logger.Warnw("Upload bucket unavailable", "bucket", a.cfg.ObjectStore.Bucket, "error", err.Error())
		}
	}
	return backend, nil
}

func (a *App) awsConfig(ctx context.Context) (*aws.Config, error) {
	if a.aws != nil {
		return a.aws, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if a.cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(a.cfg.AWS.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	a.aws = &awsCfg
	return a.aws, nil
}

func (a *App) redisClient() *redis.Client {
	if a.redis == nil {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
	}
	return a.redis
}

func (a *App) withRekognitionEndpoint(o *awsrekognition.Options) {
	if a.cfg.AWS.Endpoint != "" {
		o.BaseEndpoint = aws.String(a.cfg.AWS.Endpoint)
	}
}
