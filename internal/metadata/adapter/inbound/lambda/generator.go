package lambda_handler

import (
	"context"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/aws/aws-lambda-go/events"
)

// GeneratorHandler receives object-created notifications from the image bucket.
//
// Any returned error fails the invocation as a whole. The notification source
// decides whether to redeliver or dead-letter the event.
type GeneratorHandler struct {
	service port.IngestionService
}

func NewGeneratorHandler(service port.IngestionService) *GeneratorHandler {
	return &GeneratorHandler{service: service}
}

// Handle is the lambda entry point for S3 notifications.
func (h *GeneratorHandler) Handle(ctx context.Context, event events.S3Event) error {
	logger.Infow("Received S3 notification", "records", len(event.Records))
	return h.service.ProcessBatch(ctx, ObjectRefs(event))
}

// ObjectRefs extracts bucket and decoded key for every notification record.
func ObjectRefs(event events.S3Event) []domain.ObjectRef {
	refs := make([]domain.ObjectRef, 0, len(event.Records))
	for _, rec := range event.Records {
		key := rec.S3.Object.URLDecodedKey
		if key == "" {
			key = rec.S3.Object.Key
		}
		refs = append(refs, domain.ObjectRef{
			Bucket: rec.S3.Bucket.Name,
			Key:    key,
		})
	}
	return refs
}
