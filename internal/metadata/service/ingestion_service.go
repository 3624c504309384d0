package service

import (
	"context"
	"fmt"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/anthanhphan/gosdk/logger"
)

// IngestionServiceImpl downloads uploaded images, recognizes them and stores
// the resulting metadata records.
type IngestionServiceImpl struct {
	objects    port.ObjectStore
	recognizer port.Recognizer
	records    port.RecordStore
}

// Ensure IngestionServiceImpl implements port.IngestionService.
var _ port.IngestionService = (*IngestionServiceImpl)(nil)

// NewIngestionService builds the ingestion use case from its collaborators.
func NewIngestionService(objects port.ObjectStore, recognizer port.Recognizer, records port.RecordStore) *IngestionServiceImpl {
	return &IngestionServiceImpl{
		objects:    objects,
		recognizer: recognizer,
		records:    records,
	}
}

// ProcessBatch processes each object in order and stops at the first failure.
func (s *IngestionServiceImpl) ProcessBatch(ctx context.Context, objects []domain.ObjectRef) error {
	for i, obj := range objects {
		logger.Infow("Processing image", "bucket", obj.Bucket, "key", obj.Key, "position", i+1, "batch_size", len(objects))

		record, err := s.processObject(ctx, obj)
		if err != nil {
			logger.Errorw("Failed to save image metadata", "bucket", obj.Bucket, "key", obj.Key, "error", err.Error())
			return err
		}

		logger.Infow("Saved image metadata", "key", obj.Key, "record_id", record.ID, "entities", len(record.Metadata))
	}
	return nil
}

// processObject runs fetch, recognize and store for a single object.
func (s *IngestionServiceImpl) processObject(ctx context.Context, obj domain.ObjectRef) (domain.Record, error) {
	logger.Debugw("Downloading image", "bucket", obj.Bucket, "key", obj.Key)
	image, err := s.objects.GetObject(ctx, obj.Bucket, obj.Key)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: get %s/%s: %w", port.ErrObjectIO, obj.Bucket, obj.Key, err)
	}

	logger.Debugw("Recognizing image", "key", obj.Key, "size_bytes", len(image))
	entities, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: recognize %s: %w", port.ErrRecognition, obj.Key, err)
	}
	if entities == nil {
		entities = []domain.Entity{}
	}

	record := domain.Record{
		ID:       domain.RecordID(obj.Key),
		Metadata: entities,
	}

	logger.Debugw("Storing image metadata", "key", obj.Key, "record_id", record.ID)
	if err := s.records.Put(ctx, record); err != nil {
		return domain.Record{}, fmt.Errorf("%w: put %s: %w", port.ErrRecordStore, record.ID, err)
	}
	return record, nil
}
