package port

import (
	"context"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
)

//go:generate mockgen -destination=../service/mocks/service_mock.go -package=mocks -source=service.go

// IngestionService turns uploaded images into metadata records.
//
// It performs no retries. A returned error means the batch was abandoned at
// the failing entry; entries before it stay written and entries after it were
// never attempted. Redelivery is the responsibility of the trigger.
type IngestionService interface {
	// ProcessBatch handles the notification entries in order, one at a time.
	ProcessBatch(ctx context.Context, objects []domain.ObjectRef) error
}

// LookupService reads metadata records.
type LookupService interface {
	// GetRecord returns the record stored under id verbatim, or nil when
	// none exists. Store failures are returned unchanged.
	GetRecord(ctx context.Context, id string) (*domain.Record, error)
}
