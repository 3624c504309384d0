package service

import (
	"context"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/anthanhphan/gosdk/logger"
)

// LookupServiceImpl serves stored metadata records.
type LookupServiceImpl struct {
	records port.RecordStore
}

// Ensure LookupServiceImpl implements port.LookupService.
var _ port.LookupService = (*LookupServiceImpl)(nil)

func NewLookupService(records port.RecordStore) *LookupServiceImpl {
	return &LookupServiceImpl{records: records}
}

// GetRecord reads id without normalization. A missing record is not an error.
func (s *LookupServiceImpl) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	logger.Infow("Looking up image metadata", "id", id)

	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Infow("Image metadata lookup finished", "id", id, "found", record != nil)
	return record, nil
}
