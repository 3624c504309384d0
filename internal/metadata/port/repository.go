package port

import (
	"context"
	"errors"
	"io"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
)

//go:generate mockgen -destination=../service/mocks/repository_mock.go -package=mocks -source=repository.go

var (
	// ErrObjectNotFound is returned by object stores when the key does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectIO marks failures reading an uploaded object (missing or unreachable store).
	ErrObjectIO = errors.New("object store i/o failed")

	// ErrRecognition marks failures of the recognition service (bad input, throttling, unavailable).
	ErrRecognition = errors.New("recognition service failed")

	// ErrRecordStore marks failures reading or writing metadata records.
	ErrRecordStore = errors.New("record store failed")
)

// ObjectStore reads uploaded objects.
type ObjectStore interface {
	// GetObject returns the full body of bucket/key.
	GetObject(ctx context.Context, bucket string, key string) ([]byte, error)
}

// ObjectUploader writes objects. Only the local gateway uploads; the deployed
// functions never write to the bucket.
type ObjectUploader interface {
	PutObject(ctx context.Context, bucket string, key string, body io.Reader, size int64) error
}

// Recognizer submits image bytes to the recognition service.
type Recognizer interface {
	// Recognize returns the recognized entities in service order, possibly empty.
	Recognize(ctx context.Context, image []byte) ([]domain.Entity, error)
}

// RecordStore persists metadata records keyed by id.
type RecordStore interface {
	// Get returns the record for id, or nil without error when none exists.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Put writes the record, replacing any record with the same id.
	Put(ctx context.Context, record domain.Record) error
}
