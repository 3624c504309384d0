package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/redis/go-redis/v9"
)

// Store keeps metadata records as JSON strings under prefix+table+":"+id.
// It backs the local gateway; deployed functions use DynamoDB.
type Store struct {
	client redis.Cmdable
	prefix string
}

// Ensure Store implements port.RecordStore.
var _ port.RecordStore = (*Store)(nil)

func NewStore(client redis.Cmdable, keyPrefix, tableName string) *Store {
	return &Store{client: client, prefix: keyPrefix + tableName + ":"}
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Get returns (nil, nil) when the key does not exist.
func (s *Store) Get(ctx context.Context, id string) (*domain.Record, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key(id), err)
	}

	var record domain.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &record, nil
}

// Put overwrites the record without expiry.
func (s *Store) Put(ctx context.Context, record domain.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", record.ID, err)
	}
	if err := s.client.Set(ctx, s.key(record.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(record.ID), err)
	}
	return nil
}
