package miniostore

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStore_Integration(t *testing.T) {
	client, err := NewClient("localhost:9000", "minioadmin", "minioadmin", false)
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	store := NewStore(client)
	bucket := "test-image-metadata"
	require.NoError(t, store.EnsureBucket(ctx, bucket))

	key := fmt.Sprintf("photos/party-%d.jpg", time.Now().UnixNano())
	payload := []byte("image bytes")
	require.NoError(t, store.PutObject(ctx, bucket, key, bytes.NewReader(payload), int64(len(payload))))

	got, err := store.GetObject(ctx, bucket, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = store.GetObject(ctx, bucket, key+".missing")
	assert.ErrorIs(t, err, port.ErrObjectNotFound)
}
