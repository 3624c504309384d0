package miniostore

import (
	"context"
	"fmt"
	"io"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store reads and writes objects on MinIO or any S3-compatible server.
type Store struct {
	client *minio.Client
}

var (
	_ port.ObjectStore    = (*Store)(nil)
	_ port.ObjectUploader = (*Store)(nil)
)

func NewStore(client *minio.Client) *Store {
	return &Store{client: client}
}

// NewClient connects to endpoint with static credentials.
func NewClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", endpoint, err)
	}
	return client, nil
}

// GetObject reads bucket/key in full.
func (s *Store) GetObject(ctx context.Context, bucket string, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapErr(bucket, key, err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; errors such as NoSuchKey surface on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.wrapErr(bucket, key, err)
	}
	return data, nil
}

// PutObject uploads body; size -1 streams with unknown length.
func (s *Store) PutObject(ctx context.Context, bucket string, key string, body io.Reader, size int64) error {
	if _, err := s.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("minio put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// EnsureBucket creates bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("minio bucket exists %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio make bucket %s: %w", bucket, err)
	}
	return nil
}

func (s *Store) wrapErr(bucket, key string, err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return fmt.Errorf("%w: %s/%s: %w", port.ErrObjectNotFound, bucket, key, err)
	}
	return fmt.Errorf("minio get %s/%s: %w", bucket, key, err)
}
