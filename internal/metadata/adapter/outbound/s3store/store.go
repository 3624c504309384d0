package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Client is the subset of the S3 API the transfer managers need.
type Client interface {
	manager.DownloadAPIClient
	manager.UploadAPIClient
}

// Store reads and writes objects in S3 buckets.
type Store struct {
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

var (
	_ port.ObjectStore    = (*Store)(nil)
	_ port.ObjectUploader = (*Store)(nil)
)

func NewStore(client Client) *Store {
	return &Store{
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
	}
}

// GetObject downloads bucket/key in full.
func (s *Store) GetObject(ctx context.Context, bucket string, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s: %w", port.ErrObjectNotFound, bucket, key, err)
		}
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// PutObject uploads body to bucket/key. size is advisory; the uploader
// switches to multipart transparently.
func (s *Store) PutObject(ctx context.Context, bucket string, key string, body io.Reader, size int64) error {
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}); err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}
