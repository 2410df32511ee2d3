package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/six-app/six-backend/internal/logger"
)

// BucketService wraps the GCS bucket holding ingested files and
// generated avatars.
type BucketService interface {
	Upload(ctx context.Context, objectKey string, contentType string, r io.Reader) (string, error)
	Download(ctx context.Context, objectKey string) ([]byte, error)
	Delete(ctx context.Context, objectKey string) error
	PublicURL(objectKey string) string
}

type bucketService struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewBucketService(ctx context.Context, log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")

	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET_NAME environment variable")
	}

	var client *storage.Client
	var err error
	credsPath := os.Getenv("GCS_CREDENTIALS_FILE")
	if credsPath == "" {
		// Application default credentials.
		client, err = storage.NewClient(ctx)
	} else {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
	}
	if err != nil {
		serviceLog.Error("Failed to create GCS client", "error", err)
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &bucketService{
		log:    serviceLog,
		client: client,
		bucket: bucket,
	}, nil
}

func (bs *bucketService) Upload(ctx context.Context, objectKey string, contentType string, r io.Reader) (string, error) {
	wc := bs.client.Bucket(bs.bucket).Object(objectKey).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // objects are small, skip chunked resumable uploads
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		bs.log.Warn("Failed to write object to bucket", "error", err, "objectKey", objectKey)
		return "", fmt.Errorf("failed to write object %q: %w", objectKey, err)
	}
	if err := wc.Close(); err != nil {
		bs.log.Warn("Failed to finalize object upload", "error", err, "objectKey", objectKey)
		return "", fmt.Errorf("failed to finalize object %q: %w", objectKey, err)
	}
	url := bs.PublicURL(objectKey)
	bs.log.Info("Object uploaded", "objectKey", objectKey, "url", url)
	return url, nil
}

func (bs *bucketService) Download(ctx context.Context, objectKey string) ([]byte, error) {
	rc, err := bs.client.Bucket(bs.bucket).Object(objectKey).NewReader(ctx)
	if err != nil {
		bs.log.Warn("Failed to open object for reading", "error", err, "objectKey", objectKey)
		return nil, fmt.Errorf("failed to open object %q: %w", objectKey, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		bs.log.Warn("Failed to read object body", "error", err, "objectKey", objectKey)
		return nil, fmt.Errorf("failed to read object %q: %w", objectKey, err)
	}
	return data, nil
}

func (bs *bucketService) Delete(ctx context.Context, objectKey string) error {
	if err := bs.client.Bucket(bs.bucket).Object(objectKey).Delete(ctx); err != nil {
		bs.log.Warn("Failed to delete object from bucket", "error", err, "objectKey", objectKey)
		return fmt.Errorf("failed to delete object %q: %w", objectKey, err)
	}
	return nil
}

func (bs *bucketService) PublicURL(objectKey string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucket, objectKey)
}
