package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
)

// MinIOStore keeps blobs as objects in a single bucket keyed by a random id.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects and ensures the bucket exists.
func NewMinIOStore(cfg *config.MinIOConfig) (*MinIOStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStore{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStore) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	key := uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"filename": name},
	})
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	return key, nil
}

func (s *MinIOStore) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(err)
	}
	// GetObject is lazy; stat surfaces a missing key now rather than on first read
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, s.mapErr(err)
	}
	return obj, nil
}

func (s *MinIOStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{}); err != nil {
		return s.mapErr(err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return s.mapErr(err)
	}
	return nil
}

func (s *MinIOStore) mapErr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("minio: %w", err)
}
