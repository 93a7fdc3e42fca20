// Package storage holds the opaque blob stores used for uploads, template
// assets and generated artifacts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
)

// ErrNotFound is returned when a blob id does not resolve.
var ErrNotFound = errors.New("blob not found")

// BlobStore stores immutable byte payloads behind opaque ids.
// Ids returned by Upload are unique and never reused.
type BlobStore interface {
	Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

// ReadAll downloads a blob fully into memory.
func ReadAll(ctx context.Context, s BlobStore, id string) ([]byte, error) {
	rc, err := s.Download(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// New builds the store selected by cfg.Storage.Backend. db is only used by the gridfs backend.
func New(cfg *config.Config, db *mongo.Database) (BlobStore, error) {
	switch cfg.Storage.Backend {
	case "gridfs":
		if db == nil {
			return nil, fmt.Errorf("gridfs backend needs a mongo database")
		}
		return NewGridFSStore(db, cfg.Storage.GridFSBucket, cfg.Storage.Timeout)
	case "minio":
		return NewMinIOStore(&cfg.MinIO)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
