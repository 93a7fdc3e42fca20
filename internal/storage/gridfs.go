package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps blobs in a MongoDB GridFS bucket. Ids are ObjectID hex strings.
type GridFSStore struct {
	bucket  *gridfs.Bucket
	timeout time.Duration
}

func NewGridFSStore(db *mongo.Database, name string, timeout time.Duration) (*GridFSStore, error) {
	if name == "" {
		name = options.DefaultName
	}
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GridFSStore{bucket: b, timeout: timeout}, nil
}

func (s *GridFSStore) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(s.timeout)
}

func (s *GridFSStore) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	up, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return "", fmt.Errorf("gridfs open upload: %w", err)
	}
	if err := up.SetWriteDeadline(s.deadline(ctx)); err != nil {
		_ = up.Abort()
		return "", err
	}
	if _, err := io.Copy(up, r); err != nil {
		_ = up.Abort()
		return "", fmt.Errorf("gridfs write: %w", err)
	}
	if err := up.Close(); err != nil {
		return "", fmt.Errorf("gridfs close: %w", err)
	}
	oid, ok := up.FileID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("gridfs: unexpected file id type %T", up.FileID)
	}
	return oid.Hex(), nil
}

func (s *GridFSStore) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	ds, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gridfs open download: %w", err)
	}
	if err := ds.SetReadDeadline(s.deadline(ctx)); err != nil {
		ds.Close()
		return nil, err
	}
	return ds, nil
}

func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if err := s.bucket.DeleteContext(ctx, oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("gridfs delete: %w", err)
	}
	return nil
}
