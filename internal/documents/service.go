package documents

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/storage"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

// UploadInput describes one incoming file.
type UploadInput struct {
	UserID    string
	Name      string
	MimeType  string
	Size      int64
	Tags      []string
	SystemGen *bool
	Body      io.Reader
}

// Service implements the file lifecycle on top of a Repository and a BlobStore.
type Service struct {
	repo     Repository
	blobs    storage.BlobStore
	maxBytes int64
}

func NewService(repo Repository, blobs storage.BlobStore, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = models.DefaultMaxUploadBytes
	}
	return &Service{repo: repo, blobs: blobs, maxBytes: maxBytes}
}

func (s *Service) tooLarge() error {
	return apperr.Validation("File size exceeds %dMB limit", s.maxBytes/(1024*1024))
}

// Upload stores the body as a blob and records it. A record that cannot be
// inserted takes its blob with it.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.SourceDocument, error) {
	if in.Body == nil || strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("No file uploaded")
	}
	if in.Size > s.maxBytes {
		return nil, s.tooLarge()
	}
	tags := models.NormalizeTags(in.Tags)
	if in.UserID != models.SystemOwner {
		if bad := models.InvalidTags(tags); len(bad) > 0 {
			return nil, apperr.Validation("Invalid tags: %s", strings.Join(bad, ", "))
		}
	}
	if in.MimeType == "" {
		in.MimeType = "application/octet-stream"
	}

	body := &countingReader{r: io.LimitReader(in.Body, s.maxBytes+1)}
	blobID, err := s.blobs.Upload(ctx, in.Name, body, in.MimeType)
	if err != nil {
		return nil, apperr.Storage(err, "Failed to store file")
	}
	if body.n > s.maxBytes {
		s.discard(ctx, blobID)
		return nil, s.tooLarge()
	}

	doc := &models.SourceDocument{
		OriginalName: in.Name,
		BlobID:       blobID,
		MimeType:     in.MimeType,
		Size:         body.n,
		Tags:         tags,
		UserID:       in.UserID,
		SystemGen:    in.SystemGen,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.discard(ctx, blobID)
		return nil, apperr.Storage(err, "Failed to save file record")
	}
	return doc, nil
}

func (s *Service) discard(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), blobID); err != nil {
		logger.Warnw("failed to remove orphaned blob", "blobId", blobID, "error", err)
	}
}

// Get returns the record owned by userID.
func (s *Service) Get(ctx context.Context, id, userID string) (*models.SourceDocument, error) {
	d, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return nil, translate(err, "Document not found")
	}
	return d, nil
}

// Content downloads the full blob of d.
func (s *Service) Content(ctx context.Context, d *models.SourceDocument) ([]byte, error) {
	data, err := storage.ReadAll(ctx, s.blobs, d.BlobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("File content not found")
		}
		return nil, apperr.Storage(err, "Failed to read file")
	}
	return data, nil
}

// Open returns the record together with a stream of its content. The caller closes the stream.
func (s *Service) Open(ctx context.Context, id, userID string) (*models.SourceDocument, io.ReadCloser, error) {
	d, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Download(ctx, d.BlobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperr.NotFound("File content not found")
		}
		return nil, nil, apperr.Storage(err, "Failed to read file")
	}
	return d, rc, nil
}

// List returns the caller's files carrying all of tags, newest first.
func (s *Service) List(ctx context.Context, userID string, tags []string) ([]*models.SourceDocument, error) {
	out, err := s.repo.List(ctx, userID, models.NormalizeTags(tags))
	if err != nil {
		return nil, apperr.Storage(err, "Failed to list files")
	}
	return out, nil
}

func (s *Service) UpdateTags(ctx context.Context, id, userID string, tags []string) (*models.SourceDocument, error) {
	tags = models.NormalizeTags(tags)
	if bad := models.InvalidTags(tags); len(bad) > 0 {
		return nil, apperr.Validation("Invalid tags: %s", strings.Join(bad, ", "))
	}
	d, err := s.repo.UpdateTags(ctx, id, userID, tags)
	if err != nil {
		return nil, translate(err, "Document not found")
	}
	return d, nil
}

// Delete removes the blob, then the record. A blob that cannot be removed is logged only.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	d, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, d.BlobID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warnw("failed to delete file blob", "fileId", id, "blobId", d.BlobID, "error", err)
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return translate(err, "Document not found")
	}
	return nil
}

func translate(err error, notFound string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("%s", notFound)
	}
	return apperr.Storage(err, "metadata store")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

