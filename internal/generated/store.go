package generated

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/storage"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/metrics"
)

// Artifact is the output of one pipeline run, ready to persist.
type Artifact struct {
	UserID           string
	Name             string
	Version          int
	TemplateID       string
	SourceDocumentID string
	Tex              string
	Cls              string
	ClsFileName      string
	PDF              []byte
}

// Store combines the record repository with the blob store.
type Store struct {
	repo  Repository
	blobs storage.BlobStore
}

func NewStore(repo Repository, blobs storage.BlobStore) *Store {
	return &Store{repo: repo, blobs: blobs}
}

// Save uploads tex, cls and pdf, then creates the record. Nothing is left
// behind when any step fails.
func (s *Store) Save(ctx context.Context, a Artifact) (*models.GeneratedDocument, error) {
	if a.Version < 1 {
		a.Version = models.DefaultVersion
	}
	base := fileBase(a.Name)

	var uploaded []string
	fail := func(err error, msg string) (*models.GeneratedDocument, error) {
		s.deleteBlobs(context.WithoutCancel(ctx), uploaded, "")
		return nil, apperr.Storage(err, "%s", msg)
	}
	put := func(name, contentType string, data []byte) (string, error) {
		id, err := s.blobs.Upload(ctx, name, bytes.NewReader(data), contentType)
		if err == nil {
			uploaded = append(uploaded, id)
		}
		return id, err
	}

	doc := &models.GeneratedDocument{
		UserID:           a.UserID,
		Name:             a.Name,
		Version:          a.Version,
		TemplateID:       a.TemplateID,
		SourceDocumentID: a.SourceDocumentID,
	}
	var err error
	if doc.TexBlobID, err = put(base+".tex", "application/x-tex", []byte(a.Tex)); err != nil {
		return fail(err, "Failed to store generated LaTeX")
	}
	if a.Cls != "" {
		doc.ClsFileName = a.ClsFileName
		if doc.ClsBlobID, err = put(a.ClsFileName, "text/plain", []byte(a.Cls)); err != nil {
			return fail(err, "Failed to store class file")
		}
	}
	if doc.PdfBlobID, err = put(base+".pdf", models.MimePDF, a.PDF); err != nil {
		return fail(err, "Failed to store generated PDF")
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return fail(err, "Failed to save generated document")
	}
	return doc, nil
}

// List returns the caller's documents whose name contains search, most recently updated first.
func (s *Store) List(ctx context.Context, userID, search string) ([]*models.GeneratedDocument, error) {
	out, err := s.repo.List(ctx, userID, strings.TrimSpace(search))
	if err != nil {
		return nil, apperr.Storage(err, "Failed to list generated documents")
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id, userID string) (*models.GeneratedDocument, error) {
	d, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Generated document not found")
		}
		return nil, apperr.Storage(err, "generated document store")
	}
	return d, nil
}

// StreamPDF opens the compiled PDF. The caller closes the stream.
func (s *Store) StreamPDF(ctx context.Context, id, userID string) (*models.GeneratedDocument, io.ReadCloser, error) {
	return s.open(ctx, id, userID, func(d *models.GeneratedDocument) string { return d.PdfBlobID })
}

// OpenSource opens the generated LaTeX source.
func (s *Store) OpenSource(ctx context.Context, id, userID string) (*models.GeneratedDocument, io.ReadCloser, error) {
	return s.open(ctx, id, userID, func(d *models.GeneratedDocument) string { return d.TexBlobID })
}

func (s *Store) open(ctx context.Context, id, userID string, pick func(*models.GeneratedDocument) string) (*models.GeneratedDocument, io.ReadCloser, error) {
	d, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Download(ctx, pick(d))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperr.NotFound("Generated file not found")
		}
		return nil, nil, apperr.Storage(err, "Failed to read generated file")
	}
	return d, rc, nil
}

// Delete removes every blob it can, then the record. Blob failures never
// block the record deletion; the number of failed blobs is returned.
func (s *Store) Delete(ctx context.Context, id, userID string) (int, error) {
	d, err := s.Get(ctx, id, userID)
	if err != nil {
		return 0, err
	}
	failed := s.deleteBlobs(ctx, d.BlobIDs(), id)
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return failed, apperr.NotFound("Generated document not found")
		}
		return failed, apperr.Storage(err, "Failed to delete generated document")
	}
	return failed, nil
}

func (s *Store) deleteBlobs(ctx context.Context, ids []string, docID string) int {
	failed := 0
	for _, blobID := range ids {
		if blobID == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, blobID); err != nil {
			failed++
			metrics.BlobDeleteFailures.Inc()
			logger.Warnw("failed to delete blob", "generatedDocumentId", docID, "blobId", blobID, "error", err)
		}
	}
	return failed
}

// fileBase turns a display name into a safe blob file name.
func fileBase(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\n', '\r':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "resume"
	}
	return name
}
