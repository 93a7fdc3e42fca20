// Package templates owns the system-managed LaTeX templates: their records,
// the seeding step that creates them and the resolver that turns a template
// id into LaTeX sources.
package templates

import (
	"context"
	"errors"
	"io"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/documents"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

var ErrNotFound = errors.New("template not found")

// Repository persists Template records. Templates are not user scoped.
type Repository interface {
	Create(ctx context.Context, t *models.Template) error
	Get(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context, tags []string, activeOnly bool) ([]*models.Template, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id string, active bool) (*models.Template, error)
}

// FileStore is the part of the file service templates rely on. Template
// assets are system files owned by models.SystemOwner.
type FileStore interface {
	Upload(ctx context.Context, in documents.UploadInput) (*models.SourceDocument, error)
	Get(ctx context.Context, id, userID string) (*models.SourceDocument, error)
	Content(ctx context.Context, d *models.SourceDocument) ([]byte, error)
	Open(ctx context.Context, id, userID string) (*models.SourceDocument, io.ReadCloser, error)
	Delete(ctx context.Context, id, userID string) error
}
