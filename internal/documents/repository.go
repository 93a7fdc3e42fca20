// Package documents manages user-uploaded source files and the system files
// that back templates.
package documents

import (
	"context"
	"errors"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

var ErrNotFound = errors.New("document not found")

// Repository persists SourceDocument records. Every lookup is scoped by owner;
// a record owned by someone else is reported as ErrNotFound.
type Repository interface {
	Create(ctx context.Context, d *models.SourceDocument) error
	Get(ctx context.Context, id, userID string) (*models.SourceDocument, error)
	List(ctx context.Context, userID string, tags []string) ([]*models.SourceDocument, error)
	UpdateTags(ctx context.Context, id, userID string, tags []string) (*models.SourceDocument, error)
	Delete(ctx context.Context, id, userID string) error
}
