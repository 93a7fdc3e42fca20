// Package generated persists pipeline output: the record plus its LaTeX
// source, optional class file and compiled PDF blobs.
package generated

import (
	"context"
	"errors"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

var ErrNotFound = errors.New("generated document not found")

// Repository stores GeneratedDocument records. All access is owner scoped.
type Repository interface {
	Create(ctx context.Context, d *models.GeneratedDocument) error
	Get(ctx context.Context, id, userID string) (*models.GeneratedDocument, error)
	List(ctx context.Context, userID, search string) ([]*models.GeneratedDocument, error)
	Delete(ctx context.Context, id, userID string) error
}
