// Package jobs persists asynchronous generation job state.
package jobs

import (
	"context"
	"errors"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

var ErrNotFound = errors.New("job not found")

// Store keeps GenerationJob records. Save is an upsert keyed by job id.
type Store interface {
	Save(ctx context.Context, j *models.GenerationJob) error
	Get(ctx context.Context, id string) (*models.GenerationJob, error)
	GetForUser(ctx context.Context, id, userID string) (*models.GenerationJob, error)
}
