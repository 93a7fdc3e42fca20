package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

func TestMemoryStoreSaveGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	j := &models.GenerationJob{ID: "j1", UserID: "u1", Status: models.JobQueued}
	require.NoError(t, s.Save(ctx, j))
	created := j.CreatedAt

	j.Status = models.JobDone
	j.GeneratedDocumentID = "g1"
	require.NoError(t, s.Save(ctx, j))

	got, err := s.GetForUser(ctx, "j1", "u1")
	require.NoError(t, err)
	require.Equal(t, models.JobDone, got.Status)
	require.Equal(t, "g1", got.GeneratedDocumentID)
	require.Equal(t, created, got.CreatedAt)

	_, err = s.GetForUser(ctx, "j1", "u2")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
