package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	payload := []byte("%PDF-1.4 binary\x00\xff")
	id, err := s.Upload(ctx, "resume.pdf", bytes.NewReader(payload), "application/pdf")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := ReadAll(ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Download(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestMemoryStoreIdsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := s.Upload(ctx, "same.tex", strings.NewReader("x"), "text/plain")
		require.NoError(t, err)
		require.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
	assert.Equal(t, 50, s.Len())
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().Upload(ctx, "a", strings.NewReader("b"), "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "memory"}}
	s, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Storage.Backend = "gridfs"
	_, err = New(cfg, nil)
	assert.Error(t, err)

	cfg.Storage.Backend = "minio"
	_, err = New(cfg, nil)
	assert.Error(t, err, "minio without endpoint must fail")
}
