package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.GenerationJob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.GenerationJob)}
}

func (m *MemoryStore) Save(ctx context.Context, j *models.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*models.GenerationJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *MemoryStore) GetForUser(ctx context.Context, id, userID string) (*models.GenerationJob, error) {
	j, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		return nil, ErrNotFound
	}
	return j, nil
}
