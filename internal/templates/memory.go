package templates

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*models.Template
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*models.Template)}
}

func (m *MemoryRepo) Create(ctx context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryRepo) List(ctx context.Context, tags []string, activeOnly bool) ([]*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Template{}
	for _, t := range m.store {
		if activeOnly && !t.Active {
			continue
		}
		if len(tags) > 0 && !hasAny(t.Tags, tags) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepo) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.store)), nil
}

func (m *MemoryRepo) SetActive(ctx context.Context, id string, active bool) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Active = active
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func hasAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
