package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

// MemoryRepo is an in-memory Repository used by tests and the memory backend.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*models.SourceDocument
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*models.SourceDocument)}
}

func (m *MemoryRepo) Create(ctx context.Context, d *models.SourceDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = primitive.NewObjectID().Hex()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.UpdatedAt = d.CreatedAt
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id, userID string) (*models.SourceDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok || d.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) List(ctx context.Context, userID string, tags []string) ([]*models.SourceDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.SourceDocument{}
	for _, d := range m.store {
		if d.UserID != userID || !hasAll(d.Tags, tags) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) UpdateTags(ctx context.Context, id, userID string, tags []string) (*models.SourceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok || d.UserID != userID {
		return nil, ErrNotFound
	}
	d.Tags = append([]string(nil), tags...)
	d.UpdatedAt = time.Now().UTC()
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok || d.UserID != userID {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func hasAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
