package generated

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*models.GeneratedDocument
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*models.GeneratedDocument)}
}

func (m *MemoryRepo) Create(ctx context.Context, d *models.GeneratedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id, userID string) (*models.GeneratedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok || d.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) List(ctx context.Context, userID, search string) ([]*models.GeneratedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(search)
	out := []*models.GeneratedDocument{}
	for _, d := range m.store {
		if d.UserID != userID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(d.Name), needle) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
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
