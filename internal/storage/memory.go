package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

type memBlob struct {
	name        string
	contentType string
	data        []byte
}

// MemoryStore is an in-process BlobStore for tests and STORAGE_BACKEND=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memBlob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memBlob)}
}

func (m *MemoryStore) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.mu.Lock()
	m.blobs[id] = memBlob{name: name, contentType: contentType, data: data}
	m.mu.Unlock()
	return id, nil
}

func (m *MemoryStore) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, id)
	return nil
}

// Has reports whether id is stored.
func (m *MemoryStore) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[id]
	return ok
}

// Len returns the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
