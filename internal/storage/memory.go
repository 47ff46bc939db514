package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in process memory. Used when no object store is
// configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.objects[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
