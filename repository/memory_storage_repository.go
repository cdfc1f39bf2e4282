package repository

import (
	"context"
	"sync"
)

// MemoryStorageRepository keeps client storage in process memory.
// Used when no database is configured.
type MemoryStorageRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewMemoryStorageRepository creates a new MemoryStorageRepository
func NewMemoryStorageRepository() *MemoryStorageRepository {
	return &MemoryStorageRepository{items: make(map[string]map[string]string)}
}

var _ StorageRepositoryInterface = (*MemoryStorageRepository)(nil)

func (r *MemoryStorageRepository) GetItem(ctx context.Context, clientID, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.items[clientID][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (r *MemoryStorageRepository) SetItem(ctx context.Context, clientID, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[clientID] == nil {
		r.items[clientID] = make(map[string]string)
	}
	r.items[clientID][key] = value
	return nil
}

func (r *MemoryStorageRepository) RemoveItem(ctx context.Context, clientID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items[clientID], key)
	if len(r.items[clientID]) == 0 {
		delete(r.items, clientID)
	}
	return nil
}

func (r *MemoryStorageRepository) Items(ctx context.Context, clientID string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.items[clientID]))
	for k, v := range r.items[clientID] {
		out[k] = v
	}
	return out, nil
}
