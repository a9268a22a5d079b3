package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryBackend is an in-process Backend used in tests and as a
// throwaway dev store. Safe for concurrent use.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Name identifies this backend in failover logs
func (b *MemoryBackend) Name() string {
	return "memory"
}

func key(collection, ownerID string) string {
	return collection + "\x00" + ownerID
}

// Get returns the payload for a key, ErrNotFound when absent
func (b *MemoryBackend) Get(_ context.Context, collection, ownerID string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.data[key(collection, ownerID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Save stores the payload for a key
func (b *MemoryBackend) Save(_ context.Context, collection, ownerID string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	b.data[key(collection, ownerID)] = cp
	return nil
}

// Delete removes a single key
func (b *MemoryBackend) Delete(_ context.Context, collection, ownerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key(collection, ownerID))
	return nil
}

// Clear removes all records for an owner, or everything when owner is empty
func (b *MemoryBackend) Clear(_ context.Context, ownerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := range b.data {
		if ownerID == "" || strings.HasSuffix(k, "\x00"+ownerID) {
			delete(b.data, k)
		}
	}
	return nil
}

// Len reports how many keys are stored (test helper)
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}
