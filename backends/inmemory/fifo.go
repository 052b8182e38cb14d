// Package inmemory provides process-local cache backends with FIFO, LRU,
// and LFU eviction policies.
package inmemory

import (
	"context"
	"sync"

	"github.com/embedkit/embedkit/types"
	"github.com/embedkit/embedkit/vector"
)

// FIFOBackend implements CacheBackend with FIFO (oldest-inserted) eviction.
// Overwriting an existing key does not change its position in the eviction
// queue. A capacity of zero or less disables caching entirely: Set becomes
// a no-op.
type FIFOBackend struct {
	mu       sync.RWMutex
	entries  map[string][]float32
	queue    []string
	capacity int
}

// NewFIFOBackend creates a new FIFO backend.
func NewFIFOBackend(config types.BackendConfig) (*FIFOBackend, error) {
	capacity := config.Capacity
	if capacity < 0 {
		capacity = 0
	}
	return &FIFOBackend{
		entries:  make(map[string][]float32),
		queue:    make([]string, 0, capacity),
		capacity: capacity,
	}, nil
}

// Set stores an embedding in the FIFO cache. At capacity, exactly one entry
// (the oldest surviving insertion) is evicted to make room.
func (b *FIFOBackend) Set(ctx context.Context, key string, embedding []float32) error {
	if b.capacity <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Overwrite keeps the original insertion position.
	if _, exists := b.entries[key]; exists {
		b.entries[key] = vector.Clone(embedding)
		return nil
	}

	if len(b.entries) >= b.capacity {
		oldest := b.queue[0]
		b.queue = b.queue[1:]
		delete(b.entries, oldest)
	}

	b.entries[key] = vector.Clone(embedding)
	b.queue = append(b.queue, key)
	return nil
}

// Get retrieves a copy of the embedding for key.
func (b *FIFOBackend) Get(ctx context.Context, key string) ([]float32, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if embedding, ok := b.entries[key]; ok {
		return vector.Clone(embedding), true, nil
	}
	return nil, false, nil
}

// Delete removes an entry from the FIFO cache.
func (b *FIFOBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.entries[key]; !exists {
		return nil
	}

	delete(b.entries, key)
	for i, qKey := range b.queue {
		if qKey == key {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			break
		}
	}
	return nil
}

// Contains checks if a key exists in the FIFO cache.
func (b *FIFOBackend) Contains(ctx context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.entries[key]
	return exists, nil
}

// Flush clears all entries. Capacity is unchanged.
func (b *FIFOBackend) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string][]float32)
	b.queue = make([]string, 0, b.capacity)
	return nil
}

// Len returns the number of entries in the FIFO cache.
func (b *FIFOBackend) Len(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries), nil
}

// Keys returns all keys in insertion order, oldest first.
func (b *FIFOBackend) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, len(b.queue))
	copy(keys, b.queue)
	return keys, nil
}

// Close closes the FIFO backend (no-op for in-memory).
func (b *FIFOBackend) Close() error {
	return nil
}
