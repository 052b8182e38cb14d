package inmemory

import (
	"context"
	"sync"

	"github.com/embedkit/embedkit/types"
	"github.com/embedkit/embedkit/vector"
)

// lfuEntry wraps an embedding with frequency tracking.
type lfuEntry struct {
	embedding []float32
	frequency int
}

// LFUBackend implements CacheBackend with least-frequently-used eviction.
// Like LRU, it is an explicit opt-in over the default FIFO policy.
type LFUBackend struct {
	mu       sync.RWMutex
	entries  map[string]*lfuEntry
	capacity int
}

// NewLFUBackend creates a new LFU backend.
func NewLFUBackend(config types.BackendConfig) (*LFUBackend, error) {
	capacity := config.Capacity
	if capacity < 0 {
		capacity = 0
	}
	return &LFUBackend{
		entries:  make(map[string]*lfuEntry),
		capacity: capacity,
	}, nil
}

// Set stores an embedding in the LFU cache.
func (b *LFUBackend) Set(ctx context.Context, key string, embedding []float32) error {
	if b.capacity <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, exists := b.entries[key]; exists {
		existing.embedding = vector.Clone(embedding)
		existing.frequency++
		return nil
	}

	if len(b.entries) >= b.capacity {
		b.evictLFU()
	}

	b.entries[key] = &lfuEntry{embedding: vector.Clone(embedding), frequency: 1}
	return nil
}

// evictLFU removes the least frequently used entry.
func (b *LFUBackend) evictLFU() {
	var lfuKey string
	minFreq := int(^uint(0) >> 1)

	for key, entry := range b.entries {
		if entry.frequency < minFreq {
			minFreq = entry.frequency
			lfuKey = key
		}
	}

	delete(b.entries, lfuKey)
}

// Get retrieves a copy of the embedding for key and increments its frequency.
func (b *LFUBackend) Get(ctx context.Context, key string) ([]float32, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.entries[key]; ok {
		entry.frequency++
		return vector.Clone(entry.embedding), true, nil
	}
	return nil, false, nil
}

// Delete removes an entry from the LFU cache.
func (b *LFUBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)
	return nil
}

// Contains checks if a key exists without incrementing frequency.
func (b *LFUBackend) Contains(ctx context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.entries[key]
	return exists, nil
}

// Flush clears all entries from the LFU cache.
func (b *LFUBackend) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]*lfuEntry)
	return nil
}

// Len returns the number of entries in the LFU cache.
func (b *LFUBackend) Len(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries), nil
}

// Keys returns all keys in the LFU cache.
func (b *LFUBackend) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

// Close closes the LFU backend (no-op for in-memory).
func (b *LFUBackend) Close() error {
	return nil
}
