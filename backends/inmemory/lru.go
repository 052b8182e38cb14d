package inmemory

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/embedkit/embedkit/types"
	"github.com/embedkit/embedkit/vector"
)

// LRUBackend implements CacheBackend with least-recently-used eviction.
// It is an explicit opt-in: the default policy is FIFO, and switching to
// LRU changes which texts get recomputed under a full cache.
type LRUBackend struct {
	cache *lru.Cache[string, []float32]
}

// NewLRUBackend creates a new LRU backend.
func NewLRUBackend(config types.BackendConfig) (*LRUBackend, error) {
	cache, err := lru.New[string, []float32](config.Capacity)
	if err != nil {
		return nil, err
	}
	return &LRUBackend{cache: cache}, nil
}

// Set stores an embedding in the LRU cache.
func (b *LRUBackend) Set(ctx context.Context, key string, embedding []float32) error {
	b.cache.Add(key, vector.Clone(embedding))
	return nil
}

// Get retrieves a copy of the embedding for key, marking it recently used.
func (b *LRUBackend) Get(ctx context.Context, key string) ([]float32, bool, error) {
	if embedding, ok := b.cache.Get(key); ok {
		return vector.Clone(embedding), true, nil
	}
	return nil, false, nil
}

// Delete removes an entry from the LRU cache.
func (b *LRUBackend) Delete(ctx context.Context, key string) error {
	b.cache.Remove(key)
	return nil
}

// Contains checks for key presence without affecting recency.
func (b *LRUBackend) Contains(ctx context.Context, key string) (bool, error) {
	return b.cache.Contains(key), nil
}

// Flush clears all entries from the LRU cache.
func (b *LRUBackend) Flush(ctx context.Context) error {
	b.cache.Purge()
	return nil
}

// Len returns the number of entries in the LRU cache.
func (b *LRUBackend) Len(ctx context.Context) (int, error) {
	return b.cache.Len(), nil
}

// Keys returns all keys in the LRU cache, oldest first.
func (b *LRUBackend) Keys(ctx context.Context) ([]string, error) {
	return b.cache.Keys(), nil
}

// Close closes the LRU backend (no-op for in-memory).
func (b *LRUBackend) Close() error {
	return nil
}
