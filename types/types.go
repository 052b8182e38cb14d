// Package types defines the shared contracts between the embedding service
// and its cache backends.
package types

import (
	"context"
	"time"
)

// CacheBackend defines the interface for embedding cache storage backends.
// Keys are exact text strings; values are the embedding vectors computed for
// them. This allows for pluggable storage systems including in-memory and
// Redis.
//
// Backends must be safe for concurrent use. They provide no single-flight
// deduplication: two callers racing on the same uncached key may both store,
// and the last write wins. Backends own their stored vectors; Get returns a
// copy so later cache mutation never invalidates a caller's view.
type CacheBackend interface {
	// Set stores the embedding for a text key, overwriting any previous entry.
	Set(ctx context.Context, key string, embedding []float32) error

	// Get retrieves the embedding for a key.
	Get(ctx context.Context, key string) ([]float32, bool, error)

	// Delete removes the entry for a key.
	Delete(ctx context.Context, key string) error

	// Contains checks if a key exists without retrieving the embedding.
	Contains(ctx context.Context, key string) (bool, error)

	// Flush clears all entries from the cache.
	Flush(ctx context.Context) error

	// Len returns the number of entries in the cache.
	Len(ctx context.Context) (int, error)

	// Keys returns all keys currently in the cache.
	Keys(ctx context.Context) ([]string, error)

	// Close closes the backend and releases resources.
	Close() error
}

// BackendConfig provides configuration options for backends.
type BackendConfig struct {
	// For in-memory caches
	Capacity int
	TTL      time.Duration

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// Additional options
	Options map[string]any
}

// Encoder defines the interface all embedding encoders must satisfy.
// Implementations are immutable after construction; the service composes an
// Encoder with a separately synchronized cache, so encoders never need to
// carry caching state of their own.
type Encoder interface {
	// EmbedText turns a piece of text into its embedding vector.
	EmbedText(text string) ([]float32, error)
	// ModelName identifies the underlying model (e.g. "all-MiniLM-L6-v2").
	ModelName() string
	// ModelVersion identifies the model revision.
	ModelVersion() string
	// Dimension returns the fixed length of produced vectors.
	Dimension() int
	// Close frees any resources held by the encoder.
	Close()
}

// BackendType represents the type of cache backend.
type BackendType string

const (
	// BackendFIFO evicts the oldest-inserted entry. This is the default
	// policy: it keeps recomputation behavior predictable regardless of
	// access patterns.
	BackendFIFO BackendType = "fifo"
	// BackendLRU evicts the least recently used entry.
	BackendLRU BackendType = "lru"
	// BackendLFU evicts the least frequently used entry.
	BackendLFU BackendType = "lfu"
	// BackendRedis stores entries in a Redis instance.
	BackendRedis BackendType = "redis"
)
