// Package backends constructs embedding cache backends by type.
package backends

import (
	"errors"

	"github.com/embedkit/embedkit/backends/inmemory"
	"github.com/embedkit/embedkit/backends/remote"
	"github.com/embedkit/embedkit/types"
)

var ErrUnsupportedBackend = errors.New("unsupported backend type")

// NewBackend creates a new cache backend of the specified type.
func NewBackend(backendType types.BackendType, config types.BackendConfig) (types.CacheBackend, error) {
	switch backendType {
	case types.BackendFIFO:
		return inmemory.NewFIFOBackend(config)
	case types.BackendLRU:
		return inmemory.NewLRUBackend(config)
	case types.BackendLFU:
		return inmemory.NewLFUBackend(config)
	case types.BackendRedis:
		return remote.NewRedisBackend(config)
	default:
		return nil, ErrUnsupportedBackend
	}
}

// NewFIFOBackend creates a new FIFO backend.
func NewFIFOBackend(config types.BackendConfig) (types.CacheBackend, error) {
	return inmemory.NewFIFOBackend(config)
}

// NewLRUBackend creates a new LRU backend.
func NewLRUBackend(config types.BackendConfig) (types.CacheBackend, error) {
	return inmemory.NewLRUBackend(config)
}

// NewLFUBackend creates a new LFU backend.
func NewLFUBackend(config types.BackendConfig) (types.CacheBackend, error) {
	return inmemory.NewLFUBackend(config)
}

// NewRedisBackend creates a new Redis backend.
func NewRedisBackend(config types.BackendConfig) (types.CacheBackend, error) {
	return remote.NewRedisBackend(config)
}
