// Package options provides functional options for configuring embedding
// service instances.
package options

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/embedkit/embedkit/backends"
	"github.com/embedkit/embedkit/chunker"
	"github.com/embedkit/embedkit/config"
	"github.com/embedkit/embedkit/providers/gemini"
	"github.com/embedkit/embedkit/providers/openai"
	"github.com/embedkit/embedkit/similarity"
	"github.com/embedkit/embedkit/types"
)

// Option represents a configuration option for the embedding service.
type Option func(*Config) error

// Config holds the configuration for building a service.
type Config struct {
	Backend    types.CacheBackend
	Encoder    types.Encoder
	Comparator similarity.SimilarityFunc
	Logger     *zap.Logger

	// BatchThreshold is the batch size above which embedding fans out to
	// parallel workers; 0 means the service default.
	BatchThreshold int
	// Workers bounds the parallel embedding goroutines; 0 means NumCPU.
	Workers int

	Chunking chunker.ChunkConfig
}

// NewConfig creates a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		Comparator: similarity.Cosine,
		Chunking:   chunker.DefaultChunkConfig(),
	}
}

// Apply applies all the given options to the config.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid. An encoder is not required
// here: a service may start uninitialized and bind one later.
func (c *Config) Validate() error {
	if c.Backend == nil {
		return errors.New("backend is required - use WithFIFOBackend, WithRedisBackend, etc.")
	}
	if c.Comparator == nil {
		return errors.New("comparator cannot be nil")
	}
	return nil
}

// WithFIFOBackend sets up a FIFO in-memory backend (the default eviction
// policy: oldest-inserted entries go first).
func WithFIFOBackend(capacity int) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewFIFOBackend(types.BackendConfig{Capacity: capacity})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithLRUBackend sets up an LRU in-memory backend. Note this changes which
// texts get recomputed relative to the default FIFO policy.
func WithLRUBackend(capacity int) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewLRUBackend(types.BackendConfig{Capacity: capacity})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithLFUBackend sets up an LFU in-memory backend.
func WithLFUBackend(capacity int) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewLFUBackend(types.BackendConfig{Capacity: capacity})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithRedisBackend sets up a Redis backend.
func WithRedisBackend(addr string, db int) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewRedisBackend(types.BackendConfig{
			ConnectionString: addr,
			Database:         db,
		})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithCustomBackend allows using a pre-configured backend.
func WithCustomBackend(backend types.CacheBackend) Option {
	return func(cfg *Config) error {
		if backend == nil {
			return errors.New("backend cannot be nil")
		}
		cfg.Backend = backend
		return nil
	}
}

// WithEncoder binds a pre-configured encoder.
func WithEncoder(encoder types.Encoder) Option {
	return func(cfg *Config) error {
		if encoder == nil {
			return errors.New("encoder cannot be nil")
		}
		cfg.Encoder = encoder
		return nil
	}
}

// WithOpenAIEncoder sets up an OpenAI embedding encoder.
func WithOpenAIEncoder(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		c := openai.Config{APIKey: apiKey}
		if len(model) > 0 {
			c.Model = model[0]
		}

		encoder, err := openai.NewEncoder(c)
		if err != nil {
			return err
		}
		cfg.Encoder = encoder
		return nil
	}
}

// WithGeminiEncoder sets up a Gemini embedding encoder on the given client.
func WithGeminiEncoder(client *genai.Client, model string) Option {
	return func(cfg *Config) error {
		encoder, err := gemini.NewEncoder(client, gemini.Config{Model: model})
		if err != nil {
			return err
		}
		cfg.Encoder = encoder
		return nil
	}
}

// WithComparator sets a custom similarity function for ranking.
func WithComparator(comparator similarity.SimilarityFunc) Option {
	return func(cfg *Config) error {
		if comparator == nil {
			return errors.New("comparator cannot be nil")
		}
		cfg.Comparator = comparator
		return nil
	}
}

// WithLogger attaches a zap logger. Without one, the service is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *Config) error {
		cfg.Logger = logger
		return nil
	}
}

// WithBatchThreshold sets the batch size above which embedding runs in
// parallel.
func WithBatchThreshold(threshold int) Option {
	return func(cfg *Config) error {
		if threshold < 1 {
			return errors.New("batch threshold must be positive")
		}
		cfg.BatchThreshold = threshold
		return nil
	}
}

// WithWorkers bounds the parallel embedding goroutines.
func WithWorkers(workers int) Option {
	return func(cfg *Config) error {
		if workers < 1 {
			return errors.New("workers must be positive")
		}
		cfg.Workers = workers
		return nil
	}
}

// WithChunkConfig sets the document chunking configuration.
func WithChunkConfig(chunking chunker.ChunkConfig) Option {
	return func(cfg *Config) error {
		if err := chunking.Validate(); err != nil {
			return err
		}
		cfg.Chunking = chunking
		return nil
	}
}

// FromConfig maps a loaded file configuration onto service options.
func FromConfig(fileCfg *config.Config) Option {
	return func(cfg *Config) error {
		if fileCfg == nil {
			return errors.New("config cannot be nil")
		}

		backend, err := backends.NewBackend(types.BackendType(fileCfg.Cache.Backend), types.BackendConfig{
			Capacity:         fileCfg.Cache.Capacity,
			ConnectionString: fileCfg.Cache.Redis.URL,
			Username:         fileCfg.Cache.Redis.Username,
			Password:         fileCfg.Cache.Redis.Password,
			Database:         fileCfg.Cache.Redis.Database,
			Options:          redisOptions(fileCfg.Cache.Redis),
		})
		if err != nil {
			return fmt.Errorf("configure %q backend: %w", fileCfg.Cache.Backend, err)
		}
		cfg.Backend = backend

		switch fileCfg.Encoder.Provider {
		case "":
			// Encoder bound later via Initialize.
		case "openai":
			encoder, err := openai.NewEncoder(openai.Config{
				APIKey:       fileCfg.Encoder.APIKey,
				Model:        fileCfg.Encoder.Model,
				ModelVersion: fileCfg.Encoder.ModelVersion,
				Dimension:    fileCfg.Encoder.Dimension,
			})
			if err != nil {
				return err
			}
			cfg.Encoder = encoder
		case "gemini":
			client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
				APIKey: fileCfg.Encoder.APIKey,
			})
			if err != nil {
				return err
			}
			encoder, err := gemini.NewEncoder(client, gemini.Config{
				Model:        fileCfg.Encoder.Model,
				ModelVersion: fileCfg.Encoder.ModelVersion,
				Dimension:    fileCfg.Encoder.Dimension,
			})
			if err != nil {
				return err
			}
			cfg.Encoder = encoder
		default:
			return fmt.Errorf("unsupported encoder provider %q", fileCfg.Encoder.Provider)
		}

		cfg.BatchThreshold = fileCfg.Batch.Threshold
		cfg.Workers = fileCfg.Batch.Workers
		cfg.Chunking = chunker.ChunkConfig{
			MaxTokens:    fileCfg.Chunk.MaxTokens,
			ChunkSize:    fileCfg.Chunk.ChunkSize,
			ChunkOverlap: fileCfg.Chunk.ChunkOverlap,
		}
		return nil
	}
}

func redisOptions(rc config.RedisConfig) map[string]any {
	if rc.Prefix == "" {
		return nil
	}
	return map[string]any{"prefix": rc.Prefix}
}
