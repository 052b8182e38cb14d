// Package config provides YAML configuration loading for the embedding service.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for an embedding service instance.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Cache   CacheConfig   `yaml:"cache"`
	Encoder EncoderConfig `yaml:"encoder"`
	Batch   BatchConfig   `yaml:"batch"`
	Chunk   ChunkConfig   `yaml:"chunk"`
}

// CacheConfig selects and sizes the embedding cache backend.
type CacheConfig struct {
	// Backend is one of "fifo", "lru", "lfu", "redis". Defaults to "fifo".
	Backend  string      `yaml:"backend"`
	Capacity int         `yaml:"capacity"`
	Redis    RedisConfig `yaml:"redis"`
}

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
	Prefix   string `yaml:"prefix"`
}

// EncoderConfig selects the embedding encoder.
type EncoderConfig struct {
	// Provider is one of "openai", "gemini". Empty leaves the service
	// uninitialized until an encoder is bound programmatically.
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	ModelVersion string `yaml:"model_version"`
	Dimension    int    `yaml:"dimension"`
	APIKey       string `yaml:"api_key"`
}

// BatchConfig tunes batch embedding concurrency.
type BatchConfig struct {
	// Threshold is the batch size above which embedding runs in parallel.
	Threshold int `yaml:"threshold"`
	// Workers bounds the parallel embedding goroutines.
	Workers int `yaml:"workers"`
}

// ChunkConfig tunes document chunking.
type ChunkConfig struct {
	MaxTokens    int `yaml:"max_tokens"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// ApplyDefaults fills unset fields with usable defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "fifo"
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 1024
	}
	if cfg.Batch.Threshold == 0 {
		cfg.Batch.Threshold = 10
	}
	if cfg.Chunk.MaxTokens == 0 {
		cfg.Chunk.MaxTokens = 8191
	}
	if cfg.Chunk.ChunkSize == 0 {
		cfg.Chunk.ChunkSize = 512
	}
	if cfg.Chunk.ChunkOverlap == 0 {
		cfg.Chunk.ChunkOverlap = 50
	}
}

// Load reads and parses the config file at path and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}
