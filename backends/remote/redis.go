// Package remote provides cache backends backed by remote stores.
package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/embedkit/embedkit/types"
)

// RedisBackend implements CacheBackend on a Redis instance. Entries are
// stored as JSON documents under a key prefix. Capacity is not enforced
// here: bounding the cache is delegated to Redis' own maxmemory eviction
// policy.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// redisDocument is the stored form of a cached embedding.
type redisDocument struct {
	Key       string    `json:"key"`
	Embedding []float32 `json:"embedding"`
	Timestamp int64     `json:"timestamp"`
}

// parseRedisURL parses a Redis URL and returns redis.Options.
func parseRedisURL(connectionString string) (*redis.Options, error) {
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{
			Addr: parsedURL.Host,
		}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			}
		}

		return opts, nil
	}

	// Simple host:port address.
	return &redis.Options{
		Addr: connectionString,
	}, nil
}

// NewRedisBackend creates a new Redis backend and verifies connectivity.
func NewRedisBackend(config types.BackendConfig) (*RedisBackend, error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := "embedkit:"
	if prefixOpt, ok := config.Options["prefix"]; ok {
		if p, ok := prefixOpt.(string); ok {
			prefix = p
		}
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

// redisKey converts a text key to its namespaced Redis key.
func (b *RedisBackend) redisKey(key string) string {
	return b.prefix + key
}

// Set stores an embedding in Redis.
func (b *RedisBackend) Set(ctx context.Context, key string, embedding []float32) error {
	doc := redisDocument{
		Key:       key,
		Embedding: embedding,
		Timestamp: time.Now().Unix(),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal entry for %q: %w", key, err)
	}

	if err := b.client.Set(ctx, b.redisKey(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set entry in Redis: %w", err)
	}
	return nil
}

// Get retrieves an embedding from Redis.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]float32, bool, error) {
	result, err := b.client.Get(ctx, b.redisKey(key)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get entry from Redis: %w", err)
	}

	var doc redisDocument
	if err := json.Unmarshal([]byte(result), &doc); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal entry for %q: %w", key, err)
	}

	return doc.Embedding, true, nil
}

// Delete removes an entry from Redis.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete entry from Redis: %w", err)
	}
	return nil
}

// Contains checks if a key exists in Redis.
func (b *RedisBackend) Contains(ctx context.Context, key string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence in Redis: %w", err)
	}
	return exists > 0, nil
}

// scanKeys collects all Redis keys under the configured prefix.
func (b *RedisBackend) scanKeys(ctx context.Context) ([]string, error) {
	pattern := b.prefix + "*"
	var keys []string
	var cursor uint64

	for {
		result, nextCursor, err := b.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys from Redis: %w", err)
		}

		keys = append(keys, result...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Flush removes all entries under the configured prefix.
func (b *RedisBackend) Flush(ctx context.Context) error {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := b.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to flush Redis: %w", err)
		}
	}
	return nil
}

// Len returns the number of entries under the configured prefix.
func (b *RedisBackend) Len(ctx context.Context) (int, error) {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Keys returns all text keys under the configured prefix.
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	redisKeys, err := b.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(redisKeys))
	for _, rk := range redisKeys {
		if len(rk) > len(b.prefix) {
			keys = append(keys, rk[len(b.prefix):])
		}
	}
	return keys, nil
}

// Close closes the Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
