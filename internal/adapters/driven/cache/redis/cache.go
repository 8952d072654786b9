// Package redis implements the TTL cache on a Redis backend. Every
// backend failure is logged at debug level and swallowed; callers see
// a miss or a no-op, never an error.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/logger"
)

// Config holds the Redis connection settings.
type Config struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password is optional.
	Password string

	// DB selects the logical database.
	DB int
}

// Cache is the Redis-backed TTL cache.
type Cache struct {
	client *redis.Client
}

var _ driven.Cache = (*Cache)(nil)

// New creates a Redis cache. The connection is verified lazily; a
// Redis that is down at startup only costs cache hits, not requests.
func New(cfg Config) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// NewWithClient wraps an existing client. Tests use this with
// miniredis.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the value for key, or a miss on any backend failure.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Set stores the value with a TTL. Failures are swallowed.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes the key. Failures are swallowed.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Debug("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the backing connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
