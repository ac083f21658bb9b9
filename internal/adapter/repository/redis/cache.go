// Package redis implements caching and idempotency storage on Redis.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/tradesim/internal/infrastructure/metrics"
)

// Cache implements usecase.Cache using Redis.
type Cache struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		prefix:  "cache:",
		metrics: m,
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.count("get")

	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		c.countErr("get", err)
		return nil, err
	}

	return val, nil
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.count("set")

	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.countErr("set", err)
		return err
	}

	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.count("delete")

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.countErr("delete", err)
		return err
	}

	return nil
}

func (c *Cache) count(op string) {
	if c.metrics != nil {
		c.metrics.RedisOperations.WithLabelValues(op).Inc()
	}
}

func (c *Cache) countErr(op string, err error) {
	if c.metrics != nil && err != redis.Nil {
		c.metrics.RedisErrors.WithLabelValues(op).Inc()
	}
}
