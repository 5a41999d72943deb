// Package cache provides the optional Redis-backed photo-URL cache.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces cache entries.
const keyPrefix = "photo_url:"

// RedisCache implements the URLCache port on Redis.
type RedisCache struct {
	client *redis.Client
}

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache creates a new Redis URL cache.
func NewRedisCache(cfg Config) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Get returns the cached URL for key, or "" on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set caches a URL for key with the given lifetime.
func (c *RedisCache) Set(ctx context.Context, key, url string, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+key, url, ttl).Err()
}

// Ping reports cache reachability.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
