package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a thin wrapper around a Redis connection used for short-lived
// lookup caching. A nil *Client is valid and behaves as a disabled cache, so
// callers never need to branch on configuration.
type Client struct {
	rdb *redis.Client
}

// New creates a Redis-backed cache client for the given address.
func New(addr string) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	return &Client{rdb: rdb}
}

// Set stores a value under key with the given expiration.
func (c *Client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key. The second return is false on a miss or when
// the cache is disabled.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Del removes a key.
func (c *Client) Del(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// Ping checks connectivity to the Redis server.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
