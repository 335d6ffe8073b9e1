package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"recycling-route-service/internal/platform/obs"
)

const keyPrefix = "optimize:"

// Redis-backed cache for serialized optimization responses.
// Entries expire after TTL; a zero TTL keeps them until evicted.
type RedisResultCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{Client: client, TTL: ttl}
}

// Build a cache from a redis:// URL.
func NewRedisResultCacheFromURL(url string, ttl time.Duration) (*RedisResultCache, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("redis cache: parse url: %w", err)
	}
	return NewRedisResultCache(redis.NewClient(opt), ttl), nil
}

func (c *RedisResultCache) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "cache.redis.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("redis cache: client is nil")
	}

	val, err := c.Client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		obs.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		obs.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("redis cache: get %q: %w", key, err)
	}

	obs.CacheLookups.WithLabelValues("hit").Inc()
	return val, true, nil
}

func (c *RedisResultCache) Put(ctx context.Context, key string, value []byte) (err error) {
	defer obs.Time(ctx, "cache.redis.Put")(&err)

	if c.Client == nil {
		return errors.New("redis cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("redis cache: empty key")
	}

	if err := c.Client.Set(ctx, keyPrefix+key, value, c.TTL).Err(); err != nil {
		return fmt.Errorf("redis cache: set %q: %w", key, err)
	}
	return nil
}

func (c *RedisResultCache) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
