package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCacheConfig struct {
	Client    redis.UniversalClient
	KeyPrefix string
	Logger    *slog.Logger
}

// RedisCache shares credentials between processes through Redis.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

func NewRedisCache(cfg RedisCacheConfig) (*RedisCache, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisCache{
		client: cfg.Client,
		prefix: cfg.KeyPrefix,
		logger: logger,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "redis cache get failed", slog.String("key", c.prefix+key), slog.Any("error", err))
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.prefix+key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", c.prefix+key, err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
