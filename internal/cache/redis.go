package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/support-insights/backend/internal/models"
)

// RedisCache keeps datasets in Redis so cache warmth survives restarts and is
// shared between replicas.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisCache(addr string, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

// Ping verifies connectivity at startup so a bad address fails loudly instead
// of degrading every request.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, domain models.Domain, dr models.DateRange) (models.Dataset, bool) {
	raw, err := c.client.Get(ctx, Key(domain, dr)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("redis get failed")
		}
		return models.Dataset{}, false
	}
	var ds models.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		c.logger.Warn().Err(err).Msg("corrupt cache entry dropped")
		c.client.Del(ctx, Key(domain, dr))
		return models.Dataset{}, false
	}
	return ds, true
}

func (c *RedisCache) Set(ctx context.Context, domain models.Domain, dr models.DateRange, ds models.Dataset) {
	raw, err := json.Marshal(ds)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, Key(domain, dr), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis set failed")
	}
}

func (c *RedisCache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, "dataset:*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
