package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/exchange"
	"pgcledger/pkg/logger"
)

const (
	defaultKeyPrefix = "pgc:fx:"
	defaultRateTTL   = 24 * time.Hour
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisRateCache stores one hash per tenant, keyed by day. Invalidate drops
// the whole hash.
type RedisRateCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ exchange.Cache = (*RedisRateCache)(nil)

// RedisRateCacheOption configures a RedisRateCache.
type RedisRateCacheOption func(*RedisRateCache)

// WithKeyPrefix replaces the "pgc:fx:" key prefix.
func WithKeyPrefix(prefix string) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		c.prefix = prefix
	}
}

// WithTTL sets the lifetime of a tenant's hash; it is refreshed on every Set.
func WithTTL(ttl time.Duration) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisRateCache creates a cache on an existing client. The caller keeps
// ownership of the client.
func NewRedisRateCache(client redis.Cmdable, opts ...RedisRateCacheOption) *RedisRateCache {
	c := &RedisRateCache{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultRateTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisRateCache) tenantKey(tenantID id.ID) string {
	return c.prefix + tenantID.String()
}

func (c *RedisRateCache) Get(ctx context.Context, tenantID id.ID, day time.Time) (decimal.Decimal, bool, error) {
	raw, err := c.client.HGet(ctx, c.tenantKey(tenantID), dayKey(day)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get rate from cache: %w", err)
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		logger.Warn(ctx, "dropping malformed cached rate", "key", c.tenantKey(tenantID), "value", raw)
		_ = c.client.HDel(ctx, c.tenantKey(tenantID), dayKey(day)).Err()
		return decimal.Zero, false, nil
	}
	return rate, true, nil
}

func (c *RedisRateCache) Set(ctx context.Context, tenantID id.ID, day time.Time, rate decimal.Decimal) error {
	key := c.tenantKey(tenantID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, dayKey(day), rate.String())
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set rate in cache: %w", err)
	}
	return nil
}

func (c *RedisRateCache) Invalidate(ctx context.Context, tenantID id.ID) error {
	if err := c.client.Del(ctx, c.tenantKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("invalidate rate cache: %w", err)
	}
	return nil
}
