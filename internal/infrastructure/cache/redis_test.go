package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/id"
)

// unreachable returns a client whose every dial fails.
func unreachable(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:       "redis.invalid:6379",
		MaxRetries: -1,
		Dialer: func(context.Context, string, string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		},
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRateCache_Keys(t *testing.T) {
	tenantID := id.New()

	c := NewRedisRateCache(nil)
	assert.Equal(t, "pgc:fx:"+tenantID.String(), c.tenantKey(tenantID))
	assert.Equal(t, defaultRateTTL, c.ttl)

	c = NewRedisRateCache(nil, WithKeyPrefix("test:"), WithTTL(time.Minute), WithTTL(0))
	assert.Equal(t, "test:"+tenantID.String(), c.tenantKey(tenantID))
	assert.Equal(t, time.Minute, c.ttl)
}

func TestRedisRateCache_ConnectionErrors(t *testing.T) {
	ctx := context.Background()
	c := NewRedisRateCache(unreachable(t))
	tenantID := id.New()

	_, ok, err := c.Get(ctx, tenantID, day("2024-03-01"))
	require.Error(t, err)
	assert.False(t, ok)

	assert.Error(t, c.Set(ctx, tenantID, day("2024-03-01"), decimal.NewFromInt(1)))
	assert.Error(t, c.Invalidate(ctx, tenantID))
}
