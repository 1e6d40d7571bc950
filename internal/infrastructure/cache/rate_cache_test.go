package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/id"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestRateCache_GetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewRateCache(nil)
	a, b := id.New(), id.New()

	_, ok, err := c.Get(ctx, a, day("2024-03-01"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, a, day("2024-03-01"), decimal.RequireFromString("830.5")))
	require.NoError(t, c.Set(ctx, b, day("2024-03-01"), decimal.RequireFromString("900")))

	rate, ok, err := c.Get(ctx, a, day("2024-03-01"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "830.5", rate.String())
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Invalidate(ctx, a))
	_, ok, _ = c.Get(ctx, a, day("2024-03-01"))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, b, day("2024-03-01"))
	assert.True(t, ok, "other tenants keep their entries")
}

func TestRateCache_HandleNotification(t *testing.T) {
	ctx := context.Background()
	c := NewRateCache(nil)
	a, b := id.New(), id.New()
	_ = c.Set(ctx, a, day("2024-03-01"), decimal.NewFromInt(1))
	_ = c.Set(ctx, b, day("2024-03-01"), decimal.NewFromInt(2))

	c.handleNotification("other_channel", a.String())
	assert.Equal(t, 2, c.Len())

	c.handleNotification(RatesChannel, " "+a.String()+" ")
	assert.Equal(t, 1, c.Len())

	c.handleNotification(RatesChannel, "garbage")
	assert.Equal(t, 0, c.Len())
}

func TestRateCache_Listeners(t *testing.T) {
	c := NewRateCache(nil)
	tenantID := id.New()

	var got []*id.ID
	c.OnInvalidation(func(*id.ID) { panic("boom") })
	c.OnInvalidation(func(t *id.ID) { got = append(got, t) })

	require.NoError(t, c.Invalidate(context.Background(), tenantID))
	c.handleNotification(RatesChannel, "")

	require.Len(t, got, 2)
	require.NotNil(t, got[0])
	assert.Equal(t, tenantID, *got[0])
	assert.Nil(t, got[1])
}

func TestRateCache_StartWithoutPool(t *testing.T) {
	c := NewRateCache(nil)
	require.NoError(t, c.Start(context.Background()))
	c.Stop()
}
