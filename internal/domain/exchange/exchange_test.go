package exchange_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/exchange"
)

type mapCache struct {
	rates       map[string]decimal.Decimal
	hits        int
	invalidated int
}

func newMapCache() *mapCache {
	return &mapCache{rates: make(map[string]decimal.Decimal)}
}

func cacheKey(tenantID id.ID, day time.Time) string {
	return tenantID.String() + day.Format(time.DateOnly)
}

func (c *mapCache) Get(_ context.Context, tenantID id.ID, day time.Time) (decimal.Decimal, bool, error) {
	r, ok := c.rates[cacheKey(tenantID, day)]
	if ok {
		c.hits++
	}
	return r, ok, nil
}

func (c *mapCache) Set(_ context.Context, tenantID id.ID, day time.Time, rate decimal.Decimal) error {
	c.rates[cacheKey(tenantID, day)] = rate
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, _ id.ID) error {
	c.rates = make(map[string]decimal.Decimal)
	c.invalidated++
	return nil
}

func TestRateAt_FallsBackToTenantDefault(t *testing.T) {
	f := apptest.New(t)

	rate, err := f.Services.Exchange.RateAt(f.Ctx, f.TenantID(), apptest.Date(2024, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, "1", rate.String())
}

func TestRateAt_LatestOnOrBefore(t *testing.T) {
	f := apptest.New(t)
	svc := f.Services.Exchange

	_, err := svc.Set(f.Ctx, f.TenantID(), apptest.Date(2024, 1, 1), apptest.Amount("830"))
	require.NoError(t, err)
	_, err = svc.Set(f.Ctx, f.TenantID(), apptest.Date(2024, 6, 1), apptest.Amount("845.5"))
	require.NoError(t, err)

	before, err := svc.RateAt(f.Ctx, f.TenantID(), apptest.Date(2023, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "1", before.String())

	jan, err := svc.RateAt(f.Ctx, f.TenantID(), apptest.Date(2024, 5, 31))
	require.NoError(t, err)
	assert.Equal(t, "830", jan.String())

	june, err := svc.RateAt(f.Ctx, f.TenantID(), time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "845.5", june.String())

	usd, err := svc.Convert(f.Ctx, f.TenantID(), apptest.Date(2024, 3, 1), apptest.Amount("100000"))
	require.NoError(t, err)
	assert.Equal(t, "120.48", usd.StringFixed(2))
}

func TestSet_ReplacesSameDay(t *testing.T) {
	f := apptest.New(t)
	svc := f.Services.Exchange

	_, err := svc.Set(f.Ctx, f.TenantID(), apptest.Date(2024, 1, 1), apptest.Amount("830"))
	require.NoError(t, err)
	_, err = svc.Set(f.Ctx, f.TenantID(), apptest.Date(2024, 1, 1), apptest.Amount("835"))
	require.NoError(t, err)

	history, err := svc.History(f.Ctx, f.TenantID())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "835", history[0].Rate.String())

	require.NoError(t, svc.Delete(f.Ctx, f.TenantID(), history[0].ID))
	history, err = svc.History(f.Ctx, f.TenantID())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSet_Validation(t *testing.T) {
	f := apptest.New(t)

	_, err := f.Services.Exchange.Set(f.Ctx, f.TenantID(), apptest.Date(2024, 1, 1), decimal.Zero)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.Services.Exchange.Set(f.Ctx, f.TenantID(), time.Time{}, apptest.Amount("830"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRateAt_UsesCache(t *testing.T) {
	f := apptest.New(t)
	cache := newMapCache()
	svc := exchange.NewService(f.Store.Exchange(), f.Store.Tenants(), cache)

	_, err := svc.Set(f.Ctx, f.TenantID(), apptest.Date(2024, 1, 1), apptest.Amount("830"))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	for i := 0; i < 3; i++ {
		rate, err := svc.RateAt(f.Ctx, f.TenantID(), apptest.Date(2024, 2, 1))
		require.NoError(t, err)
		assert.Equal(t, "830", rate.String())
	}
	assert.Equal(t, 2, cache.hits)

	_, err = svc.Set(f.Ctx, f.TenantID(), apptest.Date(2024, 2, 1), apptest.Amount("840"))
	require.NoError(t, err)
	rate, err := svc.RateAt(f.Ctx, f.TenantID(), apptest.Date(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, "840", rate.String())
}

func TestConvert(t *testing.T) {
	assert.Equal(t, "10.00", exchange.Convert(apptest.Amount("8300"), apptest.Amount("830")).StringFixed(2))
	assert.True(t, exchange.Convert(apptest.Amount("8300"), decimal.Zero).IsZero())
}
