// Package exchange keeps the per-tenant history of reference-currency
// rates used to display foreign totals. Rates never affect postings.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/core/types"
	"pgcledger/pkg/logger"
)

// Rate is the number of base-currency units per reference-currency unit,
// valid from a date until the next entry.
type Rate struct {
	ID        id.ID           `db:"id" json:"id"`
	TenantID  id.ID           `db:"tenant_id" json:"tenantId"`
	ValidFrom time.Time       `db:"valid_from" json:"validFrom"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Repository persists rate history.
type Repository interface {
	// RateAt returns the most recent rate valid on or before date.
	RateAt(ctx context.Context, tenantID id.ID, date time.Time) (*Rate, error)
	List(ctx context.Context, tenantID id.ID) ([]*Rate, error)
	// Upsert replaces the rate valid from the same date.
	Upsert(ctx context.Context, r *Rate) error
	Delete(ctx context.Context, tenantID, rateID id.ID) error
}

// Cache memoizes rate lookups per (tenant, day).
type Cache interface {
	Get(ctx context.Context, tenantID id.ID, day time.Time) (decimal.Decimal, bool, error)
	Set(ctx context.Context, tenantID id.ID, day time.Time, rate decimal.Decimal) error
	Invalidate(ctx context.Context, tenantID id.ID) error
}

// Service resolves the rate in force for a tenant and a date.
type Service struct {
	repo    Repository
	tenants tenant.Registry
	cache   Cache
}

// NewService creates the exchange service. cache may be nil.
func NewService(repo Repository, tenants tenant.Registry, cache Cache) *Service {
	return &Service{repo: repo, tenants: tenants, cache: cache}
}

// RateAt returns the latest rate valid on or before date, else the
// tenant's default rate.
func (s *Service) RateAt(ctx context.Context, tenantID id.ID, date time.Time) (decimal.Decimal, error) {
	day := truncateDay(date)
	if s.cache != nil {
		rate, ok, err := s.cache.Get(ctx, tenantID, day)
		if err != nil {
			logger.Warn(ctx, "rate cache read failed", "error", err)
		} else if ok {
			return rate, nil
		}
	}

	rate, err := s.lookup(ctx, tenantID, day)
	if err != nil {
		return decimal.Zero, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, day, rate); err != nil {
			logger.Warn(ctx, "rate cache write failed", "error", err)
		}
	}
	return rate, nil
}

func (s *Service) lookup(ctx context.Context, tenantID id.ID, day time.Time) (decimal.Decimal, error) {
	r, err := s.repo.RateAt(ctx, tenantID, day)
	if err == nil {
		return r.Rate, nil
	}
	if !apperror.IsNotFound(err) {
		return decimal.Zero, fmt.Errorf("load rate: %w", err)
	}
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return t.DefaultExchangeRate, nil
}

// Convert divides a base-currency amount by the rate at date. A zero rate
// yields zero.
func (s *Service) Convert(ctx context.Context, tenantID id.ID, date time.Time, amount types.Money) (types.Money, error) {
	rate, err := s.RateAt(ctx, tenantID, date)
	if err != nil {
		return types.Zero(), err
	}
	return Convert(amount, rate), nil
}

// Convert returns amount / rate rounded to cents, or zero when rate is not
// positive.
func Convert(amount types.Money, rate decimal.Decimal) types.Money {
	if !rate.IsPositive() {
		return types.Zero()
	}
	return types.Round2(amount.Div(rate))
}

// Set records a rate valid from date.
func (s *Service) Set(ctx context.Context, tenantID id.ID, validFrom time.Time, rate decimal.Decimal) (*Rate, error) {
	if !rate.IsPositive() {
		return nil, apperror.NewValidation("exchange rate must be positive").WithDetail("field", "rate")
	}
	if validFrom.IsZero() {
		return nil, apperror.NewValidation("valid-from date is required").WithDetail("field", "validFrom")
	}
	r := &Rate{
		ID:        id.New(),
		TenantID:  tenantID,
		ValidFrom: truncateDay(validFrom),
		Rate:      rate,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	logger.Info(ctx, "exchange rate set", "valid_from", r.ValidFrom.Format(time.DateOnly), "rate", rate.String())
	return r, nil
}

// Delete removes one history entry.
func (s *Service) Delete(ctx context.Context, tenantID, rateID id.ID) error {
	if err := s.repo.Delete(ctx, tenantID, rateID); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

// History lists the tenant's rates, newest first.
func (s *Service) History(ctx context.Context, tenantID id.ID) ([]*Rate, error) {
	return s.repo.List(ctx, tenantID)
}

func (s *Service) invalidate(ctx context.Context, tenantID id.ID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		logger.Warn(ctx, "rate cache invalidation failed", "error", err)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
