package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/core/types"
	"pgcledger/pkg/logger"
)

// Repository persists the global IRT table and rate catalog.
type Repository interface {
	ListBrackets(ctx context.Context) (Table, error)

	// ReplaceBrackets deletes every bracket and inserts t.
	ReplaceBrackets(ctx context.Context, t Table) error

	ListRates(ctx context.Context) ([]Rate, error)

	// GetRate returns NotFound for an unknown code.
	GetRate(ctx context.Context, code string) (*Rate, error)

	// UpsertRate creates or updates by code.
	UpsertRate(ctx context.Context, r Rate) error
}

// Service exposes the tax tables.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new tax service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Brackets returns the IRT table.
func (s *Service) Brackets(ctx context.Context) (Table, error) {
	return s.repo.ListBrackets(ctx)
}

// ComputeIRT applies the stored table to taxable income.
func (s *Service) ComputeIRT(ctx context.Context, income types.Money) (types.Money, error) {
	t, err := s.repo.ListBrackets(ctx)
	if err != nil {
		return types.Zero(), err
	}
	return t.Compute(income), nil
}

// ReplaceBrackets validates and stores a new IRT table.
func (s *Service) ReplaceBrackets(ctx context.Context, t Table) error {
	seen := make(map[string]bool, len(t))
	for i, b := range t {
		if !b.Limit.IsPositive() || b.Rate.IsNegative() || b.Fixed.IsNegative() || b.Excess.IsNegative() {
			return apperror.NewValidation("invalid IRT bracket").WithDetail("row", i+1)
		}
		key := b.Limit.String()
		if seen[key] {
			return apperror.NewValidation("duplicate IRT bracket limit").WithDetail("limit", key)
		}
		seen[key] = true
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.ReplaceBrackets(ctx, t.Sorted())
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "IRT table replaced", "brackets", len(t))
	return nil
}

// ResetBrackets restores DefaultBrackets.
func (s *Service) ResetBrackets(ctx context.Context) error {
	return s.ReplaceBrackets(ctx, DefaultBrackets())
}

// Rates returns the rate catalog.
func (s *Service) Rates(ctx context.Context) ([]Rate, error) {
	return s.repo.ListRates(ctx)
}

// RateValue returns the active rate for code, or fallback when the code is
// missing or inactive.
func (s *Service) RateValue(ctx context.Context, code string, fallback decimal.Decimal) (decimal.Decimal, error) {
	r, err := s.repo.GetRate(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return fallback, nil
		}
		return decimal.Zero, err
	}
	if !r.Active {
		return fallback, nil
	}
	return r.Rate, nil
}

// ResetRates upserts DefaultRates, keeping codes not in the defaults.
func (s *Service) ResetRates(ctx context.Context) error {
	now := time.Now().UTC()
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, r := range DefaultRates() {
			r.UpdatedAt = now
			if err := s.repo.UpsertRate(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "tax rates reset to defaults")
	return nil
}
