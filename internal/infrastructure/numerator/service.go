// Package numerator implements core/numerator.Generator on the sys_sequences
// table. Every call bumps the counter row with an UPSERT ... RETURNING inside
// the caller's transaction; the row lock is held until commit, so numbers
// are gapless and strictly increasing per (scope, prefix, year).
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "pgcledger/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc returns the querier bound to ctx, normally the open
// transaction (postgres.TxManager.GetQuerier).
type QuerierFunc func(ctx context.Context) Querier

const nextSQL = `
	INSERT INTO sys_sequences (scope, prefix, year, current_value, updated_at)
	VALUES ($1, $2, $3, 1, now())
	ON CONFLICT (scope, prefix, year)
	DO UPDATE SET current_value = sys_sequences.current_value + 1, updated_at = now()
	RETURNING current_value`

const setSQL = `
	INSERT INTO sys_sequences (scope, prefix, year, current_value, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (scope, prefix, year)
	DO UPDATE SET current_value = $4, updated_at = now()
	RETURNING current_value`

// Service provides gapless numbering.
type Service struct {
	querier QuerierFunc
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator over a fixed querier.
func New(querier Querier) *Service {
	return &Service{querier: func(context.Context) Querier { return querier }}
}

// NewWithQuerierFunc creates a numerator that resolves its querier per call.
func NewWithQuerierFunc(fn QuerierFunc) *Service {
	return &Service{querier: fn}
}

// GetNextNumber generates the next number, e.g. FT/2024/00001.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.querier(ctx).QueryRow(ctx, nextSQL, cfg.Scope, cfg.Prefix, counterYear(cfg, period)).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number %s: %w", cfg.Key(period), err)
	}
	return cfg.Format(period, num), nil
}

// SetNextNumber stores value as the last issued number, so the next call
// returns value+1. Used when importing books kept elsewhere.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence value must not be negative: %d", value)
	}
	var result int64
	err := s.querier(ctx).QueryRow(ctx, setSQL, cfg.Scope, cfg.Prefix, counterYear(cfg, period), value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set number %s: %w", cfg.Key(period), err)
	}
	return nil
}

// counterYear is the year column of the counter row; 0 when the counter
// never resets.
func counterYear(cfg corenumerator.Config, period time.Time) int {
	if cfg.ResetPeriod == "year" {
		return period.Year()
	}
	return 0
}
