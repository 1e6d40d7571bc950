package numerator

import (
	"context"
	"time"
)

// Generator produces gapless sequential numbers.
// Implementations must be called inside the transaction that persists the
// numbered record, so a rollback also releases the number.
type Generator interface {
	// GetNextNumber generates the next number, e.g. FT/2025/00001.
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)

	// SetNextNumber sets the counter value (for migration purposes).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
