package reports

import (
	"context"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/posting"
)

// Repository reads journal aggregates for reports.
type Repository interface {
	// Totals sums lines per account, skipping accounts without movement.
	Totals(ctx context.Context, tenantID id.ID, filter MovementFilter) ([]AccountTotals, error)

	// Movements lists the lines of one account ordered by date and number.
	Movements(ctx context.Context, tenantID, accountID id.ID, period Period) ([]Movement, error)

	// DocumentTaxTotals sums subtotal and VAT of posted documents of one type.
	DocumentTaxTotals(ctx context.Context, tenantID id.ID, source posting.SourceType, period Period) (TaxTotals, error)
}
