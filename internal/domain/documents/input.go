package documents

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/tax"
)

// ItemInput is one requested document line.
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   types.Money
	TaxRate     decimal.Decimal
}

// BuildItems turns requested lines into computed items.
func BuildItems(in []ItemInput) []Item {
	items := make([]Item, 0, len(in))
	for _, it := range in {
		items = append(items, NewItem(strings.TrimSpace(it.Description), it.Quantity, it.UnitPrice, it.TaxRate))
	}
	return items
}

// RateSource looks rates up in the tax catalog.
type RateSource interface {
	RateValue(ctx context.Context, code string, fallback decimal.Decimal) (decimal.Decimal, error)
}

// defaultWithholdingRate is used when neither the request nor the catalog
// carries a rate.
var defaultWithholdingRate = decimal.RequireFromString("6.5")

// WithholdingRate returns requested when set, else the catalog rate for
// services.
func WithholdingRate(ctx context.Context, rates RateSource, apply bool, requested decimal.Decimal) (decimal.Decimal, error) {
	if !apply {
		return decimal.Zero, nil
	}
	if requested.IsPositive() {
		return requested, nil
	}
	if rates == nil {
		return defaultWithholdingRate, nil
	}
	return rates.RateValue(ctx, tax.RateWithholdingServ, defaultWithholdingRate)
}
