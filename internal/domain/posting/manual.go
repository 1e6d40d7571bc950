package posting

import (
	"context"
	"strings"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
)

// ManualLine is one line typed by a user.
type ManualLine struct {
	AccountID id.ID
	Side      Side
	Amount    types.Money
	Memo      string
}

// ManualInput is a hand-made entry. Kind is NORMAL or OPENING; closing
// entries only come from the year-end close.
type ManualInput struct {
	Date        time.Time
	Description string
	Kind        EntryKind
	Lines       []ManualLine
}

// PostManual validates and writes a manual or opening-balance entry.
// Unbalanced input is rejected and nothing is written.
func (e *Engine) PostManual(ctx context.Context, tenantID id.ID, in ManualInput) (*Entry, error) {
	kind := in.Kind
	if kind == "" {
		kind = KindNormal
	}
	if kind != KindNormal && kind != KindOpening {
		return nil, apperror.NewValidation("manual entries must be NORMAL or OPENING").
			WithDetail("kind", kind)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperror.NewValidation("description is required").WithDetail("field", "description")
	}

	legs := make([]Leg, 0, len(in.Lines))
	for i, l := range in.Lines {
		if !l.Amount.IsPositive() {
			return nil, apperror.NewValidation("line amount must be positive").WithDetail("lineNo", i+1)
		}
		accountID := l.AccountID
		legs = append(legs, Leg{AccountID: &accountID, Side: l.Side, Amount: l.Amount, Memo: l.Memo})
	}

	result, err := e.Post(ctx, Request{
		TenantID:    tenantID,
		Kind:        kind,
		Date:        in.Date,
		Description: in.Description,
		Legs:        legs,
	})
	if err != nil {
		return nil, err
	}
	return result.Entry, nil
}
