// Package expense records one-off expenses, posted as soon as they are
// created.
package expense

import (
	"context"
	"strings"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/documents"
)

// Kind classifies an expense.
type Kind string

const (
	KindSupplier Kind = "SUPPLIER"
	KindSalary   Kind = "SALARY"
	KindService  Kind = "SERVICE"
	KindOther    Kind = "OTHER"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSupplier, KindSalary, KindService, KindOther:
		return true
	}
	return false
}

// Expense is a paid or payable cost outside the purchase flow.
type Expense struct {
	entity.Document

	Kind        Kind                    `db:"kind" json:"kind"`
	Description string                  `db:"description" json:"description"`
	Amount      types.Money             `db:"amount" json:"amount"`
	Method      documents.PaymentMethod `db:"method" json:"method"`

	// SupplierID credits the supplier instead of the treasury account
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	EntryID *id.ID `db:"entry_id" json:"entryId,omitempty"`
}

// Validate implements entity.Validatable.
func (e *Expense) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}
	if !e.Kind.Valid() {
		return apperror.NewValidation("unknown expense kind").WithDetail("kind", e.Kind)
	}
	if strings.TrimSpace(e.Description) == "" {
		return apperror.NewValidation("description is required").WithDetail("field", "description")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").WithDetail("field", "amount")
	}
	if !e.Method.Valid() {
		return apperror.NewValidation("unknown payment method").WithDetail("method", e.Method)
	}
	if e.Kind == KindSupplier && e.SupplierID == nil {
		return apperror.NewValidation("supplier expenses need a supplier").WithDetail("field", "supplierId")
	}
	return nil
}

// Filter narrows expense listings.
type Filter struct {
	Kind     Kind
	DateFrom *time.Time
	DateTo   *time.Time
}

// Repository persists expenses.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, tenantID, expenseID id.ID) (*Expense, error)
	List(ctx context.Context, tenantID id.ID, filter Filter) ([]*Expense, error)
	LinkEntry(ctx context.Context, tenantID, expenseID, entryID id.ID) error
}
