package entity

import (
	"context"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
)

// Document is the base type for commercial documents (invoices, purchases,
// expenses). Every document belongs to exactly one tenant.
type Document struct {
	BaseDocument

	TenantID id.ID `db:"tenant_id" json:"tenantId"`

	// Number is assigned at creation (PREFIX/YYYY/NNNNN)
	Number string `db:"number" json:"number"`

	// Date is the business date; it selects the fiscal year for numbering
	Date time.Time `db:"date" json:"date"`

	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(tenantID id.ID, date time.Time) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		TenantID:     tenantID,
		Date:         date,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.TenantID) {
		return apperror.NewValidation("tenant is required").
			WithDetail("field", "tenantId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetTenantID returns the owning tenant.
func (d *Document) GetTenantID() id.ID {
	return d.TenantID
}
