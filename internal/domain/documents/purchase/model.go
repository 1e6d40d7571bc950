// Package purchase implements supplier invoices: registration, payments,
// settlement of the withheld tax and voiding.
package purchase

import (
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/documents"
)

// Purchase is a supplier invoice received by the tenant.
type Purchase struct {
	documents.Commercial

	// SupplierRef is the number printed on the supplier's invoice
	SupplierRef string `db:"supplier_ref" json:"supplierRef,omitempty"`
}

// New creates a draft purchase.
func New(tenantID, supplierID id.ID, date, dueDate time.Time) *Purchase {
	return &Purchase{Commercial: documents.NewCommercial(tenantID, supplierID, date, dueDate)}
}

// SupplierID returns the billing party.
func (p *Purchase) SupplierID() id.ID {
	return p.PartyID
}
