// Package invoice implements sales invoices: drafting, issue, payments,
// withholding confirmation and voiding, each with its journal posting.
package invoice

import (
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/documents"
)

// Invoice is a sales invoice to a customer.
type Invoice struct {
	documents.Commercial

	// CustomerRef is the customer's own order reference
	CustomerRef string `db:"customer_ref" json:"customerRef,omitempty"`
}

// New creates a draft invoice.
func New(tenantID, customerID id.ID, date, dueDate time.Time) *Invoice {
	return &Invoice{Commercial: documents.NewCommercial(tenantID, customerID, date, dueDate)}
}

// CustomerID returns the invoiced party.
func (inv *Invoice) CustomerID() id.ID {
	return inv.PartyID
}
