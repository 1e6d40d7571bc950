package invoice

import (
	"context"
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents"
)

// Repository defines persistence for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, tenantID, invoiceID id.ID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, tenantID, invoiceID id.ID) error

	GetItems(ctx context.Context, invoiceID id.ID) ([]documents.Item, error)
	SaveItems(ctx context.Context, invoiceID id.ID, items []documents.Item) error

	List(ctx context.Context, tenantID id.ID, filter ListFilter) (domain.ListResult[*Invoice], error)

	// GetForUpdate locks the invoice row until the transaction ends.
	GetForUpdate(ctx context.Context, tenantID, invoiceID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	State      documents.State
	DateFrom   *time.Time
	DateTo     *time.Time
}
