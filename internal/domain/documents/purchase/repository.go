package purchase

import (
	"context"
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents"
)

// Repository defines persistence for purchases.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, tenantID, purchaseID id.ID) (*Purchase, error)
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, tenantID, purchaseID id.ID) error

	GetItems(ctx context.Context, purchaseID id.ID) ([]documents.Item, error)
	SaveItems(ctx context.Context, purchaseID id.ID, items []documents.Item) error

	List(ctx context.Context, tenantID id.ID, filter ListFilter) (domain.ListResult[*Purchase], error)

	// GetForUpdate locks the purchase row until the transaction ends.
	GetForUpdate(ctx context.Context, tenantID, purchaseID id.ID) (*Purchase, error)
}

// ListFilter for filtering purchases.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	State      documents.State
	DateFrom   *time.Time
	DateTo     *time.Time
}
