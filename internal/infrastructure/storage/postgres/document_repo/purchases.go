package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents/purchase"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "purchases"
	purchaseItemsTable = "purchase_items"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			purchasesTable,
			"purchase",
			postgres.ExtractDBColumns[purchase.Purchase](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		).withItems(purchaseItemsTable, "purchase_id"),
	}
}

func (r *PurchaseRepo) listQuery(tenantID id.ID, filter purchase.ListFilter) squirrel.SelectBuilder {
	q := commercialWhere(r.baseSelect(tenantID), filter.SupplierID, filter.State,
		dateRange{from: filter.DateFrom, to: filter.DateTo})
	if filter.Search != "" {
		q = q.Where(squirrel.Or{
			squirrel.ILike{"supplier_ref": "%" + filter.Search + "%"},
			squirrel.ILike{"number": "%" + filter.Search + "%"},
		})
	}
	return q
}

func (r *PurchaseRepo) List(ctx context.Context, tenantID id.ID, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	page := filter.ListFilter
	page.Search = ""
	return r.list(ctx, r.listQuery(tenantID, filter), page)
}
