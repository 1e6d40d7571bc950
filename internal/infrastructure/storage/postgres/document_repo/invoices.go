package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "invoices"
	invoiceItemsTable = "invoice_items"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			invoicesTable,
			"invoice",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		).withItems(invoiceItemsTable, "invoice_id"),
	}
}

func (r *InvoiceRepo) listQuery(tenantID id.ID, filter invoice.ListFilter) squirrel.SelectBuilder {
	return commercialWhere(r.baseSelect(tenantID), filter.CustomerID, filter.State,
		dateRange{from: filter.DateFrom, to: filter.DateTo})
}

func (r *InvoiceRepo) List(ctx context.Context, tenantID id.ID, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	return r.list(ctx, r.listQuery(tenantID, filter), filter.ListFilter)
}
