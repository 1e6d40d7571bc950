package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const paymentsTable = "payments"

// PaymentRepo implements documents.PaymentRepository for every document type.
type PaymentRepo struct {
	*BaseDocumentRepo[*documents.Payment]
}

var _ documents.PaymentRepository = (*PaymentRepo)(nil)

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			paymentsTable,
			"payment",
			postgres.ExtractDBColumns[documents.Payment](),
			func() *documents.Payment { return &documents.Payment{} },
		),
	}
}

func (r *PaymentRepo) listQuery(tenantID id.ID, docType posting.SourceType, docID id.ID) squirrel.SelectBuilder {
	return r.baseSelect(tenantID).
		Where(squirrel.Eq{"document_type": docType}).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("created_at")
}

// List returns the payments of one document in the order they were made.
func (r *PaymentRepo) List(ctx context.Context, tenantID id.ID, docType posting.SourceType, docID id.ID) ([]*documents.Payment, error) {
	sql, args, err := r.listQuery(tenantID, docType, docID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*documents.Payment
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

func (r *PaymentRepo) LinkEntry(ctx context.Context, tenantID, paymentID, entryID id.ID) error {
	return r.linkEntry(ctx, tenantID, paymentID, entryID)
}
