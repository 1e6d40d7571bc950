package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const expensesTable = "expenses"

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	*BaseDocumentRepo[*expense.Expense]
}

var _ expense.Repository = (*ExpenseRepo)(nil)

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			expensesTable,
			"expense",
			postgres.ExtractDBColumns[expense.Expense](),
			func() *expense.Expense { return &expense.Expense{} },
		),
	}
}

func (r *ExpenseRepo) listQuery(tenantID id.ID, filter expense.Filter) squirrel.SelectBuilder {
	q := r.baseSelect(tenantID)
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": filter.Kind})
	}
	return dateRange{from: filter.DateFrom, to: filter.DateTo}.apply(q).OrderBy("number")
}

func (r *ExpenseRepo) List(ctx context.Context, tenantID id.ID, filter expense.Filter) ([]*expense.Expense, error) {
	sql, args, err := r.listQuery(tenantID, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*expense.Expense
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *ExpenseRepo) LinkEntry(ctx context.Context, tenantID, expenseID, entryID id.ID) error {
	return r.linkEntry(ctx, tenantID, expenseID, entryID)
}
