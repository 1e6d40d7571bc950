package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const accountsTable = "accounts"

// AccountRepo implements chart.Repository. A nil tenant addresses the
// global template rows (tenant_id IS NULL).
type AccountRepo struct {
	*BaseCatalogRepo[*chart.Account]
	inserter *postgres.BatchInserter
}

var _ chart.Repository = (*AccountRepo)(nil)

// NewAccountRepo creates a new chart repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	base := NewBaseCatalogRepo(
		txManager,
		accountsTable,
		postgres.ExtractDBColumns[chart.Account](),
		func() *chart.Account { return &chart.Account{} },
	)
	base.searchCols = []string{"code", "description"}
	base.defaultOrder = "code"
	return &AccountRepo{
		BaseCatalogRepo: base,
		inserter:        postgres.NewBatchInserter(txManager),
	}
}

// scope restricts a query to one tier of the chart.
func scope(tenantID *id.ID) squirrel.Sqlizer {
	if tenantID == nil {
		return squirrel.Eq{"tenant_id": nil}
	}
	return squirrel.Eq{"tenant_id": *tenantID}
}

func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*chart.Account, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": accountID}), accountID.String())
}

func (r *AccountRepo) findByCodeQuery(tenantID *id.ID, code string) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(scope(tenantID)).
		Where(squirrel.Eq{"code": code})
}

func (r *AccountRepo) FindByCode(ctx context.Context, tenantID *id.ID, code string) (*chart.Account, error) {
	return r.get(ctx, r.findByCodeQuery(tenantID, code), code)
}

// findPostableQuery selects the lowest postable code matching c. Codes
// compare as text, the same order the memory store and the tree use.
func (r *AccountRepo) findPostableQuery(tenantID *id.ID, c chart.Candidate) squirrel.SelectBuilder {
	q := r.baseSelect().
		Where(scope(tenantID)).
		Where(squirrel.Eq{"accepts_postings": true})
	if c.Prefix {
		q = q.Where(squirrel.Like{"code": escapeLike(c.Code) + "%"})
	} else {
		q = q.Where(squirrel.Eq{"code": c.Code})
	}
	return q.OrderBy("code COLLATE \"C\"")
}

func (r *AccountRepo) FindPostable(ctx context.Context, tenantID *id.ID, c chart.Candidate) (*chart.Account, error) {
	return r.get(ctx, r.findPostableQuery(tenantID, c), c.String())
}

func (r *AccountRepo) List(ctx context.Context, tenantID *id.ID) ([]chart.Account, error) {
	items, err := r.selectAll(ctx, r.baseSelect().Where(scope(tenantID)).OrderBy("code COLLATE \"C\""))
	if err != nil {
		return nil, err
	}
	out := make([]chart.Account, len(items))
	for i, acc := range items {
		out[i] = *acc
	}
	return out, nil
}

func (r *AccountRepo) childrenQuery(parentIDs []id.ID) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"parent_id": parentIDs}).
		OrderBy("code COLLATE \"C\"")
}

// Children reads across tiers: no tenant filter.
func (r *AccountRepo) Children(ctx context.Context, parentIDs []id.ID) ([]chart.Account, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	items, err := r.selectAll(ctx, r.childrenQuery(parentIDs))
	if err != nil {
		return nil, err
	}
	out := make([]chart.Account, len(items))
	for i, acc := range items {
		out[i] = *acc
	}
	return out, nil
}

func (r *AccountRepo) Count(ctx context.Context, tenantID *id.ID) (int, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(accountsTable).
		Where(scope(tenantID)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// Create maps a taken (code, tenant) to Duplicate.
func (r *AccountRepo) Create(ctx context.Context, acc *chart.Account) error {
	err := r.BaseCatalogRepo.Create(ctx, acc)
	if apperror.IsDuplicate(err) {
		return apperror.NewDuplicate("account", "code", acc.Code)
	}
	return err
}

// CreateBatch copies the accounts with COPY. Parents must precede children.
func (r *AccountRepo) CreateBatch(ctx context.Context, accounts []chart.Account) error {
	_, err := postgres.CopyStructs(ctx, r.inserter, accountsTable, r.selectCols, accounts)
	if err != nil {
		return postgres.MapError(err, "account", len(accounts))
	}
	return nil
}

func (r *AccountRepo) Update(ctx context.Context, acc *chart.Account) error {
	err := r.BaseCatalogRepo.Update(ctx, acc, "tenant_id")
	if apperror.IsDuplicate(err) {
		return apperror.NewDuplicate("account", "code", acc.Code)
	}
	return err
}

// DeleteMany removes accounts one statement at a time, in the given order,
// so children go before their parents.
func (r *AccountRepo) DeleteMany(ctx context.Context, ids []id.ID) error {
	batch := r.deleteBatch(ids)
	if batch.Len() == 0 {
		return nil
	}

	results := r.querier(ctx).SendBatch(ctx, batch)
	defer results.Close()
	for _, accountID := range ids {
		if _, err := results.Exec(); err != nil {
			return postgres.MapError(err, "account", accountID)
		}
	}
	return nil
}

func (r *AccountRepo) deleteBatch(ids []id.ID) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, accountID := range ids {
		batch.Queue("DELETE FROM "+accountsTable+" WHERE id = $1", accountID)
	}
	return batch
}

func (r *AccountRepo) hasPostingsQuery(ids []id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select("1").
		From("journal_lines").
		Where(squirrel.Eq{"account_id": ids}).
		Limit(1)
}

func (r *AccountRepo) HasPostings(ctx context.Context, ids []id.ID) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	sql, args, err := r.hasPostingsQuery(ids).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has postings: %w", err)
	}
	return true, nil
}

// escapeLike escapes LIKE wildcards in a code prefix.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
