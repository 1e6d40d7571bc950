package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/domain/tax"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const (
	bracketsTable = "irt_brackets"
	ratesTable    = "tax_rates"
)

// TaxRepo implements tax.Repository. Both tables are global.
type TaxRepo struct {
	rates *BaseCatalogRepo[*tax.Rate]
}

var _ tax.Repository = (*TaxRepo)(nil)

// NewTaxRepo creates a new tax table repository.
func NewTaxRepo(txManager *postgres.TxManager) *TaxRepo {
	rates := NewBaseCatalogRepo(
		txManager,
		ratesTable,
		postgres.ExtractDBColumns[tax.Rate](),
		func() *tax.Rate { return &tax.Rate{} },
	)
	rates.defaultOrder = "code"
	return &TaxRepo{rates: rates}
}

func (r *TaxRepo) ListBrackets(ctx context.Context) (tax.Table, error) {
	sql, args, err := r.rates.Builder().
		Select("limit_amount", "rate", "fixed_amount", "excess").
		From(bracketsTable).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*tax.Bracket
	if err := pgxscan.Select(ctx, r.rates.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list irt brackets: %w", err)
	}
	t := make(tax.Table, len(rows))
	for i, b := range rows {
		t[i] = *b
	}
	return t, nil
}

// replaceBracketsQuery numbers the rows in the given order.
func (r *TaxRepo) replaceBracketsQuery(t tax.Table) squirrel.InsertBuilder {
	q := r.rates.Builder().
		Insert(bracketsTable).
		Columns("position", "limit_amount", "rate", "fixed_amount", "excess")
	for i, b := range t {
		q = q.Values(i+1, b.Limit, b.Rate, b.Fixed, b.Excess)
	}
	return q
}

// ReplaceBrackets must run inside a transaction to be atomic.
func (r *TaxRepo) ReplaceBrackets(ctx context.Context, t tax.Table) error {
	querier := r.rates.querier(ctx)
	if _, err := querier.Exec(ctx, "DELETE FROM "+bracketsTable); err != nil {
		return fmt.Errorf("clear irt brackets: %w", err)
	}
	if len(t) == 0 {
		return nil
	}

	sql, args, err := r.replaceBracketsQuery(t).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "irt bracket", len(t))
	}
	return nil
}

func (r *TaxRepo) ListRates(ctx context.Context) ([]tax.Rate, error) {
	items, err := r.rates.selectAll(ctx, r.rates.baseSelect().OrderBy("code"))
	if err != nil {
		return nil, err
	}
	out := make([]tax.Rate, len(items))
	for i, rate := range items {
		out[i] = *rate
	}
	return out, nil
}

func (r *TaxRepo) GetRate(ctx context.Context, code string) (*tax.Rate, error) {
	rate, err := r.rates.get(ctx, r.rates.baseSelect().Where(squirrel.Eq{"code": code}), code)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("tax rate", code)
	}
	return rate, err
}

func (r *TaxRepo) upsertRateQuery(rate tax.Rate) squirrel.InsertBuilder {
	return r.rates.Builder().
		Insert(ratesTable).
		Columns("code", "name", "rate", "description", "active", "updated_at").
		Values(rate.Code, rate.Name, rate.Rate, rate.Description, rate.Active, rate.UpdatedAt).
		Suffix("ON CONFLICT (code) DO UPDATE SET " +
			"name = EXCLUDED.name, rate = EXCLUDED.rate, description = EXCLUDED.description, " +
			"active = EXCLUDED.active, updated_at = EXCLUDED.updated_at")
}

func (r *TaxRepo) UpsertRate(ctx context.Context, rate tax.Rate) error {
	sql, args, err := r.upsertRateQuery(rate).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.rates.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "tax rate", rate.Code)
	}
	return nil
}
