package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/exchange"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const exchangeTable = "exchange_rates"

// ExchangeRepo implements exchange.Repository.
type ExchangeRepo struct {
	*BaseCatalogRepo[*exchange.Rate]
}

var _ exchange.Repository = (*ExchangeRepo)(nil)

// NewExchangeRepo creates a new exchange rate repository.
func NewExchangeRepo(txManager *postgres.TxManager) *ExchangeRepo {
	base := NewBaseCatalogRepo(
		txManager,
		exchangeTable,
		postgres.ExtractDBColumns[exchange.Rate](),
		func() *exchange.Rate { return &exchange.Rate{} },
	)
	base.defaultOrder = "valid_from DESC"
	return &ExchangeRepo{BaseCatalogRepo: base}
}

func (r *ExchangeRepo) rateAtQuery(tenantID id.ID, date time.Time) squirrel.SelectBuilder {
	return r.tenantSelect(tenantID).
		Where(squirrel.LtOrEq{"valid_from": date}).
		OrderBy("valid_from DESC")
}

func (r *ExchangeRepo) RateAt(ctx context.Context, tenantID id.ID, date time.Time) (*exchange.Rate, error) {
	rate, err := r.get(ctx, r.rateAtQuery(tenantID, date), date.Format(time.DateOnly))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("exchange rate", date.Format(time.DateOnly))
	}
	return rate, err
}

func (r *ExchangeRepo) List(ctx context.Context, tenantID id.ID) ([]*exchange.Rate, error) {
	return r.selectAll(ctx, r.tenantSelect(tenantID).OrderBy("valid_from DESC"))
}

func (r *ExchangeRepo) upsertQuery(rate *exchange.Rate) squirrel.InsertBuilder {
	return r.Builder().
		Insert(exchangeTable).
		Columns("id", "tenant_id", "valid_from", "rate", "created_at").
		Values(rate.ID, rate.TenantID, rate.ValidFrom, rate.Rate, rate.CreatedAt).
		Suffix("ON CONFLICT (tenant_id, valid_from) DO UPDATE SET rate = EXCLUDED.rate RETURNING id")
}

// Upsert keeps the ID of an existing entry for the same day and writes it
// back to rate.
func (r *ExchangeRepo) Upsert(ctx context.Context, rate *exchange.Rate) error {
	sql, args, err := r.upsertQuery(rate).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&rate.ID); err != nil {
		return postgres.MapError(err, "exchange rate", rate.ValidFrom.Format(time.DateOnly))
	}
	return nil
}

func (r *ExchangeRepo) Delete(ctx context.Context, tenantID, rateID id.ID) error {
	err := r.BaseCatalogRepo.Delete(ctx, tenantID, rateID)
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("exchange rate", rateID.String())
	}
	return err
}
