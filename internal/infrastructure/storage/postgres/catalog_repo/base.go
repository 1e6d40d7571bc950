// Package catalog_repo provides PostgreSQL implementations for reference data:
// the chart of accounts, parties, tax tables and exchange rates.
// All companies share one database; queries are scoped by tenant_id.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides common CRUD operations for reference entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	selectCols []string
	newFn      func() T

	// searchCols are matched by ListFilter.Search
	searchCols []string
	// orderCols whitelists ListFilter.OrderBy
	orderCols map[string]bool
	// defaultOrder is used when OrderBy is empty
	defaultOrder string
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](
	txManager *postgres.TxManager,
	tableName string,
	selectCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	order := make(map[string]bool, len(selectCols))
	for _, c := range selectCols {
		order[c] = true
	}
	return &BaseCatalogRepo[T]{
		txManager:    txManager,
		tableName:    tableName,
		selectCols:   selectCols,
		newFn:        newFn,
		searchCols:   []string{"name"},
		orderCols:    order,
		defaultOrder: "id",
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// querier returns the open transaction or the pool.
func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// baseSelect creates a SELECT builder.
func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// tenantSelect creates a SELECT builder for one company's rows.
func (r *BaseCatalogRepo[T]) tenantSelect(tenantID id.ID) squirrel.SelectBuilder {
	return r.baseSelect().Where(squirrel.Eq{"tenant_id": tenantID})
}

// insertQuery builds the INSERT of entity restricted to selectCols.
func (r *BaseCatalogRepo[T]) insertQuery(entity T) (squirrel.InsertBuilder, error) {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return squirrel.InsertBuilder{}, fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	return r.Builder().
		Insert(r.tableName).
		SetMap(filteredData), nil
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	q, err := r.insertQuery(entity)
	if err != nil {
		return err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, r.tableName, postgres.StructToMap(entity)["id"])
	}
	return nil
}

// updateQuery builds an optimistic-locking UPDATE: it matches the current
// version and increments it.
func (r *BaseCatalogRepo[T]) updateQuery(entity T, immutable ...string) (squirrel.UpdateBuilder, any, error) {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return squirrel.UpdateBuilder{}, nil, fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return squirrel.UpdateBuilder{}, nil, fmt.Errorf("entity has no 'id' field with db tag")
	}

	version, ok := data["version"].(int)
	if !ok {
		return squirrel.UpdateBuilder{}, nil, fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	skip := map[string]bool{"id": true, "version": true}
	for _, c := range immutable {
		skip[c] = true
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if skip[col] {
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})
	return q, entityID, nil
}

// Update modifies an existing entity with optimistic locking. immutable
// columns are never written.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T, immutable ...string) error {
	q, entityID, err := r.updateQuery(entity, immutable...)
	if err != nil {
		return err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.tableName, entityID)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, entityID)
	}

	if v, ok := any(entity).(versioned); ok {
		v.Touch()
	}
	return nil
}

// versioned is implemented by entities embedding entity.BaseEntity.
type versioned interface {
	Touch()
}

// get scans the single row selected by q.
func (r *BaseCatalogRepo[T]) get(ctx context.Context, q squirrel.SelectBuilder, key any) (T, error) {
	entity := r.newFn()

	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// selectAll scans every row selected by q.
func (r *BaseCatalogRepo[T]) selectAll(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}

// GetByID retrieves one company's entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, tenantID, entityID id.ID) (T, error) {
	return r.get(ctx, r.tenantSelect(tenantID).Where(squirrel.Eq{"id": entityID}), entityID.String())
}

// listQuery applies search to q.
func (r *BaseCatalogRepo[T]) listQuery(q squirrel.SelectBuilder, filter domain.ListFilter) squirrel.SelectBuilder {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		or := squirrel.Or{}
		for _, c := range r.searchCols {
			or = append(or, squirrel.ILike{c: pattern})
		}
		q = q.Where(or)
	}
	return q
}

// List retrieves entities with filtering and pagination. q carries the
// caller's WHERE clauses.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q = r.listQuery(q, filter)

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	items, err := r.selectAll(ctx, q)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// parseOrderBy validates "col" or "-col" against the whitelist.
func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return r.defaultOrder, nil
	}

	desc := strings.HasPrefix(orderBy, "-")
	col := strings.TrimPrefix(orderBy, "-")
	if !r.orderCols[col] {
		return "", apperror.NewValidation("invalid order column").WithDetail("orderBy", orderBy)
	}
	if desc {
		return col + " DESC", nil
	}
	return col + " ASC", nil
}

// Delete performs physical removal of one company's row.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, tenantID, entityID id.ID) error {
	q := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"tenant_id": tenantID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.tableName, entityID)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}
	return nil
}
