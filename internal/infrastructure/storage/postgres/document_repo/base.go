// Package document_repo provides PostgreSQL implementations for document repositories.
// Every document row carries tenant_id and every query filters on it.
package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/infrastructure/storage/postgres"
)

// itemCols are the columns of documents.Item; the owning document column
// comes first in every items table.
var itemCols = postgres.ExtractDBColumns[documents.Item]()

// BaseDocumentRepo provides common CRUD operations for document entities.
type BaseDocumentRepo[T any] struct {
	txManager  *postgres.TxManager
	inserter   *postgres.BatchInserter
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T

	// itemsTable and itemsFK are empty for documents without lines
	itemsTable string
	itemsFK    string
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T any](
	txManager *postgres.TxManager,
	tableName string,
	entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txManager:  txManager,
		inserter:   postgres.NewBatchInserter(txManager),
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// withItems attaches a line table to the repository.
func (r *BaseDocumentRepo[T]) withItems(table, fk string) *BaseDocumentRepo[T] {
	r.itemsTable = table
	r.itemsFK = fk
	return r
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new document. A taken number maps to Duplicate.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		err = postgres.MapError(err, r.entityName, data["id"])
		if apperror.IsDuplicate(err) {
			return apperror.NewDuplicate(r.entityName, "number", fmt.Sprint(data["number"]))
		}
		return err
	}
	return nil
}

// updateQuery matches the stored version and increments it. Identity and
// numbering columns are never written.
func (r *BaseDocumentRepo[T]) updateQuery(entity T) (squirrel.UpdateBuilder, any, error) {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return squirrel.UpdateBuilder{}, nil, fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return squirrel.UpdateBuilder{}, nil, fmt.Errorf("entity has no 'id' field")
	}

	version, ok := data["version"].(int)
	if !ok {
		return squirrel.UpdateBuilder{}, nil, fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "tenant_id", "number", "created_at":
			continue
		case "version", "updated_at":
			continue // managed by repo
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1"))
	if r.hasColumn("updated_at") {
		q = q.Set("updated_at", squirrel.Expr("NOW()"))
	}
	q = q.Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"tenant_id": data["tenant_id"]}).
		Where(squirrel.Eq{"version": version})
	return q, entityID, nil
}

func (r *BaseDocumentRepo[T]) hasColumn(col string) bool {
	for _, c := range r.selectCols {
		if c == col {
			return true
		}
	}
	return false
}

// Update updates an existing document with optimistic locking.
func (r *BaseDocumentRepo[T]) Update(ctx context.Context, entity T) error {
	q, entityID, err := r.updateQuery(entity)
	if err != nil {
		return err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.entityName, entityID)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entityName, entityID)
	}

	if t, ok := any(entity).(interface{ Touch() }); ok {
		t.Touch()
	}
	return nil
}

// Delete removes a document and, through the foreign key, its lines.
func (r *BaseDocumentRepo[T]) Delete(ctx context.Context, tenantID, entityID id.ID) error {
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
		return postgres.MapError(err, r.entityName, entityID)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// baseSelect creates a SELECT builder over one tenant's rows.
func (r *BaseDocumentRepo[T]) baseSelect(tenantID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"tenant_id": tenantID})
}

func (r *BaseDocumentRepo[T]) get(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

// GetByID retrieves a document by ID.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, tenantID, entityID id.ID) (T, error) {
	return r.get(ctx, r.baseSelect(tenantID).Where(squirrel.Eq{"id": entityID}), entityID.String())
}

// GetByNumber retrieves a document by Number.
func (r *BaseDocumentRepo[T]) GetByNumber(ctx context.Context, tenantID id.ID, number string) (T, error) {
	return r.get(ctx, r.baseSelect(tenantID).Where(squirrel.Eq{"number": number}), number)
}

func (r *BaseDocumentRepo[T]) forUpdateQuery(tenantID, entityID id.ID) squirrel.SelectBuilder {
	return r.baseSelect(tenantID).
		Where(squirrel.Eq{"id": entityID}).
		Suffix("FOR UPDATE")
}

// GetForUpdate retrieves document with row lock.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, tenantID, entityID id.ID) (T, error) {
	return r.get(ctx, r.forUpdateQuery(tenantID, entityID), entityID.String())
}

// list counts and pages q. q carries the caller's WHERE clauses.
func (r *BaseDocumentRepo[T]) list(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	// Count
	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	// Order
	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

// commercialWhere applies the filters shared by invoices and purchases.
func commercialWhere(q squirrel.SelectBuilder, partyID *id.ID, state documents.State, f dateRange) squirrel.SelectBuilder {
	if partyID != nil {
		q = q.Where(squirrel.Eq{"party_id": *partyID})
	}
	if state != "" {
		q = q.Where(squirrel.Eq{"state": state})
	}
	return f.apply(q)
}

// dateRange bounds the business date, both ends inclusive.
type dateRange struct {
	from *time.Time
	to   *time.Time
}

func (f dateRange) apply(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if f.from != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.from})
	}
	if f.to != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.to})
	}
	return q
}

func (r *BaseDocumentRepo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if strings.TrimSpace(orderBy) == "" {
		return "date DESC, number DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}

	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}

// GetItems returns the lines of a document ordered by line number.
func (r *BaseDocumentRepo[T]) GetItems(ctx context.Context, docID id.ID) ([]documents.Item, error) {
	q := r.Builder().
		Select(itemCols...).
		From(r.itemsTable).
		Where(squirrel.Eq{r.itemsFK: docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []documents.Item
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}

// SaveItems replaces the lines of a document. The copy needs the caller's
// transaction.
func (r *BaseDocumentRepo[T]) SaveItems(ctx context.Context, docID id.ID, items []documents.Item) error {
	deleteSQL := "DELETE FROM " + r.itemsTable + " WHERE " + r.itemsFK + " = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	cols, rows := itemRows(r.itemsFK, docID, items)
	if _, err := r.inserter.CopyFromSlice(ctx, r.itemsTable, cols, rows); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// itemRows lays items out for COPY, the document key first.
func itemRows(fk string, docID id.ID, items []documents.Item) ([]string, [][]any) {
	cols := append([]string{fk}, itemCols...)
	rows := make([][]any, len(items))
	for i := range items {
		rows[i] = append([]any{docID}, postgres.Values(&items[i], itemCols)...)
	}
	return cols, rows
}

// linkEntry records the journal entry that posted a row.
func (r *BaseDocumentRepo[T]) linkEntry(ctx context.Context, tenantID, rowID, entryID id.ID) error {
	sql, args, err := r.linkEntryQuery(tenantID, rowID, entryID).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.entityName, rowID)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, rowID.String())
	}
	return nil
}

func (r *BaseDocumentRepo[T]) linkEntryQuery(tenantID, rowID, entryID id.ID) squirrel.UpdateBuilder {
	return r.Builder().
		Update(r.tableName).
		Set("entry_id", entryID).
		Where(squirrel.Eq{"id": rowID}).
		Where(squirrel.Eq{"tenant_id": tenantID})
}
