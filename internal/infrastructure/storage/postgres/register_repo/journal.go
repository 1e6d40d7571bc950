// Package register_repo provides the PostgreSQL journal: entry headers in
// journal_entries and their legs in journal_lines.
package register_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const (
	entriesTable = "journal_entries"
	linesTable   = "journal_lines"

	sourceKeyConstraint = "journal_entries_source_key"
)

var (
	entryCols = postgres.ExtractDBColumns[posting.Entry]()
	lineCols  = postgres.ExtractDBColumns[posting.Line]()
)

// JournalRepo implements posting.Repository.
type JournalRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ posting.Repository = (*JournalRepo)(nil)

// NewJournalRepo creates a new journal repository.
func NewJournalRepo(txManager *postgres.TxManager) *JournalRepo {
	return &JournalRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *JournalRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *JournalRepo) baseSelect(tenantID id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select(entryCols...).
		From(entriesTable).
		Where(squirrel.Eq{"tenant_id": tenantID})
}

func (r *JournalRepo) findBySourceQuery(tenantID id.ID, key posting.Key) squirrel.SelectBuilder {
	return r.baseSelect(tenantID).
		Where(squirrel.Eq{"source_type": key.SourceType}).
		Where(squirrel.Eq{"source_id": key.SourceID}).
		Where(squirrel.Eq{"event": key.Event})
}

func (r *JournalRepo) FindBySource(ctx context.Context, tenantID id.ID, key posting.Key) (*posting.Entry, error) {
	return r.getOne(ctx, r.findBySourceQuery(tenantID, key), key.String())
}

func (r *JournalRepo) GetByID(ctx context.Context, tenantID, entryID id.ID) (*posting.Entry, error) {
	return r.getOne(ctx, r.baseSelect(tenantID).Where(squirrel.Eq{"id": entryID}), entryID.String())
}

func (r *JournalRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*posting.Entry, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e posting.Entry
	if err := pgxscan.Get(ctx, r.querier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("journal entry", key)
		}
		return nil, fmt.Errorf("get journal entry: %w", err)
	}

	entries := []*posting.Entry{&e}
	if err := r.loadLines(ctx, entries); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create writes the header, then the lines. Run it inside a transaction:
// lines go through COPY there, and a failure rolls the header back.
func (r *JournalRepo) Create(ctx context.Context, e *posting.Entry) error {
	sql, args, err := r.builder.
		Insert(entriesTable).
		Columns(entryCols...).
		Values(postgres.Values(e, entryCols)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapCreateError(err, e)
	}

	for i := range e.Lines {
		e.Lines[i].EntryID = e.ID
	}
	return r.insertLines(ctx, e.Lines)
}

// mapCreateError tells a second posting of the same event apart from a
// number collision.
func mapCreateError(err error, e *posting.Entry) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgres.CodeUniqueViolation {
		if key, ok := e.Key(); ok && pgErr.ConstraintName == sourceKeyConstraint {
			return apperror.NewDuplicate("journal entry", "source", key.String()).WithCause(err)
		}
		return apperror.NewDuplicate("journal entry", "number", e.Number).WithCause(err)
	}
	return postgres.MapError(err, "journal entry", e.ID)
}

func (r *JournalRepo) insertLines(ctx context.Context, lines []posting.Line) error {
	if len(lines) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		if _, err := postgres.CopyStructs(ctx, r.inserter, linesTable, lineCols, lines); err != nil {
			return postgres.MapError(err, "journal line", lines[0].EntryID)
		}
		return nil
	}

	sql, args, err := r.insertLinesQuery(lines).ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "journal line", lines[0].EntryID)
	}
	return nil
}

func (r *JournalRepo) insertLinesQuery(lines []posting.Line) squirrel.InsertBuilder {
	q := r.builder.Insert(linesTable).Columns(lineCols...)
	for i := range lines {
		q = q.Values(postgres.Values(&lines[i], lineCols)...)
	}
	return q
}

func (r *JournalRepo) listQuery(tenantID id.ID, f posting.JournalFilter) squirrel.SelectBuilder {
	q := r.baseSelect(tenantID)
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.To})
	}
	if f.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": f.Kind})
	}
	if f.SourceType != "" {
		q = q.Where(squirrel.Eq{"source_type": f.SourceType})
	}
	if f.SourceID != nil {
		q = q.Where(squirrel.Eq{"source_id": *f.SourceID})
	}
	return q.OrderBy("date", "number")
}

func (r *JournalRepo) List(ctx context.Context, tenantID id.ID, filter posting.JournalFilter) ([]*posting.Entry, error) {
	sql, args, err := r.listQuery(tenantID, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*posting.Entry
	if err := pgxscan.Select(ctx, r.querier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	if err := r.loadLines(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *JournalRepo) linesQuery(entryIDs []id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select(lineCols...).
		From(linesTable).
		Where(squirrel.Eq{"entry_id": entryIDs}).
		OrderBy("entry_id", "line_no")
}

// loadLines fills Lines of every entry with one query.
func (r *JournalRepo) loadLines(ctx context.Context, entries []*posting.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]id.ID, len(entries))
	byID := make(map[id.ID]*posting.Entry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	sql, args, err := r.linesQuery(ids).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var lines []posting.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return fmt.Errorf("load journal lines: %w", err)
	}
	for _, l := range lines {
		if e, ok := byID[l.EntryID]; ok {
			e.Lines = append(e.Lines, l)
		}
	}
	return nil
}
