// Package report_repo reads journal aggregates for the accounting reports.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/domain/reports"
	"pgcledger/internal/infrastructure/storage/postgres"
)

// postedStates are the document states counted by tax reports.
var postedStates = []documents.State{
	documents.StateIssued,
	documents.StateRegistered,
	documents.StatePartiallyPaid,
	documents.StatePaid,
}

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// period bounds the entry date column.
func period(q squirrel.SelectBuilder, col string, p reports.Period) squirrel.SelectBuilder {
	if p.From != nil {
		q = q.Where(squirrel.GtOrEq{col: *p.From})
	}
	if p.To != nil {
		q = q.Where(squirrel.LtOrEq{col: *p.To})
	}
	return q
}

func (r *ReportRepo) totalsQuery(tenantID id.ID, f reports.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"l.account_id",
			"a.code",
			"a.description",
			"COALESCE(SUM(l.amount) FILTER (WHERE l.side = 'DEBIT'), 0) AS debit",
			"COALESCE(SUM(l.amount) FILTER (WHERE l.side = 'CREDIT'), 0) AS credit",
		).
		From("journal_lines l").
		Join("journal_entries e ON e.id = l.entry_id").
		Join("accounts a ON a.id = l.account_id").
		Where(squirrel.Eq{"e.tenant_id": tenantID})

	q = period(q, "e.date", f.Period)
	if len(f.AccountIDs) > 0 {
		q = q.Where(squirrel.Eq{"l.account_id": f.AccountIDs})
	}
	if len(f.CodePrefixes) > 0 {
		or := squirrel.Or{}
		for _, p := range f.CodePrefixes {
			or = append(or, squirrel.Like{"a.code": escapeLike(p) + "%"})
		}
		q = q.Where(or)
	}
	if len(f.ExcludeKinds) > 0 {
		q = q.Where(squirrel.NotEq{"e.kind": f.ExcludeKinds})
	}

	return q.
		GroupBy("l.account_id", "a.code", "a.description").
		OrderBy("a.code COLLATE \"C\"")
}

// Totals sums debits and credits per account.
func (r *ReportRepo) Totals(ctx context.Context, tenantID id.ID, filter reports.MovementFilter) ([]reports.AccountTotals, error) {
	sql, args, err := r.totalsQuery(tenantID, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []reports.AccountTotals
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) movementsQuery(tenantID, accountID id.ID, p reports.Period) squirrel.SelectBuilder {
	q := r.builder.
		Select("e.id AS entry_id", "e.number", "e.date", "e.description", "l.memo", "l.side", "l.amount").
		From("journal_lines l").
		Join("journal_entries e ON e.id = l.entry_id").
		Where(squirrel.Eq{"e.tenant_id": tenantID}).
		Where(squirrel.Eq{"l.account_id": accountID})
	return period(q, "e.date", p).OrderBy("e.date", "e.number", "l.line_no")
}

// Movements lists one account's lines in ledger order.
func (r *ReportRepo) Movements(ctx context.Context, tenantID, accountID id.ID, p reports.Period) ([]reports.Movement, error) {
	sql, args, err := r.movementsQuery(tenantID, accountID, p).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []reports.Movement
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("account movements: %w", err)
	}
	return out, nil
}

func documentTable(source posting.SourceType) (string, bool) {
	switch source {
	case posting.SourceInvoice:
		return "invoices", true
	case posting.SourcePurchase:
		return "purchases", true
	}
	return "", false
}

func (r *ReportRepo) taxTotalsQuery(table string, tenantID id.ID, p reports.Period) squirrel.SelectBuilder {
	q := r.builder.
		Select("COALESCE(SUM(subtotal), 0) AS base", "COALESCE(SUM(tax_total), 0) AS vat").
		From(table).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"state": postedStates})
	return period(q, "date", p)
}

// DocumentTaxTotals sums posted invoices or purchases. Other sources have
// no VAT and yield zero.
func (r *ReportRepo) DocumentTaxTotals(ctx context.Context, tenantID id.ID, source posting.SourceType, p reports.Period) (reports.TaxTotals, error) {
	totals := reports.TaxTotals{Base: types.Zero(), VAT: types.Zero()}
	table, ok := documentTable(source)
	if !ok {
		return totals, nil
	}

	sql, args, err := r.taxTotalsQuery(table, tenantID, p).ToSql()
	if err != nil {
		return totals, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), &totals, sql, args...); err != nil {
		return totals, fmt.Errorf("document tax totals: %w", err)
	}
	return totals, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
