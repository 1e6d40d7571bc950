package memory

import (
	"context"
	"sort"
	"strings"

	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct{ s *Store }

var _ reports.Repository = (*ReportRepo)(nil)

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

func (r *ReportRepo) Totals(ctx context.Context, tenantID id.ID, filter reports.MovementFilter) ([]reports.AccountTotals, error) {
	ids := make(map[id.ID]bool, len(filter.AccountIDs))
	for _, accountID := range filter.AccountIDs {
		ids[accountID] = true
	}
	excluded := make(map[posting.EntryKind]bool, len(filter.ExcludeKinds))
	for _, k := range filter.ExcludeKinds {
		excluded[k] = true
	}

	byAccount := make(map[id.ID]*reports.AccountTotals)
	r.s.read(func(d *state) {
		for _, e := range d.entries {
			if e.TenantID != tenantID || excluded[e.Kind] || !filter.Contains(e.Date) {
				continue
			}
			for _, l := range e.Lines {
				if len(ids) > 0 && !ids[l.AccountID] {
					continue
				}
				code, description := l.AccountCode, ""
				if acc, ok := d.accounts[l.AccountID]; ok {
					code, description = acc.Code, acc.Description
				}
				if !hasAnyPrefix(code, filter.CodePrefixes) {
					continue
				}
				t, ok := byAccount[l.AccountID]
				if !ok {
					t = &reports.AccountTotals{
						AccountID:   l.AccountID,
						Code:        code,
						Description: description,
						Debit:       types.Zero(),
						Credit:      types.Zero(),
					}
					byAccount[l.AccountID] = t
				}
				if l.Side == posting.Debit {
					t.Debit = t.Debit.Add(l.Amount)
				} else {
					t.Credit = t.Credit.Add(l.Amount)
				}
			}
		}
	})

	out := make([]reports.AccountTotals, 0, len(byAccount))
	for _, t := range byAccount {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func hasAnyPrefix(code string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func (r *ReportRepo) Movements(ctx context.Context, tenantID, accountID id.ID, period reports.Period) ([]reports.Movement, error) {
	type row struct {
		m      reports.Movement
		lineNo int
	}
	var rows []row
	r.s.read(func(d *state) {
		for _, e := range d.entries {
			if e.TenantID != tenantID || !period.Contains(e.Date) {
				continue
			}
			for _, l := range e.Lines {
				if l.AccountID != accountID {
					continue
				}
				rows = append(rows, row{lineNo: l.LineNo, m: reports.Movement{
					EntryID:     e.ID,
					Number:      e.Number,
					Date:        e.Date,
					Description: e.Description,
					Memo:        l.Memo,
					Side:        l.Side,
					Amount:      l.Amount,
				}})
			}
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.m.Date.Equal(b.m.Date) {
			return a.m.Date.Before(b.m.Date)
		}
		if a.m.Number != b.m.Number {
			return a.m.Number < b.m.Number
		}
		return a.lineNo < b.lineNo
	})
	out := make([]reports.Movement, len(rows))
	for i, r := range rows {
		out[i] = r.m
	}
	return out, nil
}

func (r *ReportRepo) DocumentTaxTotals(ctx context.Context, tenantID id.ID, source posting.SourceType, period reports.Period) (reports.TaxTotals, error) {
	totals := reports.TaxTotals{Base: types.Zero(), VAT: types.Zero()}
	add := func(c *documents.Commercial) {
		if c.TenantID != tenantID || !c.State.IsPosted() || !period.Contains(c.Date) {
			return
		}
		totals.Base = totals.Base.Add(c.Subtotal)
		totals.VAT = totals.VAT.Add(c.TaxTotal)
	}
	r.s.read(func(d *state) {
		switch source {
		case posting.SourceInvoice:
			for _, inv := range d.invoices {
				add(&inv.Commercial)
			}
		case posting.SourcePurchase:
			for _, p := range d.purchases {
				add(&p.Commercial)
			}
		}
	})
	return totals, nil
}
