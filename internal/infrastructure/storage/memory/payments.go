package memory

import (
	"context"
	"sort"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/domain/posting"
)

// PaymentRepo implements documents.PaymentRepository.
type PaymentRepo struct{ s *Store }

var _ documents.PaymentRepository = (*PaymentRepo)(nil)

// Payments returns the payment repository.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }

func (r *PaymentRepo) Create(ctx context.Context, p *documents.Payment) error {
	return r.s.write(func(d *state) error {
		d.payments[p.ID] = *p
		return nil
	})
}

func (r *PaymentRepo) List(ctx context.Context, tenantID id.ID, docType posting.SourceType, docID id.ID) ([]*documents.Payment, error) {
	var out []*documents.Payment
	r.s.read(func(d *state) {
		for _, p := range d.payments {
			if p.TenantID == tenantID && p.DocumentType == docType && p.DocumentID == docID {
				p := p
				out = append(out, &p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepo) LinkEntry(ctx context.Context, tenantID, paymentID, entryID id.ID) error {
	return r.s.write(func(d *state) error {
		p, ok := d.payments[paymentID]
		if !ok || p.TenantID != tenantID {
			return apperror.NewNotFound("payment", paymentID.String())
		}
		p.EntryID = &entryID
		d.payments[paymentID] = p
		return nil
	})
}

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct{ s *Store }

var _ expense.Repository = (*ExpenseRepo)(nil)

// Expenses returns the expense repository.
func (s *Store) Expenses() *ExpenseRepo { return &ExpenseRepo{s: s} }

func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	return r.s.write(func(d *state) error {
		d.expenses[e.ID] = *e
		return nil
	})
}

func (r *ExpenseRepo) GetByID(ctx context.Context, tenantID, expenseID id.ID) (*expense.Expense, error) {
	var (
		e  expense.Expense
		ok bool
	)
	r.s.read(func(d *state) { e, ok = d.expenses[expenseID] })
	if !ok || e.TenantID != tenantID {
		return nil, apperror.NewNotFound("expense", expenseID.String())
	}
	return &e, nil
}

func (r *ExpenseRepo) List(ctx context.Context, tenantID id.ID, filter expense.Filter) ([]*expense.Expense, error) {
	var out []*expense.Expense
	r.s.read(func(d *state) {
		for _, e := range d.expenses {
			if e.TenantID != tenantID || (filter.Kind != "" && e.Kind != filter.Kind) {
				continue
			}
			if (filter.DateFrom != nil && e.Date.Before(*filter.DateFrom)) || (filter.DateTo != nil && e.Date.After(*filter.DateTo)) {
				continue
			}
			e := e
			out = append(out, &e)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *ExpenseRepo) LinkEntry(ctx context.Context, tenantID, expenseID, entryID id.ID) error {
	return r.s.write(func(d *state) error {
		e, ok := d.expenses[expenseID]
		if !ok || e.TenantID != tenantID {
			return apperror.NewNotFound("expense", expenseID.String())
		}
		e.EntryID = &entryID
		d.expenses[expenseID] = e
		return nil
	})
}
