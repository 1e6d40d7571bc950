// Package memory keeps every repository in process memory. Services run
// against it in tests; transactions are serialized and roll back by
// restoring a snapshot.
package memory

import (
	"context"
	"sync"

	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/domain/documents/purchase"
	"pgcledger/internal/domain/exchange"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/domain/payroll"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/domain/tax"
)

type state struct {
	tenants   map[id.ID]tenant.Tenant
	accounts  map[id.ID]chart.Account
	parties   map[id.ID]parties.Party
	entries   map[id.ID]posting.Entry
	brackets  tax.Table
	rates     map[string]tax.Rate
	employees map[id.ID]payroll.Employee
	absences  []payroll.Absence
	overtime  []payroll.Overtime
	runs      map[id.ID]payroll.Run
	invoices  map[id.ID]invoice.Invoice
	purchases map[id.ID]purchase.Purchase
	items     map[id.ID][]documents.Item
	payments  map[id.ID]documents.Payment
	expenses  map[id.ID]expense.Expense
	fxRates   map[id.ID]exchange.Rate
}

func newState() *state {
	return &state{
		tenants:   make(map[id.ID]tenant.Tenant),
		accounts:  make(map[id.ID]chart.Account),
		parties:   make(map[id.ID]parties.Party),
		entries:   make(map[id.ID]posting.Entry),
		rates:     make(map[string]tax.Rate),
		employees: make(map[id.ID]payroll.Employee),
		runs:      make(map[id.ID]payroll.Run),
		invoices:  make(map[id.ID]invoice.Invoice),
		purchases: make(map[id.ID]purchase.Purchase),
		items:     make(map[id.ID][]documents.Item),
		payments:  make(map[id.ID]documents.Payment),
		expenses:  make(map[id.ID]expense.Expense),
		fxRates:   make(map[id.ID]exchange.Rate),
	}
}

// clone copies the maps. Stored values are never mutated in place, so
// sharing their slices is safe.
func (s *state) clone() *state {
	c := &state{
		tenants:   cloneMap(s.tenants),
		accounts:  cloneMap(s.accounts),
		parties:   cloneMap(s.parties),
		entries:   cloneMap(s.entries),
		brackets:  append(tax.Table(nil), s.brackets...),
		rates:     cloneMap(s.rates),
		employees: cloneMap(s.employees),
		absences:  append([]payroll.Absence(nil), s.absences...),
		overtime:  append([]payroll.Overtime(nil), s.overtime...),
		runs:      cloneMap(s.runs),
		invoices:  cloneMap(s.invoices),
		purchases: cloneMap(s.purchases),
		items:     cloneMap(s.items),
		payments:  cloneMap(s.payments),
		expenses:  cloneMap(s.expenses),
		fxRates:   cloneMap(s.fxRates),
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store holds the data of every repository.
type Store struct {
	mu   sync.RWMutex
	data *state

	txMu sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// TxManager serializes transactions over a Store.
type TxManager struct {
	store *Store
}

var _ tx.Manager = (*TxManager)(nil)

type txKey struct{}

// TxManager returns the transaction manager of the store.
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// RunInTransaction runs fn holding the store's transaction lock. Nested
// calls join the outer transaction; an error restores the data fn saw.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	m.store.mu.RLock()
	snapshot := m.store.data.clone()
	m.store.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.mu.Lock()
		m.store.data = snapshot
		m.store.mu.Unlock()
		return err
	}
	return nil
}
