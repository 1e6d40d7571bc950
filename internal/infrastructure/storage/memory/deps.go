package memory

import (
	"pgcledger/internal/app"
	"pgcledger/internal/core/numerator"
)

// Repositories returns every repository backed by s.
func (s *Store) Repositories() app.Repositories {
	return app.Repositories{
		Tenants:   s.Tenants(),
		Chart:     s.Chart(),
		Parties:   s.Parties(),
		Journal:   s.Journal(),
		Tax:       s.Tax(),
		Payroll:   s.Payroll(),
		Invoices:  s.Invoices(),
		Purchases: s.Purchases(),
		Payments:  s.Payments(),
		Expenses:  s.Expenses(),
		Exchange:  s.Exchange(),
		Reports:   s.Reports(),
	}
}

// Deps returns app dependencies backed by s, with an in-memory numerator.
func (s *Store) Deps() app.Deps {
	return app.Deps{
		Repos:     s.Repositories(),
		TxManager: s.TxManager(),
		Numerator: &numerator.MockGenerator{},
	}
}
