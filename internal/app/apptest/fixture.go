// Package apptest builds a ledger on the in-memory store for service tests.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/pgc"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/domain/reports"
	"pgcledger/internal/infrastructure/storage/memory"
)

// Fixture is a seeded ledger with one company.
type Fixture struct {
	Ctx      context.Context
	Store    *memory.Store
	Services *app.Services
	Tenant   *tenant.Tenant
}

// New seeds the template chart and the tax tables, then registers a
// company with its chart initialized.
func New(t testing.TB) *Fixture {
	t.Helper()
	return NewWith(t, func(*app.Deps) {})
}

// NewWith is New with a hook to adjust the dependencies first.
func NewWith(t testing.TB, adjust func(d *app.Deps)) *Fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	deps := store.Deps()
	adjust(&deps)
	svc := app.New(deps)

	_, err := svc.Chart.SeedTemplate(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Tax.ResetBrackets(ctx))
	require.NoError(t, svc.Tax.ResetRates(ctx))

	tn, _, err := svc.Company.Create(ctx, tenant.CreateTenantInput{
		Name:         "Kianda Serviços, Lda",
		TaxID:        "5417000001",
		ExerciseYear: 2024,
	})
	require.NoError(t, err)

	return &Fixture{Ctx: ctx, Store: store, Services: svc, Tenant: tn}
}

// TenantID is the company of the fixture.
func (f *Fixture) TenantID() id.ID {
	return f.Tenant.ID
}

// Account returns the company's account with code.
func (f *Fixture) Account(t testing.TB, code string) *chart.Account {
	t.Helper()
	acc, err := f.Services.Chart.Resolver().Tenant(f.Tenant.ID).Find(f.Ctx, pgc.Normalize(code))
	require.NoError(t, err, code)
	return acc
}

// Customer registers a customer under 31.1.1.
func (f *Fixture) Customer(t testing.TB, name string) *parties.Party {
	t.Helper()
	return f.party(t, parties.KindCustomer, "31.1.1", name)
}

// Supplier registers a supplier under 32.1.1.
func (f *Fixture) Supplier(t testing.TB, name string) *parties.Party {
	t.Helper()
	return f.party(t, parties.KindSupplier, "32.1.1", name)
}

func (f *Fixture) party(t testing.TB, kind parties.Kind, parentCode, name string) *parties.Party {
	t.Helper()
	p, err := f.Services.Parties.Create(f.Ctx, f.Tenant.ID, parties.CreateInput{
		Kind:            kind,
		Name:            name,
		ParentAccountID: f.Account(t, parentCode).ID,
	})
	require.NoError(t, err)
	return p
}

// Balance returns the signed all-time balance of the account with code.
func (f *Fixture) Balance(t testing.TB, code string) types.Money {
	t.Helper()
	b, err := f.Services.Reports.Balance(f.Ctx, f.Tenant.ID, f.Account(t, code).ID, reports.Period{})
	require.NoError(t, err)
	return b.Signed
}

// Date builds a UTC date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Amount parses a decimal literal.
func Amount(s string) types.Money {
	return decimal.RequireFromString(s)
}

// Line builds one item.
func Line(description, quantity, unitPrice, taxRate string) documents.ItemInput {
	return documents.ItemInput{
		Description: description,
		Quantity:    decimal.RequireFromString(quantity),
		UnitPrice:   decimal.RequireFromString(unitPrice),
		TaxRate:     decimal.RequireFromString(taxRate),
	}
}
