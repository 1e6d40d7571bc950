// Package app assembles the ledger services from a set of repositories.
// Both the HTTP server and the command line tool start here.
package app

import (
	"pgcledger/internal/core/numerator"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/closing"
	"pgcledger/internal/domain/company"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/domain/documents/purchase"
	"pgcledger/internal/domain/exchange"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/domain/payroll"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/domain/reports"
	"pgcledger/internal/domain/tax"
)

// Repositories is one storage backend.
type Repositories struct {
	Tenants   tenant.Registry
	Chart     chart.Repository
	Parties   parties.Repository
	Journal   posting.Repository
	Tax       tax.Repository
	Payroll   payroll.Repository
	Invoices  invoice.Repository
	Purchases purchase.Repository
	Payments  documents.PaymentRepository
	Expenses  expense.Repository
	Exchange  exchange.Repository
	Reports   reports.Repository
}

// Deps are everything the services need from the outside.
type Deps struct {
	Repos     Repositories
	TxManager tx.Manager
	Numerator numerator.Generator

	// Optional
	Auditor    posting.Auditor
	RateCache  exchange.Cache
	AccountMap posting.AccountMap
	Payroll    *payroll.Settings
}

// Services is the assembled ledger.
type Services struct {
	Company   *company.Service
	Chart     *chart.Service
	Parties   *parties.Service
	Posting   *posting.Engine
	Tax       *tax.Service
	Payroll   *payroll.Service
	Invoices  *invoice.Service
	Purchases *purchase.Service
	Expenses  *expense.Service
	Exchange  *exchange.Service
	Reports   *reports.Service
	Closing   *closing.Service
}

// New wires the services.
func New(d Deps) *Services {
	r := d.Repos

	chartService := chart.NewService(r.Chart, d.TxManager)
	partyService := parties.NewService(r.Parties, chartService, d.TxManager)

	var opts []posting.Option
	if d.AccountMap != nil {
		opts = append(opts, posting.WithAccountMap(d.AccountMap))
	}
	if d.Auditor != nil {
		opts = append(opts, posting.WithAuditor(d.Auditor))
	}
	engine := posting.NewEngine(r.Journal, chartService, d.Numerator, d.TxManager, opts...)

	taxService := tax.NewService(r.Tax, d.TxManager)
	settings := payroll.DefaultSettings()
	if d.Payroll != nil {
		settings = *d.Payroll
	}

	return &Services{
		Company:   company.NewService(r.Tenants, chartService),
		Chart:     chartService,
		Parties:   partyService,
		Posting:   engine,
		Tax:       taxService,
		Payroll:   payroll.NewService(r.Payroll, taxService, engine, d.TxManager, settings),
		Invoices:  invoice.NewService(r.Invoices, r.Payments, partyService, taxService, engine, d.Numerator, d.TxManager),
		Purchases: purchase.NewService(r.Purchases, r.Payments, partyService, taxService, engine, d.Numerator, d.TxManager),
		Expenses:  expense.NewService(r.Expenses, partyService, engine, d.Numerator, d.TxManager),
		Exchange:  exchange.NewService(r.Exchange, r.Tenants, d.RateCache),
		Reports:   reports.NewService(r.Reports, chartService, engine, partyService),
		Closing:   closing.NewService(r.Reports, engine),
	}
}
