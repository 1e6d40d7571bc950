// Package repos assembles the PostgreSQL implementation of every ledger
// repository for app.New.
package repos

import (
	"context"
	"fmt"

	"pgcledger/internal/app"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/domain/exchange"
	"pgcledger/internal/domain/payroll"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/infrastructure/numerator"
	"pgcledger/internal/infrastructure/storage/postgres"
	"pgcledger/internal/infrastructure/storage/postgres/catalog_repo"
	"pgcledger/internal/infrastructure/storage/postgres/document_repo"
	"pgcledger/internal/infrastructure/storage/postgres/register_repo"
	"pgcledger/internal/infrastructure/storage/postgres/report_repo"
)

// Repositories returns every repository on txManager's pool.
func Repositories(txManager *postgres.TxManager) app.Repositories {
	return app.Repositories{
		Tenants:   tenant.NewPostgresRegistry(txManager.Pool()),
		Chart:     catalog_repo.NewAccountRepo(txManager),
		Parties:   catalog_repo.NewPartyRepo(txManager),
		Journal:   register_repo.NewJournalRepo(txManager),
		Tax:       catalog_repo.NewTaxRepo(txManager),
		Payroll:   document_repo.NewPayrollRepo(txManager),
		Invoices:  document_repo.NewInvoiceRepo(txManager),
		Purchases: document_repo.NewPurchaseRepo(txManager),
		Payments:  document_repo.NewPaymentRepo(txManager),
		Expenses:  document_repo.NewExpenseRepo(txManager),
		Exchange:  catalog_repo.NewExchangeRepo(txManager),
		Reports:   report_repo.NewReportRepo(txManager),
	}
}

// Options are the settings that do not come from the database.
type Options struct {
	RateCache  exchange.Cache
	AccountMap posting.AccountMap
	Payroll    *payroll.Settings
}

// Deps returns app dependencies on PostgreSQL. The audit trail and the
// numerator run inside the caller's transaction. close releases the audit
// codecs.
func Deps(txManager *postgres.TxManager, opts Options) (deps app.Deps, close func(), err error) {
	auditor, err := postgres.NewAuditService(txManager)
	if err != nil {
		return app.Deps{}, nil, fmt.Errorf("audit service: %w", err)
	}

	gen := numerator.NewWithQuerierFunc(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	deps = app.Deps{
		Repos:      Repositories(txManager),
		TxManager:  txManager,
		Numerator:  gen,
		Auditor:    auditor,
		RateCache:  opts.RateCache,
		AccountMap: opts.AccountMap,
		Payroll:    opts.Payroll,
	}
	return deps, auditor.Close, nil
}
