// Package bootstrap opens the PostgreSQL ledger described by a Config. The
// server and ledgerctl share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"pgcledger/internal/app"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/domain/exchange"
	"pgcledger/internal/infrastructure/cache"
	"pgcledger/internal/infrastructure/config"
	"pgcledger/internal/infrastructure/http/v1/handlers"
	"pgcledger/internal/infrastructure/storage/postgres"
	"pgcledger/internal/infrastructure/storage/postgres/repos"
	"pgcledger/pkg/logger"
)

// Ledger is an opened ledger. Close releases everything Open acquired.
type Ledger struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Services  *app.Services
	Tenants   tenant.Registry

	// History reads the audit trail; nil when the auditor does not support it.
	History handlers.HistoryReader

	// HealthChecks holds probes for the optional backends.
	HealthChecks map[string]handlers.Pinger

	closers []func()
}

// Options tune Open.
type Options struct {
	// Migrate runs pending migrations before connecting.
	Migrate bool

	// Listen starts the LISTEN loop of the in-process rate cache. Short-lived
	// commands leave it off.
	Listen bool
}

// Open connects to the database, picks the rate cache and assembles the
// services.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (_ *Ledger, err error) {
	if err := cfg.RequireDSN(); err != nil {
		return nil, err
	}

	if opts.Migrate {
		if err := Migrate(cfg, log, func(m *postgres.Migrator) error { return m.Up() }); err != nil {
			return nil, err
		}
	}

	l := &Ledger{HealthChecks: make(map[string]handlers.Pinger)}
	defer func() {
		if err != nil {
			l.Close()
		}
	}()

	pool, err := postgres.NewPool(ctx, cfg.PoolConfig())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	l.Pool = pool
	l.closers = append(l.closers, pool.Close)
	l.TxManager = postgres.NewTxManager(pool)
	log.Infow("database connection established",
		"max_conns", cfg.Database.MaxConns,
	)

	rateCache, err := l.openRateCache(ctx, cfg, log, opts.Listen)
	if err != nil {
		return nil, err
	}

	settings := cfg.PayrollSettings()
	deps, closeDeps, err := repos.Deps(l.TxManager, repos.Options{
		RateCache:  rateCache,
		AccountMap: cfg.AccountMap(),
		Payroll:    &settings,
	})
	if err != nil {
		return nil, err
	}
	l.closers = append(l.closers, closeDeps)

	if h, ok := deps.Auditor.(handlers.HistoryReader); ok {
		l.History = h
	}
	l.Tenants = deps.Repos.Tenants
	l.Services = app.New(deps)
	return l, nil
}

func (l *Ledger) openRateCache(ctx context.Context, cfg *config.Config, log *logger.Logger, listen bool) (exchange.Cache, error) {
	if cfg.RedisEnabled() {
		client, err := cache.NewRedisClient(ctx, cfg.CacheRedisConfig())
		if err != nil {
			return nil, err
		}
		l.closers = append(l.closers, func() { _ = client.Close() })
		l.HealthChecks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		log.Infow("using redis rate cache", "addr", cfg.Redis.Addr)
		return cache.NewRedisRateCache(client, cache.WithTTL(cfg.Redis.RateTTL)), nil
	}

	local := cache.NewRateCache(l.Pool.Pool)
	if listen {
		if err := local.Start(ctx); err != nil {
			return nil, fmt.Errorf("start rate cache: %w", err)
		}
		l.closers = append(l.closers, local.Stop)
	}
	return local, nil
}

// Close releases resources in reverse order of acquisition.
func (l *Ledger) Close() {
	for i := len(l.closers) - 1; i >= 0; i-- {
		l.closers[i]()
	}
	l.closers = nil
}

// Migrate opens the embedded migrations on the configured database and runs
// fn.
func Migrate(cfg *config.Config, log *logger.Logger, fn func(*postgres.Migrator) error) error {
	if err := cfg.RequireDSN(); err != nil {
		return err
	}
	m, err := postgres.NewMigrator(cfg.Database.DSN, log.Desugar())
	if err != nil {
		return err
	}
	return errors.Join(fn(m), m.Close())
}

