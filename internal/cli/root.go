// Package cli implements ledgerctl, the operator command line for the
// ledger: migrations, seeding, companies, chart import, payroll, year-end
// closing and reports.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pgcledger/internal/app"
	appctx "pgcledger/internal/core/context"
	"pgcledger/internal/core/id"
	"pgcledger/internal/infrastructure/bootstrap"
	"pgcledger/internal/infrastructure/config"
	"pgcledger/internal/infrastructure/storage/postgres"
	"pgcledger/pkg/logger"
)

// Env is what commands need from the outside. Tests replace Open with an
// in-memory ledger.
type Env struct {
	Out io.Writer

	// Open assembles the services; the returned func releases them.
	Open func(ctx context.Context) (*app.Services, func(), error)

	// Migrate runs fn on the embedded migrations.
	Migrate func(ctx context.Context, fn func(*postgres.Migrator) error) error

	// Log receives service logs; set by Open or Migrate once the
	// configuration is known.
	Log *logger.Logger
}

// DefaultEnv reads config.toml and PGC_* variables when a command first
// needs the database.
func DefaultEnv() *Env {
	env := &Env{Out: os.Stdout}
	load := func() (*config.Config, *logger.Logger, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		lc := cfg.LoggerConfig()
		lc.OutputPaths = []string{"stderr"}
		log, err := logger.New(lc)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize logger: %w", err)
		}
		env.Log = log
		return cfg, log, nil
	}

	env.Open = func(ctx context.Context) (*app.Services, func(), error) {
		cfg, log, err := load()
		if err != nil {
			return nil, nil, err
		}
		l, err := bootstrap.Open(ctx, cfg, log, bootstrap.Options{})
		if err != nil {
			return nil, nil, err
		}
		return l.Services, l.Close, nil
	}
	env.Migrate = func(_ context.Context, fn func(*postgres.Migrator) error) error {
		cfg, log, err := load()
		if err != nil {
			return err
		}
		return bootstrap.Migrate(cfg, log, fn)
	}
	return env
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the PGC ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(env.Out)

	rootCmd.AddCommand(
		newMigrateCommand(env),
		newSeedCommand(env),
		newCompanyCommand(env),
		newChartCommand(env),
		newPayrollCommand(env),
		newCloseYearCommand(env),
		newReportCommand(env),
	)
	return rootCmd
}

// withServices opens the ledger for the duration of fn.
func (e *Env) withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Services) error) error {
	if e.Open == nil {
		return errors.New("no ledger configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext(appctx.OriginCLI))
	svc, closeFn, err := e.Open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	if e.Log != nil {
		ctx = logger.WithLogger(ctx, e.Log)
	}
	return fn(ctx, svc)
}

func (e *Env) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.Out, format, args...)
}

// companyFlag registers the --company flag every company-scoped command takes.
func companyFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")
}

func parseCompany(raw string) (id.ID, error) {
	companyID, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), fmt.Errorf("invalid --company %q: %w", raw, err)
	}
	return companyID, nil
}

func parseDay(flag, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, raw)
	}
	return &d, nil
}
