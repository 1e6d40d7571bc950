package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"pgcledger/internal/infrastructure/storage/postgres"
)

func newMigrateCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	run := func(fn func(cmd *cobra.Command, m *postgres.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if env.Migrate == nil {
				return errors.New("migrations are not available")
			}
			return env.Migrate(cmd.Context(), func(m *postgres.Migrator) error {
				return fn(cmd, m)
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: run(func(_ *cobra.Command, m *postgres.Migrator) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: run(func(_ *cobra.Command, m *postgres.Migrator) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: run(func(_ *cobra.Command, m *postgres.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				env.printf("version %d", version)
				if dirty {
					env.printf(" (dirty)")
				}
				env.printf("\n")
				return nil
			}),
		},
	)
	return cmd
}
