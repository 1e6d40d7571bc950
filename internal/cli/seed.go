package cli

import (
	"context"

	"github.com/spf13/cobra"

	"pgcledger/internal/app"
)

func newSeedCommand(env *Env) *cobra.Command {
	var resetTax bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the template chart and the default tax tables",
		Long: "Creates the template accounts that are missing. With --tax the IRT " +
			"brackets and tax rates are reset to the published defaults.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				n, err := svc.Chart.SeedTemplate(ctx)
				if err != nil {
					return err
				}
				env.printf("template accounts created: %d\n", n)

				if !resetTax {
					return nil
				}
				if err := svc.Tax.ResetBrackets(ctx); err != nil {
					return err
				}
				if err := svc.Tax.ResetRates(ctx); err != nil {
					return err
				}
				env.printf("tax tables reset\n")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&resetTax, "tax", true, "reset IRT brackets and tax rates")
	return cmd
}
