package cli

import (
	"context"

	"github.com/spf13/cobra"

	"pgcledger/internal/app"
	"pgcledger/internal/domain/posting"
)

func newCloseYearCommand(env *Env) *cobra.Command {
	var company string
	var year int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "close-year",
		Short: "Close the result accounts of a year into profit and loss",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companyID, err := parseCompany(company)
			if err != nil {
				return err
			}
			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				p, err := svc.Closing.Preview(ctx, companyID, year)
				if err != nil {
					return err
				}
				env.printf("revenues %s, expenses %s, net result %s\n",
					p.TotalRevenues.StringFixed(2), p.TotalExpenses.StringFixed(2), p.NetResult.StringFixed(2))
				if dryRun {
					return nil
				}

				res, err := svc.Closing.CloseYear(ctx, companyID, year)
				if err != nil {
					return err
				}
				printResult(env, res)
				return nil
			})
		},
	}
	companyFlag(cmd, &company)
	cmd.Flags().IntVar(&year, "year", 0, "year to close (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only print the preview")
	return cmd
}

// printResult reports the outcome of a posting.
func printResult(env *Env, res posting.Result) {
	switch {
	case res.IsSkipped():
		warn(env.Out, "posting skipped: %s", res.Reason)
	case res.Entry != nil:
		env.printf("%s: entry %s (%s)\n", res.Status, res.Entry.Number, res.Entry.ID)
	default:
		env.printf("%s\n", res.Status)
	}
}
