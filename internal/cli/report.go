package cli

import (
	"context"

	"github.com/spf13/cobra"

	"pgcledger/internal/app"
	"pgcledger/internal/domain/reports"
)

func newReportCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print ledger reports",
	}
	cmd.AddCommand(newTrialBalanceCommand(env))
	return cmd
}

func newTrialBalanceCommand(env *Env) *cobra.Command {
	var company, from, to string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companyID, err := parseCompany(company)
			if err != nil {
				return err
			}
			var period reports.Period
			if period.From, err = parseDay("from", from); err != nil {
				return err
			}
			if period.To, err = parseDay("to", to); err != nil {
				return err
			}

			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				tb, err := svc.Reports.TrialBalance(ctx, companyID, period)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(tb.Rows)+1)
				for _, r := range tb.Rows {
					rows = append(rows, []string{
						r.Code,
						r.Description,
						r.Debit.StringFixed(2),
						r.Credit.StringFixed(2),
						r.DebitBalance.StringFixed(2),
						r.CreditBalance.StringFixed(2),
					})
				}
				rows = append(rows, []string{
					"", "Total", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2), "", "",
				})
				renderTable(env.Out,
					[]string{"Code", "Account", "Debit", "Credit", "Debit balance", "Credit balance"},
					rows, 2, 3, 4, 5)
				if !tb.IsBalanced() {
					warn(env.Out, "debits and credits differ")
				}
				return nil
			})
		},
	}
	companyFlag(cmd, &company)
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	return cmd
}
