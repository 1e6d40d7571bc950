package cli

import (
	"context"

	"github.com/spf13/cobra"

	"pgcledger/internal/app"
	"pgcledger/internal/domain/payroll"
)

func newPayrollCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Process and post monthly payroll",
	}
	cmd.AddCommand(newPayrollRunCommand(env), newPayrollPostCommand(env))
	return cmd
}

func monthFlags(cmd *cobra.Command, month, year *int) {
	cmd.Flags().IntVar(month, "month", 0, "month 1-12 (required)")
	_ = cmd.MarkFlagRequired("month")
	cmd.Flags().IntVar(year, "year", 0, "year (required)")
	_ = cmd.MarkFlagRequired("year")
}

func newPayrollRunCommand(env *Env) *cobra.Command {
	var company string
	var month, year int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute the month for every active employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companyID, err := parseCompany(company)
			if err != nil {
				return err
			}
			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				runs, err := svc.Payroll.RunPayroll(ctx, companyID, month, year)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(runs)+1)
				for _, r := range runs {
					rows = append(rows, []string{
						r.EmployeeName,
						r.Gross.StringFixed(2),
						r.EmployeeSocial.StringFixed(2),
						r.IRT.StringFixed(2),
						r.Net.StringFixed(2),
					})
				}
				t := payroll.Summarize(runs)
				rows = append(rows, []string{
					"Total",
					t.Gross.StringFixed(2),
					t.EmployeeSocial.StringFixed(2),
					t.IRT.StringFixed(2),
					t.Net.StringFixed(2),
				})
				renderTable(env.Out, []string{"Employee", "Gross", "INSS", "IRT", "Net"}, rows, 1, 2, 3, 4)
				return nil
			})
		},
	}
	companyFlag(cmd, &company)
	monthFlags(cmd, &month, &year)
	return cmd
}

func newPayrollPostCommand(env *Env) *cobra.Command {
	var company string
	var month, year int

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post the month's payroll entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companyID, err := parseCompany(company)
			if err != nil {
				return err
			}
			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				res, err := svc.Payroll.PostPayroll(ctx, companyID, month, year)
				if err != nil {
					return err
				}
				printResult(env, res)
				return nil
			})
		},
	}
	companyFlag(cmd, &company)
	monthFlags(cmd, &month, &year)
	return cmd
}
