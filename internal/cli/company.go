package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"pgcledger/internal/app"
	"pgcledger/internal/core/tenant"
)

func newCompanyCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies",
	}
	cmd.AddCommand(newCompanyCreateCommand(env), newCompanyListCommand(env))
	return cmd
}

func newCompanyCreateCommand(env *Env) *cobra.Command {
	var in tenant.CreateTenantInput
	var template string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a company and copy the template chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.ChartTemplate = tenant.ChartTemplate(template)
			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				t, copied, err := svc.Company.Create(ctx, in)
				if err != nil {
					return err
				}
				env.printf("company %s created (%s), %d accounts copied\n", t.ID, t.Name, copied)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&in.TaxID, "tax-id", "", "NIF (required)")
	_ = cmd.MarkFlagRequired("tax-id")
	cmd.Flags().StringVar(&in.Address, "address", "", "address")
	cmd.Flags().IntVar(&in.ExerciseYear, "year", 0, "exercise year (default current year)")
	cmd.Flags().StringVar(&template, "template", "", "chart template: PGC_GERAL, PGC_SIMP or CUSTOM")
	return cmd
}

func newCompanyListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				list, err := svc.Company.List(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, t := range list {
					rows = append(rows, []string{
						t.ID.String(), t.Name, t.TaxID, strconv.Itoa(t.ExerciseYear), string(t.Status),
					})
				}
				renderTable(env.Out, []string{"ID", "Name", "NIF", "Year", "Status"}, rows, 3)
				return nil
			})
		},
	}
}
