package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"pgcledger/internal/app"
	"pgcledger/internal/core/id"
)

func newChartCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Manage charts of accounts",
	}
	cmd.AddCommand(newChartInitCommand(env), newChartImportCommand(env))
	return cmd
}

func newChartInitCommand(env *Env) *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Copy the template chart into a company that has none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companyID, err := parseCompany(company)
			if err != nil {
				return err
			}
			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				n, err := svc.Chart.InitializePlan(ctx, companyID)
				if err != nil {
					return err
				}
				env.printf("%d accounts copied\n", n)
				return nil
			})
		},
	}
	companyFlag(cmd, &company)
	return cmd
}

func newChartImportCommand(env *Env) *cobra.Command {
	var company, file string
	var global bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: `Upsert accounts from lines "CODE DESCRIPTION LETTER"`,
		Long: "Reads one account per line from --file (or stdin with -). The " +
			"accounts go to --company, or to the template chart with --global.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var scope *id.ID
			switch {
			case global && company != "":
				return errors.New("--global and --company are exclusive")
			case !global:
				companyID, err := parseCompany(company)
				if err != nil {
					return err
				}
				scope = &companyID
			}

			text, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			return env.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				report, err := svc.Chart.Import(ctx, scope, text)
				if err != nil {
					return err
				}
				env.printf("processed %d, created %d, updated %d\n", report.Processed, report.Created, report.Updated)
				if len(report.Failures) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(report.Failures))
				for _, f := range report.Failures {
					rows = append(rows, []string{strconv.Itoa(f.Line), f.Raw, f.Reason})
				}
				warn(env.Out, "%d lines rejected", len(report.Failures))
				renderTable(env.Out, []string{"Line", "Text", "Reason"}, rows, 0)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company id")
	cmd.Flags().BoolVar(&global, "global", false, "import into the template chart")
	cmd.Flags().StringVar(&file, "file", "-", "input file, - for stdin")
	return cmd
}

func readInput(cmd *cobra.Command, file string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(b), nil
}
