package commands

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/spf13/cobra"
)

func newTrialBalanceCommand(opts *rootOptions) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag("as-of", asOf)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				report, err := a.services.Reporting.TrialBalance(ctx, date)
				if err != nil {
					return err
				}
				return opts.print(dto.ToTrialBalanceResponse(report))
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD), defaults to today")

	return cmd
}

func newBalanceSheetCommand(opts *rootOptions) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Print the balance sheet as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag("as-of", asOf)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				report, err := a.services.Reporting.BalanceSheet(ctx, date)
				if err != nil {
					return err
				}
				return opts.print(dto.ToBalanceSheetResponse(report))
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD), defaults to today")

	return cmd
}

func newIncomeStatementCommand(opts *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "income-statement",
		Short: "Print revenue, expenses and net income for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := parseDateFlag("to", to)
			if err != nil {
				return err
			}
			start := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
			if from != "" {
				if start, err = parseDateFlag("from", from); err != nil {
					return err
				}
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				report, err := a.services.Reporting.IncomeStatement(ctx, start, end)
				if err != nil {
					return err
				}
				return opts.print(dto.ToIncomeStatementResponse(report))
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD), defaults to January 1 of --to")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD), defaults to today")

	return cmd
}
