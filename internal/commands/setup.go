package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if path == "" {
				path = cfg.MigrationsPath
			}
			if err := database.RunMigrations(cfg.DatabaseURL, path, opts.logger()); err != nil {
				return err
			}
			fmt.Fprintln(opts.out, "migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "migration source URL, defaults to MIGRATIONS_PATH")

	return cmd
}

// seedAccount is one account of the equity chart required by year closing.
type seedAccount struct {
	code        string
	name        string
	parent      string
	accountType domain.AccountType
	permanent   bool
}

// equityChart lists the closing accounts under 3 Ekuitas / 3.2 Laba, parents first.
var equityChart = []seedAccount{
	{code: "3", name: "Ekuitas", accountType: domain.Equity},
	{code: "3.2", name: "Laba", parent: "3"},
	{code: "3.2.01", name: "Laba Ditahan", parent: "3.2", permanent: true},
	{code: "3.2.02", name: "Laba Berjalan", parent: "3.2"},
}

// seedEquityChart creates the missing closing accounts and returns the codes it created.
func seedEquityChart(ctx context.Context, accounts portssvc.AccountSvcFacade, userID string) ([]string, error) {
	created := []string{}
	for _, acc := range equityChart {
		_, err := accounts.GetAccountByCode(ctx, acc.code)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return created, err
		}

		req := dto.CreateAccountRequest{
			Code:      acc.code,
			Name:      acc.name,
			Permanent: acc.permanent,
		}
		if acc.parent == "" {
			side, _ := domain.NormalBalanceFor(acc.accountType)
			req.AccountType = acc.accountType
			req.NormalBalance = side
		} else {
			parent := acc.parent
			req.ParentCode = &parent
		}
		if _, err := accounts.CreateAccount(ctx, req, userID); err != nil {
			return created, fmt.Errorf("creating account %s: %w", acc.code, err)
		}
		created = append(created, acc.code)
	}
	return created, nil
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the retained and current earnings accounts if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				created, err := seedEquityChart(ctx, a.services.Account, opts.userID)
				if err != nil {
					return err
				}
				if a.cfg.RetainedEarningsCode != "3.2.01" || a.cfg.CurrentEarningsCode != "3.2.02" {
					fmt.Fprintf(cmd.ErrOrStderr(), "note: closing is configured for %s / %s, seeded 3.2.01 / 3.2.02\n",
						a.cfg.RetainedEarningsCode, a.cfg.CurrentEarningsCode)
				}
				return opts.print(map[string]any{"created": created})
			})
		},
	}
}
