package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// app is the service graph a command runs against.
type app struct {
	cfg      *config.Config
	pool     *pgxpool.Pool
	services *portssvc.ServiceContainer
}

func (a *app) Close() {
	database.ClosePgxPool(a.pool)
}

// appFactory opens the service graph. Tests replace it.
type appFactory func(ctx context.Context, logger *slog.Logger) (*app, error)

func openApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBConnTimeout,
		Ping:           true,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Database connection pool established")
	return &app{
		cfg:      cfg,
		pool:     pool,
		services: services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool), nil),
	}, nil
}

// rootOptions are shared by every subcommand.
type rootOptions struct {
	userID  string
	verbose bool
	out     io.Writer
	open    appFactory
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// withApp opens the service graph, runs fn and closes it.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := o.open(ctx, o.logger())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func (o *rootOptions) print(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{out: os.Stdout, open: openApp})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Administer the general ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.userID, "user", "ledgerctl", "user recorded in audit fields")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newPreviewClosingCommand(opts),
		newCloseYearCommand(opts),
		newReverseClosingCommand(opts),
		newTrialBalanceCommand(opts),
		newBalanceSheetCommand(opts),
		newIncomeStatementCommand(opts),
	)
	return rootCmd
}

func parseYearArg(arg string) (int, error) {
	year, err := strconv.Atoi(arg)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid fiscal year %q", arg)
	}
	return year, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value, defaulting to today when empty.
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		y, m, d := time.Now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", name, value)
	}
	return t, nil
}
