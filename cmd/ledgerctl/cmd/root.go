// Package cmd provides the ledgerctl maintenance commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/money_ledger/internal/platform/config"
	"github.com/SscSPs/money_ledger/internal/platform/logging"
	"github.com/SscSPs/money_ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dbPath string
	debug  bool

	cfg *config.Config
}

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Maintain an embedded multi-currency ledger store",
		Long: `ledgerctl runs maintenance tasks against a ledger store.

Configuration comes from LEDGER_* environment variables or a .env file.

Example:
  ledgerctl migrate
  ledgerctl rates import rates.yaml
  ledgerctl reconcile`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if opts.dbPath != "" {
				cfg.DatabasePath = opts.dbPath
			}
			if opts.debug {
				cfg.LogLevel = "debug"
			}
			opts.cfg = cfg

			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.IsProduction)
			slog.SetDefault(logger)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file (overrides LEDGER_DB_PATH)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newRatesCmd(opts))
	root.AddCommand(newReconcileCmd(opts))
	root.AddCommand(newNetWorthCmd(opts))
	return root
}

// Run executes ledgerctl with the process arguments and returns the exit code.
func Run() int {
	return exitCode(NewRootCmd().ExecuteContext(context.Background()))
}

// open opens the ledger for one command run, tagging the context with the command name.
func (o *rootOptions) open(cmd *cobra.Command, extra ...ledger.Option) (context.Context, *ledger.Ledger, error) {
	ctx := logging.WithOperation(cmd.Context(), cmd.CommandPath())
	l, err := ledger.Open(ctx, o.cfg, extra...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return ctx, l, nil
}

func closeLedger(ctx context.Context, l *ledger.Ledger) {
	if err := l.Close(); err != nil {
		logging.GetLoggerFromCtx(ctx).Error("Error closing ledger", slog.String("error", err.Error()))
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
