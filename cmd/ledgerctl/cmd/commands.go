package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/money_ledger/internal/utils"
	"github.com/SscSPs/money_ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var target int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the store schema",
		Long: `Upgrade the store to the latest schema version, or to --to.

Opening the store for any other command migrates it as well; this command
only reports what changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, l, err := opts.open(cmd, ledger.WithMigrationTarget(target))
			if err != nil {
				return err
			}
			defer closeLedger(ctx, l)

			m := l.Migration
			if m.From == m.To {
				fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date at version %d\n", m.To)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated schema from version %d to %d (%d documents changed)\n", m.From, m.To, m.Changed)
			return nil
		},
	}
	cmd.Flags().IntVar(&target, "to", 0, "target schema version (default latest)")
	return cmd
}

func newRatesCmd(opts *rootOptions) *cobra.Command {
	rates := &cobra.Command{
		Use:   "rates",
		Short: "Manage exchange rates",
	}
	rates.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import currencies and rate versions from a YAML file",
		Long: `Import currencies and rate versions from a YAML file.

Rates already stored for the same pair and start date are skipped.

Example file:
  currencies:
    - {code: GEL, symbol: "₾", name: Georgian Lari, minorUnits: 2}
  rates:
    - {from: USD, to: UZS, mid: "12500", bid: "12450", ask: "12550", source: central_bank, date: 2024-01-01}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := ledger.LoadRateFile(args[0])
			if err != nil {
				return err
			}
			ctx, l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeLedger(ctx, l)

			saved, err := l.Services.FxRate.ImportRates(ctx, file, opts.cfg.DefaultUserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d rates\n", saved, len(file.Rates))
			return nil
		},
	})
	return rates
}

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Replay every account's transactions and compare with the stored balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeLedger(ctx, l)

			results, err := l.ReconcileAll(ctx, ledger.DefaultSession(opts.cfg))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tSTORED\tEXPECTED\tDIFFERENCE\tTRANSACTIONS")
			drifted := 0
			for _, r := range results {
				if !r.InBalance() {
					drifted++
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.AccountID, r.StoredBalance, r.ExpectedBalance, r.Difference, r.Transactions)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if drifted > 0 {
				return fmt.Errorf("%d of %d accounts are out of balance", drifted, len(results))
			}
			return nil
		},
	}
}

func newNetWorthCmd(opts *rootOptions) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "networth",
		Short: "Print account balances converted to the base currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if asOf != "" {
				parsed, err := time.Parse(time.DateOnly, asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of %q: %w", asOf, err)
				}
				at = parsed
			}

			ctx, l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeLedger(ctx, l)

			report, err := l.Services.Reporting.NetWorth(ctx, ledger.DefaultSession(opts.cfg), at)
			if err != nil {
				return err
			}
			currencies, err := l.Services.Currency.ListCurrencies(ctx)
			if err != nil {
				return err
			}
			format := utils.NewCurrencyFormatter(currencies).Format

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, a := range report.Accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, format(a.Balance, a.CurrencyCode), format(a.BaseAmount, report.BaseCurrency))
			}
			fmt.Fprintf(w, "TOTAL\t\t%s\n", format(report.Total, report.BaseCurrency))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "valuation date (YYYY-MM-DD, default today)")
	return cmd
}
