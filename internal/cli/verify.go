package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"billing/internal/config"
	"billing/internal/logger"
	"billing/internal/repository"
	"billing/internal/service"

	"github.com/spf13/cobra"
)

var errLedgerMismatch = errors.New("ledger check failed")

func newVerifyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check stored invoices and customer balances",
		Long: `verify re-checks total_amount = subtotal - discount_amount + gst_amount on
every invoice and lists each customer's balance beside the amount still due on
its invoices. It never writes. The command fails when any invoice total is off.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			verifier := service.NewVerifyService(
				repository.NewInvoiceRepository(db),
				repository.NewCustomerRepository(db),
				repository.NewReportRepository(db),
			)
			report, err := verifier.Verify(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
			} else {
				printReport(cmd, report)
			}

			log := logger.WithComponent("verify")
			if !report.OK() {
				log.Error().Int("mismatches", len(report.Mismatches)).Msg("invoice totals do not add up")
				return fmt.Errorf("%w: %d of %d invoices", errLedgerMismatch, len(report.Mismatches), report.InvoicesChecked)
			}
			log.Info().Int("invoices", report.InvoicesChecked).Msg("ledger is consistent")
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, report service.VerifyReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "invoices checked: %d\n", report.InvoicesChecked)
	for _, m := range report.Mismatches {
		fmt.Fprintf(out, "  MISMATCH %s total=%s expected=%s\n", m.InvoiceNumber, m.TotalAmount, m.Expected)
	}
	fmt.Fprintf(out, "customers: %d\n", len(report.Customers))
	for _, c := range report.Customers {
		deleted := ""
		if c.Deleted {
			deleted = " (deleted)"
		}
		fmt.Fprintf(out, "  %s%s balance=%s invoice_due=%s settled=%s\n", c.Name, deleted, c.Balance, c.InvoiceDue, c.Settled)
	}
}
