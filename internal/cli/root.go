package cli

import (
	"fmt"
	"os"

	"billing/internal/config"
	"billing/internal/database"
	"billing/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "1.0.0"

// NewRootCommand builds the billing command tree around cfg.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing ledger for a single retail store",
		Long: `billing keeps invoices, stock levels and customer balances for one store.

Run "billing serve" to start the HTTP API. The database is chosen with
DB_DRIVER (sqlite or postgres) and the matching DB_* variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCommand(cfg),
		newMigrateCommand(cfg),
		newVerifyCommand(cfg),
	)
	return rootCmd
}

func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")

	if err := NewRootCommand(cfg).Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithComponent("cmd").Warn().Err(err).Msg("failed to close database")
	}
}

// openDB is replaced in tests.
var openDB = database.NewConnection
