package cli

import (
	"fmt"

	"billing/internal/config"
	"billing/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed default settings and categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			logger.WithComponent("migrate").Info().Str("driver", cfg.DBDriver).Msg("schema is up to date")
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}
