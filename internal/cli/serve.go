package cli

import (
	"os/signal"
	"syscall"

	"billing/internal/config"
	"billing/internal/logger"
	"billing/internal/server"

	"github.com/spf13/cobra"
)

func newServeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Example: `  # Serve on the port from PORT (default 8080)
  billing serve

  # Override the port
  billing serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			logger.WithComponent("serve").Info().
				Str("driver", cfg.DBDriver).
				Str("port", cfg.Port).
				Msg("database ready")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, db).Run(ctx)
		},
	}

	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	return cmd
}
