package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Santhoshkumar2302/langfuse/internal/server"
	"github.com/Santhoshkumar2302/langfuse/internal/storage/postgres"
	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
)

func newServeCmd(configPath *string) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the events API server",
		Long:  "Serve the events API: historical queries, ingestion, the realtime SSE feed, health, and metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cfg.Database.DSN == "" {
				return fmt.Errorf("database.dsn is required to serve (set LFDASH_DATABASE_DSN or the config file)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := postgres.Open(ctx, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			log := logger.Default()
			log.Info("serving events API", "host", cfg.Server.Host, "port", cfg.Server.Port)
			return server.New(cfg.Server, store, log).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Listen address")
	cmd.Flags().IntVar(&port, "port", 8765, "Listen port")

	return cmd
}
