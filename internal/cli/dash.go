package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Santhoshkumar2302/langfuse/internal/pipeline"
	"github.com/Santhoshkumar2302/langfuse/internal/view"
	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

func newDashCmd(configPath *string) *cobra.Command {
	var user string
	var limit int
	var lastNDays int

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Run the live terminal dashboard",
		Long:  "Fetch a snapshot of recent events, then follow the realtime stream, redrawing the dashboard on each coalesced refresh.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logger.Default()

			sink := view.NewTerminal(cmd.OutOrStdout())
			sink.ClearFirst = true

			p := pipeline.New(pipeline.Options{
				APIBaseURL:      cfg.Dashboard.APIBaseURL,
				StreamURL:       cfg.Dashboard.StreamURL,
				MaxRetained:     cfg.Dashboard.MaxRetained,
				MaxPoints:       cfg.Dashboard.MaxPoints,
				RefreshInterval: cfg.Dashboard.RefreshInterval,
				ReconnectDelay:  cfg.Dashboard.ReconnectDelay,
				Sink:            sink,
				Logger:          log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// A failed initial snapshot is not fatal: the stream fills
			// the working set as events arrive.
			f := model.Filter{User: user, Limit: limit, LastNDays: lastNDays}
			if err := p.Refresh(ctx, f); err != nil {
				log.Warn("initial snapshot failed, starting with an empty view", "error", err)
			}

			return p.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Only show events for this user")
	cmd.Flags().IntVar(&limit, "limit", model.DefaultLimit, "Snapshot row limit")
	cmd.Flags().IntVar(&lastNDays, "last-n-days", model.DefaultLastNDays, "Snapshot time window in days")

	return cmd
}
