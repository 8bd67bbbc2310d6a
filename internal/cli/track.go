package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Santhoshkumar2302/langfuse/internal/storage/postgres"
	"github.com/Santhoshkumar2302/langfuse/internal/tracker"
	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
)

func newTrackCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Record a usage event",
		Long:  "Record an llm-generation or api-span event: persist it locally and forward it to the configured upstream.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTrackLLMCmd(configPath), newTrackAPICmd(configPath))
	return cmd
}

func newTrackerFor(cmd *cobra.Command, configPath *string) (*tracker.Tracker, func(), error) {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.DSN == "" {
		return nil, nil, fmt.Errorf("database.dsn is required to track events")
	}

	store, err := postgres.Open(cmd.Context(), cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	t := tracker.New(store, nil, cfg.Upstream, logger.Default())
	return t, func() { store.Close() }, nil
}

func newTrackLLMCmd(configPath *string) *cobra.Command {
	var call tracker.LLMCall

	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Record a model generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, cleanup, err := newTrackerFor(cmd, configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			e, err := t.TrackLLM(cmd.Context(), call)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s\n", e.Type, e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&call.UserID, "user", "", "User the generation belongs to")
	cmd.Flags().StringVar(&call.TraceID, "trace", "", "Trace id (generated when empty)")
	cmd.Flags().StringVar(&call.Model, "model", "", "Model name")
	cmd.Flags().StringVar(&call.Prompt, "prompt", "", "Prompt text")
	cmd.Flags().StringVar(&call.Output, "output", "", "Completion text")
	cmd.Flags().Float64Var(&call.TokensUsed, "tokens", 0, "Total tokens used")
	cmd.Flags().Float64Var(&call.CostUSD, "cost", 0, "Cost in USD")
	cmd.Flags().Float64Var(&call.DurationSec, "duration", 0, "Duration in seconds")

	return cmd
}

func newTrackAPICmd(configPath *string) *cobra.Command {
	var call tracker.APICall

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Record an instrumented HTTP call",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, cleanup, err := newTrackerFor(cmd, configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			e, err := t.TrackAPI(cmd.Context(), call)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s\n", e.Type, e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&call.UserID, "user", "", "User the call belongs to")
	cmd.Flags().StringVar(&call.TraceID, "trace", "", "Trace id (generated when empty)")
	cmd.Flags().StringVar(&call.URL, "url", "", "Request URL")
	cmd.Flags().StringVar(&call.Method, "method", "GET", "HTTP method")
	cmd.Flags().IntVar(&call.StatusCode, "status", 0, "Response status code")
	cmd.Flags().Float64Var(&call.DurationSec, "duration", 0, "Duration in seconds")

	return cmd
}
