package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Santhoshkumar2302/langfuse/internal/aggregate"
	"github.com/Santhoshkumar2302/langfuse/internal/snapshot"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

func newTotalCmd(configPath *string) *cobra.Command {
	var user string
	var limit int
	var lastNDays int
	var export string

	cmd := &cobra.Command{
		Use:   "total",
		Short: "Show usage totals",
		Long:  "Query recent events once and print aggregated totals. With --export, also write the raw events as TSV.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			loader := &snapshot.Loader{BaseURL: cfg.Dashboard.APIBaseURL}
			events, err := loader.Load(cmd.Context(), model.Filter{
				User:      user,
				Limit:     limit,
				LastNDays: lastNDays,
			})
			if err != nil {
				return err
			}

			v := aggregate.Aggregate(events, cfg.Dashboard.MaxPoints)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Events:       %d\n", len(events))
			fmt.Fprintf(out, "Total tokens: %.0f\n", v.TotalTokens)
			fmt.Fprintf(out, "Total cost:   $%.4f\n", v.TotalCostUSD)
			fmt.Fprintf(out, "API events:   %d\n", v.APIEventCount)
			fmt.Fprintf(out, "LLM events:   %d\n", v.LLMEventCount)

			if export != "" {
				if err := writeEventsTSV(export, events); err != nil {
					return fmt.Errorf("export events: %w", err)
				}
				fmt.Fprintf(out, "Exported %d events to %s\n", len(events), export)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Only count events for this user")
	cmd.Flags().IntVar(&limit, "limit", model.DefaultLimit, "Row limit")
	cmd.Flags().IntVar(&lastNDays, "last-n-days", model.DefaultLastNDays, "Time window in days")
	cmd.Flags().StringVar(&export, "export", "", "Write the fetched events to this TSV file")

	return cmd
}
