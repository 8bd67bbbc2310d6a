package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Santhoshkumar2302/langfuse/internal/aggregate"
	"github.com/Santhoshkumar2302/langfuse/internal/snapshot"
	"github.com/Santhoshkumar2302/langfuse/internal/view"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

func newGraphCmd(configPath *string) *cobra.Command {
	var metric string
	var points int
	var input string
	var user string
	var limit int
	var lastNDays int

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Display an ASCII usage graph",
		Long:  "Render cost-by-date or events-by-user as horizontal bars, from the API or from a TSV export.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if metric != "cost" && metric != "users" {
				return fmt.Errorf("unknown metric %q (want cost or users)", metric)
			}

			var events []model.Event
			if input != "" {
				var err error
				if events, err = readEventsTSV(input); err != nil {
					return fmt.Errorf("read %s: %w", input, err)
				}
			} else {
				cfg, err := loadConfig(*configPath)
				if err != nil {
					return err
				}
				loader := &snapshot.Loader{BaseURL: cfg.Dashboard.APIBaseURL}
				events, err = loader.Load(cmd.Context(), model.Filter{
					User:      user,
					Limit:     limit,
					LastNDays: lastNDays,
				})
				if err != nil {
					return err
				}
			}

			v := aggregate.Aggregate(events, points)
			out := cmd.OutOrStdout()
			switch metric {
			case "cost":
				fmt.Fprintln(out, "Cost by date")
				view.WriteCostChart(out, v.CostByDate)
			case "users":
				fmt.Fprintln(out, "Events by user")
				view.WriteUserChart(out, v.CountByUser)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "cost", "Metric to graph (cost, users)")
	cmd.Flags().IntVar(&points, "points", aggregate.DefaultMaxPoints, "Maximum chart points")
	cmd.Flags().StringVar(&input, "input", "", "Read events from this TSV file instead of the API")
	cmd.Flags().StringVar(&user, "user", "", "Only graph events for this user")
	cmd.Flags().IntVar(&limit, "limit", model.DefaultLimit, "Row limit")
	cmd.Flags().IntVar(&lastNDays, "last-n-days", model.DefaultLastNDays, "Time window in days")

	return cmd
}
