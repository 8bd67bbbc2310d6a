package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Santhoshkumar2302/langfuse/internal/config"
	"github.com/Santhoshkumar2302/langfuse/internal/storage/postgres"
)

func newDoctorCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and connectivity",
		Long:  "Check that the config loads, the database is reachable, and the events API answers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0

			cfg, err := loadConfig(*configPath)
			if err != nil {
				report(out, "config", err)
				return fmt.Errorf("1 check(s) failed")
			}
			report(out, "config", nil)

			for _, check := range []struct {
				name string
				err  error
			}{
				{"database", checkDatabase(cmd.Context(), cfg)},
				{"events API", checkAPI(cmd.Context(), cfg)},
			} {
				report(out, check.name, check.err)
				if check.err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}

	return cmd
}

func report(w io.Writer, name string, err error) {
	if err != nil {
		fmt.Fprintf(w, "  FAIL  %-10s %v\n", name, err)
		return
	}
	fmt.Fprintf(w, "  ok    %s\n", name)
}

func checkDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is not set")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Ping(ctx)
}

func checkAPI(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Dashboard.APIBaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz returned %s", res.Status)
	}
	return nil
}
