// Package cli defines the lfdash command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Santhoshkumar2302/langfuse/internal/config"
	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
)

var Version = "dev"

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "lfdash",
		Short: "LLM usage event server and live dashboard",
		Long:  "lfdash serves LLM and API usage events over HTTP and SSE, and renders a live terminal dashboard fed by a streamed working set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./config.yaml if present)")

	root.AddCommand(
		newServeCmd(&configPath),
		newDashCmd(&configPath),
		newTotalCmd(&configPath),
		newGraphCmd(&configPath),
		newTrackCmd(&configPath),
		newDoctorCmd(&configPath),
	)

	root.Version = Version
	root.SetVersionTemplate(fmt.Sprintf("lfdash %s\n", Version))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and initializes the logger from it.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
