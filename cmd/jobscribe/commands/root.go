// Package commands wires the jobscribe CLI: one-off scrapes, file driven
// batches, the control panel server and the login helper.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobscribe/internal/config"
	"jobscribe/internal/logging"
)

var (
	configPath string
	appConfig  *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "jobscribe",
	Short:         "jobscribe scrapes job listings into a JSON collection and Markdown notes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logging.InitializeLogging(cfg); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		appConfig = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.CloseLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML configuration file.")
}

// ExecuteContext runs the CLI and exits non-zero on error
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
