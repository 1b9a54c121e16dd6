// Package cli implements the command-line interface for pulseiq.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulseiq/pulseiq/pkg/config"
)

var (
	// Global flags
	logLevel string

	// Global config
	cfg    *config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "pulseiq",
		Short: "Retail sales analytics ingestion and reporting service",
		Long: `pulseiq ingests a retailer's weekly spreadsheet exports, allocates
chain-wide SKU totals to stores and serves the resulting weekly sales facts
to the dashboard.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initGlobals()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level: debug, info, warn, error")
}

func initGlobals() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
