// Package cmd holds the meetmind cobra commands.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/config"
	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/logger"
)

// Version is set at build time.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "meetmind",
	Short: "Meeting caption recorder and summarizer",
	Long: `meetmind reconstructs meeting transcripts from live caption snapshots,
stores them locally, and summarizes them with a remote text model.

Run "meetmind daemon" to accept captions from the browser bridge, then
"meetmind tui" to watch the live transcript and saved meetings.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.meetmind/config.yaml)")
}

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.LoadConfig()
}

// setupLogging configures the global logger from cfg, writing to out.
func setupLogging(cfg *config.Config, out io.Writer) {
	level := logger.GetLogLevelFromEnv(logger.LogLevel(cfg.Log.Level))
	logger.ConfigureWriter(level, cfg.Log.Dev, out)
}

// openStore loads config and opens the configured database.
func openStore() (*config.Config, *db.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}
