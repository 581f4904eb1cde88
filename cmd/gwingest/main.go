package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gwingest/internal/config"
)

const version = "0.3.0"

var (
	settingsPath string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "gwingest",
	Short:   "Ingest LVK superevent alerts into a database and export snapshots",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		var err error
		cfg, err = config.Load(settingsPath)
		return err
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", config.DefaultPath(), "path to the settings file")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
