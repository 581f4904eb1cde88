package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gwingest/internal/export"
	"github.com/alfredjeanlab/gwingest/internal/store/postgres"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export the snapshots periodically until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := postgres.New(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer st.Close()

		interval := time.Duration(cfg.Export.Interval)
		scheduler := export.NewScheduler(export.New(st, cfg, logger), interval, logger)
		scheduler.Start()
		logger.Info("export scheduler started", "interval", interval)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		scheduler.Stop()
		return nil
	},
}
