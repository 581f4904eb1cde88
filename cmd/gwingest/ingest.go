package main

import (
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gwingest/internal/alert"
	"github.com/alfredjeanlab/gwingest/internal/events"
	"github.com/alfredjeanlab/gwingest/internal/pipeline"
	"github.com/alfredjeanlab/gwingest/internal/store/postgres"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <alertDir>",
	Short: "Flatten an alert directory's metadata and upsert it into the alerts table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := alert.ReadDir(args[0])
		if err != nil {
			return err
		}

		st, err := postgres.New(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer st.Close()

		var publisher events.Publisher
		if cfg.Events.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.Events.NATSURL)
			if err != nil {
				return err
			}
			publisher = pub
			logger.Info("ingest notifications enabled", "nats_url", cfg.Events.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
		}
		defer publisher.Close()

		p := pipeline.New(st, cfg, logger, publisher)
		return p.Ingest(cmd.Context(), dir)
	},
}
