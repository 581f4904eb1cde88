package main

import (
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gwingest/internal/export"
	"github.com/alfredjeanlab/gwingest/internal/store/postgres"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Regenerate the CSV and table snapshots for every enabled partition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := postgres.New(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer st.Close()

		return export.New(st, cfg, logger).Run(cmd.Context())
	},
}
