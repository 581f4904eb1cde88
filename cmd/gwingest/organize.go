package main

import (
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gwingest/internal/alert"
	"github.com/alfredjeanlab/gwingest/internal/organize"
)

var organizeCmd = &cobra.Command{
	Use:   "organize <alertDir>",
	Short: "Symlink the alert's event directory into its significance folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := alert.ReadDir(args[0])
		if err != nil {
			return err
		}
		return organize.Run(args[0], dir.Meta, logger)
	},
}
