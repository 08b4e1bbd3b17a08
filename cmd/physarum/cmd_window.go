package main

import (
	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/simulation"
	"github.com/spf13/cobra"
)

func newWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Run the simulation in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return simulation.RunWindow(cmd.Context(), cfg, logger)
		},
	}
}
