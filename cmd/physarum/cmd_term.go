package main

import (
	"os/signal"
	"syscall"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/termview"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTermCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Run the simulation in the terminal",
		Long: `Run the simulation in the terminal. Marker density is drawn as shaded
glyphs and agents as 'o'.

Keys: q/Esc quit, v toggle agents, space pause, s spawn agents, +/- steering angle.

Logs would corrupt the display, so they are discarded unless --log-file is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := zap.NewNop()
			if file, _ := cmd.Flags().GetString("log-file"); file != "" {
				if logger, err = newLogger(cmd); err != nil {
					return err
				}
				defer logger.Sync()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return termview.Run(ctx, cfg, logger)
		},
	}
}
