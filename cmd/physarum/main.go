package main

import (
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/internal/logging"
	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/simulation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "physarum",
		Short: "Slime mold trail simulation",
		Long: `physarum runs a Physarum trail simulation on a toroidal grid of chunks.

Agents drop scent markers that fade with age and steer toward the strongest
scent ahead of them. The simulation can be watched in a window, in the
terminal, or run headless to measure throughput.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (JSON or YAML)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-dev", false, "Human readable console logs")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newWindowCmd(),
		newTermCmd(),
		newBenchCmd(),
	)
	return rootCmd
}

// loadConfig returns the --config file, or the defaults when none is given.
func loadConfig(cmd *cobra.Command) (*simulation.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return simulation.DefaultConfig(), nil
	}
	return simulation.LoadConfig(path)
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	dev, _ := cmd.Flags().GetBool("log-dev")
	file, _ := cmd.Flags().GetString("log-file")
	return logging.New(level, dev, file)
}
