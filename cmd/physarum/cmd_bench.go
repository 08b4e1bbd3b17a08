package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/physarum"
	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/simulation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type benchResult struct {
	Ticks   int
	Agents  int
	Markers int
	Elapsed time.Duration
}

func (r benchResult) rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ticks) / r.Elapsed.Seconds()
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the kernel headless and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ticks, _ := cmd.Flags().GetInt("ticks")
			every, _ := cmd.Flags().GetInt("every")
			if ticks <= 0 || every <= 0 {
				return fmt.Errorf("--ticks and --every must be positive")
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed, _ = cmd.Flags().GetUint64("seed")
			}
			if cmd.Flags().Changed("agents") {
				cfg.InitialAgents, _ = cmd.Flags().GetInt("agents")
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := runBench(ctx, cfg, ticks, every, logger)
			fmt.Fprintf(cmd.OutOrStdout(), "ticks=%d agents=%d markers=%d elapsed=%s rate=%.1f ticks/s\n",
				res.Ticks, res.Agents, res.Markers, res.Elapsed.Round(time.Millisecond), res.rate())
			return err
		},
	}
	cmd.Flags().Int("ticks", 1000, "Number of ticks to run")
	cmd.Flags().Int("every", 100, "Log throughput and population every N ticks")
	cmd.Flags().Uint64("seed", 0, "Override the config seed")
	cmd.Flags().Int("agents", 0, "Override the initial agent count")
	return cmd
}

func runBench(ctx context.Context, cfg *simulation.Config, ticks, every int, logger *zap.Logger) (res benchResult, err error) {
	world, err := cfg.NewWorld(logger)
	if err != nil {
		return res, err
	}
	if err := world.SpawnAgents(cfg.InitialAgents); err != nil {
		return res, err
	}

	start := time.Now()
	window := start
	defer func() {
		res.Elapsed = time.Since(start)
		res.Agents = world.AgentCount()
		res.Markers = world.MarkerCount()
	}()

	for res.Ticks < ticks {
		if err := ctx.Err(); err != nil {
			logger.Info("bench interrupted", zap.Int("ticks", res.Ticks))
			return res, nil
		}
		if err := world.Tick(); err != nil {
			return res, err
		}
		res.Ticks++
		if res.Ticks%every == 0 {
			logProgress(logger, world, every, time.Since(window))
			window = time.Now()
		}
	}
	return res, nil
}

func logProgress(logger *zap.Logger, world *physarum.World, n int, d time.Duration) {
	logger.Info("bench progress",
		zap.Uint64("tick", world.Now()),
		zap.Float64("ticksPerSecond", float64(n)/d.Seconds()),
		zap.Int("agents", world.AgentCount()),
		zap.Int("markers", world.MarkerCount()))
}
