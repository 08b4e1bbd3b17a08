package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const systemName = "PhysarumWorld"

// Host runs a WorldActor in its own actor system and is the only way the
// front ends talk to the kernel.
type Host struct {
	System actor.ActorSystem
	Frames <-chan *Frame

	pid    *actor.PID
	logger *zap.Logger
}

// StartHost starts an actor system and spawns the world actor in it. The
// actor spawns cfg.InitialAgents as soon as it is started.
func StartHost(ctx context.Context, cfg *Config, logger *zap.Logger) (*Host, error) {
	system, err := actor.NewActorSystem(systemName,
		actor.WithLogger(golog.DiscardLogger),
		actor.WithActorInitMaxRetries(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	frames := make(chan *Frame, 4)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(frames, cfg, logger))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	logger.Info("world actor started", zap.String("system", systemName))

	return &Host{
		System: system,
		Frames: frames,
		pid:    pid,
		logger: logger,
	}, nil
}

// Tick asks the world to advance by one step.
func (h *Host) Tick(ctx context.Context, dt time.Duration) error {
	return actor.Tell(ctx, h.pid, durationpb.New(dt))
}

// Update sends new steering parameters.
func (h *Host) Update(ctx context.Context, p Params) error {
	return actor.Tell(ctx, h.pid, p.Message())
}

// Spawn asks the world to add n agents.
func (h *Host) Spawn(ctx context.Context, n int) error {
	return actor.Tell(ctx, h.pid, wrapperspb.UInt32(uint32(n)))
}

// Stop shuts the actor system down.
func (h *Host) Stop(ctx context.Context) error {
	if err := h.System.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop actor system: %w", err)
	}
	h.logger.Info("actor system stopped")
	return nil
}
