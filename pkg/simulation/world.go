package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/physarum"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Parameter keys accepted in a structpb.Struct update.
const (
	ParamSensorAngle     = "sensorAngle"
	ParamSensorRange     = "sensorRange"
	ParamSteeringAngle   = "steeringAngle"
	ParamAgentVisibility = "agentVisibility"
)

var ErrInvalidUpdate = errors.New("invalid parameter update")

// Frame is published by the world actor after every tick. Err is set once the
// kernel has failed; no further ticks are run after that.
type Frame struct {
	Snapshot physarum.Snapshot
	Err      error
}

// Params are the steering parameters a UI may change while running.
type Params struct {
	SensorAngle     float64
	SensorRange     float64
	SteeringAngle   float64
	AgentVisibility bool
}

// Message encodes the params as an update for the world actor.
func (p Params) Message() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		ParamSensorAngle:     structpb.NewNumberValue(p.SensorAngle),
		ParamSensorRange:     structpb.NewNumberValue(p.SensorRange),
		ParamSteeringAngle:   structpb.NewNumberValue(p.SteeringAngle),
		ParamAgentVisibility: structpb.NewBoolValue(p.AgentVisibility),
	}}
}

// WorldActor owns the kernel. Its mailbox serialises ticks, parameter updates
// and spawn requests, so the kernel itself needs no locking.
//
//   - *durationpb.Duration runs one tick; the value is the frame delta.
//   - *structpb.Struct updates steering parameters.
//   - *wrapperspb.UInt32Value spawns that many agents.
type WorldActor struct {
	cfg    *Config
	world  *physarum.World
	frames chan<- *Frame
	logger *zap.Logger

	// stats, logged once per second
	ticks       int
	tickTime    time.Duration
	elapsed     time.Duration
	lastLogTime time.Time
}

// NewWorldActor creates the world logic unit
func NewWorldActor(frames chan<- *Frame, cfg *Config, logger *zap.Logger) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		frames:      frames,
		logger:      logger.Named("world"),
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(*actor.Context) error {
	return w.build()
}

func (w *WorldActor) build() error {
	world, err := w.cfg.NewWorld(w.logger)
	if err != nil {
		return fmt.Errorf("failed to build world: %w", err)
	}
	w.world = world
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		w.spawn(w.cfg.InitialAgents)
		w.publish()

	case *durationpb.Duration:
		w.step(msg.AsDuration())

	case *structpb.Struct:
		if err := w.update(msg); err != nil {
			w.logger.Warn("parameter update rejected", zap.Error(err))
		}

	case *wrapperspb.UInt32Value:
		w.spawn(int(msg.GetValue()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(*actor.Context) error {
	if w.world == nil {
		return nil
	}
	w.logger.Info("world stopped",
		zap.Uint64("tick", w.world.Now()),
		zap.Int("agents", w.world.AgentCount()))
	return nil
}

// step runs one tick and publishes the result. Once the kernel has failed
// the error frame is republished instead, until a consumer picks it up.
func (w *WorldActor) step(dt time.Duration) {
	if err := w.world.Err(); err != nil {
		w.send(&Frame{Err: err})
		return
	}

	start := time.Now()
	if err := w.world.Tick(); err != nil {
		w.logger.Error("world stopped ticking", zap.Error(err))
		w.send(&Frame{Err: err})
		return
	}
	w.ticks++
	w.tickTime += time.Since(start)
	w.elapsed += dt
	w.logStats()
	w.publish()
}

func (w *WorldActor) logStats() {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	w.logger.Info("tick rate",
		zap.Int("ticksPerSecond", w.ticks),
		zap.Duration("avgTick", w.tickTime/time.Duration(max(w.ticks, 1))),
		zap.Duration("simulated", w.elapsed),
		zap.Uint64("tick", w.world.Now()),
		zap.Int("agents", w.world.AgentCount()),
		zap.Int("markers", w.world.MarkerCount()))
	w.ticks = 0
	w.tickTime = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) publish() {
	snap, err := w.world.Snapshot()
	if err != nil {
		w.send(&Frame{Err: err})
		return
	}
	w.send(&Frame{Snapshot: snap})
}

func (w *WorldActor) send(f *Frame) {
	select {
	case w.frames <- f:
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) spawn(n int) {
	if err := w.world.SpawnAgents(n); err != nil {
		w.logger.Warn("spawn rejected", zap.Int("count", n), zap.Error(err))
		return
	}
	w.logger.Debug("agents spawned", zap.Int("count", n), zap.Int("total", w.world.AgentCount()))
}

// update applies every field it understands. A rejected field leaves its
// parameter unchanged; the other fields are still applied.
func (w *WorldActor) update(msg *structpb.Struct) error {
	var errs []error
	for key, v := range msg.GetFields() {
		if err := w.apply(key, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (w *WorldActor) apply(key string, v *structpb.Value) error {
	if key == ParamAgentVisibility {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return fmt.Errorf("%w: want a bool", ErrInvalidUpdate)
		}
		w.world.SetAgentVisibility(b.BoolValue)
		return nil
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return fmt.Errorf("%w: want a number", ErrInvalidUpdate)
	}
	switch key {
	case ParamSensorAngle:
		w.world.SetSensorAngle(n.NumberValue)
	case ParamSteeringAngle:
		w.world.SetSteeringAngle(n.NumberValue)
	case ParamSensorRange:
		return w.world.SetSensorRange(n.NumberValue)
	default:
		return fmt.Errorf("%w: unknown parameter", ErrInvalidUpdate)
	}
	return nil
}
