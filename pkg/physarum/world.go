// Package physarum is a slime-mold trail simulation kernel.
//
// Agents move through a toroidal plane cut into square chunks, drop scent
// markers that fade with age and steer toward the strongest scent ahead of
// them. A World is advanced one discrete tick at a time by an external driver
// and is not safe for concurrent use: read it only between two Tick calls.
package physarum

import (
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/geometry"
	"go.uber.org/zap"
)

// World owns the grid and the tunable steering parameters.
type World struct {
	grid      grid
	chunkSize float64
	consts    Constants

	sensorAngle   float64
	sensorRange   float64
	steeringAngle float64
	agentVisible  bool

	tick   uint64
	nextID AgentID
	failed error

	rng         *rand.Rand
	parallelism int
	logger      *zap.Logger
}

// Option configures a World at construction.
type Option func(*World)

// WithConstants replaces the default decay table, lifetime, drop period and spawn speed.
func WithConstants(c Constants) Option {
	return func(w *World) { w.consts = c }
}

// WithRand sets the random source used by SpawnAgents.
func WithRand(r *rand.Rand) Option {
	return func(w *World) { w.rng = r }
}

// WithParallelism fans the sensing phase out over up to n goroutines.
// Values below 2 keep the whole tick on the calling goroutine.
func WithParallelism(n int) Option {
	return func(w *World) { w.parallelism = n }
}

// WithLogger attaches a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) { w.logger = l }
}

// New builds an empty world of width x height chunks.
func New(width, height int, chunkSize, sensorAngle, sensorRange, steeringAngle float64, opts ...Option) (*World, error) {
	if width <= 0 || height <= 0 || !(chunkSize > 0) {
		return nil, fmt.Errorf("%w: %dx%d chunks of %v", ErrInvalidGrid, width, height, chunkSize)
	}
	if err := checkSensorRange(sensorRange, chunkSize); err != nil {
		return nil, err
	}

	w := &World{
		chunkSize:     chunkSize,
		consts:        DefaultConstants(),
		sensorAngle:   sensorAngle,
		sensorRange:   sensorRange,
		steeringAngle: steeringAngle,
		agentVisible:  true,
		parallelism:   1,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.consts.Validate(); err != nil {
		return nil, err
	}
	if w.consts.MaxSpawnSpeed >= chunkSize {
		return nil, fmt.Errorf("%w: spawn speed %v, chunk size %v", ErrSpawnSpeed, w.consts.MaxSpawnSpeed, chunkSize)
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	w.grid = newGrid(width, height)

	w.logger.Debug("world created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float64("chunkSize", chunkSize),
		zap.Float64("sensorRange", sensorRange))
	return w, nil
}

func checkSensorRange(sensorRange, chunkSize float64) error {
	if !(sensorRange <= chunkSize/2) {
		return fmt.Errorf("%w: range %v, chunk size %v", ErrSensorRange, sensorRange, chunkSize)
	}
	return nil
}

// SetSensorAngle sets the half-angle between the forward probe and each side probe.
func (w *World) SetSensorAngle(v float64) { w.sensorAngle = v }

// SetSteeringAngle sets how far an agent turns per tick when it steers.
func (w *World) SetSteeringAngle(v float64) { w.steeringAngle = v }

// SetSensorRange sets the probe distance. A value above half the chunk size is
// rejected and the previous range is kept.
func (w *World) SetSensorRange(v float64) error {
	if err := checkSensorRange(v, w.chunkSize); err != nil {
		w.logger.Debug("sensor range rejected", zap.Float64("value", v), zap.Error(err))
		return err
	}
	w.sensorRange = v
	return nil
}

// SetAgentVisibility toggles whether renderers draw agents. No effect on the simulation.
func (w *World) SetAgentVisibility(visible bool) { w.agentVisible = visible }

// Now is the current tick counter.
func (w *World) Now() uint64 { return w.tick }

// Width is the number of chunk columns.
func (w *World) Width() int { return w.grid.width }

// Height is the number of chunk rows.
func (w *World) Height() int { return w.grid.height }

// ChunkSize is the side length of a chunk.
func (w *World) ChunkSize() float64 { return w.chunkSize }

func (w *World) SensorAngle() float64   { return w.sensorAngle }
func (w *World) SensorRange() float64   { return w.sensorRange }
func (w *World) SteeringAngle() float64 { return w.steeringAngle }
func (w *World) AgentVisibility() bool  { return w.agentVisible }

// Constants returns the fixed parameters of the run.
func (w *World) Constants() Constants { return w.consts }

// Err returns the error that failed the world, or nil.
func (w *World) Err() error { return w.failed }

// AgentCount is the total number of agents across all chunks.
func (w *World) AgentCount() int {
	n := 0
	for i := range w.grid.chunks {
		n += len(w.grid.chunks[i].agents)
	}
	return n
}

// MarkerCount is the total number of live markers across all chunks.
func (w *World) MarkerCount() int {
	n := 0
	for i := range w.grid.chunks {
		n += len(w.grid.chunks[i].markers)
	}
	return n
}

// Influence evaluates the decay model for m at the current tick.
func (w *World) Influence(m Marker) (Influence, error) {
	age := w.tick - m.CreatedAt
	r, wt, err := w.consts.Decay(age)
	if err != nil {
		return Influence{}, err
	}
	return Influence{Radius: r, Weight: wt, Age: age}, nil
}

// Chunks yields a read-only view of every chunk, row by row.
func (w *World) Chunks() iter.Seq[ChunkView] {
	return func(yield func(ChunkView) bool) {
		for i := range w.grid.chunks {
			if !yield(ChunkView{c: &w.grid.chunks[i], w: w}) {
				return
			}
		}
	}
}

// Chunk returns the view of the chunk at (x, y).
func (w *World) Chunk(x, y int) (ChunkView, bool) {
	if x < 0 || y < 0 || x >= w.grid.width || y >= w.grid.height {
		return ChunkView{}, false
	}
	return ChunkView{c: w.grid.at(x, y), w: w}, true
}

func (w *World) origin(c *chunk) geometry.Vector2D {
	return geometry.Vector2D{X: float64(c.x) * w.chunkSize, Y: float64(c.y) * w.chunkSize}
}
