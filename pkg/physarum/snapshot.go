package physarum

import (
	"math"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/geometry"
)

// AgentState is an agent in world coordinates.
type AgentState struct {
	ID       AgentID
	Position geometry.Vector2D
	Velocity geometry.Vector2D
}

// MarkerState is a marker in world coordinates with its current influence.
type MarkerState struct {
	Position geometry.Vector2D
	Influence
}

// Snapshot is a detached copy of the world between two ticks, for renderers.
type Snapshot struct {
	Tick            uint64
	Width, Height   int
	ChunkSize       float64
	AgentVisibility bool
	Agents          []AgentState
	Markers         []MarkerState
}

// WorldWidth is the width of the plane in world units.
func (s *Snapshot) WorldWidth() float64 { return float64(s.Width) * s.ChunkSize }

// WorldHeight is the height of the plane in world units.
func (s *Snapshot) WorldHeight() float64 { return float64(s.Height) * s.ChunkSize }

// wrap folds a world coordinate onto the torus [0, size).
func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

func (s *Snapshot) fold(p geometry.Vector2D) geometry.Vector2D {
	return geometry.Vector2D{X: wrap(p.X, s.WorldWidth()), Y: wrap(p.Y, s.WorldHeight())}
}

// Snapshot copies agents and markers out in world coordinates, folded onto the
// torus: an agent that has stepped past its chunk edge but not yet migrated is
// reported where it will be after migration.
func (w *World) Snapshot() (Snapshot, error) {
	s := Snapshot{
		Tick:            w.tick,
		Width:           w.grid.width,
		Height:          w.grid.height,
		ChunkSize:       w.chunkSize,
		AgentVisibility: w.agentVisible,
		Agents:          make([]AgentState, 0, w.AgentCount()),
		Markers:         make([]MarkerState, 0, w.MarkerCount()),
	}
	for i := range w.grid.chunks {
		c := &w.grid.chunks[i]
		origin := w.origin(c)
		for _, a := range c.agents {
			s.Agents = append(s.Agents, AgentState{
				ID:       a.ID,
				Position: s.fold(origin.Add(a.Position)),
				Velocity: a.Velocity,
			})
		}
		for _, m := range c.markers {
			inf, err := w.Influence(m)
			if err != nil {
				return Snapshot{}, err
			}
			s.Markers = append(s.Markers, MarkerState{Position: s.fold(origin.Add(m.Position)), Influence: inf})
		}
	}
	return s, nil
}
