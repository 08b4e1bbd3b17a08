package physarum

import (
	"iter"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/geometry"
)

// AgentID identifies an agent for its whole life, across chunk migrations.
type AgentID uint64

// Agent is a mobile point. Position is local to the owning chunk.
type Agent struct {
	ID       AgentID
	Position geometry.Vector2D
	Velocity geometry.Vector2D
}

// Marker is a scent deposit. Its position never changes; its influence is
// derived from its age through Constants.Decay.
type Marker struct {
	Position  geometry.Vector2D
	CreatedAt uint64
}

type steer uint8

const (
	steerForward steer = iota
	steerLeft
	steerRight
)

func (s steer) String() string {
	switch s {
	case steerLeft:
		return "left"
	case steerRight:
		return "right"
	default:
		return "forward"
	}
}

// decision is the sensing result for one agent, tagged with its ID so the
// steering phase can check it is applied to the agent it was computed for.
type decision struct {
	agent AgentID
	steer steer
}

// chunk owns the agents and markers expressed in its local frame.
type chunk struct {
	x, y      int
	agents    []Agent
	markers   []Marker
	decisions []decision
}

// ChunkView is a read-only window on one chunk, valid until the next Tick.
type ChunkView struct {
	c *chunk
	w *World
}

// X is the chunk column.
func (v ChunkView) X() int { return v.c.x }

// Y is the chunk row.
func (v ChunkView) Y() int { return v.c.y }

// Origin is the world position of the chunk's local (0, 0).
func (v ChunkView) Origin() geometry.Vector2D { return v.w.origin(v.c) }

// AgentCount is the number of agents owned by the chunk.
func (v ChunkView) AgentCount() int { return len(v.c.agents) }

// MarkerCount is the number of live markers owned by the chunk.
func (v ChunkView) MarkerCount() int { return len(v.c.markers) }

// Agents yields copies of the chunk's agents in ownership order.
func (v ChunkView) Agents() iter.Seq[Agent] {
	return func(yield func(Agent) bool) {
		for _, a := range v.c.agents {
			if !yield(a) {
				return
			}
		}
	}
}

// Markers yields copies of the chunk's markers with their influence at the current tick.
func (v ChunkView) Markers() iter.Seq2[Marker, Influence] {
	return func(yield func(Marker, Influence) bool) {
		for _, m := range v.c.markers {
			inf, err := v.w.Influence(m)
			if err != nil {
				return
			}
			if !yield(m, inf) {
				return
			}
		}
	}
}

// Influence is the current radius and weight of a marker.
type Influence struct {
	Radius float64
	Weight float64
	Age    uint64
}
