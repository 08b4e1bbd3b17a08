package physarum

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/geometry"
	"go.uber.org/zap"
)

// SpawnAgents spreads count new agents over all chunks as evenly as possible.
// Chunk i in row-major order receives floor((i+1)*count/n) - floor(i*count/n)
// agents, which sums to exactly count. Each agent gets a uniform random local
// position and a random heading with a speed below MaxSpawnSpeed.
func (w *World) SpawnAgents(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	n := len(w.grid.chunks)
	for i := range w.grid.chunks {
		c := &w.grid.chunks[i]
		share := (i+1)*count/n - i*count/n
		for range share {
			c.agents = append(c.agents, w.randomAgent())
		}
	}
	w.logger.Debug("agents spawned", zap.Int("count", count), zap.Int("total", w.AgentCount()))
	return nil
}

func (w *World) randomAgent() Agent {
	pos := geometry.Vector2D{
		X: w.inChunk(w.rng.Float64() * w.chunkSize),
		Y: w.inChunk(w.rng.Float64() * w.chunkSize),
	}
	vel := geometry.NewVectorPolar(w.rng.Float64()*w.consts.MaxSpawnSpeed, w.rng.Float64()*2*math.Pi)
	return Agent{ID: w.newID(), Position: pos, Velocity: vel}
}

func (w *World) inChunk(v float64) float64 {
	if v >= w.chunkSize {
		return math.Nextafter(w.chunkSize, 0)
	}
	return v
}

func (w *World) newID() AgentID {
	id := w.nextID
	w.nextID++
	return id
}

// PlaceAgent adds one agent to chunk (x, y) at a local position in [0, chunk size).
// Its speed must be below the chunk size.
func (w *World) PlaceAgent(x, y int, pos, vel geometry.Vector2D) (AgentID, error) {
	if x < 0 || y < 0 || x >= w.grid.width || y >= w.grid.height {
		return 0, fmt.Errorf("%w: no chunk (%d, %d)", ErrInvalidAgent, x, y)
	}
	if !(pos.X >= 0 && pos.X < w.chunkSize && pos.Y >= 0 && pos.Y < w.chunkSize) {
		return 0, fmt.Errorf("%w: local position %v outside [0, %v)", ErrInvalidAgent, pos, w.chunkSize)
	}
	if !(vel.Len() < w.chunkSize) {
		return 0, fmt.Errorf("%w: speed %v, chunk size %v", ErrSpawnSpeed, vel.Len(), w.chunkSize)
	}
	c := w.grid.at(x, y)
	a := Agent{ID: w.newID(), Position: pos, Velocity: vel}
	c.agents = append(c.agents, a)
	return a.ID, nil
}
