package physarum

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/geometry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Tick advances the world by one step. The phases always run in this order:
// migration, sensing, steering, then integration with deposition and cull.
//
// A defensive check failing inside a phase aborts the tick. The world is then
// considered corrupt and every later call returns ErrWorldFailed.
func (w *World) Tick() error {
	if w.failed != nil {
		return fmt.Errorf("%w: %w", ErrWorldFailed, w.failed)
	}

	w.migrate()
	if err := w.sense(); err != nil {
		return w.fail(err)
	}
	if err := w.steer(); err != nil {
		return w.fail(err)
	}
	w.integrate()

	w.tick++
	return nil
}

func (w *World) fail(err error) error {
	w.failed = fmt.Errorf("tick %d: %w", w.tick, err)
	w.logger.Error("simulation tick failed", zap.Uint64("tick", w.tick), zap.Error(err))
	return w.failed
}

type relocation struct {
	agent Agent
	to    int
}

// rebase reports which side of [0, size) v fell off (-1, 0 or 1) and the
// coordinate expressed in the neighbor's frame.
func rebase(v, size float64) (int, float64) {
	var side int
	switch {
	case v < 0:
		side = -1
	case v >= size:
		side = 1
	default:
		return 0, v
	}
	v -= float64(side) * size
	// -1e-20 + size rounds to size; keep the half-open interval.
	if side == -1 && v >= size {
		v = math.Nextafter(size, 0)
	}
	return side, v
}

// migrate hands agents that left their chunk to the neighbor they crossed into.
// Insertions are applied after the full scan so a moved agent is never scanned twice.
func (w *World) migrate() {
	var moved []relocation
	for i := range w.grid.chunks {
		c := &w.grid.chunks[i]
		kept := c.agents[:0]
		for _, a := range c.agents {
			px, x := rebase(a.Position.X, w.chunkSize)
			py, y := rebase(a.Position.Y, w.chunkSize)
			if px == 0 && py == 0 {
				kept = append(kept, a)
				continue
			}
			a.Position = geometry.Vector2D{X: x, Y: y}
			moved = append(moved, relocation{agent: a, to: w.grid.index(w.grid.neighbor(c.x, c.y, px, py))})
		}
		c.agents = kept
	}

	for _, r := range moved {
		dst := &w.grid.chunks[r.to]
		dst.agents = append(dst.agents, r.agent)
	}
	if len(moved) > 0 {
		w.logger.Debug("agents migrated", zap.Uint64("tick", w.tick), zap.Int("count", len(moved)))
	}
}

// sense fills every chunk's decision buffer. It only reads agents and markers,
// so chunk rows can be processed concurrently.
func (w *World) sense() error {
	infl, err := w.weighMarkers()
	if err != nil {
		return err
	}

	if w.parallelism < 2 || w.grid.height < 2 {
		for i := range w.grid.chunks {
			if err := w.senseChunk(&w.grid.chunks[i], infl); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(w.parallelism)
	for y := 0; y < w.grid.height; y++ {
		g.Go(func() error {
			for x := 0; x < w.grid.width; x++ {
				if err := w.senseChunk(w.grid.at(x, y), infl); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// weighMarkers evaluates the decay model once per marker for this tick,
// indexed like the grid's chunks and their markers.
func (w *World) weighMarkers() ([][]Influence, error) {
	infl := make([][]Influence, len(w.grid.chunks))
	for i := range w.grid.chunks {
		markers := w.grid.chunks[i].markers
		row := make([]Influence, len(markers))
		for j, m := range markers {
			inf, err := w.Influence(m)
			if err != nil {
				return nil, err
			}
			row[j] = inf
		}
		infl[i] = row
	}
	return infl, nil
}

func (w *World) senseChunk(c *chunk, infl [][]Influence) error {
	c.decisions = c.decisions[:0]
	origin := w.origin(c)
	for _, a := range c.agents {
		s, err := w.senseAgent(c, origin, a, infl)
		if err != nil {
			return err
		}
		c.decisions = append(c.decisions, decision{agent: a.ID, steer: s})
	}
	return nil
}

func (w *World) senseAgent(c *chunk, origin geometry.Vector2D, a Agent, infl [][]Influence) (steer, error) {
	set, err := w.grid.probes(c, a.Position, w.chunkSize)
	if err != nil {
		return steerForward, err
	}

	pos := origin.Add(a.Position)
	forward := a.Velocity.Normalize().Mul(w.sensorRange)
	probeF := pos.Add(forward)
	probeL := pos.Add(forward.Rotate(w.sensorAngle))
	probeR := pos.Add(forward.Rotate(-w.sensorAngle))

	var wf, wl, wr float64
	for _, idx := range set.indices() {
		pc := &w.grid.chunks[idx]
		po := w.origin(pc)
		for j, m := range pc.markers {
			inf := infl[idx][j]
			mp := po.Add(m.Position)
			r2 := inf.Radius * inf.Radius
			if mp.DistanceSquaredTo(probeF) <= r2 {
				wf += inf.Weight
			}
			if mp.DistanceSquaredTo(probeL) <= r2 {
				wl += inf.Weight
			}
			if mp.DistanceSquaredTo(probeR) <= r2 {
				wr += inf.Weight
			}
		}
	}
	return decide(wf, wl, wr), nil
}

// decide turns toward a side only when it strictly beats both other probes.
func decide(forward, left, right float64) steer {
	switch {
	case left > forward && left > right:
		return steerLeft
	case right > forward && right > left:
		return steerRight
	default:
		return steerForward
	}
}

// steer applies the decisions produced by sense. Each decision carries the ID
// of the agent it was computed for and is checked against the agent it is applied to.
func (w *World) steer() error {
	for i := range w.grid.chunks {
		c := &w.grid.chunks[i]
		if len(c.decisions) != len(c.agents) {
			return fmt.Errorf("%w: chunk (%d, %d) has %d decisions for %d agents",
				ErrDecisionMismatch, c.x, c.y, len(c.decisions), len(c.agents))
		}
		for j := range c.agents {
			a := &c.agents[j]
			d := c.decisions[j]
			if d.agent != a.ID {
				return fmt.Errorf("%w: decision for agent %d applied to agent %d", ErrDecisionMismatch, d.agent, a.ID)
			}
			switch d.steer {
			case steerLeft:
				a.Velocity = a.Velocity.Rotate(w.steeringAngle)
			case steerRight:
				a.Velocity = a.Velocity.Rotate(-w.steeringAngle)
			}
		}
	}
	return nil
}

// integrate moves agents, drops markers on drop ticks and culls expired ones.
// Cull runs last so a marker is never removed on the tick it was dropped.
func (w *World) integrate() {
	drop := w.tick%w.consts.DropPeriod == 0
	for i := range w.grid.chunks {
		c := &w.grid.chunks[i]
		for j := range c.agents {
			c.agents[j].Position = c.agents[j].Position.Add(c.agents[j].Velocity)
		}

		if drop {
			for _, a := range c.agents {
				c.markers = append(c.markers, Marker{Position: a.Position, CreatedAt: w.tick})
			}
		}

		kept := c.markers[:0]
		for _, m := range c.markers {
			if w.tick-m.CreatedAt < w.consts.Lifetime {
				kept = append(kept, m)
			}
		}
		c.markers = kept
	}
}
