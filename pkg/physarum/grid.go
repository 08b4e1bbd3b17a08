package physarum

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/geometry"
)

// grid is a toroidal height x width array of chunks stored row-major.
// Neighbors are computed, never stored.
type grid struct {
	width, height int
	chunks        []chunk
}

func newGrid(width, height int) grid {
	g := grid{width: width, height: height, chunks: make([]chunk, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.chunks[y*width+x] = chunk{x: x, y: y}
		}
	}
	return g
}

func (g *grid) index(x, y int) int { return y*g.width + x }

func (g *grid) at(x, y int) *chunk { return &g.chunks[g.index(x, y)] }

// neighbor returns the coordinates of the chunk at offset (dx, dy), wrapping
// around both edges. dx and dy are in {-1, 0, 1}.
func (g *grid) neighbor(x, y, dx, dy int) (int, int) {
	return (x + dx + g.width) % g.width, (y + dy + g.height) % g.height
}

// probeSet lists the chunk indices a sensing agent reads: its own chunk plus
// the horizontal, vertical and diagonal neighbors on the side of the quadrant
// it sits in. Duplicates (on grids one or two chunks wide) are dropped so a
// marker is never counted twice. Neighbors across a wrap are probed with their
// own origin, so markers there are never matched: an accepted approximation.
type probeSet struct {
	idx [4]int
	n   int
}

func (p *probeSet) add(i int) {
	for _, j := range p.idx[:p.n] {
		if j == i {
			return
		}
	}
	p.idx[p.n] = i
	p.n++
}

func (p *probeSet) indices() []int { return p.idx[:p.n] }

// quadrantOffset maps a local coordinate to -1 (lower half) or 1 (upper half).
func quadrantOffset(local, half float64) int {
	if local < half {
		return -1
	}
	return 1
}

func (g *grid) probes(c *chunk, local geometry.Vector2D, chunkSize float64) (probeSet, error) {
	half := chunkSize / 2
	nx := quadrantOffset(local.X, half)
	ny := quadrantOffset(local.Y, half)

	var set probeSet
	set.add(g.index(c.x, c.y))
	set.add(g.index(g.neighbor(c.x, c.y, nx, 0)))
	set.add(g.index(g.neighbor(c.x, c.y, 0, ny)))

	switch {
	case nx == 1 && ny == 1, nx == -1 && ny == 1, nx == -1 && ny == -1, nx == 1 && ny == -1:
		set.add(g.index(g.neighbor(c.x, c.y, nx, ny)))
	default:
		return set, fmt.Errorf("%w: (%d, %d) in chunk (%d, %d)", ErrQuadrant, nx, ny, c.x, c.y)
	}
	return set, nil
}
