package physarum

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_NeighborWraps(t *testing.T) {
	g := newGrid(4, 3)
	tests := []struct {
		x, y, dx, dy int
		wantX, wantY int
	}{
		{0, 0, -1, -1, 3, 2},
		{3, 2, 1, 1, 0, 0},
		{1, 1, 0, 0, 1, 1},
		{3, 0, 1, -1, 0, 2},
		{2, 1, -1, 1, 1, 2},
	}
	for _, tt := range tests {
		x, y := g.neighbor(tt.x, tt.y, tt.dx, tt.dy)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("neighbor(%d, %d, %d, %d) = (%d, %d); want (%d, %d)",
				tt.x, tt.y, tt.dx, tt.dy, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestGrid_ProbesFollowQuadrant(t *testing.T) {
	g := newGrid(5, 5)
	c := g.at(2, 2)
	tests := []struct {
		name  string
		local geometry.Vector2D
		want  [][2]int
	}{
		{"low x low y", geometry.Vector2D{X: 1, Y: 1}, [][2]int{{2, 2}, {1, 2}, {2, 1}, {1, 1}}},
		{"high x low y", geometry.Vector2D{X: 9, Y: 1}, [][2]int{{2, 2}, {3, 2}, {2, 1}, {3, 1}}},
		{"low x high y", geometry.Vector2D{X: 1, Y: 8}, [][2]int{{2, 2}, {1, 2}, {2, 3}, {1, 3}}},
		{"high x high y", geometry.Vector2D{X: 15, Y: 15}, [][2]int{{2, 2}, {3, 2}, {2, 3}, {3, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := g.probes(c, tt.local, testChunk)
			require.NoError(t, err)
			want := make([]int, 0, len(tt.want))
			for _, p := range tt.want {
				want = append(want, g.index(p[0], p[1]))
			}
			assert.Equal(t, want, set.indices())
		})
	}
}

func TestGrid_ProbesDeduplicateOnNarrowGrids(t *testing.T) {
	g := newGrid(1, 1)
	set, err := g.probes(g.at(0, 0), geometry.Vector2D{X: 1, Y: 1}, testChunk)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, set.indices())

	g = newGrid(2, 1)
	set, err = g.probes(g.at(0, 0), geometry.Vector2D{X: 12, Y: 1}, testChunk)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, set.indices())
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name                 string
		forward, left, right float64
		want                 steer
	}{
		{"all equal", 0, 0, 0, steerForward},
		{"left dominates", 0.1, 0.5, 0.2, steerLeft},
		{"right dominates", 0.1, 0.2, 0.5, steerRight},
		{"forward dominates", 0.9, 0.5, 0.2, steerForward},
		{"left ties forward", 0.5, 0.5, 0.1, steerForward},
		{"sides tie above forward", 0.1, 0.5, 0.5, steerForward},
		{"right ties forward", 0.3, 0.1, 0.3, steerForward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decide(tt.forward, tt.left, tt.right))
		})
	}
}

func TestSense_NoMarkersMeansForward(t *testing.T) {
	w := newTestWorld(t, 3, 3)
	require.NoError(t, w.SpawnAgents(50))
	require.NoError(t, w.sense())
	for i := range w.grid.chunks {
		for _, d := range w.grid.chunks[i].decisions {
			assert.Equal(t, steerForward, d.steer)
		}
	}
}

func TestSense_TurnsTowardMarkers(t *testing.T) {
	tests := []struct {
		name   string
		marker geometry.Vector2D
		want   steer
	}{
		// Agent at (4, 8) heading +x, probes 4 units out at +-90 degrees.
		{"left", geometry.Vector2D{X: 4, Y: 12}, steerLeft},
		{"right", geometry.Vector2D{X: 4, Y: 4}, steerRight},
		{"forward", geometry.Vector2D{X: 8, Y: 8}, steerForward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(3, 3, testChunk, math.Pi/2, 4, 0.3)
			require.NoError(t, err)
			_, err = w.PlaceAgent(1, 1, geometry.Vector2D{X: 4, Y: 8}, geometry.Vector2D{X: 1})
			require.NoError(t, err)
			c := w.grid.at(1, 1)
			c.markers = append(c.markers, Marker{Position: tt.marker, CreatedAt: 0})

			require.NoError(t, w.sense())
			require.Len(t, c.decisions, 1)
			assert.Equal(t, tt.want, c.decisions[0].steer, "got %s", c.decisions[0].steer)

			require.NoError(t, w.steer())
			a := c.agents[0]
			switch tt.want {
			case steerLeft:
				assert.True(t, a.Velocity.Eq(geometry.NewVectorPolar(1, 0.3)))
			case steerRight:
				assert.True(t, a.Velocity.Eq(geometry.NewVectorPolar(1, -0.3)))
			default:
				assert.Equal(t, geometry.Vector2D{X: 1}, a.Velocity)
			}
		})
	}
}

func TestSense_ReadsNeighborChunkMarkers(t *testing.T) {
	w, err := New(3, 3, testChunk, math.Pi/2, 4, 0.3)
	require.NoError(t, err)
	// Agent in the upper-right quadrant of chunk (1, 1) heading -y.
	_, err = w.PlaceAgent(1, 1, geometry.Vector2D{X: 12, Y: 2}, geometry.Vector2D{Y: -1})
	require.NoError(t, err)
	// Left of heading -y (rotated +90 degrees) is +x: probe at world (32, 18).
	// Put the marker in chunk (2, 1) local (0, 2), i.e. world (32, 18).
	right := w.grid.at(2, 1)
	right.markers = append(right.markers, Marker{Position: geometry.Vector2D{X: 0, Y: 2}})

	require.NoError(t, w.sense())
	assert.Equal(t, steerLeft, w.grid.at(1, 1).decisions[0].steer)
}

func TestSense_IgnoresMarkersAcrossTheWrap(t *testing.T) {
	w, err := New(3, 1, testChunk, math.Pi/2, 4, 0.3)
	require.NoError(t, err)
	// Agent at the west edge of chunk 0 heading -x; the forward probe sits at world x = -3.
	_, err = w.PlaceAgent(0, 0, geometry.Vector2D{X: 1, Y: 8}, geometry.Vector2D{X: -1})
	require.NoError(t, err)
	// Geometrically that is x = 45 in chunk 2, which is probed with its own origin.
	far := w.grid.at(2, 0)
	far.markers = append(far.markers, Marker{Position: geometry.Vector2D{X: 13, Y: 8}})

	require.NoError(t, w.sense())
	assert.Equal(t, steerForward, w.grid.at(0, 0).decisions[0].steer)
}
