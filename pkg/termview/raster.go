package termview

import (
	"math"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/physarum"
)

// ramp goes from empty to saturated.
var ramp = []rune(" .:-=+*#%@")

// Raster is a snapshot resampled onto a grid of terminal cells. Density is
// the summed weight of the markers whose centre falls in each cell.
type Raster struct {
	Cols, Rows int
	Density    []float64
	Agents     []bool
	Peak       float64
}

// Rasterize resamples snap onto cols x rows cells. Agents are only recorded
// when the snapshot says they are visible.
func Rasterize(snap *physarum.Snapshot, cols, rows int) *Raster {
	r := &Raster{
		Cols:    cols,
		Rows:    rows,
		Density: make([]float64, cols*rows),
		Agents:  make([]bool, cols*rows),
	}
	if cols <= 0 || rows <= 0 {
		return r
	}
	w, h := snap.WorldWidth(), snap.WorldHeight()
	if w <= 0 || h <= 0 {
		return r
	}

	cell := func(x, y float64) int {
		cx := min(int(x/w*float64(cols)), cols-1)
		cy := min(int(y/h*float64(rows)), rows-1)
		return cy*cols + cx
	}
	for _, m := range snap.Markers {
		i := cell(m.Position.X, m.Position.Y)
		r.Density[i] += m.Weight
		r.Peak = math.Max(r.Peak, r.Density[i])
	}
	if snap.AgentVisibility {
		for _, a := range snap.Agents {
			r.Agents[cell(a.Position.X, a.Position.Y)] = true
		}
	}
	return r
}

// Level is the density of a cell relative to the peak, in [0, 1].
func (r *Raster) Level(x, y int) float64 {
	if r.Peak <= 0 {
		return 0
	}
	return r.Density[y*r.Cols+x] / r.Peak
}

// Glyph picks the shading rune for a cell. Any non-zero density shows at
// least the faintest glyph.
func (r *Raster) Glyph(x, y int) rune {
	l := r.Level(x, y)
	if l <= 0 {
		return ramp[0]
	}
	i := int(math.Ceil(l * float64(len(ramp)-1)))
	return ramp[min(i, len(ramp)-1)]
}
