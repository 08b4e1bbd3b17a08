package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float value between Min and Max by dragging across its bar.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64 // 0 means continuous
	Format   string  // verb used to print the value next to the label
	X, Y     float64
	W, H     float64

	// OnChange is called with the new value whenever a drag moves it.
	OnChange func(float64)

	dragging bool
}

// NewSlider creates a slider with a bar 12px high.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label:  label,
		Min:    min,
		Max:    max,
		Format: "%.2f",
		X:      x,
		Y:      y,
		W:      w,
		H:      12,
	}
	s.Value = s.clamp(value)
	return s
}

func (s *Slider) clamp(v float64) float64 {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// SetValue clamps v into range and reports whether the value changed.
// OnChange fires only on a change.
func (s *Slider) SetValue(v float64) bool {
	v = s.clamp(v)
	if v == s.Value {
		return false
	}
	s.Value = v
	if s.OnChange != nil {
		s.OnChange(v)
	}
	return true
}

// Ratio is the position of Value along the bar, in [0, 1].
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) contains(mx, my float64) bool {
	return mx >= s.X && mx <= s.X+s.W && my >= s.Y && my <= s.Y+s.H
}

// handle applies one frame of mouse state. A drag starts inside the bar and
// keeps tracking the cursor until the button is released.
func (s *Slider) handle(mx, my float64, pressed bool) {
	if !pressed {
		s.dragging = false
		return
	}
	if !s.dragging && !s.contains(mx, my) {
		return
	}
	s.dragging = true
	s.SetValue(s.Min + (mx-s.X)/s.W*(s.Max-s.Min))
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	mx, my := ebiten.CursorPosition()
	s.handle(float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

// Draw renders the label with the current value above the bar.
func (s *Slider) Draw(screen *ebiten.Image) {
	label := fmt.Sprintf("%s: "+s.Format, s.Label, s.Value)
	ebitenutil.DebugPrintAt(screen, label, int(s.X), int(s.Y)-16)

	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 110, G: 200, B: 110, A: 255}, true)
}

func (s *Slider) Height() float64 { return s.H + 22 }

func (s *Slider) MoveTo(x, y float64) { s.X, s.Y = x, y+16 }
