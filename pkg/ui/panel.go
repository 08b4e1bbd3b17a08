// Package ui holds the small set of immediate-mode widgets drawn over the
// simulation window: sliders, checkboxes and buttons stacked in a panel.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything the panel can stack vertically.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	MoveTo(x, y float64)
}

const (
	titleHeight   = 30
	sectionHeight = 25
	margin        = 10
)

type entry struct {
	section string // non-empty for a section header
	widget  Widget
}

// Panel lays widgets out top to bottom inside a scrollable rectangle.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	entries []entry
}

// NewPanel creates an empty panel.
func NewPanel(x, y, width, height float64) *Panel {
	return &Panel{
		Title:       "Configuration",
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new titled group.
func (p *Panel) AddSection(title string) {
	p.entries = append(p.entries, entry{section: title})
	p.layout()
}

func (p *Panel) add(w Widget) {
	p.entries = append(p.entries, entry{widget: w})
	p.layout()
}

// AddSlider adds a slider widget to the panel
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(0, 0, p.Width-2*margin, label, min, max, value)
	p.add(s)
	return s
}

// AddCheckbox adds a checkbox widget to the panel
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.add(c)
	return c
}

// AddButton adds a full-width button to the panel.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.Width-2*margin, 24, label, onClick)
	p.add(b)
	return b
}

// layout positions every widget for the current scroll offset and returns
// the total content height.
func (p *Panel) layout() float64 {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, e := range p.entries {
		if e.widget == nil {
			y += sectionHeight
			continue
		}
		e.widget.MoveTo(p.X+margin, y)
		y += e.widget.Height()
	}
	return y + p.ScrollOffset - p.Y
}

// Scroll moves the content by dy pixels, clamped to the content height.
func (p *Panel) Scroll(dy float64) {
	p.ScrollOffset += dy
	p.ScrollOffset = max(0, min(p.ScrollOffset, p.maxScroll()))
	p.layout()
}

func (p *Panel) maxScroll() float64 {
	saved := p.ScrollOffset
	p.ScrollOffset = 0
	total := p.layout()
	p.ScrollOffset = saved
	return max(0, total-p.Height+margin)
}

// Contains reports whether a screen point lies on the panel.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

func (p *Panel) visible(y, h float64) bool {
	return y >= p.Y+titleHeight-h && y+h <= p.Y+p.Height
}

// Update handles the wheel and input for every visible widget.
func (p *Panel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		mx, my := ebiten.CursorPosition()
		if p.Contains(float64(mx), float64(my)) {
			p.Scroll(-dy * 20)
		}
	}
	for _, e := range p.entries {
		if e.widget != nil {
			e.widget.Update()
		}
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	y := p.Y + titleHeight - p.ScrollOffset
	for _, e := range p.entries {
		if e.widget == nil {
			if p.visible(y, sectionHeight) {
				vector.FillRect(screen,
					float32(p.X+5), float32(y),
					float32(p.Width-10), 20,
					color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
				ebitenutil.DebugPrintAt(screen, e.section, int(p.X+margin), int(y+2))
			}
			y += sectionHeight
			continue
		}
		if h := e.widget.Height(); p.visible(y, h) {
			e.widget.Draw(screen)
		}
		y += e.widget.Height()
	}
}
