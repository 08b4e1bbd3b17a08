package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlider_SetValueClampsAndSnaps(t *testing.T) {
	s := NewSlider(0, 0, 100, "range", 0, 8, 3)
	var got []float64
	s.OnChange = func(v float64) { got = append(got, v) }

	assert.True(t, s.SetValue(12))
	assert.Equal(t, 8.0, s.Value)
	assert.False(t, s.SetValue(9), "clamped to the same value")

	s.Step = 0.5
	assert.True(t, s.SetValue(2.3))
	assert.Equal(t, 2.5, s.Value)
	assert.Equal(t, []float64{8, 2.5}, got)
	assert.InDelta(t, 2.5/8, s.Ratio(), 1e-12)
}

func TestSlider_DragFollowsCursorOutsideBar(t *testing.T) {
	s := NewSlider(10, 100, 100, "angle", 0, 1, 0)

	s.handle(5, 50, true) // pressed elsewhere
	assert.Equal(t, 0.0, s.Value)
	s.handle(5, 50, false)

	s.handle(60, 105, true)
	assert.InDelta(t, 0.5, s.Value, 1e-12)
	s.handle(300, 200, true) // dragged past the end while held
	assert.Equal(t, 1.0, s.Value)
	s.handle(300, 200, false)
	s.handle(10, 105, false)
	assert.Equal(t, 1.0, s.Value, "moving without the button does nothing")
}

func TestCheckbox_TogglesOncePerPress(t *testing.T) {
	c := NewCheckbox(0, 0, "agents", true)
	toggles := 0
	c.OnToggle = func(bool) { toggles++ }

	for range 5 {
		c.handle(8, 8, true)
	}
	assert.False(t, c.Value)
	c.handle(8, 8, false)
	c.handle(8, 8, true)
	assert.True(t, c.Value)
	assert.Equal(t, 2, toggles)

	c.handle(50, 50, false)
	c.handle(50, 50, true)
	assert.True(t, c.Value)
}

func TestButton_ClickFiresOnPressEdge(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 80, 20, "Spawn", func() { clicks++ })

	b.handle(10, 10, true)
	b.handle(10, 10, true)
	b.handle(10, 10, false)
	b.handle(10, 10, true)
	b.handle(200, 10, true)
	assert.Equal(t, 2, clicks)
	assert.False(t, b.hover)
}

func TestPanel_StacksWidgets(t *testing.T) {
	p := NewPanel(10, 10, 200, 120)
	p.AddSection("Sensing")
	s1 := p.AddSlider("a", 0, 1, 0)
	s2 := p.AddSlider("b", 0, 1, 0)
	p.AddSection("Display")
	cb := p.AddCheckbox("c", false)
	btn := p.AddButton("go", nil)

	assert.Equal(t, 20.0, s1.X)
	assert.Less(t, s1.Y, s2.Y)
	assert.Equal(t, s2.Height(), s2.Y-s1.Y)
	assert.Greater(t, cb.Y, s2.Y+s2.H+sectionHeight-1)
	assert.Equal(t, cb.Y+cb.Height(), btn.Y)
	assert.Equal(t, 180.0, btn.W)
}

func TestPanel_ScrollIsClamped(t *testing.T) {
	p := NewPanel(0, 0, 200, 100)
	for range 10 {
		p.AddSlider("s", 0, 1, 0)
	}
	first := p.entries[0].widget.(*Slider)
	y0 := first.Y

	p.Scroll(-50)
	assert.Equal(t, 0.0, p.ScrollOffset)

	p.Scroll(40)
	assert.Equal(t, 40.0, p.ScrollOffset)
	assert.Equal(t, y0-40, first.Y)

	p.Scroll(1e6)
	assert.Equal(t, p.maxScroll(), p.ScrollOffset)
	assert.Greater(t, p.ScrollOffset, 0.0)

	short := NewPanel(0, 0, 200, 500)
	short.AddCheckbox("c", true)
	short.Scroll(30)
	assert.Equal(t, 0.0, short.ScrollOffset)
}
