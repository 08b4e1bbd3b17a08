package physarum

import (
	"fmt"
)

// ControlPoint is one (radius, weight) entry of the decay table.
type ControlPoint struct {
	Radius float64 `json:"radius" yaml:"radius"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Constants are the fixed parameters of a run. They are set once when the
// World is built and never change afterwards.
type Constants struct {
	// DecayTable spans marker ages 0..Lifetime in equal segments.
	DecayTable []ControlPoint
	// Lifetime is the age, in ticks, at which a marker is culled.
	Lifetime uint64
	// DropPeriod: agents deposit a marker on every tick that is a multiple of it.
	DropPeriod uint64
	// MaxSpawnSpeed bounds the speed of randomly spawned agents.
	MaxSpawnSpeed float64
}

// DefaultConstants returns the reference parameters.
func DefaultConstants() Constants {
	return Constants{
		DecayTable: []ControlPoint{
			{Radius: 1.0, Weight: 1.0},
			{Radius: 1.5, Weight: 0.4},
			{Radius: 2.25, Weight: 0.15},
			{Radius: 3.0, Weight: 0.05},
			{Radius: 3.5, Weight: 0.0},
		},
		Lifetime:      100,
		DropPeriod:    4,
		MaxSpawnSpeed: 2.2,
	}
}

// Validate checks the table shape and the monotonicity the decay model relies on:
// radius never shrinks and weight never grows along the table.
func (c Constants) Validate() error {
	k := len(c.DecayTable)
	if k < 2 {
		return fmt.Errorf("%w: decay table needs at least 2 control points, got %d", ErrInvalidConstants, k)
	}
	if c.Lifetime < uint64(k-1) {
		return fmt.Errorf("%w: lifetime %d shorter than %d segments", ErrInvalidConstants, c.Lifetime, k-1)
	}
	if c.DropPeriod == 0 {
		return fmt.Errorf("%w: drop period must be positive", ErrInvalidConstants)
	}
	if c.MaxSpawnSpeed < 0 {
		return fmt.Errorf("%w: negative spawn speed %v", ErrInvalidConstants, c.MaxSpawnSpeed)
	}
	for i, p := range c.DecayTable {
		if p.Radius < 0 || p.Weight < 0 {
			return fmt.Errorf("%w: control point %d has a negative component", ErrInvalidConstants, i)
		}
		if i == 0 {
			continue
		}
		prev := c.DecayTable[i-1]
		if p.Radius < prev.Radius {
			return fmt.Errorf("%w: radius decreases at control point %d", ErrInvalidConstants, i)
		}
		if p.Weight > prev.Weight {
			return fmt.Errorf("%w: weight increases at control point %d", ErrInvalidConstants, i)
		}
	}
	return nil
}

// Decay maps a marker age to its current influence radius and weight.
//
// The table is cut into K-1 segments of lifetime/(K-1) ticks; the last segment
// absorbs the remainder of the integer division so the table ends exactly at
// Lifetime. Within a segment both values are interpolated linearly.
func (c Constants) Decay(age uint64) (radius, weight float64, err error) {
	if age > c.Lifetime {
		return 0, 0, fmt.Errorf("%w: age %d, lifetime %d", ErrLifetimeExceeded, age, c.Lifetime)
	}

	segments := uint64(len(c.DecayTable) - 1)
	segment := c.Lifetime / segments
	last := segments - 1

	idx := min(age/segment, last)
	start := idx * segment
	length := segment
	if idx == last {
		length = c.Lifetime - segment*last
	}

	t := float64(age-start) / float64(length)
	p0, p1 := c.DecayTable[idx], c.DecayTable[idx+1]
	radius = p0.Radius*(1-t) + p1.Radius*t
	weight = p0.Weight*(1-t) + p1.Weight*t
	return radius, weight, nil
}
