package physarum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecay_FirstControlPointAtAgeZero(t *testing.T) {
	c := DefaultConstants()
	r, w, err := c.Decay(0)
	require.NoError(t, err)
	assert.Equal(t, c.DecayTable[0].Radius, r)
	assert.Equal(t, c.DecayTable[0].Weight, w)
}

func TestDecay_ApproachesLastControlPoint(t *testing.T) {
	c := DefaultConstants()
	k := len(c.DecayTable)
	last, prev := c.DecayTable[k-1], c.DecayTable[k-2]

	r, w, err := c.Decay(c.Lifetime - 1)
	require.NoError(t, err)
	assert.Greater(t, r, prev.Radius)
	assert.Less(t, r, last.Radius)
	assert.Less(t, w, prev.Weight)
	assert.Greater(t, w, last.Weight)

	r, w, err = c.Decay(c.Lifetime)
	require.NoError(t, err)
	assert.InDelta(t, last.Radius, r, 1e-12)
	assert.InDelta(t, last.Weight, w, 1e-12)
}

func TestDecay_SegmentBoundaries(t *testing.T) {
	c := DefaultConstants()
	tests := []struct {
		age    uint64
		radius float64
		weight float64
	}{
		{0, 1.0, 1.0},
		{25, 1.5, 0.4},
		{50, 2.25, 0.15},
		{75, 3.0, 0.05},
		{100, 3.5, 0.0},
		{10, 1.2, 0.76},
		{90, 3.3, 0.02},
	}
	for _, tt := range tests {
		r, w, err := c.Decay(tt.age)
		require.NoError(t, err)
		assert.InDeltaf(t, tt.radius, r, 1e-9, "radius at age %d", tt.age)
		assert.InDeltaf(t, tt.weight, w, 1e-9, "weight at age %d", tt.age)
	}
}

func TestDecay_Monotonic(t *testing.T) {
	tables := map[string]Constants{
		"default": DefaultConstants(),
		"uneven final segment": {
			DecayTable:    []ControlPoint{{1, 1}, {2, 0.5}, {2.5, 0.2}, {4, 0}},
			Lifetime:      10,
			DropPeriod:    1,
			MaxSpawnSpeed: 1,
		},
		"two points": {
			DecayTable:    []ControlPoint{{0.5, 2}, {3, 0}},
			Lifetime:      7,
			DropPeriod:    1,
			MaxSpawnSpeed: 1,
		},
	}
	for name, c := range tables {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Validate())
			prevR, prevW, err := c.Decay(0)
			require.NoError(t, err)
			for age := uint64(1); age <= c.Lifetime; age++ {
				r, w, err := c.Decay(age)
				require.NoError(t, err)
				assert.GreaterOrEqualf(t, r, prevR, "radius shrank at age %d", age)
				assert.LessOrEqualf(t, w, prevW, "weight grew at age %d", age)
				prevR, prevW = r, w
			}
			last := c.DecayTable[len(c.DecayTable)-1]
			assert.InDelta(t, last.Radius, prevR, 1e-12)
			assert.InDelta(t, last.Weight, prevW, 1e-12)
		})
	}
}

func TestDecay_AgeBeyondLifetime(t *testing.T) {
	c := DefaultConstants()
	_, _, err := c.Decay(c.Lifetime + 1)
	require.ErrorIs(t, err, ErrLifetimeExceeded)
}

func TestConstants_Validate(t *testing.T) {
	base := DefaultConstants()
	tests := []struct {
		name   string
		mutate func(*Constants)
	}{
		{"single point", func(c *Constants) { c.DecayTable = c.DecayTable[:1] }},
		{"lifetime too short", func(c *Constants) { c.Lifetime = 3 }},
		{"zero drop period", func(c *Constants) { c.DropPeriod = 0 }},
		{"negative speed", func(c *Constants) { c.MaxSpawnSpeed = -1 }},
		{"weight increases", func(c *Constants) {
			c.DecayTable = []ControlPoint{{1, 0.5}, {2, 0.6}}
		}},
		{"radius decreases", func(c *Constants) {
			c.DecayTable = []ControlPoint{{2, 1}, {1, 0}}
		}},
	}
	require.NoError(t, base.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConstants()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConstants)
		})
	}
}
