package gps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestSpeedFilterDefaults(t *testing.T) {
	f := NewSpeedFilter(0, -1, 0)
	assert.Equal(t, DefaultAlpha, f.Alpha)
	assert.Equal(t, DefaultDeadband, f.Deadband)
	assert.Equal(t, DefaultMaxAccuracy, f.MaxAccuracy)
}

func TestSpeedFilterZeroDeadbandDisablesClamp(t *testing.T) {
	f := NewSpeedFilter(1, 0, 10)
	assert.Zero(t, f.Deadband)

	v, ok := f.Observe(Observation{Speed: f64(0.1)})
	require.True(t, ok)
	assert.InDelta(t, 0.1, v, 1e-9)
}

func TestSpeedFilterSmoothing(t *testing.T) {
	f := NewSpeedFilter(0.2, 0.4, 10)

	v, ok := f.Observe(Observation{Speed: f64(3)})
	require.True(t, ok)
	assert.InDelta(t, 0.6, v, 1e-9)

	v, ok = f.Observe(Observation{Speed: f64(3), Accuracy: f64(4)})
	require.True(t, ok)
	assert.InDelta(t, 0.2*3+0.8*0.6, v, 1e-9)

	// converges on a steady input
	for i := 0; i < 100; i++ {
		v, _ = f.Observe(Observation{Speed: f64(3)})
	}
	assert.InDelta(t, 3, v, 1e-6)
}

func TestSpeedFilterDeadband(t *testing.T) {
	f := NewSpeedFilter(1, 0.4, 10)
	v, ok := f.Observe(Observation{Speed: f64(0.39)})
	require.True(t, ok)
	assert.Zero(t, v)

	v, _ = f.Observe(Observation{Speed: f64(0.4)})
	assert.InDelta(t, 0.4, v, 1e-9)
}

func TestSpeedFilterDiscards(t *testing.T) {
	f := NewSpeedFilter(0.5, 0.4, 10)
	f.Observe(Observation{Speed: f64(2)})
	before := f.Value()

	v, ok := f.Observe(Observation{Speed: f64(9), Accuracy: f64(10.5)})
	assert.False(t, ok)
	assert.Equal(t, before, v)

	v, ok = f.Observe(Observation{})
	assert.False(t, ok)
	assert.Equal(t, before, v)

	// accuracy exactly at the limit is kept
	_, ok = f.Observe(Observation{Speed: f64(2), Accuracy: f64(10)})
	assert.True(t, ok)
}

func TestSpeedFilterReset(t *testing.T) {
	f := NewSpeedFilter(0.2, 0.4, 10)
	f.Observe(Observation{Speed: f64(5)})
	require.NotZero(t, f.Value())
	f.Reset()
	assert.Zero(t, f.Value())
}
