// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package session

import (
	"bytes"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/insole"
)

func TestSummaryAveragesMovingSnapshotsOnly(t *testing.T) {
	start := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	r := NewRecorder(start)
	_, err := uuid.Parse(r.ID())
	require.NoError(t, err)

	r.AddSnapshot(gait.Snapshot{StepCount: 1})
	r.AddSnapshot(gait.Snapshot{StepCount: 10, Cadence: 160, StrideLength: 2.0, Speed: 6.0, Pace: 10.0, Distance: 500})
	r.AddSnapshot(gait.Snapshot{StepCount: 11, Speed: 5.0, Pace: 12.0, Distance: 505})
	r.AddSnapshot(gait.Snapshot{StepCount: 20, Cadence: 171, StrideLength: 2.25, Speed: 7.0, Pace: 8.5, Distance: 1609.344})

	s := r.Summary(start.Add(1*time.Hour + 2*time.Minute + 3*time.Second + 900*time.Millisecond))

	assert.Equal(t, r.ID(), s.ID)
	assert.Equal(t, "01:02:03", s.Duration)
	assert.Equal(t, 20, s.Steps)
	assert.InDelta(t, 1609.344, s.DistanceMeters, 1e-9)
	assert.InDelta(t, 1.0, s.DistanceMiles, 1e-9)

	assert.Equal(t, 166, s.Cadence) // 165.5 rounds up
	assert.InDelta(t, 7.78, s.CadenceStdDev, 1e-9) // sample std dev
	assert.InDelta(t, 2.13, s.StrideLength, 1e-9)
	assert.InDelta(t, 6.5, s.Speed, 1e-9)
	assert.InDelta(t, 9.25, s.Pace, 1e-9)
}

func TestSummaryEmptySession(t *testing.T) {
	start := time.Now()
	s := NewRecorder(start).Summary(start)
	assert.Equal(t, "00:00:00", s.Duration)
	assert.Zero(t, s.Steps)
	assert.Zero(t, s.Cadence)
	assert.Zero(t, s.CadenceStdDev)
	assert.Equal(t, [3]int{}, s.Pressure)
	assert.Equal(t, StrikeUnknown, s.Strike)
	assert.Empty(t, s.Insight)
}

func TestPressureAverages(t *testing.T) {
	r := NewRecorder(time.Now())
	_, ok := r.PressureAverages()
	require.False(t, ok)

	r.AddPressure(insole.Sample{Toe: 100, Arch: 500, Heel: 801})
	r.AddPressure(insole.Sample{Toe: 200, Arch: 500, Heel: 800})
	r.AddPressure(insole.Sample{Toe: math.NaN(), Arch: 1, Heel: 1}) // ignored

	avg, ok := r.PressureAverages()
	require.True(t, ok)
	assert.Equal(t, [3]int{150, 500, 801}, avg)

	s := r.Summary(time.Now())
	assert.Equal(t, avg, s.Pressure)
	assert.Equal(t, StrikeForefoot, s.Strike)
	assert.NotEmpty(t, s.Insight)
}

func TestClassifyStrike(t *testing.T) {
	tests := []struct {
		toe, arch, heel int
		want            Strike
	}{
		{toe: 700, arch: 600, heel: 200, want: StrikeHeel},
		{toe: 200, arch: 600, heel: 700, want: StrikeForefoot},
		{toe: 500, arch: 300, heel: 500, want: StrikeMidfoot},
		{toe: 500, arch: 500, heel: 500, want: StrikeEven},
		{toe: 500, arch: 900, heel: 500, want: StrikeEven},
	}
	for _, tt := range tests {
		got := ClassifyStrike(tt.toe, tt.arch, tt.heel)
		assert.Equal(t, tt.want, got, "%d/%d/%d", tt.toe, tt.arch, tt.heel)
		assert.NotEmpty(t, got.Insight())
	}
}

func TestFormatPace(t *testing.T) {
	assert.Equal(t, "0:00", FormatPace(0))
	assert.Equal(t, "0:00", FormatPace(math.NaN()))
	assert.Equal(t, "8:30", FormatPace(8.5))
	assert.Equal(t, "9:00", FormatPace(8.999))
	assert.Equal(t, "12:05", FormatPace(12.0833))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(-time.Second))
	assert.Equal(t, "00:00:59", FormatDuration(59*time.Second+999*time.Millisecond))
	assert.Equal(t, "26:00:01", FormatDuration(26*time.Hour+time.Second))
}

func TestZoneColor(t *testing.T) {
	assert.Equal(t, uint8(0), ZoneColor(0).G)     // fully loaded: red
	assert.Equal(t, uint8(255), ZoneColor(1023).G) // unloaded: yellow
	assert.Equal(t, uint8(255), ZoneColor(5000).G)
	assert.Equal(t, uint8(0), ZoneColor(-20).G)
	mid := ZoneColor(511.5)
	assert.Equal(t, uint8(255), mid.R)
	assert.InDelta(t, 128, int(mid.G), 1)
	assert.Zero(t, mid.B)
}

func TestRenderHeatmap(t *testing.T) {
	img := RenderHeatmap([3]int{0, 500, 1023})
	require.Equal(t, HeatmapWidth, img.Bounds().Dx())
	require.Equal(t, HeatmapHeight, img.Bounds().Dy())

	toe := img.RGBAAt(90, 80)   // 20 px above the toe centre
	heel := img.RGBAAt(135, 200) // 20 px above the heel centre
	assert.Greater(t, heel.G, toe.G)
	assert.Greater(t, toe.R, heatmapBackground.R)
	assert.Equal(t, heatmapBackground, img.RGBAAt(2, 2))

	var buf bytes.Buffer
	require.NoError(t, EncodeHeatmapPNG(&buf, [3]int{0, 500, 1023}))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
