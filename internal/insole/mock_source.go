// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package insole

import (
	"math"
	"time"
)

// Source is anything that can provide pressure samples over time.
type Source interface {
	Next() (Sample, error)
}

// stanceFraction is the share of each gait cycle the foot is loaded.
const stanceFraction = 0.6

type mockSource struct {
	cycleMs  float64
	interval int64
	start    int64
	n        int64
}

// NewMockSource creates a mock insole that rolls heel to toe once per
// gait cycle at the given cadence (steps/min). Samples are spaced by
// interval starting at start. A non-positive cadence stands still.
func NewMockSource(cadence float64, interval time.Duration, start time.Time) Source {
	m := &mockSource{
		interval: interval.Milliseconds(),
		start:    start.UnixMilli(),
	}
	if m.interval <= 0 {
		m.interval = 1
	}
	if cadence > 0 {
		m.cycleMs = 60_000 / cadence
	}
	return m
}

func (m *mockSource) Next() (Sample, error) {
	ts := m.start + m.n*m.interval
	m.n++

	if m.cycleMs == 0 {
		return Sample{Toe: 600, Arch: 550, Heel: 650, Timestamp: ts}, nil
	}

	phase := math.Mod(float64(ts-m.start), m.cycleMs) / m.cycleMs
	if phase >= stanceFraction {
		// swing: unloaded, a little residual signal
		return Sample{Toe: 40, Arch: 25, Heel: 30, Timestamp: ts}, nil
	}

	// stance: heel peaks early, toe peaks late, arch in between
	p := phase / stanceFraction
	return Sample{
		Heel:      420 + 500*math.Sin(math.Pi*math.Min(1, p*1.4)),
		Arch:      420 + 250*math.Sin(math.Pi*p),
		Toe:       420 + 500*math.Sin(math.Pi*math.Max(0, p*1.4-0.4)),
		Timestamp: ts,
	}, nil
}
