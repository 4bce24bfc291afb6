// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package insole

import (
	"fmt"
	"strconv"
)

// Triple is one accelerometer or gyroscope reading from the insole IMU.
type Triple struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ParseTriple decodes an "x,y,z" characteristic payload.
func ParseTriple(payload []byte) (Triple, error) {
	parts := splitFields(payload)
	if len(parts) < 3 {
		return Triple{}, fmt.Errorf("%w: want 3 axis fields, got %d", ErrMalformedPacket, len(parts))
	}
	var v [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return Triple{}, fmt.Errorf("%w: axis %d %q", ErrMalformedPacket, i, parts[i])
		}
		v[i] = f
	}
	return Triple{X: v[0], Y: v[1], Z: v[2]}, nil
}

// TripleAverager keeps the running per-axis mean of a triple stream.
type TripleAverager struct {
	sum   Triple
	count int
}

// Add folds one reading into the mean.
func (a *TripleAverager) Add(t Triple) {
	a.sum.X += t.X
	a.sum.Y += t.Y
	a.sum.Z += t.Z
	a.count++
}

// Mean returns the per-axis mean, zero before the first reading.
func (a *TripleAverager) Mean() Triple {
	if a.count == 0 {
		return Triple{}
	}
	n := float64(a.count)
	return Triple{X: a.sum.X / n, Y: a.sum.Y / n, Z: a.sum.Z / n}
}

// Count returns the number of readings seen.
func (a *TripleAverager) Count() int { return a.count }

// Reset clears the mean.
func (a *TripleAverager) Reset() { *a = TripleAverager{} }
