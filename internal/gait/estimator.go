// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gait turns a stream of insole pressure triples and a GPS speed
// reference into live step count, cadence, stride, speed, pace and distance.
//
// An Estimator holds the state of exactly one wearing session. It does no
// I/O and is not safe for concurrent use; callers that feed it from more
// than one goroutine must serialise Update and SetSpeed themselves.
package gait

import "math"

const (
	// DefaultThreshold is the raw reading every zone must exceed for the
	// foot to count as loaded on the reference insole.
	DefaultThreshold = 400.0

	// CadenceWindowMs is how far back step timestamps are kept for cadence.
	CadenceWindowMs = 10_000

	// MPSToMPH converts metres per second to miles per hour.
	MPSToMPH = 2.23694

	// minPaceSpeed is the speed (mph) below which pace is reported as 0.
	minPaceSpeed = 0.1
)

// Contact is the ground-contact phase inferred from the last sample.
type Contact int

const (
	// Swing: at least one zone at or below threshold.
	Swing Contact = iota
	// Stance: all three zones above threshold.
	Stance
)

func (c Contact) String() string {
	if c == Stance {
		return "stance"
	}
	return "swing"
}

// StepEdge selects which contact transition counts as a step.
type StepEdge int

const (
	// EdgeRelease counts a step when the foot leaves Stance.
	EdgeRelease StepEdge = iota
	// EdgeStrike counts a step when the foot enters Stance. This is the
	// variant that follows the Swing to Stance labels of the contact state
	// machine, where a step is a heel strike.
	EdgeStrike
)

// Snapshot is the full metrics set returned by every Update.
type Snapshot struct {
	StepCount    int     `json:"step_count"`
	Cadence      int     `json:"cadence"`       // steps/min
	StrideLength float64 `json:"stride_length"` // m
	Speed        float64 `json:"speed"`         // mph
	Pace         float64 `json:"pace"`          // min/mile
	Distance     float64 `json:"distance"`      // m
	Timestamp    int64   `json:"timestamp"`     // ms, from the sample
}

// Moving reports whether the snapshot implies the wearer is moving.
func (s Snapshot) Moving() bool {
	return s.Cadence > 0
}

// Estimator is the per-session step detector.
type Estimator struct {
	threshold   float64
	edge        StepEdge
	strideModel StrideModel
	height      float64 // m, 0 when unknown

	contact      Contact
	stepCount    int
	stepTimes    []int64
	lastStepTime int64
	speed        float64 // m/s
	distance     float64 // m
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithThreshold overrides the raw pressure threshold.
func WithThreshold(raw float64) Option {
	return func(e *Estimator) { e.threshold = raw }
}

// WithStepEdge selects the counted contact transition.
func WithStepEdge(edge StepEdge) Option {
	return func(e *Estimator) { e.edge = edge }
}

// WithHeight records the wearer's height, used by StrideFromHeight.
func WithHeight(feet, inches float64) Option {
	return func(e *Estimator) { e.height = HeightMeters(feet, inches) }
}

// WithStrideModel selects how stride length is derived.
func WithStrideModel(m StrideModel) Option {
	return func(e *Estimator) { e.strideModel = m }
}

// New returns an estimator in its zero session state.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		threshold:   DefaultThreshold,
		edge:        EdgeRelease,
		strideModel: StrideFromSpeed,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// SetSpeed stores the current ground speed reference in m/s. A nil speed
// means no fix and is stored as 0. The value is used as given; smoothing
// belongs to the caller.
func (e *Estimator) SetSpeed(mps *float64) {
	if mps == nil {
		e.speed = 0
		return
	}
	e.speed = *mps
}

// Update feeds one pressure triple and returns the resulting metrics.
// Timestamps are milliseconds and are expected to be non-decreasing.
func (e *Estimator) Update(p1, p2, p3 float64, timestamp int64) Snapshot {
	stepped := e.transition(p1, p2, p3, timestamp)

	cadence := e.cadence(timestamp)
	stride := e.strideLength(cadence)

	// Distance is counted per step with the stride seen at that step.
	if stepped {
		e.distance += stride / 2
	}

	speed := e.speed * MPSToMPH
	pace := 0.0
	if speed > minPaceSpeed {
		pace = 60 / speed
	}

	return Snapshot{
		StepCount:    e.stepCount,
		Cadence:      int(math.Round(cadence)),
		StrideLength: round2(stride),
		Speed:        round2(speed),
		Pace:         round2(pace),
		Distance:     round2(e.distance),
		Timestamp:    timestamp,
	}
}

// Reset returns every field to its construction-time value.
func (e *Estimator) Reset() {
	e.contact = Swing
	e.stepCount = 0
	e.stepTimes = e.stepTimes[:0]
	e.lastStepTime = 0
	e.speed = 0
	e.distance = 0
}

// Contact returns the current ground-contact phase.
func (e *Estimator) Contact() Contact { return e.contact }

// StepCount returns the cumulative step count.
func (e *Estimator) StepCount() int { return e.stepCount }

// LastStepTime returns the timestamp of the last counted step, 0 if none.
func (e *Estimator) LastStepTime() int64 { return e.lastStepTime }

// Distance returns the unrounded cumulative distance in metres.
func (e *Estimator) Distance() float64 { return e.distance }

// transition advances the contact state machine and reports whether this
// sample produced a step.
func (e *Estimator) transition(p1, p2, p3 float64, timestamp int64) bool {
	next := Swing
	if p1 > e.threshold && p2 > e.threshold && p3 > e.threshold {
		next = Stance
	}
	prev := e.contact
	e.contact = next

	var stepped bool
	switch e.edge {
	case EdgeStrike:
		stepped = prev == Swing && next == Stance
	default:
		stepped = prev == Stance && next == Swing
	}
	if !stepped {
		return false
	}

	e.stepCount++
	e.lastStepTime = timestamp
	e.stepTimes = append(e.stepTimes, timestamp)
	return true
}

// cadence trims the step history to the trailing window and returns
// steps per minute over what remains.
func (e *Estimator) cadence(now int64) float64 {
	keep := 0
	for keep < len(e.stepTimes) && now-e.stepTimes[keep] > CadenceWindowMs {
		keep++
	}
	if keep > 0 {
		e.stepTimes = append(e.stepTimes[:0], e.stepTimes[keep:]...)
	}

	n := len(e.stepTimes)
	if n < 2 {
		return 0
	}
	span := float64(e.stepTimes[n-1]-e.stepTimes[0]) / 1000
	if !(span > 0) {
		return 0
	}
	return float64(n-1) / span * 60
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
