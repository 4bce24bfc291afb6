// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package session turns the snapshots and raw pressure of one wearing into
// the record kept in the session history.
package session

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/insole"
)

// MetersPerMile converts metres to miles.
const MetersPerMile = 1609.344

// Summary is the persisted record of one session.
type Summary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Duration  string    `json:"duration"` // HH:MM:SS

	Steps          int     `json:"steps"`
	DistanceMeters float64 `json:"distance_m"`
	DistanceMiles  float64 `json:"distance_miles"`

	// averaged over moving snapshots only
	Cadence       int     `json:"cadence"`
	CadenceStdDev float64 `json:"cadence_stddev"`
	StrideLength  float64 `json:"stride_length"`
	Speed         float64 `json:"speed"`
	Pace          float64 `json:"pace"`

	Pressure [3]int `json:"pressure"` // toe, arch, heel
	Strike   Strike `json:"strike"`
	Insight  string `json:"insight"`
}

// Recorder accumulates one session. It is not safe for concurrent use.
type Recorder struct {
	id    string
	start time.Time

	last     gait.Snapshot
	haveLast bool

	cadence []float64
	stride  []float64
	speed   []float64
	pace    []float64

	pressureSum [3]float64
	pressureN   int
}

// NewRecorder starts recording a session at start.
func NewRecorder(start time.Time) *Recorder {
	return &Recorder{id: uuid.NewString(), start: start}
}

// ID returns the session identifier.
func (r *Recorder) ID() string { return r.id }

// StartedAt returns the session start time.
func (r *Recorder) StartedAt() time.Time { return r.start }

// AddSnapshot records one estimator snapshot.
func (r *Recorder) AddSnapshot(s gait.Snapshot) {
	r.last = s
	r.haveLast = true
	if !s.Moving() {
		return
	}
	r.cadence = append(r.cadence, float64(s.Cadence))
	r.stride = append(r.stride, s.StrideLength)
	r.speed = append(r.speed, s.Speed)
	r.pace = append(r.pace, s.Pace)
}

// AddPressure records one raw pressure sample for the zone averages.
// Invalid samples are ignored.
func (r *Recorder) AddPressure(s insole.Sample) {
	if s.Validate() != nil {
		return
	}
	for i, v := range s.Zones() {
		r.pressureSum[i] += v
	}
	r.pressureN++
}

// PressureAverages returns the rounded per-zone mean and whether any
// sample was seen.
func (r *Recorder) PressureAverages() ([3]int, bool) {
	var avg [3]int
	if r.pressureN == 0 {
		return avg, false
	}
	for i, sum := range r.pressureSum {
		avg[i] = int(math.Round(sum / float64(r.pressureN)))
	}
	return avg, true
}

// Summary assembles the session record as of end.
func (r *Recorder) Summary(end time.Time) Summary {
	s := Summary{
		ID:        r.id,
		StartedAt: r.start,
		EndedAt:   end,
		Duration:  FormatDuration(end.Sub(r.start)),
		Strike:    StrikeUnknown,
	}

	if r.haveLast {
		s.Steps = r.last.StepCount
		s.DistanceMeters = r.last.Distance
		s.DistanceMiles = round2(r.last.Distance / MetersPerMile)
	}

	if len(r.cadence) > 0 {
		mean, std := stat.MeanStdDev(r.cadence, nil)
		s.Cadence = int(math.Round(mean))
		if len(r.cadence) > 1 {
			s.CadenceStdDev = round2(std)
		}
		s.StrideLength = round2(stat.Mean(r.stride, nil))
		s.Speed = round2(stat.Mean(r.speed, nil))
		s.Pace = round2(stat.Mean(r.pace, nil))
	}

	if avg, ok := r.PressureAverages(); ok {
		s.Pressure = avg
		s.Strike = ClassifyStrike(avg[0], avg[1], avg[2])
	}
	s.Insight = s.Strike.Insight()
	return s
}

// FormatDuration renders d as HH:MM:SS, truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// FormatPace renders a pace in decimal minutes per mile as m:ss.
func FormatPace(minPerMile float64) string {
	if !(minPerMile > 0) || math.IsInf(minPerMile, 0) {
		return "0:00"
	}
	mins := math.Floor(minPerMile)
	secs := math.Round((minPerMile - mins) * 60)
	if secs == 60 {
		mins++
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", int(mins), int(secs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
