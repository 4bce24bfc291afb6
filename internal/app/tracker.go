// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/gps"
	"github.com/sally-golding/stepsmart/internal/insole"
	"github.com/sally-golding/stepsmart/internal/session"
)

// IMUKind names which insole IMU stream a triple came from.
type IMUKind int

const (
	Accel IMUKind = iota
	Gyro
)

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	Gait   []gait.Option
	Filter *gps.SpeedFilter // nil uses the filter defaults
}

// Tracker owns one gait estimator and feeds it from the pressure and
// GPS streams. All methods are safe for concurrent use; they serialise on
// one mutex so the estimator never sees interleaved calls.
type Tracker struct {
	mu sync.Mutex

	est    *gait.Estimator
	filter *gps.SpeedFilter
	rec    *session.Recorder

	latest     gait.Snapshot
	haveLatest bool

	accel, gyro insole.TripleAverager
}

// NewTracker returns a tracker with no open session.
func NewTracker(opts TrackerOptions) *Tracker {
	f := opts.Filter
	if f == nil {
		f = gps.NewSpeedFilter(0, gps.DefaultDeadband, 0)
	}
	return &Tracker{
		est:    gait.New(opts.Gait...),
		filter: f,
	}
}

// StartSession opens a session at now and returns its ID. If one is
// already open it is kept and its ID returned.
func (t *Tracker) StartSession(now time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startLocked(now)
}

func (t *Tracker) startLocked(now time.Time) string {
	if t.rec == nil {
		t.rec = session.NewRecorder(now)
	}
	return t.rec.ID()
}

// Active reports whether a session is open.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rec != nil
}

// HandlePressure validates one pressure sample and runs it through the
// estimator. A sample arriving with no open session starts one at the
// sample's timestamp.
func (t *Tracker) HandlePressure(s insole.Sample) (gait.Snapshot, error) {
	if err := s.Validate(); err != nil {
		return gait.Snapshot{}, fmt.Errorf("pressure sample at %d: %w", s.Timestamp, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.startLocked(time.UnixMilli(s.Timestamp))

	snap := t.est.Update(s.Toe, s.Arch, s.Heel, s.Timestamp)
	t.rec.AddSnapshot(snap)
	t.rec.AddPressure(s)
	t.latest = snap
	t.haveLatest = true
	return snap, nil
}

// HandleFix filters the fix's speed and, if the filter accepts it, hands
// the smoothed value to the estimator for subsequent updates. A void fix
// means the receiver lost its position: speed drops to 0 and smoothing
// restarts. Fixes dropped only for poor accuracy leave the speed as is.
func (t *Tracker) HandleFix(f gps.Fix) (speed float64, accepted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !f.Valid() {
		t.filter.Reset()
		t.est.SetSpeed(nil)
		return 0, false
	}

	speed, accepted = t.filter.Observe(f.Observation())
	if accepted {
		t.est.SetSpeed(&speed)
	}
	return speed, accepted
}

// HandleIMU folds one accelerometer or gyroscope triple into its running
// average.
func (t *Tracker) HandleIMU(kind IMUKind, v insole.Triple) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch kind {
	case Accel:
		t.accel.Add(v)
	case Gyro:
		t.gyro.Add(v)
	}
}

// IMUAverages returns the running accelerometer and gyroscope means of
// the current session.
func (t *Tracker) IMUAverages() (accel, gyro insole.Triple) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accel.Mean(), t.gyro.Mean()
}

// Latest returns the most recent snapshot of the open session.
func (t *Tracker) Latest() (gait.Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.haveLatest
}

// EndSession closes the open session and returns its summary. The
// estimator and speed filter are reset so the next session starts from
// zero. ok is false when no session was open.
func (t *Tracker) EndSession(now time.Time) (sum session.Summary, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rec == nil {
		return session.Summary{}, false
	}
	sum = t.rec.Summary(now)

	t.rec = nil
	t.est.Reset()
	t.filter.Reset()
	t.latest = gait.Snapshot{}
	t.haveLatest = false
	t.accel.Reset()
	t.gyro.Reset()
	return sum, true
}
