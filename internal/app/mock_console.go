// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"io"
	"time"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/insole"
)

// RunMockConsole runs the tracker on the mock insole with no broker and
// prints a metrics line at every counted step. The session summary is
// printed when ctx is cancelled.
func RunMockConsole(ctx context.Context, w io.Writer) error {
	cfg := config.Get()
	interval := config.Interval(cfg.ProducerInterval)

	src := insole.NewMockSource(cfg.ProducerCadence, interval, time.Now())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	return replay(ctx, w, cfg, src, interval, ticker.C)
}

// replay drives a tracker from src once per tick.
func replay(ctx context.Context, w io.Writer, cfg *config.Config, src insole.Source, interval time.Duration, tick <-chan time.Time) error {
	t := NewTracker(TrackerOptions{Gait: cfg.GaitOptions(), Filter: cfg.SpeedFilter()})

	fixEvery := int(mockFixInterval / interval)
	if fixEvery < 1 {
		fixEvery = 1
	}

	lastSteps := 0
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			if sum, ok := t.EndSession(time.Now()); ok {
				printSummary(w, sum)
			}
			return nil
		case <-tick:
		}

		s, err := src.Next()
		if err != nil {
			return err
		}
		if cfg.ProducerSpeed > 0 && n%fixEvery == 0 {
			t.HandleFix(mockFix(time.UnixMilli(s.Timestamp), cfg.ProducerSpeed))
		}
		snap, err := t.HandlePressure(s)
		if err != nil {
			return err
		}
		if snap.StepCount != lastSteps {
			lastSteps = snap.StepCount
			printMetrics(w, snap)
		}
	}
}
