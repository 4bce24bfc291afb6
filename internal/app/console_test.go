// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/insole"
	"github.com/sally-golding/stepsmart/internal/session"
)

func TestPrintMetricsAndSummary(t *testing.T) {
	var buf bytes.Buffer
	printMetrics(&buf, gait.Snapshot{StepCount: 12, Cadence: 160, StrideLength: 1.5, Speed: 5.37, Pace: 11.17, Distance: 9})
	assert.Contains(t, buf.String(), "steps=   12")
	assert.Contains(t, buf.String(), "pace=11:10/mi")

	buf.Reset()
	strike := session.ClassifyStrike(200, 500, 700)
	printSummary(&buf, session.Summary{ID: "x", Duration: "00:10:00", Strike: strike, Insight: strike.Insight()})
	assert.Contains(t, buf.String(), "strike=forefoot")
	assert.Contains(t, buf.String(), strike.Insight())
}

// stopAfter cancels the replay once n samples have been drawn.
type stopAfter struct {
	insole.Source
	n      int
	cancel context.CancelFunc
}

func (s *stopAfter) Next() (insole.Sample, error) {
	s.n--
	if s.n == 0 {
		s.cancel()
	}
	return s.Source.Next()
}

func TestReplayPrintsSteps(t *testing.T) {
	cfg := config.Default()
	cfg.ProducerSpeed = 2.0
	interval := 20 * time.Millisecond

	const samples = 150 // 3 s
	tick := make(chan time.Time, samples)
	for i := 0; i < samples; i++ {
		tick <- time.Time{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &stopAfter{Source: insole.NewMockSource(120, interval, time.Now()), n: samples, cancel: cancel}

	var buf bytes.Buffer
	require.NoError(t, replay(ctx, &buf, cfg, src, interval, tick))

	out := buf.String()
	assert.Equal(t, 6, strings.Count(out, "[GAIT]"))
	assert.Contains(t, out, "[SESSION]")
	assert.Contains(t, out, "6 steps")
}
