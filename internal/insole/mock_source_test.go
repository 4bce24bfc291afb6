// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package insole

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(s Sample) bool {
	return s.Toe > 400 && s.Arch > 400 && s.Heel > 400
}

func TestMockSourceOneReleasePerCycle(t *testing.T) {
	start := time.UnixMilli(10_000)
	src := NewMockSource(120, 10*time.Millisecond, start)

	var releases []int64
	prev := false
	for i := 0; i < 300; i++ { // 3 s
		s, err := src.Next()
		require.NoError(t, err)
		require.NoError(t, s.Validate())
		require.Equal(t, start.UnixMilli()+int64(i*10), s.Timestamp)

		l := loaded(s)
		if prev && !l {
			releases = append(releases, s.Timestamp)
		}
		prev = l
	}

	require.Len(t, releases, 6)
	for i := 1; i < len(releases); i++ {
		assert.Equal(t, int64(500), releases[i]-releases[i-1])
	}
	assert.Equal(t, int64(10_300), releases[0])
}

func TestMockSourceStandingStill(t *testing.T) {
	src := NewMockSource(0, 20*time.Millisecond, time.UnixMilli(0))
	for i := 0; i < 50; i++ {
		s, err := src.Next()
		require.NoError(t, err)
		assert.True(t, loaded(s))
	}
}
