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

func TestParsePressure(t *testing.T) {
	arrival := time.UnixMilli(1_700_000_000_123)

	tests := []struct {
		name    string
		payload string
		want    Sample
		wantErr error
	}{
		{
			name:    "three fields use arrival time",
			payload: "512, 430,610",
			want:    Sample{Toe: 512, Arch: 430, Heel: 610, Timestamp: 1_700_000_000_123},
		},
		{
			name:    "explicit timestamp",
			payload: "1,2.5,3,42\n",
			want:    Sample{Toe: 1, Arch: 2.5, Heel: 3, Timestamp: 42},
		},
		{
			name:    "extra fields after timestamp ignored",
			payload: "1,2,3,42,junk",
			want:    Sample{Toe: 1, Arch: 2, Heel: 3, Timestamp: 42},
		},
		{name: "empty", payload: "", wantErr: ErrMalformedPacket},
		{name: "too few", payload: "1,2", wantErr: ErrMalformedPacket},
		{name: "not a number", payload: "1,x,3", wantErr: ErrMalformedPacket},
		{name: "bad timestamp", payload: "1,2,3,soon", wantErr: ErrMalformedPacket},
		{name: "negative", payload: "1,-2,3", wantErr: ErrInvalidReading},
		{name: "nan", payload: "NaN,2,3", wantErr: ErrInvalidReading},
		{name: "inf", payload: "1,2,+Inf", wantErr: ErrInvalidReading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePressure([]byte(tt.payload), arrival)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSampleFormatParses(t *testing.T) {
	s := Sample{Toe: 512.5, Arch: 401, Heel: 0, Timestamp: 987654}
	got, err := ParsePressure([]byte(s.Format()), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestParseTriple(t *testing.T) {
	got, err := ParseTriple([]byte("0.1,-9.8, 0.3"))
	require.NoError(t, err)
	assert.Equal(t, Triple{X: 0.1, Y: -9.8, Z: 0.3}, got)

	_, err = ParseTriple([]byte("1,2"))
	require.ErrorIs(t, err, ErrMalformedPacket)
}

func TestTripleAverager(t *testing.T) {
	var a TripleAverager
	assert.Equal(t, Triple{}, a.Mean())

	a.Add(Triple{X: 1, Y: 2, Z: 3})
	a.Add(Triple{X: 3, Y: 4, Z: -3})
	assert.Equal(t, 2, a.Count())
	assert.Equal(t, Triple{X: 2, Y: 3, Z: 0}, a.Mean())

	a.Reset()
	assert.Zero(t, a.Count())
}
