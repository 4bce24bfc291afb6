// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package insole

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedPacket is returned for payloads that do not split into
	// the expected comma separated fields.
	ErrMalformedPacket = errors.New("insole: malformed packet")
	// ErrInvalidReading is returned for NaN, infinite or negative readings.
	ErrInvalidReading = errors.New("insole: invalid reading")
)

// Sample is one pressure triple from the insole zones.
type Sample struct {
	Toe  float64 `json:"toe"`
	Arch float64 `json:"arch"`
	Heel float64 `json:"heel"`

	Timestamp int64 `json:"timestamp"` // ms
}

// Zones returns the readings in toe, arch, heel order.
func (s Sample) Zones() [3]float64 {
	return [3]float64{s.Toe, s.Arch, s.Heel}
}

// Validate rejects readings the gait estimator must not see.
func (s Sample) Validate() error {
	for i, v := range s.Zones() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: zone %d = %v", ErrInvalidReading, i, v)
		}
	}
	return nil
}

// Format renders the sample the way the insole sends it, with the
// timestamp appended as a fourth field.
func (s Sample) Format() string {
	return fmt.Sprintf("%s,%s,%s,%d",
		strconv.FormatFloat(s.Toe, 'f', -1, 64),
		strconv.FormatFloat(s.Arch, 'f', -1, 64),
		strconv.FormatFloat(s.Heel, 'f', -1, 64),
		s.Timestamp,
	)
}

// ParsePressure decodes a pressure characteristic payload "p1,p2,p3".
// An optional fourth field carries the sample time in milliseconds;
// without it the arrival time is used.
func ParsePressure(payload []byte, arrival time.Time) (Sample, error) {
	parts := splitFields(payload)
	if len(parts) < 3 {
		return Sample{}, fmt.Errorf("%w: want 3 pressure fields, got %d", ErrMalformedPacket, len(parts))
	}

	var zones [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: field %d %q", ErrMalformedPacket, i, parts[i])
		}
		zones[i] = v
	}

	ts := arrival.UnixMilli()
	if len(parts) >= 4 && parts[3] != "" {
		v, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: timestamp %q", ErrMalformedPacket, parts[3])
		}
		ts = v
	}

	s := Sample{Toe: zones[0], Arch: zones[1], Heel: zones[2], Timestamp: ts}
	if err := s.Validate(); err != nil {
		return Sample{}, err
	}
	return s, nil
}

func splitFields(payload []byte) []string {
	raw := strings.TrimSpace(string(payload))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
