// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gait

// StrideModel selects how stride length is derived from cadence.
type StrideModel int

const (
	// StrideFromSpeed: distance per step implied by GPS speed and cadence.
	StrideFromSpeed StrideModel = iota
	// StrideFromHeight: anthropometric estimate from wearer height.
	StrideFromHeight
)

const (
	inchMeters = 0.0254

	legLengthRatio = 0.53
	walkStepFactor = 0.41
	runStepFactor  = 0.65

	// runCadence is the cadence above which the run step factor applies.
	runCadence = 140
)

// HeightMeters converts a height in feet and inches to metres.
func HeightMeters(feet, inches float64) float64 {
	return (feet*12 + inches) * inchMeters
}

// SpeedStride returns the stride (two steps) implied by a ground speed in
// m/s and a cadence in steps/min. It is 0 when cadence is not positive.
func SpeedStride(speedMPS, cadence float64) float64 {
	if !(cadence > 0) {
		return 0
	}
	stepsPerSecond := cadence / 60
	return speedMPS / stepsPerSecond * 2
}

// HeightStride returns the stride estimated from leg length, using the
// walking factor up to runCadence and the running factor above it.
func HeightStride(heightM, cadence float64) float64 {
	if !(cadence > 0) {
		return 0
	}
	factor := walkStepFactor
	if cadence > runCadence {
		factor = runStepFactor
	}
	return heightM * legLengthRatio * factor * 2
}

func (e *Estimator) strideLength(cadence float64) float64 {
	if e.strideModel == StrideFromHeight && e.height > 0 {
		return HeightStride(e.height, cadence)
	}
	return SpeedStride(e.speed, cadence)
}
