// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package session

// Strike is the foot-strike pattern inferred from zone averages.
type Strike string

const (
	StrikeUnknown  Strike = "unknown"
	StrikeEven     Strike = "even"
	StrikeHeel     Strike = "heel"
	StrikeForefoot Strike = "forefoot"
	StrikeMidfoot  Strike = "midfoot"
)

// ClassifyStrike compares zone averages. Raw readings fall as load rises,
// so the lowest zone is the one landed on.
func ClassifyStrike(toe, arch, heel int) Strike {
	switch {
	case heel < toe:
		return StrikeHeel
	case toe < heel:
		return StrikeForefoot
	case arch < heel && arch < toe:
		return StrikeMidfoot
	default:
		return StrikeEven
	}
}

// Insight returns one line of form advice for the strike pattern.
func (s Strike) Insight() string {
	switch s {
	case StrikeHeel:
		return "Try increasing your cadence to avoid overstriding."
	case StrikeForefoot, StrikeMidfoot:
		return "Focus on landing your foot beneath your hips."
	case StrikeEven:
		return "Good form! Keep landing beneath your center of mass."
	default:
		return ""
	}
}
