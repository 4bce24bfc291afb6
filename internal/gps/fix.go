package gps

// KnotsToMPS converts knots to metres per second.
const KnotsToMPS = 0.514444

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string   `json:"time"`                 // e.g. "12:34:56"
	Date       string   `json:"date"`                 // e.g. "06/12/25"
	Latitude   float64  `json:"lat"`                  // decimal degrees
	Longitude  float64  `json:"lon"`                  // decimal degrees
	SpeedKnots float64  `json:"speed_knots"`          // speed over ground
	SpeedMPS   *float64 `json:"speed_mps"`            // nil without a valid fix
	CourseDeg  float64  `json:"course_deg"`           // course over ground
	Validity   string   `json:"validity"`             // "A" (valid) / "V" (void)
	HDOP       float64  `json:"hdop,omitempty"`       // from the last GGA
	Satellites int64    `json:"satellites,omitempty"` // from the last GGA
	AccuracyM  *float64 `json:"accuracy_m,omitempty"` // horizontal, metres
}

// Observation is a speed sample handed to the speed filter.
type Observation struct {
	Speed    *float64 // m/s, nil when there is no fix
	Accuracy *float64 // m, nil when the receiver gives no estimate
}

// Observation extracts the speed sample carried by the fix.
func (f Fix) Observation() Observation {
	return Observation{Speed: f.SpeedMPS, Accuracy: f.AccuracyM}
}

// Valid reports whether the receiver flagged the fix as usable.
func (f Fix) Valid() bool {
	return f.Validity == "A"
}
