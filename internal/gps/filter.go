package gps

// Defaults for SpeedFilter.
const (
	DefaultAlpha       = 0.2  // weight of the newest sample
	DefaultDeadband    = 0.4  // m/s, below this the wearer is standing
	DefaultMaxAccuracy = 10.0 // m, worse fixes are dropped
)

// SpeedFilter gates, clamps and exponentially smooths GPS speed before
// it reaches the gait estimator.
type SpeedFilter struct {
	Alpha       float64
	Deadband    float64
	MaxAccuracy float64

	filtered float64
}

// NewSpeedFilter returns a filter with the given parameters. A zero alpha
// or maxAccuracy selects the package default. A deadband of 0 disables the
// clamp; a negative one selects the default.
func NewSpeedFilter(alpha, deadband, maxAccuracy float64) *SpeedFilter {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	if deadband < 0 {
		deadband = DefaultDeadband
	}
	if maxAccuracy <= 0 {
		maxAccuracy = DefaultMaxAccuracy
	}
	return &SpeedFilter{Alpha: alpha, Deadband: deadband, MaxAccuracy: maxAccuracy}
}

// Observe folds one observation into the filter and returns the smoothed
// speed. ok is false when the observation was discarded, in which case
// the filter state is unchanged.
func (f *SpeedFilter) Observe(o Observation) (speed float64, ok bool) {
	if o.Speed == nil {
		return f.filtered, false
	}
	if o.Accuracy != nil && *o.Accuracy > f.MaxAccuracy {
		return f.filtered, false
	}

	v := *o.Speed
	if v < f.Deadband {
		v = 0
	}
	f.filtered = f.Alpha*v + (1-f.Alpha)*f.filtered
	return f.filtered, true
}

// Value returns the current smoothed speed.
func (f *SpeedFilter) Value() float64 { return f.filtered }

// Reset clears the smoothing state.
func (f *SpeedFilter) Reset() { f.filtered = 0 }
