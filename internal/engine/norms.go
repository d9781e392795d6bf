package engine

// Metric keys into the clinical norm table.
const (
	MetricCraniovertebralAngle = "craniovertebral_angle"
	MetricCervicalLordosis     = "cervical_lordosis"
	MetricThoracicKyphosis     = "thoracic_kyphosis"
	MetricLumbarLordosis       = "lumbar_lordosis"
	MetricPelvicTilt           = "pelvic_tilt"
	MetricLateralDeviation     = "lateral_deviation"
	MetricPelvicShift          = "pelvic_shift"
)

// Max-difference thresholds for paired measurements. Pixel-space
// approximations, not calibrated physical units.
const (
	ShoulderLevelMaxDiff = 5.0
	PelvicLevelMaxDiff   = 3.0
	HeadTranslationMax   = 15.0
	LegLengthMaxDiff     = 6.0
)

// NormRange holds the clinical optimum and acceptable band for one
// metric.
type NormRange struct {
	Optimal float64
	Low     float64
	High    float64
}

// Center returns the midpoint of the acceptable band.
func (r NormRange) Center() float64 {
	return (r.Low + r.High) / 2
}

// Width returns the span of the acceptable band.
func (r NormRange) Width() float64 {
	return r.High - r.Low
}

// norms is the static clinical reference table. Read-only constant
// data, safe for any number of concurrent readers.
var norms = map[string]NormRange{
	MetricCraniovertebralAngle: {Optimal: 59, Low: 52, High: 66},
	MetricCervicalLordosis:     {Optimal: 30, Low: 20, High: 40},
	MetricThoracicKyphosis:     {Optimal: 35, Low: 25, High: 45},
	MetricLumbarLordosis:       {Optimal: 40, Low: 30, High: 50},
	MetricPelvicTilt:           {Optimal: 11, Low: 8, High: 15},
	MetricLateralDeviation:     {Optimal: 0, Low: -10, High: 10},
	MetricPelvicShift:          {Optimal: 0, Low: -15, High: 15},
}

// Norm looks up the reference range for a metric key. The second
// return is false for unknown keys.
func Norm(key string) (NormRange, bool) {
	r, ok := norms[key]
	return r, ok
}
