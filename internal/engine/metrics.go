package engine

import (
	"math"
)

// CompressionLevel grades suboccipital compression.
type CompressionLevel string

const (
	CompressionNormal   CompressionLevel = "normal"
	CompressionMild     CompressionLevel = "mild"
	CompressionModerate CompressionLevel = "moderate"
	CompressionSevere   CompressionLevel = "severe"
)

// RiskGrade grades a categorical clinical risk.
type RiskGrade string

const (
	RiskLow      RiskGrade = "low"
	RiskModerate RiskGrade = "moderate"
	RiskHigh     RiskGrade = "high"
)

// HeadPostureMetrics covers the head/neck region, derived from the
// sagittal view.
type HeadPostureMetrics struct {
	CraniovertebralAngle    float64          `json:"craniovertebral_angle"`
	HeadTranslation         float64          `json:"head_translation"`
	UpperCervicalAngle      float64          `json:"upper_cervical_angle"`
	LowerCervicalAngle      float64          `json:"lower_cervical_angle"`
	SuboccipitalCompression CompressionLevel `json:"suboccipital_compression"`
}

// ShoulderGirdleMetrics covers shoulder alignment. Elevation is signed
// and symmetric: a positive left value means the left shoulder sits
// lower in the image than the right.
type ShoulderGirdleMetrics struct {
	ElevationLeft      float64   `json:"elevation_left"`
	ElevationRight     float64   `json:"elevation_right"`
	ProtractionLeft    float64   `json:"protraction_left"`
	ProtractionRight   float64   `json:"protraction_right"`
	Rotation           float64   `json:"rotation"`
	ScapularWinging    float64   `json:"scapular_winging"`
	ThoracicOutletRisk RiskGrade `json:"thoracic_outlet_risk"`
}

// SpinalCurvatureMetrics covers the three sagittal curves plus frontal
// plane deviation.
type SpinalCurvatureMetrics struct {
	CervicalLordosis float64 `json:"cervical_lordosis"`
	ThoracicKyphosis float64 `json:"thoracic_kyphosis"`
	LumbarLordosis   float64 `json:"lumbar_lordosis"`
	LateralDeviation float64 `json:"lateral_deviation"`
	SpinalBalance    float64 `json:"spinal_balance"`
}

// PelvisMetrics covers pelvic orientation.
type PelvisMetrics struct {
	Tilt            float64 `json:"tilt"`
	Rotation        float64 `json:"rotation"`
	LateralShift    float64 `json:"lateral_shift"`
	IliacLevelDelta float64 `json:"iliac_level_delta"`
	SacralAngle     float64 `json:"sacral_angle"`
}

// LowerExtremityMetrics covers hip-to-foot alignment. GenuValgumVarum
// is signed: positive valgum, negative varum.
type LowerExtremityMetrics struct {
	HipFlexion           float64 `json:"hip_flexion"`
	KneePosition         float64 `json:"knee_position"`
	AnklePosition        float64 `json:"ankle_position"`
	LegLengthDiscrepancy float64 `json:"leg_length_discrepancy"`
	GenuValgumVarum      float64 `json:"genu_valgum_varum"`
}

// DetailedPostureMetrics aggregates the five region analyses.
type DetailedPostureMetrics struct {
	HeadPosture     HeadPostureMetrics     `json:"head_posture"`
	ShoulderGirdle  ShoulderGirdleMetrics  `json:"shoulder_girdle"`
	SpinalCurvature SpinalCurvatureMetrics `json:"spinal_curvature"`
	Pelvis          PelvisMetrics          `json:"pelvis"`
	LowerExtremity  LowerExtremityMetrics  `json:"lower_extremity"`
}

// MetricsCalculator derives DetailedPostureMetrics from a frontal and a
// sagittal detection. It holds no state between calls; the estimator
// supplies the quantities that have no direct geometric derivation yet.
type MetricsCalculator struct {
	estimator Estimator
}

// NewMetricsCalculator builds a calculator. A nil estimator falls back
// to the fixed reference estimator.
func NewMetricsCalculator(est Estimator) *MetricsCalculator {
	if est == nil {
		est = FixedEstimator{}
	}
	return &MetricsCalculator{estimator: est}
}

// Calculate runs the five region analyzers. Both views must carry the
// full 33-point topology.
func (c *MetricsCalculator) Calculate(frontal, sagittal *DetectionResult) (*DetailedPostureMetrics, error) {
	if err := frontal.Validate(); err != nil {
		return nil, err
	}
	if err := sagittal.Validate(); err != nil {
		return nil, err
	}

	return &DetailedPostureMetrics{
		HeadPosture:     c.headPosture(sagittal),
		ShoulderGirdle:  c.shoulderGirdle(frontal, sagittal),
		SpinalCurvature: c.estimator.SpinalCurvature(frontal, sagittal),
		Pelvis:          c.estimator.Pelvis(frontal, sagittal),
		LowerExtremity:  c.estimator.LowerExtremity(frontal, sagittal),
	}, nil
}

func (c *MetricsCalculator) headPosture(sagittal *DetectionResult) HeadPostureMetrics {
	ear := sagittal.bilateral(LandmarkLeftEar, LandmarkRightEar)
	shoulder := sagittal.bilateral(LandmarkLeftShoulder, LandmarkRightShoulder)

	cva := craniovertebralAngle(sagittal, ear, shoulder)

	var translation float64
	if ear.Usable() && shoulder.Usable() {
		translation = math.Abs(ear.X-shoulder.X) * float64(sagittal.ImageWidth)
	}

	return HeadPostureMetrics{
		CraniovertebralAngle:    cva,
		HeadTranslation:         translation,
		UpperCervicalAngle:      math.Max(0, 90-cva),
		LowerCervicalAngle:      math.Max(0, cva-45),
		SuboccipitalCompression: suboccipitalCompression(cva, translation),
	}
}

// craniovertebralAngle measures the angle at the shoulder vertex
// between the shoulder-to-ear vector and a horizontal reference along
// +x, both in pixel space. Degenerate geometry yields 0.
func craniovertebralAngle(d *DetectionResult, ear, shoulder Landmark) float64 {
	if !ear.Usable() || !shoulder.Usable() {
		return 0
	}

	ex, ey := d.pixel(ear)
	sx, sy := d.pixel(shoulder)
	vx, vy := ex-sx, ey-sy

	length := math.Hypot(vx, vy)
	if length == 0 {
		return 0
	}

	// Horizontal reference is the unit vector (1, 0), so the dot
	// product reduces to the x component. Clamp guards acos against
	// floating error.
	cos := clamp(vx/length, -1, 1)
	return math.Acos(cos) * 180 / math.Pi
}

// suboccipitalCompression maps the composite forward-head score
// (66 - cva) + translation/10 onto a compression grade.
func suboccipitalCompression(cva, translation float64) CompressionLevel {
	score := (66 - cva) + translation/10
	switch {
	case score < 10:
		return CompressionNormal
	case score < 15:
		return CompressionMild
	case score < 20:
		return CompressionModerate
	default:
		return CompressionSevere
	}
}

func (c *MetricsCalculator) shoulderGirdle(frontal, sagittal *DetectionResult) ShoulderGirdleMetrics {
	est := c.estimator.ShoulderGirdle(frontal, sagittal)

	m := ShoulderGirdleMetrics{
		ProtractionLeft:    est.ProtractionLeft,
		ProtractionRight:   est.ProtractionRight,
		Rotation:           est.Rotation,
		ScapularWinging:    est.ScapularWinging,
		ThoracicOutletRisk: est.ThoracicOutletRisk,
	}

	left := frontal.Landmarks[LandmarkLeftShoulder]
	right := frontal.Landmarks[LandmarkRightShoulder]
	if left.Usable() && right.Usable() {
		delta := (left.Y - right.Y) * float64(frontal.ImageHeight)
		m.ElevationLeft = delta
		m.ElevationRight = -delta
	}

	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
