package engine

// ShoulderGirdleEstimate carries the shoulder quantities that have no
// direct two-view geometric derivation. Elevation is excluded; the
// calculator measures it directly.
type ShoulderGirdleEstimate struct {
	ProtractionLeft    float64
	ProtractionRight   float64
	Rotation           float64
	ScapularWinging    float64
	ThoracicOutletRisk RiskGrade
}

// Estimator supplies the posture quantities that are not yet derived
// from landmark geometry. Implementations must be pure functions of
// their inputs so analyses stay reproducible. Swapping in a calibrated
// estimator changes metric values without touching classification.
type Estimator interface {
	ShoulderGirdle(frontal, sagittal *DetectionResult) ShoulderGirdleEstimate
	SpinalCurvature(frontal, sagittal *DetectionResult) SpinalCurvatureMetrics
	Pelvis(frontal, sagittal *DetectionResult) PelvisMetrics
	LowerExtremity(frontal, sagittal *DetectionResult) LowerExtremityMetrics
}

// FixedEstimator reproduces the reference placeholder outputs: every
// unestimated quantity sits at its clinical optimum, so none of the
// estimator-driven syndrome rules can trigger. It ignores its inputs.
type FixedEstimator struct{}

var _ Estimator = FixedEstimator{}

func (FixedEstimator) ShoulderGirdle(_, _ *DetectionResult) ShoulderGirdleEstimate {
	return ShoulderGirdleEstimate{
		ProtractionLeft:    12,
		ProtractionRight:   12,
		Rotation:           0,
		ScapularWinging:    0,
		ThoracicOutletRisk: RiskLow,
	}
}

func (FixedEstimator) SpinalCurvature(_, _ *DetectionResult) SpinalCurvatureMetrics {
	return SpinalCurvatureMetrics{
		CervicalLordosis: 30,
		ThoracicKyphosis: 35,
		LumbarLordosis:   40,
		LateralDeviation: 0,
		SpinalBalance:    0,
	}
}

func (FixedEstimator) Pelvis(_, _ *DetectionResult) PelvisMetrics {
	return PelvisMetrics{
		Tilt:            11,
		Rotation:        0,
		LateralShift:    0,
		IliacLevelDelta: 0,
		SacralAngle:     30,
	}
}

func (FixedEstimator) LowerExtremity(_, _ *DetectionResult) LowerExtremityMetrics {
	return LowerExtremityMetrics{
		HipFlexion:           0,
		KneePosition:         0,
		AnklePosition:        0,
		LegLengthDiscrepancy: 0,
		GenuValgumVarum:      0,
	}
}
