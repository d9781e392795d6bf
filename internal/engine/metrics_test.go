package engine

import (
	"math"
	"testing"
)

// newDetection builds a full-topology detection with every landmark at
// the image center and comfortably visible.
func newDetection(width, height int) *DetectionResult {
	landmarks := make([]Landmark, MinLandmarks)
	for i := range landmarks {
		landmarks[i] = Landmark{X: 0.5, Y: 0.5, Visibility: 0.9}
	}
	return &DetectionResult{
		Landmarks:   landmarks,
		Confidence:  0.95,
		ImageWidth:  width,
		ImageHeight: height,
	}
}

func hideLandmark(d *DetectionResult, idx int) {
	d.Landmarks[idx].Visibility = 0
}

func approx(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Fatalf("%s: got %v, want %v", name, got, want)
	}
}

func TestCraniovertebralAngleFortyDegrees(t *testing.T) {
	sagittal := newDetection(1000, 1000)
	// Left-side landmarks carry the view; right side occluded.
	hideLandmark(sagittal, LandmarkRightEar)
	hideLandmark(sagittal, LandmarkRightShoulder)
	sagittal.Landmarks[LandmarkLeftShoulder] = Landmark{X: 0.5, Y: 0.5, Visibility: 0.9}
	// Ear placed 0.1 image-widths away at 40 degrees above horizontal.
	sagittal.Landmarks[LandmarkLeftEar] = Landmark{
		X:          0.5 + 0.1*math.Cos(40*math.Pi/180),
		Y:          0.5 - 0.1*math.Sin(40*math.Pi/180),
		Visibility: 0.9,
	}

	calc := NewMetricsCalculator(nil)
	metrics, err := calc.Calculate(newDetection(1000, 1000), sagittal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	head := metrics.HeadPosture
	approx(t, "craniovertebral angle", head.CraniovertebralAngle, 40, 0.01)
	approx(t, "head translation", head.HeadTranslation, 100*math.Cos(40*math.Pi/180), 0.01)
	approx(t, "upper cervical angle", head.UpperCervicalAngle, 50, 0.01)
	approx(t, "lower cervical angle", head.LowerCervicalAngle, 0, 0.01)
}

func TestCraniovertebralAngleWithinValidRange(t *testing.T) {
	for _, earY := range []float64{0.3, 0.45, 0.5, 0.55, 0.7} {
		sagittal := newDetection(640, 480)
		hideLandmark(sagittal, LandmarkRightEar)
		hideLandmark(sagittal, LandmarkRightShoulder)
		sagittal.Landmarks[LandmarkLeftEar] = Landmark{X: 0.55, Y: earY, Visibility: 0.9}

		calc := NewMetricsCalculator(nil)
		metrics, err := calc.Calculate(newDetection(640, 480), sagittal)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cva := metrics.HeadPosture.CraniovertebralAngle
		if cva < 0 || cva > 180 {
			t.Fatalf("cva %v outside [0,180] for ear y %v", cva, earY)
		}
	}
}

func TestCraniovertebralAngleDegenerateGeometry(t *testing.T) {
	// Ear and shoulder coincide: zero-length vector must yield 0, not NaN.
	sagittal := newDetection(640, 480)
	calc := NewMetricsCalculator(nil)
	metrics, err := calc.Calculate(newDetection(640, 480), sagittal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := metrics.HeadPosture.CraniovertebralAngle; got != 0 {
		t.Fatalf("expected 0 for degenerate geometry, got %v", got)
	}
}

func TestVisibilityBoundaryExcludesLandmark(t *testing.T) {
	// Exactly 0.5 is not usable: the gate is strictly greater-than.
	sagittal := newDetection(1000, 1000)
	for _, idx := range []int{LandmarkLeftEar, LandmarkRightEar, LandmarkLeftShoulder, LandmarkRightShoulder} {
		sagittal.Landmarks[idx].Visibility = 0.5
	}
	sagittal.Landmarks[LandmarkLeftEar].X = 0.7

	calc := NewMetricsCalculator(nil)
	metrics, err := calc.Calculate(newDetection(1000, 1000), sagittal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := metrics.HeadPosture.CraniovertebralAngle; got != 0 {
		t.Fatalf("expected cva 0 with unusable landmarks, got %v", got)
	}
	if got := metrics.HeadPosture.HeadTranslation; got != 0 {
		t.Fatalf("expected translation 0 with unusable landmarks, got %v", got)
	}
}

func TestBilateralSelectionPrefersMoreVisible(t *testing.T) {
	sagittal := newDetection(1000, 1000)
	hideLandmark(sagittal, LandmarkRightShoulder)
	sagittal.Landmarks[LandmarkLeftEar] = Landmark{X: 0.55, Y: 0.5, Visibility: 0.6}
	sagittal.Landmarks[LandmarkRightEar] = Landmark{X: 0.6, Y: 0.5, Visibility: 0.9}

	calc := NewMetricsCalculator(nil)
	metrics, err := calc.Calculate(newDetection(1000, 1000), sagittal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The right ear wins on visibility, so translation reads from x=0.6.
	approx(t, "head translation", metrics.HeadPosture.HeadTranslation, 100, 0.01)
}

func TestShoulderElevationScenario(t *testing.T) {
	frontal := newDetection(640, 480)
	frontal.Landmarks[LandmarkLeftShoulder] = Landmark{X: 0.4, Y: 0.40, Visibility: 0.9}
	frontal.Landmarks[LandmarkRightShoulder] = Landmark{X: 0.6, Y: 0.42, Visibility: 0.9}

	calc := NewMetricsCalculator(nil)
	metrics, err := calc.Calculate(frontal, newDetection(640, 480))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	approx(t, "elevation left", metrics.ShoulderGirdle.ElevationLeft, -9.6, 1e-9)
	approx(t, "elevation right", metrics.ShoulderGirdle.ElevationRight, 9.6, 1e-9)
}

func TestShoulderElevationRequiresBothShoulders(t *testing.T) {
	frontal := newDetection(640, 480)
	frontal.Landmarks[LandmarkLeftShoulder].Y = 0.3
	frontal.Landmarks[LandmarkRightShoulder].Visibility = 0.5

	calc := NewMetricsCalculator(nil)
	metrics, err := calc.Calculate(frontal, newDetection(640, 480))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.ShoulderGirdle.ElevationLeft != 0 || metrics.ShoulderGirdle.ElevationRight != 0 {
		t.Fatalf("expected zero elevation with an unusable shoulder, got %v/%v",
			metrics.ShoulderGirdle.ElevationLeft, metrics.ShoulderGirdle.ElevationRight)
	}
}

func TestSuboccipitalCompressionGrades(t *testing.T) {
	cases := []struct {
		cva         float64
		translation float64
		want        CompressionLevel
	}{
		{59, 0, CompressionNormal},
		{53, 5, CompressionMild},
		{50, 10, CompressionModerate},
		{30, 50, CompressionSevere},
	}
	for _, tc := range cases {
		if got := suboccipitalCompression(tc.cva, tc.translation); got != tc.want {
			t.Fatalf("suboccipital(%v, %v) = %s, want %s", tc.cva, tc.translation, got, tc.want)
		}
	}
}

func TestFixedEstimatorHoldsNormOptima(t *testing.T) {
	calc := NewMetricsCalculator(nil)
	metrics, err := calc.Calculate(newDetection(640, 480), newDetection(640, 480))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := metrics.SpinalCurvature.ThoracicKyphosis; got != 35 {
		t.Fatalf("thoracic kyphosis placeholder: got %v, want 35", got)
	}
	if got := metrics.Pelvis.Tilt; got != 11 {
		t.Fatalf("pelvic tilt placeholder: got %v, want 11", got)
	}
	if got := metrics.ShoulderGirdle.ThoracicOutletRisk; got != RiskLow {
		t.Fatalf("thoracic outlet risk placeholder: got %s, want %s", got, RiskLow)
	}
}

func TestCalculateRejectsShortLandmarkList(t *testing.T) {
	short := newDetection(640, 480)
	short.Landmarks = short.Landmarks[:10]

	calc := NewMetricsCalculator(nil)
	if _, err := calc.Calculate(short, newDetection(640, 480)); err == nil {
		t.Fatal("expected error for short landmark list")
	}
	if _, err := calc.Calculate(newDetection(640, 480), short); err == nil {
		t.Fatal("expected error for short sagittal landmark list")
	}
}
