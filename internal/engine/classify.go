package engine

import (
	"math"
)

// Severity grades how far a triggering metric sits outside its norm.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Prognosis grades expected response to conservative management.
type Prognosis string

const (
	PrognosisExcellent Prognosis = "excellent"
	PrognosisGood      Prognosis = "good"
	PrognosisFair      Prognosis = "fair"
	PrognosisGuarded   Prognosis = "guarded"
)

// ExercisePlan groups recommendations by intent.
type ExercisePlan struct {
	Stretching    []string `json:"stretching"`
	Strengthening []string `json:"strengthening"`
	Postural      []string `json:"postural"`
}

// PostureClassification is one triggered syndrome with its clinical
// payload and derived severity/confidence.
type PostureClassification struct {
	Classification              string       `json:"classification"`
	Subtype                     string       `json:"subtype,omitempty"`
	Description                 string       `json:"description"`
	MusculoskeletalImplications []string     `json:"musculoskeletal_implications"`
	CompensatoryPatterns        []string     `json:"compensatory_patterns"`
	ClinicalSymptoms            []string     `json:"clinical_symptoms"`
	ExerciseRecommendations     ExercisePlan `json:"exercise_recommendations"`
	ErgonomicConsiderations     []string     `json:"ergonomic_considerations"`
	Prognosis                   Prognosis    `json:"prognosis"`
	Severity                    Severity     `json:"severity"`
	Confidence                  float64      `json:"confidence"`
}

// syndromeRule pairs a trigger predicate with a classification builder.
// Rules are independent; several may fire for one metric set. Slice
// order in ClassificationEngine defines reporting priority.
type syndromeRule struct {
	name      string
	triggered func(m *DetailedPostureMetrics) bool
	build     func(m *DetailedPostureMetrics) PostureClassification
}

// ClassificationEngine evaluates the ordered syndrome rule set.
type ClassificationEngine struct {
	rules []syndromeRule
}

// NewClassificationEngine builds the engine with the default clinical
// rule set.
func NewClassificationEngine() *ClassificationEngine {
	return &ClassificationEngine{rules: defaultRules()}
}

// RuleNames exposes evaluation order for inspection.
func (e *ClassificationEngine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.name
	}
	return names
}

// Evaluate runs every rule in order and returns the triggered
// classifications. The result is never empty: when no rule fires, the
// single ideal-posture classification is returned instead.
func (e *ClassificationEngine) Evaluate(m *DetailedPostureMetrics) []PostureClassification {
	var out []PostureClassification
	for _, r := range e.rules {
		if r.triggered(m) {
			out = append(out, r.build(m))
		}
	}
	if len(out) == 0 {
		out = append(out, idealPosture())
	}
	return out
}

func defaultRules() []syndromeRule {
	return []syndromeRule{
		{
			name: SyndromeForwardHead,
			triggered: func(m *DetailedPostureMetrics) bool {
				return m.HeadPosture.CraniovertebralAngle < 52
			},
			build: func(m *DetailedPostureMetrics) PostureClassification {
				return buildClassification(SyndromeForwardHead, m.HeadPosture.CraniovertebralAngle, MetricCraniovertebralAngle)
			},
		},
		{
			name: SyndromeUpperCrossed,
			triggered: func(m *DetailedPostureMetrics) bool {
				return m.HeadPosture.CraniovertebralAngle < 52 &&
					m.ShoulderGirdle.ProtractionLeft > 20 &&
					m.SpinalCurvature.ThoracicKyphosis > 45
			},
			build: func(m *DetailedPostureMetrics) PostureClassification {
				return buildClassification(SyndromeUpperCrossed, m.HeadPosture.CraniovertebralAngle, MetricCraniovertebralAngle)
			},
		},
		{
			name: SyndromeLowerCrossed,
			triggered: func(m *DetailedPostureMetrics) bool {
				return m.Pelvis.Tilt > 15 && m.SpinalCurvature.LumbarLordosis > 50
			},
			build: func(m *DetailedPostureMetrics) PostureClassification {
				return buildClassification(SyndromeLowerCrossed, m.Pelvis.Tilt, MetricPelvicTilt)
			},
		},
		{
			name: SyndromeKyphosisLordosis,
			triggered: func(m *DetailedPostureMetrics) bool {
				return m.SpinalCurvature.ThoracicKyphosis > 45 && m.SpinalCurvature.LumbarLordosis > 50
			},
			build: func(m *DetailedPostureMetrics) PostureClassification {
				return buildClassification(SyndromeKyphosisLordosis, m.SpinalCurvature.ThoracicKyphosis, MetricThoracicKyphosis)
			},
		},
		{
			name: SyndromeFlatBack,
			triggered: func(m *DetailedPostureMetrics) bool {
				return m.SpinalCurvature.ThoracicKyphosis < 25 && m.SpinalCurvature.LumbarLordosis < 30
			},
			build: func(m *DetailedPostureMetrics) PostureClassification {
				return buildClassification(SyndromeFlatBack, m.SpinalCurvature.ThoracicKyphosis, MetricThoracicKyphosis)
			},
		},
		{
			name: SyndromeSwayBack,
			triggered: func(m *DetailedPostureMetrics) bool {
				return m.Pelvis.LateralShift > 15 && m.SpinalCurvature.ThoracicKyphosis > 45
			},
			build: func(m *DetailedPostureMetrics) PostureClassification {
				return buildClassification(SyndromeSwayBack, m.Pelvis.LateralShift, MetricPelvicShift)
			},
		},
		{
			name: SyndromeScoliotic,
			triggered: func(m *DetailedPostureMetrics) bool {
				if m.SpinalCurvature.LateralDeviation > 10 {
					return true
				}
				return math.Abs(m.ShoulderGirdle.ElevationLeft) > 15 &&
					math.Abs(m.Pelvis.IliacLevelDelta) > 8
			},
			build: func(m *DetailedPostureMetrics) PostureClassification {
				return buildClassification(SyndromeScoliotic, m.SpinalCurvature.LateralDeviation, MetricLateralDeviation)
			},
		},
	}
}

// buildClassification merges the fixed clinical knowledge for a
// syndrome with severity and confidence derived from the rule's
// primary metric against its norm range.
func buildClassification(name string, value float64, normKey string) PostureClassification {
	c := knowledgeFor(name)
	if r, ok := Norm(normKey); ok {
		c.Severity = scoreSeverity(value, r)
		c.Confidence = scoreConfidence(value, r)
	} else {
		c.Severity = SeverityMild
		c.Confidence = minConfidence
	}
	return c
}

const minConfidence = 0.6

// scoreSeverity grades the deviation ratio: distance to the nearest
// norm boundary over the norm width.
func scoreSeverity(value float64, r NormRange) Severity {
	width := r.Width()
	if width == 0 {
		return SeverityMild
	}
	ratio := math.Min(math.Abs(value-r.Low), math.Abs(value-r.High)) / width
	switch {
	case ratio < 0.3:
		return SeverityMild
	case ratio < 0.6:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// scoreConfidence decays linearly with distance from the norm center
// and never falls below the 0.6 floor.
func scoreConfidence(value float64, r NormRange) float64 {
	maxDeviation := r.Width() / 2
	if maxDeviation == 0 {
		return minConfidence
	}
	confidence := 1 - math.Abs(value-r.Center())/(2*maxDeviation)
	return math.Max(minConfidence, confidence)
}
