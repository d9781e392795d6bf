// Package engine derives clinical posture metrics from two-view body
// landmark detections and classifies postural dysfunction syndromes.
// It is purely computational: no I/O, no retained state, every call
// independent and reentrant.
package engine

import (
	"time"
)

// AnalysisResult is the full output of one analysis. Apart from the
// timestamp it is a pure function of the two input detections. All
// distances and translations are pixel-space approximations, not
// calibrated physical units.
type AnalysisResult struct {
	Metrics               *DetailedPostureMetrics `json:"metrics"`
	Classifications       []PostureClassification `json:"classifications"`
	PrimaryDysfunction    string                  `json:"primary_dysfunction"`
	CompensatoryChain     []string                `json:"compensatory_chain"`
	RiskFactors           []string                `json:"risk_factors"`
	FunctionalLimitations []string                `json:"functional_limitations"`
	Timestamp             time.Time               `json:"timestamp"`
}

// Analyzer sequences metric derivation, rule classification, and
// narrative synthesis into one AnalysisResult.
type Analyzer struct {
	calculator *MetricsCalculator
	classifier *ClassificationEngine
}

// NewAnalyzer builds an analyzer. A nil estimator selects the fixed
// reference estimator.
func NewAnalyzer(est Estimator) *Analyzer {
	return &Analyzer{
		calculator: NewMetricsCalculator(est),
		classifier: NewClassificationEngine(),
	}
}

// Analyze runs the pipeline over a frontal and a sagittal detection
// and stamps the completion time.
func (a *Analyzer) Analyze(frontal, sagittal *DetectionResult) (*AnalysisResult, error) {
	metrics, err := a.calculator.Calculate(frontal, sagittal)
	if err != nil {
		return nil, err
	}

	classifications := a.classifier.Evaluate(metrics)
	synthesis := Synthesize(metrics, classifications)

	return &AnalysisResult{
		Metrics:               metrics,
		Classifications:       classifications,
		PrimaryDysfunction:    synthesis.PrimaryDysfunction,
		CompensatoryChain:     synthesis.CompensatoryChain,
		RiskFactors:           synthesis.RiskFactors,
		FunctionalLimitations: synthesis.FunctionalLimitations,
		Timestamp:             time.Now().UTC(),
	}, nil
}
