package engine

import "fmt"

// Sentinels returned when no trigger fires. Collections in the
// synthesis are never empty.
const (
	SentinelNoDysfunction = "no dysfunction identified"
	SentinelNoChain       = "no compensatory pattern"
	SentinelNoRisks       = "no notable risk factors"
	SentinelNoLimitations = "no functional limitations"
)

// Synthesis is the narrative layer over metrics and classifications.
type Synthesis struct {
	PrimaryDysfunction    string
	CompensatoryChain     []string
	RiskFactors           []string
	FunctionalLimitations []string
}

// Synthesize derives the primary dysfunction, compensatory chain, risk
// factors, and functional limitations. Pure function of its inputs.
func Synthesize(m *DetailedPostureMetrics, classifications []PostureClassification) Synthesis {
	return Synthesis{
		PrimaryDysfunction:    primaryDysfunction(classifications),
		CompensatoryChain:     compensatoryChain(m),
		RiskFactors:           riskFactors(m, classifications),
		FunctionalLimitations: functionalLimitations(m),
	}
}

// primaryDysfunction is the first classification by rule priority. The
// classification list is guaranteed non-empty upstream; the sentinel
// covers defensive use of this function in isolation.
func primaryDysfunction(classifications []PostureClassification) string {
	if len(classifications) == 0 {
		return SentinelNoDysfunction
	}
	return classifications[0].Classification
}

func compensatoryChain(m *DetailedPostureMetrics) []string {
	var chain []string
	if m.HeadPosture.CraniovertebralAngle < 52 {
		chain = append(chain,
			"Forward head drives upper cervical extension, scapular elevation, and increased thoracic flexion down the kinetic chain")
	}
	if m.Pelvis.Tilt > 15 {
		chain = append(chain,
			"Anterior pelvic tilt drives lumbar hyperextension, hamstring overactivity, and knee hyperextension down the kinetic chain")
	}
	if len(chain) == 0 {
		chain = []string{SentinelNoChain}
	}
	return chain
}

func riskFactors(m *DetailedPostureMetrics, classifications []PostureClassification) []string {
	var risks []string
	for _, c := range classifications {
		if c.Severity == SeveritySevere {
			risks = append(risks, fmt.Sprintf("%s - severe dysfunction", c.Classification))
		}
	}
	if m.HeadPosture.HeadTranslation > 30 {
		risks = append(risks, "Pronounced head translation raises the risk of cervical nerve root irritation")
	}
	if m.Pelvis.Tilt > 20 {
		risks = append(risks, "Marked anterior pelvic tilt raises the risk of lumbar disc loading")
	}
	if len(risks) == 0 {
		risks = []string{SentinelNoRisks}
	}
	return risks
}

func functionalLimitations(m *DetailedPostureMetrics) []string {
	var limitations []string
	if m.HeadPosture.CraniovertebralAngle < 45 {
		limitations = append(limitations,
			"Reduced cervical range of motion, especially rotation and extension",
			"Reduced tolerance for sustained visual attention tasks")
	}
	if m.Pelvis.Tilt > 20 {
		limitations = append(limitations,
			"Limited hip extension during gait and stairs",
			"Reduced trunk stability under load")
	}
	if len(limitations) == 0 {
		limitations = []string{SentinelNoLimitations}
	}
	return limitations
}
