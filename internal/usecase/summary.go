package usecase

import "context"

// SummaryReport aggregates service-wide posture analysis insights.
type SummaryReport struct {
	TotalAnalyses    int64              `json:"total_analyses"`
	SevereCases      int64              `json:"severe_cases"`
	AverageCVA       float64            `json:"average_craniovertebral_angle"`
	DysfunctionShare map[string]float64 `json:"dysfunction_share"`
}

// GetSummary aggregates analysis statistics from persisted records.
func (uc *AnalysisUseCase) GetSummary(ctx context.Context) (*SummaryReport, error) {
	aggregation, err := uc.repo.AggregateSummary(ctx)
	if err != nil {
		return nil, err
	}

	report := &SummaryReport{
		TotalAnalyses:    aggregation.TotalCount,
		SevereCases:      aggregation.SevereCount,
		AverageCVA:       aggregation.AverageCVA,
		DysfunctionShare: make(map[string]float64, len(aggregation.DysfunctionCounts)),
	}

	if aggregation.TotalCount > 0 {
		for name, count := range aggregation.DysfunctionCounts {
			report.DysfunctionShare[name] = float64(count) / float64(aggregation.TotalCount)
		}
	}

	return report, nil
}
