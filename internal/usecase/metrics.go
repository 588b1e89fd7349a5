package usecase

import "context"

// MetricsSummary represents aggregated verification insights.
type MetricsSummary struct {
	TotalRequests       int64   `json:"total_requests"`
	PassedRequests      int64   `json:"passed_requests"`
	PassRate            float64 `json:"pass_rate"`
	AverageOverallScore float64 `json:"average_overall_score"`
	AverageLatencyMs    float64 `json:"average_latency_ms"`
}

// GetMetricsSummary aggregates verification metrics from persisted records.
func (uc *VerificationUseCase) GetMetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	aggregation, err := uc.repo.AggregateMetrics(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MetricsSummary{
		TotalRequests:       aggregation.TotalCount,
		PassedRequests:      aggregation.PassedCount,
		AverageOverallScore: aggregation.AverageOverall,
		AverageLatencyMs:    aggregation.AverageLatencyMs,
	}

	if aggregation.TotalCount > 0 {
		summary.PassRate = float64(aggregation.PassedCount) / float64(aggregation.TotalCount)
	}

	return summary, nil
}
