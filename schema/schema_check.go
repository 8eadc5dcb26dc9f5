package schema

// CheckPolicy holds the gate thresholds for the check command. A zero
// minimum means the metric is not gated.
type CheckPolicy struct {
	MinScores map[MetricName]float64
}

// Evaluate returns one violation per gated metric whose score is missing
// or below its minimum. Metrics absent from the report are skipped unless
// gated, in which case a missing score counts as a violation.
func (p CheckPolicy) Evaluate(metrics *MetricScores) []CheckViolation {
	violations := []CheckViolation{}
	for _, name := range AllMetrics {
		minimum, gated := p.MinScores[name]
		if !gated || minimum <= 0 {
			continue
		}
		score := metrics.Score(name)
		if score == nil || *score < minimum {
			violations = append(violations, CheckViolation{
				Metric:  name,
				Score:   score,
				Minimum: minimum,
			})
		}
	}
	return violations
}
