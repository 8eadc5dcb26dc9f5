package schema

import (
	"fmt"
	"sort"
	"strings"
)

// EffectiveWeights returns the weight share each present metric contributed
// to a combined score, after redistributing the weights of absent metrics.
// The shares sum to 1 when at least one metric is present.
func EffectiveWeights(weights map[MetricName]float64, scores map[MetricName]*float64) map[MetricName]float64 {
	total := 0.0
	for name, w := range weights {
		if s, ok := scores[name]; ok && s != nil {
			total += w
		}
	}
	out := make(map[MetricName]float64)
	if total <= 0 {
		return out
	}
	for name, w := range weights {
		if s, ok := scores[name]; ok && s != nil {
			out[name] = w / total
		}
	}
	return out
}

// FormatBreakdown renders a weight breakdown as "pixel:0.39|layout:0.28|...",
// in report order, for compact storage in exports.
func FormatBreakdown(weights map[MetricName]float64) string {
	parts := make([]string, 0, len(weights))
	for _, name := range AllMetrics {
		if w, ok := weights[name]; ok {
			parts = append(parts, fmt.Sprintf("%s:%.2f", name, w))
		}
	}
	// Metrics outside the known order go last, alphabetically.
	var rest []string
	for name, w := range weights {
		if _, known := ValidMetrics[name]; !known {
			rest = append(rest, fmt.Sprintf("%s:%.2f", name, w))
		}
	}
	sort.Strings(rest)
	return strings.Join(append(parts, rest...), "|")
}
