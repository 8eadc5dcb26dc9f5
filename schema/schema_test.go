package schema

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultWeights(t *testing.T) {
	weights := GetDefaultWeights()

	// Every metric carries a positive weight.
	assert.Len(t, weights, len(AllMetrics), "every metric should have a default weight")
	for _, name := range AllMetrics {
		assert.Greater(t, weights[name], 0.0, "weight for %s should be positive", name)
	}

	// Weights form a proper distribution.
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "default weights should sum to 1")

	// Pixel carries the largest share.
	for _, name := range AllMetrics[1:] {
		assert.GreaterOrEqual(t, weights[PixelMetricName], weights[name],
			"pixel should weigh at least as much as %s", name)
	}
}

func TestWeightCategoryFor(t *testing.T) {
	tests := []struct {
		weight int
		want   FontWeightCategory
	}{
		{100, LightWeight},
		{300, LightWeight},
		{400, RegularWeight}, // normal
		{500, RegularWeight},
		{600, BoldWeight}, // semibold shares the bold bucket
		{700, BoldWeight},
		{800, BlackWeight},
		{900, BlackWeight},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WeightCategoryFor(tt.weight), "WeightCategoryFor(%d)", tt.weight)
	}

	// Categories are ordered light to black.
	assert.Less(t, WeightCategoryRank(LightWeight), WeightCategoryRank(RegularWeight))
	assert.Less(t, WeightCategoryRank(RegularWeight), WeightCategoryRank(BoldWeight))
	assert.Less(t, WeightCategoryRank(BoldWeight), WeightCategoryRank(BlackWeight))
}

func TestEffectiveWeights(t *testing.T) {
	weights := GetDefaultWeights()
	full := 1.0
	scores := map[MetricName]*float64{
		PixelMetricName:      &full,
		LayoutMetricName:     &full,
		TypographyMetricName: nil, // metric could not run
		ColorMetricName:      &full,
		ContentMetricName:    &full,
	}

	effective := EffectiveWeights(weights, scores)

	// The absent metric gets no share.
	assert.NotContains(t, effective, TypographyMetricName, "absent metrics should get no share")

	// Remaining shares sum to 1 and keep their relative proportions.
	sum := 0.0
	for _, w := range effective {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "effective weights should sum to 1")
	assert.InDelta(t,
		weights[PixelMetricName]/weights[LayoutMetricName],
		effective[PixelMetricName]/effective[LayoutMetricName],
		1e-9, "redistribution should preserve relative proportions")

	// No scores at all yields an empty map.
	assert.Empty(t, EffectiveWeights(weights, map[MetricName]*float64{}), "no scores should yield no shares")
}

func TestFormatBreakdown(t *testing.T) {
	breakdown := FormatBreakdown(map[MetricName]float64{
		LayoutMetricName: 0.25,
		PixelMetricName:  0.35,
	})
	assert.Equal(t, "pixel:0.35|layout:0.25", breakdown, "breakdown should follow report order")

	assert.Equal(t, "", FormatBreakdown(nil), "empty weights should format to an empty string")
}

func TestCheckPolicyEvaluate(t *testing.T) {
	low := 0.4
	high := 0.95
	metrics := &MetricScores{
		Pixel:  &PixelReport{Score: &high},
		Layout: &LayoutReport{Score: &low},
		Color:  &ColorReport{Score: nil}, // requested but not computable
	}

	policy := CheckPolicy{MinScores: map[MetricName]float64{
		PixelMetricName:  0.9,
		LayoutMetricName: 0.5,
		ColorMetricName:  0.5,
	}}

	violations := policy.Evaluate(metrics)
	assert.Len(t, violations, 2, "layout below minimum and color without score should violate")

	byMetric := map[MetricName]CheckViolation{}
	for _, v := range violations {
		byMetric[v.Metric] = v
	}
	assert.Contains(t, byMetric, LayoutMetricName)
	assert.Contains(t, byMetric, ColorMetricName)
	assert.Nil(t, byMetric[ColorMetricName].Score, "missing score should surface as nil")

	// An empty policy never violates.
	assert.Empty(t, CheckPolicy{}.Evaluate(metrics), "empty policy should pass everything")
}

func TestMetricScoresScore(t *testing.T) {
	v := 0.7
	m := &MetricScores{Typography: &TypographyReport{Score: &v}}

	assert.Equal(t, &v, m.Score(TypographyMetricName), "present metric should return its score pointer")
	assert.Nil(t, m.Score(PixelMetricName), "absent metric should return nil")
	assert.Nil(t, m.Score(MetricName("bogus")), "unknown metric should return nil")
}

func TestBuildTrend(t *testing.T) {
	at := func(day int) time.Time { return time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC) }
	score := func(v float64) *float64 { return &v }
	yes := true

	records := []ComparisonRunRecord{
		{RunID: 1, StartTime: at(1), RefResource: "a.png", ImplResource: "b.png", Score: score(0.80), Passed: &yes},
		{RunID: 2, StartTime: at(2), RefResource: "a.png", ImplResource: "b.png", Score: nil}, // aborted run
		{RunID: 3, StartTime: at(3), RefResource: "a.png", ImplResource: "other.png", Score: score(0.50)},
		{RunID: 4, StartTime: at(4), RefResource: "a.png", ImplResource: "b.png", Score: score(0.90), Passed: &yes},
	}

	trend := BuildTrend(records, "a.png", "b.png")

	assert.Len(t, trend.Points, 2, "only completed runs for the pair should appear")
	assert.Equal(t, int64(1), trend.Points[0].RunID, "points should keep record order")
	assert.InDelta(t, 0.1, trend.Delta, 1e-9, "delta should be last minus first score")

	empty := BuildTrend(nil, "a.png", "b.png")
	assert.Empty(t, empty.Points)
	assert.Equal(t, 0.0, empty.Delta, "no points should yield zero delta")
}

func TestErrorCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", ErrConfig, "config"},
		{"input", ErrInput, "input"},
		{"capture", ErrCapture, "capture"},
		{"partial data", ErrPartialData, "partial_data"},
		{"aggregation", ErrAggregation, "aggregation"},
		{"wrapped sentinel", fmt.Errorf("decode ref: %w", ErrInput), "input"},
		{"unknown falls back to internal", assert.AnError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCategory(tt.err))
		})
	}
}
