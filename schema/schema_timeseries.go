package schema

import (
	"sort"
	"time"
)

// TrendPoint represents one completed run in a score trend.
type TrendPoint struct {
	RunID  int64     `json:"runId"`
	Time   time.Time `json:"time"`
	Score  float64   `json:"score"`
	Passed bool      `json:"passed"`
}

// TrendResult holds the score trend for one ref/impl resource pair,
// oldest run first.
type TrendResult struct {
	RefResource  string       `json:"refResource"`
	ImplResource string       `json:"implResource"`
	Points       []TrendPoint `json:"points"`
	Delta        float64      `json:"delta"` // Last score minus first score
}

// BuildTrend filters completed run records down to one resource pair and
// derives the trend. Records without a final score are skipped.
func BuildTrend(records []ComparisonRunRecord, ref, impl string) TrendResult {
	result := TrendResult{RefResource: ref, ImplResource: impl, Points: []TrendPoint{}}
	for _, rec := range records {
		if rec.RefResource != ref || rec.ImplResource != impl || rec.Score == nil {
			continue
		}
		passed := rec.Passed != nil && *rec.Passed
		result.Points = append(result.Points, TrendPoint{
			RunID:  rec.RunID,
			Time:   rec.StartTime,
			Score:  *rec.Score,
			Passed: passed,
		})
	}
	sort.Slice(result.Points, func(i, j int) bool {
		return result.Points[i].Time.Before(result.Points[j].Time)
	})
	if n := len(result.Points); n >= 2 {
		result.Delta = result.Points[n-1].Score - result.Points[0].Score
	}
	return result
}
