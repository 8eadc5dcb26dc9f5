package schema

import "time"

// ComparisonRunRecord represents a row from the dpc_runs table.
type ComparisonRunRecord struct {
	RunID         int64      `json:"runId"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	RunDurationMs *int32     `json:"runDurationMs"`
	RefResource   string     `json:"refResource"`
	ImplResource  string     `json:"implResource"`
	ViewportW     int32      `json:"viewportW"`
	ViewportH     int32      `json:"viewportH"`
	Score         *float64   `json:"score"`
	Passed        *bool      `json:"passed"`
	ConfigParams  *string    `json:"configParams,omitempty"`
}

// MetricScoreRecord represents a row from the dpc_metric_scores table.
type MetricScoreRecord struct {
	RunID     int64      `json:"runId"`
	Metric    MetricName `json:"metric"`
	Score     *float64   `json:"score"`
	DiffCount int32      `json:"diffCount"`
}
