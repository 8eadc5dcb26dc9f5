// Package parquet provides data structures and functions for exporting
// comparison run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parityci/dpc/schema"
)

// ComparisonRun represents a single comparison run with metadata.
// This struct maps to the dpc_runs database table.
type ComparisonRun struct {
	// RunID is the unique identifier for this comparison run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the comparison began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the comparison completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the comparison run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// RefResource is the reference input as given on the command line
	RefResource string `parquet:"ref_resource,snappy"`

	// ImplResource is the implementation input as given on the command line
	ImplResource string `parquet:"impl_resource,snappy"`

	// ViewportW is the comparison viewport width in pixels
	ViewportW int32 `parquet:"viewport_w,snappy"`

	// ViewportH is the comparison viewport height in pixels
	ViewportH int32 `parquet:"viewport_h,snappy"`

	// Score is the overall weighted similarity score (nullable, nil when the run failed)
	Score *float64 `parquet:"score,optional,snappy"`

	// Passed records whether the score cleared the threshold (nullable)
	Passed *bool `parquet:"passed,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// MetricScore represents one metric's result within a comparison run.
// This struct maps to the dpc_metric_scores database table.
type MetricScore struct {
	// RunID references the parent comparison run
	RunID int64 `parquet:"run_id,snappy"`

	// Metric names the comparison metric (pixel, layout, typography, color, content)
	Metric string `parquet:"metric,snappy"`

	// Score is the metric's similarity score in [0, 1] (nullable, nil when not computed)
	Score *float64 `parquet:"score,optional,snappy"`

	// DiffCount is the number of differences the metric reported
	DiffCount int32 `parquet:"diff_count,snappy"`
}

// WriteComparisonRunsParquet writes a slice of ComparisonRun structs to a Parquet file.
func WriteComparisonRunsParquet(data []ComparisonRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the ComparisonRun struct tags
	writer := parquet.NewGenericWriter[ComparisonRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteMetricScoresParquet writes a slice of MetricScore structs to a Parquet file.
func WriteMetricScoresParquet(data []MetricScore, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the MetricScore struct tags
	writer := parquet.NewGenericWriter[MetricScore](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchComparisonRuns generates sample ComparisonRun data for demonstration.
func MockFetchComparisonRuns() []ComparisonRun {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := startTime1.Add(12 * time.Second)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	score1 := 0.94
	passed1 := true
	configParams1 := `{"threshold":0.9,"metrics":"pixel,layout,typography,color,content"}`

	startTime2 := now.Add(-24 * time.Hour)
	endTime2 := startTime2.Add(31 * time.Second)
	durationMs2 := int32(endTime2.Sub(startTime2).Milliseconds())
	score2 := 0.71
	passed2 := false
	configParams2 := `{"threshold":0.85,"metrics":"pixel,layout"}`

	startTime3 := now.Add(-10 * time.Minute)
	// Note: endTime3, durationMs3, score3, passed3, configParams3 are nil to demonstrate nullable fields

	return []ComparisonRun{
		{
			RunID:         1,
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			RefResource:   "https://figma.com/design/aBc123/Landing?node-id=1-2",
			ImplResource:  "https://staging.example.com/landing",
			ViewportW:     1440,
			ViewportH:     900,
			Score:         &score1,
			Passed:        &passed1,
			ConfigParams:  &configParams1,
		},
		{
			RunID:         2,
			StartTime:     startTime2,
			EndTime:       &endTime2,
			RunDurationMs: &durationMs2,
			RefResource:   "mockups/checkout.png",
			ImplResource:  "https://staging.example.com/checkout",
			ViewportW:     1280,
			ViewportH:     800,
			Score:         &score2,
			Passed:        &passed2,
			ConfigParams:  &configParams2,
		},
		{
			RunID:         3,
			StartTime:     startTime3,
			EndTime:       nil, // Still running - nullable field
			RunDurationMs: nil, // Not yet calculated - nullable field
			RefResource:   "baseline.png",
			ImplResource:  "candidate.png",
			ViewportW:     1440,
			ViewportH:     900,
			Score:         nil, // No verdict yet - nullable field
			Passed:        nil, // No verdict yet - nullable field
			ConfigParams:  nil, // No config stored - nullable field
		},
	}
}

// MockFetchMetricScores generates sample MetricScore data for demonstration.
func MockFetchMetricScores() []MetricScore {
	pixel1 := 0.97
	layout1 := 0.93
	typography1 := 0.95
	pixel2 := 0.64

	return []MetricScore{
		{
			RunID:     1,
			Metric:    "pixel",
			Score:     &pixel1,
			DiffCount: 2,
		},
		{
			RunID:     1,
			Metric:    "layout",
			Score:     &layout1,
			DiffCount: 1,
		},
		{
			RunID:     1,
			Metric:    "typography",
			Score:     &typography1,
			DiffCount: 0,
		},
		{
			RunID:     2,
			Metric:    "pixel",
			Score:     &pixel2,
			DiffCount: 14,
		},
		{
			RunID:     2,
			Metric:    "content",
			Score:     nil, // Neither side had text - nullable field
			DiffCount: 0,
		},
	}
}

// ConvertComparisonRunRecords converts schema.ComparisonRunRecord to ComparisonRun for Parquet export.
func ConvertComparisonRunRecords(records []schema.ComparisonRunRecord) []ComparisonRun {
	result := make([]ComparisonRun, len(records))
	for i, record := range records {
		result[i] = ComparisonRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			RefResource:   record.RefResource,
			ImplResource:  record.ImplResource,
			ViewportW:     record.ViewportW,
			ViewportH:     record.ViewportH,
			Score:         record.Score,
			Passed:        record.Passed,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertMetricScoreRecords converts schema.MetricScoreRecord to MetricScore for Parquet export.
func ConvertMetricScoreRecords(records []schema.MetricScoreRecord) []MetricScore {
	result := make([]MetricScore, len(records))
	for i, record := range records {
		result[i] = MetricScore{
			RunID:     record.RunID,
			Metric:    string(record.Metric),
			Score:     record.Score,
			DiffCount: record.DiffCount,
		}
	}
	return result
}
