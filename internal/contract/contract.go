// Package contract provides interfaces and shared utilities for the dpc CLI's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/parityci/dpc/schema"
)

// CaptureRequest describes one side of a comparison to capture. The
// viewport, ignore selectors, and credentials come from the Config given
// to the provider at construction time.
type CaptureRequest struct {
	Resource schema.Resource
	Sidecar  string // optional path to a DOM, design, or OCR sidecar file
}

// CaptureProvider defines the necessary operations for resolving a resource
// into a Snapshot. This allows the comparison pipeline to be tested without
// a browser, network access, or real design files.
type CaptureProvider interface {
	// Capture resolves one resource into a snapshot scaled to the viewport.
	Capture(ctx context.Context, req CaptureRequest) (*schema.Snapshot, error)
}

// StoreManager defines the interface for accessing the run history store.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking comparison runs and storing
// per-metric scores. This allows the store layer to be mocked for testing.
type RunStore interface {
	// BeginRun creates a new comparison run and returns its unique ID
	BeginRun(startTime time.Time, ref, impl string, vp schema.Viewport, configParams map[string]any) (int64, error)

	// EndRun updates the comparison run with completion data
	EndRun(runID int64, endTime time.Time, score *float64, passed *bool) error

	// RecordMetricScore stores one metric's score and diff count for a run
	RecordMetricScore(runID int64, metric schema.MetricName, score *float64, diffCount int) error

	// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
	ListRuns(limit int) ([]schema.ComparisonRunRecord, error)

	// ListMetricScores returns every stored metric score, run order preserved
	ListMetricScores() ([]schema.MetricScoreRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
