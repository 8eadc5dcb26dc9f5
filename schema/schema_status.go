package schema

import "time"

// StoreStatus represents the status of the run history store.
type StoreStatus struct {
	Backend     DatabaseBackend  `json:"backend"`
	Connected   bool             `json:"connected"`
	TotalRuns   int64            `json:"totalRuns"`
	LastRunID   *int64           `json:"lastRunId,omitempty"`
	LastRunTime *time.Time       `json:"lastRunTime,omitempty"`
	OldestRun   *time.Time       `json:"oldestRun,omitempty"`
	TableSizes  map[string]int64 `json:"tableSizes,omitempty"`
}
