package runstore

import (
	"time"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, ref, impl string, vp schema.Viewport, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, ref, impl, vp, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, score *float64, passed *bool) error {
	args := m.Called(runID, endTime, score, passed)
	return args.Error(0)
}

// RecordMetricScore implements the RunStore interface.
func (m *MockRunStore) RecordMetricScore(runID int64, metric schema.MetricName, score *float64, diffCount int) error {
	args := m.Called(runID, metric, score, diffCount)
	return args.Error(0)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(limit int) ([]schema.ComparisonRunRecord, error) {
	args := m.Called(limit)
	records, _ := args.Get(0).([]schema.ComparisonRunRecord)
	return records, args.Error(1)
}

// ListMetricScores implements the RunStore interface.
func (m *MockRunStore) ListMetricScores() ([]schema.MetricScoreRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.MetricScoreRecord)
	return records, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
