package runstore

import (
	"testing"
	"time"

	"github.com/parityci/dpc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// BeginRun should return 0 for NoneBackend
	runID, err := store.BeginRun(time.Now(), "ref.png", "impl.png", schema.Viewport{Width: 1440, Height: 900}, map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	// Other operations should not error
	score := 0.9
	passed := true
	err = store.EndRun(1, time.Now(), &score, &passed)
	assert.NoError(t, err)

	err = store.RecordMetricScore(1, schema.PixelMetricName, &score, 3)
	assert.NoError(t, err)

	runs, err := store.ListRuns(0)
	assert.NoError(t, err)
	assert.Empty(t, runs)

	err = store.Close()
	assert.NoError(t, err)
}

func TestRunStore_SQLite(t *testing.T) {
	// Use in-memory SQLite for testing
	store, err := NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Test BeginRun
	startTime := time.Now()
	configParams := map[string]any{
		"threshold": 0.9,
		"metrics":   "pixel,layout",
		"viewport":  "1440x900",
	}
	runID, err := store.BeginRun(startTime, "mockups/home.png", "https://staging.example.com", schema.Viewport{Width: 1440, Height: 900}, configParams)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	// Test RecordMetricScore
	pixelScore := 0.94
	err = store.RecordMetricScore(runID, schema.PixelMetricName, &pixelScore, 2)
	assert.NoError(t, err)

	layoutScore := 0.88
	err = store.RecordMetricScore(runID, schema.LayoutMetricName, &layoutScore, 1)
	assert.NoError(t, err)

	// Test EndRun
	endTime := time.Now()
	overall := 0.91
	passed := true
	err = store.EndRun(runID, endTime, &overall, &passed)
	assert.NoError(t, err)

	// Verify the run roundtrips
	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "mockups/home.png", run.RefResource)
	assert.Equal(t, "https://staging.example.com", run.ImplResource)
	assert.Equal(t, int32(1440), run.ViewportW)
	assert.Equal(t, int32(900), run.ViewportH)
	require.NotNil(t, run.Score)
	assert.InDelta(t, overall, *run.Score, 0.0001)
	require.NotNil(t, run.Passed)
	assert.True(t, *run.Passed)
	require.NotNil(t, run.ConfigParams)
	assert.Contains(t, *run.ConfigParams, "threshold")
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
}

func TestRunStore_NullableVerdict(t *testing.T) {
	store, err := NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), "ref.png", "impl.png", schema.Viewport{Width: 800, Height: 600}, nil)
	require.NoError(t, err)

	// A run that fails before producing a verdict ends with nil score and passed
	err = store.EndRun(runID, time.Now(), nil, nil)
	assert.NoError(t, err)

	// A metric with no measurable content records a nil score
	err = store.RecordMetricScore(runID, schema.ContentMetricName, nil, 0)
	assert.NoError(t, err)

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Score)
	assert.Nil(t, runs[0].Passed)

	scores, err := store.ListMetricScores()
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, schema.ContentMetricName, scores[0].Metric)
	assert.Nil(t, scores[0].Score)
	assert.Equal(t, int32(0), scores[0].DiffCount)
}

func TestRunStore_ListRunsNewestFirst(t *testing.T) {
	store, err := NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Create multiple comparison runs
	var runIDs []int64
	for i := range 3 {
		id, err := store.BeginRun(time.Now(), "ref.png", "impl.png", schema.Viewport{Width: 1440, Height: 900}, map[string]any{"run": i})
		require.NoError(t, err)
		runIDs = append(runIDs, id)

		score := 0.8 + float64(i)*0.05
		passed := true
		err = store.EndRun(id, time.Now(), &score, &passed)
		assert.NoError(t, err)
	}

	// Verify all IDs are unique
	assert.Equal(t, 3, len(runIDs))
	assert.NotEqual(t, runIDs[0], runIDs[1])
	assert.NotEqual(t, runIDs[1], runIDs[2])

	// ListRuns returns newest first
	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, runIDs[2], runs[0].RunID)
	assert.Equal(t, runIDs[1], runs[1].RunID)
	assert.Equal(t, runIDs[0], runs[2].RunID)

	// Limit caps the result set
	runs, err = store.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, runIDs[2], runs[0].RunID)
	assert.Equal(t, runIDs[1], runs[1].RunID)
}

func TestRunStore_ListMetricScores(t *testing.T) {
	store, err := NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Empty store
	scores, err := store.ListMetricScores()
	assert.NoError(t, err)
	assert.Empty(t, scores)

	runID, err := store.BeginRun(time.Now(), "ref.png", "impl.png", schema.Viewport{Width: 1440, Height: 900}, nil)
	require.NoError(t, err)

	pixel := 0.97
	layout := 0.82
	require.NoError(t, store.RecordMetricScore(runID, schema.PixelMetricName, &pixel, 4))
	require.NoError(t, store.RecordMetricScore(runID, schema.LayoutMetricName, &layout, 2))

	scores, err = store.ListMetricScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// Ordered by run then metric name
	assert.Equal(t, schema.LayoutMetricName, scores[0].Metric)
	require.NotNil(t, scores[0].Score)
	assert.InDelta(t, layout, *scores[0].Score, 0.0001)
	assert.Equal(t, int32(2), scores[0].DiffCount)

	assert.Equal(t, schema.PixelMetricName, scores[1].Metric)
	require.NotNil(t, scores[1].Score)
	assert.InDelta(t, pixel, *scores[1].Score, 0.0001)
	assert.Equal(t, int32(4), scores[1].DiffCount)
}

func TestRunStore_RuntimeCapture(t *testing.T) {
	store, err := NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	t.Run("runtime calculation", func(t *testing.T) {
		// Start the run at a known time
		startTime := time.Now().Add(-100 * time.Millisecond) // Start 100ms ago
		runID, err := store.BeginRun(startTime, "ref.png", "impl.png", schema.Viewport{Width: 1440, Height: 900}, map[string]any{"test": "runtime"})
		require.NoError(t, err)

		// Wait a bit to ensure measurable duration
		time.Sleep(50 * time.Millisecond)

		// End the run
		endTime := time.Now()
		score := 0.9
		passed := true
		err = store.EndRun(runID, endTime, &score, &passed)
		assert.NoError(t, err)

		// Query the database to verify runtime was captured
		db := store.(*StoreImpl).db
		var storedStartTime, storedEndTime string
		var storedDurationMs int64

		row := db.QueryRow("SELECT start_time, end_time, run_duration_ms FROM dpc_runs WHERE run_id = ?", runID)
		err = row.Scan(&storedStartTime, &storedEndTime, &storedDurationMs)
		assert.NoError(t, err)

		// Parse stored times
		storedStart, err := time.Parse(time.RFC3339Nano, storedStartTime)
		assert.NoError(t, err)
		storedEnd, err := time.Parse(time.RFC3339Nano, storedEndTime)
		assert.NoError(t, err)

		// Verify duration calculation: should be approximately end - start
		expectedDurationMs := storedEnd.Sub(storedStart).Milliseconds()
		assert.Equal(t, expectedDurationMs, storedDurationMs)

		// Verify duration is reasonable (should be around 150ms ± some tolerance)
		assert.GreaterOrEqual(t, storedDurationMs, int64(100)) // At least 100ms (our initial offset)
		assert.LessOrEqual(t, storedDurationMs, int64(300))    // At most 300ms (allowing for test overhead)
	})

	t.Run("zero duration edge case", func(t *testing.T) {
		// Test with same start and end time
		startTime := time.Now()
		runID, err := store.BeginRun(startTime, "ref.png", "impl.png", schema.Viewport{Width: 1440, Height: 900}, map[string]any{"test": "zero_duration"})
		require.NoError(t, err)

		// End immediately with same time
		err = store.EndRun(runID, startTime, nil, nil)
		assert.NoError(t, err)

		// Verify duration is 0
		db := store.(*StoreImpl).db
		var storedDurationMs int64
		row := db.QueryRow("SELECT run_duration_ms FROM dpc_runs WHERE run_id = ?", runID)
		err = row.Scan(&storedDurationMs)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), storedDurationMs)
	})
}

func TestRunStore_GetStatus(t *testing.T) {
	store, err := NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Empty store
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, int64(0), status.TotalRuns)
	assert.Nil(t, status.LastRunID)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])

	// Add a run with metric scores
	runID, err := store.BeginRun(time.Now(), "ref.png", "impl.png", schema.Viewport{Width: 1440, Height: 900}, nil)
	require.NoError(t, err)
	score := 0.95
	require.NoError(t, store.RecordMetricScore(runID, schema.PixelMetricName, &score, 1))
	require.NoError(t, store.RecordMetricScore(runID, schema.ColorMetricName, &score, 0))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.TotalRuns)
	require.NotNil(t, status.LastRunID)
	assert.Equal(t, runID, *status.LastRunID)
	require.NotNil(t, status.LastRunTime)
	require.NotNil(t, status.OldestRun)
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
	assert.Equal(t, int64(2), status.TableSizes[metricScoresTable])
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		want    string
	}{
		{
			name:    "SQLite backend",
			backend: schema.SQLiteBackend,
			want:    `"dpc_runs"`,
		},
		{
			name:    "MySQL backend",
			backend: schema.MySQLBackend,
			want:    "`dpc_runs`",
		},
		{
			name:    "PostgreSQL backend",
			backend: schema.PostgreSQLBackend,
			want:    `"dpc_runs"`,
		},
		{
			name:    "None backend defaults to SQLite style",
			backend: schema.NoneBackend,
			want:    `"dpc_runs"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoteTableName(runsTable, tt.backend)
			assert.Equal(t, tt.want, got, "quoteTableName(%q, %q)", runsTable, tt.backend)
		})
	}
}

func TestNewStore_UnsupportedBackend(t *testing.T) {
	store, err := NewStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "unsupported backend")
}
