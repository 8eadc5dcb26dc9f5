package core

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parityci/dpc/internal/capture"
	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/runstore"
	"github.com/parityci/dpc/schema"
)

func runTestConfig() *contract.Config {
	return &contract.Config{
		RefResource:  schema.Resource{Kind: schema.ImageResource, Value: "ref.png"},
		ImplResource: schema.Resource{Kind: schema.ImageResource, Value: "impl.png"},
		Viewport:     schema.Viewport{Width: 100, Height: 100},
		Metrics:      []schema.MetricName{schema.PixelMetricName},
		Threshold:    0.8,
		Workers:      2,
	}
}

func runTestSnapshot(source string) *schema.Snapshot {
	return &schema.Snapshot{
		Kind:   schema.ImageSnapshot,
		Source: source,
		Img:    solidRaster(100, 100, color.NRGBA{R: 250, G: 250, B: 250, A: 255}),
		Width:  100,
		Height: 100,
	}
}

func TestRunCompareRecordsRun(t *testing.T) {
	cfg := runTestConfig()

	provider := &capture.MockProvider{}
	provider.On("Capture", mock.Anything, contract.CaptureRequest{Resource: cfg.RefResource}).
		Return(runTestSnapshot("ref.png"), nil)
	provider.On("Capture", mock.Anything, contract.CaptureRequest{Resource: cfg.ImplResource}).
		Return(runTestSnapshot("impl.png"), nil)

	store := &runstore.MockRunStore{}
	store.On("BeginRun", mock.Anything, "ref.png", "impl.png", cfg.Viewport, mock.Anything).
		Return(int64(7), nil)
	store.On("RecordMetricScore", int64(7), schema.PixelMetricName, mock.Anything, 0).Return(nil)
	store.On("EndRun", int64(7), mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mgr := &runstore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	out, err := RunCompare(WithQuiet(context.Background()), cfg, provider, mgr)
	require.NoError(t, err)
	assert.Equal(t, schema.OutputVersion, out.Version)
	assert.Equal(t, schema.CompareMode, out.Mode)
	assert.Equal(t, "ref.png", out.Ref.Value)
	assert.InDelta(t, 1.0, out.Score, 1e-9)
	assert.True(t, out.Passed)

	provider.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestRunCompareWithoutStore(t *testing.T) {
	cfg := runTestConfig()

	provider := &capture.MockProvider{}
	provider.On("Capture", mock.Anything, mock.Anything).Return(runTestSnapshot("x.png"), nil)

	out, err := RunCompare(WithQuiet(context.Background()), cfg, provider, nil)
	require.NoError(t, err)
	assert.True(t, out.Passed)
}

func TestRunCompareCaptureError(t *testing.T) {
	cfg := runTestConfig()

	provider := &capture.MockProvider{}
	provider.On("Capture", mock.Anything, contract.CaptureRequest{Resource: cfg.RefResource}).
		Return(nil, errors.New("file not found"))

	store := &runstore.MockRunStore{}
	store.On("BeginRun", mock.Anything, "ref.png", "impl.png", cfg.Viewport, mock.Anything).
		Return(int64(3), nil)
	store.On("EndRun", int64(3), mock.Anything, (*float64)(nil), (*bool)(nil)).Return(nil)
	mgr := &runstore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	out, err := RunCompare(WithQuiet(context.Background()), cfg, provider, mgr)
	assert.Nil(t, out)
	assert.ErrorContains(t, err, "failed to capture ref")

	// The abandoned run is closed with no score.
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RecordMetricScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunCompareBeginRunFailureIsSoft(t *testing.T) {
	cfg := runTestConfig()

	provider := &capture.MockProvider{}
	provider.On("Capture", mock.Anything, mock.Anything).Return(runTestSnapshot("x.png"), nil)

	store := &runstore.MockRunStore{}
	store.On("BeginRun", mock.Anything, "ref.png", "impl.png", cfg.Viewport, mock.Anything).
		Return(int64(0), errors.New("database is locked"))
	mgr := &runstore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	out, err := RunCompare(WithQuiet(context.Background()), cfg, provider, mgr)
	require.NoError(t, err)
	assert.True(t, out.Passed)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunCheck(t *testing.T) {
	cfg := runTestConfig()
	cfg.MinScores = map[schema.MetricName]float64{schema.PixelMetricName: 1.1}

	provider := &capture.MockProvider{}
	provider.On("Capture", mock.Anything, mock.Anything).Return(runTestSnapshot("x.png"), nil)

	out, err := RunCheck(WithQuiet(context.Background()), cfg, provider, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.CompareMode, out.Mode)
	require.Len(t, out.Violations, 1)
	assert.Equal(t, schema.PixelMetricName, out.Violations[0].Metric)
	assert.Equal(t, 1.1, out.Violations[0].Minimum)
}

func TestBuildViolations(t *testing.T) {
	low := 0.7
	high := 0.95
	scores := &schema.MetricScores{
		Pixel:  &schema.PixelReport{Score: &high},
		Layout: &schema.LayoutReport{Score: &low},
		Color:  &schema.ColorReport{Score: nil, Note: "raster is empty"},
	}
	metrics := []schema.MetricName{schema.PixelMetricName, schema.LayoutMetricName, schema.ColorMetricName}
	minScores := map[schema.MetricName]float64{
		schema.PixelMetricName:      0.9,
		schema.LayoutMetricName:     0.8,
		schema.ColorMetricName:      0.8,
		schema.TypographyMetricName: 0.8, // not requested, must not violate
	}

	violations := BuildViolations(metrics, scores, minScores)
	require.Len(t, violations, 2)
	assert.Equal(t, schema.LayoutMetricName, violations[0].Metric)
	assert.Equal(t, &low, violations[0].Score)
	assert.Equal(t, schema.ColorMetricName, violations[1].Metric)
	assert.Nil(t, violations[1].Score)
}

func TestBuildViolationsClean(t *testing.T) {
	high := 0.95
	scores := &schema.MetricScores{Pixel: &schema.PixelReport{Score: &high}}
	violations := BuildViolations([]schema.MetricName{schema.PixelMetricName}, scores,
		map[schema.MetricName]float64{schema.PixelMetricName: 0.9})
	assert.Empty(t, violations)
}

func TestRunQuality(t *testing.T) {
	cfg := runTestConfig()
	cfg.InputResource = schema.Resource{Kind: schema.ImageResource, Value: "mock.png"}

	provider := &capture.MockProvider{}
	provider.On("Capture", mock.Anything, contract.CaptureRequest{Resource: cfg.InputResource}).
		Return(runTestSnapshot("mock.png"), nil)

	out, err := RunQuality(WithQuiet(context.Background()), cfg, provider)
	require.NoError(t, err)
	assert.Equal(t, schema.QualityMode, out.Mode)
	assert.Equal(t, "mock.png", out.Input.Value)
	assert.InDelta(t, 1.0, out.Score, 1e-9)
	assert.Empty(t, out.Findings)
}

func TestRunQualityCaptureError(t *testing.T) {
	cfg := runTestConfig()
	cfg.InputResource = schema.Resource{Kind: schema.ImageResource, Value: "missing.png"}

	provider := &capture.MockProvider{}
	provider.On("Capture", mock.Anything, mock.Anything).Return(nil, errors.New("no such file"))

	_, err := RunQuality(WithQuiet(context.Background()), cfg, provider)
	assert.ErrorContains(t, err, "failed to capture input")
}

func TestRunGenerateMockCode(t *testing.T) {
	t.Setenv("DPC_MOCK_CODE", "<div>mock</div>")
	cfg := runTestConfig()
	cfg.InputResource = schema.Resource{Kind: schema.ImageResource, Value: "mock.png"}
	cfg.Stack = "react"

	provider := &capture.MockProvider{}

	out, err := RunGenerate(WithQuiet(context.Background()), cfg, provider)
	require.NoError(t, err)
	assert.Equal(t, schema.GenerateMode, out.Mode)
	assert.Equal(t, "react", out.Stack)
	assert.Equal(t, "<div>mock</div>", out.Code)
	provider.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
}

func TestRunGenerateUnknownStack(t *testing.T) {
	t.Setenv("DPC_MOCK_CODE", "")
	cfg := runTestConfig()
	cfg.InputResource = schema.Resource{Kind: schema.ImageResource, Value: "mock.png"}
	cfg.Stack = "angular"

	provider := &capture.MockProvider{}

	_, err := RunGenerate(WithQuiet(context.Background()), cfg, provider)
	assert.ErrorIs(t, err, schema.ErrConfig)
	provider.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
}
