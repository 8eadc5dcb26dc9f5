//go:build integration

// Package integration contains integration tests for dpc.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parityci/dpc/core"
	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/imaging"
	"github.com/parityci/dpc/schema"
)

// fixtureW and fixtureH are the fixture raster dimensions. The CLI runs with a
// matching --viewport so the letterbox transform is the identity.
const (
	fixtureW = 256
	fixtureH = 192
)

// compareEnvelope holds the fields of the compare JSON output the tests verify.
type compareEnvelope struct {
	Score  float64 `json:"score"`
	Passed bool    `json:"passed"`
}

// TestCompareScoreVerification runs dpc compare as a subprocess and verifies
// the reported score against the comparison engine invoked in-process on the
// same inputs.
func TestCompareScoreVerification(t *testing.T) {
	dpcPath := buildDpc(t)
	dir := t.TempDir()

	ref := filepath.Join(dir, "ref.png")
	same := filepath.Join(dir, "same.png")
	broken := filepath.Join(dir, "broken.png")
	writeScenePNG(t, ref, nil)
	writeScenePNG(t, same, nil)
	writeScenePNG(t, broken, func(img *image.NRGBA) {
		// Black out the bottom half so the comparison clearly fails
		for y := fixtureH / 2; y < fixtureH; y++ {
			for x := 0; x < fixtureW; x++ {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	})

	t.Run("identical pair passes", func(t *testing.T) {
		envelope, exitCode := runCompareJSON(t, dpcPath, ref, same)
		assert.Equal(t, 0, exitCode)
		assert.True(t, envelope.Passed)
		assert.InDelta(t, 1.0, envelope.Score, 1e-9)
	})

	t.Run("degraded pair matches in-process score", func(t *testing.T) {
		envelope, exitCode := runCompareJSON(t, dpcPath, ref, broken)
		assert.Equal(t, 1, exitCode)
		assert.False(t, envelope.Passed)

		expected := compareInProcess(t, ref, broken)
		assert.InDelta(t, expected.Score, envelope.Score, 1e-9)
		assert.Equal(t, expected.Passed, envelope.Passed)
	})
}

// TestRunHistoryVerification records comparison runs through the CLI against a
// temporary SQLite store and verifies the persisted history against the scores
// each run reported.
func TestRunHistoryVerification(t *testing.T) {
	dpcPath := buildDpc(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")

	ref := filepath.Join(dir, "ref.png")
	same := filepath.Join(dir, "same.png")
	broken := filepath.Join(dir, "broken.png")
	writeScenePNG(t, ref, nil)
	writeScenePNG(t, same, nil)
	writeScenePNG(t, broken, func(img *image.NRGBA) {
		for y := fixtureH / 2; y < fixtureH; y++ {
			for x := 0; x < fixtureW; x++ {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	})

	// Record three runs: the same passing pair twice, one failing pair
	expected := map[string]compareEnvelope{}
	for _, impl := range []string{same, same, broken} {
		envelope, _ := runCompareJSON(t, dpcPath, ref, impl,
			"--store-backend", "sqlite", "--store-db-connect", dbPath)
		expected[impl] = envelope
	}

	// Read the history back as JSON
	listOut := runDpcJSON(t, dpcPath,
		"runs", "list", "--format", "json", "--limit", "0",
		"--store-backend", "sqlite", "--store-db-connect", dbPath)

	var records []schema.ComparisonRunRecord
	require.NoError(t, json.Unmarshal([]byte(listOut), &records))
	require.Len(t, records, 3)

	// Each stored run must carry the score and verdict its compare reported
	for _, rec := range records {
		want, ok := expected[rec.ImplResource]
		require.True(t, ok, "unexpected impl resource %q", rec.ImplResource)
		assert.Equal(t, ref, rec.RefResource)
		require.NotNil(t, rec.Score)
		assert.InDelta(t, want.Score, *rec.Score, 1e-9)
		require.NotNil(t, rec.Passed)
		assert.Equal(t, want.Passed, *rec.Passed)
	}

	// The trend for the repeated pair must surface both runs, oldest first
	trendOut := runDpcJSON(t, dpcPath,
		"runs", "trend", ref, same, "--format", "json",
		"--store-backend", "sqlite", "--store-db-connect", dbPath)

	var trend schema.TrendResult
	require.NoError(t, json.Unmarshal([]byte(trendOut), &trend))
	require.Len(t, trend.Points, 2)
	assert.False(t, trend.Points[1].Time.Before(trend.Points[0].Time))
	for _, point := range trend.Points {
		assert.InDelta(t, expected[same].Score, point.Score, 1e-9)
		assert.True(t, point.Passed)
	}
	assert.InDelta(t, 0.0, trend.Delta, 1e-9)
}

// compareInProcess runs the comparison engine directly on the fixture files,
// mirroring the capture transform the CLI applies to image resources.
func compareInProcess(t *testing.T, refPath, implPath string) *schema.ComparisonReport {
	t.Helper()

	vp := schema.Viewport{Width: fixtureW, Height: fixtureH}
	cfg := &contract.Config{
		Viewport:     vp,
		Threshold:    contract.DefaultThreshold,
		Workers:      contract.DefaultWorkers,
		MatchWeights: schema.DefaultMatchWeights(),
	}

	report, err := core.Compare(context.Background(), cfg, loadSnapshot(t, refPath, vp), loadSnapshot(t, implPath, vp))
	require.NoError(t, err)
	return report
}

// loadSnapshot decodes a fixture the same way captureImage does.
func loadSnapshot(t *testing.T, path string, vp schema.Viewport) *schema.Snapshot {
	t.Helper()

	img, err := imaging.Load(path)
	require.NoError(t, err)
	return &schema.Snapshot{
		Kind:   schema.ImageSnapshot,
		Source: path,
		Img:    imaging.Letterbox(img, vp.Width, vp.Height),
		Width:  vp.Width,
		Height: vp.Height,
	}
}

// runCompareJSON runs dpc compare with JSON output and returns the parsed
// envelope plus the process exit code. Exit code 1 is the expected verdict
// for a failing comparison, so it is not an error here.
func runCompareJSON(t *testing.T, dpcPath, ref, impl string, extraArgs ...string) (compareEnvelope, int) {
	t.Helper()

	args := []string{
		"compare", ref, impl,
		"--format", "json",
		"--viewport", "256x192",
		"--store-backend", "none",
	}
	// Store flags in extraArgs override the disabled default
	args = append(args, extraArgs...)

	cmd := exec.Command(dpcPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		require.True(t, ok, "compare did not run: %v\nstderr: %s", err, stderr.String())
		exitCode = exitErr.ExitCode()
	}

	var envelope compareEnvelope
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &envelope),
		"unparseable compare output: %s", stdout.String())
	return envelope, exitCode
}

// runDpcJSON runs a dpc command expected to succeed and returns its stdout.
func runDpcJSON(t *testing.T, dpcPath string, args ...string) string {
	t.Helper()

	cmd := exec.Command(dpcPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "command failed: %s\nstderr: %s", cmd.String(), stderr.String())
	return stdout.String()
}

// writeScenePNG writes a light-gray page fixture, optionally mutated by paint.
func writeScenePNG(t *testing.T, path string, paint func(*image.NRGBA)) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, fixtureW, fixtureH))
	for y := 0; y < fixtureH; y++ {
		for x := 0; x < fixtureW; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 245, G: 246, B: 248, A: 255})
		}
	}
	if paint != nil {
		paint(img)
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, img))
}

// buildDpc builds the dpc binary once per test into a temp directory.
func buildDpc(t *testing.T) string {
	t.Helper()

	dpcPath := filepath.Join(t.TempDir(), "dpc")
	buildCmd := exec.Command("go", "build", "-o", dpcPath, "./cmd/dpc")
	buildCmd.Dir = ".." // Project root
	out, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "failed to build dpc: %s", string(out))
	return dpcPath
}
