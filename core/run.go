package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// RunCompare captures both sides, scores them, and wraps the report in the
// versioned output envelope. A live run store records the attempt before
// capture starts and its scores after; store failures degrade to a warning
// since history is never worth failing a comparison over.
func RunCompare(ctx context.Context, cfg *contract.Config, provider contract.CaptureProvider, mgr contract.StoreManager) (*schema.CompareOutput, error) {
	start := time.Now()
	if !ShouldBeQuiet(ctx) {
		contract.LogCompareHeader(cfg)
	}

	store := runStoreFrom(mgr)
	var runID int64
	recording := false
	if store != nil {
		id, err := store.BeginRun(start, cfg.RefResource.Value, cfg.ImplResource.Value, cfg.Viewport, cfg.ConfigParams())
		if err != nil {
			warnStore(ctx, err)
		} else {
			runID, recording = id, true
		}
	}

	ref, impl, err := captureBothSides(ctx, cfg, provider)
	if err != nil {
		abandonRun(ctx, store, recording, runID)
		return nil, err
	}

	report, err := Compare(ctx, cfg, ref, impl)
	if err != nil {
		abandonRun(ctx, store, recording, runID)
		return nil, err
	}

	if recording {
		finishRun(ctx, store, runID, cfg, report)
	}

	out := &schema.CompareOutput{
		Version:          schema.OutputVersion,
		Mode:             schema.CompareMode,
		Ref:              cfg.RefResource,
		Impl:             cfg.ImplResource,
		Viewport:         cfg.Viewport,
		ComparisonReport: *report,
		DurationMs:       time.Since(start).Milliseconds(),
	}
	if cfg.ArtifactDir != "" {
		if err := writeCompareArtifacts(cfg, out, ref, impl); err != nil {
			return nil, fmt.Errorf("failed to write artifacts: %w", err)
		}
		if !ShouldBeQuiet(ctx) {
			fmt.Fprintf(os.Stderr, "🗂️ Artifacts: %s\n", out.Artifacts.Dir)
		}
	}
	return out, nil
}

// RunCheck is RunCompare plus enforcement of the per-metric minimums. The
// envelope keeps the compare mode discriminator so downstream consumers
// parse both commands the same way.
func RunCheck(ctx context.Context, cfg *contract.Config, provider contract.CaptureProvider, mgr contract.StoreManager) (*schema.CheckOutput, error) {
	out, err := RunCompare(ctx, cfg, provider, mgr)
	if err != nil {
		return nil, err
	}
	return &schema.CheckOutput{
		CompareOutput: *out,
		Violations:    BuildViolations(cfg.Metrics, &out.Metrics, cfg.MinScores),
	}, nil
}

// BuildViolations checks each requested metric against its configured
// minimum. A metric that could not produce a score violates any minimum
// set for it, since the floor cannot be proven met. Minimums configured
// for metrics outside the requested set are ignored.
func BuildViolations(metrics []schema.MetricName, scores *schema.MetricScores, minScores map[schema.MetricName]float64) []schema.CheckViolation {
	if len(metrics) == 0 {
		metrics = schema.AllMetrics
	}
	violations := []schema.CheckViolation{}
	for _, name := range metrics {
		minimum, ok := minScores[name]
		if !ok {
			continue
		}
		score := scores.Score(name)
		if score != nil && *score >= minimum {
			continue
		}
		violations = append(violations, schema.CheckViolation{
			Metric:  name,
			Score:   score,
			Minimum: minimum,
		})
	}
	return violations
}

// RunQuality captures one input and runs the single-snapshot heuristics
// over it. The ref sidecar flag doubles as the input's sidecar since
// quality has no second side.
func RunQuality(ctx context.Context, cfg *contract.Config, provider contract.CaptureProvider) (*schema.QualityOutput, error) {
	start := time.Now()
	if !ShouldBeQuiet(ctx) {
		contract.LogQualityHeader(cfg)
	}

	snap, err := provider.Capture(ctx, contract.CaptureRequest{Resource: cfg.InputResource, Sidecar: cfg.RefSidecar})
	if err != nil {
		return nil, fmt.Errorf("failed to capture input: %w", err)
	}

	report := AssessQuality(snap)

	return &schema.QualityOutput{
		Version:       schema.OutputVersion,
		Mode:          schema.QualityMode,
		Input:         cfg.InputResource,
		Viewport:      cfg.Viewport,
		QualityReport: *report,
		DurationMs:    time.Since(start).Milliseconds(),
	}, nil
}

// RunGenerate captures one input and emits a code skeleton for the
// configured stack. DPC_MOCK_CODE short-circuits the emitter so tests and
// integrations can inject a fixed payload.
func RunGenerate(ctx context.Context, cfg *contract.Config, provider contract.CaptureProvider) (*schema.GenerateOutput, error) {
	if !ShouldBeQuiet(ctx) {
		contract.LogGenerateHeader(cfg)
	}

	out := &schema.GenerateOutput{
		Version:  schema.OutputVersion,
		Mode:     schema.GenerateMode,
		Input:    cfg.InputResource,
		Viewport: cfg.Viewport,
		Stack:    resolveStack(cfg.Stack),
	}

	if mock := os.Getenv("DPC_MOCK_CODE"); mock != "" {
		out.Code = mock
		return out, nil
	}

	if _, err := stackEmitter(out.Stack); err != nil {
		return nil, err
	}
	snap, err := provider.Capture(ctx, contract.CaptureRequest{Resource: cfg.InputResource, Sidecar: cfg.RefSidecar})
	if err != nil {
		return nil, fmt.Errorf("failed to capture input: %w", err)
	}
	code, err := GenerateCode(snap, out.Stack)
	if err != nil {
		return nil, err
	}
	out.Code = code
	return out, nil
}

func captureBothSides(ctx context.Context, cfg *contract.Config, provider contract.CaptureProvider) (*schema.Snapshot, *schema.Snapshot, error) {
	ref, err := provider.Capture(ctx, contract.CaptureRequest{Resource: cfg.RefResource, Sidecar: cfg.RefSidecar})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to capture ref: %w", err)
	}
	impl, err := provider.Capture(ctx, contract.CaptureRequest{Resource: cfg.ImplResource, Sidecar: cfg.ImplSidecar})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to capture impl: %w", err)
	}
	return ref, impl, nil
}

func runStoreFrom(mgr contract.StoreManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// finishRun stores the per-metric scores and closes the run row.
func finishRun(ctx context.Context, store contract.RunStore, runID int64, cfg *contract.Config, report *schema.ComparisonReport) {
	metrics := cfg.Metrics
	if len(metrics) == 0 {
		metrics = schema.AllMetrics
	}
	for _, name := range metrics {
		if err := store.RecordMetricScore(runID, name, report.Metrics.Score(name), report.Metrics.DiffCount(name)); err != nil {
			warnStore(ctx, err)
			return
		}
	}
	score, passed := report.Score, report.Passed
	if err := store.EndRun(runID, time.Now(), &score, &passed); err != nil {
		warnStore(ctx, err)
	}
}

// abandonRun closes the run row with no score so a failed capture does not
// linger as in-flight forever.
func abandonRun(ctx context.Context, store contract.RunStore, recording bool, runID int64) {
	if !recording {
		return
	}
	if err := store.EndRun(runID, time.Now(), nil, nil); err != nil {
		warnStore(ctx, err)
	}
}

func warnStore(ctx context.Context, err error) {
	if ShouldBeQuiet(ctx) {
		return
	}
	fmt.Fprintf(os.Stderr, "⚠️ Run history not recorded: %v\n", err)
}
