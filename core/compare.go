// Package core has core logic for comparison, scoring and quality checks.
package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

const structuralSkipNote = "element data missing on at least one side"

// Compare runs the requested metrics over two snapshots and aggregates the
// surviving scores. Each metric runs in its own goroutine; a panic inside a
// metric downgrades it to a nil score with a diagnostic instead of failing
// the run. Only total score absence is a hard error.
func Compare(ctx context.Context, cfg *contract.Config, ref, impl *schema.Snapshot) (*schema.ComparisonReport, error) {
	if ref == nil || impl == nil {
		return nil, fmt.Errorf("both snapshots are required: %w", schema.ErrInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("comparison canceled: %w", err)
	}

	metrics := cfg.Metrics
	if len(metrics) == 0 {
		metrics = schema.AllMetrics
	}
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = schema.GetDefaultWeights()
	}
	requested := make(map[schema.MetricName]bool, len(metrics))
	for _, name := range metrics {
		requested[name] = true
	}

	report := &schema.ComparisonReport{Threshold: cfg.Threshold}

	// --- 1. Extraction Phase ---
	refElements := ExtractElements(ref)
	implElements := ExtractElements(impl)
	structural := ref.HasStructure() && impl.HasStructure()

	// --- 2. Metric Phase ---
	workers := cfg.Workers
	if workers <= 0 {
		workers = len(schema.AllMetrics)
	}
	sem := make(chan struct{}, workers)
	acquire := func() { sem <- struct{}{} }
	release := func() { <-sem }

	var wg sync.WaitGroup
	matchesCh := make(chan []schema.ElementMatch, 1)

	if requested[schema.PixelMetricName] {
		wg.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					report.Metrics.Pixel = &schema.PixelReport{
						DiffRegions: []schema.PixelDiff{},
						Note:        fmt.Sprintf("metric failed: %v", r),
					}
				}
			}()
			acquire()
			defer release()
			report.Metrics.Pixel = ComputePixelMetric(ref, impl, cfg.IgnoreRegions)
		})
	}

	if requested[schema.LayoutMetricName] || requested[schema.TypographyMetricName] {
		wg.Go(func() {
			var matches []schema.ElementMatch
			defer func() {
				if r := recover(); r != nil {
					matches = nil
					if requested[schema.LayoutMetricName] {
						report.Metrics.Layout = &schema.LayoutReport{
							Diffs: []schema.LayoutDiff{},
							Note:  fmt.Sprintf("metric failed: %v", r),
						}
					}
				}
				matchesCh <- matches
			}()
			acquire()
			defer release()
			if !structural {
				if requested[schema.LayoutMetricName] {
					report.Metrics.Layout = &schema.LayoutReport{
						Diffs: []schema.LayoutDiff{},
						Note:  structuralSkipNote,
					}
				}
				return
			}
			matches = MatchElements(refElements, implElements, cfg.MatchWeights)
			if requested[schema.LayoutMetricName] {
				report.Metrics.Layout = ComputeLayoutMetric(refElements, implElements, matches)
			}
		})
	}

	if requested[schema.TypographyMetricName] {
		wg.Go(func() {
			matches := <-matchesCh
			defer func() {
				if r := recover(); r != nil {
					report.Metrics.Typography = &schema.TypographyReport{
						Diffs: []schema.TypographyDiff{},
						Note:  fmt.Sprintf("metric failed: %v", r),
					}
				}
			}()
			acquire()
			defer release()
			if !structural {
				report.Metrics.Typography = &schema.TypographyReport{
					Diffs: []schema.TypographyDiff{},
					Note:  structuralSkipNote,
				}
				return
			}
			report.Metrics.Typography = ComputeTypographyMetric(refElements, implElements, matches)
		})
	}

	if requested[schema.ColorMetricName] {
		wg.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					report.Metrics.Color = &schema.ColorReport{
						RefPalette:  []schema.PaletteColor{},
						ImplPalette: []schema.PaletteColor{},
						Diffs:       []schema.ColorDiff{},
						Note:        fmt.Sprintf("metric failed: %v", r),
					}
				}
			}()
			acquire()
			defer release()
			report.Metrics.Color = ComputeColorMetric(ref, impl)
		})
	}

	if requested[schema.ContentMetricName] {
		wg.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					report.Metrics.Content = &schema.ContentReport{
						Diffs: []schema.ContentDiff{},
						Note:  fmt.Sprintf("metric failed: %v", r),
					}
				}
			}()
			acquire()
			defer release()
			if !structural {
				report.Metrics.Content = &schema.ContentReport{
					Diffs: []schema.ContentDiff{},
					Note:  structuralSkipNote,
				}
				return
			}
			report.Metrics.Content = ComputeContentMetric(refElements, implElements)
		})
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("comparison canceled: %w", err)
	}

	// --- 3. Aggregation Phase ---
	scores := make(map[schema.MetricName]*float64, len(metrics))
	for _, name := range metrics {
		scores[name] = report.Metrics.Score(name)
	}
	combined, err := CombineScores(scores, weights)
	if err != nil {
		if notes := metricNotes(&report.Metrics); len(notes) > 0 {
			return nil, fmt.Errorf("%w (%s)", err, strings.Join(notes, "; "))
		}
		return nil, err
	}

	report.Score = combined
	report.Passed = combined >= cfg.Threshold
	report.Summary = BuildSummary(&report.Metrics)
	return report, nil
}

// metricNotes collects the per-metric diagnostics in metric order.
func metricNotes(metrics *schema.MetricScores) []string {
	notes := []string{}
	add := func(name schema.MetricName, note string) {
		if note != "" {
			notes = append(notes, fmt.Sprintf("%s: %s", name, note))
		}
	}
	if metrics.Pixel != nil {
		add(schema.PixelMetricName, metrics.Pixel.Note)
	}
	if metrics.Layout != nil {
		add(schema.LayoutMetricName, metrics.Layout.Note)
	}
	if metrics.Typography != nil {
		add(schema.TypographyMetricName, metrics.Typography.Note)
	}
	if metrics.Color != nil {
		add(schema.ColorMetricName, metrics.Color.Note)
	}
	if metrics.Content != nil {
		add(schema.ContentMetricName, metrics.Content.Note)
	}
	return notes
}
