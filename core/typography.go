package core

import (
	"math"

	"github.com/parityci/dpc/schema"
)

const (
	fontSizeTolerance    = 0.10 // relative size drift tolerated before penalty
	fontSizeScale        = 0.40 // excess over tolerance scaled to a 1.0 cap
	lineHeightTolerance  = 0.10
	lineHeightScale      = 0.40
	lineHeightPenaltyCap = 0.5

	fontFamilyPenalty = 1.0
	fontWeightPenalty = 0.5
)

// ComputeTypographyMetric compares font attributes across layout-matched
// pairs that carry style on both sides. With no such pair the score is nil:
// typography cannot be judged, which is different from judging it broken.
func ComputeTypographyMetric(ref, impl []schema.Element, matches []schema.ElementMatch) *schema.TypographyReport {
	report := &schema.TypographyReport{Diffs: []schema.TypographyDiff{}}

	var penaltySum float64
	for _, m := range matches {
		refEl := ref[m.RefIndex]
		implEl := impl[m.ImplIndex]
		if refEl.Style == nil || implEl.Style == nil {
			continue
		}
		report.Pairs++

		penalty, issues := pairPenalty(refEl.Style, implEl.Style)
		penaltySum += penalty
		if len(issues) == 0 {
			continue
		}
		label := refEl.Label
		if label == "" {
			label = implEl.Label
		}
		report.Diffs = append(report.Diffs, schema.TypographyDiff{
			RefIndex:  m.RefIndex,
			ImplIndex: m.ImplIndex,
			Label:     label,
			Issues:    issues,
			Penalty:   penalty,
		})
	}

	if report.Pairs == 0 {
		report.Note = "no matched pair carries style on both sides"
		return report
	}

	score := 1 - schema.Clamp01(penaltySum/float64(report.Pairs))
	report.Score = &score
	return report
}

// pairPenalty sums the attribute penalties for one styled pair, capped at
// 1.0. Attributes absent on either side are skipped rather than penalized.
func pairPenalty(ref, impl *schema.ElementStyle) (float64, []schema.TypographyIssue) {
	var penalty float64
	issues := []schema.TypographyIssue{}

	if !schema.FontFamiliesEquivalent(ref.FontFamily, impl.FontFamily) {
		penalty += fontFamilyPenalty
		issues = append(issues, schema.FontFamilyMismatch)
	}

	if ref.FontSizePx > 0 && impl.FontSizePx > 0 {
		if p := excessPenalty(ref.FontSizePx, impl.FontSizePx, fontSizeTolerance, fontSizeScale, 1.0); p > 0 {
			penalty += p
			issues = append(issues, schema.FontSizeDiff)
		}
	}

	if ref.FontWeight != "" && impl.FontWeight != "" && ref.FontWeight != impl.FontWeight {
		penalty += fontWeightPenalty
		issues = append(issues, schema.FontWeightDiff)
	}

	if ref.LineHeightPx > 0 && impl.LineHeightPx > 0 {
		if p := excessPenalty(ref.LineHeightPx, impl.LineHeightPx, lineHeightTolerance, lineHeightScale, lineHeightPenaltyCap); p > 0 {
			penalty += p
			issues = append(issues, schema.LineHeightDiff)
		}
	}

	return min(penalty, 1.0), issues
}

// excessPenalty converts relative drift beyond a tolerance into a capped
// linear penalty. Drift within tolerance costs nothing.
func excessPenalty(ref, impl, tolerance, scale, limit float64) float64 {
	drift := math.Abs(impl-ref) / ref
	if drift <= tolerance {
		return 0
	}
	return min((drift-tolerance)/scale, limit)
}
