package core

import (
	"fmt"
	"strings"

	"github.com/parityci/dpc/core/algo"
	"github.com/parityci/dpc/schema"
)

const topIssuesLimit = 5

// CombineScores folds the per-metric scores into one weighted score.
// Metrics without a score are excluded and their weight redistributes
// proportionally over the rest. Every metric absent is an error: there is
// nothing honest to aggregate.
func CombineScores(scores map[schema.MetricName]*float64, weights map[schema.MetricName]float64) (float64, error) {
	var weightSum, weighted float64
	for _, name := range schema.AllMetrics {
		score, ok := scores[name]
		if !ok || score == nil {
			continue
		}
		weight := weights[name]
		if weight <= 0 {
			continue
		}
		weighted += weight * *score
		weightSum += weight
	}
	if weightSum == 0 {
		return 0, fmt.Errorf("no metric produced a score: %w", schema.ErrAggregation)
	}
	return schema.Clamp01(weighted / weightSum), nil
}

type rankedIssue struct {
	rank    int // severity weight, higher is worse
	message string
}

// BuildSummary surfaces the worst findings across all computed metrics,
// severity first, metric order breaking ties.
func BuildSummary(metrics *schema.MetricScores) schema.Summary {
	issues := []rankedIssue{}

	if metrics.Pixel != nil {
		for _, d := range metrics.Pixel.DiffRegions {
			issues = append(issues, rankedIssue{
				rank: severityRank(d.Severity),
				message: fmt.Sprintf("%s %s at (%.2f, %.2f)",
					d.Severity, strings.ReplaceAll(string(d.Reason), "_", " "), d.X, d.Y),
			})
		}
	}
	if metrics.Layout != nil {
		for _, d := range metrics.Layout.Diffs {
			issues = append(issues, rankedIssue{
				rank:    severityRank(d.Severity),
				message: layoutIssueMessage(d),
			})
		}
	}
	if metrics.Typography != nil {
		for _, d := range metrics.Typography.Diffs {
			rank := 1
			if d.Penalty >= 0.5 {
				rank = 2
			}
			issues = append(issues, rankedIssue{
				rank:    rank,
				message: fmt.Sprintf("%s on %s", strings.ReplaceAll(string(d.Issues[0]), "_", " "), issueLabel(d.Label)),
			})
		}
	}
	if metrics.Color != nil {
		for _, d := range metrics.Color.Diffs {
			if d.Kind == schema.PaletteCountMismatch {
				issues = append(issues, rankedIssue{rank: 1, message: "palette sizes differ"})
				continue
			}
			message := fmt.Sprintf("%s: %s not found", strings.ReplaceAll(string(d.Kind), "_", " "), d.RefColor)
			if d.ImplColor != "" {
				message = fmt.Sprintf("%s: %s became %s", strings.ReplaceAll(string(d.Kind), "_", " "), d.RefColor, d.ImplColor)
			}
			issues = append(issues, rankedIssue{rank: 2, message: message})
		}
	}
	if metrics.Content != nil {
		for _, d := range metrics.Content.Diffs {
			rank := 1
			verb := "extra text"
			if d.Kind == schema.MissingTextDiff {
				rank = 2
				verb = "missing text"
			}
			issues = append(issues, rankedIssue{
				rank:    rank,
				message: fmt.Sprintf("%s %s", verb, issueLabel(d.Text)),
			})
		}
	}

	issues = algo.RankTop(issues, func(issue rankedIssue) int { return issue.rank }, topIssuesLimit)

	summary := schema.Summary{TopIssues: []string{}}
	for _, issue := range issues {
		summary.TopIssues = append(summary.TopIssues, issue.message)
	}
	return summary
}

func layoutIssueMessage(d schema.LayoutDiff) string {
	switch d.Kind {
	case schema.MissingElementDiff:
		return fmt.Sprintf("missing element %s", issueLabel(d.Label))
	case schema.ExtraElementDiff:
		return fmt.Sprintf("extra element %s", issueLabel(d.Label))
	case schema.PositionShiftDiff:
		return fmt.Sprintf("element %s shifted (%s)", issueLabel(d.Label), d.Severity)
	default:
		return fmt.Sprintf("element %s resized (%s)", issueLabel(d.Label), d.Severity)
	}
}

// issueLabel quotes and truncates free text for the summary line.
func issueLabel(label string) string {
	if label == "" {
		return "(unlabeled)"
	}
	runes := []rune(label)
	if len(runes) > 40 {
		label = string(runes[:40]) + "..."
	}
	return fmt.Sprintf("%q", label)
}

func severityRank(s schema.DiffSeverity) int {
	switch s {
	case schema.MajorSeverity:
		return 3
	case schema.ModerateSeverity:
		return 2
	default:
		return 1
	}
}
