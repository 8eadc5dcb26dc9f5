package core

import (
	"math"
	"sort"
	"strings"

	"github.com/parityci/dpc/core/algo"
	"github.com/parityci/dpc/schema"
)

const (
	matchAcceptThreshold = 0.3 // candidate pairs below this never match

	positionTolerance = 0.005 // normalized center offset treated as in place
	sizeTolerance     = 0.10  // relative width/height deviation treated as same size

	matchRateWeight  = 0.5
	avgIoUWeight     = 0.5
	extraRatePenalty = 0.1

	shiftModerateMin = 0.02 // center offsets grade minor below, major above
	shiftMajorMin    = 0.05
	resizeModerate   = 0.25 // relative size deviations grade the same way
	resizeMajor      = 0.50
	presenceModerate = 0.01 // missing/extra graded by normalized element area
	presenceMajor    = 0.05
)

type matchCandidate struct {
	ref   int
	impl  int
	score float64
}

// MatchElements pairs ref and impl elements one-to-one: score every pair,
// stable sort by descending score, then greedily commit pairs whose sides
// are both free and whose score clears the acceptance threshold. Matches
// come back ordered by ref index.
func MatchElements(ref, impl []schema.Element, weights schema.MatchWeights) []schema.ElementMatch {
	candidates := make([]matchCandidate, 0, len(ref)*len(impl))
	for i, re := range ref {
		for j, ie := range impl {
			candidates = append(candidates, matchCandidate{
				ref:   i,
				impl:  j,
				score: candidateScore(re, ie, weights),
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	refTaken := make([]bool, len(ref))
	implTaken := make([]bool, len(impl))
	matches := []schema.ElementMatch{}
	for _, cand := range candidates {
		if cand.score <= matchAcceptThreshold {
			break
		}
		if refTaken[cand.ref] || implTaken[cand.impl] {
			continue
		}
		refTaken[cand.ref] = true
		implTaken[cand.impl] = true
		matches = append(matches, schema.ElementMatch{
			RefIndex:  cand.ref,
			ImplIndex: cand.impl,
			Score:     cand.score,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].RefIndex < matches[j].RefIndex
	})
	return matches
}

// candidateScore blends exact type equality, label similarity and center
// proximity. Label similarity is zero when either side has no label.
func candidateScore(ref, impl schema.Element, weights schema.MatchWeights) float64 {
	typeMatch := 0.0
	if ref.Type == impl.Type {
		typeMatch = 1.0
	}

	labelSim := 0.0
	refLabel := strings.ToLower(strings.TrimSpace(ref.Label))
	implLabel := strings.ToLower(strings.TrimSpace(impl.Label))
	if refLabel != "" && implLabel != "" {
		labelSim = algo.SimilarityRatio(refLabel, implLabel)
	}

	proximity := 1 - schema.Clamp01(centerOffset(ref.Box, impl.Box)/math.Sqrt2)

	return weights.Type*typeMatch + weights.Label*labelSim + weights.Proximity*proximity
}

func centerOffset(a, b schema.Box) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(bx-ax, by-ay)
}

// ComputeLayoutMetric scores structural similarity over a committed match
// set and emits categorized diffs for everything that moved, resized, or
// exists on only one side.
func ComputeLayoutMetric(ref, impl []schema.Element, matches []schema.ElementMatch) *schema.LayoutReport {
	report := &schema.LayoutReport{Diffs: []schema.LayoutDiff{}}

	if len(ref) == 0 && len(impl) == 0 {
		score := 1.0
		report.Score = &score
		report.MatchRate = 1
		report.AvgIoU = 1
		report.Note = "no elements on either side"
		return report
	}

	// --- 1. Scoring Phase ---
	if len(ref) > 0 {
		report.MatchRate = float64(len(matches)) / float64(len(ref))
	}
	if len(matches) > 0 {
		var iouSum float64
		for _, m := range matches {
			iouSum += ref[m.RefIndex].Box.IoU(impl[m.ImplIndex].Box)
		}
		report.AvgIoU = iouSum / float64(len(matches))
	}
	report.ExtraRate = float64(max(0, len(impl)-len(matches))) / float64(max(1, len(impl)))

	score := schema.Clamp01(matchRateWeight*report.MatchRate +
		avgIoUWeight*report.AvgIoU -
		extraRatePenalty*report.ExtraRate)
	report.Score = &score

	// --- 2. Diff Phase ---
	refMatched := make([]bool, len(ref))
	implMatched := make([]bool, len(impl))
	for _, m := range matches {
		refMatched[m.RefIndex] = true
		implMatched[m.ImplIndex] = true
	}

	for i, el := range ref {
		if !refMatched[i] {
			report.Diffs = append(report.Diffs, schema.LayoutDiff{
				Kind:     schema.MissingElementDiff,
				RefIndex: intPtr(i),
				Box:      el.Box,
				Label:    el.Label,
				Severity: presenceSeverity(el.Box.Area()),
			})
		}
	}

	refGraph := BuildRelationGraph(ref)
	implGraph := BuildRelationGraph(impl)
	for _, m := range matches {
		report.Diffs = append(report.Diffs, pairDiffs(ref, impl, matches, m, refGraph, implGraph)...)
	}

	for j, el := range impl {
		if !implMatched[j] {
			report.Diffs = append(report.Diffs, schema.LayoutDiff{
				Kind:      schema.ExtraElementDiff,
				ImplIndex: intPtr(j),
				Box:       el.Box,
				Label:     el.Label,
				Severity:  presenceSeverity(el.Box.Area()),
			})
		}
	}
	return report
}

// pairDiffs checks one matched pair for positional and size drift. Both
// diff kinds may fire for the same pair.
func pairDiffs(ref, impl []schema.Element, matches []schema.ElementMatch, m schema.ElementMatch, refGraph, implGraph *RelationGraph) []schema.LayoutDiff {
	refEl := ref[m.RefIndex]
	implEl := impl[m.ImplIndex]
	label := refEl.Label
	if label == "" {
		label = implEl.Label
	}

	diffs := []schema.LayoutDiff{}
	if offset := centerOffset(refEl.Box, implEl.Box); offset > positionTolerance {
		severity := shiftSeverity(offset)
		if brokeOrdering(refGraph, implGraph, matches, m) {
			severity = schema.MajorSeverity
		}
		diffs = append(diffs, schema.LayoutDiff{
			Kind:      schema.PositionShiftDiff,
			RefIndex:  intPtr(m.RefIndex),
			ImplIndex: intPtr(m.ImplIndex),
			Box:       implEl.Box,
			Label:     label,
			Severity:  severity,
		})
	}
	if deviation := sizeDeviation(refEl.Box, implEl.Box); deviation > sizeTolerance {
		diffs = append(diffs, schema.LayoutDiff{
			Kind:      schema.SizeChangeDiff,
			RefIndex:  intPtr(m.RefIndex),
			ImplIndex: intPtr(m.ImplIndex),
			Box:       implEl.Box,
			Label:     label,
			Severity:  resizeSeverity(deviation),
		})
	}
	return diffs
}

// brokeOrdering reports whether the pair moved past any other matched
// element, inverting an above/below or left/right relation.
func brokeOrdering(refGraph, implGraph *RelationGraph, matches []schema.ElementMatch, m schema.ElementMatch) bool {
	for _, other := range matches {
		if other.RefIndex == m.RefIndex {
			continue
		}
		if !OrderingsAgree(refGraph, implGraph, m.RefIndex, other.RefIndex, m.ImplIndex, other.ImplIndex) {
			return true
		}
	}
	return false
}

// sizeDeviation is the larger relative width/height change.
func sizeDeviation(ref, impl schema.Box) float64 {
	if ref.W <= 0 || ref.H <= 0 {
		return 0
	}
	wDev := math.Abs(impl.W/ref.W - 1)
	hDev := math.Abs(impl.H/ref.H - 1)
	return max(wDev, hDev)
}

func shiftSeverity(offset float64) schema.DiffSeverity {
	switch {
	case offset < shiftModerateMin:
		return schema.MinorSeverity
	case offset < shiftMajorMin:
		return schema.ModerateSeverity
	default:
		return schema.MajorSeverity
	}
}

func resizeSeverity(deviation float64) schema.DiffSeverity {
	switch {
	case deviation < resizeModerate:
		return schema.MinorSeverity
	case deviation < resizeMajor:
		return schema.ModerateSeverity
	default:
		return schema.MajorSeverity
	}
}

func presenceSeverity(area float64) schema.DiffSeverity {
	switch {
	case area < presenceModerate:
		return schema.MinorSeverity
	case area < presenceMajor:
		return schema.ModerateSeverity
	default:
		return schema.MajorSeverity
	}
}

func intPtr(i int) *int {
	return &i
}
