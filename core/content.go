package core

import (
	"strings"
	"unicode"

	"github.com/parityci/dpc/core/algo"
	"github.com/parityci/dpc/schema"
)

const (
	contentAcceptThreshold = 0.8 // similarity ratio required to match strings
	extraPenaltyWeight     = 0.1 // score cost per significant extra string
	significantTextRunes   = 4   // shorter extras are ignored as labels/glyphs
)

type contentString struct {
	original   string
	normalized string
}

// ComputeContentMetric checks that the reference text survives into the
// implementation. The score is nil when neither side carries any labeled
// element at all, since absence of text data is not absence of parity.
func ComputeContentMetric(ref, impl []schema.Element) *schema.ContentReport {
	report := &schema.ContentReport{Diffs: []schema.ContentDiff{}}

	if labeledCount(ref) == 0 && labeledCount(impl) == 0 {
		report.Note = "no text content on either side"
		return report
	}
	refStrings := collectContent(ref)
	implStrings := collectContent(impl)

	// --- 1. Matching Phase ---
	implTaken := make([]bool, len(implStrings))
	matched := 0
	for _, rs := range refStrings {
		best := -1
		bestRatio := 0.0
		for j, is := range implStrings {
			if implTaken[j] {
				continue
			}
			ratio := algo.SimilarityRatio(rs.normalized, is.normalized)
			if ratio > bestRatio {
				best, bestRatio = j, ratio
			}
		}
		if best >= 0 && bestRatio >= contentAcceptThreshold {
			implTaken[best] = true
			matched++
			continue
		}

		diff := schema.ContentDiff{Kind: schema.MissingTextDiff, Text: rs.original}
		if best >= 0 {
			diff.BestMatch = implStrings[best].original
			diff.Similarity = bestRatio
		}
		report.Diffs = append(report.Diffs, diff)
	}

	// --- 2. Scoring Phase ---
	report.MatchRate = 1.0
	if len(refStrings) > 0 {
		report.MatchRate = float64(matched) / float64(len(refStrings))
	}

	extras := 0
	for j, is := range implStrings {
		if implTaken[j] {
			continue
		}
		if len([]rune(is.normalized)) < significantTextRunes {
			continue
		}
		extras++
		report.Diffs = append(report.Diffs, schema.ContentDiff{
			Kind: schema.ExtraTextDiff,
			Text: is.original,
		})
	}

	score := schema.Clamp01(report.MatchRate - extraPenaltyWeight*float64(extras))
	report.Score = &score
	return report
}

func labeledCount(elements []schema.Element) int {
	n := 0
	for _, el := range elements {
		if el.Label != "" {
			n++
		}
	}
	return n
}

// collectContent returns the labels that survive normalization, in element
// order, keeping the originals for diff reporting.
func collectContent(elements []schema.Element) []contentString {
	strs := []contentString{}
	for _, el := range elements {
		if el.Label == "" {
			continue
		}
		normalized := NormalizeText(el.Label)
		if normalized == "" {
			continue
		}
		strs = append(strs, contentString{original: el.Label, normalized: normalized})
	}
	return strs
}

// NormalizeText case-folds, strips punctuation and symbols, and collapses
// whitespace so cosmetic differences do not count against content parity.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
