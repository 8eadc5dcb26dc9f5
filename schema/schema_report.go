package schema

// ComparisonReport is the full result of comparing two snapshots.
// Score is the weighted combination of all present metric scores.
type ComparisonReport struct {
	Score     float64      `json:"score"`
	Threshold float64      `json:"threshold"`
	Passed    bool         `json:"passed"`
	Metrics   MetricScores `json:"metrics"`
	Summary   Summary      `json:"summary"`
}

// MetricScores holds the per-metric breakdown. A nil metric was not
// requested; a present metric with nil Score could not be computed.
type MetricScores struct {
	Pixel      *PixelReport      `json:"pixel"`
	Layout     *LayoutReport     `json:"layout"`
	Typography *TypographyReport `json:"typography"`
	Color      *ColorReport      `json:"color"`
	Content    *ContentReport    `json:"content"`
}

// Score returns the score pointer for a metric, nil when the metric is absent.
func (m *MetricScores) Score(name MetricName) *float64 {
	switch name {
	case PixelMetricName:
		if m.Pixel != nil {
			return m.Pixel.Score
		}
	case LayoutMetricName:
		if m.Layout != nil {
			return m.Layout.Score
		}
	case TypographyMetricName:
		if m.Typography != nil {
			return m.Typography.Score
		}
	case ColorMetricName:
		if m.Color != nil {
			return m.Color.Score
		}
	case ContentMetricName:
		if m.Content != nil {
			return m.Content.Score
		}
	}
	return nil
}

// DiffCount returns how many diffs a metric reported, zero when absent.
func (m *MetricScores) DiffCount(name MetricName) int {
	switch name {
	case PixelMetricName:
		if m.Pixel != nil {
			return len(m.Pixel.DiffRegions)
		}
	case LayoutMetricName:
		if m.Layout != nil {
			return len(m.Layout.Diffs)
		}
	case TypographyMetricName:
		if m.Typography != nil {
			return len(m.Typography.Diffs)
		}
	case ColorMetricName:
		if m.Color != nil {
			return len(m.Color.Diffs)
		}
	case ContentMetricName:
		if m.Content != nil {
			return len(m.Content.Diffs)
		}
	}
	return 0
}

// PixelReport is the pixel metric breakdown.
type PixelReport struct {
	Score       *float64    `json:"score"`
	DiffRegions []PixelDiff `json:"diffRegions"`
	Note        string      `json:"note,omitempty"` // Diagnostic when Score is nil
}

// PixelDiff is one region of visible pixel difference. Coordinates are
// normalized to the viewport.
type PixelDiff struct {
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	W        float64         `json:"w"`
	H        float64         `json:"h"`
	Severity DiffSeverity    `json:"severity"`
	Reason   PixelDiffReason `json:"reason"`
	Peak     float64         `json:"peak"` // Highest block dissimilarity inside the region
}

// LayoutReport is the layout metric breakdown.
type LayoutReport struct {
	Score     *float64     `json:"score"`
	MatchRate float64      `json:"matchRate"`
	AvgIoU    float64      `json:"avgIou"`
	ExtraRate float64      `json:"extraRate"`
	Diffs     []LayoutDiff `json:"diffs"`
	Note      string       `json:"note,omitempty"`
}

// LayoutDiff is one structural difference between the element sets.
// RefIndex and ImplIndex point into the respective canonical element slices.
type LayoutDiff struct {
	Kind      LayoutDiffKind `json:"kind"`
	RefIndex  *int           `json:"refIndex,omitempty"`
	ImplIndex *int           `json:"implIndex,omitempty"`
	Box       Box            `json:"box"`
	Label     string         `json:"label,omitempty"`
	Severity  DiffSeverity   `json:"severity"`
}

// TypographyReport is the typography metric breakdown.
type TypographyReport struct {
	Score *float64         `json:"score"`
	Pairs int              `json:"pairsEvaluated"`
	Diffs []TypographyDiff `json:"diffs"`
	Note  string           `json:"note,omitempty"`
}

// TypographyDiff lists the font attribute mismatches on one matched text pair.
type TypographyDiff struct {
	RefIndex  int               `json:"refIndex"`
	ImplIndex int               `json:"implIndex"`
	Label     string            `json:"label,omitempty"`
	Issues    []TypographyIssue `json:"issues"`
	Penalty   float64           `json:"penalty"`
}

// ColorReport is the color metric breakdown.
type ColorReport struct {
	Score       *float64       `json:"score"`
	RefPalette  []PaletteColor `json:"refPalette"`
	ImplPalette []PaletteColor `json:"implPalette"`
	Diffs       []ColorDiff    `json:"diffs"`
	Note        string         `json:"note,omitempty"`
}

// PaletteColor is one dominant color with its pixel coverage share.
type PaletteColor struct {
	Hex      string  `json:"hex"`
	Coverage float64 `json:"coverage"`
}

// ColorDiff is one palette-level difference.
type ColorDiff struct {
	Kind      ColorDiffKind `json:"kind"`
	RefColor  string        `json:"refColor,omitempty"`
	ImplColor string        `json:"implColor,omitempty"`
	Distance  float64       `json:"distance"` // Perceptual distance in Lab space
	Coverage  float64       `json:"coverage"` // Coverage share of the reference color
}

// ContentReport is the content metric breakdown.
type ContentReport struct {
	Score     *float64      `json:"score"`
	MatchRate float64       `json:"matchRate"`
	Diffs     []ContentDiff `json:"diffs"`
	Note      string        `json:"note,omitempty"`
}

// ContentDiff is one unmatched text string.
type ContentDiff struct {
	Kind       ContentDiffKind `json:"kind"`
	Text       string          `json:"text"`
	BestMatch  string          `json:"bestMatch,omitempty"`
	Similarity float64         `json:"similarity,omitempty"`
}

// Summary condenses a report for quick scanning.
type Summary struct {
	TopIssues []string `json:"topIssues"`
}

// QualityFinding is one heuristic issue found in a single snapshot.
type QualityFinding struct {
	Type     QualityFindingType `json:"findingType"`
	Severity DiffSeverity       `json:"severity"`
	Message  string             `json:"message"`
	Box      *Box               `json:"box,omitempty"`
}

// QualityReport is the result of single-snapshot quality assessment.
type QualityReport struct {
	Score    float64          `json:"score"`
	Findings []QualityFinding `json:"findings"`
}

// CheckViolation is one per-metric minimum that a comparison missed.
type CheckViolation struct {
	Metric  MetricName `json:"metric"`
	Score   *float64   `json:"score"`
	Minimum float64    `json:"minimum"`
}
