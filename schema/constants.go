package schema

// Custom string types for type safety.
type (
	// MetricName identifies one of the comparison metrics.
	MetricName string

	// SnapshotKind represents the origin of a normalized snapshot.
	SnapshotKind string

	// ResourceKind represents the kind of a raw input resource.
	ResourceKind string

	// ElementType classifies a canonical element.
	ElementType string

	// FontWeightCategory buckets numeric font weights.
	FontWeightCategory string

	// DiffSeverity grades how visible a detected difference is.
	DiffSeverity string

	// PixelDiffReason explains why a pixel diff region was emitted.
	PixelDiffReason string

	// LayoutDiffKind categorizes a layout difference.
	LayoutDiffKind string

	// TypographyIssue tags a font attribute mismatch on a matched pair.
	TypographyIssue string

	// ColorDiffKind categorizes a palette difference.
	ColorDiffKind string

	// ContentDiffKind categorizes a text difference.
	ContentDiffKind string

	// QualityFindingType tags a single-snapshot quality heuristic finding.
	QualityFindingType string

	// OutputMode represents the format of the output.
	OutputMode string

	// RunMode discriminates the top-level JSON output envelope.
	RunMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// Comparison metrics, in report order.
const (
	PixelMetricName      MetricName = "pixel"
	LayoutMetricName     MetricName = "layout"
	TypographyMetricName MetricName = "typography"
	ColorMetricName      MetricName = "color"
	ContentMetricName    MetricName = "content"
)

// Snapshot kinds.
const (
	ImageSnapshot  SnapshotKind = "image"
	PageSnapshot   SnapshotKind = "rendered_page"
	DesignSnapshot SnapshotKind = "design_document"
)

// Resource kinds accepted on the command line.
const (
	ImageResource ResourceKind = "image"
	URLResource   ResourceKind = "url"
	FigmaResource ResourceKind = "figma"
)

// Canonical element types.
const (
	TextElement      ElementType = "text"
	HeadingElement   ElementType = "heading"
	ButtonElement    ElementType = "button"
	LinkElement      ElementType = "link"
	ImageElement     ElementType = "image"
	InputElement     ElementType = "input"
	ContainerElement ElementType = "container"
	OtherElement     ElementType = "other"
)

// Font weight categories, ordered light to black.
const (
	LightWeight   FontWeightCategory = "light"
	RegularWeight FontWeightCategory = "regular"
	BoldWeight    FontWeightCategory = "bold"
	BlackWeight   FontWeightCategory = "black"
)

// Diff severities.
const (
	MinorSeverity    DiffSeverity = "minor"
	ModerateSeverity DiffSeverity = "moderate"
	MajorSeverity    DiffSeverity = "major"
)

// Pixel diff reasons.
const (
	PixelChangeReason    PixelDiffReason = "pixel_change"
	AntiAliasingReason   PixelDiffReason = "anti_aliasing"
	RenderingNoiseReason PixelDiffReason = "rendering_noise"
)

// Layout diff kinds.
const (
	MissingElementDiff LayoutDiffKind = "missing_element"
	ExtraElementDiff   LayoutDiffKind = "extra_element"
	PositionShiftDiff  LayoutDiffKind = "position_shift"
	SizeChangeDiff     LayoutDiffKind = "size_change"
)

// Typography issues.
const (
	FontFamilyMismatch TypographyIssue = "font_family_mismatch"
	FontSizeDiff       TypographyIssue = "font_size_diff"
	FontWeightDiff     TypographyIssue = "font_weight_diff"
	LineHeightDiff     TypographyIssue = "line_height_diff"
)

// Color diff kinds.
const (
	PrimaryColorShift    ColorDiffKind = "primary_color_shift"
	AccentColorShift     ColorDiffKind = "accent_color_shift"
	BackgroundColorShift ColorDiffKind = "background_color_shift"
	PaletteCountMismatch ColorDiffKind = "palette_count_mismatch"
)

// Content diff kinds.
const (
	MissingTextDiff ContentDiffKind = "missing_text"
	ExtraTextDiff   ContentDiffKind = "extra_text"
)

// Quality finding types.
const (
	AlignmentInconsistent QualityFindingType = "alignment_inconsistent"
	SpacingInconsistent   QualityFindingType = "spacing_inconsistent"
	LowContrast           QualityFindingType = "low_contrast"
	MissingHierarchy      QualityFindingType = "missing_hierarchy"
)

// All output modes supported.
const (
	JSONOut   OutputMode = "json"
	PrettyOut OutputMode = "pretty" // default
)

// Output envelope modes.
const (
	CompareMode  RunMode = "compare"
	QualityMode  RunMode = "quality"
	GenerateMode RunMode = "generateCode"
	ErrorMode    RunMode = "error"
)

// All run history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllMetrics returns all comparison metrics in report order.
var AllMetrics = []MetricName{
	PixelMetricName,
	LayoutMetricName,
	TypographyMetricName,
	ColorMetricName,
	ContentMetricName,
}

// PixelOnlyMetrics lists the metrics computable from rasters alone,
// used as the fallback when neither side carries an element tree.
var PixelOnlyMetrics = []MetricName{PixelMetricName, ColorMetricName}

// ValidMetrics lists all valid metric names.
var ValidMetrics = map[MetricName]struct{}{
	PixelMetricName:      {},
	LayoutMetricName:     {},
	TypographyMetricName: {},
	ColorMetricName:      {},
	ContentMetricName:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	JSONOut:   {},
	PrettyOut: {},
}

// ValidDatabaseBackends lists all valid run history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// weightOrder ranks font weight categories for ordered comparisons.
var weightOrder = map[FontWeightCategory]int{
	LightWeight:   0,
	RegularWeight: 1,
	BoldWeight:    2,
	BlackWeight:   3,
}

// WeightCategoryFor buckets a numeric CSS font weight into a category.
func WeightCategoryFor(weight int) FontWeightCategory {
	switch {
	case weight < 400:
		return LightWeight
	case weight < 600:
		return RegularWeight
	case weight < 800:
		return BoldWeight
	default:
		return BlackWeight
	}
}

// WeightCategoryRank returns the ordinal position of a weight category.
func WeightCategoryRank(c FontWeightCategory) int {
	return weightOrder[c]
}

// GetDefaultWeights returns the default metric weight map for combined scoring.
func GetDefaultWeights() map[MetricName]float64 {
	return map[MetricName]float64{
		PixelMetricName:      0.35,
		LayoutMetricName:     0.25,
		TypographyMetricName: 0.15,
		ColorMetricName:      0.15,
		ContentMetricName:    0.10,
	}
}

// MatchWeights tunes element pairing for the layout metric. The weights
// must sum to 1.
type MatchWeights struct {
	Type      float64
	Label     float64
	Proximity float64
}

// DefaultMatchWeights favors proximity slightly over type and label.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{Type: 0.3, Label: 0.3, Proximity: 0.4}
}
