package schema

// MetricInfo describes one comparison metric for display purposes.
// Weight starts at the default and may be replaced by a configured override.
type MetricInfo struct {
	Name    MetricName `json:"name"`
	Purpose string     `json:"purpose"`
	Factors []string   `json:"factors"`
	Weight  float64    `json:"weight"`
	Formula string     `json:"formula"`
}

// MetricsRenderModel contains all processed data needed for displaying metric definitions.
type MetricsRenderModel struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Metrics     []MetricInfo `json:"metrics"`
}

// GetMetricsRenderModel returns the metric definitions shown by the metrics command.
func GetMetricsRenderModel() MetricsRenderModel {
	weights := GetDefaultWeights()
	return MetricsRenderModel{
		Title:       "Comparison Metrics",
		Description: "Each metric scores one aspect of visual parity in [0, 1]. The combined score is the weighted mean of all metrics that produced a score.",
		Metrics: []MetricInfo{
			{
				Name:    PixelMetricName,
				Purpose: "Perceptual raster similarity",
				Factors: []string{"structural similarity", "diff region count", "diff severity"},
				Weight:  weights[PixelMetricName],
				Formula: "mean block SSIM, regions from thresholded dissimilarity",
			},
			{
				Name:    LayoutMetricName,
				Purpose: "Structural agreement of element placement",
				Factors: []string{"match rate", "mean IoU", "extra elements"},
				Weight:  weights[LayoutMetricName],
				Formula: "clamp(0.5*matchRate + 0.5*avgIoU - 0.1*extraRate)",
			},
			{
				Name:    TypographyMetricName,
				Purpose: "Font fidelity on matched text",
				Factors: []string{"family", "size", "weight", "line height"},
				Weight:  weights[TypographyMetricName],
				Formula: "1 - mean pair penalty",
			},
			{
				Name:    ColorMetricName,
				Purpose: "Palette agreement",
				Factors: []string{"dominant colors", "coverage", "Lab distance"},
				Weight:  weights[ColorMetricName],
				Formula: "1 - weighted mean distance / scale",
			},
			{
				Name:    ContentMetricName,
				Purpose: "Text content agreement",
				Factors: []string{"match rate", "extra text"},
				Weight:  weights[ContentMetricName],
				Formula: "matchRate - 0.1*extraRate",
			},
		},
	}
}
