package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// PrintMetricsDefinitions outputs the metric definitions in effect, dispatching
// based on the output format configured.
func PrintMetricsDefinitions(customWeights map[schema.MetricName]float64, cfg *contract.Config) error {
	// Build the complete render model with custom weights applied
	renderModel := schema.GetMetricsRenderModel()
	for i, m := range renderModel.Metrics {
		if custom, ok := customWeights[m.Name]; ok {
			renderModel.Metrics[i].Weight = custom
		}
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON metric definitions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, renderModel, customWeights)
		}, "Wrote metric definitions")
	}
}

// writeMetricsText displays metric definitions in human-readable text format.
func writeMetricsText(w io.Writer, renderModel schema.MetricsRenderModel, customWeights map[schema.MetricName]float64) error {
	if _, err := fmt.Fprintf(w, "🎯 %s\n", renderModel.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "==================\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", renderModel.Description); err != nil {
		return err
	}

	for _, m := range renderModel.Metrics {
		if _, err := fmt.Fprintf(w, "%s: %s\n", strings.ToUpper(string(m.Name)), m.Purpose); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Factors: %s\n", strings.Join(m.Factors, ", ")); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Formula: %s\n", m.Formula); err != nil {
			return err
		}
		weightLine := fmt.Sprintf("   Weight: %.2f", m.Weight)
		if _, ok := customWeights[m.Name]; ok {
			weightLine += " (custom)"
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", weightLine); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Metrics that cannot produce a score give their weight back to the rest.\n")
	return err
}
