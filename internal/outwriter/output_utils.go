package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// verdictLabel returns the pass/fail label, colored when the config asks for it.
func verdictLabel(passed bool, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorVerdict(passed)
	}
	return contract.GetPlainVerdict(passed)
}

// severityLabel returns the severity label, colored when the config asks for it.
func severityLabel(severity schema.DiffSeverity, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorSeverity(severity)
	}
	return contract.GetPlainSeverity(severity)
}

// metricRow is one line of the per-metric breakdown table.
type metricRow struct {
	Name  schema.MetricName
	Score *float64
	Diffs int
	Note  string
}

// buildMetricRows flattens the metric breakdown into table rows, preserving
// report order. Absent metrics produce no row.
func buildMetricRows(m schema.MetricScores) []metricRow {
	var rows []metricRow
	if m.Pixel != nil {
		rows = append(rows, metricRow{
			Name:  schema.PixelMetricName,
			Score: m.Pixel.Score,
			Diffs: len(m.Pixel.DiffRegions),
			Note:  m.Pixel.Note,
		})
	}
	if m.Layout != nil {
		rows = append(rows, metricRow{
			Name:  schema.LayoutMetricName,
			Score: m.Layout.Score,
			Diffs: len(m.Layout.Diffs),
			Note:  m.Layout.Note,
		})
	}
	if m.Typography != nil {
		rows = append(rows, metricRow{
			Name:  schema.TypographyMetricName,
			Score: m.Typography.Score,
			Diffs: len(m.Typography.Diffs),
			Note:  m.Typography.Note,
		})
	}
	if m.Color != nil {
		rows = append(rows, metricRow{
			Name:  schema.ColorMetricName,
			Score: m.Color.Score,
			Diffs: len(m.Color.Diffs),
			Note:  m.Color.Note,
		})
	}
	if m.Content != nil {
		rows = append(rows, metricRow{
			Name:  schema.ContentMetricName,
			Score: m.Content.Score,
			Diffs: len(m.Content.Diffs),
			Note:  m.Content.Note,
		})
	}
	return rows
}
