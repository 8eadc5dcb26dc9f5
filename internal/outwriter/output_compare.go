package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// PrintCompareOutput outputs a comparison envelope, dispatching based on the output format configured.
func PrintCompareOutput(out schema.CompareOutput, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printCompareJSON(out, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	default:
		// Default to human-readable summary
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteCompareSummary(w, out, cfg)
		}, "Wrote comparison summary")
	}
	return nil
}

// printCompareJSON handles opening the file and calling the JSON writer.
func printCompareJSON(out schema.CompareOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, out)
	}, "Wrote JSON comparison report")
}

// WriteCompareSummary writes the human-readable comparison summary. The check
// command reuses it before appending its violations section.
func WriteCompareSummary(w io.Writer, out schema.CompareOutput, cfg *contract.Config) error {
	// --- 1. Verdict header ---
	if _, err := fmt.Fprintf(w, "%s Score: %.3f (threshold %.3f)\n", verdictLabel(out.Passed, cfg), out.Score, out.Threshold); err != nil {
		return err
	}
	maxWidth := GetMaxTableValueWidth(cfg)
	if _, err := fmt.Fprintf(w, "Ref:  %s (%s)\n", contract.TruncatePath(out.Ref.Value, maxWidth), out.Ref.Kind); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Impl: %s (%s)\n", contract.TruncatePath(out.Impl.Value, maxWidth), out.Impl.Kind); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Viewport: %s\n", out.Viewport.String()); err != nil {
		return err
	}

	// --- 2. Per-metric breakdown table ---
	if err := writeMetricTable(w, out.Metrics, cfg); err != nil {
		return err
	}

	// --- 3. Summary lines ---
	if len(out.Summary.TopIssues) > 0 {
		if _, err := fmt.Fprintf(w, "Top issues:\n"); err != nil {
			return err
		}
		for _, issue := range out.Summary.TopIssues {
			if _, err := fmt.Fprintf(w, "  - %s\n", issue); err != nil {
				return err
			}
		}
	}
	if out.Artifacts != nil {
		if _, err := fmt.Fprintf(w, "Artifacts: %s\n", out.Artifacts.Dir); err != nil {
			return err
		}
	}
	duration := time.Duration(out.DurationMs) * time.Millisecond
	if _, err := fmt.Fprintf(w, "Comparison completed in %v with %d workers. Store backend: %s\n", duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeMetricTable renders the per-metric score table.
func writeMetricTable(w io.Writer, metrics schema.MetricScores, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)

	// --- 1. Define Headers ---
	headers := []string{"Metric", "Score", "Diffs", "Note"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	maxWidth := GetMaxTableValueWidth(cfg)
	var data [][]string
	for _, r := range buildMetricRows(metrics) {
		row := []string{
			string(r.Name),                           // Metric
			contract.FormatScore(r.Score),            // Score, n/a when the metric could not run
			strconv.Itoa(r.Diffs),                    // Diffs
			contract.TruncateLabel(r.Note, maxWidth), // Note
		}
		data = append(data, row)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
