package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// PrintQualityOutput outputs a quality envelope, dispatching based on the output format configured.
func PrintQualityOutput(out schema.QualityOutput, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printQualityJSON(out, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	default:
		// Default to human-readable summary
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeQualitySummary(w, out, cfg)
		}, "Wrote quality summary")
	}
	return nil
}

// printQualityJSON handles opening the file and calling the JSON writer.
func printQualityJSON(out schema.QualityOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, out)
	}, "Wrote JSON quality report")
}

// writeQualitySummary writes the human-readable quality findings.
func writeQualitySummary(w io.Writer, out schema.QualityOutput, cfg *contract.Config) error {
	// --- 1. Score header ---
	maxWidth := GetMaxTableValueWidth(cfg)
	if _, err := fmt.Fprintf(w, "Quality score: %.3f\n", out.Score); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Input: %s (%s)\n", contract.TruncatePath(out.Input.Value, maxWidth), out.Input.Kind); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Viewport: %s\n", out.Viewport.String()); err != nil {
		return err
	}

	// --- 2. Findings table ---
	if len(out.Findings) == 0 {
		if _, err := fmt.Fprintf(w, "No findings\n"); err != nil {
			return err
		}
	} else {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Finding", "Severity", "Message"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, f := range out.Findings {
			row := []string{
				string(f.Type),
				severityLabel(f.Severity, cfg),
				contract.TruncateLabel(f.Message, maxWidth),
			}
			data = append(data, row)
		}

		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	// --- 3. Summary line ---
	duration := time.Duration(out.DurationMs) * time.Millisecond
	_, err := fmt.Fprintf(w, "Assessed %d findings in %v\n", len(out.Findings), duration)
	return err
}
