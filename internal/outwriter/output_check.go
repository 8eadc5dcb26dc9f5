package outwriter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// PrintCheckOutput outputs a check envelope, dispatching based on the output format configured.
func PrintCheckOutput(out schema.CheckOutput, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printCheckJSON(out, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	default:
		// Default to human-readable summary
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckSummary(w, out, cfg)
		}, "Wrote check summary")
	}
	return nil
}

// printCheckJSON handles opening the file and calling the JSON writer.
func printCheckJSON(out schema.CheckOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, out)
	}, "Wrote JSON check report")
}

// writeCheckSummary writes the comparison summary followed by the per-metric
// minimum violations.
func writeCheckSummary(w io.Writer, out schema.CheckOutput, cfg *contract.Config) error {
	if err := WriteCompareSummary(w, out.CompareOutput, cfg); err != nil {
		return err
	}

	if len(out.Violations) == 0 {
		_, err := fmt.Fprintf(w, "All metric minimums met\n")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Score", "Minimum"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, v := range out.Violations {
		row := []string{
			string(v.Metric),
			contract.FormatScore(v.Score),
			fmt.Sprintf("%.3f", v.Minimum),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Minimum violations: %d\n", len(out.Violations))
	return err
}
