package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// PrintRunList outputs recorded comparison runs, dispatching based on the output format configured.
func PrintRunList(runs []schema.ComparisonRunRecord, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printRunListJSON(runs, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunListTable(w, runs, cfg)
		}, "Wrote run list")
	}
	return nil
}

// printRunListJSON handles opening the file and calling the JSON writer.
func printRunListJSON(runs []schema.ComparisonRunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, runs)
	}, "Wrote JSON run list")
}

// writeRunListTable prints recorded runs in a table, newest first.
func writeRunListTable(w io.Writer, runs []schema.ComparisonRunRecord, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)

	// --- 1. Define Headers ---
	headers := []string{"Run", "Started", "Duration", "Ref", "Impl", "Viewport", "Score", "Verdict"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	maxWidth := GetMaxTableValueWidth(cfg)
	var data [][]string
	for _, r := range runs {
		// An in-flight run has no end time yet
		durationStr := "-"
		if r.RunDurationMs != nil {
			durationStr = fmt.Sprintf("%dms", *r.RunDurationMs)
		}
		verdictStr := "n/a"
		if r.Passed != nil {
			verdictStr = verdictLabel(*r.Passed, cfg)
		}
		row := []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Format("2006-01-02 15:04:05"),
			durationStr,
			contract.TruncatePath(r.RefResource, maxWidth),
			contract.TruncatePath(r.ImplResource, maxWidth),
			fmt.Sprintf("%dx%d", r.ViewportW, r.ViewportH),
			contract.FormatScore(r.Score),
			verdictStr,
		}
		data = append(data, row)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d runs\n", len(runs))
	return err
}
