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

// PrintTrend outputs the score trend for one resource pair, dispatching based on the output format configured.
func PrintTrend(trend schema.TrendResult, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printTrendJSON(trend, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendTable(w, trend, cfg)
		}, "Wrote trend")
	}
	return nil
}

// printTrendJSON handles opening the file and calling the JSON writer.
func printTrendJSON(trend schema.TrendResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, trend)
	}, "Wrote JSON trend")
}

// writeTrendTable prints the score trend, oldest run first.
func writeTrendTable(w io.Writer, trend schema.TrendResult, cfg *contract.Config) error {
	maxWidth := GetMaxTableValueWidth(cfg)
	if _, err := fmt.Fprintf(w, "Trend: %s vs %s\n",
		contract.TruncatePath(trend.RefResource, maxWidth),
		contract.TruncatePath(trend.ImplResource, maxWidth)); err != nil {
		return err
	}
	if len(trend.Points) == 0 {
		_, err := fmt.Fprintf(w, "No completed runs for this pair\n")
		return err
	}

	table := tablewriter.NewWriter(w)

	// --- 1. Define Headers ---
	table.Header([]string{"Run", "Time", "Score", "Verdict"})

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	var data [][]string
	for _, p := range trend.Points {
		row := []string{
			strconv.FormatInt(p.RunID, 10),
			p.Time.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.3f", p.Score),
			verdictLabel(p.Passed, cfg),
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
	_, err := fmt.Fprintf(w, "Delta over %d runs: %+.3f\n", len(trend.Points), trend.Delta)
	return err
}
