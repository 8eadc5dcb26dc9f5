package runstore

import (
	"errors"
	"fmt"

	"github.com/parityci/dpc/internal/parquet"
)

// ExecuteRunExport performs the actual export of run history to Parquet files.
func ExecuteRunExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output is required for export command")
	}

	// Get the run history store
	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run history store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total comparison runs: %d\n", status.TotalRuns)
	fmt.Printf("Total metric score records: %d\n", status.TableSizes[metricScoresTable])

	// Retrieve all comparison runs
	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve comparison runs: %w", err)
	}

	// Retrieve all metric scores
	metricScores, err := store.ListMetricScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve metric scores: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertComparisonRunRecords(runs)
	parquetScores := parquet.ConvertMetricScoreRecords(metricScores)

	// Write comparison runs to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteComparisonRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write comparison runs: %w", err)
	}
	fmt.Printf("Exported %d comparison runs to: %s\n", len(parquetRuns), runsFile)

	// Write metric scores to Parquet
	scoresFile := outputFile + ".metric_scores.parquet"
	if err := parquet.WriteMetricScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write metric scores: %w", err)
	}
	fmt.Printf("Exported %d metric score records to: %s\n", len(parquetScores), scoresFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
