package runstore

import (
	"fmt"

	"github.com/parityci/dpc/schema"
)

// PrintStoreStatus prints run history status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		if status.LastRunID != nil {
			fmt.Printf("Last Run ID: %d\n", *status.LastRunID)
		}
		if status.LastRunTime != nil {
			fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		}
		if status.OldestRun != nil {
			fmt.Printf("Oldest Run: %s\n", status.OldestRun.Format("2006-01-02 15:04:05"))
		}
	}
	fmt.Println("Table Sizes:")
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d rows\n", table, size)
	}
}
