package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/outwriter"
	"github.com/parityci/dpc/internal/runstore"
	"github.com/parityci/dpc/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run history operations.
// This is used by commands that need store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(strings.ToLower(backendStr))
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the store with the loaded config
	if err := runstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	// Get output-related config values (used by list and export)
	cfg.OutputFile = viper.GetString("output")
	cfg.Output = schema.OutputMode(strings.ToLower(viper.GetString("format")))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("%w: invalid format '%s'. must be json, pretty", schema.ErrConfig, viper.GetString("format"))
	}
	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("%w: invalid --color value: %v", schema.ErrConfig, err)
	}
	cfg.UseColors = colors
	cfg.Width = viper.GetInt("width")

	limit := viper.GetInt("limit")
	if limit < 0 || limit > contract.MaxRunsLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d (received %d)", schema.ErrConfig, contract.MaxRunsLimit, limit)
	}
	cfg.RunsLimit = limit

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(strings.ToLower(backendStr))
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of the
// full sharedSetup used by comparison commands. This avoids resource validation
// and complex config processing for simple history operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded comparison runs and exports",
	Long: `Manage the run history that dpc records for every comparison.

When enabled, dpc tracks every compare and check invocation, storing:
- Run metadata (timestamp, resources, viewport, configuration)
- The aggregate score and pass/fail verdict
- Per-metric scores and diff counts

This enables trend tracking across builds and data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show recent comparison runs
  trend   - Show the score trend for one resource pair
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Review the latest comparisons
  dpc runs list

  # Export for analysis in pandas/DuckDB
  dpc runs export --output dpc-history`,
}

// runsListCmd shows recent comparison runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display recent comparison runs, newest first",
	Long: `List recorded comparison runs with their resources, viewport, score, and
verdict.

Use this to:
- Track how parity evolves across builds of the same page
- Spot regressions after dependency or style changes
- Find the run that first dipped below the threshold

Examples:
  # Show the most recent runs
  dpc runs list

  # Show more history as JSON
  dpc runs list --limit 100 --format json`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := runstore.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Cannot list runs", errors.New("run history is disabled"))
		}
		runs, err := store.ListRuns(cfg.RunsLimit)
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if err := outwriter.PrintRunList(runs, cfg); err != nil {
			contract.LogFatal("Failed to print runs", err)
		}
	},
}

// runsTrendCmd shows the score trend for one resource pair.
var runsTrendCmd = &cobra.Command{
	Use:   "trend <ref> <impl>",
	Short: "Display the score trend for one resource pair",
	Long: `Show how the comparison score for a ref/impl resource pair has evolved
across recorded runs, oldest first.

The pair must match the resources exactly as they were passed to compare.

Examples:
  # Track a staging page against its design
  dpc runs trend design.png https://staging.example.com

  # Trend as JSON for dashboards
  dpc runs trend design.png build.png --format json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		store := runstore.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Cannot compute trend", errors.New("run history is disabled"))
		}
		records, err := store.ListRuns(0)
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		trend := schema.BuildTrend(records, args[0], args[1])
		if err := outwriter.PrintTrend(trend, cfg); err != nil {
			contract.LogFatal("Failed to print trend", err)
		}
	},
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about the run history store.

Displays:
- Backend type and connection status
- Total number of comparison runs stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run history status
  dpc runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := runstore.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Cannot get run history status", errors.New("run history is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run history status", err)
		}
		runstore.PrintStoreStatus(status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet format for use with analytics tools.

Exports two datasets:
- Comparison runs - metadata and verdict for each run
- Metric scores - per-metric scores and diff counts per run

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output parameter. The files are written next to each other as
<output>.runs.parquet and <output>.metric_scores.parquet.

Examples:
  # Export all data
  dpc runs export --output dpc-history

  # Use with DuckDB for analysis
  dpc runs export --output history
  duckdb -c "SELECT * FROM read_parquet('history.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExecuteRunExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded comparison runs",
	Long: `Delete all stored comparison runs and their metric scores.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  dpc runs export --output backup
  dpc runs clear

  # Clear and start fresh
  dpc runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// SQLite stores its path in the connection string when overridden.
		dbPath := cfg.StoreDBConnect
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		if err := runstore.ClearStore(cfg.StoreBackend, dbPath, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run history store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

Migrations allow:
- Upgrading to new schema versions when dpc is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  dpc runs migrate

  # Migrate to specific version
  dpc runs migrate --target-version 2

  # Rollback to previous version
  dpc runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
