// Package cmd defines the command-line interface for dpc.
package cmd

import (
	"fmt"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(metricsCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsTrendCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("viewport", fmt.Sprintf("%dx%d", contract.DefaultViewportWidth, contract.DefaultViewportHeight), "Viewport as WIDTHxHEIGHT used for capture and normalization")
	rootCmd.PersistentFlags().StringP("metrics", "m", "all", "Comma-separated metrics to run: pixel, layout, typography, color, content or all")
	rootCmd.PersistentFlags().Float64P("threshold", "t", contract.DefaultThreshold, "Minimum aggregate score for a passing comparison")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent metric workers")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout for capture and comparison (e.g. 30s, 2m)")
	rootCmd.PersistentFlags().String("format", string(schema.PrettyOut), "Output format: json or pretty")
	rootCmd.PersistentFlags().String("output", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("artifact-dir", "", "Directory to write capture and heatmap artifacts into")
	rootCmd.PersistentFlags().String("ref-dom", "", "DOM or design sidecar file for the reference resource")
	rootCmd.PersistentFlags().String("impl-dom", "", "DOM or design sidecar file for the implementation resource")
	rootCmd.PersistentFlags().String("ignore-regions", "", "Comma-separated rectangles to ignore (format: 'x,y,wxh;...')")
	rootCmd.PersistentFlags().String("ignore-selectors", "", "Comma-separated CSS selectors to ignore")
	rootCmd.PersistentFlags().String("weights-override", "", "Metric weights for aggregation (format: 'pixel:0.25,layout:0.25,...')")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("min-scores", "", "Per-metric minimum scores for CI/CD gating (format: 'pixel:0.8,layout:0.9')")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of generateCmd to Viper
	generateCmd.Flags().String("stack", contract.DefaultStack, "Target stack for code generation: html or react or vue")
	if err := viper.BindPFlags(generateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding generate flags", err)
	}

	// Bind all flags of runsListCmd to Viper
	runsListCmd.Flags().IntP("limit", "l", contract.DefaultRunsLimit, "Number of runs to display")
	if err := viper.BindPFlags(runsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs list flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
