package cmd

import (
	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/outwriter"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of all comparison metrics.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display definitions and weights for all comparison metrics",
	Long: `Show the definitions, scoring factors, and aggregation weights for all
comparison metrics.

Provides complete transparency into how parity is scored, including:
- What each metric measures
- The factors that feed its score
- Its weight in the aggregate verdict
- Custom weights if configured via .dpc.yaml or --weights-override

No capture or comparison is performed - this is purely informational.

Use this to:
- Understand what each metric rewards and penalizes
- Explain a verdict to your team
- Validate custom weight configurations

Examples:
  # Show default metric definitions
  dpc metrics

  # View with custom weights from config file
  dpc metrics --config .dpc.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.PrintMetricsDefinitions(cfg.CustomWeights, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
