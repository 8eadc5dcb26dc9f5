package cmd

import (
	"context"

	"github.com/parityci/dpc/core"
	"github.com/parityci/dpc/internal/capture"
	"github.com/parityci/dpc/internal/outwriter"
	"github.com/parityci/dpc/schema"
	"github.com/spf13/cobra"
)

// executeQuality captures the input and runs the standalone heuristics.
func executeQuality(ctx context.Context) (*schema.QualityOutput, error) {
	svc := capture.NewService(cfg)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	return core.RunQuality(ctx, cfg, svc)
}

// qualityCmd assesses a single design without a reference.
var qualityCmd = &cobra.Command{
	Use:   "quality <input>",
	Short: "Assess a single design against visual quality heuristics",
	Long: `Assess one image, URL, or design document on its own, with no reference to
compare against. The input is scored against built-in heuristics for edge
alignment, vertical rhythm, text contrast, and type hierarchy, and each
violation is reported as a finding with a severity and the elements involved.

Findings are advisory. The command exits 0 whenever the assessment completes,
regardless of score.

Examples:
  # Audit a design export before handoff
  dpc quality design.png

  # Audit a live page with its DOM for sharper element detection
  dpc quality https://staging.example.com --viewport 1440x900

  # Feed the findings to another tool
  dpc quality design.png --format json --output findings.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: inputSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := executeQuality(rootCtx)
		if err != nil {
			return err
		}
		return outwriter.PrintQualityOutput(*out, cfg)
	},
}
