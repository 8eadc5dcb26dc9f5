package cmd

import (
	"context"

	"github.com/parityci/dpc/core"
	"github.com/parityci/dpc/internal/capture"
	"github.com/parityci/dpc/internal/outwriter"
	"github.com/parityci/dpc/schema"
	"github.com/spf13/cobra"
)

// executeCheck runs the comparison pipeline with per-metric gating.
func executeCheck(ctx context.Context) (*schema.CheckOutput, error) {
	svc := capture.NewService(cfg)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	return core.RunCheck(ctx, cfg, svc, storeManager)
}

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check <ref> <impl>",
	Short: "Enforce parity thresholds for CI/CD pipelines (fails build on violations)",
	Long: `Compare an implementation against its reference design and enforce per-metric
minimum scores on top of the aggregate threshold.

Designed specifically for CI/CD integration - fails with exit code 1 when the
aggregate score misses the threshold or any gated metric scores below its
minimum. A metric that could not be computed also violates its minimum.

Use cases:
- Pull request gates - block merges that drift from the approved design
- Release validation - confirm the build still matches the design system
- Quality enforcement - hold layout and typography to a higher bar than pixels

Examples:
  # Gate on the default aggregate threshold
  dpc check design.png https://staging.example.com

  # Require near-perfect structure regardless of aggregate score
  dpc check design.png build.png --min-scores "layout:0.95,typography:0.9"

  # Tighten everything for a release branch
  dpc check design.png build.png --threshold 0.97 --min-scores "pixel:0.9"

  # Machine-readable verdict for the pipeline log
  dpc check design.png build.png --format json --output verdict.json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: compareSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := executeCheck(rootCtx)
		if err != nil {
			return err
		}
		if err := outwriter.PrintCheckOutput(*out, cfg); err != nil {
			return err
		}
		if !out.Passed || len(out.Violations) > 0 {
			return ErrParityFailed
		}
		return nil
	},
}
