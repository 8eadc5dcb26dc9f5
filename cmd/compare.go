package cmd

import (
	"context"

	"github.com/parityci/dpc/core"
	"github.com/parityci/dpc/internal/capture"
	"github.com/parityci/dpc/internal/outwriter"
	"github.com/parityci/dpc/schema"
	"github.com/spf13/cobra"
)

// executeCompare captures both resources and runs the comparison pipeline.
func executeCompare(ctx context.Context) (*schema.CompareOutput, error) {
	svc := capture.NewService(cfg)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	return core.RunCompare(ctx, cfg, svc, storeManager)
}

// compareCmd scores an implementation against its reference design.
var compareCmd = &cobra.Command{
	Use:   "compare <ref> <impl>",
	Short: "Compare an implementation against a reference design",
	Long: `Compare a rendered implementation against its reference design and report a
similarity score per metric plus a weighted aggregate verdict.

Both resources can be image files, URLs, or design documents. URLs are rendered
in headless Chrome at the configured viewport before scoring.

Ideal for:
- Design handoff reviews - quantify how close the build is to the mock
- Visual regression checks - compare a staging URL against the approved design
- Pixel-perfect audits - heatmaps show exactly where the raster diverges

Examples:
  # Compare two screenshots
  dpc compare design.png build.png

  # Compare a live page against a design export
  dpc compare design.png https://staging.example.com --viewport 1440x900

  # Restrict scoring to structural metrics and keep artifacts
  dpc compare design.png build.png --metrics layout,typography --artifact-dir ./out

  # Emit machine-readable output for CI
  dpc compare design.png build.png --format json --threshold 0.95

The command exits 0 when the aggregate score meets the threshold and 1 when it
does not.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: compareSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := executeCompare(rootCtx)
		if err != nil {
			return err
		}
		if err := outwriter.PrintCompareOutput(*out, cfg); err != nil {
			return err
		}
		if !out.Passed {
			return ErrParityFailed
		}
		return nil
	},
}
