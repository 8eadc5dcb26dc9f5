package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/parityci/dpc/core"
	"github.com/parityci/dpc/internal/capture"
	"github.com/parityci/dpc/internal/outwriter"
	"github.com/parityci/dpc/schema"
	"github.com/spf13/cobra"
)

// executeGenerate captures the input and emits scaffold code for it.
func executeGenerate(ctx context.Context) (*schema.GenerateOutput, error) {
	svc := capture.NewService(cfg)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	return core.RunGenerate(ctx, cfg, svc)
}

// generateCmd scaffolds markup from a design input.
var generateCmd = &cobra.Command{
	Use:   "generate <input>",
	Short: "Generate starter markup from a design input",
	Long: `Generate scaffold code that reproduces the detected elements of an image, URL,
or design document. The scaffold uses absolute positioning and is meant as a
starting point for a hand-off, not production markup.

Supported stacks: html (default), react, vue.

Examples:
  # Emit HTML for a design export
  dpc generate design.png

  # Emit a React component instead
  dpc generate design.png --stack react

  # Write the code to a file and the envelope to stdout
  dpc generate design.png --output scaffold.html

  # Scaffold from a live page
  dpc generate https://example.com --stack vue`,
	Args:    cobra.ExactArgs(1),
	PreRunE: inputSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := executeGenerate(rootCtx)
		if err != nil {
			return err
		}

		printCfg := cfg
		if cfg.OutputFile != "" {
			// --output receives the raw code; the envelope still goes to stdout.
			if err := os.WriteFile(cfg.OutputFile, []byte(out.Code), 0o644); err != nil {
				return fmt.Errorf("failed to write generated code: %w", err)
			}
			out.OutputPath = cfg.OutputFile
			out.Code = ""
			printCfg = cfg.Clone()
			printCfg.OutputFile = ""
		}
		return outwriter.PrintGenerateOutput(*out, printCfg)
	},
}
