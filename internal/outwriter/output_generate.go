package outwriter

import (
	"fmt"
	"io"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// PrintGenerateOutput outputs a generate envelope, dispatching based on the output format configured.
func PrintGenerateOutput(out schema.GenerateOutput, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printGenerateJSON(out, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	default:
		// Default to human-readable summary
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGenerateSummary(w, out)
		}, "Wrote generated code")
	}
	return nil
}

// printGenerateJSON handles opening the file and calling the JSON writer.
func printGenerateJSON(out schema.GenerateOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, out)
	}, "Wrote JSON generate report")
}

// writeGenerateSummary writes the generated code, or the path it was saved to.
func writeGenerateSummary(w io.Writer, out schema.GenerateOutput) error {
	if _, err := fmt.Fprintf(w, "Generated %s from %s (%s)\n", out.Stack, out.Input.Value, out.Input.Kind); err != nil {
		return err
	}
	if out.OutputPath != "" {
		_, err := fmt.Fprintf(w, "Saved to %s\n", out.OutputPath)
		return err
	}
	_, err := fmt.Fprint(w, out.Code)
	return err
}
