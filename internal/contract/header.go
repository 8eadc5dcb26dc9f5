package contract

import (
	"fmt"
	"os"
)

// The headers below print to stderr so stdout stays parseable in JSON mode.

// LogCompareHeader prints a concise, 2-line header before a comparison.
func LogCompareHeader(cfg *Config) {
	fmt.Fprintf(os.Stderr, "🔎 Comparing: %s ↔ %s\n",
		TruncatePath(cfg.RefResource.Value, 60), TruncatePath(cfg.ImplResource.Value, 60))
	fmt.Fprintf(os.Stderr, "📐 Viewport: %s (%d metrics, threshold %.2f)\n",
		cfg.Viewport, len(cfg.Metrics), cfg.Threshold)
}

// LogQualityHeader prints the header for a single-input assessment.
func LogQualityHeader(cfg *Config) {
	fmt.Fprintf(os.Stderr, "🔎 Assessing: %s\n", TruncatePath(cfg.InputResource.Value, 60))
	fmt.Fprintf(os.Stderr, "📐 Viewport: %s\n", cfg.Viewport)
}

// LogGenerateHeader prints the header before code generation.
func LogGenerateHeader(cfg *Config) {
	stack := cfg.Stack
	if stack == "" {
		stack = DefaultStack
	}
	fmt.Fprintf(os.Stderr, "🔎 Generating %s from: %s\n",
		stack, TruncatePath(cfg.InputResource.Value, 60))
}
