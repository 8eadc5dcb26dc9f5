package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/parityci/dpc/internal/contract"
)

// GetMaxTableValueWidth calculates the maximum width for resource values and
// element labels in table output based on terminal width.
func GetMaxTableValueWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting
	baseWidth := 30 // Metric/Kind + Score + Severity with borders/padding

	// Reserve generous space for table borders, separators, and padding
	baseWidth += 20

	// Calculate available space for the value column
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable value width
		return 15
	}
	if available > 70 {
		// Maximum value width to prevent overly long cells
		return 70
	}
	return available
}
