package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/parityci/dpc/schema"
)

// Verdict label constants.
const (
	PassValue = "PASS" // Threshold met
	FailValue = "FAIL" // Threshold missed
)

// Severity label constants.
const (
	MajorValue    = "Major"    // Major value
	ModerateValue = "Moderate" // Moderate value
	MinorValue    = "Minor"    // Minor value
)

// Color variables for console output.
var (
	PassColor     = color.New(color.FgGreen, color.Bold) // passColor represents a met threshold.
	FailColor     = color.New(color.FgRed, color.Bold)   // failColor represents a missed threshold.
	MajorColor    = color.New(color.FgRed, color.Bold)   // majorColor represents standard danger.
	ModerateColor = color.New(color.FgYellow)            // moderateColor represents standard caution, not bold.
	MinorColor    = color.New(color.FgCyan)              // minorColor represents informational / low-priority signal.
)

// GetPlainSeverity returns a plain text label for a diff severity.
// This is the core logic used for JSON and table printing.
func GetPlainSeverity(severity schema.DiffSeverity) string {
	switch severity {
	case schema.MajorSeverity:
		return MajorValue
	case schema.ModerateSeverity:
		return ModerateValue
	default:
		return MinorValue
	}
}

// GetColorSeverity returns a colored severity label for console output (table).
// It uses GetPlainSeverity to determine the string, and then applies the appropriate color.
func GetColorSeverity(severity schema.DiffSeverity) string {
	text := GetPlainSeverity(severity)

	switch text {
	case MajorValue:
		return MajorColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default: // "Minor"
		return MinorColor.Sprint(text)
	}
}

// GetPlainVerdict returns a plain text pass/fail label for a comparison outcome.
func GetPlainVerdict(passed bool) string {
	if passed {
		return PassValue
	}
	return FailValue
}

// GetColorVerdict returns a colored pass/fail label for console output.
func GetColorVerdict(passed bool) string {
	if passed {
		return PassColor.Sprint(PassValue)
	}
	return FailColor.Sprint(FailValue)
}

// FormatScore renders an optional score with three decimals.
// A nil score means the metric could not be computed from the available data.
func FormatScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *score)
}

// SelectOutputFile returns the appropriate file handle for report output, based
// on the provided file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for run history storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".dpc_runs.db"
	}
	return filepath.Join(homeDir, ".dpc_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// TruncateLabel truncates an element label to a maximum width with ellipsis suffix.
// Labels read left to right, so unlike TruncatePath the tail is dropped.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
