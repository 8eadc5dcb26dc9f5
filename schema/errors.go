package schema

import "errors"

// Error taxonomy. Callers wrap causes with these sentinels so the CLI can
// map any failure chain to an output category and an exit code.
var (
	// ErrConfig marks invalid configuration or flag values.
	ErrConfig = errors.New("config error")

	// ErrInput marks unusable inputs: missing files, undecodable images,
	// malformed sidecar trees.
	ErrInput = errors.New("input error")

	// ErrCapture marks failures while rendering a page or fetching a
	// design document.
	ErrCapture = errors.New("capture error")

	// ErrPartialData marks inputs that lack the data a metric needs.
	// Metrics report it per metric and keep going; it only fails the run
	// when no metric produced a score.
	ErrPartialData = errors.New("partial data")

	// ErrAggregation marks an aggregation with no scores to combine.
	ErrAggregation = errors.New("aggregation error")

	// ErrInternal marks unexpected invariant violations.
	ErrInternal = errors.New("internal error")
)

// ErrorCategory maps an error chain to its output category string.
func ErrorCategory(err error) string {
	switch {
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrInput):
		return "input"
	case errors.Is(err, ErrCapture):
		return "capture"
	case errors.Is(err, ErrPartialData):
		return "partial_data"
	case errors.Is(err, ErrAggregation):
		return "aggregation"
	default:
		return "internal"
	}
}

// remediations suggests a first fix per error category. Specific errors may
// carry sharper guidance in their message; this is the fallback hint.
var remediations = map[string]string{
	"config":       "check the flag values and .dpc.yaml against dpc --help",
	"input":        "verify the resource paths exist and decode as PNG or JPEG",
	"capture":      "verify the URL is reachable and a Chrome or Chromium install is available",
	"partial_data": "provide DOM or design sidecars so structural metrics have elements to score",
	"aggregation":  "request at least one metric computable from the given snapshots",
	"internal":     "re-run with the same inputs and file an issue if it persists",
}

// NewErrorOutput wraps a failure chain in the versioned error envelope.
func NewErrorOutput(err error) ErrorOutput {
	category := ErrorCategory(err)
	return ErrorOutput{
		Version: OutputVersion,
		Mode:    ErrorMode,
		Error: ErrorBody{
			Category:    category,
			Message:     err.Error(),
			Remediation: remediations[category],
		},
	}
}
