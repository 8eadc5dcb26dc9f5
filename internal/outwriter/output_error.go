package outwriter

import (
	"os"

	"github.com/parityci/dpc/schema"
)

// PrintErrorOutput writes the error envelope to stdout as JSON. Errors bypass
// the format dispatcher so CI consumers can always parse the failure payload.
func PrintErrorOutput(out schema.ErrorOutput) error {
	return writeJSON(os.Stdout, out)
}
