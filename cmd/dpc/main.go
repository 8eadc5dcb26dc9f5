// main holds the entry logic for the dpc CLI.
package main

import (
	"errors"
	"os"

	"github.com/parityci/dpc/cmd"
	"github.com/parityci/dpc/internal/outwriter"
	"github.com/parityci/dpc/internal/runstore"
	"github.com/parityci/dpc/schema"
)

// main is the entry point for the dpc CLI.
// It wires the run history manager into the command tree, executes the
// requested command, and maps the result onto the documented exit codes.
func main() {
	os.Exit(run())
}

// run exists so deferred cleanup fires before the process exits.
func run() int {
	defer func() { _ = cmd.StopProfiling() }()
	defer runstore.CloseStore()

	cmd.SetStoreManager(runstore.Manager)

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, cmd.ErrParityFailed) {
			return cmd.ExitFail
		}
		_ = outwriter.PrintErrorOutput(schema.NewErrorOutput(err))
		return cmd.ExitFatal
	}
	return cmd.ExitPass
}
