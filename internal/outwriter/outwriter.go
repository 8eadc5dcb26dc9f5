// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteCompare prints a comparison envelope using the configured output format.
func (ow *OutWriter) WriteCompare(out schema.CompareOutput, cfg *contract.Config) error {
	return PrintCompareOutput(out, cfg)
}

// WriteCheck prints a check envelope using the configured output format.
func (ow *OutWriter) WriteCheck(out schema.CheckOutput, cfg *contract.Config) error {
	return PrintCheckOutput(out, cfg)
}

// WriteQuality prints a quality envelope using the configured output format.
func (ow *OutWriter) WriteQuality(out schema.QualityOutput, cfg *contract.Config) error {
	return PrintQualityOutput(out, cfg)
}

// WriteGenerate prints a generate envelope using the configured output format.
func (ow *OutWriter) WriteGenerate(out schema.GenerateOutput, cfg *contract.Config) error {
	return PrintGenerateOutput(out, cfg)
}

// WriteRunList prints recorded comparison runs using the configured output format.
func (ow *OutWriter) WriteRunList(runs []schema.ComparisonRunRecord, cfg *contract.Config) error {
	return PrintRunList(runs, cfg)
}

// WriteError prints an error envelope. The envelope always goes to stdout as
// JSON so machine consumers receive a parseable payload on every exit path.
func (ow *OutWriter) WriteError(out schema.ErrorOutput) error {
	return PrintErrorOutput(out)
}
