package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

func TestWriteQualitySummary(t *testing.T) {
	out := schema.QualityOutput{
		Version:  schema.OutputVersion,
		Mode:     schema.QualityMode,
		Input:    schema.Resource{Kind: schema.ImageResource, Value: "mockups/pricing.png"},
		Viewport: schema.Viewport{Width: 1440, Height: 900},
		QualityReport: schema.QualityReport{
			Score: 0.78,
			Findings: []schema.QualityFinding{
				{
					Type:     schema.AlignmentInconsistent,
					Severity: schema.ModerateSeverity,
					Message:  "3 elements sit 5px off the main left edge column",
				},
				{
					Type:     schema.LowContrast,
					Severity: schema.MajorSeverity,
					Message:  "body text contrast ratio 2.1 is below 4.5",
				},
			},
		},
		DurationMs: 800,
	}
	cfg := &contract.Config{
		Output:    schema.PrettyOut,
		UseColors: false,
		Width:     120,
	}

	var buf bytes.Buffer
	err := writeQualitySummary(&buf, out, cfg)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Quality score: 0.780")
	assert.Contains(t, output, "mockups/pricing.png")
	assert.Contains(t, output, "1440x900")
	assert.Contains(t, output, "alignment_inconsistent")
	assert.Contains(t, output, "Moderate")
	assert.Contains(t, output, "low_contrast")
	assert.Contains(t, output, "Major")
	assert.Contains(t, output, "Assessed 2 findings in 800ms")
}

func TestWriteQualitySummaryNoFindings(t *testing.T) {
	out := schema.QualityOutput{
		Version:  schema.OutputVersion,
		Mode:     schema.QualityMode,
		Input:    schema.Resource{Kind: schema.URLResource, Value: "https://staging.example.com"},
		Viewport: schema.Viewport{Width: 1280, Height: 720},
		QualityReport: schema.QualityReport{
			Score:    1.0,
			Findings: []schema.QualityFinding{},
		},
		DurationMs: 500,
	}
	cfg := &contract.Config{
		Output:    schema.PrettyOut,
		UseColors: false,
		Width:     120,
	}

	var buf bytes.Buffer
	err := writeQualitySummary(&buf, out, cfg)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Quality score: 1.000")
	assert.Contains(t, output, "No findings")
	assert.Contains(t, output, "Assessed 0 findings")
}

func TestPrintQualityOutputJSON(t *testing.T) {
	out := schema.QualityOutput{
		Version:  schema.OutputVersion,
		Mode:     schema.QualityMode,
		Input:    schema.Resource{Kind: schema.ImageResource, Value: "mockups/pricing.png"},
		Viewport: schema.Viewport{Width: 1440, Height: 900},
		QualityReport: schema.QualityReport{
			Score: 0.78,
			Findings: []schema.QualityFinding{
				{
					Type:     schema.SpacingInconsistent,
					Severity: schema.MinorSeverity,
					Message:  "vertical gaps vary between 12px and 31px",
				},
			},
		},
		DurationMs: 800,
	}
	tmpFile := filepath.Join(t.TempDir(), "quality.json")
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: tmpFile,
	}

	err := PrintQualityOutput(out, cfg)
	require.NoError(t, err)

	raw, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "quality", decoded["mode"])
	assert.Equal(t, 0.78, decoded["score"])

	findings, ok := decoded["findings"].([]any)
	require.True(t, ok)
	require.Len(t, findings, 1)

	finding := findings[0].(map[string]any)
	assert.Equal(t, "spacing_inconsistent", finding["findingType"])
	assert.Equal(t, "minor", finding["severity"])
}
