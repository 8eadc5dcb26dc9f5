package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parityci/dpc/schema"
)

func TestGetPlainSeverity(t *testing.T) {
	tests := []struct {
		name     string
		input    schema.DiffSeverity
		expected string
	}{
		{
			name:     "minor",
			input:    schema.MinorSeverity,
			expected: MinorValue,
		},
		{
			name:     "moderate",
			input:    schema.ModerateSeverity,
			expected: ModerateValue,
		},
		{
			name:     "major",
			input:    schema.MajorSeverity,
			expected: MajorValue,
		},
		{
			name:     "unknown falls back to minor",
			input:    schema.DiffSeverity("glitch"),
			expected: MinorValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainSeverity(tt.input))
		})
	}
}

func TestGetColorSeverity(t *testing.T) {
	tests := []struct {
		name     string
		severity schema.DiffSeverity
		label    string
	}{
		{"minor", schema.MinorSeverity, MinorValue},
		{"moderate", schema.ModerateSeverity, ModerateValue},
		{"major", schema.MajorSeverity, MajorValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorSeverity(tt.severity)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestGetVerdict(t *testing.T) {
	assert.Equal(t, PassValue, GetPlainVerdict(true))
	assert.Equal(t, FailValue, GetPlainVerdict(false))
	assert.Contains(t, GetColorVerdict(true), PassValue)
	assert.Contains(t, GetColorVerdict(false), FailValue)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "n/a", FormatScore(nil))

	score := 0.8567
	assert.Equal(t, "0.857", FormatScore(&score))

	zero := 0.0
	assert.Equal(t, "0.000", FormatScore(&zero))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(os.TempDir(), "test_output.txt")
		defer func() { _ = os.Remove(tempFile) }() // cleanup

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		// Verify file was created
		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetStoreDBFilePath(t *testing.T) {
	path := GetStoreDBFilePath()

	// Should not be empty
	assert.NotEmpty(t, path)

	// Should contain the database name
	assert.Contains(t, path, ".dpc_runs.db")

	// Should be in home directory
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{
			name:     "short path untouched",
			path:     "report.json",
			maxWidth: 20,
			expected: "report.json",
		},
		{
			name:     "long path keeps tail",
			path:     "artifacts/2026-08-01/ref_screenshot.png",
			maxWidth: 20,
			expected: "...ef_screenshot.png",
		},
		{
			name:     "tiny width untouched",
			path:     "artifacts/report.json",
			maxWidth: 3,
			expected: "artifacts/report.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		maxWidth int
		expected string
	}{
		{
			name:     "short label untouched",
			label:    "Sign up",
			maxWidth: 20,
			expected: "Sign up",
		},
		{
			name:     "long label keeps head",
			label:    "Start your free fourteen day trial today",
			maxWidth: 20,
			expected: "Start your free f...",
		},
		{
			name:     "tiny width untouched",
			label:    "Sign up now",
			maxWidth: 3,
			expected: "Sign up now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateLabel(tt.label, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", "yes", true, false},
		{"true", "true", true, false},
		{"one", "1", true, false},
		{"no", "no", false, false},
		{"false", "false", false, false},
		{"zero", "0", false, false},
		{"mixed case", "YES", true, false},
		{"invalid", "maybe", false, true},
		{"empty", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
