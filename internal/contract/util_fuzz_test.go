package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncatePath fuzzes the truncation helpers with random strings and widths.
func FuzzTruncatePath(f *testing.F) {
	seeds := []struct {
		s     string
		width int
	}{
		{"artifacts/report.json", 10},
		{"ref_screenshot.png", 40},
		{"", 0},
		{"日本語のラベルです", 5},
		{"a", -1},
		{"Start your free trial", 4},
	}
	for _, seed := range seeds {
		f.Add(seed.s, seed.width)
	}

	f.Fuzz(func(t *testing.T, s string, width int) {
		for _, got := range []string{TruncatePath(s, width), TruncateLabel(s, width)} {
			if width > 3 && utf8.RuneCountInString(got) > width {
				t.Errorf("truncated %q to %q, which exceeds width %d", s, got, width)
			}
			if !utf8.ValidString(got) && utf8.ValidString(s) {
				t.Errorf("truncation of %q produced invalid UTF-8 %q", s, got)
			}
		}
	})
}

// FuzzParseMetricValueString fuzzes the metric:value list parser.
func FuzzParseMetricValueString(f *testing.F) {
	seeds := []string{
		"pixel:0.9",
		"pixel:0.5,layout:0.5",
		"",
		"pixel",
		"pixel:NaN",
		":::",
		"pixel:0.9,pixel:0.1",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, s string) {
		// Must never panic, errors are fine
		_, _ = parseMetricValueString(s)
	})
}
