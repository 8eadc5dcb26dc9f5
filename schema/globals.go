package schema

import (
	"strings"
	"sync"
)

// OutputVersion is the version of the JSON output envelope. Bump on any
// breaking change to the output shapes.
const OutputVersion = "1.0"

// fontFamilyGroups lists families that render metrically alike. Families in
// the same group are treated as equivalent by the typography metric.
var fontFamilyGroups = [][]string{
	{"arial", "helvetica", "helvetica neue", "liberation sans", "nimbus sans", "arimo"},
	{"times", "times new roman", "liberation serif", "nimbus roman", "tinos"},
	{"courier", "courier new", "liberation mono", "nimbus mono ps", "cousine"},
	{"calibri", "carlito"},
	{"cambria", "caladea"},
	{"georgia", "gelasio"},
	{"system-ui", "-apple-system", "blinkmacsystemfont", "segoe ui", "roboto", "ui-sans-serif"},
	{"menlo", "monaco", "consolas", "ui-monospace"},
}

var (
	// familyGroupIndex maps a normalized family name to its group ordinal.
	familyGroupIndex map[string]int

	// familyOnce guarantees the index is built only once.
	familyOnce sync.Once
)

// getFamilyGroupIndex returns the family-to-group lookup map.
func getFamilyGroupIndex() map[string]int {
	familyOnce.Do(func() {
		familyGroupIndex = make(map[string]int)
		for i, group := range fontFamilyGroups {
			for _, name := range group {
				familyGroupIndex[name] = i
			}
		}
	})
	return familyGroupIndex
}

// NormalizeFontFamily lowercases a CSS font-family value, strips quotes and
// keeps only the first family of a fallback list.
func NormalizeFontFamily(family string) string {
	first, _, _ := strings.Cut(family, ",")
	first = strings.Trim(strings.TrimSpace(first), `"'`)
	return strings.ToLower(strings.TrimSpace(first))
}

// FontFamiliesEquivalent reports whether two font families should be treated
// as the same face. Exact matches after normalization are equivalent, as are
// members of the same metric-compatible group.
func FontFamiliesEquivalent(a, b string) bool {
	na, nb := NormalizeFontFamily(a), NormalizeFontFamily(b)
	if na == "" || nb == "" {
		return true // missing data is not a mismatch
	}
	if na == nb {
		return true
	}
	idx := getFamilyGroupIndex()
	ga, okA := idx[na]
	gb, okB := idx[nb]
	return okA && okB && ga == gb
}
