package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parityci/dpc/schema"
)

// typographyFixture builds already-matched element pairs carrying the
// given styles, one pair per index.
func typographyFixture(refStyles, implStyles []*schema.ElementStyle) (ref, impl []schema.Element, matches []schema.ElementMatch) {
	for i := range refStyles {
		refEl := labeledElement(schema.TextElement, fmt.Sprintf("Line %d", i), 0.1, 0.1*float64(i), 0.3, 0.05)
		refEl.Style = refStyles[i]
		ref = append(ref, refEl)

		implEl := labeledElement(schema.TextElement, fmt.Sprintf("Line %d", i), 0.1, 0.1*float64(i), 0.3, 0.05)
		implEl.Style = implStyles[i]
		impl = append(impl, implEl)

		matches = append(matches, schema.ElementMatch{RefIndex: i, ImplIndex: i, Score: 1})
	}
	return ref, impl, matches
}

func TestComputeTypographyMetricIdentical(t *testing.T) {
	style := &schema.ElementStyle{FontFamily: "Inter", FontSizePx: 16, FontWeight: schema.RegularWeight, LineHeightPx: 24}
	ref, impl, matches := typographyFixture(
		[]*schema.ElementStyle{style},
		[]*schema.ElementStyle{style},
	)

	report := ComputeTypographyMetric(ref, impl, matches)
	require.NotNil(t, report.Score)
	assert.InDelta(t, 1.0, *report.Score, 1e-9)
	assert.Equal(t, 1, report.Pairs)
	assert.Empty(t, report.Diffs)
}

func TestComputeTypographyMetricNoStyledPairs(t *testing.T) {
	ref, impl, matches := typographyFixture(
		[]*schema.ElementStyle{nil},
		[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 16}},
	)

	report := ComputeTypographyMetric(ref, impl, matches)
	assert.Nil(t, report.Score)
	assert.Zero(t, report.Pairs)
	assert.Equal(t, "no matched pair carries style on both sides", report.Note)
}

// TestComputeTypographyMetricDemotedHeading exercises the classic
// regression of a 32px/700 heading shipped as 28px/400.
func TestComputeTypographyMetricDemotedHeading(t *testing.T) {
	ref, impl, matches := typographyFixture(
		[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 32, FontWeight: schema.WeightCategoryFor(700)}},
		[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 28, FontWeight: schema.WeightCategoryFor(400)}},
	)

	report := ComputeTypographyMetric(ref, impl, matches)
	require.NotNil(t, report.Score)

	// Size drift 12.5% costs (0.125-0.1)/0.4, the weight class another 0.5.
	assert.InDelta(t, 0.4375, *report.Score, 1e-9)
	require.Len(t, report.Diffs, 1)
	assert.Equal(t, []schema.TypographyIssue{schema.FontSizeDiff, schema.FontWeightDiff}, report.Diffs[0].Issues)
	assert.InDelta(t, 0.5625, report.Diffs[0].Penalty, 1e-9)
	assert.Equal(t, "Line 0", report.Diffs[0].Label)
}

func TestComputeTypographyMetricFontFamily(t *testing.T) {
	t.Run("mismatch takes the whole pair", func(t *testing.T) {
		ref, impl, matches := typographyFixture(
			[]*schema.ElementStyle{{FontFamily: "Georgia", FontSizePx: 16}},
			[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 16}},
		)

		report := ComputeTypographyMetric(ref, impl, matches)
		require.NotNil(t, report.Score)
		assert.InDelta(t, 0.0, *report.Score, 1e-9)
		require.Len(t, report.Diffs, 1)
		assert.Equal(t, []schema.TypographyIssue{schema.FontFamilyMismatch}, report.Diffs[0].Issues)
	})

	t.Run("metric-compatible faces are equivalent", func(t *testing.T) {
		ref, impl, matches := typographyFixture(
			[]*schema.ElementStyle{{FontFamily: "Arial", FontSizePx: 16}},
			[]*schema.ElementStyle{{FontFamily: "Helvetica Neue", FontSizePx: 16}},
		)

		report := ComputeTypographyMetric(ref, impl, matches)
		require.NotNil(t, report.Score)
		assert.InDelta(t, 1.0, *report.Score, 1e-9)
		assert.Empty(t, report.Diffs)
	})
}

func TestComputeTypographyMetricSizeTolerance(t *testing.T) {
	ref, impl, matches := typographyFixture(
		[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 16}},
		[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 17.2}},
	)

	report := ComputeTypographyMetric(ref, impl, matches)
	require.NotNil(t, report.Score)
	assert.InDelta(t, 1.0, *report.Score, 1e-9)
	assert.Empty(t, report.Diffs)
}

func TestComputeTypographyMetricLineHeightCap(t *testing.T) {
	ref, impl, matches := typographyFixture(
		[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 16, LineHeightPx: 16}},
		[]*schema.ElementStyle{{FontFamily: "Inter", FontSizePx: 16, LineHeightPx: 32}},
	)

	report := ComputeTypographyMetric(ref, impl, matches)
	require.NotNil(t, report.Score)
	assert.InDelta(t, 0.5, *report.Score, 1e-9)
	require.Len(t, report.Diffs, 1)
	assert.Equal(t, []schema.TypographyIssue{schema.LineHeightDiff}, report.Diffs[0].Issues)
}

func TestComputeTypographyMetricAveragesOverStyledPairs(t *testing.T) {
	clean := &schema.ElementStyle{FontFamily: "Inter", FontSizePx: 16}
	ref, impl, matches := typographyFixture(
		[]*schema.ElementStyle{clean, {FontFamily: "Georgia", FontSizePx: 16}, nil},
		[]*schema.ElementStyle{clean, {FontFamily: "Inter", FontSizePx: 16}, clean},
	)

	report := ComputeTypographyMetric(ref, impl, matches)
	require.NotNil(t, report.Score)

	// The unstyled third pair stays out of the denominator.
	assert.Equal(t, 2, report.Pairs)
	assert.InDelta(t, 0.5, *report.Score, 1e-9)
	require.Len(t, report.Diffs, 1)
}
