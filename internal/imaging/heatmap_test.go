package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatmap(t *testing.T) {
	base := solidImage(16, 8, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	// Left block clean, right block fully different
	values := []float64{0.0, 1.0}
	out := Heatmap(base, values, 2, 1, 8)

	require.Equal(t, base.Bounds(), out.Bounds())

	left := out.NRGBAAt(4, 4)
	right := out.NRGBAAt(12, 4)

	assert.Greater(t, left.G, left.R, "clean block should tint green")
	assert.Greater(t, right.R, right.G, "different block should tint red")
	assert.Equal(t, uint8(0xff), left.A)
	assert.Equal(t, uint8(0xff), right.A)
}

func TestHeatmapCuts(t *testing.T) {
	base := solidImage(24, 8, color.NRGBA{A: 255})

	values := []float64{0.32, 0.34, 0.67}
	out := Heatmap(base, values, 3, 1, 8)

	green := out.NRGBAAt(4, 4)
	yellow := out.NRGBAAt(12, 4)
	red := out.NRGBAAt(20, 4)

	assert.Greater(t, green.G, green.R, "0.32 stays green")
	assert.Greater(t, yellow.R, green.R, "0.34 turns yellow")
	assert.Greater(t, yellow.G, red.G, "red loses the yellow's green channel")
}

func TestHeatmapOutsideGrid(t *testing.T) {
	base := solidImage(20, 20, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	// Grid covers only the top-left 16x16
	values := []float64{0, 0, 0, 0}
	out := Heatmap(base, values, 2, 2, 8)

	outside := out.NRGBAAt(18, 18)
	assert.Equal(t, outside.R, outside.G, "pixels past the grid render as plain gray")
	assert.Equal(t, outside.G, outside.B)
	assert.Equal(t, uint8(0xff), outside.A)
}

func TestHeatmapDeterministic(t *testing.T) {
	base := solidImage(16, 16, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	values := []float64{0.1, 0.5, 0.9, 0.2}

	first := Heatmap(base, values, 2, 2, 8)
	second := Heatmap(base, values, 2, 2, 8)
	assert.Equal(t, first.Pix, second.Pix)
}
