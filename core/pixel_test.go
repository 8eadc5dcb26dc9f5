package core

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parityci/dpc/schema"
)

func pixelSnapshot(img image.Image, w, h int) *schema.Snapshot {
	return &schema.Snapshot{Kind: schema.ImageSnapshot, Source: "x.png", Img: img, Width: w, Height: h}
}

// paintRect fills a pixel rectangle with a color, bounds exclusive.
func paintRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func TestComputePixelMetricIdentical(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)
	impl := pixelSnapshot(solidRaster(64, 64, white), 64, 64)

	report := ComputePixelMetric(ref, impl, nil)
	require.NotNil(t, report.Score)
	assert.InDelta(t, 1.0, *report.Score, 1e-9)
	assert.Empty(t, report.DiffRegions)
}

func TestComputePixelMetricMissingRaster(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)
	impl := pixelSnapshot(nil, 64, 64)

	report := ComputePixelMetric(ref, impl, nil)
	assert.Nil(t, report.Score)
	assert.Equal(t, "raster missing on one side", report.Note)
}

func TestComputePixelMetricDimensionMismatch(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)
	impl := pixelSnapshot(solidRaster(32, 32, white), 32, 32)

	report := ComputePixelMetric(ref, impl, nil)
	assert.Nil(t, report.Score)
	assert.Equal(t, "raster dimensions differ: 64x64 vs 32x32", report.Note)
}

// TestComputePixelMetricLocalizedChange drops a black 16x16 square onto a
// white 64x64 page and expects one major region over exactly that area.
func TestComputePixelMetricLocalizedChange(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)

	implImg := solidRaster(64, 64, white)
	paintRect(implImg, 16, 16, 32, 32, color.NRGBA{A: 255})
	impl := pixelSnapshot(implImg, 64, 64)

	report := ComputePixelMetric(ref, impl, nil)
	require.NotNil(t, report.Score)
	assert.InDelta(t, 0.9375, *report.Score, 1e-3)

	require.Len(t, report.DiffRegions, 1)
	region := report.DiffRegions[0]
	assert.Equal(t, schema.MajorSeverity, region.Severity)
	assert.Equal(t, schema.PixelChangeReason, region.Reason)
	assert.Greater(t, region.Peak, 0.9)
	assert.InDelta(t, 0.25, region.X, 1e-9)
	assert.InDelta(t, 0.25, region.Y, 1e-9)
	assert.InDelta(t, 0.25, region.W, 1e-9)
	assert.InDelta(t, 0.25, region.H, 1e-9)
}

func TestComputePixelMetricIgnoreRegions(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)

	implImg := solidRaster(64, 64, white)
	paintRect(implImg, 16, 16, 32, 32, color.NRGBA{A: 255})
	impl := pixelSnapshot(implImg, 64, 64)

	t.Run("masked change does not count", func(t *testing.T) {
		ignore := []schema.IgnoreRegion{{X: 16, Y: 16, W: 16, H: 16}}
		report := ComputePixelMetric(ref, impl, ignore)
		require.NotNil(t, report.Score)
		assert.InDelta(t, 1.0, *report.Score, 1e-9)
		assert.Empty(t, report.DiffRegions)
	})

	t.Run("everything ignored leaves no score", func(t *testing.T) {
		ignore := []schema.IgnoreRegion{{X: 0, Y: 0, W: 64, H: 64}}
		report := ComputePixelMetric(ref, impl, ignore)
		assert.Nil(t, report.Score)
		assert.Equal(t, "all pixels ignored", report.Note)
	})
}

func TestComputePixelMetricRegionClassification(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	t.Run("soft speck is dropped as noise", func(t *testing.T) {
		ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)
		implImg := solidRaster(64, 64, white)
		paintRect(implImg, 24, 24, 32, 32, color.NRGBA{R: 115, G: 115, B: 115, A: 255})
		impl := pixelSnapshot(implImg, 64, 64)

		report := ComputePixelMetric(ref, impl, nil)
		require.NotNil(t, report.Score)
		assert.Less(t, *report.Score, 1.0)
		assert.Empty(t, report.DiffRegions)
	})

	t.Run("sharp speck survives as rendering noise", func(t *testing.T) {
		ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)
		implImg := solidRaster(64, 64, white)
		paintRect(implImg, 24, 24, 32, 32, color.NRGBA{A: 255})
		impl := pixelSnapshot(implImg, 64, 64)

		report := ComputePixelMetric(ref, impl, nil)
		require.Len(t, report.DiffRegions, 1)
		assert.Equal(t, schema.ModerateSeverity, report.DiffRegions[0].Severity)
		assert.Equal(t, schema.RenderingNoiseReason, report.DiffRegions[0].Reason)
	})

	t.Run("thin faint strip reads as anti aliasing", func(t *testing.T) {
		ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)
		implImg := solidRaster(64, 64, white)
		paintRect(implImg, 0, 0, 40, 8, color.NRGBA{R: 115, G: 115, B: 115, A: 255})
		impl := pixelSnapshot(implImg, 64, 64)

		report := ComputePixelMetric(ref, impl, nil)
		require.Len(t, report.DiffRegions, 1)
		assert.Equal(t, schema.MinorSeverity, report.DiffRegions[0].Severity)
		assert.Equal(t, schema.AntiAliasingReason, report.DiffRegions[0].Reason)
	})
}

func TestComputeDissimGrid(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ref := pixelSnapshot(solidRaster(64, 64, white), 64, 64)

	t.Run("identical rasters are all zero", func(t *testing.T) {
		grid := ComputeDissimGrid(ref, pixelSnapshot(solidRaster(64, 64, white), 64, 64), nil)
		require.NotNil(t, grid)
		assert.Equal(t, 8, grid.W)
		assert.Equal(t, 8, grid.H)
		assert.Equal(t, 8, grid.Block)
		for _, v := range grid.Values {
			assert.Zero(t, v)
		}
	})

	t.Run("difference lands in its block", func(t *testing.T) {
		implImg := solidRaster(64, 64, white)
		paintRect(implImg, 16, 16, 24, 24, color.NRGBA{A: 255})
		grid := ComputeDissimGrid(ref, pixelSnapshot(implImg, 64, 64), nil)
		require.NotNil(t, grid)
		assert.Greater(t, grid.Values[2*8+2], 0.9)
		assert.Zero(t, grid.Values[0])
	})

	t.Run("nil on shape mismatch", func(t *testing.T) {
		assert.Nil(t, ComputeDissimGrid(ref, pixelSnapshot(solidRaster(32, 32, white), 32, 32), nil))
		assert.Nil(t, ComputeDissimGrid(ref, pixelSnapshot(nil, 64, 64), nil))
	})
}
