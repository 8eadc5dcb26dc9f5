package core

import (
	"fmt"
	"image"
	"image/color"

	"github.com/parityci/dpc/core/algo"
	"github.com/parityci/dpc/schema"
)

// Pixel metric tuning. Dissimilarity is 1-SSIM per block, clamped to [0,1].
const (
	ssimWindow = 8       // block edge in pixels
	ssimC1     = 6.5025  // (0.01*255)^2, stabilizes the luminance term
	ssimC2     = 58.5225 // (0.03*255)^2, stabilizes the contrast term

	blockMaskCutoff  = 0.20 // blocks above this dissimilarity enter the mask
	blockMergeGap    = 1    // blocks of empty space bridged when merging regions
	noiseFloorBlocks = 2    // regions at or below this cell count are noise candidates

	minorMaxPeak    = 0.35 // peak dissimilarity below this is minor
	moderateMaxPeak = 0.65 // ...below this is moderate, above is major

	thinAspectRatio = 4.0 // width:height beyond this marks edge fringing
)

// ComputePixelMetric scores perceptual raster similarity via per-block SSIM
// and clusters differing blocks into localized diff regions. Both rasters
// must share dimensions; a mismatch yields a nil score with a diagnostic.
func ComputePixelMetric(ref, impl *schema.Snapshot, ignore []schema.IgnoreRegion) *schema.PixelReport {
	report := &schema.PixelReport{DiffRegions: []schema.PixelDiff{}}

	if ref.Img == nil || impl.Img == nil {
		report.Note = "raster missing on one side"
		return report
	}
	if ref.Width != impl.Width || ref.Height != impl.Height {
		report.Note = fmt.Sprintf("raster dimensions differ: %dx%d vs %dx%d",
			ref.Width, ref.Height, impl.Width, impl.Height)
		return report
	}
	w, h := ref.Width, ref.Height
	if w <= 0 || h <= 0 {
		report.Note = "raster is empty"
		return report
	}

	refLuma := lumaPlane(ref.Img, w, h)
	implLuma := lumaPlane(impl.Img, w, h)
	ignoreMask := buildIgnoreMask(ignore, w, h)

	// --- 1. Block SSIM Phase ---
	bw := (w + ssimWindow - 1) / ssimWindow
	bh := (h + ssimWindow - 1) / ssimWindow
	dissim := make([]float64, bw*bh)
	mask := make([]bool, bw*bh)

	var ssimSum float64
	var ssimBlocks int
	for by := range bh {
		for bx := range bw {
			s, ok := blockSSIM(refLuma, implLuma, ignoreMask, w, h, bx*ssimWindow, by*ssimWindow)
			if !ok {
				continue // fully ignored block
			}
			ssimSum += s
			ssimBlocks++

			d := schema.Clamp01(1 - s)
			dissim[by*bw+bx] = d
			mask[by*bw+bx] = d > blockMaskCutoff
		}
	}
	if ssimBlocks == 0 {
		report.Note = "all pixels ignored"
		return report
	}

	score := schema.Clamp01(ssimSum / float64(ssimBlocks))
	report.Score = &score

	// --- 2. Region Clustering Phase ---
	comps := algo.FindComponents(mask, dissim, bw, bh)
	merged := algo.MergeNearby(comps, blockMergeGap)

	vp := schema.Viewport{Width: w, Height: h}
	for _, comp := range merged {
		region, keep := classifyPixelRegion(comp, vp)
		if keep {
			report.DiffRegions = append(report.DiffRegions, region)
		}
	}
	return report
}

// DissimGrid is the per-block dissimilarity field behind the pixel score.
// Block (x, y) covers pixels [x*Block, (x+1)*Block) x [y*Block, (y+1)*Block).
type DissimGrid struct {
	Values []float64 // row-major, length W*H
	W, H   int
	Block  int // block edge in pixels
}

// ComputeDissimGrid returns the dissimilarity field for two equal-size
// rasters, for rendering heatmap artifacts. Returns nil when either raster
// is missing or dimensions differ.
func ComputeDissimGrid(ref, impl *schema.Snapshot, ignore []schema.IgnoreRegion) *DissimGrid {
	if ref == nil || impl == nil || ref.Img == nil || impl.Img == nil {
		return nil
	}
	if ref.Width != impl.Width || ref.Height != impl.Height {
		return nil
	}
	w, h := ref.Width, ref.Height
	if w <= 0 || h <= 0 {
		return nil
	}

	refLuma := lumaPlane(ref.Img, w, h)
	implLuma := lumaPlane(impl.Img, w, h)
	ignoreMask := buildIgnoreMask(ignore, w, h)

	bw := (w + ssimWindow - 1) / ssimWindow
	bh := (h + ssimWindow - 1) / ssimWindow
	grid := &DissimGrid{Values: make([]float64, bw*bh), W: bw, H: bh, Block: ssimWindow}
	for by := range bh {
		for bx := range bw {
			s, ok := blockSSIM(refLuma, implLuma, ignoreMask, w, h, bx*ssimWindow, by*ssimWindow)
			if ok {
				grid.Values[by*bw+bx] = schema.Clamp01(1 - s)
			}
		}
	}
	return grid
}

// classifyPixelRegion grades one merged component. Sub-floor regions
// survive only when their peak would have been major, downgraded to
// moderate rendering noise.
func classifyPixelRegion(comp algo.Component, vp schema.Viewport) (schema.PixelDiff, bool) {
	severity := schema.MajorSeverity
	switch {
	case comp.Peak < minorMaxPeak:
		severity = schema.MinorSeverity
	case comp.Peak < moderateMaxPeak:
		severity = schema.ModerateSeverity
	}

	reason := schema.PixelChangeReason
	if comp.Cells <= noiseFloorBlocks {
		if comp.Peak < moderateMaxPeak {
			return schema.PixelDiff{}, false
		}
		severity = schema.ModerateSeverity
		reason = schema.RenderingNoiseReason
	} else if severity == schema.MinorSeverity && thinRegion(comp) {
		reason = schema.AntiAliasingReason
	}

	pixelBox := schema.Box{
		X: float64(comp.MinX * ssimWindow),
		Y: float64(comp.MinY * ssimWindow),
		W: float64(comp.Width() * ssimWindow),
		H: float64(comp.Height() * ssimWindow),
	}
	box := schema.Box{W: float64(vp.Width), H: float64(vp.Height)}.Intersect(pixelBox).Normalize(vp)

	return schema.PixelDiff{
		X:        box.X,
		Y:        box.Y,
		W:        box.W,
		H:        box.H,
		Severity: severity,
		Reason:   reason,
		Peak:     comp.Peak,
	}, true
}

// thinRegion reports edge-fringing shapes: long and narrow, or tiny.
func thinRegion(comp algo.Component) bool {
	aspect := float64(comp.Width()) / float64(comp.Height())
	return aspect >= thinAspectRatio || aspect <= 1/thinAspectRatio || comp.Cells <= 3
}

// blockSSIM computes SSIM for one window. Ignored pixels are excluded; a
// fully ignored window reports ok=false.
func blockSSIM(a, b []float64, ignoreMask []bool, w, h, x0, y0 int) (float64, bool) {
	var sumA, sumB float64
	var n int
	for y := y0; y < min(y0+ssimWindow, h); y++ {
		for x := x0; x < min(x0+ssimWindow, w); x++ {
			idx := y*w + x
			if ignoreMask != nil && ignoreMask[idx] {
				continue
			}
			sumA += a[idx]
			sumB += b[idx]
			n++
		}
	}
	if n == 0 {
		return 1, false
	}

	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var varA, varB, cov float64
	for y := y0; y < min(y0+ssimWindow, h); y++ {
		for x := x0; x < min(x0+ssimWindow, w); x++ {
			idx := y*w + x
			if ignoreMask != nil && ignoreMask[idx] {
				continue
			}
			da := a[idx] - meanA
			db := b[idx] - meanB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= float64(n)
	varB /= float64(n)
	cov /= float64(n)

	num := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	den := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)
	return num / den, true
}

// lumaPlane extracts Rec.601 luma in [0,255], compositing transparency
// over white so alpha differences still register.
func lumaPlane(img image.Image, w, h int) []float64 {
	luma := make([]float64, w*h)
	bounds := img.Bounds()
	for y := range h {
		for x := range w {
			r, g, b := compositeRGB(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			luma[y*w+x] = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		}
	}
	return luma
}

// compositeRGB flattens a premultiplied pixel over a white background to
// 8-bit channels.
func compositeRGB(c color.Color) (uint8, uint8, uint8) {
	r16, g16, b16, a16 := c.RGBA()
	r := (r16 + (0xffff - a16)) / 257
	g := (g16 + (0xffff - a16)) / 257
	b := (b16 + (0xffff - a16)) / 257
	return uint8(r), uint8(g), uint8(b)
}

// buildIgnoreMask rasterizes ignore regions, given in raster pixel
// coordinates, into a pixel mask. Returns nil when there is nothing to
// ignore.
func buildIgnoreMask(regions []schema.IgnoreRegion, w, h int) []bool {
	if len(regions) == 0 {
		return nil
	}
	mask := make([]bool, w*h)
	for _, region := range regions {
		x0 := max(0, int(region.X))
		y0 := max(0, int(region.Y))
		x1 := min(w, int(region.X+region.W+0.5))
		y1 := min(h, int(region.Y+region.H+0.5))
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}
