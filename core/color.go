package core

import (
	"fmt"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/parityci/dpc/core/algo"
	"github.com/parityci/dpc/schema"
)

const (
	paletteSize       = 5   // dominant colors extracted per raster
	clusterIterations = 12  // Lloyd refinement rounds
	sampleGridTarget  = 128 // sampling grid resolution along the longer edge

	colorDistanceScale      = 0.5  // Lab distance that zeroes the score
	coverageVisibility      = 0.05 // clusters below this coverage stay out of diffs
	noticeableColorDistance = 0.1  // Lab distance below this reads as the same color
)

type paletteEntry struct {
	color    colorful.Color
	coverage float64
}

type paletteMatch struct {
	ref      int
	impl     int
	distance float64
}

// ComputeColorMetric extracts a dominant palette per raster, pairs the
// palettes greedily by Lab distance, and scores the coverage-weighted mean
// distance against a fixed scale.
func ComputeColorMetric(ref, impl *schema.Snapshot) *schema.ColorReport {
	report := &schema.ColorReport{
		RefPalette:  []schema.PaletteColor{},
		ImplPalette: []schema.PaletteColor{},
		Diffs:       []schema.ColorDiff{},
	}

	if ref.Img == nil || impl.Img == nil {
		report.Note = "raster missing on one side"
		return report
	}
	refPalette := extractPalette(ref.Img, ref.Width, ref.Height)
	implPalette := extractPalette(impl.Img, impl.Width, impl.Height)
	if len(refPalette) == 0 || len(implPalette) == 0 {
		report.Note = "raster is empty"
		return report
	}

	for _, entry := range refPalette {
		report.RefPalette = append(report.RefPalette, schema.PaletteColor{
			Hex:      entry.color.Hex(),
			Coverage: entry.coverage,
		})
	}
	for _, entry := range implPalette {
		report.ImplPalette = append(report.ImplPalette, schema.PaletteColor{
			Hex:      entry.color.Hex(),
			Coverage: entry.coverage,
		})
	}

	// --- 1. Matching Phase ---
	matches := matchPalettes(refPalette, implPalette)

	var weightSum, weightedDistance float64
	for _, m := range matches {
		weightSum += refPalette[m.ref].coverage
		weightedDistance += refPalette[m.ref].coverage * m.distance
	}
	score := 1.0
	if weightSum > 0 {
		score = 1 - schema.Clamp01((weightedDistance/weightSum)/colorDistanceScale)
	}
	report.Score = &score

	// --- 2. Diff Phase ---
	bgIndex := backgroundIndex(ref.Img, ref.Width, ref.Height, refPalette)
	primaryIndex := 0
	if bgIndex == 0 && len(refPalette) > 1 {
		primaryIndex = 1
	}

	refMatched := make([]bool, len(refPalette))
	for _, m := range matches {
		refMatched[m.ref] = true
		if refPalette[m.ref].coverage < coverageVisibility || m.distance <= noticeableColorDistance {
			continue
		}
		report.Diffs = append(report.Diffs, schema.ColorDiff{
			Kind:      colorShiftKind(m.ref, bgIndex, primaryIndex),
			RefColor:  refPalette[m.ref].color.Hex(),
			ImplColor: implPalette[m.impl].color.Hex(),
			Distance:  m.distance,
			Coverage:  refPalette[m.ref].coverage,
		})
	}
	for i, entry := range refPalette {
		if refMatched[i] || entry.coverage < coverageVisibility {
			continue
		}
		report.Diffs = append(report.Diffs, schema.ColorDiff{
			Kind:     colorShiftKind(i, bgIndex, primaryIndex),
			RefColor: entry.color.Hex(),
			Coverage: entry.coverage,
		})
	}
	if len(refPalette) != len(implPalette) {
		report.Diffs = append(report.Diffs, schema.ColorDiff{
			Kind:     schema.PaletteCountMismatch,
			Coverage: unmatchedCoverage(refPalette, implPalette, matches),
		})
		report.Note = fmt.Sprintf("palette sizes differ: %d vs %d", len(refPalette), len(implPalette))
	}
	return report
}

// matchPalettes pairs ref clusters to impl clusters greedily in coverage
// order, each taking its nearest still-available counterpart. Both palettes
// arrive sorted by descending coverage, so distance ties resolve toward the
// higher-coverage impl cluster.
func matchPalettes(refs, impls []paletteEntry) []paletteMatch {
	implTaken := make([]bool, len(impls))
	matches := []paletteMatch{}
	for i, ref := range refs {
		best := -1
		bestDist := 0.0
		for j, impl := range impls {
			if implTaken[j] {
				continue
			}
			d := ref.color.DistanceLab(impl.color)
			if best == -1 || d < bestDist {
				best, bestDist = j, d
			}
		}
		if best == -1 {
			break
		}
		implTaken[best] = true
		matches = append(matches, paletteMatch{ref: i, impl: best, distance: bestDist})
	}
	return matches
}

// extractPalette samples the raster on a fixed grid, quantizes samples into
// RGB buckets, and clusters the bucket means in Lab space. The palette comes
// back sorted by descending coverage, Lab order breaking ties.
func extractPalette(img image.Image, w, h int) []paletteEntry {
	if w <= 0 || h <= 0 {
		return nil
	}
	stride := max(1, max(w, h)/sampleGridTarget)

	type bucket struct {
		sumR, sumG, sumB float64
		n                int
	}
	buckets := make([]bucket, 1<<15)

	bounds := img.Bounds()
	total := 0
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			r, g, b := compositeRGB(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			key := int(r>>3)<<10 | int(g>>3)<<5 | int(b>>3)
			buckets[key].sumR += float64(r)
			buckets[key].sumG += float64(g)
			buckets[key].sumB += float64(b)
			buckets[key].n++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	points := []algo.WeightedPoint{}
	for _, b := range buckets {
		if b.n == 0 {
			continue
		}
		n := float64(b.n)
		c := colorful.Color{
			R: b.sumR / n / 255.0,
			G: b.sumG / n / 255.0,
			B: b.sumB / n / 255.0,
		}
		l, a, bb := c.Lab()
		points = append(points, algo.WeightedPoint{
			P: [3]float64{l, a, bb},
			W: n / float64(total),
		})
	}

	clusters := algo.KMeans(points, paletteSize, clusterIterations)
	palette := make([]paletteEntry, 0, len(clusters))
	for _, c := range clusters {
		palette = append(palette, paletteEntry{
			color:    colorful.Lab(c.Center[0], c.Center[1], c.Center[2]).Clamped(),
			coverage: c.Weight,
		})
	}
	sort.SliceStable(palette, func(i, j int) bool {
		if palette[i].coverage != palette[j].coverage {
			return palette[i].coverage > palette[j].coverage
		}
		return palette[i].color.Hex() < palette[j].color.Hex()
	})
	return palette
}

// backgroundIndex picks the palette cluster nearest the mean of the four
// corner pixels, the usual home of a page background.
func backgroundIndex(img image.Image, w, h int, palette []paletteEntry) int {
	if w <= 0 || h <= 0 || len(palette) == 0 {
		return -1
	}
	bounds := img.Bounds()
	corners := [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}}

	var sumL, sumA, sumB float64
	for _, corner := range corners {
		r, g, b := compositeRGB(img.At(bounds.Min.X+corner[0], bounds.Min.Y+corner[1]))
		l, a, bb := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Lab()
		sumL += l
		sumA += a
		sumB += bb
	}
	cornerMean := colorful.Lab(sumL/4, sumA/4, sumB/4)

	best := 0
	bestDist := palette[0].color.DistanceLab(cornerMean)
	for i := 1; i < len(palette); i++ {
		if d := palette[i].color.DistanceLab(cornerMean); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func colorShiftKind(index, bgIndex, primaryIndex int) schema.ColorDiffKind {
	switch index {
	case bgIndex:
		return schema.BackgroundColorShift
	case primaryIndex:
		return schema.PrimaryColorShift
	default:
		return schema.AccentColorShift
	}
}

// unmatchedCoverage totals the coverage stranded on the larger palette.
func unmatchedCoverage(refs, impls []paletteEntry, matches []paletteMatch) float64 {
	refMatched := make([]bool, len(refs))
	implMatched := make([]bool, len(impls))
	for _, m := range matches {
		refMatched[m.ref] = true
		implMatched[m.impl] = true
	}
	var sum float64
	for i, entry := range refs {
		if !refMatched[i] {
			sum += entry.coverage
		}
	}
	for j, entry := range impls {
		if !implMatched[j] {
			sum += entry.coverage
		}
	}
	return sum
}
