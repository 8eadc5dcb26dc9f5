package core

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/parityci/dpc/core/algo"
	"github.com/parityci/dpc/schema"
)

const (
	alignTolFrac       = 0.01 // column tolerance as a fraction of viewport width
	alignTolMinPx      = 4.0
	alignTolMaxPx      = 24.0
	alignMinColumnSize = 3 // left edges that make a column intentional
	alignNearFactor    = 3 // offsets up to this many tolerances read as failed alignment

	spacingBucketFrac   = 0.01 // gap bucket size as a fraction of viewport height
	spacingMinBucketPx  = 2.0
	spacingMaxGapFrac   = 0.15 // gaps beyond this are section breaks, not rhythm
	spacingNearBuckets  = 2    // buckets this close to the dominant rhythm read as drift
	spacingMinOffenders = 2

	contrastLargeTextPx = 24.0 // WCAG large-text boundary
	contrastNormalMin   = 4.5  // AA minimum for normal text
	contrastLargeMin    = 3.0  // AA minimum for large text

	hierarchyMinTexts = 5    // text elements before a missing heading is worth flagging
	headingMinSizePx  = 24.0 // font size that reads as a heading even without the tag

	majorPenalty    = 0.15
	moderatePenalty = 0.08
	minorPenalty    = 0.04
)

// AssessQuality runs single-snapshot design heuristics over the extracted
// elements and the raster. The score starts at 1 and shrinks by a fixed
// per-severity penalty for every finding, so an empty findings list always
// means a perfect score. Findings are ordered worst first. Snapshots without
// any element structure produce no findings; the heuristics need boxes to
// reason about.
func AssessQuality(snap *schema.Snapshot) *schema.QualityReport {
	report := &schema.QualityReport{Score: 1, Findings: []schema.QualityFinding{}}

	elements := ExtractElements(snap)
	if len(elements) > 0 {
		report.Findings = append(report.Findings, alignmentFindings(elements, snap.Width)...)
		report.Findings = append(report.Findings, spacingFindings(elements, snap.Height)...)
		report.Findings = append(report.Findings, contrastFindings(elements, snap.Img, snap.Width, snap.Height)...)
		report.Findings = append(report.Findings, hierarchyFindings(elements)...)
	}
	report.Findings = algo.RankTop(report.Findings, func(f schema.QualityFinding) int {
		return severityRank(f.Severity)
	}, 0)

	for _, f := range report.Findings {
		report.Score -= severityPenalty(f.Severity)
	}
	report.Score = schema.Clamp01(report.Score)
	return report
}

// alignmentFindings flags elements whose left edges sit just off an
// established alignment column. Edges are swept into columns by a
// width-scaled tolerance; columns with at least alignMinColumnSize members
// count as intentional, and anything within a few tolerances of one of
// those reads as a missed alignment rather than a separate column.
func alignmentFindings(elements []schema.Element, vpWidth int) []schema.QualityFinding {
	tol := alignTolerance(vpWidth)

	type edge struct {
		x  float64 // left edge in pixels
		el int
	}
	edges := make([]edge, 0, len(elements))
	for i, el := range elements {
		if el.Box.W <= 0 || el.Box.H <= 0 {
			continue
		}
		edges = append(edges, edge{x: el.Box.X * float64(vpWidth), el: i})
	}
	if len(edges) <= alignMinColumnSize {
		return nil
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].x != edges[j].x {
			return edges[i].x < edges[j].x
		}
		return edges[i].el < edges[j].el
	})

	// Greedy sweep: a new column opens whenever the next edge falls outside
	// the tolerance of the current column start.
	type column struct {
		start   float64
		sum     float64
		members []int
	}
	var cols []column
	for _, e := range edges {
		if len(cols) == 0 || e.x-cols[len(cols)-1].start > tol {
			cols = append(cols, column{start: e.x})
		}
		c := &cols[len(cols)-1]
		c.sum += e.x
		c.members = append(c.members, e.el)
	}

	center := func(c column) float64 { return c.sum / float64(len(c.members)) }

	// Assign each loose edge to its nearest established column, if the
	// offset is small enough to read as a miss.
	strays := make([][]int, len(cols))
	for j := range cols {
		if len(cols[j].members) >= alignMinColumnSize {
			continue
		}
		for _, el := range cols[j].members {
			x := elements[el].Box.X * float64(vpWidth)
			best, bestOff := -1, math.MaxFloat64
			for i := range cols {
				if len(cols[i].members) < alignMinColumnSize {
					continue
				}
				if off := math.Abs(x - center(cols[i])); off < bestOff {
					best, bestOff = i, off
				}
			}
			if best >= 0 && bestOff > tol && bestOff <= alignNearFactor*tol {
				strays[best] = append(strays[best], el)
			}
		}
	}

	var findings []schema.QualityFinding
	for i := range cols {
		if len(strays[i]) == 0 {
			continue
		}
		severity := schema.MinorSeverity
		if len(strays[i]) >= alignMinColumnSize {
			severity = schema.ModerateSeverity
		}
		box := unionBox(elements, strays[i])
		findings = append(findings, schema.QualityFinding{
			Type:     schema.AlignmentInconsistent,
			Severity: severity,
			Message: fmt.Sprintf("%d elements sit within %.0fpx of the left-edge column at x=%.0f without joining it",
				len(strays[i]), alignNearFactor*tol, center(cols[i])),
			Box: &box,
		})
	}
	return findings
}

// spacingFindings buckets the vertical gaps between stacked elements and
// flags gaps that hover near the dominant rhythm without landing on it.
// Gaps far from the dominant bucket are treated as intentional grouping.
func spacingFindings(elements []schema.Element, vpHeight int) []schema.QualityFinding {
	h := float64(vpHeight)
	if h <= 0 {
		return nil
	}
	bucket := math.Max(h*spacingBucketFrac, spacingMinBucketPx)

	order := make([]int, 0, len(elements))
	for i, el := range elements {
		if el.Box.W <= 0 || el.Box.H <= 0 {
			continue
		}
		order = append(order, i)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := elements[order[i]].Box, elements[order[j]].Box
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	// Only consecutive top-sorted elements that overlap horizontally count
	// as stacked; side-by-side columns never pair up here.
	var gaps []float64
	for i := 1; i < len(order); i++ {
		prev, next := elements[order[i-1]].Box, elements[order[i]].Box
		if !horizontalOverlap(prev, next) {
			continue
		}
		gap := (next.Y - (prev.Y + prev.H)) * h
		if gap <= 0 || gap > h*spacingMaxGapFrac {
			continue
		}
		gaps = append(gaps, gap)
	}
	if len(gaps) <= spacingMinOffenders {
		return nil
	}

	counts := make(map[int]int)
	for _, g := range gaps {
		counts[int(math.Round(g/bucket))]++
	}
	dominant, best := 0, 0
	for b, n := range counts {
		if n > best || (n == best && b < dominant) {
			dominant, best = b, n
		}
	}

	var offenders []float64
	for _, g := range gaps {
		d := int(math.Round(g/bucket)) - dominant
		if d < 0 {
			d = -d
		}
		if d >= 1 && d <= spacingNearBuckets {
			offenders = append(offenders, g)
		}
	}
	if len(offenders) < spacingMinOffenders {
		return nil
	}
	sort.Float64s(offenders)

	severity := schema.MinorSeverity
	if len(offenders) >= 2*spacingMinOffenders {
		severity = schema.ModerateSeverity
	}
	return []schema.QualityFinding{{
		Type:     schema.SpacingInconsistent,
		Severity: severity,
		Message: fmt.Sprintf("%d vertical gaps drift between %.0fpx and %.0fpx around the dominant %.0fpx rhythm",
			len(offenders), offenders[0], offenders[len(offenders)-1], float64(dominant)*bucket),
	}}
}

// contrastFindings probes every text-bearing element that reports a fill
// color against the raster behind its box. The background is taken as the
// dominant quantized color of the region, which swamps the text pixels for
// any normal text density.
func contrastFindings(elements []schema.Element, img image.Image, vpWidth, vpHeight int) []schema.QualityFinding {
	if img == nil {
		return nil
	}
	var findings []schema.QualityFinding
	for i := range elements {
		el := &elements[i]
		if !textBearing(el.Type) || el.Style == nil || el.Style.FillColor == "" {
			continue
		}
		fg, err := colorful.Hex(el.Style.FillColor)
		if err != nil {
			continue
		}
		bg, ok := dominantRegionColor(img, el.Box, vpWidth, vpHeight)
		if !ok {
			continue
		}
		ratio := contrastRatio(fg, bg)
		minRatio := contrastNormalMin
		if el.Style.FontSizePx >= contrastLargeTextPx {
			minRatio = contrastLargeMin
		}
		if ratio >= minRatio {
			continue
		}
		severity := schema.ModerateSeverity
		if ratio < contrastLargeMin {
			severity = schema.MajorSeverity
		}
		box := el.Box
		findings = append(findings, schema.QualityFinding{
			Type:     schema.LowContrast,
			Severity: severity,
			Message: fmt.Sprintf("%s has contrast ratio %.1f against its background, below the %.1f minimum",
				elementSubject(el), ratio, minRatio),
			Box: &box,
		})
	}
	return findings
}

// hierarchyFindings fires when a snapshot carries enough text to need
// structure but nothing that reads as a heading, either by element type or
// by font size.
func hierarchyFindings(elements []schema.Element) []schema.QualityFinding {
	texts := 0
	for i := range elements {
		el := &elements[i]
		if !textBearing(el.Type) {
			continue
		}
		if el.Type == schema.HeadingElement {
			return nil
		}
		if el.Style != nil && el.Style.FontSizePx >= headingMinSizePx {
			return nil
		}
		texts++
	}
	if texts < hierarchyMinTexts {
		return nil
	}
	return []schema.QualityFinding{{
		Type:     schema.MissingHierarchy,
		Severity: schema.ModerateSeverity,
		Message:  fmt.Sprintf("%d text elements with no heading-level text among them", texts),
	}}
}

func alignTolerance(vpWidth int) float64 {
	return math.Min(math.Max(float64(vpWidth)*alignTolFrac, alignTolMinPx), alignTolMaxPx)
}

func severityPenalty(severity schema.DiffSeverity) float64 {
	switch severity {
	case schema.MajorSeverity:
		return majorPenalty
	case schema.ModerateSeverity:
		return moderatePenalty
	default:
		return minorPenalty
	}
}

func textBearing(t schema.ElementType) bool {
	switch t {
	case schema.TextElement, schema.HeadingElement, schema.ButtonElement, schema.LinkElement:
		return true
	}
	return false
}

func horizontalOverlap(a, b schema.Box) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W
}

func unionBox(elements []schema.Element, indices []int) schema.Box {
	first := elements[indices[0]].Box
	minX, minY := first.X, first.Y
	maxX, maxY := first.X+first.W, first.Y+first.H
	for _, i := range indices[1:] {
		b := elements[i].Box
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.X+b.W)
		maxY = math.Max(maxY, b.Y+b.H)
	}
	return schema.Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func elementSubject(el *schema.Element) string {
	if el.Label == "" {
		return fmt.Sprintf("%s element", el.Type)
	}
	label := el.Label
	if len(label) > 40 {
		label = label[:40] + "..."
	}
	return fmt.Sprintf("text %q", label)
}

// dominantRegionColor samples the raster under a normalized box and returns
// the most common quantized color, averaged within its bucket. False means
// the box misses the raster entirely.
func dominantRegionColor(img image.Image, box schema.Box, vpWidth, vpHeight int) (colorful.Color, bool) {
	bounds := img.Bounds()
	x0 := bounds.Min.X + int(box.X*float64(vpWidth))
	y0 := bounds.Min.Y + int(box.Y*float64(vpHeight))
	x1 := bounds.Min.X + int(math.Ceil((box.X+box.W)*float64(vpWidth)))
	y1 := bounds.Min.Y + int(math.Ceil((box.Y+box.H)*float64(vpHeight)))
	x0, y0 = max(x0, bounds.Min.X), max(y0, bounds.Min.Y)
	x1, y1 = min(x1, bounds.Max.X), min(y1, bounds.Max.Y)
	if x0 >= x1 || y0 >= y1 {
		return colorful.Color{}, false
	}

	type bucket struct {
		sumR, sumG, sumB float64
		n                int
	}
	buckets := make(map[int]*bucket)
	stride := max(1, max(x1-x0, y1-y0)/32)
	for y := y0; y < y1; y += stride {
		for x := x0; x < x1; x += stride {
			r, g, b := compositeRGB(img.At(x, y))
			key := int(r>>3)<<10 | int(g>>3)<<5 | int(b>>3)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.sumR += float64(r)
			bk.sumG += float64(g)
			bk.sumB += float64(b)
			bk.n++
		}
	}

	bestKey, bestN := -1, 0
	for key, bk := range buckets {
		if bk.n > bestN || (bk.n == bestN && key < bestKey) {
			bestKey, bestN = key, bk.n
		}
	}
	if bestN == 0 {
		return colorful.Color{}, false
	}
	bk := buckets[bestKey]
	n := float64(bk.n)
	return colorful.Color{
		R: bk.sumR / n / 255,
		G: bk.sumG / n / 255,
		B: bk.sumB / n / 255,
	}, true
}

// contrastRatio is the WCAG ratio between the relative luminances of two
// colors, always at least 1.
func contrastRatio(a, b colorful.Color) float64 {
	la, lb := relativeLuminance(a), relativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

func relativeLuminance(c colorful.Color) float64 {
	lin := func(v float64) float64 {
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}
