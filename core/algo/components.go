package algo

// Component is one connected region of set cells on a grid, tracked by its
// bounding box in cell coordinates (max bounds inclusive).
type Component struct {
	MinX, MinY int
	MaxX, MaxY int
	Cells      int     // Number of set cells inside
	Peak       float64 // Highest cell value inside
}

// Width returns the bounding box width in cells.
func (c Component) Width() int { return c.MaxX - c.MinX + 1 }

// Height returns the bounding box height in cells.
func (c Component) Height() int { return c.MaxY - c.MinY + 1 }

// FindComponents labels 4-connected regions of set cells in a row-major
// mask of w*h cells. values supplies a per-cell magnitude for Peak and may
// be nil. The scan order is fixed, so output order is deterministic.
func FindComponents(mask []bool, values []float64, w, h int) []Component {
	if w <= 0 || h <= 0 || len(mask) < w*h {
		return nil
	}

	visited := make([]bool, w*h)
	var comps []Component
	var stack []int

	for start := range w * h {
		if !mask[start] || visited[start] {
			continue
		}

		comp := Component{MinX: start % w, MinY: start / w, MaxX: start % w, MaxY: start / w}
		stack = append(stack[:0], start)
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := idx%w, idx/w
			comp.Cells++
			comp.MinX = min(comp.MinX, x)
			comp.MinY = min(comp.MinY, y)
			comp.MaxX = max(comp.MaxX, x)
			comp.MaxY = max(comp.MaxY, y)
			if values != nil && values[idx] > comp.Peak {
				comp.Peak = values[idx]
			}

			for _, n := range [4]int{idx - w, idx + w, idx - 1, idx + 1} {
				if n < 0 || n >= w*h {
					continue
				}
				// Horizontal neighbors must stay on the same row.
				if (n == idx-1 || n == idx+1) && n/w != y {
					continue
				}
				if mask[n] && !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		comps = append(comps, comp)
	}
	return comps
}

// MergeNearby repeatedly merges components whose bounding boxes are within
// gap cells of each other, until no pair qualifies. Merging keeps the
// union box, summed cells and the larger peak.
func MergeNearby(comps []Component, gap int) []Component {
	if len(comps) < 2 {
		return comps
	}

	merged := append([]Component(nil), comps...)
	for {
		found := false
		for i := 0; i < len(merged) && !found; i++ {
			for j := i + 1; j < len(merged); j++ {
				if !withinGap(merged[i], merged[j], gap) {
					continue
				}
				merged[i] = union(merged[i], merged[j])
				merged = append(merged[:j], merged[j+1:]...)
				found = true
				break
			}
		}
		if !found {
			return merged
		}
	}
}

// withinGap reports whether two boxes are separated by at most gap empty
// cells on both axes. Overlapping or touching boxes count as gap zero.
func withinGap(a, b Component, gap int) bool {
	dx := max(b.MinX-a.MaxX-1, a.MinX-b.MaxX-1, 0)
	dy := max(b.MinY-a.MaxY-1, a.MinY-b.MaxY-1, 0)
	return dx <= gap && dy <= gap
}

// union combines two components into their bounding union.
func union(a, b Component) Component {
	return Component{
		MinX:  min(a.MinX, b.MinX),
		MinY:  min(a.MinY, b.MinY),
		MaxX:  max(a.MaxX, b.MaxX),
		MaxY:  max(a.MaxY, b.MaxY),
		Cells: a.Cells + b.Cells,
		Peak:  max(a.Peak, b.Peak),
	}
}
