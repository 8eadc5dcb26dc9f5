package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/parityci/dpc/schema"
)

// attachSidecar parses a structure file and attaches it to the snapshot,
// replacing whatever structure the capture itself produced. The format is
// sniffed from the JSON shape: an array is OCR blocks, an object with a
// fileKey is a design export, anything else is a DOM tree. All boxes are
// mapped into raster space with the given transform.
func attachSidecar(snap *schema.Snapshot, path string, t frameTransform, ignoreSelectors []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read sidecar %s: %v", schema.ErrInput, path, err)
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: sidecar %s is empty", schema.ErrInput, path)
	}

	if trimmed[0] == '[' {
		var blocks []schema.OCRBlock
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return fmt.Errorf("%w: sidecar %s: %v", schema.ErrInput, path, err)
		}
		for i := range blocks {
			blocks[i].Rect = t.apply(blocks[i].Rect)
		}
		snap.OCR = blocks
		snap.DOM, snap.Design = nil, nil
		return nil
	}

	var probe struct {
		FileKey string `json:"fileKey"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return fmt.Errorf("%w: sidecar %s: %v", schema.ErrInput, path, err)
	}

	if probe.FileKey != "" {
		var doc schema.DesignDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return fmt.Errorf("%w: sidecar %s: %v", schema.ErrInput, path, err)
		}
		for i := range doc.Nodes {
			defaultFillOpacity(doc.Nodes[i].Fills)
		}
		normalizeDesign(&doc, t)
		snap.Design = &doc
		snap.DOM, snap.OCR = nil, nil
		return nil
	}

	var dom schema.DOMSnapshot
	if err := json.Unmarshal(trimmed, &dom); err != nil {
		return fmt.Errorf("%w: sidecar %s: %v", schema.ErrInput, path, err)
	}
	dom.Nodes = filterDOMNodes(dom.Nodes, ignoreSelectors)
	for i := range dom.Nodes {
		n := &dom.Nodes[i]
		n.Rect = t.apply(n.Rect)
		// JSON cannot distinguish an omitted opacity from an explicit zero,
		// so zero means unset here. Hidden nodes should carry display:none.
		if n.Style != nil && n.Style.Opacity == 0 {
			n.Style.Opacity = 1
		}
	}
	snap.DOM = &dom
	snap.Design, snap.OCR = nil, nil
	return nil
}

// defaultFillOpacity restores the opacity default lost in transit, same as
// for DOM styles: a zero opacity in a sidecar means the exporter omitted it.
func defaultFillOpacity(fills []schema.DesignFill) {
	for i := range fills {
		if fills[i].Opacity == 0 {
			fills[i].Opacity = 1
		}
	}
}

// normalizeDesign translates boxes from canvas coordinates to frame-local
// pixels using the root node origin, then maps them into raster space.
func normalizeDesign(doc *schema.DesignDocument, t frameTransform) {
	var ox, oy float64
	for _, n := range doc.Nodes {
		if n.Parent == -1 {
			ox, oy = n.Rect.X, n.Rect.Y
			break
		}
	}
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		n.Rect = t.apply(schema.Box{X: n.Rect.X - ox, Y: n.Rect.Y - oy, W: n.Rect.W, H: n.Rect.H})
	}
}

// filterDOMNodes drops nodes matching any ignore selector, together with
// their descendants, and remaps the surviving parent indexes. Nodes are
// expected in document order, parents before children.
func filterDOMNodes(nodes []schema.DOMNode, selectors []string) []schema.DOMNode {
	if len(selectors) == 0 {
		return nodes
	}
	dropped := make([]bool, len(nodes))
	remap := make([]int, len(nodes))
	out := make([]schema.DOMNode, 0, len(nodes))
	for i, n := range nodes {
		parentDropped := n.Parent >= 0 && n.Parent < i && dropped[n.Parent]
		if parentDropped || matchesAnySelector(n, selectors) {
			dropped[i] = true
			remap[i] = -1
			continue
		}
		if n.Parent >= 0 && n.Parent < i {
			n.Parent = remap[n.Parent]
		} else {
			n.Parent = -1
		}
		remap[i] = len(out)
		out = append(out, n)
	}
	return out
}

func matchesAnySelector(n schema.DOMNode, selectors []string) bool {
	return slices.ContainsFunc(selectors, func(sel string) bool {
		return matchesSelector(n, sel)
	})
}

// matchesSelector reports whether a node matches one ignore selector.
// Supported forms are #id, .class, and a bare tag name.
func matchesSelector(n schema.DOMNode, sel string) bool {
	switch {
	case strings.HasPrefix(sel, "#"):
		return n.ID == sel[1:]
	case strings.HasPrefix(sel, "."):
		return slices.Contains(n.Classes, sel[1:])
	default:
		return strings.EqualFold(n.Tag, sel)
	}
}
