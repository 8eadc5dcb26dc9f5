package core

import (
	"strings"

	"github.com/parityci/dpc/schema"
)

// headingMinSizePx is the font size at which design text nodes count as
// headings. DOM nodes rely on tags and roles instead.
const headingMinSizePx = 24.0

// tagTypes classifies DOM nodes by tag name. Tags not listed fall back to
// text when the node carries a label, container otherwise.
var tagTypes = map[string]schema.ElementType{
	"h1": schema.HeadingElement,
	"h2": schema.HeadingElement,
	"h3": schema.HeadingElement,
	"h4": schema.HeadingElement,
	"h5": schema.HeadingElement,
	"h6": schema.HeadingElement,

	"a":      schema.LinkElement,
	"button": schema.ButtonElement,

	"input":    schema.InputElement,
	"textarea": schema.InputElement,
	"select":   schema.InputElement,

	"img":     schema.ImageElement,
	"svg":     schema.ImageElement,
	"picture": schema.ImageElement,
	"video":   schema.ImageElement,
	"canvas":  schema.ImageElement,

	"p":          schema.TextElement,
	"span":       schema.TextElement,
	"label":      schema.TextElement,
	"li":         schema.TextElement,
	"td":         schema.TextElement,
	"th":         schema.TextElement,
	"blockquote": schema.TextElement,
	"pre":        schema.TextElement,
	"code":       schema.TextElement,

	"div":      schema.ContainerElement,
	"section":  schema.ContainerElement,
	"article":  schema.ContainerElement,
	"header":   schema.ContainerElement,
	"footer":   schema.ContainerElement,
	"nav":      schema.ContainerElement,
	"main":     schema.ContainerElement,
	"aside":    schema.ContainerElement,
	"form":     schema.ContainerElement,
	"fieldset": schema.ContainerElement,
	"ul":       schema.ContainerElement,
	"ol":       schema.ContainerElement,
	"table":    schema.ContainerElement,
}

// roleTypes classifies DOM nodes by ARIA role. Roles take precedence over
// tags so that e.g. a div with role=button matches an actual button.
var roleTypes = map[string]schema.ElementType{
	"button":    schema.ButtonElement,
	"link":      schema.LinkElement,
	"heading":   schema.HeadingElement,
	"img":       schema.ImageElement,
	"textbox":   schema.InputElement,
	"searchbox": schema.InputElement,
	"combobox":  schema.InputElement,
	"checkbox":  schema.InputElement,
	"radio":     schema.InputElement,
}

// designTypes classifies design document nodes by node type. TEXT nodes are
// refined into headings by font size, frame-like nodes become containers.
var designTypes = map[string]schema.ElementType{
	"TEXT": schema.TextElement,

	"FRAME":     schema.ContainerElement,
	"GROUP":     schema.ContainerElement,
	"COMPONENT": schema.ContainerElement,
	"INSTANCE":  schema.ContainerElement,
	"SECTION":   schema.ContainerElement,

	"RECTANGLE": schema.OtherElement,
	"ELLIPSE":   schema.OtherElement,
	"VECTOR":    schema.ImageElement,
	"STAR":      schema.ImageElement,
	"LINE":      schema.OtherElement,
	"IMAGE":     schema.ImageElement,
}

// ExtractElements converts a snapshot's native structure into a flat ordered
// sequence of canonical elements with viewport-normalized boxes. The result
// depends only on the snapshot, so identical input yields identical output.
func ExtractElements(snap *schema.Snapshot) []schema.Element {
	vp := schema.Viewport{Width: snap.Width, Height: snap.Height}
	switch {
	case snap.DOM != nil:
		return extractFromDOM(snap.DOM, vp)
	case snap.Design != nil:
		return extractFromDesign(snap.Design, vp)
	case len(snap.OCR) > 0:
		return extractFromOCR(snap.OCR, vp)
	default:
		return []schema.Element{}
	}
}

// extractFromDOM walks rendered-page nodes in document order.
func extractFromDOM(dom *schema.DOMSnapshot, vp schema.Viewport) []schema.Element {
	elements := make([]schema.Element, 0, len(dom.Nodes))
	for _, node := range dom.Nodes {
		if !domNodeVisible(&node) {
			continue
		}
		box, ok := normalizeBox(node.Rect, vp)
		if !ok {
			continue
		}

		label := collapseSpace(node.Text)
		elem := schema.Element{
			Type:  classifyDOMNode(&node, label),
			Box:   box,
			Label: label,
		}
		if node.Style != nil {
			elem.Style = styleFromComputed(node.Style)
		}
		elements = append(elements, elem)
	}
	return elements
}

// classifyDOMNode resolves the element type from role, then tag, then shape.
func classifyDOMNode(node *schema.DOMNode, label string) schema.ElementType {
	if t, ok := roleTypes[strings.ToLower(node.Role)]; ok {
		return t
	}
	if t, ok := tagTypes[strings.ToLower(node.Tag)]; ok {
		return t
	}
	if label != "" {
		return schema.TextElement
	}
	return schema.ContainerElement
}

// domNodeVisible filters nodes the page does not actually paint.
func domNodeVisible(node *schema.DOMNode) bool {
	if node.Rect.W <= 0 || node.Rect.H <= 0 {
		return false
	}
	s := node.Style
	if s == nil {
		return true
	}
	if s.Display == "none" || s.Visibility == "hidden" || s.Visibility == "collapse" {
		return false
	}
	if s.Opacity <= 0.01 {
		return false
	}
	return true
}

// styleFromComputed maps resolved CSS onto the canonical style attributes.
func styleFromComputed(s *schema.ComputedStyle) *schema.ElementStyle {
	style := &schema.ElementStyle{
		FontFamily:   s.FontFamily,
		FontSizePx:   s.FontSizePx,
		LineHeightPx: s.LineHeightPx,
		FillColor:    s.Color,
	}
	if s.FontWeight > 0 {
		style.FontWeight = schema.WeightCategoryFor(s.FontWeight)
	}
	if *style == (schema.ElementStyle{}) {
		return nil
	}
	return style
}

// extractFromDesign walks design document nodes in tree order.
func extractFromDesign(doc *schema.DesignDocument, vp schema.Viewport) []schema.Element {
	elements := make([]schema.Element, 0, len(doc.Nodes))
	for _, node := range doc.Nodes {
		box, ok := normalizeBox(node.Rect, vp)
		if !ok {
			continue
		}

		label := collapseSpace(node.Text)
		elem := schema.Element{
			Type:  classifyDesignNode(&node, label),
			Box:   box,
			Label: label,
		}
		if style := styleFromDesign(&node); style != nil {
			elem.Style = style
		}
		elements = append(elements, elem)
	}
	return elements
}

// classifyDesignNode resolves the element type from the node type, with
// image fills and font size refining the generic cases.
func classifyDesignNode(node *schema.DesignNode, label string) schema.ElementType {
	t, ok := designTypes[strings.ToUpper(node.NodeType)]
	if !ok {
		if label != "" {
			return schema.TextElement
		}
		return schema.OtherElement
	}

	switch t {
	case schema.TextElement:
		if node.Typography != nil && node.Typography.FontSizePx >= headingMinSizePx {
			return schema.HeadingElement
		}
	case schema.OtherElement:
		for _, fill := range node.Fills {
			if strings.EqualFold(fill.Kind, "image") {
				return schema.ImageElement
			}
		}
	}
	return t
}

// styleFromDesign maps design typography and the first solid fill onto the
// canonical style attributes.
func styleFromDesign(node *schema.DesignNode) *schema.ElementStyle {
	style := schema.ElementStyle{}
	if t := node.Typography; t != nil {
		style.FontFamily = t.FontFamily
		style.FontSizePx = t.FontSizePx
		style.LineHeightPx = t.LineHeightPx
		if t.FontWeight > 0 {
			style.FontWeight = schema.WeightCategoryFor(t.FontWeight)
		}
	}
	for _, fill := range node.Fills {
		if strings.EqualFold(fill.Kind, "solid") && fill.Color != "" && fill.Opacity > 0.01 {
			style.FillColor = fill.Color
			break
		}
	}
	if style == (schema.ElementStyle{}) {
		return nil
	}
	return &style
}

// extractFromOCR turns recognized text blocks into text elements. Blocks
// carry no style information.
func extractFromOCR(blocks []schema.OCRBlock, vp schema.Viewport) []schema.Element {
	elements := make([]schema.Element, 0, len(blocks))
	for _, block := range blocks {
		box, ok := normalizeBox(block.Rect, vp)
		if !ok {
			continue
		}
		label := collapseSpace(block.Text)
		if label == "" {
			continue
		}
		elements = append(elements, schema.Element{
			Type:  schema.TextElement,
			Box:   box,
			Label: label,
		})
	}
	return elements
}

// normalizeBox maps an absolute pixel rect into [0, 1] viewport space,
// clipping to the viewport. Rects fully outside the viewport are dropped.
func normalizeBox(rect schema.Box, vp schema.Viewport) (schema.Box, bool) {
	if vp.Width <= 0 || vp.Height <= 0 || rect.W <= 0 || rect.H <= 0 {
		return schema.Box{}, false
	}

	viewport := schema.Box{W: float64(vp.Width), H: float64(vp.Height)}
	clipped := viewport.Intersect(rect)
	if clipped.Area() <= 0 {
		return schema.Box{}, false
	}
	return clipped.Normalize(vp), true
}

// collapseSpace trims a label and folds internal whitespace runs into
// single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
