package core

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/schema"
)

// genNode is one element in containment order, children sorted by reading
// position.
type genNode struct {
	el       *schema.Element
	children []*genNode
}

// GenerateCode emits a static skeleton for the snapshot's elements in the
// requested stack. The output is a starting point for a hand-off, not a
// faithful rebuild: boxes become percent-positioned blocks and styles carry
// over only what the snapshot reports.
func GenerateCode(snap *schema.Snapshot, stack string) (string, error) {
	emit, err := stackEmitter(stack)
	if err != nil {
		return "", err
	}
	elements := ExtractElements(snap)
	return emit(buildGenTree(elements)), nil
}

func resolveStack(stack string) string {
	s := strings.ToLower(strings.TrimSpace(stack))
	if s == "" {
		return contract.DefaultStack
	}
	return s
}

func stackEmitter(stack string) (func([]*genNode) string, error) {
	switch stack {
	case "html":
		return emitHTML, nil
	case "react":
		return emitReact, nil
	case "vue":
		return emitVue, nil
	}
	return nil, fmt.Errorf("%w: unknown stack %q, must be html, react, or vue", schema.ErrConfig, stack)
}

// buildGenTree nests every element under its tightest container and orders
// each level top-to-bottom, then left-to-right.
func buildGenTree(elements []schema.Element) []*genNode {
	graph := BuildRelationGraph(elements)
	nodes := make([]*genNode, len(elements))
	for i := range elements {
		nodes[i] = &genNode{el: &elements[i]}
	}
	var roots []*genNode
	for i := range elements {
		if p := graph.ParentOf(i); p >= 0 {
			nodes[p].children = append(nodes[p].children, nodes[i])
		} else {
			roots = append(roots, nodes[i])
		}
	}
	sortGenLevel(roots)
	for _, n := range nodes {
		sortGenLevel(n.children)
	}
	return roots
}

func sortGenLevel(nodes []*genNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].el.Box, nodes[j].el.Box
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

var genTags = map[schema.ElementType]string{
	schema.HeadingElement:   "h1",
	schema.TextElement:      "p",
	schema.ButtonElement:    "button",
	schema.LinkElement:      "a",
	schema.ImageElement:     "img",
	schema.InputElement:     "input",
	schema.ContainerElement: "div",
	schema.OtherElement:     "div",
}

func genTag(t schema.ElementType) string {
	if tag, ok := genTags[t]; ok {
		return tag
	}
	return "div"
}

// cssStyle renders the percent-positioned block style for one element.
func cssStyle(el *schema.Element) string {
	var parts []string
	parts = append(parts, "position:absolute",
		fmt.Sprintf("left:%.1f%%", el.Box.X*100),
		fmt.Sprintf("top:%.1f%%", el.Box.Y*100),
		fmt.Sprintf("width:%.1f%%", el.Box.W*100),
		fmt.Sprintf("height:%.1f%%", el.Box.H*100))
	if s := el.Style; s != nil {
		if s.FontSizePx > 0 {
			parts = append(parts, fmt.Sprintf("font-size:%.0fpx", s.FontSizePx))
		}
		if s.FontFamily != "" {
			parts = append(parts, "font-family:"+s.FontFamily)
		}
		if s.FillColor != "" {
			parts = append(parts, "color:"+s.FillColor)
		}
	}
	return strings.Join(parts, ";")
}

func emitHTML(roots []*genNode) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<body>\n")
	for _, n := range roots {
		writeHTMLNode(&b, n, 1)
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeHTMLNode(b *strings.Builder, n *genNode, depth int) {
	indent := strings.Repeat("  ", depth)
	tag := genTag(n.el.Type)
	style := cssStyle(n.el)

	if tag == "img" || tag == "input" {
		fmt.Fprintf(b, "%s<%s style=%q>\n", indent, tag, style)
		return
	}

	label := html.EscapeString(n.el.Label)
	if len(n.children) == 0 {
		fmt.Fprintf(b, "%s<%s style=%q>%s</%s>\n", indent, tag, style, label, tag)
		return
	}
	fmt.Fprintf(b, "%s<%s style=%q>\n", indent, tag, style)
	if label != "" {
		fmt.Fprintf(b, "%s  %s\n", indent, label)
	}
	for _, child := range n.children {
		writeHTMLNode(b, child, depth+1)
	}
	fmt.Fprintf(b, "%s</%s>\n", indent, tag)
}

func emitReact(roots []*genNode) string {
	var b strings.Builder
	b.WriteString("export default function GeneratedView() {\n")
	b.WriteString("  return (\n")
	b.WriteString("    <div style={{position: 'relative', width: '100%', height: '100%'}}>\n")
	for _, n := range roots {
		writeReactNode(&b, n, 3)
	}
	b.WriteString("    </div>\n")
	b.WriteString("  );\n")
	b.WriteString("}\n")
	return b.String()
}

func writeReactNode(b *strings.Builder, n *genNode, depth int) {
	indent := strings.Repeat("  ", depth)
	tag := genTag(n.el.Type)
	style := jsxStyle(n.el)

	if tag == "img" || tag == "input" {
		fmt.Fprintf(b, "%s<%s style=%s />\n", indent, tag, style)
		return
	}

	label := html.EscapeString(n.el.Label)
	if len(n.children) == 0 {
		fmt.Fprintf(b, "%s<%s style=%s>%s</%s>\n", indent, tag, style, label, tag)
		return
	}
	fmt.Fprintf(b, "%s<%s style=%s>\n", indent, tag, style)
	if label != "" {
		fmt.Fprintf(b, "%s  %s\n", indent, label)
	}
	for _, child := range n.children {
		writeReactNode(b, child, depth+1)
	}
	fmt.Fprintf(b, "%s</%s>\n", indent, tag)
}

// jsxStyle renders the element style as a JSX object literal.
func jsxStyle(el *schema.Element) string {
	var parts []string
	parts = append(parts, "position: 'absolute'",
		fmt.Sprintf("left: '%.1f%%'", el.Box.X*100),
		fmt.Sprintf("top: '%.1f%%'", el.Box.Y*100),
		fmt.Sprintf("width: '%.1f%%'", el.Box.W*100),
		fmt.Sprintf("height: '%.1f%%'", el.Box.H*100))
	if s := el.Style; s != nil {
		if s.FontSizePx > 0 {
			parts = append(parts, fmt.Sprintf("fontSize: %.0f", s.FontSizePx))
		}
		if s.FontFamily != "" {
			parts = append(parts, fmt.Sprintf("fontFamily: '%s'", s.FontFamily))
		}
		if s.FillColor != "" {
			parts = append(parts, fmt.Sprintf("color: '%s'", s.FillColor))
		}
	}
	return "{{" + strings.Join(parts, ", ") + "}}"
}

func emitVue(roots []*genNode) string {
	var b strings.Builder
	b.WriteString("<template>\n")
	b.WriteString("  <div style=\"position:relative;width:100%;height:100%\">\n")
	for _, n := range roots {
		writeHTMLNode(&b, n, 2)
	}
	b.WriteString("  </div>\n")
	b.WriteString("</template>\n\n")
	b.WriteString("<script setup>\n</script>\n")
	return b.String()
}
