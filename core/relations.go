package core

import (
	"github.com/parityci/dpc/schema"
)

// axisSlack is the normalized center separation below which two elements
// are treated as aligned rather than ordered on that axis.
const axisSlack = 0.01

// RelationGraph captures the spatial relations of one side's elements:
// tightest-container parentage plus above/below and left/right orderings
// between element centers. Built once per side, read-only afterward.
type RelationGraph struct {
	elements []schema.Element
	parents  []int
}

// BuildRelationGraph derives spatial relations for one side's elements.
func BuildRelationGraph(elements []schema.Element) *RelationGraph {
	g := &RelationGraph{
		elements: elements,
		parents:  make([]int, len(elements)),
	}
	for i := range elements {
		g.parents[i] = g.tightestContainer(i)
	}
	return g
}

// tightestContainer finds the smallest element fully containing i, -1 when
// nothing does. Equal boxes do not contain each other.
func (g *RelationGraph) tightestContainer(i int) int {
	parent := -1
	parentArea := 0.0
	box := g.elements[i].Box
	for j, candidate := range g.elements {
		if j == i || !candidate.Box.Contains(box) {
			continue
		}
		area := candidate.Box.Area()
		if area <= box.Area() {
			continue
		}
		if parent == -1 || area < parentArea {
			parent, parentArea = j, area
		}
	}
	return parent
}

// ParentOf returns the tightest container of i, -1 when none.
func (g *RelationGraph) ParentOf(i int) int {
	return g.parents[i]
}

// Siblings returns the indices sharing i's parent, excluding i itself.
func (g *RelationGraph) Siblings(i int) []int {
	siblings := []int{}
	for j := range g.elements {
		if j != i && g.parents[j] == g.parents[i] {
			siblings = append(siblings, j)
		}
	}
	return siblings
}

// Above reports whether i's center sits above j's beyond the slack.
func (g *RelationGraph) Above(i, j int) bool {
	_, yi := g.elements[i].Box.Center()
	_, yj := g.elements[j].Box.Center()
	return yj-yi > axisSlack
}

// LeftOf reports whether i's center sits left of j's beyond the slack.
func (g *RelationGraph) LeftOf(i, j int) bool {
	xi, _ := g.elements[i].Box.Center()
	xj, _ := g.elements[j].Box.Center()
	return xj-xi > axisSlack
}

// OrderingsAgree reports whether the ref ordering between elements a and b
// survives on the impl side between their matched counterparts ma and mb.
// An element that moved past a neighbor breaks parity even when its own
// offset looks small.
func OrderingsAgree(ref, impl *RelationGraph, a, b, ma, mb int) bool {
	if ref.Above(a, b) && impl.Above(mb, ma) {
		return false
	}
	if ref.Above(b, a) && impl.Above(ma, mb) {
		return false
	}
	if ref.LeftOf(a, b) && impl.LeftOf(mb, ma) {
		return false
	}
	if ref.LeftOf(b, a) && impl.LeftOf(ma, mb) {
		return false
	}
	return true
}
