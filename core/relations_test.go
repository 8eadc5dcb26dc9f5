package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parityci/dpc/schema"
)

// The fixture is a page with two cards, the first holding two stacked
// text rows.
func relationFixture() []schema.Element {
	return []schema.Element{
		boxedElement(schema.ContainerElement, 0, 0, 1, 1),          // 0: page
		boxedElement(schema.ContainerElement, 0.05, 0.1, 0.4, 0.3), // 1: card
		boxedElement(schema.TextElement, 0.1, 0.15, 0.2, 0.05),     // 2: row in card
		boxedElement(schema.TextElement, 0.1, 0.25, 0.2, 0.05),     // 3: row in card
		boxedElement(schema.ContainerElement, 0.55, 0.1, 0.4, 0.3), // 4: card
	}
}

func TestRelationGraphParents(t *testing.T) {
	g := BuildRelationGraph(relationFixture())

	assert.Equal(t, -1, g.ParentOf(0))
	assert.Equal(t, 0, g.ParentOf(1))
	assert.Equal(t, 1, g.ParentOf(2))
	assert.Equal(t, 1, g.ParentOf(3))
	assert.Equal(t, 0, g.ParentOf(4))
}

func TestRelationGraphEqualBoxes(t *testing.T) {
	// Identical boxes never contain each other.
	elements := []schema.Element{
		boxedElement(schema.ContainerElement, 0.1, 0.1, 0.5, 0.5),
		boxedElement(schema.ContainerElement, 0.1, 0.1, 0.5, 0.5),
	}
	g := BuildRelationGraph(elements)
	assert.Equal(t, -1, g.ParentOf(0))
	assert.Equal(t, -1, g.ParentOf(1))
}

func TestRelationGraphSiblings(t *testing.T) {
	g := BuildRelationGraph(relationFixture())

	assert.Equal(t, []int{3}, g.Siblings(2))
	assert.Equal(t, []int{4}, g.Siblings(1))
	assert.Empty(t, g.Siblings(0))
}

func TestRelationGraphOrderings(t *testing.T) {
	g := BuildRelationGraph(relationFixture())

	t.Run("vertical", func(t *testing.T) {
		assert.True(t, g.Above(2, 3))
		assert.False(t, g.Above(3, 2))
	})

	t.Run("horizontal", func(t *testing.T) {
		assert.True(t, g.LeftOf(1, 4))
		assert.False(t, g.LeftOf(4, 1))
	})

	t.Run("slack suppresses near ties", func(t *testing.T) {
		elements := []schema.Element{
			boxedElement(schema.TextElement, 0.1, 0.100, 0.2, 0.05),
			boxedElement(schema.TextElement, 0.1, 0.105, 0.2, 0.05),
		}
		near := BuildRelationGraph(elements)
		assert.False(t, near.Above(0, 1))
		assert.False(t, near.Above(1, 0))
	})
}

func TestOrderingsAgree(t *testing.T) {
	ref := BuildRelationGraph([]schema.Element{
		boxedElement(schema.TextElement, 0.1, 0.1, 0.2, 0.05),
		boxedElement(schema.TextElement, 0.1, 0.3, 0.2, 0.05),
	})

	t.Run("preserved order agrees", func(t *testing.T) {
		impl := BuildRelationGraph([]schema.Element{
			boxedElement(schema.TextElement, 0.1, 0.12, 0.2, 0.05),
			boxedElement(schema.TextElement, 0.1, 0.32, 0.2, 0.05),
		})
		assert.True(t, OrderingsAgree(ref, impl, 0, 1, 0, 1))
	})

	t.Run("swapped rows disagree", func(t *testing.T) {
		impl := BuildRelationGraph([]schema.Element{
			boxedElement(schema.TextElement, 0.1, 0.3, 0.2, 0.05),
			boxedElement(schema.TextElement, 0.1, 0.1, 0.2, 0.05),
		})
		assert.False(t, OrderingsAgree(ref, impl, 0, 1, 0, 1))
	})

	t.Run("aligned in ref is unconstrained", func(t *testing.T) {
		aligned := BuildRelationGraph([]schema.Element{
			boxedElement(schema.TextElement, 0.1, 0.1, 0.2, 0.05),
			boxedElement(schema.TextElement, 0.4, 0.1, 0.2, 0.05),
		})
		stacked := BuildRelationGraph([]schema.Element{
			boxedElement(schema.TextElement, 0.1, 0.1, 0.2, 0.05),
			boxedElement(schema.TextElement, 0.1, 0.3, 0.2, 0.05),
		})
		// Ref orders them left/right only; impl stacking them keeps the
		// horizontal relation unviolated on the vertical axis.
		require.True(t, aligned.LeftOf(0, 1))
		assert.True(t, OrderingsAgree(aligned, stacked, 0, 1, 0, 1))
	})
}
