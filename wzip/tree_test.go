package wzip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhraseTreeCreateNode(t *testing.T) {
	tree := NewPhraseTree()
	assert.Equal(t, 0, tree.Len())
	assert.True(t, tree.Contains(Root))
	assert.False(t, tree.Contains(1))

	a := tree.CreateNode(Root, 'a')
	ab := tree.CreateNode(a, 'b')
	abc := tree.CreateNode(ab, 'c')
	b := tree.CreateNode(Root, 'b')

	assert.Equal(t, []NodeID{1, 2, 3, 4}, []NodeID{a, ab, abc, b})
	assert.Equal(t, 4, tree.Len())
	assert.True(t, tree.Contains(4))
	assert.False(t, tree.Contains(5))

	child, ok := tree.LookupEdge(a, 'b')
	require.True(t, ok)
	assert.Equal(t, ab, child)

	_, ok = tree.LookupEdge(a, 'c')
	assert.False(t, ok)

	parent, sym, ok := tree.Parent(abc)
	require.True(t, ok)
	assert.Equal(t, ab, parent)
	assert.Equal(t, 'c', sym)

	_, _, ok = tree.Parent(Root)
	assert.False(t, ok)
	_, _, ok = tree.Parent(99)
	assert.False(t, ok)

	assert.Equal(t, 0, tree.Depth(Root))
	assert.Equal(t, 3, tree.Depth(abc))
	assert.Equal(t, -1, tree.Depth(5))
	assert.Equal(t, -1, tree.Depth(99))
}

func TestPhraseTreeLookupNode(t *testing.T) {
	tree := NewPhraseTree()
	n := Root
	for _, r := range "hello" {
		n = tree.CreateNode(n, r)
	}

	got, err := tree.LookupNode([]rune("hel"))
	require.NoError(t, err)
	assert.Equal(t, NodeID(3), got)

	got, err = tree.LookupNode(nil)
	require.NoError(t, err)
	assert.Equal(t, Root, got)

	_, err = tree.LookupNode([]rune("help"))
	assert.ErrorIs(t, err, ErrUnknownSequence)
}

func TestPhraseTreeAncestorString(t *testing.T) {
	tree := NewPhraseTree()
	n := Root
	for _, r := range "wåg9" {
		n = tree.CreateNode(n, r)
	}
	other := tree.CreateNode(Root, 'x')

	assert.Equal(t, "wåg9", string(tree.AncestorString(n)))
	assert.Equal(t, "x", string(tree.AncestorString(other)))
	assert.Empty(t, tree.AncestorString(Root))
}

func TestPhraseTreeKeepsExistingEdge(t *testing.T) {
	tree := NewPhraseTree()
	first := tree.CreateNode(Root, 'a')
	second := tree.CreateNode(Root, 'a')

	assert.Equal(t, NodeID(2), second)
	child, ok := tree.LookupEdge(Root, 'a')
	require.True(t, ok)
	assert.Equal(t, first, child)

	parent, sym, ok := tree.Parent(second)
	require.True(t, ok)
	assert.Equal(t, Root, parent)
	assert.Equal(t, 'a', sym)
}
