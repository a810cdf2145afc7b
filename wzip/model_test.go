package wzip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapLength(t *testing.T) {
	tests := []struct {
		in      string
		letters SymbolClass
		want    int
	}{
		{"", nil, 0},
		{"hello", nil, 0},
		{"HeLLo", nil, 0},
		{"åäöÅÄÖ", nil, 0},
		{"9", nil, 1},
		{"hello9", nil, 1},
		{"9hello", nil, 6},
		{"a b", nil, 2},
		{"end. Then", nil, 5},
		{"café", nil, 1},
		{"café", UnicodeLetters, 0},
		{"x1café", UnicodeLetters, 5},
		{"abc", NewLetterSet("ab"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m := NewModel(tt.letters)
			assert.Equal(t, tt.want, m.OverlapLength([]rune(tt.in)))
		})
	}
}

func TestModelApply(t *testing.T) {
	m := NewModel(nil)

	// Replays the tokens of "9hello9hello".
	steps := []struct {
		parent  NodeID
		sym     rune
		kind    Kind
		id      NodeID
		out     string
		pending int
	}{
		{Root, '9', KindLiteral, 1, "9", 0},
		{Root, 'h', KindLiteral, 2, "9h", 0},
		{Root, 'e', KindLiteral, 3, "9he", 0},
		{Root, 'l', KindLiteral, 4, "9hel", 0},
		{4, 'o', KindLiteral, 5, "9hello", 0},
		{1, 'h', KindBackReference, 6, "9hello9h", 1},
		{2, 'e', KindLiteral, 7, "9hello9he", 0},
		{4, 'l', KindLiteral, 8, "9hello9hell", 0},
		{Root, 'o', KindLiteral, 9, "9hello9hello", 0},
	}

	for i, s := range steps {
		id := m.Apply(s.parent, s.sym, s.kind)
		require.Equal(t, s.id, id, "step %d", i)
		require.Equal(t, s.out, string(m.Output()), "step %d", i)
		require.Equal(t, s.pending, m.Pending(), "step %d", i)
	}

	assert.Equal(t, 1, m.StrippableLength(1)) // "9"
	assert.Equal(t, 2, m.StrippableLength(6)) // "9h"
	assert.Equal(t, 0, m.StrippableLength(5)) // "lo"
	assert.Equal(t, 0, m.StrippableLength(Root))
}

func TestModelBackReferenceRewind(t *testing.T) {
	m := NewModel(nil)
	for _, r := range ". ab" {
		m.Apply(Root, r, KindLiteral)
	}
	dotSpace := m.Apply(1, ' ', KindLiteral) // ". "
	require.Equal(t, ". ab. ", string(m.Output()))
	dsa := m.Apply(dotSpace, 'a', KindLiteral) // prefix ". " is replayed
	require.Equal(t, ". ab. . a", string(m.Output()))

	// ". a" + "b": the letter tail "a" and the literal are owed back.
	m.Apply(dsa, 'b', KindBackReference)
	assert.Equal(t, 2, m.Pending())
	assert.Equal(t, ". ab. . a. ab", string(m.Output()))

	m.Apply(Root, 'z', KindLiteral)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, ". ab. . a. z", string(m.Output()))
}

func TestModelPrime(t *testing.T) {
	m := NewModel(nil)
	m.Prime([]rune("cabbage "))

	tree := m.Tree()
	assert.Equal(t, 6, tree.Len())
	for i, r := range []rune(" abceg") {
		id, ok := tree.LookupEdge(Root, r)
		require.True(t, ok, "%q", r)
		assert.Equal(t, NodeID(i+1), id, "%q", r)
	}
	assert.Empty(t, m.Output())

	m.Apply(3, 'a', KindLiteral)
	assert.Equal(t, "ba", string(m.Output()))
}
