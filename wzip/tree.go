package wzip

import "fmt"

// NodeID identifies a phrase tree node. Ids are handed out sequentially
// from 1; Root is never allocated.
type NodeID uint64

// Root is the empty phrase.
const Root NodeID = 0

type edgeKey struct {
	parent NodeID
	symbol rune
}

type link struct {
	parent NodeID
	symbol rune
}

// PhraseTree is an append-only trie over symbols with parent back-links.
// Nodes and edges are never removed or rewritten.
type PhraseTree struct {
	edges   map[edgeKey]NodeID
	links   []link // links[id-1]
	scratch []rune
}

// NewPhraseTree creates an empty tree holding only Root.
func NewPhraseTree() *PhraseTree {
	return &PhraseTree{
		edges: make(map[edgeKey]NodeID, 256),
		links: make([]link, 0, 256),
	}
}

// Len returns the number of allocated nodes (Root excluded). It is also
// the largest id handed out so far.
func (t *PhraseTree) Len() int {
	return len(t.links)
}

// Contains reports whether id is Root or an allocated node.
func (t *PhraseTree) Contains(id NodeID) bool {
	return uint64(id) <= uint64(len(t.links))
}

// LookupEdge returns the child of node along symbol.
func (t *PhraseTree) LookupEdge(node NodeID, symbol rune) (NodeID, bool) {
	child, ok := t.edges[edgeKey{node, symbol}]
	return child, ok
}

// LookupNode walks seq from Root and returns the node it ends on.
func (t *PhraseTree) LookupNode(seq []rune) (NodeID, error) {
	node := Root
	for i, r := range seq {
		child, ok := t.edges[edgeKey{node, r}]
		if !ok {
			return Root, fmt.Errorf("%w: no edge %q after %d symbols", ErrUnknownSequence, r, i)
		}
		node = child
	}
	return node, nil
}

// Parent returns the parent of node and the symbol on the edge between them.
// It reports false for Root and unknown ids.
func (t *PhraseTree) Parent(node NodeID) (NodeID, rune, bool) {
	if node == Root || !t.Contains(node) {
		return Root, 0, false
	}
	l := t.links[node-1]
	return l.parent, l.symbol, true
}

// Depth returns the number of symbols node stands for, or -1 for an id the
// tree has not allocated.
func (t *PhraseTree) Depth(node NodeID) int {
	if !t.Contains(node) {
		return -1
	}
	n := 0
	for node != Root {
		node = t.links[node-1].parent
		n++
	}
	return n
}

// AncestorString returns the symbols on the path from Root to node.
// The slice is reused by the next call; copy it to keep it.
func (t *PhraseTree) AncestorString(node NodeID) []rune {
	s := t.scratch[:0]
	for node != Root {
		l := t.links[node-1]
		s = append(s, l.symbol)
		node = l.parent
	}
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	t.scratch = s
	return s
}

// CreateNode allocates the next id below parent. The forward edge is only
// installed when parent has no child along symbol yet; an existing edge
// keeps pointing at the older node.
func (t *PhraseTree) CreateNode(parent NodeID, symbol rune) NodeID {
	t.links = append(t.links, link{parent: parent, symbol: symbol})
	id := NodeID(len(t.links))
	key := edgeKey{parent, symbol}
	if _, exists := t.edges[key]; !exists {
		t.edges[key] = id
	}
	return id
}
