package wzip

import "slices"

// Model is the state encoder and decoder keep in lockstep: the phrase tree,
// the text reconstructed so far and the rewind owed by the last
// back-reference. Both sides must feed it the same Apply calls in the same
// order.
type Model struct {
	tree    *PhraseTree
	letters SymbolClass
	out     []rune
	pending int
	primed  int
}

// NewModel creates an empty model. A nil letters means DefaultLetters.
func NewModel(letters SymbolClass) *Model {
	if letters == nil {
		letters = DefaultLetters
	}
	return &Model{
		tree:    NewPhraseTree(),
		letters: letters,
		out:     make([]rune, 0, 1024),
	}
}

// Tree returns the model's phrase tree.
func (m *Model) Tree() *PhraseTree {
	return m.tree
}

// Pending returns the number of symbols the next Apply will drop first.
func (m *Model) Pending() int {
	return m.pending
}

// Prime seeds the dictionary with one root child per distinct symbol, in
// code point order. It must run before the first Apply of a session, and
// both sides must prime with the same symbols.
func (m *Model) Prime(symbols []rune) {
	set := slices.Clone(symbols)
	slices.Sort(set)
	set = slices.Compact(set)
	for _, r := range set {
		if _, ok := m.tree.LookupEdge(Root, r); ok {
			continue
		}
		m.Apply(Root, r, KindLiteral)
	}
	m.primed = len(m.out)
}

// Apply records the phrase (parent, symbol) and returns its new node id.
//
// The rewind owed by the previous back-reference is settled first. The
// rewind owed by this one, if kind is KindBackReference, is only settled on
// the next call.
func (m *Model) Apply(parent NodeID, symbol rune, kind Kind) NodeID {
	if m.pending > 0 {
		m.out = m.out[:len(m.out)-m.pending]
		m.pending = 0
	}

	id := m.tree.CreateNode(parent, symbol)

	prefix := m.tree.AncestorString(parent)
	if kind == KindBackReference {
		m.pending = m.OverlapLength(prefix)
	}
	m.out = append(m.out, prefix...)
	m.out = append(m.out, symbol)
	return id
}

// OverlapLength returns 0 when every symbol of s is a plain letter.
// Otherwise it returns the length of the plain-letter tail of s plus one.
func (m *Model) OverlapLength(s []rune) int {
	tail := 0
	for i := len(s) - 1; i >= 0; i-- {
		if !m.letters.Contains(s[i]) {
			return tail + 1
		}
		tail++
	}
	return 0
}

// StrippableLength is OverlapLength of the phrase node stands for.
func (m *Model) StrippableLength(node NodeID) int {
	return m.OverlapLength(m.tree.AncestorString(node))
}

// Output returns the reconstructed text, primed symbols excluded. The slice
// aliases the model's buffer.
func (m *Model) Output() []rune {
	return m.out[m.primed:]
}
