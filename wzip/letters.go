package wzip

import (
	"strings"
	"unicode"
)

// DefaultLetterSet lists the plain letters overlap elision recognizes by
// default, in both cases.
const DefaultLetterSet = "abcdefghijklmnopqrstuvwxyzåäö" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZÅÄÖ"

// SymbolClass decides which symbols count as plain letters for overlap
// elision. Encoder and decoder must agree on it.
type SymbolClass interface {
	Contains(r rune) bool
}

// LetterSet is a SymbolClass over an explicit set of symbols.
type LetterSet struct {
	set map[rune]struct{}
}

// NewLetterSet returns a class containing exactly the runes of letters.
func NewLetterSet(letters string) *LetterSet {
	set := make(map[rune]struct{}, len(letters))
	for _, r := range letters {
		set[r] = struct{}{}
	}
	return &LetterSet{set: set}
}

// Contains reports whether r is in the set.
func (s *LetterSet) Contains(r rune) bool {
	_, ok := s.set[r]
	return ok
}

// DefaultLetters is the class over DefaultLetterSet.
var DefaultLetters SymbolClass = NewLetterSet(DefaultLetterSet)

type unicodeLetters struct{}

func (unicodeLetters) Contains(r rune) bool { return unicode.IsLetter(r) }

// UnicodeLetters treats every Unicode letter as plain.
var UnicodeLetters SymbolClass = unicodeLetters{}

// letterClassByName resolves the letters field of a Profile. The names
// "default" and "unicode" are reserved in any letter case.
func letterClassByName(name string) SymbolClass {
	switch strings.ToLower(name) {
	case "", "default":
		return DefaultLetters
	case "unicode":
		return UnicodeLetters
	default:
		return NewLetterSet(name)
	}
}
