// Package wzip implements an adaptive phrase-tree text codec in the LZW family.
//
// Encoder and decoder grow the same append-only phrase tree while they run.
// Every phrase boundary becomes one token: a reference to a known node, a
// delimiter and one literal symbol. Node references are written as compact
// numerals over a fixed alphabet, so the compressed form is plain text.
//
// # Token Text
//
//	<numeral><delimiter><literal>
//
// The numeral is zero or more alphabet symbols (empty or "0" is the root).
// The delimiter is a space for a literal phrase and an underscore for a
// back-reference. The literal is exactly one symbol and may be anything,
// including a numeral or delimiter character.
//
// Compressing "aaaa" yields:
//
//	0 a1 a0 a
//
// # Overlap Elision
//
// When a matched phrase ends in a run of plain letters behind some other
// symbol (a digit, a space, punctuation), the encoder emits a back-reference
// and rewinds its input over the letter run. The decoder applies the same
// correction one token later, dropping the rewound symbols from its output.
// Words therefore enter the dictionary on their own instead of glued to the
// punctuation in front of them.
//
// # Sessions
//
// A dictionary lives for exactly one Encoder or Decoder. Both sides must use
// the same Options (alphabet, delimiters, letter class, primer); a shared
// Profile is the usual way to agree on them.
//
//	text := wzip.Compress("9hello9hello")
//	orig, err := wzip.Decompress(text)
package wzip
