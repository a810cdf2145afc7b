package wzip

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultNumerals is the numeral alphabet used unless a profile says
// otherwise: digits, lower case, upper case, then punctuation (base 89).
const DefaultNumerals = "0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	".:,;!%&/()=@${[]}^~'*<>|-`\\"

// DefaultAlphabet is the Alphabet over DefaultNumerals.
var DefaultAlphabet = MustAlphabet(DefaultNumerals)

// Alphabet renders node ids as positional numerals over a fixed, ordered set
// of symbols. The first symbol is the zero digit and doubles as the root
// token.
type Alphabet struct {
	digits []rune
	index  map[rune]uint64
}

// NewAlphabet builds an alphabet from an ordered symbol string.
// It needs at least two symbols and rejects duplicates.
func NewAlphabet(symbols string) (*Alphabet, error) {
	if !utf8.ValidString(symbols) {
		return nil, fmt.Errorf("%w: numeral alphabet is not valid UTF-8", ErrInvalidOptions)
	}
	digits := []rune(symbols)
	if len(digits) < 2 {
		return nil, fmt.Errorf("%w: numeral alphabet needs at least 2 symbols, got %d", ErrInvalidOptions, len(digits))
	}
	index := make(map[rune]uint64, len(digits))
	for i, r := range digits {
		if _, dup := index[r]; dup {
			return nil, fmt.Errorf("%w: numeral symbol %q repeats", ErrInvalidOptions, r)
		}
		index[r] = uint64(i)
	}
	return &Alphabet{digits: digits, index: index}, nil
}

// MustAlphabet is NewAlphabet that panics on error.
func MustAlphabet(symbols string) *Alphabet {
	a, err := NewAlphabet(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// Base returns the number of symbols in the alphabet.
func (a *Alphabet) Base() int {
	return len(a.digits)
}

// Symbols returns the alphabet in digit order.
func (a *Alphabet) Symbols() string {
	return string(a.digits)
}

// Contains reports whether r is a numeral symbol.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Format returns the numeral for id. Format(Root) is the zero digit.
func (a *Alphabet) Format(id NodeID) string {
	return string(a.AppendFormat(nil, id))
}

// AppendFormat appends the numeral for id to dst.
func (a *Alphabet) AppendFormat(dst []byte, id NodeID) []byte {
	if id == Root {
		return utf8.AppendRune(dst, a.digits[0])
	}
	// 64 digits covers uint64 in the smallest base.
	var buf [64]rune
	i := len(buf)
	base := uint64(len(a.digits))
	for v := uint64(id); v > 0; v /= base {
		i--
		buf[i] = a.digits[v%base]
	}
	for _, r := range buf[i:] {
		dst = utf8.AppendRune(dst, r)
	}
	return dst
}

// Width returns the number of symbols Format(id) produces.
func (a *Alphabet) Width(id NodeID) int {
	n := 1
	base := uint64(len(a.digits))
	for v := uint64(id) / base; v > 0; v /= base {
		n++
	}
	return n
}

// Value parses a numeral back to the id it denotes. The empty numeral
// denotes Root.
func (a *Alphabet) Value(numeral string) (NodeID, error) {
	base := uint64(len(a.digits))
	var v uint64
	for _, r := range numeral {
		d, ok := a.index[r]
		if !ok {
			return 0, fmt.Errorf("%w: %q is not a numeral symbol", ErrMalformedReference, r)
		}
		if v > (math.MaxUint64-d)/base {
			return 0, fmt.Errorf("%w: numeral %q overflows", ErrMalformedReference, numeral)
		}
		v = v*base + d
	}
	return NodeID(v), nil
}

// ReadNumeral reads symbols from r while they belong to the alphabet and
// returns them together with the first symbol that does not (the
// delimiter). The numeral may be empty. If r runs out first, the partial
// numeral is returned with ErrEndOfStream.
func (a *Alphabet) ReadNumeral(r io.RuneReader) (string, rune, error) {
	var sb strings.Builder
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			return sb.String(), 0, ErrEndOfStream
		}
		if err != nil {
			return sb.String(), 0, fmt.Errorf("read numeral: %w", err)
		}
		if !a.Contains(c) {
			return sb.String(), c, nil
		}
		sb.WriteRune(c)
	}
}
