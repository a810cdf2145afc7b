package wzip

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Default delimiters.
const (
	DefaultLiteralDelimiter       = ' '
	DefaultBackReferenceDelimiter = '_'
)

// Options configures a codec session. The zero value is usable: unset fields
// take the defaults below. Encoder and decoder must use equal options,
// except NoElision and Logger, which only affect the side that sets them.
type Options struct {
	// Alphabet renders node ids (default: DefaultAlphabet)
	Alphabet *Alphabet

	// LiteralDelimiter follows the numeral of a literal token (default: ' ')
	LiteralDelimiter rune

	// BackReferenceDelimiter follows the numeral of a back-reference (default: '_')
	BackReferenceDelimiter rune

	// Letters is the plain-letter class for overlap elision (default: DefaultLetters)
	Letters SymbolClass

	// NoElision makes the encoder emit literal tokens only
	NoElision bool

	// Primer seeds the dictionary with these symbols before the first token
	Primer string

	// Logger receives one debug summary per session (default: no-op)
	Logger *zap.Logger
}

// DefaultOptions returns the options of the reference token format.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Alphabet == nil {
		o.Alphabet = DefaultAlphabet
	}
	if o.LiteralDelimiter == 0 {
		o.LiteralDelimiter = DefaultLiteralDelimiter
	}
	if o.BackReferenceDelimiter == 0 {
		o.BackReferenceDelimiter = DefaultBackReferenceDelimiter
	}
	if o.Letters == nil {
		o.Letters = DefaultLetters
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Validate checks that the delimiters are distinct and outside the numeral
// alphabet.
func (o Options) Validate() error {
	o = o.withDefaults()
	lit, ref := o.LiteralDelimiter, o.BackReferenceDelimiter
	if lit == ref {
		return fmt.Errorf("%w: both delimiters are %q", ErrInvalidOptions, lit)
	}
	if o.Alphabet.Contains(lit) {
		return fmt.Errorf("%w: literal delimiter %q is a numeral symbol", ErrInvalidOptions, lit)
	}
	if o.Alphabet.Contains(ref) {
		return fmt.Errorf("%w: back-reference delimiter %q is a numeral symbol", ErrInvalidOptions, ref)
	}
	return nil
}

// Delimiter returns the delimiter written after the numeral of a kind.
func (o Options) Delimiter(k Kind) rune {
	if k == KindBackReference {
		if o.BackReferenceDelimiter == 0 {
			return DefaultBackReferenceDelimiter
		}
		return o.BackReferenceDelimiter
	}
	if o.LiteralDelimiter == 0 {
		return DefaultLiteralDelimiter
	}
	return o.LiteralDelimiter
}

// KindOf maps a delimiter back to its token kind.
func (o Options) KindOf(delim rune) (Kind, bool) {
	switch delim {
	case o.Delimiter(KindLiteral):
		return KindLiteral, true
	case o.Delimiter(KindBackReference):
		return KindBackReference, true
	default:
		return 0, false
	}
}

// PrimerFor returns the distinct symbols of text in code point order, ready
// for Options.Primer. The decoding side needs the same string.
func PrimerFor(text string) string {
	set := []rune(text)
	slices.Sort(set)
	return string(slices.Compact(set))
}

func (o Options) newModel() *Model {
	m := NewModel(o.Letters)
	if o.Primer != "" {
		m.Prime([]rune(o.Primer))
	}
	return m
}
