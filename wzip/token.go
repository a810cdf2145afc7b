package wzip

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"
)

// Kind tells the decoder how to replay a token.
type Kind uint8

const (
	KindLiteral       Kind = iota // plain new phrase
	KindBackReference             // overlap-elided phrase, rewind owed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindBackReference:
		return "backref"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Token is one phrase emitted by the Encoder.
type Token struct {
	Node     NodeID // referenced node
	Literal  rune   // symbol following the node's phrase
	Kind     Kind
	Assigned NodeID // id the phrase received in the dictionary

	// Lead is the node the phrase shrinks to once the rewind is taken off.
	// It equals Node for literal tokens. LeadWidth is its numeral width.
	Lead      NodeID
	LeadWidth int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%d %q)", t.Kind, t.Node, t.Literal)
}

// AppendToken appends the token text of t to dst.
func (o Options) AppendToken(dst []byte, t Token) []byte {
	o = o.withDefaults()
	dst = o.Alphabet.AppendFormat(dst, t.Node)
	dst = utf8.AppendRune(dst, o.Delimiter(t.Kind))
	return utf8.AppendRune(dst, t.Literal)
}

// TokenWriter writes token text to an io.Writer.
type TokenWriter struct {
	w    *bufio.Writer
	opts Options
	buf  []byte
	n    int
}

// NewTokenWriter creates a writer for tokens produced under opts.
func NewTokenWriter(w io.Writer, opts Options) *TokenWriter {
	return &TokenWriter{
		w:    bufio.NewWriter(w),
		opts: opts.withDefaults(),
		buf:  make([]byte, 0, 16),
	}
}

// Write writes one token.
func (tw *TokenWriter) Write(t Token) error {
	tw.buf = tw.opts.AppendToken(tw.buf[:0], t)
	n, err := tw.w.Write(tw.buf)
	tw.n += n
	if err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Written returns the number of bytes written so far.
func (tw *TokenWriter) Written() int {
	return tw.n
}

// Flush writes any buffered data to the underlying writer.
func (tw *TokenWriter) Flush() error {
	return tw.w.Flush()
}
