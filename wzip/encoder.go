package wzip

import (
	"io"
	"iter"
	"strings"

	"go.uber.org/zap"
)

// Encoder turns text into tokens, one phrase boundary at a time.
// It owns its Model and is not safe for concurrent use.
type Encoder struct {
	opts    Options
	model   *Model
	input   []rune
	cursor  int
	current NodeID
	match   []rune
	done    bool

	tokens   int
	backrefs int
}

// NewEncoder creates an encoder session over input.
func NewEncoder(input string, opts Options) (*Encoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Encoder{
		opts:    opts,
		model:   opts.newModel(),
		input:   []rune(input),
		current: Root,
	}, nil
}

// Model returns the encoder's model.
func (e *Encoder) Model() *Model {
	return e.model
}

// Next returns the next token, or false once the input is used up.
func (e *Encoder) Next() (Token, bool) {
	tree := e.model.Tree()
	for e.cursor < len(e.input) {
		sym := e.input[e.cursor]
		if child, ok := tree.LookupEdge(e.current, sym); ok {
			e.current = child
			e.match = append(e.match, sym)
			e.cursor++
			continue
		}

		// Phrase boundary.
		t := Token{Node: e.current, Literal: sym, Kind: KindLiteral, Lead: e.current}
		if !e.opts.NoElision {
			if rewind := e.model.StrippableLength(e.current); rewind > 0 {
				t.Kind = KindBackReference
				e.cursor -= rewind
				// A prefix of a matched path always has a node.
				if lead, err := tree.LookupNode(e.match[:len(e.match)-rewind]); err == nil {
					t.Lead = lead
				}
			}
		}
		e.current = Root
		e.match = e.match[:0]
		e.cursor++
		return e.emit(t), true
	}

	// Input ended inside a match: flush it as the phrase it already is.
	if e.current != Root {
		parent, sym, _ := tree.Parent(e.current)
		e.current = Root
		e.match = e.match[:0]
		return e.emit(Token{Node: parent, Literal: sym, Kind: KindLiteral, Lead: parent}), true
	}

	if !e.done {
		e.done = true
		e.opts.Logger.Debug("encode complete",
			zap.Int("symbols", len(e.input)),
			zap.Int("tokens", e.tokens),
			zap.Int("backrefs", e.backrefs),
			zap.Int("nodes", tree.Len()),
		)
	}
	return Token{}, false
}

func (e *Encoder) emit(t Token) Token {
	t.Assigned = e.model.Apply(t.Node, t.Literal, t.Kind)
	t.LeadWidth = e.opts.Alphabet.Width(t.Lead)
	e.tokens++
	if t.Kind == KindBackReference {
		e.backrefs++
	}
	return t
}

// Tokens returns the remaining tokens as a single-pass sequence.
func (e *Encoder) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			t, ok := e.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

// Encode returns the tokens for input under DefaultOptions.
func Encode(input string) iter.Seq[Token] {
	e, _ := NewEncoder(input, Options{})
	return e.Tokens()
}

// EncodeWithOptions returns the tokens for input under opts.
func EncodeWithOptions(input string, opts Options) (iter.Seq[Token], error) {
	e, err := NewEncoder(input, opts)
	if err != nil {
		return nil, err
	}
	return e.Tokens(), nil
}

// Compress returns the token text for input under DefaultOptions.
func Compress(input string) string {
	s, _ := CompressWithOptions(input, Options{})
	return s
}

// CompressWithOptions returns the token text for input under opts.
func CompressWithOptions(input string, opts Options) (string, error) {
	var sb strings.Builder
	if _, err := CompressTo(&sb, input, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// CompressTo writes the token text for input to w and returns the number of
// bytes written.
func CompressTo(w io.Writer, input string, opts Options) (int, error) {
	e, err := NewEncoder(input, opts)
	if err != nil {
		return 0, err
	}
	tw := NewTokenWriter(w, e.opts)
	for t := range e.Tokens() {
		if err := tw.Write(t); err != nil {
			return tw.Written(), err
		}
	}
	if err := tw.Flush(); err != nil {
		return tw.Written(), err
	}
	return tw.Written(), nil
}
