package wzip

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Decoder replays token text into the original input.
// It owns its Model and is not safe for concurrent use.
type Decoder struct {
	opts  Options
	model *Model
	r     io.RuneReader
	err   error

	tokens   int
	backrefs int
}

// NewDecoder creates a decoder session reading token text from r.
func NewDecoder(r io.Reader, opts Options) (*Decoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &Decoder{
		opts:  opts,
		model: opts.newModel(),
		r:     rr,
	}, nil
}

// Model returns the decoder's model.
func (d *Decoder) Model() *Model {
	return d.model
}

// Next reads and applies one token. It returns io.EOF at the clean end of
// the stream. Errors are sticky: once Next fails, it keeps failing.
func (d *Decoder) Next() error {
	if d.err != nil {
		return d.err
	}
	d.err = d.next()
	return d.err
}

func (d *Decoder) next() error {
	numeral, delim, err := d.opts.Alphabet.ReadNumeral(d.r)
	switch {
	case errors.Is(err, ErrEndOfStream) && numeral == "":
		if p := d.model.Pending(); p > 0 {
			return fmt.Errorf("%w: stream ends owing a rewind of %d symbols", ErrTruncatedStream, p)
		}
		return io.EOF
	case errors.Is(err, ErrEndOfStream):
		return fmt.Errorf("%w: numeral %q at token %d has no delimiter", ErrTruncatedStream, numeral, d.tokens)
	case err != nil:
		return err
	}

	kind, ok := d.opts.KindOf(delim)
	if !ok {
		return fmt.Errorf("%w: delimiter %q after numeral %q at token %d", ErrMalformedToken, delim, numeral, d.tokens)
	}

	literal, _, err := d.r.ReadRune()
	if err == io.EOF {
		return fmt.Errorf("%w: token %d has no literal", ErrTruncatedStream, d.tokens)
	}
	if err != nil {
		return fmt.Errorf("read literal: %w", err)
	}

	node, err := d.opts.Alphabet.Value(numeral)
	if err != nil {
		return fmt.Errorf("token %d: %w", d.tokens, err)
	}
	if tree := d.model.Tree(); !tree.Contains(node) {
		return fmt.Errorf("%w: %q is node %d but only %d exist (token %d)",
			ErrMalformedReference, numeral, node, tree.Len(), d.tokens)
	}

	d.model.Apply(node, literal, kind)
	d.tokens++
	if kind == KindBackReference {
		d.backrefs++
	}
	return nil
}

// Decode reads the whole stream and returns the recovered symbols in order.
// Nothing is returned unless the entire stream decodes.
func (d *Decoder) Decode() (iter.Seq[rune], error) {
	for {
		err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			d.opts.Logger.Debug("decode failed", zap.Int("tokens", d.tokens), zap.Error(err))
			return nil, err
		}
	}
	d.opts.Logger.Debug("decode complete",
		zap.Int("tokens", d.tokens),
		zap.Int("backrefs", d.backrefs),
		zap.Int("nodes", d.model.Tree().Len()),
		zap.Int("symbols", len(d.model.Output())),
	)
	return slices.Values(d.model.Output()), nil
}

// Decode decodes token text from r under DefaultOptions.
func Decode(r io.Reader) (iter.Seq[rune], error) {
	return DecodeWithOptions(r, Options{})
}

// DecodeWithOptions decodes token text from r under opts.
func DecodeWithOptions(r io.Reader, opts Options) (iter.Seq[rune], error) {
	d, err := NewDecoder(r, opts)
	if err != nil {
		return nil, err
	}
	return d.Decode()
}

// Decompress decodes token text under DefaultOptions.
func Decompress(text string) (string, error) {
	return DecompressWithOptions(text, Options{})
}

// DecompressWithOptions decodes token text under opts.
func DecompressWithOptions(text string, opts Options) (string, error) {
	seq, err := DecodeWithOptions(strings.NewReader(text), opts)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for r := range seq {
		sb.WriteRune(r)
	}
	return sb.String(), nil
}
