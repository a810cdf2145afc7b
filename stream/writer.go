package stream

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Neumenon/wzip/wzip"
)

// Writer writes @wz frames to an io.Writer.
// It is not safe for concurrent use.
type Writer struct {
	w       io.Writer
	codec   wzip.Options
	withCRC bool
	level   zstd.EncoderLevel
	zenc    *zstd.Encoder // nil unless compression is on
	id      uuid.UUID
	seq     uint64
	log     *zap.Logger
	closed  bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCodecOptions sets the options WriteText encodes with.
func WithCodecOptions(opts wzip.Options) WriterOption {
	return func(w *Writer) {
		w.codec = opts
	}
}

// WithCRC adds a CRC-32 of the payload to every frame.
func WithCRC() WriterOption {
	return func(w *Writer) {
		w.withCRC = true
	}
}

// WithCompression zstd-compresses the token text of every frame.
func WithCompression(level zstd.EncoderLevel) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// WithStreamID sets the stream id (default: a random UUID).
func WithStreamID(id uuid.UUID) WriterOption {
	return func(w *Writer) {
		w.id = id
	}
}

// WithLogger sets the writer's logger (default: no-op).
func WithLogger(log *zap.Logger) WriterOption {
	return func(w *Writer) {
		w.log = log
	}
}

// NewWriter creates a frame writer for a new stream.
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	writer := &Writer{
		w:   w,
		id:  uuid.New(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(writer)
	}
	if err := writer.codec.Validate(); err != nil {
		return nil, err
	}
	if writer.level != 0 {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(writer.level))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		writer.zenc = enc
	}
	if writer.codec.Logger == nil {
		writer.codec.Logger = writer.log
	}
	return writer, nil
}

// ID returns the stream id.
func (w *Writer) ID() uuid.UUID {
	return w.id
}

// WriteText encodes text as one frame and writes it.
func (w *Writer) WriteText(text string) (*Frame, error) {
	if w.closed {
		return nil, ErrWriterClosed
	}

	var sb strings.Builder
	if _, err := wzip.CompressTo(&sb, text, w.codec); err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", w.seq, err)
	}
	payload := []byte(sb.String())

	digest := TextDigest(text)
	f := &Frame{
		Version: Version,
		ID:      w.id,
		Seq:     w.seq,
		Symbols: utf8.RuneCountInString(text),
		Digest:  &digest,
	}
	if w.codec.NoElision {
		f.Flags |= FlagNoElision
	}
	if w.zenc != nil {
		payload = w.zenc.EncodeAll(payload, make([]byte, 0, len(payload)))
		f.Flags |= FlagCompressed
	}
	f.Payload = payload

	if err := w.WriteFrame(f); err != nil {
		return nil, err
	}
	w.seq++

	w.log.Debug("frame written",
		zap.Stringer("id", f.ID),
		zap.Uint64("seq", f.Seq),
		zap.Int("symbols", f.Symbols),
		zap.Int("tokenBytes", sb.Len()),
		zap.Int("len", len(f.Payload)),
	)
	return f, nil
}

// WriteFrame writes a single frame as given.
//
// Format:
//
//	@wz{v=1 id=UUID seq=N len=N sym=N [elide=false] [zstd=true] [crc=X] [digest=blake3:X] [final=true]}\n
//	<payload bytes>\n
func (w *Writer) WriteFrame(f *Frame) error {
	var header strings.Builder
	header.WriteString("@wz{")

	header.WriteString("v=")
	if f.Version == 0 {
		header.WriteByte('1')
	} else {
		header.WriteString(strconv.Itoa(int(f.Version)))
	}

	header.WriteString(" id=")
	header.WriteString(f.ID.String())

	header.WriteString(" seq=")
	header.WriteString(strconv.FormatUint(f.Seq, 10))

	header.WriteString(" len=")
	header.WriteString(strconv.Itoa(len(f.Payload)))

	header.WriteString(" sym=")
	header.WriteString(strconv.Itoa(f.Symbols))

	if f.Flags&FlagNoElision != 0 {
		header.WriteString(" elide=false")
	}
	if f.IsCompressed() {
		header.WriteString(" zstd=true")
	}

	crc := f.CRC
	if crc == nil && w.withCRC && len(f.Payload) > 0 {
		computed := ComputeCRC(f.Payload)
		crc = &computed
	}
	if crc != nil {
		fmt.Fprintf(&header, " crc=%08x", *crc)
	}

	if f.Digest != nil {
		header.WriteString(" digest=blake3:")
		header.WriteString(DigestToHex(*f.Digest))
	}

	if f.IsFinal() {
		header.WriteString(" final=true")
	}

	header.WriteString("}\n")

	if _, err := io.WriteString(w.w, header.String()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(f.Payload) > 0 {
		if _, err := w.w.Write(f.Payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}

// Close ends the stream with an empty final frame and releases the
// compressor. Further calls are no-ops.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.zenc != nil {
		defer w.zenc.Close()
	}

	err := w.WriteFrame(&Frame{
		Version: Version,
		ID:      w.id,
		Seq:     w.seq,
		Flags:   FlagFinal,
	})
	if err != nil {
		return err
	}
	w.log.Debug("stream closed", zap.Stringer("id", w.id), zap.Uint64("frames", w.seq))
	return nil
}
