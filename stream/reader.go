package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Neumenon/wzip/wzip"
)

// Reader reads @wz frames from an io.Reader.
// It is not safe for concurrent use.
type Reader struct {
	r          *bufio.Reader
	maxPayload int
	verifyCRC  bool
	codec      wzip.Options
	log        *zap.Logger
	cursor     *Cursor
	zdec       *zstd.Decoder // created on the first compressed frame
	offset     int64
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum payload size (default: 64 MiB). It also
// caps the size of a decompressed payload.
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// WithCRCVerification turns CRC verification on or off (default: on).
func WithCRCVerification(on bool) ReaderOption {
	return func(r *Reader) {
		r.verifyCRC = on
	}
}

// WithReaderCodecOptions sets the options ReadText decodes with.
func WithReaderCodecOptions(opts wzip.Options) ReaderOption {
	return func(r *Reader) {
		r.codec = opts
	}
}

// WithReaderLogger sets the reader's logger (default: no-op).
func WithReaderLogger(log *zap.Logger) ReaderOption {
	return func(r *Reader) {
		r.log = log
	}
}

// NewReader creates a frame reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: MaxPayloadSize,
		verifyCRC:  true,
		log:        zap.NewNop(),
		cursor:     NewCursor(),
	}
	for _, opt := range opts {
		opt(reader)
	}
	if reader.codec.Logger == nil {
		reader.codec.Logger = reader.log
	}
	return reader
}

// Cursor returns the per-stream state of the frames read so far.
func (r *Reader) Cursor() *Cursor {
	return r.cursor
}

// Next reads and returns the next frame. The payload is returned as
// written; use Text to decode it.
// Returns io.EOF when no more frames are available.
func (r *Reader) Next() (*Frame, error) {
	start := r.offset
	headerLine, err := r.r.ReadString('\n')
	r.offset += int64(len(headerLine))
	if err != nil {
		if err == io.EOF && headerLine == "" {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	frame, payloadLen, perr := parseHeader(headerLine)
	if perr != nil {
		perr.Offset = start
		return nil, perr
	}

	if payloadLen > r.maxPayload {
		return nil, &ParseError{Reason: fmt.Sprintf("payload too large: %d > %d", payloadLen, r.maxPayload), Offset: start}
	}
	if payloadLen > 0 {
		frame.Payload = make([]byte, payloadLen)
		n, err := io.ReadFull(r.r, frame.Payload)
		r.offset += int64(n)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
	}

	// Trailing newline, optional at EOF.
	if b, err := r.r.ReadByte(); err == nil {
		if b == '\n' {
			r.offset++
		} else {
			r.r.UnreadByte()
		}
	}

	if r.verifyCRC && frame.CRC != nil {
		if computed := ComputeCRC(frame.Payload); computed != *frame.CRC {
			return nil, &CRCMismatchError{Expected: *frame.CRC, Got: computed}
		}
	}

	if err := r.cursor.Observe(frame); err != nil {
		return nil, err
	}

	r.log.Debug("frame read",
		zap.Stringer("id", frame.ID),
		zap.Uint64("seq", frame.Seq),
		zap.Int("len", len(frame.Payload)),
		zap.Bool("final", frame.IsFinal()),
	)
	return frame, nil
}

// Text decodes the payload of f and verifies it against the frame's
// symbol count and digest.
func (r *Reader) Text(f *Frame) (string, error) {
	payload := f.Payload
	if f.IsCompressed() {
		if r.zdec == nil {
			dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(r.maxPayload)))
			if err != nil {
				return "", fmt.Errorf("zstd decoder: %w", err)
			}
			r.zdec = dec
		}
		out, err := r.zdec.DecodeAll(payload, nil)
		if err != nil {
			return "", fmt.Errorf("frame %d: inflate: %w", f.Seq, err)
		}
		payload = out
	}

	seq, err := wzip.DecodeWithOptions(bytes.NewReader(payload), r.codec)
	if err != nil {
		return "", fmt.Errorf("frame %d: %w", f.Seq, err)
	}
	text := string(slices.Collect(seq))

	if n := utf8.RuneCountInString(text); n != f.Symbols {
		return "", &ParseError{Reason: fmt.Sprintf("frame %d: decoded %d symbols, header says %d", f.Seq, n, f.Symbols), Offset: -1}
	}
	if f.Digest != nil {
		if got := TextDigest(text); got != *f.Digest {
			return "", &DigestMismatchError{Expected: *f.Digest, Got: got}
		}
	}
	return text, nil
}

// ReadText reads the next frame and returns its decoded text.
// Returns io.EOF at the end of input or at an empty final frame.
func (r *Reader) ReadText() (string, *Frame, error) {
	f, err := r.Next()
	if err != nil {
		return "", nil, err
	}
	if f.IsFinal() && len(f.Payload) == 0 {
		return "", f, io.EOF
	}
	text, err := r.Text(f)
	if err != nil {
		r.log.Debug("frame rejected", zap.Stringer("id", f.ID), zap.Uint64("seq", f.Seq), zap.Error(err))
		return "", f, err
	}
	return text, f, nil
}

// ReadAll reads all frames until EOF.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// Close releases the decompressor.
func (r *Reader) Close() {
	if r.zdec != nil {
		r.zdec.Close()
		r.zdec = nil
	}
}

// parseHeader parses the @wz{...} header line.
func parseHeader(line string) (*Frame, int, *ParseError) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "@wz{") {
		return nil, 0, &ParseError{Reason: "expected @wz{"}
	}
	if !strings.HasSuffix(line, "}") {
		return nil, 0, &ParseError{Reason: "missing closing }"}
	}
	content := line[len("@wz{") : len(line)-1]

	frame := &Frame{Version: Version}
	payloadLen := 0
	hasID := false

	for _, pair := range tokenize(content) {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		switch key {
		case "v":
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid version"}
			}
			if uint8(v) != Version {
				return nil, 0, &ParseError{Reason: "unsupported version " + val}
			}
			frame.Version = uint8(v)

		case "id":
			id, err := uuid.Parse(val)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid id: " + val}
			}
			frame.ID = id
			hasID = true

		case "seq":
			seq, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid seq"}
			}
			frame.Seq = seq

		case "len":
			l, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid len"}
			}
			payloadLen = int(l)

		case "sym":
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid sym"}
			}
			frame.Symbols = int(n)

		case "elide":
			if !parseBool(val) {
				frame.Flags |= FlagNoElision
			}

		case "zstd":
			if parseBool(val) {
				frame.Flags |= FlagCompressed
			}

		case "crc":
			crc, ok := parseCRC(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid crc: " + val}
			}
			frame.CRC = &crc

		case "digest":
			d, ok := HexToDigest(strings.TrimPrefix(val, "blake3:"))
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid digest: " + val}
			}
			frame.Digest = &d

		case "final":
			if parseBool(val) {
				frame.Flags |= FlagFinal
			}
		}
	}

	if !hasID {
		return nil, 0, &ParseError{Reason: "missing id"}
	}
	return frame, payloadLen, nil
}

// tokenize splits key=value pairs separated by spaces or commas.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(c rune) bool {
		return c == ' ' || c == ',' || c == '\t'
	})
}

func parseBool(val string) bool {
	return val == "true" || val == "1"
}

// parseCRC parses "crc32:XXXXXXXX" or "XXXXXXXX".
func parseCRC(val string) (uint32, bool) {
	val = strings.TrimPrefix(val, "crc32:")
	if len(val) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(val, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
