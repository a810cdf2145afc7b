// Package stream implements the @wz text envelope for wzip token text.
//
// Each frame carries the tokens of one codec session, so frames decode
// independently. The envelope adds:
//   - Message boundaries via an exact payload length
//   - Stream identity (id) and ordering (seq)
//   - Integrity via optional CRC-32 of the payload
//   - End-to-end verification via an optional BLAKE3 digest of the text
//   - Optional zstd compression of the token text
//
// Headers are not part of the token text; the payload is passed to the
// wzip decoder unchanged.
package stream

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Version is the envelope version.
const Version uint8 = 1

// Flags for frames.
type Flags uint8

const (
	FlagFinal      Flags = 0x01 // End of stream for this id
	FlagCompressed Flags = 0x02 // Payload is zstd-compressed token text
	FlagNoElision  Flags = 0x04 // Encoder ran without overlap elision
)

// Frame is one envelope on the wire.
type Frame struct {
	Version uint8
	ID      uuid.UUID // stream id
	Seq     uint64    // per-stream, starts at 0, increases by one
	Symbols int       // length of the decoded text in symbols
	Payload []byte    // token text, possibly compressed

	CRC    *uint32   // CRC-32 of Payload as written (nil if absent)
	Digest *[32]byte // BLAKE3-256 of the decoded text (nil if absent)
	Flags  Flags
}

// HasCRC reports whether a CRC is present.
func (f *Frame) HasCRC() bool {
	return f.CRC != nil
}

// HasDigest reports whether a text digest is present.
func (f *Frame) HasDigest() bool {
	return f.Digest != nil
}

// IsFinal reports whether this is the last frame of its stream.
func (f *Frame) IsFinal() bool {
	return f.Flags&FlagFinal != 0
}

// IsCompressed reports whether the payload is zstd-compressed.
func (f *Frame) IsCompressed() bool {
	return f.Flags&FlagCompressed != 0
}

// MaxPayloadSize is the default maximum payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// ErrWriterClosed is returned by writes after Close.
var ErrWriterClosed = errors.New("wz: writer closed")

// ParseError reports a malformed frame.
type ParseError struct {
	Reason string
	Offset int64
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("wz: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("wz: %s", e.Reason)
}

// CRCMismatchError is returned when CRC verification fails.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("wz: CRC mismatch: expected %08x, got %08x", e.Expected, e.Got)
}

// DigestMismatchError is returned when the decoded text does not hash to
// the frame's digest.
type DigestMismatchError struct {
	Expected [32]byte
	Got      [32]byte
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("wz: digest mismatch: expected %s, got %s",
		DigestToHex(e.Expected), DigestToHex(e.Got))
}

// SequenceError is returned when a frame is out of order within its stream.
type SequenceError struct {
	ID       uuid.UUID
	Expected uint64
	Got      uint64
	Final    bool // the stream had already ended
}

func (e *SequenceError) Error() string {
	if e.Final {
		return fmt.Sprintf("wz: frame seq=%d after final frame of stream %s", e.Got, e.ID)
	}
	return fmt.Sprintf("wz: stream %s: expected seq=%d, got %d", e.ID, e.Expected, e.Got)
}
