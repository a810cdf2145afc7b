package wzip

import "errors"

// Codec errors. Decoding wraps them with context, test with errors.Is.
var (
	// ErrUnknownSequence means a symbol sequence has no node in the tree.
	ErrUnknownSequence = errors.New("wzip: unknown sequence")

	// ErrEndOfStream means the token text ended before a delimiter.
	ErrEndOfStream = errors.New("wzip: end of stream")

	// ErrTruncatedStream means the token text ended inside a token, or
	// right after a back-reference whose correction never arrived.
	ErrTruncatedStream = errors.New("wzip: truncated stream")

	// ErrMalformedReference means a numeral names a node that does not exist.
	ErrMalformedReference = errors.New("wzip: malformed reference")

	// ErrMalformedToken means a numeral ended on an unknown delimiter.
	ErrMalformedToken = errors.New("wzip: malformed token")

	// ErrInvalidOptions means the codec parameters cannot work together.
	ErrInvalidOptions = errors.New("wzip: invalid options")
)
