// Package errs defines the sentinel errors returned by gridfile.
//
// Callers classify failures with errors.Is; call sites wrap these sentinels
// with fmt.Errorf("%w: ...") to attach detail without losing the identity.
package errs

import "errors"

var (
	// ErrInvalidFormat indicates the file header is missing, truncated, or
	// carries an unknown magic/mode tag.
	ErrInvalidFormat = errors.New("invalid file format")

	// ErrInvalidTrailer indicates the trailer of a trailer-addressed file is
	// malformed: bad checksum or a root pointer outside the file.
	ErrInvalidTrailer = errors.New("invalid file trailer")

	// ErrNotInitialized indicates an accessor was used on a reader that was
	// never opened or has already been closed.
	ErrNotInitialized = errors.New("reader not initialized")

	// ErrDimensionMismatch indicates the rank of a read request does not
	// match the variable's rank.
	ErrDimensionMismatch = errors.New("dimension count mismatch")

	// ErrRangeOutOfBounds indicates a requested range is inverted or exceeds
	// the variable's extent along its dimension.
	ErrRangeOutOfBounds = errors.New("range out of bounds")

	// ErrBufferTooSmall indicates a caller-supplied destination buffer cannot
	// hold the requested extent.
	ErrBufferTooSmall = errors.New("destination buffer too small")

	// ErrIndexOutOfRange indicates a child index at or beyond the child count.
	ErrIndexOutOfRange = errors.New("child index out of range")

	// ErrDecodeFailed indicates a corrupt or truncated metadata record,
	// scalar payload, or compressed chunk.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrDataTypeMismatch indicates the requested element type does not match
	// the variable's data type.
	ErrDataTypeMismatch = errors.New("data type mismatch")
)
