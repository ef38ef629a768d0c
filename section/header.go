package section

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/gridfile/endian"
	"github.com/arloliu/gridfile/errs"
)

// Header is the fixed-size record at offset 0 of every gridfile.
//
// Layout (16 bytes, little-endian):
//
//	offset 0-3:  magic "GRD1"
//	offset 4:    mode tag (1=legacy, 2=trailer-addressed)
//	offset 5-7:  reserved, must be zero
//	offset 8-15: root metadata record size (legacy mode only, zero otherwise)
type Header struct {
	Mode     Mode
	RootSize uint64
}

// ParseHeader parses and validates the file header.
//
// Returns errs.ErrInvalidFormat if the input is shorter than HeaderSize, the
// magic does not match, or the mode tag is unknown.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", errs.ErrInvalidFormat, HeaderSize, len(data))
	}

	if [4]byte(data[0:4]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidFormat, data[0:4])
	}

	mode := Mode(data[4])
	if mode != ModeLegacy && mode != ModeTrailerAddressed {
		return Header{}, fmt.Errorf("%w: unknown mode tag %d", errs.ErrInvalidFormat, data[4])
	}

	engine := endian.GetLittleEndianEngine()
	h := Header{
		Mode:     mode,
		RootSize: engine.Uint64(data[8:16]),
	}

	if h.Mode == ModeLegacy && h.RootSize == 0 {
		return Header{}, fmt.Errorf("%w: legacy header with zero root size", errs.ErrInvalidFormat)
	}

	return h, nil
}

// Root returns the location of the root metadata record for a legacy file.
// Trailer-addressed files resolve the root through ParseTrailer instead.
func (h Header) Root() OffsetSize {
	return OffsetSize{Offset: HeaderSize, Size: h.RootSize}
}

// Bytes serializes the header. Used by test fixture builders; the library
// itself never writes files.
func (h Header) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, HeaderSize)
	copy(b[0:4], Magic[:])
	b[4] = byte(h.Mode)
	engine.PutUint64(b[8:16], h.RootSize)

	return b
}

// Trailer is the fixed-size record at fileSize-TrailerSize of a
// trailer-addressed file.
//
// Layout (24 bytes, little-endian):
//
//	offset 0-7:   root metadata record offset
//	offset 8-15:  root metadata record size
//	offset 16-23: xxHash64 checksum of bytes 0-15
type Trailer struct {
	Root OffsetSize
}

// ParseTrailer parses and validates the trailer of a trailer-addressed file.
//
// fileSize is the total addressable length of the backing store; the parsed
// root pointer must lie fully inside the file, in front of the trailer.
// Returns errs.ErrInvalidTrailer on a size, checksum, or pointer violation.
func ParseTrailer(data []byte, fileSize uint64) (Trailer, error) {
	if len(data) < TrailerSize {
		return Trailer{}, fmt.Errorf("%w: trailer needs %d bytes, got %d", errs.ErrInvalidTrailer, TrailerSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	sum := engine.Uint64(data[16:24])
	if got := xxhash.Sum64(data[0:16]); got != sum {
		return Trailer{}, fmt.Errorf("%w: checksum mismatch (stored %#x, computed %#x)", errs.ErrInvalidTrailer, sum, got)
	}

	t := Trailer{
		Root: OffsetSize{
			Offset: engine.Uint64(data[0:8]),
			Size:   engine.Uint64(data[8:16]),
		},
	}

	if t.Root.Size == 0 {
		return Trailer{}, fmt.Errorf("%w: zero root size", errs.ErrInvalidTrailer)
	}

	end := t.Root.Offset + t.Root.Size
	if end < t.Root.Offset || end > fileSize-TrailerSize {
		return Trailer{}, fmt.Errorf("%w: root pointer [%d, %d) outside file of %d bytes", errs.ErrInvalidTrailer, t.Root.Offset, end, fileSize)
	}

	return t, nil
}

// Bytes serializes the trailer with a freshly computed checksum. Used by test
// fixture builders.
func (t Trailer) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, TrailerSize)
	engine.PutUint64(b[0:8], t.Root.Offset)
	engine.PutUint64(b[8:16], t.Root.Size)
	engine.PutUint64(b[16:24], xxhash.Sum64(b[0:16]))

	return b
}
