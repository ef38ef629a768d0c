// Package endian provides byte order utilities for binary decoding.
//
// The gridfile on-disk format is little-endian throughout; this package
// exists so the section parsers and codecs share one engine value instead of
// referencing binary.LittleEndian directly, and so tests can assert against
// the same engine the parsers use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface. It is satisfied by binary.LittleEndian and
// binary.BigEndian, so it stays fully compatible with standard library code.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine. This is the byte
// order of every fixed-width field in the gridfile format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
