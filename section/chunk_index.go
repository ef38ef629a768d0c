package section

import (
	"fmt"

	"github.com/arloliu/gridfile/endian"
	"github.com/arloliu/gridfile/errs"
)

// ChunkEntry is one row of a variable's chunk index table: the absolute file
// span of the compressed payload of one chunk. Entries are stored in
// row-major chunk-grid order.
type ChunkEntry struct {
	PayloadOffset uint64
	PayloadLength uint64
}

// ParseChunkEntry parses one chunk index entry.
func ParseChunkEntry(data []byte) (ChunkEntry, error) {
	if len(data) < ChunkEntrySize {
		return ChunkEntry{}, fmt.Errorf("%w: chunk index entry needs %d bytes, got %d", errs.ErrDecodeFailed, ChunkEntrySize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	return ChunkEntry{
		PayloadOffset: engine.Uint64(data[0:8]),
		PayloadLength: engine.Uint64(data[8:16]),
	}, nil
}

// Bytes serializes the entry. Used by test fixture builders.
func (e ChunkEntry) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, ChunkEntrySize)
	engine.PutUint64(b[0:8], e.PayloadOffset)
	engine.PutUint64(b[8:16], e.PayloadLength)

	return b
}
