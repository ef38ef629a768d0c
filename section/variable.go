package section

import (
	"fmt"
	"math"

	"github.com/arloliu/gridfile/endian"
	"github.com/arloliu/gridfile/errs"
	"github.com/arloliu/gridfile/format"
)

// Variable is the parsed form of one variable metadata record.
//
// Layout (little-endian):
//
//	offset 0:     data type tag
//	offset 1:     compression tag
//	offset 2-3:   reserved, must be zero
//	offset 4-11:  scale factor (float64)
//	offset 12-19: add offset (float64)
//	offset 20-23: dimension count
//	offset 24-27: chunk dimension count
//	then:         dimension extents (uint64 each)
//	then:         chunk shape extents (uint64 each)
//	then:         name length (uint16) + UTF-8 name bytes
//	then:         child count (uint32) + child (offset, size) pairs
//	then, arrays:  chunk index table offset (uint64)
//	then, scalars: payload (fixed-width value, or uint16 length + UTF-8)
type Variable struct {
	DataType    format.DataType
	Compression format.CompressionType
	ScaleFactor float64
	AddOffset   float64
	Dimensions  []uint64
	ChunkShape  []uint64
	Name        string
	Children    []OffsetSize

	// ChunkIndexOffset is the absolute file offset of the chunk index table.
	// Only meaningful for array variables.
	ChunkIndexOffset uint64

	// ScalarPayload holds the raw scalar payload bytes (fixed-width
	// little-endian value, or UTF-8 for strings). Nil for array variables.
	ScalarPayload []byte
}

// cursor walks a metadata record with bounds checking. Every take reports
// truncation as errs.ErrDecodeFailed so callers fail loudly on corrupt input.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || len(c.data)-c.pos < n {
		return nil, fmt.Errorf("%w: metadata record truncated at byte %d (need %d more)", errs.ErrDecodeFailed, c.pos, n)
	}

	b := c.data[c.pos : c.pos+n]
	c.pos += n

	return b, nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}

	return endian.GetLittleEndianEngine().Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}

	return endian.GetLittleEndianEngine().Uint32(b), nil
}

func (c *cursor) uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}

	return endian.GetLittleEndianEngine().Uint64(b), nil
}

// ParseVariable parses one variable metadata record.
//
// The input must span the whole record; the parse owns nothing beyond it and
// copies the name, so the caller may release the buffer afterwards (scalar
// payloads alias the input and are copied by the caller if it outlives it).
//
// Returns errs.ErrDecodeFailed on truncation or any structural violation,
// including the array invariant dimCount == chunkDimCount.
func ParseVariable(data []byte) (*Variable, error) {
	if len(data) < VariablePrefixSize {
		return nil, fmt.Errorf("%w: metadata record needs at least %d bytes, got %d", errs.ErrDecodeFailed, VariablePrefixSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	v := &Variable{
		DataType:    format.DataType(data[0]),
		Compression: format.CompressionType(data[1]),
		ScaleFactor: math.Float64frombits(engine.Uint64(data[4:12])),
		AddOffset:   math.Float64frombits(engine.Uint64(data[12:20])),
	}

	if v.DataType == format.TypeNone || v.DataType > format.TypeStringArray {
		return nil, fmt.Errorf("%w: unknown data type tag %d", errs.ErrDecodeFailed, data[0])
	}
	if !v.Compression.Valid() {
		return nil, fmt.Errorf("%w: unknown compression tag %d", errs.ErrDecodeFailed, data[1])
	}

	dimCount := engine.Uint32(data[20:24])
	chunkDimCount := engine.Uint32(data[24:28])

	if v.DataType.IsArray() {
		if dimCount == 0 || dimCount != chunkDimCount {
			return nil, fmt.Errorf("%w: array variable with %d dimensions and %d chunk dimensions", errs.ErrDecodeFailed, dimCount, chunkDimCount)
		}
	} else if dimCount != 0 || chunkDimCount != 0 {
		return nil, fmt.Errorf("%w: scalar variable with %d dimensions", errs.ErrDecodeFailed, dimCount)
	}

	cur := &cursor{data: data, pos: VariablePrefixSize}

	var err error
	if v.Dimensions, err = readExtents(cur, dimCount); err != nil {
		return nil, err
	}
	if v.ChunkShape, err = readExtents(cur, chunkDimCount); err != nil {
		return nil, err
	}
	for i, extent := range v.ChunkShape {
		if extent == 0 || v.Dimensions[i] == 0 {
			return nil, fmt.Errorf("%w: zero extent in dimension %d", errs.ErrDecodeFailed, i)
		}
	}

	nameLen, err := cur.uint16()
	if err != nil {
		return nil, err
	}
	nameBytes, err := cur.take(int(nameLen))
	if err != nil {
		return nil, err
	}
	v.Name = string(nameBytes)

	childCount, err := cur.uint32()
	if err != nil {
		return nil, err
	}
	if int(childCount) > (len(data)-cur.pos)/OffsetSizeLen {
		return nil, fmt.Errorf("%w: child table claims %d entries beyond record end", errs.ErrDecodeFailed, childCount)
	}
	v.Children = make([]OffsetSize, childCount)
	for i := range v.Children {
		if v.Children[i].Offset, err = cur.uint64(); err != nil {
			return nil, err
		}
		if v.Children[i].Size, err = cur.uint64(); err != nil {
			return nil, err
		}
	}

	if v.DataType.IsArray() {
		if v.ChunkIndexOffset, err = cur.uint64(); err != nil {
			return nil, err
		}

		return v, nil
	}

	payloadLen := v.DataType.Size()
	if v.DataType == format.TypeString {
		strLen, serr := cur.uint16()
		if serr != nil {
			return nil, serr
		}
		payloadLen = int(strLen)
	}
	if v.ScalarPayload, err = cur.take(payloadLen); err != nil {
		return nil, err
	}

	return v, nil
}

func readExtents(cur *cursor, count uint32) ([]uint64, error) {
	if count == 0 {
		return nil, nil
	}

	extents := make([]uint64, count)
	for i := range extents {
		var err error
		if extents[i], err = cur.uint64(); err != nil {
			return nil, err
		}
	}

	return extents, nil
}

// Bytes serializes the record. Used by test fixture builders; the library
// itself never writes files.
func (v *Variable) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, VariablePrefixSize)
	b[0] = byte(v.DataType)
	b[1] = byte(v.Compression)
	engine.PutUint64(b[4:12], math.Float64bits(v.ScaleFactor))
	engine.PutUint64(b[12:20], math.Float64bits(v.AddOffset))
	engine.PutUint32(b[20:24], uint32(len(v.Dimensions)))
	engine.PutUint32(b[24:28], uint32(len(v.ChunkShape)))

	for _, d := range v.Dimensions {
		b = engine.AppendUint64(b, d)
	}
	for _, c := range v.ChunkShape {
		b = engine.AppendUint64(b, c)
	}

	b = engine.AppendUint16(b, uint16(len(v.Name)))
	b = append(b, v.Name...)

	b = engine.AppendUint32(b, uint32(len(v.Children)))
	for _, child := range v.Children {
		b = engine.AppendUint64(b, child.Offset)
		b = engine.AppendUint64(b, child.Size)
	}

	if v.DataType.IsArray() {
		return engine.AppendUint64(b, v.ChunkIndexOffset)
	}

	if v.DataType == format.TypeString {
		b = engine.AppendUint16(b, uint16(len(v.ScalarPayload)))
	}

	return append(b, v.ScalarPayload...)
}
