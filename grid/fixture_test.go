package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gridfile/compress"
	"github.com/arloliu/gridfile/encoding"
	"github.com/arloliu/gridfile/endian"
	"github.com/arloliu/gridfile/format"
	"github.com/arloliu/gridfile/section"
)

// fixtureVar describes one variable of an in-memory test file. Array
// variables carry their full grid of values row-major in floats or ints
// depending on the element type; scalar variables carry a raw payload.
type fixtureVar struct {
	name     string
	dataType format.DataType
	comp     format.CompressionType
	scale    float64
	offset   float64
	dims     []uint64
	chunks   []uint64
	floats   []float64
	ints     []int64
	scalar   []byte
	children []*fixtureVar
}

// buildFixture assembles a complete file image for the given variable tree:
// header, metadata records, chunk payloads, chunk index tables, and (for
// trailer-addressed mode) the trailer.
func buildFixture(t *testing.T, mode section.Mode, root *fixtureVar) []byte {
	t.Helper()

	var vars []*fixtureVar
	var collect func(v *fixtureVar)
	collect = func(v *fixtureVar) {
		vars = append(vars, v)
		for _, c := range v.children {
			collect(c)
		}
	}
	collect(root)

	payloads := make(map[*fixtureVar][][]byte)
	for _, v := range vars {
		if v.dataType.IsArray() {
			payloads[v] = encodeFixtureChunks(t, v)
		}
	}

	// Record sizes are independent of the offsets they carry, so a first
	// serialization with placeholders fixes the layout.
	recordSize := make(map[*fixtureVar]uint64)
	for _, v := range vars {
		recordSize[v] = uint64(len(fixtureRecord(v, make(map[*fixtureVar]section.OffsetSize), nil).Bytes()))
	}

	recordLoc := make(map[*fixtureVar]section.OffsetSize)
	cur := uint64(section.HeaderSize)
	for _, v := range vars {
		recordLoc[v] = section.OffsetSize{Offset: cur, Size: recordSize[v]}
		cur += recordSize[v]
	}

	entries := make(map[*fixtureVar][]section.ChunkEntry)
	for _, v := range vars {
		for _, p := range payloads[v] {
			entries[v] = append(entries[v], section.ChunkEntry{PayloadOffset: cur, PayloadLength: uint64(len(p))})
			cur += uint64(len(p))
		}
	}

	indexOffset := make(map[*fixtureVar]uint64)
	for _, v := range vars {
		if v.dataType.IsArray() {
			indexOffset[v] = cur
			cur += uint64(len(entries[v])) * section.ChunkEntrySize
		}
	}

	file := section.Header{Mode: mode, RootSize: recordSize[root]}.Bytes()
	if mode == section.ModeTrailerAddressed {
		file = section.Header{Mode: mode}.Bytes()
	}
	for _, v := range vars {
		b := fixtureRecord(v, recordLoc, indexOffset).Bytes()
		require.Equal(t, recordSize[v], uint64(len(b)))
		file = append(file, b...)
	}
	for _, v := range vars {
		for _, p := range payloads[v] {
			file = append(file, p...)
		}
	}
	for _, v := range vars {
		for _, e := range entries[v] {
			file = append(file, e.Bytes()...)
		}
	}

	if mode == section.ModeTrailerAddressed {
		trailer := section.Trailer{Root: recordLoc[root]}
		file = append(file, trailer.Bytes()...)
	}

	return file
}

func fixtureRecord(v *fixtureVar, locs map[*fixtureVar]section.OffsetSize, indexes map[*fixtureVar]uint64) *section.Variable {
	rec := &section.Variable{
		DataType:         v.dataType,
		Compression:      v.comp,
		ScaleFactor:      v.scale,
		AddOffset:        v.offset,
		Dimensions:       v.dims,
		ChunkShape:       v.chunks,
		Name:             v.name,
		ChunkIndexOffset: indexes[v],
		ScalarPayload:    v.scalar,
	}
	for _, c := range v.children {
		rec.Children = append(rec.Children, locs[c])
	}

	return rec
}

// encodeFixtureChunks produces one payload per chunk, in linear chunk-grid
// order, applying the variable's forward transform.
func encodeFixtureChunks(t *testing.T, v *fixtureVar) [][]byte {
	t.Helper()

	g := newChunkGrid(v.dims, v.chunks)
	total := uint64(1)
	for _, gd := range g.gridDims {
		total *= gd
	}

	strides := make([]uint64, len(v.dims))
	stride := uint64(1)
	for i := len(v.dims) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= v.dims[i]
	}

	payloads := make([][]byte, 0, total)
	var coordBuf, shapeBuf []uint64
	for linear := uint64(0); linear < total; linear++ {
		coordBuf = g.coord(linear, coordBuf)
		shapeBuf = g.clampedShape(coordBuf, shapeBuf)
		payloads = append(payloads, encodeFixtureChunk(t, v, g, coordBuf, shapeBuf, strides))
	}

	return payloads
}

// chunkGlobalIndices lists the full-grid flat index of every element of the
// chunk, row-major over its clamped shape.
func chunkGlobalIndices(coord, shape, chunkShape, strides []uint64) []uint64 {
	count := uint64(1)
	for _, extent := range shape {
		count *= extent
	}

	out := make([]uint64, 0, count)
	local := make([]uint64, len(shape))
	for n := uint64(0); n < count; n++ {
		flat := uint64(0)
		for d := range shape {
			flat += (coord[d]*chunkShape[d] + local[d]) * strides[d]
		}
		out = append(out, flat)

		for d := len(local) - 1; d >= 0; d-- {
			local[d]++
			if local[d] < shape[d] {
				break
			}
			local[d] = 0
		}
	}

	return out
}

func encodeFixtureChunk(t *testing.T, v *fixtureVar, g chunkGrid, coord, shape, strides []uint64) []byte {
	t.Helper()

	indices := chunkGlobalIndices(coord, shape, v.chunks, strides)
	rows, width := encoding.BlockShape(shape)
	engine := endian.GetLittleEndianEngine()
	elem := v.dataType.Elem()

	switch v.comp {
	case format.CompressionDelta2DInt16, format.CompressionDelta2DInt16Log:
		q := make([]int64, len(indices))
		for i, flat := range indices {
			if v.comp == format.CompressionDelta2DInt16Log {
				q[i] = encoding.QuantizeLog(v.floats[flat], v.scale, v.offset)
			} else {
				q[i] = encoding.Quantize(v.floats[flat], v.scale, v.offset)
			}
		}
		encoding.Apply2DDelta(q, rows, width)

		return encoding.AppendResiduals(nil, q)

	case format.CompressionDelta2D:
		vals := make([]int64, len(indices))
		for i, flat := range indices {
			vals[i] = v.ints[flat]
		}
		encoding.Apply2DDelta(vals, rows, width)

		return encoding.AppendResiduals(nil, vals)

	case format.CompressionXor2D:
		if elem == format.TypeFloat32 {
			words := make([]uint32, len(indices))
			for i, flat := range indices {
				words[i] = math.Float32bits(float32(v.floats[flat]))
			}
			encoding.Apply2DXor32(words, rows, width)
			buf := make([]byte, 0, len(words)*4)
			for _, w := range words {
				buf = engine.AppendUint32(buf, w)
			}

			return buf
		}

		words := make([]uint64, len(indices))
		for i, flat := range indices {
			words[i] = math.Float64bits(v.floats[flat])
		}
		encoding.Apply2DXor64(words, rows, width)
		buf := make([]byte, 0, len(words)*8)
		for _, w := range words {
			buf = engine.AppendUint64(buf, w)
		}

		return buf

	default:
		raw := make([]byte, 0, len(indices)*elem.Size())
		for _, flat := range indices {
			raw = appendFixtureElem(raw, elem, v, flat)
		}

		codec, err := compress.GetCodec(v.comp)
		require.NoError(t, err)
		compressed, err := codec.Compress(raw)
		require.NoError(t, err)

		return compressed
	}
}

func appendFixtureElem(buf []byte, elem format.DataType, v *fixtureVar, flat uint64) []byte {
	engine := endian.GetLittleEndianEngine()

	switch elem {
	case format.TypeInt8:
		return append(buf, byte(int8(v.ints[flat])))
	case format.TypeUint8:
		return append(buf, byte(v.ints[flat]))
	case format.TypeInt16:
		return engine.AppendUint16(buf, uint16(int16(v.ints[flat])))
	case format.TypeUint16:
		return engine.AppendUint16(buf, uint16(v.ints[flat]))
	case format.TypeInt32:
		return engine.AppendUint32(buf, uint32(int32(v.ints[flat])))
	case format.TypeUint32:
		return engine.AppendUint32(buf, uint32(v.ints[flat]))
	case format.TypeInt64:
		return engine.AppendUint64(buf, uint64(v.ints[flat]))
	case format.TypeUint64:
		return engine.AppendUint64(buf, uint64(v.ints[flat]))
	case format.TypeFloat32:
		return engine.AppendUint32(buf, math.Float32bits(float32(v.floats[flat])))
	default:
		return engine.AppendUint64(buf, math.Float64bits(v.floats[flat]))
	}
}
