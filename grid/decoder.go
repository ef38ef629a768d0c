package grid

import (
	"fmt"
	"math"
	"sync"

	"github.com/arloliu/gridfile/compress"
	"github.com/arloliu/gridfile/encoding"
	"github.com/arloliu/gridfile/endian"
	"github.com/arloliu/gridfile/errs"
	"github.com/arloliu/gridfile/format"
	"github.com/arloliu/gridfile/internal/pool"
	"github.com/arloliu/gridfile/section"
)

// decodeState carries the per-call placement geometry shared by every chunk
// of one read: the validated request, the output strides, and reusable
// coordinate scratch. It belongs exclusively to the in-flight read.
type decodeState struct {
	grid       chunkGrid
	ranges     []Range
	outStrides []uint64

	coordScratch []uint64
	shapeScratch []uint64
	localScratch []uint64
}

func newDecodeState(g chunkGrid, ranges []Range) *decodeState {
	strides := make([]uint64, len(ranges))
	stride := uint64(1)
	for i := len(ranges) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= ranges[i].Len()
	}

	return &decodeState{grid: g, ranges: ranges, outStrides: strides}
}

// decodeChunk decompresses one fetched chunk payload and writes the decoded
// elements that fall inside the request into dst.
//
// The chunk is fetched whole, so elements outside the requested ranges are
// decoded and dropped; this boundary trim is what keeps edge chunks from
// leaking neighbors into the output.
func decodeChunk[T Element](st *decodeState, v *section.Variable, linear uint64, payload []byte) ([]T, func(), error) {
	st.coordScratch = st.grid.coord(linear, st.coordScratch)
	st.shapeScratch = st.grid.clampedShape(st.coordScratch, st.shapeScratch)

	count := 1
	for _, extent := range st.shapeScratch {
		count *= int(extent)
	}
	rows, width := encoding.BlockShape(st.shapeScratch)

	switch v.Compression {
	case format.CompressionDelta2DInt16, format.CompressionDelta2DInt16Log:
		return decodeScaledChunk[T](v, payload, count, rows, width)
	case format.CompressionXor2D:
		return decodeXorChunk[T](payload, count, rows, width)
	case format.CompressionDelta2D:
		return decodeDeltaChunk[T](payload, count, rows, width)
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
		return decodeRawChunk[T](v.Compression, payload, count)
	default:
		return nil, nil, fmt.Errorf("%w: compression %s", errs.ErrDecodeFailed, v.Compression)
	}
}

// decodeScaledChunk handles the lossy 16-bit delta codecs: residual stream,
// reverse 2D delta, quantization window check, scale/offset reconstruction.
func decodeScaledChunk[T Element](v *section.Variable, payload []byte, count, rows, width int) ([]T, func(), error) {
	residuals, release := pool.GetInt64Slice(count)
	defer release()

	if err := encoding.DecodeResiduals(payload, residuals); err != nil {
		return nil, nil, err
	}
	encoding.Reverse2DDelta(residuals, rows, width)

	out, releaseOut := getElemSlice[T](count)
	for i, q := range residuals {
		if q < encoding.MinQuantized || q > encoding.MaxQuantized {
			releaseOut()
			return nil, nil, fmt.Errorf("%w: quantized value %d outside int16 window", errs.ErrDecodeFailed, q)
		}

		if v.Compression == format.CompressionDelta2DInt16Log {
			out[i] = T(encoding.ReconstructLog(q, v.ScaleFactor, v.AddOffset))
		} else {
			out[i] = T(encoding.Reconstruct(q, v.ScaleFactor, v.AddOffset))
		}
	}

	return out, releaseOut, nil
}

// decodeXorChunk reverses the lossless float XOR chain straight to the
// native bit pattern. No scale/offset is applied.
func decodeXorChunk[T Element](payload []byte, count, rows, width int) ([]T, func(), error) {
	engine := endian.GetLittleEndianEngine()
	out, releaseOut := getElemSlice[T](count)

	switch any(out).(type) {
	case []float32:
		if len(payload) != count*4 {
			releaseOut()
			return nil, nil, fmt.Errorf("%w: xor payload is %d bytes, want %d", errs.ErrDecodeFailed, len(payload), count*4)
		}

		words, release := pool.GetUint32Slice(count)
		defer release()
		for i := range words {
			words[i] = engine.Uint32(payload[i*4:])
		}
		encoding.Reverse2DXor32(words, rows, width)
		dst := any(out).([]float32)
		for i, w := range words {
			dst[i] = math.Float32frombits(w)
		}
	case []float64:
		if len(payload) != count*8 {
			releaseOut()
			return nil, nil, fmt.Errorf("%w: xor payload is %d bytes, want %d", errs.ErrDecodeFailed, len(payload), count*8)
		}

		words, release := pool.GetUint64Slice(count)
		defer release()
		for i := range words {
			words[i] = engine.Uint64(payload[i*8:])
		}
		encoding.Reverse2DXor64(words, rows, width)
		dst := any(out).([]float64)
		for i, w := range words {
			dst[i] = math.Float64frombits(w)
		}
	default:
		releaseOut()
		return nil, nil, fmt.Errorf("%w: XOR codec requires a float variable", errs.ErrDecodeFailed)
	}

	return out, releaseOut, nil
}

// decodeDeltaChunk handles the unscaled integer delta codec, checking that
// every reconstructed value fits the variable's native width.
func decodeDeltaChunk[T Element](payload []byte, count, rows, width int) ([]T, func(), error) {
	residuals, release := pool.GetInt64Slice(count)
	defer release()

	if err := encoding.DecodeResiduals(payload, residuals); err != nil {
		return nil, nil, err
	}
	encoding.Reverse2DDelta(residuals, rows, width)

	out, releaseOut := getElemSlice[T](count)
	for i, val := range residuals {
		out[i] = T(val)
		if int64(out[i]) != val {
			releaseOut()
			return nil, nil, fmt.Errorf("%w: delta value %d overflows element width", errs.ErrDecodeFailed, val)
		}
	}

	return out, releaseOut, nil
}

// decodeRawChunk handles the raw and block-compressed kinds: optional block
// decompression, then a straight little-endian element copy.
func decodeRawChunk[T Element](compression format.CompressionType, payload []byte, count int) ([]T, func(), error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", errs.ErrDecodeFailed, err)
	}

	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s block: %s", errs.ErrDecodeFailed, compression, err)
	}

	var elemSize int
	out, releaseOut := getElemSlice[T](count)
	switch any(out).(type) {
	case []int8, []uint8:
		elemSize = 1
	case []int16, []uint16:
		elemSize = 2
	case []int32, []uint32, []float32:
		elemSize = 4
	default:
		elemSize = 8
	}

	if len(raw) != count*elemSize {
		releaseOut()
		return nil, nil, fmt.Errorf("%w: chunk payload is %d bytes, want %d", errs.ErrDecodeFailed, len(raw), count*elemSize)
	}

	engine := endian.GetLittleEndianEngine()
	for i := range out {
		b := raw[i*elemSize:]
		switch dst := any(out).(type) {
		case []int8:
			dst[i] = int8(b[0])
		case []uint8:
			dst[i] = b[0]
		case []int16:
			dst[i] = int16(engine.Uint16(b))
		case []uint16:
			dst[i] = engine.Uint16(b)
		case []int32:
			dst[i] = int32(engine.Uint32(b))
		case []uint32:
			dst[i] = engine.Uint32(b)
		case []int64:
			dst[i] = int64(engine.Uint64(b))
		case []uint64:
			dst[i] = engine.Uint64(b)
		case []float32:
			dst[i] = math.Float32frombits(engine.Uint32(b))
		case []float64:
			dst[i] = math.Float64frombits(engine.Uint64(b))
		}
	}

	return out, releaseOut, nil
}

// placeChunk writes the decoded elements of one chunk into the output
// buffer: global = chunkCoord*chunkShape + local, skipped when outside the
// request, otherwise stored at (global - requestStart) under the output
// strides. decoded is in row-major order over the chunk's clamped shape.
func placeChunk[T Element](st *decodeState, decoded []T, dst []T) {
	rank := len(st.ranges)
	if rank == 0 {
		return
	}

	local := st.localScratch
	if cap(local) < rank {
		local = make([]uint64, rank)
	} else {
		local = local[:rank]
		clear(local)
	}
	st.localScratch = local

	shape := st.shapeScratch
	for i := range decoded {
		inside := true
		dstIdx := uint64(0)
		for d := 0; d < rank; d++ {
			global := st.coordScratch[d]*st.grid.chunkShape[d] + local[d]
			if global < st.ranges[d].Start || global >= st.ranges[d].End {
				inside = false
				break
			}
			dstIdx += (global - st.ranges[d].Start) * st.outStrides[d]
		}
		if inside {
			dst[dstIdx] = decoded[i]
		}

		// Row-major increment over the clamped chunk shape.
		for d := rank - 1; d >= 0; d-- {
			local[d]++
			if local[d] < shape[d] {
				break
			}
			local[d] = 0
		}
	}
}

// elemSlicePool pools decode scratch per element type parameter. Each
// instantiation of getElemSlice gets its own pool through the generic
// wrapper below.
type elemPool[T Element] struct {
	pool sync.Pool
}

func (p *elemPool[T]) get(count int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	if ptr == nil {
		ptr = &[]T{}
	}

	slice := *ptr
	if cap(slice) < count {
		slice = make([]T, count)
		*ptr = slice
	} else {
		slice = slice[:count]
		*ptr = slice
	}

	return slice, func() { p.pool.Put(ptr) }
}

var (
	int8Pool    elemPool[int8]
	uint8Pool   elemPool[uint8]
	int16Pool   elemPool[int16]
	uint16Pool  elemPool[uint16]
	int32Pool   elemPool[int32]
	uint32Pool  elemPool[uint32]
	int64Pool   elemPool[int64]
	uint64Pool  elemPool[uint64]
	float32Pool elemPool[float32]
	float64Pool elemPool[float64]
)

// getElemSlice returns a pooled decode scratch slice of exactly count
// elements plus its release function. Contents are not zeroed; the decode
// paths overwrite every element before use.
func getElemSlice[T Element](count int) ([]T, func()) {
	var p any
	switch any(*new(T)).(type) {
	case int8:
		p = &int8Pool
	case uint8:
		p = &uint8Pool
	case int16:
		p = &int16Pool
	case uint16:
		p = &uint16Pool
	case int32:
		p = &int32Pool
	case uint32:
		p = &uint32Pool
	case int64:
		p = &int64Pool
	case uint64:
		p = &uint64Pool
	case float32:
		p = &float32Pool
	default:
		p = &float64Pool
	}

	return p.(*elemPool[T]).get(count)
}
