// Package grid implements the core of gridfile: the reader facade over a
// byte-range source, the metadata tree walk, the read planner that coalesces
// chunk index and payload spans into few backend fetches, and the chunk
// decoder that reconstructs elements into the requested sub-region.
package grid

import (
	"fmt"
	"io"

	"github.com/arloliu/gridfile/errs"
	"github.com/arloliu/gridfile/format"
	"github.com/arloliu/gridfile/internal/options"
	"github.com/arloliu/gridfile/section"
	"github.com/arloliu/gridfile/source"
)

type readerState uint8

const (
	stateUninitialized readerState = iota
	stateInitialized
	stateDisposed
)

// Reader reads one variable of a gridfile through a byte-range source.
//
// A Reader owns the parsed metadata of its variable and releases it on
// Close; every accessor fails with errs.ErrNotInitialized afterwards.
// Child readers obtained through Child or ChildByPath are independent
// instances sharing only the (read-only) source.
//
// Note: a Reader is NOT safe for concurrent Read calls. Only one read may be
// in flight per instance; use separate child readers for parallelism.
type Reader struct {
	src    source.Source
	closer io.Closer

	meta []byte
	v    *section.Variable
	loc  section.OffsetSize

	mergeThreshold uint64
	maxBatchSize   uint64

	state readerState
}

// Option configures a Reader during Open.
type Option = options.Option[*Reader]

// WithMergeThreshold sets the largest byte gap between two required spans
// that a single backend read still bridges. Zero disables gap bridging
// entirely; adjacent spans then merge only when they touch.
func WithMergeThreshold(n uint64) Option {
	return options.NoError(func(r *Reader) {
		r.mergeThreshold = n
	})
}

// WithMaxBatchSize caps the byte length of a single backend read. A chunk
// whose span alone exceeds the cap still forms its own single-chunk read.
func WithMaxBatchSize(n uint64) Option {
	return options.New(func(r *Reader) error {
		if n == 0 {
			return fmt.Errorf("max batch size must be positive")
		}
		r.maxBatchSize = n

		return nil
	})
}

// WithCloser attaches an io.Closer (typically the backing file) that
// Reader.Close closes after releasing the metadata.
func WithCloser(c io.Closer) Option {
	return options.NoError(func(r *Reader) {
		r.closer = c
	})
}

// Open probes src, resolves the root metadata record (directly after the
// header for legacy files, through the checksummed trailer otherwise), and
// parses it into an initialized Reader.
//
// On failure no partial state is retained: the error is one of
// errs.ErrInvalidFormat, errs.ErrInvalidTrailer, errs.ErrDecodeFailed, or a
// wrapped source I/O error.
func Open(src source.Source, opts ...Option) (*Reader, error) {
	r := &Reader{
		src:            src,
		mergeThreshold: DefaultMergeThreshold,
		maxBatchSize:   DefaultMaxBatchSize,
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	headerBytes, err := src.GetBytes(0, section.HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("fetch header: %w", err)
	}
	header, err := section.ParseHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	root := header.Root()
	if header.Mode == section.ModeTrailerAddressed {
		// Only trailer-addressed files need the total size; legacy files
		// carry the root size in the header.
		fileSize, cerr := src.Count()
		if cerr != nil {
			return nil, fmt.Errorf("query file size: %w", cerr)
		}
		if fileSize < section.HeaderSize+section.TrailerSize {
			return nil, fmt.Errorf("%w: file of %d bytes cannot hold a trailer", errs.ErrInvalidTrailer, fileSize)
		}

		trailerBytes, terr := src.GetBytes(fileSize-section.TrailerSize, section.TrailerSize)
		if terr != nil {
			return nil, fmt.Errorf("fetch trailer: %w", terr)
		}
		trailer, perr := section.ParseTrailer(trailerBytes, fileSize)
		if perr != nil {
			return nil, perr
		}
		root = trailer.Root
	}

	if err := r.load(root); err != nil {
		return nil, err
	}

	return r, nil
}

// load fetches and parses the metadata record at loc, completing the
// transition to the initialized state.
func (r *Reader) load(loc section.OffsetSize) error {
	meta, err := r.src.GetBytes(loc.Offset, loc.Size)
	if err != nil {
		return fmt.Errorf("fetch metadata record: %w", err)
	}

	v, err := section.ParseVariable(meta)
	if err != nil {
		return err
	}

	r.meta = meta
	r.v = v
	r.loc = loc
	r.state = stateInitialized

	return nil
}

// ready guards every accessor against use before Open or after Close.
func (r *Reader) ready() error {
	if r.state != stateInitialized {
		return errs.ErrNotInitialized
	}

	return nil
}

// Close releases the variable's metadata buffer and closes the attached
// closer, if any. The reader is unusable afterwards; closing twice fails
// with errs.ErrNotInitialized.
func (r *Reader) Close() error {
	if err := r.ready(); err != nil {
		return err
	}

	r.meta = nil
	r.v = nil
	r.state = stateDisposed

	if r.closer != nil {
		return r.closer.Close()
	}

	return nil
}

// DataType returns the variable's data type.
func (r *Reader) DataType() (format.DataType, error) {
	if err := r.ready(); err != nil {
		return format.TypeNone, err
	}

	return r.v.DataType, nil
}

// Compression returns the variable's chunk compression kind.
func (r *Reader) Compression() (format.CompressionType, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}

	return r.v.Compression, nil
}

// ScaleFactor returns the quantization scale of the lossy codecs.
func (r *Reader) ScaleFactor() (float64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}

	return r.v.ScaleFactor, nil
}

// AddOffset returns the quantization offset of the lossy codecs.
func (r *Reader) AddOffset() (float64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}

	return r.v.AddOffset, nil
}

// Dimensions returns the array extents. Scalar variables have none.
func (r *Reader) Dimensions() ([]uint64, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	return r.v.Dimensions, nil
}

// ChunkShape returns the storage chunk extents, one per dimension.
func (r *Reader) ChunkShape() ([]uint64, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	return r.v.ChunkShape, nil
}

// Name returns the variable's name, empty for unnamed variables.
func (r *Reader) Name() (string, error) {
	if err := r.ready(); err != nil {
		return "", err
	}

	return r.v.Name, nil
}

// NumChildren returns the number of child variables.
func (r *Reader) NumChildren() (int, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}

	return len(r.v.Children), nil
}

// ChildLocation returns the byte span of child index i's metadata record.
// Fails with errs.ErrIndexOutOfRange if i is at or beyond the child count.
func (r *Reader) ChildLocation(i int) (section.OffsetSize, error) {
	if err := r.ready(); err != nil {
		return section.OffsetSize{}, err
	}
	if i < 0 || i >= len(r.v.Children) {
		return section.OffsetSize{}, fmt.Errorf("%w: index %d of %d children", errs.ErrIndexOutOfRange, i, len(r.v.Children))
	}

	return r.v.Children[i], nil
}

// Child materializes child index i as an independent Reader sharing the
// source and planner settings. The child does not inherit the closer.
func (r *Reader) Child(i int) (*Reader, error) {
	loc, err := r.ChildLocation(i)
	if err != nil {
		return nil, err
	}

	child := &Reader{
		src:            r.src,
		mergeThreshold: r.mergeThreshold,
		maxBatchSize:   r.maxBatchSize,
	}
	if err := child.load(loc); err != nil {
		return nil, err
	}

	return child, nil
}

// Read reads the requested hyper-rectangle into a freshly allocated buffer
// of exactly the product of the range lengths.
//
// The type argument must match the variable's data type; a request with the
// wrong rank fails with errs.ErrDimensionMismatch, out-of-bounds or inverted
// ranges with errs.ErrRangeOutOfBounds. A Range with Start == End selects
// zero elements and succeeds with an empty buffer. On any failure the
// allocated buffer is never returned.
func Read[T Element](r *Reader, ranges []Range) ([]T, error) {
	if err := validateRead[T](r, ranges); err != nil {
		return nil, err
	}

	out := make([]T, elementCount(ranges))
	if err := r.readPipeline(ranges, func(st *decodeState, linear uint64, payload []byte) error {
		decoded, release, err := decodeChunk[T](st, r.v, linear, payload)
		if err != nil {
			return err
		}
		defer release()
		placeChunk(st, decoded, out)

		return nil
	}); err != nil {
		return nil, err
	}

	return out, nil
}

// ReadInto is Read writing into a caller-supplied buffer, failing with
// errs.ErrBufferTooSmall when it cannot hold the requested extent. Elements
// decoded before a mid-read failure may already be in dst; the caller owns
// that buffer and its prior contents.
func ReadInto[T Element](r *Reader, ranges []Range, dst []T) error {
	if err := validateRead[T](r, ranges); err != nil {
		return err
	}

	if need := elementCount(ranges); uint64(len(dst)) < need {
		return fmt.Errorf("%w: need %d elements, buffer holds %d", errs.ErrBufferTooSmall, need, len(dst))
	}

	return r.readPipeline(ranges, func(st *decodeState, linear uint64, payload []byte) error {
		decoded, release, err := decodeChunk[T](st, r.v, linear, payload)
		if err != nil {
			return err
		}
		defer release()
		placeChunk(st, decoded, dst)

		return nil
	})
}

// validateRead runs the shared entry checks of Read and ReadInto.
func validateRead[T Element](r *Reader, ranges []Range) error {
	if err := r.ready(); err != nil {
		return err
	}

	if !r.v.DataType.IsArray() {
		return fmt.Errorf("%w: %s variable is not an array", errs.ErrDataTypeMismatch, r.v.DataType)
	}
	if want := r.v.DataType.Elem(); elemType[T]() != want {
		return fmt.Errorf("%w: variable holds %s elements", errs.ErrDataTypeMismatch, want)
	}
	if err := validateCodec(r.v.Compression, r.v.DataType.Elem()); err != nil {
		return err
	}

	return validateRanges(ranges, r.v.Dimensions)
}

// validateCodec rejects files whose compression kind cannot produce the
// declared element type, before any bytes are fetched.
func validateCodec(c format.CompressionType, elem format.DataType) error {
	switch c {
	case format.CompressionDelta2DInt16, format.CompressionDelta2DInt16Log, format.CompressionXor2D:
		if elem != format.TypeFloat32 && elem != format.TypeFloat64 {
			return fmt.Errorf("%w: %s compression on %s elements", errs.ErrDecodeFailed, c, elem)
		}
	case format.CompressionDelta2D:
		if elem == format.TypeFloat32 || elem == format.TypeFloat64 {
			return fmt.Errorf("%w: %s compression on %s elements", errs.ErrDecodeFailed, c, elem)
		}
	}

	return nil
}

// readPipeline drives one read to completion: plan index batches, fetch and
// decode chunk locations, plan data batches, fetch and decode chunks. It is
// strictly sequential; batches are visited in ascending offset order, so the
// number and order of backend fetches is deterministic for a given request
// and planner configuration.
func (r *Reader) readPipeline(ranges []Range, decode func(st *decodeState, linear uint64, payload []byte) error) error {
	g := newChunkGrid(r.v.Dimensions, r.v.ChunkShape)
	chunks := g.overlappingChunks(ranges)
	if len(chunks) == 0 {
		return nil
	}

	st := newDecodeState(g, ranges)

	indexBatches := planIndexBatches(r.v.ChunkIndexOffset, chunks, r.mergeThreshold, r.maxBatchSize)
	for _, ib := range indexBatches {
		indexBytes, err := r.src.GetBytes(ib.Span.Offset, ib.Span.Size)
		if err != nil {
			return fmt.Errorf("fetch chunk index: %w", err)
		}

		dataChunks := make([]DataChunk, 0, len(ib.Chunks))
		for _, linear := range ib.Chunks {
			entryOffset := r.v.ChunkIndexOffset + linear*section.ChunkEntrySize - ib.Span.Offset
			entry, err := section.ParseChunkEntry(indexBytes[entryOffset:])
			if err != nil {
				return err
			}
			dataChunks = append(dataChunks, DataChunk{Linear: linear, Entry: entry})
		}

		for _, db := range planDataBatches(dataChunks, r.mergeThreshold, r.maxBatchSize) {
			dataBytes, err := r.src.GetBytes(db.Span.Offset, db.Span.Size)
			if err != nil {
				return fmt.Errorf("fetch chunk data: %w", err)
			}

			for _, chunk := range db.Chunks {
				start := chunk.Entry.PayloadOffset - db.Span.Offset
				payload := dataBytes[start : start+chunk.Entry.PayloadLength]
				if err := decode(st, chunk.Linear, payload); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
