package grid

import (
	"sort"

	"github.com/arloliu/gridfile/section"
)

// Planner tunables. The merge threshold is the largest gap between two
// required byte spans that still gets bridged by a single backend read;
// the batch size cap bounds how much one read may ask for, splitting even
// contiguous spans. Defaults follow the usual trade-off for remote object
// stores: request overhead dwarfs a few hundred wasted bytes, while
// multi-megabyte reads hurt latency.
const (
	DefaultMergeThreshold uint64 = 512
	DefaultMaxBatchSize   uint64 = 64 * 1024
)

// IndexBatch is one coalesced read of the chunk index table, carrying the
// linear chunk-grid indices whose entries it covers.
type IndexBatch struct {
	Span   section.OffsetSize
	Chunks []uint64
}

// DataChunk pairs a chunk's linear grid index with the file span of its
// compressed payload, decoded from a fetched index batch.
type DataChunk struct {
	Linear uint64
	Entry  section.ChunkEntry
}

// DataBatch is one coalesced read of chunk payloads.
type DataBatch struct {
	Span   section.OffsetSize
	Chunks []DataChunk
}

// chunkGrid captures the chunk-grid geometry of one variable.
type chunkGrid struct {
	dims       []uint64 // array extents
	chunkShape []uint64
	gridDims   []uint64 // chunks per dimension, ceil(dims/chunkShape)
}

func newChunkGrid(dims, chunkShape []uint64) chunkGrid {
	gridDims := make([]uint64, len(dims))
	for i := range dims {
		gridDims[i] = (dims[i] + chunkShape[i] - 1) / chunkShape[i]
	}

	return chunkGrid{dims: dims, chunkShape: chunkShape, gridDims: gridDims}
}

// linear returns the row-major index of a chunk coordinate.
func (g chunkGrid) linear(coord []uint64) uint64 {
	idx := uint64(0)
	for i, c := range coord {
		idx = idx*g.gridDims[i] + c
	}

	return idx
}

// coord expands a linear chunk index back to grid coordinates.
func (g chunkGrid) coord(linear uint64, dst []uint64) []uint64 {
	dst = dst[:0]
	if cap(dst) < len(g.gridDims) {
		dst = make([]uint64, len(g.gridDims))
	} else {
		dst = dst[:len(g.gridDims)]
	}

	for i := len(g.gridDims) - 1; i >= 0; i-- {
		dst[i] = linear % g.gridDims[i]
		linear /= g.gridDims[i]
	}

	return dst
}

// clampedShape returns the in-bounds shape of the chunk at coord: full chunk
// extents everywhere except at the far edge of the grid, where the array
// extent cuts the chunk short.
func (g chunkGrid) clampedShape(coord []uint64, dst []uint64) []uint64 {
	dst = dst[:0]
	if cap(dst) < len(coord) {
		dst = make([]uint64, len(coord))
	} else {
		dst = dst[:len(coord)]
	}

	for i, c := range coord {
		start := c * g.chunkShape[i]
		extent := g.chunkShape[i]
		if start+extent > g.dims[i] {
			extent = g.dims[i] - start
		}
		dst[i] = extent
	}

	return dst
}

// overlappingChunks walks the chunk grid row-major and returns the ascending
// linear indices of every chunk intersecting the request. An empty range on
// any dimension yields no chunks. The walk is bounded by the chunk ranges
// derived from the request, which are themselves inside the grid because the
// request was validated against the array dimensions.
func (g chunkGrid) overlappingChunks(ranges []Range) []uint64 {
	lo := make([]uint64, len(ranges))
	hi := make([]uint64, len(ranges)) // inclusive
	count := uint64(1)
	for i, r := range ranges {
		if r.Len() == 0 {
			return nil
		}
		lo[i] = r.Start / g.chunkShape[i]
		hi[i] = (r.End - 1) / g.chunkShape[i]
		count *= hi[i] - lo[i] + 1
	}

	chunks := make([]uint64, 0, count)
	coord := append([]uint64(nil), lo...)
	for {
		chunks = append(chunks, g.linear(coord))

		// Row-major increment within [lo, hi].
		d := len(coord) - 1
		for d >= 0 {
			coord[d]++
			if coord[d] <= hi[d] {
				break
			}
			coord[d] = lo[d]
			d--
		}
		if d < 0 {
			return chunks
		}
	}
}

// planIndexBatches coalesces the index-table spans of the given chunks into
// backend reads. chunks must be ascending, which makes their index entries
// ascending as well since the table is laid out in chunk-grid order.
func planIndexBatches(indexOffset uint64, chunks []uint64, mergeThreshold, maxBatchSize uint64) []IndexBatch {
	if len(chunks) == 0 {
		return nil
	}

	batches := make([]IndexBatch, 0, 1)
	cur := IndexBatch{
		Span: section.OffsetSize{
			Offset: indexOffset + chunks[0]*section.ChunkEntrySize,
			Size:   section.ChunkEntrySize,
		},
		Chunks: []uint64{chunks[0]},
	}

	for _, linear := range chunks[1:] {
		offset := indexOffset + linear*section.ChunkEntrySize
		if mergeFits(cur.Span, offset, section.ChunkEntrySize, mergeThreshold, maxBatchSize) {
			cur.Span.Size = offset + section.ChunkEntrySize - cur.Span.Offset
			cur.Chunks = append(cur.Chunks, linear)
			continue
		}

		batches = append(batches, cur)
		cur = IndexBatch{
			Span:   section.OffsetSize{Offset: offset, Size: section.ChunkEntrySize},
			Chunks: []uint64{linear},
		}
	}

	return append(batches, cur)
}

// planDataBatches coalesces chunk payload spans into backend reads. The
// chunks are visited in ascending payload offset order so batches come out
// sorted, keeping fetch and decode order deterministic.
func planDataBatches(chunks []DataChunk, mergeThreshold, maxBatchSize uint64) []DataBatch {
	if len(chunks) == 0 {
		return nil
	}

	sorted := append([]DataChunk(nil), chunks...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Entry.PayloadOffset < sorted[j].Entry.PayloadOffset
	})

	batches := make([]DataBatch, 0, 1)
	cur := DataBatch{
		Span: section.OffsetSize{
			Offset: sorted[0].Entry.PayloadOffset,
			Size:   sorted[0].Entry.PayloadLength,
		},
		Chunks: []DataChunk{sorted[0]},
	}

	for _, chunk := range sorted[1:] {
		if mergeFits(cur.Span, chunk.Entry.PayloadOffset, chunk.Entry.PayloadLength, mergeThreshold, maxBatchSize) {
			if end := chunk.Entry.PayloadOffset + chunk.Entry.PayloadLength; end > cur.Span.Offset+cur.Span.Size {
				cur.Span.Size = end - cur.Span.Offset
			}
			cur.Chunks = append(cur.Chunks, chunk)
			continue
		}

		batches = append(batches, cur)
		cur = DataBatch{
			Span:   section.OffsetSize{Offset: chunk.Entry.PayloadOffset, Size: chunk.Entry.PayloadLength},
			Chunks: []DataChunk{chunk},
		}
	}

	return append(batches, cur)
}

// mergeFits reports whether the span starting at nextOffset can join the
// current batch: the gap must be within the merge threshold (inclusive, for
// determinism) and the combined payload bytes must stay under the batch cap.
// A single span larger than the cap always forms its own batch; it is never
// dropped.
func mergeFits(cur section.OffsetSize, nextOffset, nextLength, mergeThreshold, maxBatchSize uint64) bool {
	end := cur.Offset + cur.Size
	if nextOffset < end {
		// Overlapping or duplicate spans collapse into the same batch.
		return true
	}

	return nextOffset-end <= mergeThreshold && cur.Size+nextLength <= maxBatchSize
}
