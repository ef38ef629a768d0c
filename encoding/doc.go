// Package encoding implements the per-chunk numeric transforms of the
// gridfile format: zigzag+varint integer residual streams, the reverse 2D
// delta and 2D XOR transforms, and the scale/offset reconstruction applied to
// the lossy 16-bit codecs.
//
// A chunk is treated as a 2D block for the delta and XOR transforms: the
// last chunk dimension forms the row width and the product of the remaining
// dimensions forms the row count (rank-1 chunks use a single column). Each
// row is delta- or XOR-chained against the row above it, which exploits the
// strong vertical correlation of gridded geophysical fields.
//
// All functions here are pure transforms over in-memory slices; fetching,
// planning, and placement live in the grid package.
package encoding
