// Package compress provides the block codecs behind the general-purpose
// chunk compression kinds of the gridfile format.
//
// The structured codecs (2D delta, 2D XOR) live in the encoding package;
// this package covers the kinds that treat a chunk's element bytes as an
// opaque block:
//   - None: passthrough (raw little-endian elements)
//   - Zstd: best compression ratio, moderate speed
//   - S2: balanced compression and speed
//   - LZ4: fastest decompression, moderate ratio
//
// Codecs are stateless values obtained through GetCodec and safe for
// concurrent use; the zstd and lz4 implementations pool their internal
// encoder/decoder state.
//
// The chunk decoder always knows the exact decompressed size from the chunk
// shape, so it validates the decompressed length after the fact; the codecs
// themselves only guarantee "round-trips or errors".
package compress
