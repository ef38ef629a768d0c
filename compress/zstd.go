package compress

// ZstdCompressor backs format.CompressionZstd.
//
// Zstd trades compression speed for ratio, which suits archival grids that
// are written once and range-read many times. Two implementations exist:
// a cgo binding (zstd_cgo.go) used when cgo is available, and a pure-Go
// fallback (zstd_pure.go) selected otherwise via build tags. Both produce
// standard zstd frames and decompress each other's output.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd block codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
