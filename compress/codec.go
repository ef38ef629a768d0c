package compress

import (
	"fmt"

	"github.com/arloliu/gridfile/format"
)

// Compressor compresses one chunk payload.
//
// Memory management: the returned slice is newly allocated and owned by the
// caller; the input slice is not modified. Internal state may be pooled.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses one chunk payload.
//
// The input must have been produced by the matching Compressor; corrupted or
// mismatched data yields an error, never a silently wrong result.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All implementations in this package are
// safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for a block compression kind.
// The structured kinds (delta, XOR) have no block codec and yield an error.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("no block codec for compression type: %s", compressionType)
}
