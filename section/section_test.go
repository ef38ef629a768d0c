package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gridfile/errs"
	"github.com/arloliu/gridfile/format"
)

func TestParseHeader(t *testing.T) {
	t.Run("LegacyRoundTrip", func(t *testing.T) {
		h := Header{Mode: ModeLegacy, RootSize: 123}
		parsed, err := ParseHeader(h.Bytes())
		require.NoError(t, err)
		require.Equal(t, h, parsed)
		require.Equal(t, OffsetSize{Offset: HeaderSize, Size: 123}, parsed.Root())
	})

	t.Run("TrailerAddressedRoundTrip", func(t *testing.T) {
		h := Header{Mode: ModeTrailerAddressed}
		parsed, err := ParseHeader(h.Bytes())
		require.NoError(t, err)
		require.Equal(t, ModeTrailerAddressed, parsed.Mode)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := ParseHeader(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
	})

	t.Run("BadMagic", func(t *testing.T) {
		b := Header{Mode: ModeLegacy, RootSize: 1}.Bytes()
		b[0] = 'X'
		_, err := ParseHeader(b)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
	})

	t.Run("UnknownMode", func(t *testing.T) {
		b := Header{Mode: ModeLegacy, RootSize: 1}.Bytes()
		b[4] = 9
		_, err := ParseHeader(b)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
	})

	t.Run("LegacyZeroRootSize", func(t *testing.T) {
		b := Header{Mode: ModeLegacy}.Bytes()
		_, err := ParseHeader(b)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
	})
}

func TestParseTrailer(t *testing.T) {
	const fileSize = 1024

	t.Run("RoundTrip", func(t *testing.T) {
		trailer := Trailer{Root: OffsetSize{Offset: 16, Size: 200}}
		parsed, err := ParseTrailer(trailer.Bytes(), fileSize)
		require.NoError(t, err)
		require.Equal(t, trailer, parsed)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := ParseTrailer(make([]byte, TrailerSize-1), fileSize)
		require.ErrorIs(t, err, errs.ErrInvalidTrailer)
	})

	t.Run("ChecksumMismatch", func(t *testing.T) {
		b := Trailer{Root: OffsetSize{Offset: 16, Size: 200}}.Bytes()
		b[0] ^= 0xff
		_, err := ParseTrailer(b, fileSize)
		require.ErrorIs(t, err, errs.ErrInvalidTrailer)
	})

	t.Run("PointerBeyondFile", func(t *testing.T) {
		b := Trailer{Root: OffsetSize{Offset: 16, Size: fileSize}}.Bytes()
		_, err := ParseTrailer(b, fileSize)
		require.ErrorIs(t, err, errs.ErrInvalidTrailer)
	})

	t.Run("PointerIntoTrailer", func(t *testing.T) {
		// The root record may not overlap the trailer itself.
		b := Trailer{Root: OffsetSize{Offset: fileSize - TrailerSize - 8, Size: 16}}.Bytes()
		_, err := ParseTrailer(b, fileSize)
		require.ErrorIs(t, err, errs.ErrInvalidTrailer)
	})

	t.Run("ZeroSize", func(t *testing.T) {
		b := Trailer{Root: OffsetSize{Offset: 16, Size: 0}}.Bytes()
		_, err := ParseTrailer(b, fileSize)
		require.ErrorIs(t, err, errs.ErrInvalidTrailer)
	})
}

func TestParseVariable(t *testing.T) {
	arrayVar := func() *Variable {
		return &Variable{
			DataType:         format.TypeFloat32Array,
			Compression:      format.CompressionDelta2DInt16,
			ScaleFactor:      20,
			AddOffset:        0.5,
			Dimensions:       []uint64{100, 200},
			ChunkShape:       []uint64{10, 20},
			Name:             "temperature",
			Children:         []OffsetSize{{Offset: 4096, Size: 64}, {Offset: 4160, Size: 80}},
			ChunkIndexOffset: 8192,
		}
	}

	t.Run("ArrayRoundTrip", func(t *testing.T) {
		v := arrayVar()
		parsed, err := ParseVariable(v.Bytes())
		require.NoError(t, err)
		require.Equal(t, v, parsed)
	})

	t.Run("ScalarNumericRoundTrip", func(t *testing.T) {
		v := &Variable{
			DataType:      format.TypeInt64,
			Compression:   format.CompressionNone,
			Name:          "reference_time",
			ScalarPayload: []byte{1, 2, 3, 4, 5, 6, 7, 8},
		}
		parsed, err := ParseVariable(v.Bytes())
		require.NoError(t, err)
		require.Equal(t, v.ScalarPayload, parsed.ScalarPayload)
		require.Equal(t, "reference_time", parsed.Name)
	})

	t.Run("ScalarStringRoundTrip", func(t *testing.T) {
		v := &Variable{
			DataType:      format.TypeString,
			Compression:   format.CompressionNone,
			Name:          "units",
			ScalarPayload: []byte("degC"),
		}
		parsed, err := ParseVariable(v.Bytes())
		require.NoError(t, err)
		require.Equal(t, "degC", string(parsed.ScalarPayload))
	})

	t.Run("UnnamedVariable", func(t *testing.T) {
		v := arrayVar()
		v.Name = ""
		parsed, err := ParseVariable(v.Bytes())
		require.NoError(t, err)
		require.Empty(t, parsed.Name)
	})

	t.Run("Truncated", func(t *testing.T) {
		b := arrayVar().Bytes()
		_, err := ParseVariable(b[:len(b)-1])
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})

	t.Run("TruncatedPrefix", func(t *testing.T) {
		_, err := ParseVariable(make([]byte, VariablePrefixSize-1))
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})

	t.Run("UnknownDataType", func(t *testing.T) {
		b := arrayVar().Bytes()
		b[0] = 99
		_, err := ParseVariable(b)
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})

	t.Run("UnknownCompression", func(t *testing.T) {
		b := arrayVar().Bytes()
		b[1] = 99
		_, err := ParseVariable(b)
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})

	t.Run("RankMismatch", func(t *testing.T) {
		v := arrayVar()
		v.ChunkShape = v.ChunkShape[:1]
		_, err := ParseVariable(v.Bytes())
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})

	t.Run("ScalarWithDimensions", func(t *testing.T) {
		v := arrayVar()
		v.DataType = format.TypeFloat32
		_, err := ParseVariable(v.Bytes())
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})

	t.Run("ZeroChunkExtent", func(t *testing.T) {
		v := arrayVar()
		v.ChunkShape = []uint64{10, 0}
		_, err := ParseVariable(v.Bytes())
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})

	t.Run("ChildTableOverflow", func(t *testing.T) {
		// Claim more children than the record can physically hold.
		b := arrayVar().Bytes()
		v := arrayVar()
		childCountPos := VariablePrefixSize + 8*len(v.Dimensions) + 8*len(v.ChunkShape) + 2 + len(v.Name)
		b[childCountPos] = 0xff
		b[childCountPos+1] = 0xff
		_, err := ParseVariable(b)
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})
}

func TestChunkEntry(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		e := ChunkEntry{PayloadOffset: 1 << 40, PayloadLength: 77}
		parsed, err := ParseChunkEntry(e.Bytes())
		require.NoError(t, err)
		require.Equal(t, e, parsed)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := ParseChunkEntry(make([]byte, ChunkEntrySize-1))
		require.ErrorIs(t, err, errs.ErrDecodeFailed)
	})
}
