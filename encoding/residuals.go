package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/gridfile/errs"
)

// DecodeResiduals decodes len(dst) zigzag+varint int64 values from data.
//
// The stream must contain exactly len(dst) values with no trailing bytes;
// both truncation and trailing garbage are reported as errs.ErrDecodeFailed,
// since either means the chunk index pointed at a corrupt payload.
func DecodeResiduals(data []byte, dst []int64) error {
	offset := 0
	for i := range dst {
		zigzag, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return fmt.Errorf("%w: residual stream truncated at value %d of %d", errs.ErrDecodeFailed, i, len(dst))
		}
		offset += n

		// Zigzag decoding: interleaved sign back to two's complement.
		dst[i] = int64(zigzag>>1) ^ -int64(zigzag&1)
	}

	if offset != len(data) {
		return fmt.Errorf("%w: %d trailing bytes after residual stream", errs.ErrDecodeFailed, len(data)-offset)
	}

	return nil
}

// AppendResiduals appends the zigzag+varint encoding of vals to buf and
// returns the extended slice. Used by test fixture builders.
func AppendResiduals(buf []byte, vals []int64) []byte {
	var temp [binary.MaxVarintLen64]byte
	for _, v := range vals {
		zigzag := (v << 1) ^ (v >> 63)
		n := binary.PutUvarint(temp[:], uint64(zigzag))
		buf = append(buf, temp[:n]...)
	}

	return buf
}
