package grid

import (
	"fmt"

	"github.com/arloliu/gridfile/errs"
	"github.com/arloliu/gridfile/format"
)

// Range is a half-open interval [Start, End) of indices along one dimension.
// Start == End selects nothing along that dimension, which makes the whole
// request a valid no-op.
type Range struct {
	Start uint64
	End   uint64
}

// Len returns the number of indices the range selects.
func (r Range) Len() uint64 {
	return r.End - r.Start
}

// FullRange builds the request that selects every element of dims.
func FullRange(dims []uint64) []Range {
	ranges := make([]Range, len(dims))
	for i, extent := range dims {
		ranges[i] = Range{Start: 0, End: extent}
	}

	return ranges
}

// validateRanges checks rank and bounds of a request against the variable's
// dimensions, per the read contract.
func validateRanges(ranges []Range, dims []uint64) error {
	if len(ranges) != len(dims) {
		return fmt.Errorf("%w: request has %d ranges, variable has %d dimensions", errs.ErrDimensionMismatch, len(ranges), len(dims))
	}

	for i, r := range ranges {
		if r.Start > r.End {
			return fmt.Errorf("%w: dimension %d range [%d, %d) is inverted", errs.ErrRangeOutOfBounds, i, r.Start, r.End)
		}
		if r.End > dims[i] {
			return fmt.Errorf("%w: dimension %d range ends at %d, extent is %d", errs.ErrRangeOutOfBounds, i, r.End, dims[i])
		}
	}

	return nil
}

// elementCount returns the output element count of a request.
func elementCount(ranges []Range) uint64 {
	total := uint64(1)
	for _, r := range ranges {
		total *= r.Len()
	}

	return total
}

// Element is the set of Go types a gridfile array or scalar variable can
// decode into. The type argument must match the variable's DataType exactly;
// the reader checks this at runtime and fails with ErrDataTypeMismatch.
type Element interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// elemType maps a type argument to its format tag.
func elemType[T Element]() format.DataType {
	switch any(*new(T)).(type) {
	case int8:
		return format.TypeInt8
	case uint8:
		return format.TypeUint8
	case int16:
		return format.TypeInt16
	case uint16:
		return format.TypeUint16
	case int32:
		return format.TypeInt32
	case uint32:
		return format.TypeUint32
	case int64:
		return format.TypeInt64
	case uint64:
		return format.TypeUint64
	case float32:
		return format.TypeFloat32
	case float64:
		return format.TypeFloat64
	default:
		return format.TypeNone
	}
}
