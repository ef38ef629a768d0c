package grid

import (
	"math"

	"github.com/arloliu/gridfile/endian"
	"github.com/arloliu/gridfile/format"
)

// ReadScalar returns the variable's scalar value when its data type matches
// the type argument. A type mismatch (including array variables) is not an
// error: it returns ok == false, mirroring how callers probe optional
// attributes of unknown type.
func ReadScalar[T Element](r *Reader) (T, bool, error) {
	var zero T
	if err := r.ready(); err != nil {
		return zero, false, err
	}

	if r.v.DataType != elemType[T]() {
		return zero, false, nil
	}

	engine := endian.GetLittleEndianEngine()
	payload := r.v.ScalarPayload

	// The payload width was validated against the data type at parse time.
	var value T
	switch dst := any(&value).(type) {
	case *int8:
		*dst = int8(payload[0])
	case *uint8:
		*dst = payload[0]
	case *int16:
		*dst = int16(engine.Uint16(payload))
	case *uint16:
		*dst = engine.Uint16(payload)
	case *int32:
		*dst = int32(engine.Uint32(payload))
	case *uint32:
		*dst = engine.Uint32(payload)
	case *int64:
		*dst = int64(engine.Uint64(payload))
	case *uint64:
		*dst = engine.Uint64(payload)
	case *float32:
		*dst = math.Float32frombits(engine.Uint32(payload))
	case *float64:
		*dst = math.Float64frombits(engine.Uint64(payload))
	}

	return value, true, nil
}

// ScalarString returns the variable's string payload, with ok == false when
// the variable is not a string scalar.
func (r *Reader) ScalarString() (string, bool, error) {
	if err := r.ready(); err != nil {
		return "", false, err
	}

	if r.v.DataType != format.TypeString {
		return "", false, nil
	}

	return string(r.v.ScalarPayload), true, nil
}
