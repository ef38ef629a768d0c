package format

type (
	DataType        uint8
	CompressionType uint8
)

// Scalar data types. Array flavors mirror them starting at TypeInt8Array so
// the on-disk tag alone distinguishes a scalar payload from an array
// description.
const (
	TypeNone    DataType = 0
	TypeInt8    DataType = 1
	TypeUint8   DataType = 2
	TypeInt16   DataType = 3
	TypeUint16  DataType = 4
	TypeInt32   DataType = 5
	TypeUint32  DataType = 6
	TypeInt64   DataType = 7
	TypeUint64  DataType = 8
	TypeFloat32 DataType = 9
	TypeFloat64 DataType = 10
	TypeString  DataType = 11

	TypeInt8Array    DataType = 12
	TypeUint8Array   DataType = 13
	TypeInt16Array   DataType = 14
	TypeUint16Array  DataType = 15
	TypeInt32Array   DataType = 16
	TypeUint32Array  DataType = 17
	TypeInt64Array   DataType = 18
	TypeUint64Array  DataType = 19
	TypeFloat32Array DataType = 20
	TypeFloat64Array DataType = 21
	TypeStringArray  DataType = 22
)

const (
	// CompressionNone stores raw little-endian elements.
	CompressionNone CompressionType = 0
	// CompressionDelta2DInt16 stores scaled 16-bit residuals with a 2D delta
	// transform; reconstruction applies scaleFactor and addOffset.
	CompressionDelta2DInt16 CompressionType = 1
	// CompressionXor2D stores float/double bit patterns XORed against the
	// previous chunk row. Lossless, no scale/offset.
	CompressionXor2D CompressionType = 2
	// CompressionDelta2D stores unscaled integer residuals with a 2D delta
	// transform, reconstructed to the native integer width.
	CompressionDelta2D CompressionType = 3
	// CompressionDelta2DInt16Log is CompressionDelta2DInt16 with a base-10
	// logarithmic transform applied before quantization.
	CompressionDelta2DInt16Log CompressionType = 4
	// CompressionZstd, CompressionS2 and CompressionLZ4 block-compress the
	// raw element bytes with a general-purpose codec. No numeric transform.
	CompressionZstd CompressionType = 5
	CompressionS2   CompressionType = 6
	CompressionLZ4  CompressionType = 7
)

// IsArray reports whether t describes an N-dimensional array variable.
func (t DataType) IsArray() bool {
	return t >= TypeInt8Array && t <= TypeStringArray
}

// Elem returns the scalar element type of an array type. Scalar types map to
// themselves, so Elem is safe to call on any valid DataType.
func (t DataType) Elem() DataType {
	if t.IsArray() {
		return t - TypeInt8Array + TypeInt8
	}

	return t
}

// Size returns the element size in bytes, or 0 for strings and TypeNone.
func (t DataType) Size() int {
	switch t.Elem() {
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat32:
		return 4
	case TypeInt64, TypeUint64, TypeFloat64:
		return 8
	default:
		return 0
	}
}

func (t DataType) String() string {
	suffix := ""
	if t.IsArray() {
		suffix = "Array"
	}

	switch t.Elem() {
	case TypeInt8:
		return "Int8" + suffix
	case TypeUint8:
		return "Uint8" + suffix
	case TypeInt16:
		return "Int16" + suffix
	case TypeUint16:
		return "Uint16" + suffix
	case TypeInt32:
		return "Int32" + suffix
	case TypeUint32:
		return "Uint32" + suffix
	case TypeInt64:
		return "Int64" + suffix
	case TypeUint64:
		return "Uint64" + suffix
	case TypeFloat32:
		return "Float32" + suffix
	case TypeFloat64:
		return "Float64" + suffix
	case TypeString:
		return "String" + suffix
	default:
		return "None"
	}
}

// Lossless reports whether c reconstructs the stored values bit-exactly.
func (c CompressionType) Lossless() bool {
	return c != CompressionDelta2DInt16 && c != CompressionDelta2DInt16Log
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionDelta2DInt16:
		return "Delta2DInt16"
	case CompressionXor2D:
		return "Xor2D"
	case CompressionDelta2D:
		return "Delta2D"
	case CompressionDelta2DInt16Log:
		return "Delta2DInt16Log"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the defined compression kinds.
func (c CompressionType) Valid() bool {
	return c <= CompressionLZ4
}
