package encoding

import "math"

// Int16 quantization bounds for the lossy 16-bit codecs. Reconstructed
// quantized values outside this window mean the payload is corrupt.
const (
	MinQuantized = math.MinInt16
	MaxQuantized = math.MaxInt16
)

// Reconstruct maps a quantized value back to its physical value for the
// plain scaled codec: v = q/scaleFactor - addOffset.
func Reconstruct(q int64, scaleFactor, addOffset float64) float64 {
	return float64(q)/scaleFactor - addOffset
}

// ReconstructLog maps a quantized value back for the logarithmic codec:
// the base-10 inverse 10^x - 1 runs before the offset is removed.
func ReconstructLog(q int64, scaleFactor, addOffset float64) float64 {
	return math.Pow(10, float64(q)/scaleFactor) - 1 - addOffset
}

// Quantize is the forward transform of Reconstruct, rounding to nearest.
// Used by test fixture builders.
func Quantize(v float64, scaleFactor, addOffset float64) int64 {
	return int64(math.Round((v + addOffset) * scaleFactor))
}

// QuantizeLog is the forward transform of ReconstructLog.
func QuantizeLog(v float64, scaleFactor, addOffset float64) int64 {
	return int64(math.Round(scaleFactor * math.Log10(v+addOffset+1)))
}
