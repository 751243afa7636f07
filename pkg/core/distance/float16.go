package distance

import "github.com/x448/float16"

// EncodeFloat16 converts a float32 vector to its IEEE 754 half-precision bits.
// Values outside the float16 range become ±Inf.
func EncodeFloat16(src []float32) []uint16 {
	out := make([]uint16, len(src))
	for i, v := range src {
		out[i] = float16.Fromfloat32(v).Bits()
	}
	return out
}

// DecodeFloat16 expands half-precision bits into a new float32 vector.
func DecodeFloat16(src []uint16) []float32 {
	out := make([]float32, len(src))
	for i, b := range src {
		out[i] = float16.Frombits(b).Float32()
	}
	return out
}
