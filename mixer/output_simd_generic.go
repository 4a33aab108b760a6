//go:build !amd64 && !arm64

package mixer

// simdAvailable is always false on architectures without a batched
// converter implementation; Mixer falls back to the scalar path.
func simdAvailable() bool { return false }

func toS16SIMD(dst []int16, src []int32)   { ToS16(dst, src) }
func toU8SIMD(dst []uint8, src []int32)    { ToU8(dst, src) }
func toF32SIMD(dst []float32, src []int32) { ToF32(dst, src) }
