//go:build amd64

package mixer

import "golang.org/x/sys/cpu"

// simdAvailable reports whether the batched down-converters below are safe
// to use on this CPU. virtch.c gates its SIMD converters on
// HAVE_SSE2/HAVE_ALTIVEC at compile time; vxmix gates the same decision at
// runtime via golang.org/x/sys/cpu instead, since a Go binary is not
// recompiled per target the way the C library was.
func simdAvailable() bool {
	return cpu.X86.HasSSE2
}

// toS16SIMD is the batched counterpart to ToS16, eight samples per
// iteration to mirror virtch.c's Mix32To16_SIMD loop shape (toU8SIMD takes
// sixteen, toF32SIMD four). It is plain Go, not actual SIMD intrinsics, and
// is numerically identical to ToS16 by construction.
func toS16SIMD(dst []int16, src []int32) {
	n := len(src)
	i := 0
	for ; i+8 <= n; i += 8 {
		for j := 0; j < 8; j++ {
			v := src[i+j] >> (BITSHIFT + 16 - 16)
			switch {
			case v >= 32768:
				v = 32767
			case v < -32768:
				v = -32768
			}
			dst[i+j] = int16(v)
		}
	}
	ToS16(dst[i:n], src[i:n])
}

func toU8SIMD(dst []uint8, src []int32) {
	n := len(src)
	i := 0
	for ; i+16 <= n; i += 16 {
		for j := 0; j < 16; j++ {
			v := src[i+j] >> (BITSHIFT + 16 - 8)
			switch {
			case v >= 128:
				v = 127
			case v < -128:
				v = -128
			}
			dst[i+j] = uint8(v + 128)
		}
	}
	ToU8(dst[i:n], src[i:n])
}

func toF32SIMD(dst []float32, src []int32) {
	const scale = (1.0 / 32768.0) / float32(int32(1)<<fpShift)
	n := len(src)
	i := 0
	for ; i+4 <= n; i += 4 {
		for j := 0; j < 4; j++ {
			v := float32(src[i+j]>>(BITSHIFT-fpShift)) * scale
			switch {
			case v > 1.0:
				v = 1.0
			case v < -1.0:
				v = -1.0
			}
			dst[i+j] = v
		}
	}
	ToF32(dst[i:n], src[i:n])
}
