//go:build arm64

package mixer

import "golang.org/x/sys/cpu"

// simdAvailable mirrors the amd64 build's gate, using ARM64's ASIMD feature
// bit. The teacher's own mixer_arm64.go gates its NEON path behind a build
// tag but always falls back to the scalar mixer at runtime (its cgo call is
// commented out); vxmix instead implements the batched path in pure Go and
// actually uses it when the feature is present.
func simdAvailable() bool {
	return cpu.ARM64.HasASIMD
}

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
