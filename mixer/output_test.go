package mixer

import "testing"

func TestToS16Saturates(t *testing.T) {
	src := []int32{0x7fffffff, -0x7fffffff, 0}
	dst := make([]int16, len(src))
	ToS16(dst, src)

	want := []int16{32767, -32768, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestToU8SaturatesAndBiases(t *testing.T) {
	src := []int32{0x7fffffff, -0x7fffffff, 0}
	dst := make([]uint8, len(src))
	ToU8(dst, src)

	want := []uint8{255, 0, 128}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestToF32Saturates(t *testing.T) {
	src := []int32{0x7fffffff, -0x7fffffff, 0}
	dst := make([]float32, len(src))
	ToF32(dst, src)

	if dst[0] != 1.0 {
		t.Fatalf("dst[0] = %v, want 1.0", dst[0])
	}
	if dst[1] != -1.0 {
		t.Fatalf("dst[1] = %v, want -1.0", dst[1])
	}
	if dst[2] != 0 {
		t.Fatalf("dst[2] = %v, want 0", dst[2])
	}
}

// TestSIMDConvertersMatchScalar holds for every input length including
// misaligned and tail cases, per spec.md §8.
func TestSIMDConvertersMatchScalar(t *testing.T) {
	for n := 0; n < 20; n++ {
		src := make([]int32, n)
		for i := range src {
			src[i] = int32(i*104729 - 7)
		}

		gotS16, wantS16 := make([]int16, n), make([]int16, n)
		toS16SIMD(gotS16, src)
		ToS16(wantS16, src)
		for i := range wantS16 {
			if gotS16[i] != wantS16[i] {
				t.Fatalf("s16 n=%d i=%d: simd=%d scalar=%d", n, i, gotS16[i], wantS16[i])
			}
		}

		gotU8, wantU8 := make([]uint8, n), make([]uint8, n)
		toU8SIMD(gotU8, src)
		ToU8(wantU8, src)
		for i := range wantU8 {
			if gotU8[i] != wantU8[i] {
				t.Fatalf("u8 n=%d i=%d: simd=%d scalar=%d", n, i, gotU8[i], wantU8[i])
			}
		}

		gotF32, wantF32 := make([]float32, n), make([]float32, n)
		toF32SIMD(gotF32, src)
		ToF32(wantF32, src)
		for i := range wantF32 {
			if gotF32[i] != wantF32[i] {
				t.Fatalf("f32 n=%d i=%d: simd=%v scalar=%v", n, i, gotF32[i], wantF32[i])
			}
		}
	}
}
