package mixer

import "testing"

// TestBitshiftHeadroom exercises the BITSHIFT scaling applied once at
// down-conversion, not in the bus accumulation itself: a max-volume
// (vol=256) mono voice deposits sample*256 into the 32-bit bus — a naive
// reading of "vol>>9" alone would suggest the signal vanishes — and only
// ToS16's own >>9 shift brings it back down to a sane s16 range. With
// vol=256 the two shifts (×256 in, >>9 out) compose to an exact ×0.5.
func TestBitshiftHeadroom(t *testing.T) {
	pcm := []int16{1000, 2000, 3000, 0}
	v := &Voice{lvolsel: 256}
	bus := make([]int32, 4)

	mode := mixMode{layout: layoutMono, interp: false}
	mixRun[int64](v, pcm, bus, 0, fracScale, 4, mode)

	dst := make([]int16, 4)
	ToS16(dst, bus)

	want := []int16{500, 1000, 1500, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestLinearInterpolationMidpoint(t *testing.T) {
	pcm := []int16{0, 1000}

	if got := linearSample(pcm, 0); got != 0 {
		t.Fatalf("sample at index 0: got %d, want 0", got)
	}
	if got := linearSample(pcm, fracScale/2); got != 500 {
		t.Fatalf("sample at half-way index: got %d, want 500", got)
	}
}

func TestStereoMixAddsIntoBothChannels(t *testing.T) {
	pcm := []int16{100, 200}
	v := &Voice{lvolsel: 10, rvolsel: 20}
	bus := make([]int32, 4)

	mode := mixMode{layout: layoutStereo}
	mixRun[int64](v, pcm, bus, 0, fracScale, 2, mode)

	want := []int32{1000, 2000, 2000, 4000}
	for i := range want {
		if bus[i] != want[i] {
			t.Fatalf("bus[%d] = %d, want %d", i, bus[i], want[i])
		}
	}
}

func TestSurroundPhaseInversionTieBreaksLeft(t *testing.T) {
	pcm := []int16{100}
	v := &Voice{lvolsel: 50, rvolsel: 50}
	bus := make([]int32, 2)

	mode := mixMode{layout: layoutSurround}
	mixRun[int64](v, pcm, bus, 0, 0, 1, mode)

	if bus[0] != 5000 || bus[1] != -5000 {
		t.Fatalf("tied surround volumes should favor L: got (%d, %d)", bus[0], bus[1])
	}
}

// TestRampWithNoVolumeChangeMatchesSteadyState checks that arming the ramp
// without actually changing volume (oldlvol == lvolsel) introduces no bias:
// the ramped path and the plain steady-state path must agree sample for
// sample, since (oldlvol-lvolsel) is zero for every step of the ramp.
func TestRampWithNoVolumeChangeMatchesSteadyState(t *testing.T) {
	pcm := make([]int16, ClickBuffer+1)
	for i := range pcm {
		pcm[i] = 1000
	}

	ramped := &Voice{lvolsel: 200, oldlvol: 200, rampvol: ClickBuffer}
	rampedBus := make([]int32, ClickBuffer)
	mixRun[int64](ramped, pcm, rampedBus, 0, fracScale, ClickBuffer, mixMode{layout: layoutMono})

	steady := &Voice{lvolsel: 200}
	steadyBus := make([]int32, ClickBuffer)
	mixRun[int64](steady, pcm, steadyBus, 0, fracScale, ClickBuffer, mixMode{layout: layoutMono})

	for i := range steadyBus {
		if rampedBus[i] != steadyBus[i] {
			t.Fatalf("sample %d: ramped=%d steady=%d, ramp with no volume change should be a no-op",
				i, rampedBus[i], steadyBus[i])
		}
	}
	if ramped.rampvol != 0 {
		t.Fatalf("rampvol should be exhausted after CLICK_BUFFER samples, got %d", ramped.rampvol)
	}
}
