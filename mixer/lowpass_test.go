package mixer

import "testing"

func TestLowpassOfZeroBusIsZero(t *testing.T) {
	var lp lowpassState
	bus := make([]int32, 16)
	lp.Process(bus, true)
	for i, s := range bus {
		if s != 0 {
			t.Fatalf("bus[%d] = %d, want 0", i, s)
		}
	}
}

func TestLowpassMonoOnePole(t *testing.T) {
	var lp lowpassState
	bus := []int32{100, 100, 100, 100}
	lp.Process(bus, false)

	// The carried state is the half-scaled input (vnr), not the previous
	// output, matching virtch.c's MixLowPass_Normal: y[n] = vnr + n1 where
	// n1 := vnr, not n1 := y[n]. A constant input therefore settles at the
	// input's own half-scaled value rather than growing without bound.
	// y[0] = 100>>1 + 0  = 50,  n1 := 50
	// y[1] = 100>>1 + 50 = 100, n1 := 50
	// y[2] = 100>>1 + 50 = 100, n1 := 50
	// y[3] = 100>>1 + 50 = 100, n1 := 50
	want := []int32{50, 100, 100, 100}
	for i := range want {
		if bus[i] != want[i] {
			t.Fatalf("bus[%d] = %d, want %d", i, bus[i], want[i])
		}
	}
}

func TestLowpassStereoChannelsIndependent(t *testing.T) {
	var lp lowpassState
	bus := []int32{100, 0, 100, 0}
	lp.Process(bus, true)

	if bus[1] != 0 || bus[3] != 0 {
		t.Fatalf("right channel should stay at zero when fed zero, got %v", bus)
	}
	if bus[0] != 50 || bus[2] != 100 {
		t.Fatalf("left channel mismatch, got %v", bus)
	}
}

func TestLowpassStateCarriesAcrossCalls(t *testing.T) {
	var lp lowpassState
	first := []int32{100}
	lp.Process(first, false)
	if first[0] != 50 {
		t.Fatalf("first call: got %d, want 50", first[0])
	}

	second := []int32{100}
	lp.Process(second, false)
	if second[0] != 100 {
		t.Fatalf("second call should carry state forward: got %d, want 100", second[0])
	}
}
