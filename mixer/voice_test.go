package mixer

import "testing"

// positionTrace drives v through n frames, recording current>>FRACBITS
// immediately after each boundary resolution (the sample index that frame
// would read), and manually stepping current the way Advance's
// steady-state path does for a unit run. This isolates the loop resolver
// (component A) from the mixer arithmetic (component B).
func positionTrace(v *Voice, n int) []int64 {
	trace := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		if !v.resolveBoundary() {
			trace = append(trace, -1)
			continue
		}
		trace = append(trace, v.current>>FRACBITS)
		v.current += v.increment
	}
	return trace
}

func TestForwardLoopPositionTrace(t *testing.T) {
	v := &Voice{
		Flags:     FlagLoop,
		Size:      4,
		RepPos:    2,
		RepEnd:    4,
		increment: fracScale,
		Active:    true,
	}
	v.recomputeBounds()

	got := positionTrace(v, 10)
	want := []int64{0, 1, 2, 3, 2, 3, 2, 3, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, got, want)
		}
	}
}

func TestBidiLoopPositionTrace(t *testing.T) {
	v := &Voice{
		Flags:     FlagLoop | FlagBidi,
		Size:      3,
		RepPos:    0,
		RepEnd:    3,
		increment: fracScale,
		Active:    true,
	}
	v.recomputeBounds()

	// The reflection current := idxlend-(current-idxlend) (and its mirror
	// at idxlpos) lands a fixed-point unit or two inside the boundary it
	// bounced off of, so the integer position repeats once at each peak
	// and trough instead of bouncing cleanly — this is the bidi loop's
	// actual behavior per virtch.c's AddChannel, not a rounded triangle
	// wave.
	got := positionTrace(v, 8)
	want := []int64{0, 1, 2, 2, 1, 0, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, got, want)
		}
	}
}

func TestNonLoopingVoiceDeactivatesAtEnd(t *testing.T) {
	v := &Voice{
		Size:      2,
		increment: fracScale,
		Active:    true,
	}
	v.recomputeBounds()

	for i := 0; i < 2; i++ {
		if !v.resolveBoundary() {
			t.Fatalf("voice deactivated early at frame %d", i)
		}
		v.current += v.increment
	}

	if v.resolveBoundary() {
		t.Fatalf("expected voice to deactivate once current reaches idxsize")
	}
	if v.Active {
		t.Fatalf("Active should be false after deactivation")
	}
	if v.current != 0 {
		t.Fatalf("current should reset to 0 on deactivation, got %d", v.current)
	}
}

func TestBoundaryEndSelectsByDirectionAndLoop(t *testing.T) {
	v := &Voice{Size: 4, RepPos: 1, RepEnd: 3}
	v.recomputeBounds()

	v.Flags = 0
	if got := v.boundaryEnd(); got != v.idxsize {
		t.Fatalf("no-loop forward: got %d, want idxsize %d", got, v.idxsize)
	}

	v.Flags = FlagLoop
	if got := v.boundaryEnd(); got != v.idxlend {
		t.Fatalf("loop forward: got %d, want idxlend %d", got, v.idxlend)
	}

	v.Flags = FlagLoop | FlagReverse
	if got := v.boundaryEnd(); got != v.idxlpos {
		t.Fatalf("loop reverse: got %d, want idxlpos %d", got, v.idxlpos)
	}

	v.Flags = FlagReverse
	if got := v.boundaryEnd(); got != 0 {
		t.Fatalf("no-loop reverse: got %d, want 0", got)
	}
}
