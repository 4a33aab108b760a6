package mixer

import "testing"

type driverTestStore struct {
	pcm [][]int16
}

func (s driverTestStore) Sample(handle int) []int16 {
	if handle < 0 || handle >= len(s.pcm) {
		return nil
	}
	return s.pcm[handle]
}

func newDriverTestMixer(t *testing.T, store SampleStore, mode Flag, voices int) *Mixer {
	t.Helper()
	m := New(store, 44100, mode)
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := m.SetNumVoices(voices); err != nil {
		t.Fatalf("SetNumVoices(%d): %v", voices, err)
	}
	if err := m.PlayStart(); err != nil {
		t.Fatalf("PlayStart: %v", err)
	}
	return m
}

// TestMixS16NoVoicesIsSilence covers spec.md §8 scenario 1: with zero voices
// in the pool, MixS16 must produce all-zero output regardless of how many
// frames are requested.
func TestMixS16NoVoicesIsSilence(t *testing.T) {
	m := newDriverTestMixer(t, driverTestStore{}, Stereo|Bits16, 0)

	buf := make([]int16, 1024*2)
	for i := range buf {
		buf[i] = 1234 // poison so an untouched buffer doesn't pass by accident
	}
	m.MixS16(buf)

	for i, s := range buf {
		if s != 0 {
			t.Fatalf("buf[%d] = %d, want 0 (no active voices should mix to silence)", i, s)
		}
	}
}

// TestMixS16SplitCallsMatchSingleCall exercises spec.md §8's "N frames in
// one call == several calls summing to N" property: produceTicks must slice
// frames into ticks and chunks transparently, so splitting the same total
// across arbitrary MixS16 calls cannot change the samples produced.
func TestMixS16SplitCallsMatchSingleCall(t *testing.T) {
	pcm := make([]int16, 2000)
	for i := range pcm {
		pcm[i] = int16((i*37)%4000 - 2000)
	}
	store := driverTestStore{pcm: [][]int16{pcm}}

	const frames = 777
	const mode = Stereo | Bits16 | Interp

	setupVoice := func(m *Mixer) {
		v := m.Voice(0)
		v.Handle = 0
		v.Size = len(pcm) - 1
		v.Frq = 22050
		v.Vol = 256
		v.Pan = PanLeft
		v.Kick = true
	}

	single := newDriverTestMixer(t, store, mode, 1)
	setupVoice(single)
	bufSingle := make([]int16, frames*2)
	single.MixS16(bufSingle)

	chunked := newDriverTestMixer(t, store, mode, 1)
	setupVoice(chunked)
	bufChunked := make([]int16, frames*2)
	offsets := []int{100, 250, 300, 127}
	pos := 0
	for _, n := range offsets {
		chunked.MixS16(bufChunked[pos*2 : (pos+n)*2])
		pos += n
	}
	if pos != frames {
		t.Fatalf("test bug: offsets sum to %d frames, want %d", pos, frames)
	}

	for i := range bufSingle {
		if bufSingle[i] != bufChunked[i] {
			t.Fatalf("sample %d: single-call=%d, split-call=%d", i, bufSingle[i], bufChunked[i])
		}
	}
}

// TestMixS16DeactivatesOnNilSample covers produceTicks handing mixVoices a
// handle the SampleStore doesn't recognize: the voice should deactivate
// instead of panicking or corrupting the rest of the bus.
func TestMixS16DeactivatesOnNilSample(t *testing.T) {
	store := driverTestStore{} // no samples registered
	m := newDriverTestMixer(t, store, Stereo|Bits16, 1)

	v := m.Voice(0)
	v.Handle = 0
	v.Size = 1000
	v.Frq = 22050
	v.Vol = 256
	v.Kick = true

	buf := make([]int16, 256*2)
	m.MixS16(buf)

	for i, s := range buf {
		if s != 0 {
			t.Fatalf("buf[%d] = %d, want 0 (voice with unresolvable sample should mix silent)", i, s)
		}
	}
	if m.Voice(0).Active {
		t.Error("voice should have deactivated after a nil Sample() lookup")
	}
}
