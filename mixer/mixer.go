package mixer

import "errors"

// Flag is the mixer's configuration bitset, matching virtch.c's md_mode/
// DMODE_* bits (renamed and renumbered — the bit positions carry no
// on-wire meaning here so there is nothing to keep binary-compatible with).
type Flag uint32

const (
	Stereo         Flag = 1 << iota // output has 2 channels, not 1
	Bits16                          // MixS16 destination (informational; callers pick the method that matches)
	Float                           // MixF32 destination
	Interp                          // use linear interpolation, not nearest-neighbour
	SurroundMode                    // honor SurroundPan as phase-inverted Dolby-matrix output
	NoiseReduction                  // run the one-pole lowpass before reverb
	SIMDMixer                       // prefer the batched down-converters when the CPU supports them
	SoftMusic                       // invoke the tick callback to drive the sequencer
)

// ErrAllocation reports a resource-allocation failure during Init,
// SetNumVoices or PlayStart, mirroring virtch.c's MMERR_INITIALIZING_MIXER.
var ErrAllocation = errors.New("mixer: allocation failed")

const tickBufSize = 8192 + 32 // TICKLSIZE+32

// TickFunc is the sequencer collaborator invoked once per sequencer tick
// when SoftMusic is set, matching virtch.c's md_player().
type TickFunc func()

// Mixer is the virtual-channel mixing core of spec.md. It owns a fixed
// voice pool, a scratch mixing bus, and the reverb/lowpass state that
// persists across MixS16/MixU8/MixF32 calls.
type Mixer struct {
	Mode       Flag
	SampleRate int
	BPM        int
	Reverb     int // 0..15 quality knob, md_reverb

	store    SampleStore
	voices   []Voice
	tick     TickFunc
	callback func(bus []int32, portionFrames int)

	bus        []int32
	reverbBank *ReverbBank
	lowpass    lowpassState

	tickleft       int
	samplesThatFit int
}

// New constructs a Mixer reading sample data from store. Init, SetNumVoices
// and PlayStart must still be called before MixS16/MixU8/MixF32.
func New(store SampleStore, sampleRate int, mode Flag) *Mixer {
	return &Mixer{store: store, SampleRate: sampleRate, Mode: mode, BPM: 125}
}

// Init allocates the scratch mixing bus, matching virtch.c's VC1_Init.
func (m *Mixer) Init() error {
	if m.bus == nil {
		m.bus = make([]int32, tickBufSize)
	}
	return nil
}

// SetNumVoices (re)allocates the voice pool to n voices, matching
// virtch.c's VC1_SetNumVoices. Existing voice state is discarded.
func (m *Mixer) SetNumVoices(n int) error {
	if n < 0 {
		return ErrAllocation
	}
	m.voices = make([]Voice, n)
	for i := range m.voices {
		m.voices[i].Frq = 10000
		if i&1 != 0 {
			m.voices[i].Pan = PanLeft
		} else {
			m.voices[i].Pan = PanRight
		}
	}
	return nil
}

// Voices exposes the live voice pool for the sequencer collaborator to
// mutate between ticks (spec.md §3: "mutated only by the sequencer callback
// (between ticks) and by the mixer itself (during a tick)").
func (m *Mixer) Voices() []Voice { return m.voices }

func (m *Mixer) Voice(i int) *Voice { return &m.voices[i] }

// PlayStart (re)sizes the per-tick chunking and allocates the reverb bank,
// matching virtch.c's VC1_PlayStart.
func (m *Mixer) PlayStart() error {
	if m.SampleRate <= 0 || m.BPM <= 0 {
		return ErrAllocation
	}
	m.samplesThatFit = tickBufSize - 32
	if m.Mode&Stereo != 0 {
		m.samplesThatFit >>= 1
	}
	m.tickleft = 0
	m.reverbBank = NewReverbBank(m.SampleRate, m.Mode&Stereo != 0)
	m.lowpass = lowpassState{}
	return nil
}

// PlayStop releases the reverb bank, matching virtch.c's VC1_PlayStop.
func (m *Mixer) PlayStop() {
	m.reverbBank = nil
}

// SetTickFunc installs the sequencer collaborator invoked once per
// sequencer-length tick when Mode has SoftMusic set.
func (m *Mixer) SetTickFunc(fn TickFunc) { m.tick = fn }

// SetCallback installs an optional observer invoked once per mixed chunk,
// before down-conversion, matching virtch.c's vc_callback.
func (m *Mixer) SetCallback(cb func(bus []int32, portionFrames int)) { m.callback = cb }

func (m *Mixer) channels() int {
	if m.Mode&Stereo != 0 {
		return 2
	}
	return 1
}
