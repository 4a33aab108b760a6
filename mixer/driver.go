package mixer

// produceTicks is the common core of VC1_WriteSamples: it slices frames
// into sequencer-tick intervals, and each tick interval into
// samplesThatFit-sized chunks, running the full per-chunk pipeline (voice
// advance, lowpass, reverb, callback) and handing the filled 32-bit bus to
// emit for down-conversion. offset is a frame count, not a sample count;
// emit is responsible for scaling it by the channel count.
func (m *Mixer) produceTicks(frames int, emit func(offset int, bus []int32)) {
	stereo := m.Mode&Stereo != 0
	produced := 0

	for produced < frames {
		if m.tickleft == 0 {
			if m.Mode&SoftMusic != 0 && m.tick != nil {
				m.tick()
			}
			m.tickleft = (m.SampleRate * 125) / (m.BPM * 50)
		}

		left := frames - produced
		if m.tickleft < left {
			left = m.tickleft
		}
		m.tickleft -= left

		for left > 0 {
			portion := left
			if portion > m.samplesThatFit {
				portion = m.samplesThatFit
			}
			count := portion
			if stereo {
				count = portion << 1
			}

			bus := m.bus[:count]
			for i := range bus {
				bus[i] = 0
			}

			m.mixVoices(bus, portion, stereo)

			if m.Mode&NoiseReduction != 0 {
				m.lowpass.Process(bus, stereo)
			}

			if m.Reverb > 0 {
				if m.Reverb > 15 {
					m.Reverb = 15
				}
				if m.reverbBank == nil {
					m.reverbBank = NewReverbBank(m.SampleRate, stereo)
				}
				m.reverbBank.Process(bus, m.Reverb)
			}

			if m.callback != nil {
				m.callback(bus, portion)
			}

			emit(produced, bus)

			produced += portion
			left -= portion
		}
	}
}

// mixVoices runs the per-voice setup and dispatch of virtch.c's
// VC1_WriteSamples inner loop (the `for(t=0;t<vc_softchn;t++)` body): kick
// handling, increment/pan/volume recompute, loop-bound recompute, and the
// Advance call that does the actual mixing.
func (m *Mixer) mixVoices(bus []int32, portion int, stereo bool) {
	for i := range m.voices {
		v := &m.voices[i]

		if v.Kick {
			v.current = int64(v.Start) << FRACBITS
			v.Kick = false
			v.Active = true
		}

		if v.Frq == 0 {
			v.Active = false
		}

		if !v.Active {
			continue
		}

		v.increment = (int64(v.Frq) << FRACBITS) / int64(m.SampleRate)
		if v.Flags&FlagReverse != 0 {
			v.increment = -v.increment
		}

		v.oldlvol, v.oldrvol = v.lvolsel, v.rvolsel
		if stereo {
			if v.Pan != SurroundPan {
				v.lvolsel = (v.Vol * (PanRight - v.Pan)) >> 8
				v.rvolsel = (v.Vol * v.Pan) >> 8
			} else {
				v.lvolsel = v.Vol / 2
				v.rvolsel = v.Vol / 2
			}
		} else {
			v.lvolsel = v.Vol
		}

		v.recomputeBounds()

		pcm := m.store.Sample(v.Handle)
		if pcm == nil {
			v.current, v.Active = 0, false
			continue
		}

		mode := mixMode{interp: m.Mode&Interp != 0, layout: layoutMono}
		if stereo {
			if v.Pan == SurroundPan && m.Mode&SurroundMode != 0 {
				mode.layout = layoutSurround
			} else {
				mode.layout = layoutStereo
			}
		}

		v.Advance(pcm, bus, portion, mode)
	}
}

// MixS16 fills dst (len(dst) must be a multiple of the channel count) with
// signed 16-bit PCM, matching virtch.c's VC1_WriteSamples + Mix32To16.
func (m *Mixer) MixS16(dst []int16) {
	ch := m.channels()
	m.produceTicks(len(dst)/ch, func(offset int, bus []int32) {
		sub := dst[offset*ch : offset*ch+len(bus)]
		if m.Mode&SIMDMixer != 0 && simdAvailable() {
			toS16SIMD(sub, bus)
		} else {
			ToS16(sub, bus)
		}
	})
}

// MixU8 fills dst with unsigned 8-bit PCM, matching Mix32To8.
func (m *Mixer) MixU8(dst []uint8) {
	ch := m.channels()
	m.produceTicks(len(dst)/ch, func(offset int, bus []int32) {
		sub := dst[offset*ch : offset*ch+len(bus)]
		if m.Mode&SIMDMixer != 0 && simdAvailable() {
			toU8SIMD(sub, bus)
		} else {
			ToU8(sub, bus)
		}
	})
}

// MixF32 fills dst with float32 PCM in [-1, 1], matching Mix32ToFP.
func (m *Mixer) MixF32(dst []float32) {
	ch := m.channels()
	m.produceTicks(len(dst)/ch, func(offset int, bus []int32) {
		sub := dst[offset*ch : offset*ch+len(bus)]
		if m.Mode&SIMDMixer != 0 && simdAvailable() {
			toF32SIMD(sub, bus)
		} else {
			ToF32(sub, bus)
		}
	})
}
