package mixer

// Flag bits recognised on a Voice. These mirror the SF_* bits of the mikmod
// VINFO.flags field this mixer is descended from.
type SampleFlag uint16

const (
	Flag16Bits  SampleFlag = 1 << iota // sample data is 16-bit (unset = 8-bit)
	FlagLoop                           // sample loops between reppos and repend
	FlagBidi                           // loop direction flips at each endpoint
	FlagReverse                        // currently playing backwards
)

const (
	// FRACBITS is the fixed-point fraction width of the phase accumulator.
	FRACBITS  = 11
	fracMask  = (1 << FRACBITS) - 1
	fracScale = 1 << FRACBITS

	// CLICK_SHIFT/CLICK_BUFFER control the anti-click volume ramp.
	clickShift  = 6
	ClickBuffer = 1 << clickShift // CLICK_BUFFER

	// SurroundPan is the sentinel pan value that, combined with the
	// SURROUND config flag, triggers phase-inverted Dolby-matrix output.
	SurroundPan = -1

	PanLeft  = 0
	PanRight = 255
)

// Voice is one polyphonic playing slot. Its control fields (Handle, Flags,
// Start, Size, RepPos, RepEnd, Frq, Vol, Pan, Kick) are owned by the
// sequencer callback between ticks; the remaining fields are owned by the
// mixer itself and mutated only while a tick is being produced.
type Voice struct {
	Handle int  // index into the Mixer's SampleStore
	Flags  SampleFlag
	Active bool // whether the voice currently contributes
	Kick   bool // one-shot "restart at Start" flag, set by the sequencer

	Start, Size     int // sample-domain positions, unit = PCM samples
	RepPos, RepEnd  int // 0 <= RepPos <= RepEnd <= Size
	Frq             int // playback frequency in Hz
	Vol             int // 0..256
	Pan             int // 0..255, or SurroundPan

	current   int64 // fixed point Q_.FRACBITS playback position
	increment int64 // signed Q_.FRACBITS step per output sample

	lvolsel, rvolsel int // current per-side volume factor, 0..255
	oldlvol, oldrvol int // previous chunk's factors, feeds the ramp
	rampvol          int // samples remaining in the click-suppression ramp

	idxsize, idxlend, idxlpos int64
}

// recomputeBounds refreshes the index-domain loop boundaries from the
// sample-domain control fields. Called for every mixed chunk, before any
// samples are advanced, mirroring VC1_WriteSamples's per-voice setup in virtch.c.
func (v *Voice) recomputeBounds() {
	v.idxsize = 0
	if v.Size > 0 {
		v.idxsize = int64(v.Size)<<FRACBITS - 1
	}
	v.idxlend = 0
	if v.RepEnd > 0 {
		v.idxlend = int64(v.RepEnd)<<FRACBITS - 1
	}
	v.idxlpos = int64(v.RepPos) << FRACBITS
}

// resolveBoundary detects and resolves a loop/end-of-sample crossing that
// happened since the last call, per spec.md §4.A step 1. It must run before
// any samples are mixed for the current run. Returns false if the voice
// deactivated as a result.
func (v *Voice) resolveBoundary() bool {
	if v.Flags&FlagReverse != 0 {
		if v.Flags&FlagLoop != 0 && v.current < v.idxlpos {
			if v.Flags&FlagBidi != 0 {
				v.current = v.idxlpos + (v.idxlpos - v.current)
				v.Flags &^= FlagReverse
				v.increment = -v.increment
			} else {
				v.current = v.idxlend - (v.idxlpos - v.current)
			}
		} else if v.current < 0 {
			v.current, v.Active = 0, false
			return false
		}
	} else {
		if v.Flags&FlagLoop != 0 && v.current >= v.idxlend {
			if v.Flags&FlagBidi != 0 {
				v.Flags |= FlagReverse
				v.increment = -v.increment
				v.current = v.idxlend - (v.current - v.idxlend)
			} else {
				v.current = v.idxlpos + (v.current - v.idxlend)
			}
		} else if v.current >= v.idxsize {
			v.current, v.Active = 0, false
			return false
		}
	}
	return true
}

// boundaryEnd returns the next boundary position in the current playback
// direction, per spec.md §4.A step 2.
func (v *Voice) boundaryEnd() int64 {
	if v.Flags&FlagReverse != 0 {
		if v.Flags&FlagLoop != 0 {
			return v.idxlpos
		}
		return 0
	}
	if v.Flags&FlagLoop != 0 {
		return v.idxlend
	}
	return v.idxsize
}
