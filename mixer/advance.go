package mixer

// narrowLimit is the boundary below which a fixed-point position and its
// endpoint both fit in a 32-bit accumulator, letting the 32-bit instantiation
// of mixRun run instead of the 64-bit one. Mirrors the magnitude virtch.c's
// index/increment pair stays under for ordinary sample rates and sizes.
const narrowLimit = 0x7fffffff

// Advance produces up to todo output frames for v into bus, resolving any
// loop/end-of-sample boundary crossings along the way (spec.md §4.A). It
// returns the number of frames actually produced, which is less than todo
// only when the voice deactivates partway through. bus must have room for
// todo frames in the layout mode.layout implies (1 word/frame mono,
// 2 words/frame stereo or surround).
func (v *Voice) Advance(pcm []int16, bus []int32, todo int, mode mixMode) int {
	produced := 0

	for todo > 0 {
		if !v.Active {
			break
		}
		if !v.resolveBoundary() {
			break
		}

		end := v.boundaryEnd()

		// done = MIN((end-current)/increment + 1, todo), per AddChannel.
		// end==current or a zero increment both mean the voice is blocked
		// and goes inactive rather than spinning in place.
		var run int64
		if end == v.current || v.increment == 0 {
			run = 0
		} else {
			run = (end-v.current)/v.increment + 1
			if run > int64(todo) {
				run = int64(todo)
			}
			if run < 0 {
				run = 0
			}
		}

		if run == 0 {
			v.Active = false
			break
		}

		endpos := v.current + run*v.increment

		if v.Vol != 0 {
			offset := produced
			if mode.layout != layoutMono {
				offset *= 2
			}
			sub := bus[offset:]

			if v.current > -narrowLimit && v.current < narrowLimit && endpos > -narrowLimit && endpos < narrowLimit {
				v.current = int64(mixRun(v, pcm, sub, int32(v.current), int32(v.increment), int(run), mode))
			} else {
				v.current = mixRun(v, pcm, sub, v.current, v.increment, int(run), mode)
			}
		} else {
			v.current = endpos
		}

		produced += int(run)
		todo -= int(run)
	}

	return produced
}
