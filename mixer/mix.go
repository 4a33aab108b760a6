package mixer

// layout selects how a mixed sample is written into the scratch bus.
type layout int

const (
	layoutMono layout = iota
	layoutStereo
	layoutSurround
)

// mixMode is the small dispatch tag spec.md §9 asks for in place of the
// original's function-pointer selection: one enum over
// {mono, stereo, surround} x {nearest, linear}.
type mixMode struct {
	layout layout
	interp bool
}

// mixWidth is the dual integer width spec.md §9 preserves: a single generic
// algorithm parameterized by the fixed-point accumulator's representation,
// so the 32-bit path exists purely for throughput and is never a second
// implementation to keep in sync.
type mixWidth interface{ ~int32 | ~int64 }

func nearestSample(pcm []int16, index int64) int32 {
	return int32(pcm[index>>FRACBITS])
}

func linearSample(pcm []int16, index int64) int32 {
	i := index >> FRACBITS
	f := int32(index & fracMask)
	s0 := int32(pcm[i])
	s1 := int32(pcm[i+1])
	return s0 + (((s1 - s0) * f) >> FRACBITS)
}

// mixRun is the generalized form of the twelve Mix32*/Mix* variants of
// spec.md §4.B. It advances idx by increment todo times, accumulating into
// bus, and returns the new index. The anti-click ramp (spec.md §4.B) is
// handled uniformly for every layout and for both nearest and linear
// fetches, rather than being restricted to the interpolated variants only.
func mixRun[T mixWidth](v *Voice, pcm []int16, bus []int32, index, increment T, todo int, mode mixMode) T {
	idx := int64(index)
	inc := int64(increment)

	fetch := nearestSample
	if mode.interp {
		fetch = linearSample
	}

	lvolsel, rvolsel := int32(v.lvolsel), int32(v.rvolsel)
	pos := 0

	if v.rampvol > 0 {
		oldl := int32(v.oldlvol) - lvolsel
		oldr := int32(v.oldrvol) - rvolsel

		switch mode.layout {
		case layoutMono:
			for todo > 0 && v.rampvol > 0 {
				s := fetch(pcm, idx)
				idx += inc
				bus[pos] += (((lvolsel << clickShift) + oldl*int32(v.rampvol)) * s) >> clickShift
				pos++
				v.rampvol--
				todo--
			}
		case layoutStereo:
			for todo > 0 && v.rampvol > 0 {
				s := fetch(pcm, idx)
				idx += inc
				bus[pos] += (((lvolsel << clickShift) + oldl*int32(v.rampvol)) * s) >> clickShift
				bus[pos+1] += (((rvolsel << clickShift) + oldr*int32(v.rampvol)) * s) >> clickShift
				pos += 2
				v.rampvol--
				todo--
			}
		case layoutSurround:
			vol, oldvol := lvolsel, oldl
			if rvolsel > lvolsel {
				vol, oldvol = rvolsel, oldr
			}
			for todo > 0 && v.rampvol > 0 {
				s := fetch(pcm, idx)
				idx += inc
				c := (((vol << clickShift) + oldvol*int32(v.rampvol)) * s) >> clickShift
				bus[pos] += c
				bus[pos+1] -= c
				pos += 2
				v.rampvol--
				todo--
			}
		}
	}

	switch mode.layout {
	case layoutMono:
		for ; todo > 0; todo-- {
			s := fetch(pcm, idx)
			idx += inc
			bus[pos] += lvolsel * s
			pos++
		}
	case layoutStereo:
		for ; todo > 0; todo-- {
			s := fetch(pcm, idx)
			idx += inc
			bus[pos] += lvolsel * s
			bus[pos+1] += rvolsel * s
			pos += 2
		}
	case layoutSurround:
		vol := lvolsel
		if rvolsel > lvolsel {
			vol = rvolsel
		}
		if lvolsel >= rvolsel {
			for ; todo > 0; todo-- {
				s := fetch(pcm, idx)
				idx += inc
				bus[pos] += vol * s
				bus[pos+1] -= vol * s
				pos += 2
			}
		} else {
			for ; todo > 0; todo-- {
				s := fetch(pcm, idx)
				idx += inc
				bus[pos] -= vol * s
				bus[pos+1] += vol * s
				pos += 2
			}
		}
	}

	return T(idx)
}
