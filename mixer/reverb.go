package mixer

// reverbRounds are the eight comb-line periods (in hundred-thousandths of a
// second) virtch.c derives its buffer lengths from. Dividing by 110000
// instead of 100000 is the original source's own fudge factor, preserved
// verbatim.
var reverbRounds = [8]int{5000, 5078, 5313, 5703, 6250, 6953, 7813, 8828}

const reverbDivisor = 110000

// reverbLine is one comb-filter delay line. buf is allocated one word longer
// than length; that trailing word is never addressed (COMPUTE_LOC always
// takes the index modulo length) but the original source allocates it that
// way and ReverbBank matches it rather than trimming it.
type reverbLine struct {
	buf    []int32
	length int
}

func newReverbLine(sampleRate, roundK int) reverbLine {
	length := roundK * sampleRate / reverbDivisor
	if length < 1 {
		length = 1
	}
	return reverbLine{buf: make([]int32, length+1), length: length}
}

// ReverbBank is the eight-tap alternating-sign comb reverb of spec.md §4.C,
// grounded on virtch.c's MixReverb_Normal/MixReverb_Stereo. Mono and stereo
// share the same comb-line math; stereo simply runs two independent sets of
// lines and a different ReverbPct formula.
type ReverbBank struct {
	left, right [8]reverbLine
	index       uint64
	stereo      bool
}

// NewReverbBank allocates a bank sized for sampleRate. stereo selects the
// stereo line set and ReverbPct formula; a mono bank only allocates the left
// lines.
func NewReverbBank(sampleRate int, stereo bool) *ReverbBank {
	rb := &ReverbBank{stereo: stereo}
	for i, r := range reverbRounds {
		rb.left[i] = newReverbLine(sampleRate, r)
		if stereo {
			rb.right[i] = newReverbLine(sampleRate, r)
		}
	}
	return rb
}

// feed writes the feedback-filtered input into line at the current index.
func (rb *ReverbBank) feed(line *reverbLine, sample, pct int32) {
	loc := int(rb.index % uint64(line.length))
	line.buf[loc] = sample + ((pct * line.buf[loc]) >> 7)
}

// tap reads line at the (already advanced) current index.
func (rb *ReverbBank) tap(line *reverbLine) int32 {
	loc := int(rb.index % uint64(line.length))
	return line.buf[loc]
}

func sumTaps(lines *[8]reverbLine, rb *ReverbBank) int32 {
	var sum int32
	sign := int32(1)
	for i := range lines {
		sum += sign * rb.tap(&lines[i])
		sign = -sign
	}
	return sum
}

// Process mixes the reverb tail into bus in place. level is the 0..15
// md_reverb quality knob; Process does not clamp it. The tick driver clamps
// Mixer.Reverb to 15 before every call, so a larger value is never used.
func (rb *ReverbBank) Process(bus []int32, level int) {
	if rb.stereo {
		pct := int32(92 + level*2)
		for i := 0; i+1 < len(bus); i += 2 {
			l, r := bus[i], bus[i+1]
			su := l >> 3
			for k := range rb.left {
				rb.feed(&rb.left[k], su, pct)
			}
			su = r >> 3
			for k := range rb.right {
				rb.feed(&rb.right[k], su, pct)
			}
			rb.index++
			bus[i] = l + sumTaps(&rb.left, rb)
			bus[i+1] = r + sumTaps(&rb.right, rb)
		}
		return
	}

	pct := int32(58 + level*4)
	for i := range bus {
		su := bus[i] >> 3
		for k := range rb.left {
			rb.feed(&rb.left[k], su, pct)
		}
		rb.index++
		bus[i] += sumTaps(&rb.left, rb)
	}
}
