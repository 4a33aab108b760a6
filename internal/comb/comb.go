// Package comb implements the streaming reverb stage used by the vxplay
// terminal player and vxwav renderer: a Freeverb-style comb+allpass network
// (StereoReverb) that buffers internally so it can be driven by audio
// chunks of any size.
package comb

// Reverber is satisfied by anything that can consume interleaved stereo s16
// audio and later produce the processed result, buffering internally.
// StereoReverb implements it.
type Reverber interface {
	InputSamples(in []int16) int
	GetAudio(out []int16) int
}

// allpassFilter is a Freeverb-style allpass section: a delay line with a
// feedback gain of 0.5, used to diffuse the comb bank's output.
type allpassFilter struct {
	buffer   []int32
	idx      int
	feedback float32
}

func newAllpass(delay int) *allpassFilter {
	if delay < 1 {
		delay = 1
	}
	return &allpassFilter{buffer: make([]int32, delay), feedback: 0.5}
}

func (a *allpassFilter) process(input int32) int32 {
	bufout := a.buffer[a.idx]
	output := -input + bufout
	a.buffer[a.idx] = input + int32(float32(bufout)*a.feedback)
	a.idx++
	if a.idx >= len(a.buffer) {
		a.idx = 0
	}
	return output
}

// combFilter is a feedback comb section with a one-pole damping filter in
// the feedback path, the building block of a Freeverb-style tank.
type combFilter struct {
	buffer      []int32
	idx         int
	feedback    float32
	damp1       float32
	damp2       float32
	filterStore float32
}

func newCombFilter(delay int, decay, damping float32) *combFilter {
	if delay < 1 {
		delay = 1
	}
	return &combFilter{
		buffer:   make([]int32, delay),
		feedback: decay,
		damp1:    damping,
		damp2:    1 - damping,
	}
}

func (c *combFilter) process(input int32) int32 {
	output := c.buffer[c.idx]
	c.filterStore = float32(output)*c.damp2 + c.filterStore*c.damp1
	c.buffer[c.idx] = input + int32(c.filterStore*c.feedback)
	c.idx++
	if c.idx >= len(c.buffer) {
		c.idx = 0
	}
	return output
}

// stereoSpread offsets the right channel's delay lengths from the left's,
// the Freeverb trick that keeps the two channels decorrelated.
const stereoSpread = 23

var combTuning = [4]int{1116, 1188, 1277, 1356}
var allpassTuning = [2]int{556, 441}

// StereoReverb is a small Freeverb-style reverb tank: four comb filters
// summed in parallel feeding two allpass filters in series, run
// independently per channel and blended against the dry signal by mix.
// It buffers processed audio internally in a fixed-capacity ring so
// InputSamples/GetAudio can be called with buffers of any size.
type StereoReverb struct {
	combL, combR       [4]*combFilter
	allpassL, allpassR [2]*allpassFilter
	mix                float32

	ring              []int16
	head, tail, count int
}

// NewStereoReverb builds a StereoReverb whose ring buffer holds
// bufferFrames stereo frames. decay and damping configure every comb
// filter, mix is the wet/dry blend (0 = dry, 1 = fully wet), and sampleRate
// scales the Freeverb tuning constants (defined at 44100 Hz).
func NewStereoReverb(bufferFrames int, decay, damping, mix float32, sampleRate int) *StereoReverb {
	scale := float64(sampleRate) / 44100.0

	sr := &StereoReverb{
		mix:  mix,
		ring: make([]int16, bufferFrames*2),
	}
	for i := range combTuning {
		dl := int(float64(combTuning[i]) * scale)
		dr := int(float64(combTuning[i]+stereoSpread) * scale)
		sr.combL[i] = newCombFilter(dl, decay, damping)
		sr.combR[i] = newCombFilter(dr, decay, damping)
	}
	for i := range allpassTuning {
		dl := int(float64(allpassTuning[i]) * scale)
		dr := int(float64(allpassTuning[i]+stereoSpread) * scale)
		sr.allpassL[i] = newAllpass(dl)
		sr.allpassR[i] = newAllpass(dr)
	}
	return sr
}

var _ Reverber = (*StereoReverb)(nil)

func (sr *StereoReverb) processFrame(inL, inR int16) (int16, int16) {
	var wetL, wetR int32
	for i := range sr.combL {
		wetL += sr.combL[i].process(int32(inL))
		wetR += sr.combR[i].process(int32(inR))
	}
	wetL /= int32(len(sr.combL))
	wetR /= int32(len(sr.combR))
	for i := range sr.allpassL {
		wetL = sr.allpassL[i].process(wetL)
		wetR = sr.allpassR[i].process(wetR)
	}
	return blend(inL, wetL, sr.mix), blend(inR, wetR, sr.mix)
}

func blend(dry int16, wet int32, mix float32) int16 {
	v := (1-mix)*float32(dry) + mix*float32(wet)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// InputSamples runs as many whole stereo frames of in through the reverb
// network as fit in the ring buffer's free space, returning the number of
// int16 elements consumed (always an even number of interleaved L/R
// values). Once the ring is full it returns 0 until GetAudio drains it.
func (sr *StereoReverb) InputSamples(in []int16) int {
	capacity := len(sr.ring)
	free := capacity - sr.count
	n := len(in)
	if n > free {
		n = free
	}
	n -= n % 2

	for i := 0; i < n; i += 2 {
		l, r := sr.processFrame(in[i], in[i+1])
		sr.ring[sr.tail] = l
		sr.tail = (sr.tail + 1) % capacity
		sr.ring[sr.tail] = r
		sr.tail = (sr.tail + 1) % capacity
	}
	sr.count += n

	return n
}

// GetAudio drains up to len(out) processed samples into out, returning how
// many were written.
func (sr *StereoReverb) GetAudio(out []int16) int {
	n := len(out)
	if n > sr.count {
		n = sr.count
	}
	capacity := len(sr.ring)
	for i := 0; i < n; i++ {
		out[i] = sr.ring[sr.head]
		sr.head = (sr.head + 1) % capacity
	}
	sr.count -= n
	return n
}
