package sequencer

import "github.com/chriskillpack/vxmix/mixer"

// pcmStore adapts a Song's instrument PCM data to mixer.SampleStore: MOD/S3M
// samples are 8-bit signed, the mixer's voice advancer wants 16-bit, and the
// linear-interpolation fetch in the mixer needs one sample of trailing
// padding past each instrument's length.
type pcmStore struct {
	data [][]int16
}

var _ mixer.SampleStore = (*pcmStore)(nil)

func newPCMStore(samples []Sample) *pcmStore {
	s := &pcmStore{data: make([][]int16, len(samples))}
	for i, smp := range samples {
		if len(smp.Data) == 0 {
			continue
		}
		buf := make([]int16, len(smp.Data)+1)
		for j, b := range smp.Data {
			buf[j] = int16(b) << 8
		}
		s.data[i] = buf
	}
	return s
}

func (s *pcmStore) Sample(handle int) []int16 {
	if handle < 0 || handle >= len(s.data) {
		return nil
	}
	return s.data[handle]
}
