package mixer

// SampleStore resolves a Voice's Handle to its PCM data, per spec.md §3's
// "Sample table (external): handle -> ptr-to-s16-PCM | null". A nil return
// silently deactivates the requesting voice until it is kicked again,
// matching virtch.c's AddChannel ("if(!(s=Samples[vnf->handle])) ... return").
//
// Returned slices must carry at least one sample of trailing padding past
// Size so the linear-interpolation fetch in mix.go can always read
// PCM[i] and PCM[i+1] for the largest valid index i.
type SampleStore interface {
	Sample(handle int) []int16
}
