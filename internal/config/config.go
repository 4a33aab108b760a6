// Package config turns vxmix's command-line reverb vocabulary ("none",
// "light", "medium", "silly") into a configured comb.Reverber.
package config

import (
	"fmt"

	"github.com/chriskillpack/vxmix/internal/comb"
)

// reverbPreset tunes a StereoReverb's per-filter decay/damping and overall
// wet/dry mix. Richer presets trade a longer decay and less damping for a
// wetter mix; "none" keeps the network running but fully dry so the CLI
// tools always have a uniform Reverber to drive, whether or not the user
// asked for an effect.
type reverbPreset struct {
	decay, damping, mix float32
}

var reverbPresets = map[string]reverbPreset{
	"none":   {decay: 0.5, damping: 0.5, mix: 0},
	"light":  {decay: 0.28, damping: 0.6, mix: 0.15},
	"medium": {decay: 0.5, damping: 0.5, mix: 0.35},
	"silly":  {decay: 0.84, damping: 0.2, mix: 0.7},
}

// ReverbFromFlag builds the comb.Reverber a -reverb flag value selects,
// sized for sampleRate.
func ReverbFromFlag(reverb string, sampleRate int) (comb.Reverber, error) {
	preset, ok := reverbPresets[reverb]
	if !ok {
		return nil, fmt.Errorf("unrecognized reverb setting %q", reverb)
	}
	return comb.NewStereoReverb(10*1024, preset.decay, preset.damping, preset.mix, sampleRate), nil
}
