package sequencer

import (
	"errors"
	"math"
	"sync"

	"github.com/chriskillpack/vxmix/mixer"
)

// retraceNTSCHz is the Amiga NTSC vertical retrace constant MOD period
// arithmetic is built on. S3M notes are translated into the same period
// domain so both formats drive the tracker effects uniformly.
const retraceNTSCHz = 7159090.5

var ErrNoChannels = errors.New("sequencer: song has no channels")

// channel is the sequencer's per-voice tracker state: the tracker-level
// knobs (period, volume, pan, pending effect) that drive one mixer.Voice.
// It has a 1:1 relationship with a mixer voice index.
type channel struct {
	sample      int // currently playing instrument, -1 = none
	period      int // Amiga-period-equivalent pitch, 0 = silent
	portaPeriod int
	portaSpeed  int
	volume      int // 0..64
	pan         int // 0..255
	fineTune    int
	offset      int // pending sample-offset effect, in PCM samples

	effect        byte
	param         byte
	effectCounter int

	kick             bool
	trigOrder, trigRow int
}

// ChannelNoteData is one channel's decoded pattern cell, formatted for
// display.
type ChannelNoteData struct {
	Note       string
	Instrument int // raw 1-based instrument number, 0 = none
	Volume     int
	Effect     byte
	Param      byte
}

// ChannelState is a channel's live playback status.
type ChannelState struct {
	Instrument          int // 0-based index into Song.Samples, -1 = none
	TrigOrder, TrigRow  int
}

// PlayerState is a snapshot of playback position and per-channel status.
type PlayerState struct {
	Order, Row int
	Channels   []ChannelState
	Notes      []ChannelNoteData
}

// PlayerPosition is a lightweight position-only snapshot, used by headless
// callers that don't need the per-channel detail of PlayerState.
type PlayerPosition struct {
	Order, Row int
}

// Player drives a mixer.Mixer from MOD/S3M pattern data: the out-of-scope
// player_tick() collaborator spec.md §1 describes. One sequencer tick
// (mixer.Mixer's SoftMusic-driven TickFunc) advances either a new row
// (every Speed ticks) or just the per-tick effects (portamento, volume
// slide) in between.
type Player struct {
	Song *Song
	Mute uint // bitmask of muted channels, channel 0 in LSB

	Speed int // ticks per row
	Tempo int // BPM

	mix   *mixer.Mixer
	store *pcmStore

	mu       sync.Mutex
	order    int
	row      int
	tickLeft int
	playing  bool
	surround bool
	channels []channel

	// PositionCh is fed a PlayerPosition every time the row advances,
	// matching the teacher's headless-renderer position hook
	// (cmd/modwav/main.go's player.PositionCh).
	PositionCh chan PlayerPosition

	// EndCh receives a value each time playback wraps back: past the last
	// order, or through a pattern jump to the same or an earlier order.
	EndCh chan struct{}
}

// NewPlayer constructs a Player for song, sampling at sampleRate Hz.
func NewPlayer(song *Song, sampleRate int) (*Player, error) {
	if song.Channels <= 0 {
		return nil, ErrNoChannels
	}

	speed, tempo := song.Speed, song.Tempo
	if speed <= 0 {
		speed = 6
	}
	if tempo <= 0 {
		tempo = 125
	}

	p := &Player{
		Song:       song,
		Speed:      speed,
		Tempo:      tempo,
		channels:   make([]channel, song.Channels),
		PositionCh: make(chan PlayerPosition, 8),
		EndCh:      make(chan struct{}, 1),
	}
	for i := range p.channels {
		p.channels[i].sample = -1
		p.channels[i].pan = song.defaultPan(i)
	}

	p.store = newPCMStore(song.Samples)
	p.mix = mixer.New(p.store, sampleRate, mixer.Stereo|mixer.Bits16|mixer.Interp|mixer.SoftMusic)
	p.mix.BPM = p.Tempo
	if err := p.mix.Init(); err != nil {
		return nil, err
	}
	if err := p.mix.SetNumVoices(song.Channels); err != nil {
		return nil, err
	}
	p.mix.SetTickFunc(p.sequenceTick)
	p.tickLeft = speed

	return p, nil
}

// Start resets tick timing and begins producing audio from the current
// order/row. Mirrors virtch.c's PlayStart being the caller's job to invoke
// once before the first WriteSamples.
func (p *Player) Start() error {
	if err := p.mix.PlayStart(); err != nil {
		return err
	}
	p.playing = true
	return nil
}

// Stop halts playback; GenerateAudio continues to be safe to call but
// produces silence.
func (p *Player) Stop() {
	p.playing = false
	p.mix.PlayStop()
}

func (p *Player) IsPlaying() bool { return p.playing }

// SetNoiseReduction enables or disables the mixer's one-pole noise-reduction
// lowpass (spec.md §4.D), applied to the mixing bus before reverb on every
// chunk.
func (p *Player) SetNoiseReduction(on bool) {
	if on {
		p.mix.Mode |= mixer.NoiseReduction
	} else {
		p.mix.Mode &^= mixer.NoiseReduction
	}
}

// SetMixReverb sets the mixer's built-in comb reverb bank quality (spec.md
// §4.C), 0..15. 0 disables it.
func (p *Player) SetMixReverb(level int) {
	p.mix.Reverb = level
}

// SetSurround enables or disables Dolby-matrix surround panning (spec.md
// §4.B): every channel's pan is forced to mixer.SurroundPan so the mixer's
// phase-inversion path runs instead of ordinary stereo panning. Takes
// effect on the next sequencer tick.
func (p *Player) SetSurround(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.surround = on
	if on {
		p.mix.Mode |= mixer.SurroundMode
	} else {
		p.mix.Mode &^= mixer.SurroundMode
	}
}

// SeekTo jumps to order/row, clamped to the song's order list, and resets
// the within-row tick countdown so the next GenerateAudio call starts a
// fresh row immediately.
func (p *Player) SeekTo(order, row int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if order < 0 {
		order = 0
	}
	if order >= len(p.Song.Orders) {
		order = len(p.Song.Orders) - 1
	}
	p.order, p.row = order, row
	p.tickLeft = 0
}

// GenerateAudio fills buf (interleaved stereo s16) and returns the number of
// frames produced. While stopped it fills buf with silence.
func (p *Player) GenerateAudio(buf []int16) int {
	if !p.playing {
		clear(buf)
		return len(buf) / 2
	}
	p.mix.MixS16(buf)
	return len(buf) / 2
}

// Position returns the current order/row as a lightweight snapshot.
func (p *Player) Position() PlayerPosition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PlayerPosition{Order: p.order, Row: p.row}
}

// State returns a full snapshot of playback position and per-channel status.
func (p *Player) State() PlayerState {
	p.mu.Lock()
	order, row := p.order, p.row
	chans := make([]ChannelState, len(p.channels))
	for i, c := range p.channels {
		chans[i] = ChannelState{Instrument: c.sample, TrigOrder: c.trigOrder, TrigRow: c.trigRow}
	}
	p.mu.Unlock()

	return PlayerState{
		Order:    order,
		Row:      row,
		Channels: chans,
		Notes:    p.NoteDataFor(order, row),
	}
}

// NoteDataFor returns the decoded pattern row at (order, row), or nil if
// either coordinate is out of range.
func (p *Player) NoteDataFor(order, row int) []ChannelNoteData {
	nds := make([]ChannelNoteData, p.Song.Channels)
	for ch := 0; ch < p.Song.Channels; ch++ {
		n := p.Song.noteAt(order, row, ch)
		if n == nil {
			return nil
		}
		nds[ch] = ChannelNoteData{
			Note:       noteName(n.Pitch),
			Instrument: n.Sample,
			Volume:     n.Volume,
			Effect:     n.Effect,
			Param:      n.Param,
		}
	}
	return nds
}

// sequenceTick is the mixer.TickFunc collaborator: invoked once per
// mixer-computed tick length ((SampleRate*125)/(BPM*50) output samples)
// while mixer.SoftMusic is set. It either starts a new row (every Speed
// ticks) or runs the per-tick effect continuations in between, then pushes
// the resulting tracker state into the mixer's voice table.
func (p *Player) sequenceTick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tickLeft--
	if p.tickLeft <= 0 {
		p.tickLeft = p.Speed
		p.playRow()
	} else {
		for i := range p.channels {
			p.channelTick(&p.channels[i])
		}
	}
	p.pushVoices()
}

// playRow decodes and triggers the current row, then advances (order, row)
// unless a pattern-break/jump effect already did so.
func (p *Player) playRow() {
	jumped := false
	startOrder := p.order

	for i := 0; i < p.Song.Channels; i++ {
		nd := p.Song.noteAt(p.order, p.row, i)
		if nd == nil {
			continue
		}
		c := &p.channels[i]
		c.effectCounter = 0

		if nd.Sample > 0 && nd.Sample <= len(p.Song.Samples) {
			smp := &p.Song.Samples[nd.Sample-1]
			c.volume = smp.Volume
			c.fineTune = smp.FineTune
			c.sample = nd.Sample - 1
		}

		switch {
		case nd.Pitch == noteKeyOff:
			c.volume = 0
		case nd.Pitch > 0:
			period := p.noteToPeriod(nd.Pitch, c)
			c.portaPeriod = period
			if nd.Effect != effectPortaToNote && nd.Effect != effectPortaToNoteVolSlide {
				c.period = period
				c.kick = true
				c.trigOrder, c.trigRow = p.order, p.row
				if c.offset > 0 {
					c.offset = 0
				}
			}
		}

		if nd.Volume != noNoteVolume {
			c.volume = clampVolume(nd.Volume)
		}

		c.effect, c.param = nd.Effect, nd.Param

		switch nd.Effect {
		case effectPortaToNote:
			if nd.Param > 0 {
				c.portaSpeed = int(nd.Param)
			}
		case effectSetSpeed:
			if nd.Param >= 0x20 {
				p.Tempo = int(nd.Param)
				p.mix.BPM = p.Tempo
			} else if nd.Param > 0 {
				p.Speed = int(nd.Param)
			}
		case effectSampleOffset:
			c.offset = int(nd.Param) << 8
		case effectSetVolume:
			c.volume = clampVolume(int(nd.Param))
		case effectPatternBrk:
			p.order++
			p.row = int(nd.Param>>4)*10 + int(nd.Param&0xF)
			jumped = true
		case effectPatternJump, effectJumpToPattern:
			p.order = int(nd.Param)
			p.row = 0
			jumped = true
		case effectExtended:
			switch nd.Param >> 4 {
			case effectExtendedFineVolSlideUp:
				c.volume = clampVolume(c.volume + int(nd.Param&0xF))
			case effectExtendedFineVolSlideDown:
				c.volume = clampVolume(c.volume - int(nd.Param&0xF))
			case effectExtendedNoteCut:
				if nd.Param&0xF == 0 {
					c.volume = 0
				}
			}
		}
	}

	if jumped {
		looped := p.order <= startOrder
		if p.order >= len(p.Song.Orders) || p.order < 0 {
			p.order = 0
			looped = true
		}
		if looped {
			select {
			case p.EndCh <- struct{}{}:
			default:
			}
		}
		select {
		case p.PositionCh <- PlayerPosition{Order: p.order, Row: p.row}:
		default:
		}
		return
	}

	p.row++
	if p.row >= rowsPerPattern {
		p.row = 0
		p.order++
		if p.order >= len(p.Song.Orders) {
			p.order = 0
			select {
			case p.EndCh <- struct{}{}:
			default:
			}
		}
	}

	select {
	case p.PositionCh <- PlayerPosition{Order: p.order, Row: p.row}:
	default:
	}
}

// channelTick runs the per-tick (non-row) effect continuations: portamento
// and volume slides tick every frame between row triggers.
func (p *Player) channelTick(c *channel) {
	c.effectCounter++

	switch c.effect {
	case effectPortamentoUp:
		c.period -= int(c.param)
		if c.period < 1 {
			c.period = 1
		}
	case effectPortamentoDown:
		c.period += int(c.param)
		if c.period > 65535 {
			c.period = 65535
		}
	case effectPortaToNote:
		c.portaToNote()
	case effectPortaToNoteVolSlide:
		c.portaToNote()
		c.volumeSlide()
	case effectVolumeSlide:
		c.volumeSlide()
	case effectExtended:
		if c.param>>4 == effectExtendedNoteCut && c.effectCounter == int(c.param&0xF) {
			c.volume = 0
		}
	}
}

func (c *channel) portaToNote() {
	if c.period < c.portaPeriod {
		c.period += c.portaSpeed
		if c.period > c.portaPeriod {
			c.period = c.portaPeriod
		}
	} else if c.period > c.portaPeriod {
		c.period -= c.portaSpeed
		if c.period < c.portaPeriod {
			c.period = c.portaPeriod
		}
	}
}

func (c *channel) volumeSlide() {
	if hi := c.param >> 4; hi > 0 {
		c.volume = clampVolume(c.volume + int(hi))
	} else if c.param != 0 {
		c.volume = clampVolume(c.volume - int(c.param&0xF))
	}
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 64 {
		return 64
	}
	return v
}

// noteToPeriod converts a decoded pitch into the Amiga-period-equivalent
// domain both formats' effects operate in: MOD periods come straight from
// its period table; S3M notes are derived from the sample's C4Speed so
// their period arithmetic lands in the same domain.
func (p *Player) noteToPeriod(pitch playerNote, c *channel) int {
	if p.Song.Type == SongTypeMOD {
		return noteToPeriod(pitch, c.fineTune)
	}

	c4 := 8363
	if c.sample >= 0 && c.sample < len(p.Song.Samples) && p.Song.Samples[c.sample].C4Speed > 0 {
		c4 = p.Song.Samples[c.sample].C4Speed
	}
	// Pitch 60 is an S3M C-4 as the parser encodes it (12 + 12*4).
	freq := float64(c4) * math.Pow(2, (float64(pitch)-60)/12.0)
	if freq <= 0 {
		return 0
	}
	return int(retraceNTSCHz / (2 * freq))
}

// pushVoices writes the current tracker channel state into the mixer's
// voice table. Called once per sequencer tick, after playRow/channelTick.
func (p *Player) pushVoices() {
	for i := range p.channels {
		c := &p.channels[i]
		v := p.mix.Voice(i)

		if c.sample < 0 || c.sample >= len(p.Song.Samples) {
			v.Frq = 0
			continue
		}
		smp := &p.Song.Samples[c.sample]
		if len(smp.Data) == 0 {
			v.Frq = 0
			continue
		}

		if c.period > 0 {
			v.Frq = int(retraceNTSCHz / (2 * float64(c.period)))
		} else {
			v.Frq = 0
		}

		vol := c.volume * 4 // 0..64 -> 0..256
		if vol > 256 {
			vol = 256
		}
		if p.Mute&(1<<uint(i)) != 0 {
			vol = 0
		}

		v.Handle = c.sample
		v.Vol = vol
		if p.surround {
			v.Pan = mixer.SurroundPan
		} else {
			v.Pan = c.pan
		}
		v.Size = smp.Length
		v.Flags = 0
		if smp.LoopLen > 0 {
			v.Flags |= mixer.FlagLoop
			v.RepPos = smp.LoopStart
			v.RepEnd = smp.LoopStart + smp.LoopLen
		} else {
			v.RepPos, v.RepEnd = 0, 0
		}

		if c.kick {
			v.Start = c.offset
			if v.Start >= smp.Length {
				v.Start = 0
			}
			v.Kick = true
			c.kick = false
		}
	}
}
