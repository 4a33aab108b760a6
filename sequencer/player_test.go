package sequencer

import (
	"testing"

	clone "github.com/huandu/go-clone/generic"
)

const testSampleLength = 1000

// testSong is the canonical fixture every test clones from, so mutating a
// pattern or order list in one test can't leak into another.
var testSong = Song{
	Type:         SongTypeS3M,
	GlobalVolume: 64,
	Speed:        2,
	Tempo:        125,
	Orders:       []byte{0, 1},
	Samples: []Sample{
		{Name: "ins1", Volume: 60, C4Speed: 8363, Length: testSampleLength, Data: make([]int8, testSampleLength)},
		{Name: "ins2", Volume: 50, C4Speed: 8363, Length: testSampleLength, Data: make([]int8, testSampleLength)},
	},
}

func newTestSongForPlayer(channels int) *Song {
	s := clone.Clone(testSong)
	s.Channels = channels
	s.patterns = [][]note{
		initNotePattern(channels),
		initNotePattern(channels),
	}
	return &s
}

func TestNewPlayerRejectsChannellessSong(t *testing.T) {
	s := &Song{}
	if _, err := NewPlayer(s, 44100); err == nil {
		t.Fatal("expected an error constructing a Player for a song with no channels")
	}
}

func TestNewPlayerDefaultsSpeedTempo(t *testing.T) {
	s := newTestSongForPlayer(2)
	s.Speed, s.Tempo = 0, 0

	p, err := NewPlayer(s, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	if p.Speed != 6 {
		t.Errorf("Speed = %d, want 6", p.Speed)
	}
	if p.Tempo != 125 {
		t.Errorf("Tempo = %d, want 125", p.Tempo)
	}
}

func TestPlayRowTriggersNote(t *testing.T) {
	s := newTestSongForPlayer(1)
	s.patterns[0][0] = note{Pitch: 49, Sample: 1, Volume: noNoteVolume}

	p, err := NewPlayer(s, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	p.playRow()

	c := p.channels[0]
	if c.sample != 0 {
		t.Errorf("sample = %d, want 0 (0-based index of instrument 1)", c.sample)
	}
	if !c.kick {
		t.Error("expected kick to be set after triggering a note")
	}
	if c.period == 0 {
		t.Error("expected a non-zero period after triggering a note")
	}
}

func TestPlayRowAdvancesRow(t *testing.T) {
	s := newTestSongForPlayer(1)
	p, err := NewPlayer(s, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	p.playRow()
	if p.row != 1 {
		t.Errorf("row = %d, want 1", p.row)
	}
}

func TestPatternBreakJumpsOrder(t *testing.T) {
	s := newTestSongForPlayer(1)
	s.patterns[0][0] = note{Effect: effectPatternBrk, Param: 0x10, Volume: noNoteVolume}

	p, err := NewPlayer(s, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	p.playRow()
	if p.order != 1 {
		t.Errorf("order = %d, want 1", p.order)
	}
	if p.row != 10 {
		t.Errorf("row = %d, want 10 (param 0x10 = 1*10+0)", p.row)
	}
}

func TestVolumeSlideDown(t *testing.T) {
	c := &channel{volume: 40, effect: effectVolumeSlide, param: 0x05}
	c.volumeSlide()
	if c.volume != 35 {
		t.Errorf("volume = %d, want 35", c.volume)
	}
}

func TestVolumeSlideClampsAtZero(t *testing.T) {
	c := &channel{volume: 2, effect: effectVolumeSlide, param: 0x0F}
	c.volumeSlide()
	if c.volume != 0 {
		t.Errorf("volume = %d, want 0", c.volume)
	}
}

func TestPortaToNoteConverges(t *testing.T) {
	c := &channel{period: 428, portaPeriod: 400, portaSpeed: 4}
	for i := 0; i < 20; i++ {
		c.portaToNote()
	}
	if c.period != c.portaPeriod {
		t.Errorf("period = %d, want it to have converged to %d", c.period, c.portaPeriod)
	}
}

func TestSequenceTickDrivesSpeed(t *testing.T) {
	s := newTestSongForPlayer(1)
	s.Speed = 3
	p, err := NewPlayer(s, 44100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}

	// tickLeft starts at Speed; the first (Speed-1) ticks should just run
	// per-tick effects, the Speed'th tick starts a new row.
	for i := 0; i < s.Speed-1; i++ {
		p.sequenceTick()
		if p.row != 0 {
			t.Fatalf("row advanced too early on tick %d", i)
		}
	}
	p.sequenceTick()
	if p.row != 1 {
		t.Errorf("row = %d, want 1 after Speed ticks", p.row)
	}
}
