package sequencer

import "testing"

func newTestSong(channels int) *Song {
	s := &Song{
		Channels: channels,
		Orders:   []byte{0, 1},
		patterns: [][]note{
			initNotePattern(channels),
			initNotePattern(channels),
		},
	}
	s.patterns[0][0] = note{Pitch: 49, Sample: 1, Volume: noNoteVolume}
	return s
}

func TestNoteAtBounds(t *testing.T) {
	s := newTestSong(4)

	if n := s.noteAt(-1, 0, 0); n != nil {
		t.Error("negative order should be out of range")
	}
	if n := s.noteAt(2, 0, 0); n != nil {
		t.Error("order past the order list should be out of range")
	}
	if n := s.noteAt(0, rowsPerPattern, 0); n != nil {
		t.Error("row past the pattern length should be out of range")
	}
	if n := s.noteAt(0, 0, 4); n != nil {
		t.Error("channel past the channel count should be out of range")
	}

	n := s.noteAt(0, 0, 0)
	if n == nil || n.Pitch != 49 || n.Sample != 1 {
		t.Fatalf("unexpected note at (0,0,0): %+v", n)
	}
}

func TestDefaultPanAlternates(t *testing.T) {
	s := &Song{}
	wantLeft := map[int]bool{0: true, 1: false, 2: false, 3: true}
	for ch, left := range wantLeft {
		got := s.defaultPan(ch)
		if left && got != 0 {
			t.Errorf("channel %d: want left pan (0), got %d", ch, got)
		}
		if !left && got != 255 {
			t.Errorf("channel %d: want right pan (255), got %d", ch, got)
		}
	}
}

func TestDefaultPanFromS3M(t *testing.T) {
	s := &Song{pan: []byte{255, 0, 255}}
	if got := s.defaultPan(0); got != 255 {
		t.Errorf("channel 0: want 255, got %d", got)
	}
	if got := s.defaultPan(1); got != 0 {
		t.Errorf("channel 1: want 0, got %d", got)
	}
}

func TestNoteName(t *testing.T) {
	cases := []struct {
		pitch playerNote
		want  string
	}{
		{0, "..."},
		{noteKeyOff, "^^."},
		{36, "C-4"},
	}
	for _, c := range cases {
		if got := noteName(c.pitch); got != c.want {
			t.Errorf("noteName(%d) = %q, want %q", c.pitch, got, c.want)
		}
	}
}
