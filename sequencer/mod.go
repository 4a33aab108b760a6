package sequencer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// MOD note effects, grounded on ProTracker's effect table.
const (
	effectPortamentoUp        = 0x1
	effectPortamentoDown      = 0x2
	effectPortaToNote         = 0x3
	effectPortaToNoteVolSlide = 0x5
	effectSampleOffset        = 0x9
	effectVolumeSlide         = 0xA
	effectPatternJump         = 0xB
	effectSetVolume           = 0xC
	effectPatternBrk          = 0xD
	effectExtended            = 0xE
	effectSetSpeed            = 0xF

	// Extended effects (Exy), x = effect, y effect param
	effectExtendedFineVolSlideUp   = 0xA
	effectExtendedFineVolSlideDown = 0xB
	effectExtendedNoteCut          = 0xC

	bytesPerChannel = 4
)

// S3M-only effects get numbers past the MOD nibble range (0x0-0xF) so a
// single effect byte can carry either vocabulary without collision.
const (
	effectJumpToPattern = 0x10
	// effectPatternLoop (S3M SBx) is decoded in convertS3MEffect but has no
	// case in playRow/channelTick: it's a silent no-op under the reduced
	// effect vocabulary.
	effectPatternLoop = 0x11
)

var ErrUnrecognizedMODFormat = errors.New("unrecognized MOD format")

// NewMODSongFromBytes parses a ProTracker-family MOD file into a Song.
func NewMODSongFromBytes(songBytes []byte) (*Song, error) {
	song := &Song{
		Type:         SongTypeMOD,
		GlobalVolume: 64,
		Speed:        6,
		Tempo:        125,
		Samples:      make([]Sample, 31),
	}

	buf := bytes.NewReader(songBytes)
	y := make([]byte, 20)
	buf.Read(y)
	song.Title = strings.TrimRight(string(y), "\x00")

	for i := 0; i < 31; i++ {
		s, err := readMODSampleInfo(buf)
		if err != nil {
			return nil, err
		}
		song.Samples[i] = *s
	}

	orders := struct {
		Orders    uint8
		_         uint8
		OrderData [128]byte
	}{}
	if err := binary.Read(buf, binary.BigEndian, &orders); err != nil {
		return nil, err
	}
	song.Orders = make([]byte, orders.Orders)
	copy(song.Orders, orders.OrderData[:orders.Orders])

	// Detect number of patterns by finding the maximum pattern id in use.
	patterns := int(song.Orders[0])
	for i := 1; i < 128; i++ {
		if int(orders.OrderData[i]) > patterns {
			patterns = int(orders.OrderData[i])
		}
	}
	patterns++

	// Detect channel count from the MOD signature.
	x := make([]byte, 4)
	if n, err := buf.Read(x); n != 4 || err != nil {
		return nil, ErrUnrecognizedMODFormat
	}
	switch string(x[2:]) {
	case "K.": // M.K.
		song.Channels = 4
	case "HN": // xCHN
		song.Channels = int(x[0]) - 48
	case "CH": // xxCH
		song.Channels = (int(x[0])-48)*10 + (int(x[1]) - 48)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnrecognizedMODFormat, string(x))
	}

	song.patterns = make([][]note, patterns)
	scratch := make([]byte, rowsPerPattern*song.Channels*bytesPerChannel)
	for i := 0; i < patterns; i++ {
		song.patterns[i] = make([]note, rowsPerPattern*song.Channels)
		if n, err := buf.Read(scratch); n != len(scratch) || err != nil {
			return nil, fmt.Errorf("reading pattern %d: %w", i, err)
		}

		for p := 0; p < rowsPerPattern*song.Channels; p++ {
			n := noteFromMODBytes(scratch[p*bytesPerChannel : (p+1)*bytesPerChannel])
			if n.Effect == effectSetVolume {
				n.Volume = int(n.Param)
			} else {
				n.Volume = noNoteVolume
			}
			song.patterns[i][p] = n
		}
	}

	for i := 0; i < 31; i++ {
		// Some MOD files store a sample length longer than what remains in
		// the file; read in whatever's actually there.
		n := song.Samples[i].Length
		if n > buf.Len() {
			n = buf.Len()
		}
		song.Samples[i].Data = make([]int8, song.Samples[i].Length)
		if err := binary.Read(buf, binary.LittleEndian, song.Samples[i].Data[:n]); err != nil {
			return nil, err
		}
		song.Samples[i].Length = n
	}

	dumpf("MOD %q: %d channels, %d orders, %d patterns\n", song.Title, song.Channels, len(song.Orders), patterns)

	return song, nil
}

func readMODSampleInfo(r *bytes.Reader) (*Sample, error) {
	data := struct {
		Name      [22]byte
		Length    uint16
		FineTune  uint8
		Volume    uint8
		LoopStart uint16
		LoopLen   uint16
	}{}
	if err := binary.Read(r, binary.BigEndian, &data); err != nil {
		return nil, err
	}

	smp := &Sample{
		Name:      strings.TrimRight(string(data.Name[:]), "\x00"),
		Length:    int(data.Length) * 2,
		FineTune:  int(data.FineTune&7) - int(data.FineTune&8) + 8,
		Volume:    int(data.Volume),
		LoopStart: int(data.LoopStart) * 2,
		LoopLen:   int(data.LoopLen) * 2,
	}
	if smp.LoopLen < 4 {
		smp.LoopLen = 0
	}

	// Clamp loops that overshoot the sample end (lifted from MilkyTracker).
	if smp.LoopStart+smp.LoopLen > smp.Length {
		dx := smp.LoopStart + smp.LoopLen - smp.Length
		smp.LoopStart -= dx
		if smp.LoopStart+smp.LoopLen > smp.Length {
			dx = smp.LoopStart + smp.LoopLen - smp.Length
			smp.LoopLen -= dx
		}
	}
	if smp.LoopLen < 2 {
		smp.LoopLen = 0
	}

	return smp, nil
}

func noteFromMODBytes(nb []byte) note {
	period := int(nb[0]&0xF)<<8 + int(nb[1])

	return note{
		Sample: int(nb[0]&0xF0 + nb[2]>>4),
		Pitch:  periodToPlayerNote(period),
		Effect: nb[2] & 0xF,
		Param:  nb[3],
	}
}

const (
	periodBase = 13696 // Amiga period of pitch 0, four octaves below periodTable[0]
	ln2        = 0.693147180559945309417232121458176568
)

// periodToPlayerNote converts an Amiga MOD period to the octave*12+semitone
// representation used internally. Lifted from libxmp.
func periodToPlayerNote(period int) playerNote {
	if period <= 0 {
		return 0
	}
	calc := 12.0 * math.Log(float64(periodBase)/float64(period)) / ln2
	return playerNote(math.Floor(calc + 0.5))
}

// Fine tuning values from Micromod, .12 fixed point, index 8 = no tuning.
var fineTuning = []int{
	4340, 4308, 4277, 4247, 4216, 4186, 4156, 4126,
	4096, 4067, 4037, 4008, 3979, 3951, 3922, 3894,
}

// Amiga period table, used only to turn a decoded pitch back into a period
// for the channel's portamento/vibrato math.
var periodTable = []int{
	856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
	214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
	107, 101, 95, 90, 85, 80, 76, 71, 67, 64, 60, 57,
}

// noteToPeriod maps the internal pitch representation back to an Amiga
// period, scaled by the instrument's fine tuning.
func noteToPeriod(p playerNote, fineTune int) int {
	n := int(p) - 48 // periodTable[0] (856) is pitch 48, what periodToPlayerNote returns for it
	if n < 0 {
		n = 0
	}
	if n >= len(periodTable) {
		n = len(periodTable) - 1
	}
	ft := fineTune
	if ft < 0 || ft >= len(fineTuning) {
		ft = 8
	}
	return (periodTable[n] * fineTuning[ft]) >> 12
}
