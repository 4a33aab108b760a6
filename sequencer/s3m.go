package sequencer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	s3mfxSetSpeed       = 0x1
	s3mfxPatternJump    = 0x2
	s3mfxPatternBreak   = 0x3
	s3mfxVolumeSlide    = 0xD
	s3mfxTonePortamento = 0x7
	s3mfxSpecial        = 0x13
)

var ErrInvalidS3M = errors.New("invalid S3M file")

// NewS3MSongFromBytes parses a Scream Tracker 3 module into a Song.
func NewS3MSongFromBytes(songBytes []byte) (*Song, error) {
	if len(songBytes) < 48 || string(songBytes[44:48]) != "SCRM" {
		return nil, ErrInvalidS3M
	}

	song := &Song{Type: SongTypeS3M, GlobalVolume: 64}
	buf := bytes.NewReader(songBytes)
	y := make([]byte, 28)
	if _, err := buf.Read(y); err != nil {
		return nil, err
	}
	song.Title = strings.TrimRight(string(y), "\x00")

	header := struct {
		Pad             byte
		Filetype        byte
		_               uint16
		Length          uint16
		NumInstruments  uint16
		NumPatterns     uint16
		Flags           uint16
		Tracker         uint16
		SampleFormat    uint16
		_               [4]byte // 'SCRM'
		Volume          uint8
		Speed           uint8
		Tempo           uint8
		MastVolume      uint8
		_               uint8
		Panning         uint8
		_               [8]byte
		_               [2]byte
		ChannelSettings [32]byte
	}{}
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	song.Tempo = int(header.Tempo)
	song.Speed = int(header.Speed)
	if header.Volume > 0 {
		song.GlobalVolume = int(header.Volume)
	}

	var nc int
	for nc = 0; nc < 32; nc++ {
		if header.ChannelSettings[nc] == 255 {
			break
		}
	}
	song.Channels = nc

	song.pan = make([]byte, nc)
	for i := 0; i < nc; i++ {
		if header.ChannelSettings[i]&8 != 0 {
			song.pan[i] = 255
		}
	}

	orders := make([]byte, header.Length)
	if _, err := buf.Read(orders); err != nil {
		return nil, err
	}
	song.Orders = make([]byte, 0, header.Length)
	for _, pat := range orders {
		if pat == 255 {
			break
		}
		song.Orders = append(song.Orders, pat)
	}

	paras := make([]uint16, int(header.NumInstruments)+int(header.NumPatterns))
	if err := binary.Read(buf, binary.LittleEndian, paras); err != nil {
		return nil, err
	}

	song.Samples = make([]Sample, int(header.NumInstruments))
	for i := 0; i < int(header.NumInstruments); i++ {
		if _, err := buf.Seek(int64(paras[i])*16, io.SeekStart); err != nil {
			return nil, err
		}
		instHeader := &struct {
			Type         byte
			Filename     [12]byte
			MemSegHi     byte
			MemSegLo     uint16
			SampleLength uint16
			_            uint16
			LoopBegin    uint16
			_            uint16
			LoopEnd      uint16
			_            uint16
			Volume       byte
			_            byte
			Packing      byte
			Flags        byte
			C2Speed      uint16
			_            uint16
			_            [12]byte
			Name         [28]byte
			Scrs         [4]byte
		}{}
		if err := binary.Read(buf, binary.LittleEndian, instHeader); err != nil {
			return nil, err
		}
		if instHeader.Type > 1 {
			return nil, fmt.Errorf("unsupported sample type %d", instHeader.Type)
		}
		if instHeader.Flags&4 == 4 {
			return nil, fmt.Errorf("16-bit samples not currently supported")
		}

		sample := Sample{
			Length:    int(instHeader.SampleLength),
			LoopStart: int(instHeader.LoopBegin),
			LoopLen:   int(instHeader.LoopEnd) - int(instHeader.LoopBegin),
			Name:      strings.TrimRight(string(instHeader.Name[:]), "\x00"),
			C4Speed:   int(instHeader.C2Speed),
			Volume:    int(instHeader.Volume),
		}
		if sample.LoopLen < 0 {
			sample.LoopLen = 0
		}

		dataOffset := (uint(instHeader.MemSegHi)<<16 | uint(instHeader.MemSegLo)) * 16
		sample.Data = make([]int8, sample.Length)
		if sample.Length > 0 {
			if _, err := buf.Seek(int64(dataOffset), io.SeekStart); err != nil {
				return nil, err
			}
			if err := binary.Read(buf, binary.LittleEndian, sample.Data); err != nil {
				return nil, err
			}
			// S3M PCM is unsigned; the mixer (and Sample.Data) wants signed.
			for j := range sample.Data {
				sample.Data[j] = int8(byte(sample.Data[j]) ^ 128)
			}
		}

		song.Samples[i] = sample
	}

	song.patterns = make([][]note, header.NumPatterns)
	for i := 0; i < int(header.NumPatterns); i++ {
		if _, err := buf.Seek(int64(paras[i+int(header.NumInstruments)])*16, io.SeekStart); err != nil {
			return nil, err
		}

		var packedLen int16
		if err := binary.Read(buf, binary.LittleEndian, &packedLen); err != nil {
			return nil, err
		}
		packedLen -= 2

		song.patterns[i] = initNotePattern(song.Channels)

		row := 0
		for packedLen > 0 {
			b, err := buf.ReadByte()
			if err != nil {
				return nil, err
			}
			packedLen--
			if b == 0 {
				row++
				if row >= rowsPerPattern {
					break
				}
				continue
			}

			chn := int(b & 31)
			if chn >= song.Channels {
				skip := []int64{0, 2, 1, 3, 2, 4, 3, 5}[b>>5]
				buf.Seek(skip, io.SeekCurrent)
				packedLen -= int16(skip)
				continue
			}

			no := &song.patterns[i][row*song.Channels+chn]

			if b&32 == 32 {
				noter, _ := buf.ReadByte()
				intr, _ := buf.ReadByte()
				packedLen -= 2

				if noter == 255 {
					no.Pitch = 0
				} else if noter == 254 {
					no.Pitch = noteKeyOff
				} else {
					no.Pitch = playerNote(12 + 12*int(noter>>4) + int(noter&0xF))
				}
				no.Sample = int(intr)
			}

			if b&64 == 64 {
				vol, _ := buf.ReadByte()
				packedLen--
				no.Volume = int(vol)
			}

			if b&128 == 128 {
				efct, _ := buf.ReadByte()
				parm, _ := buf.ReadByte()
				efct, parm = convertS3MEffect(efct, parm)
				no.Effect = efct
				no.Param = parm
				packedLen -= 2
			}
		}
	}

	dumpf("S3M %q: %d channels, %d orders, %d patterns, %d samples\n",
		song.Title, song.Channels, len(song.Orders), header.NumPatterns, header.NumInstruments)

	return song, nil
}

func convertS3MEffect(efc, parm byte) (effect byte, param byte) {
	effect, param = efc, parm

	switch efc {
	case s3mfxSetSpeed:
		effect = effectSetSpeed
	case s3mfxPatternJump:
		effect = effectJumpToPattern
	case s3mfxPatternBreak:
		effect = effectPatternBrk
	case s3mfxTonePortamento:
		effect = effectPortaToNote
	case s3mfxVolumeSlide:
		effect = effectVolumeSlide
	case s3mfxSpecial:
		if (parm >> 4) == 0xB {
			effect = effectPatternLoop
			param = param & 0xF
		}
	}

	return
}
