package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chriskillpack/vxmix/internal/config"
	"github.com/chriskillpack/vxmix/sequencer"
)

var (
	flagHz       = flag.Int("hz", 44100, "output hz")
	flagStartOrd = flag.Int("start", 0, "starting order in the song, clamped to song max")
	flagReverb   = flag.String("reverb", "light", "reverb preset: none, light, medium, silly")
	flagNoUI     = flag.Bool("noui", false, "disable the terminal UI, just play audio")
	flagNR       = flag.Bool("nr", false, "enable the mixer's built-in noise-reduction lowpass")
	flagMixRvb   = flag.Int("mixreverb", 0, "mixer's built-in comb reverb bank quality, 0-15 (0 disables it)")
	flagSurround = flag.Bool("surround", false, "force Dolby-matrix surround (phase-inverted) panning")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("vxplay: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing MOD/S3M filename")
	}

	fname := flag.Arg(0)
	songF, err := os.ReadFile(fname)
	if err != nil {
		log.Fatal(err)
	}

	var song *sequencer.Song
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".s3m":
		song, err = sequencer.NewS3MSongFromBytes(songF)
	default:
		song, err = sequencer.NewMODSongFromBytes(songF)
	}
	if err != nil {
		log.Fatal(err)
	}

	player, err := sequencer.NewPlayer(song, *flagHz)
	if err != nil {
		log.Fatal(err)
	}
	player.SetNoiseReduction(*flagNR)
	player.SetMixReverb(*flagMixRvb)
	player.SetSurround(*flagSurround)
	player.SeekTo(*flagStartOrd, 0)
	if err := player.Start(); err != nil {
		log.Fatal(err)
	}

	reverb, err := config.ReverbFromFlag(*flagReverb, *flagHz)
	if err != nil {
		log.Fatal(err)
	}

	play(player, reverb, engineStatusString())
}

// engineStatusString summarizes the mixer.Mixer flags the -nr/-mixreverb/
// -surround flags enabled, for display in the terminal UI's header.
func engineStatusString() string {
	status := "-"
	if *flagNR {
		status = "nr"
	}
	if *flagMixRvb > 0 {
		if status == "-" {
			status = fmt.Sprintf("rvb%d", *flagMixRvb)
		} else {
			status += fmt.Sprintf("+rvb%d", *flagMixRvb)
		}
	}
	if *flagSurround {
		if status == "-" {
			status = "srnd"
		} else {
			status += "+srnd"
		}
	}
	if status == "-" {
		return ""
	}
	return status
}
