// vxwav renders a MOD/S3M song to a WAVE file, headless, no audio device
// needed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chriskillpack/vxmix/internal/config"
	"github.com/chriskillpack/vxmix/sequencer"
	"github.com/chriskillpack/vxmix/wav"
)

const outputHz = 44100

func main() {
	log.SetFlags(0)
	log.SetPrefix("vxwav: ")

	wavOut := flag.String("wav", "", "output to a WAVE file")
	reverb := flag.String("reverb", "light", "reverb preset: none, light, medium, silly")
	nr := flag.Bool("nr", false, "enable the mixer's built-in noise-reduction lowpass")
	mixReverb := flag.Int("mixreverb", 0, "mixer's built-in comb reverb bank quality, 0-15 (0 disables it)")
	surround := flag.Bool("surround", false, "force Dolby-matrix surround (phase-inverted) panning")
	flag.Parse()
	if len(flag.Args()) == 0 {
		log.Fatal("Missing MOD/S3M filename")
	}
	if *wavOut == "" {
		log.Fatal("No -wav option provided")
	}

	songF, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	var song *sequencer.Song
	switch strings.ToLower(filepath.Ext(flag.Arg(0))) {
	case ".s3m":
		song, err = sequencer.NewS3MSongFromBytes(songF)
	default:
		song, err = sequencer.NewMODSongFromBytes(songF)
	}
	if err != nil {
		log.Fatal(err)
	}

	player, err := sequencer.NewPlayer(song, outputHz)
	if err != nil {
		log.Fatal(err)
	}
	player.SetNoiseReduction(*nr)
	player.SetMixReverb(*mixReverb)
	player.SetSurround(*surround)
	if err := player.Start(); err != nil {
		log.Fatal(err)
	}

	rv, err := config.ReverbFromFlag(*reverb, outputHz)
	if err != nil {
		log.Fatal(err)
	}

	wavF, err := os.Create(*wavOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, outputHz)
	if err != nil {
		log.Fatal(err)
	}
	defer wavW.Finish()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)

	playing := true
	go func() {
		for {
			select {
			case <-sigch:
				playing = false
			case pos := <-player.PositionCh:
				fmt.Printf("%d/%d\n", pos.Order+1, len(song.Orders))
			case <-player.EndCh:
				playing = false
			}
		}
	}()

	scratch := make([]int16, 2048)
	reverbOut := make([]int16, 2048)
	for playing && player.IsPlaying() {
		generated := player.GenerateAudio(scratch)
		rv.InputSamples(scratch[:generated*2])
		n := rv.GetAudio(reverbOut)
		if n > 0 {
			if err := wavW.WriteFrame(reverbOut[:n]); err != nil {
				log.Fatal(err)
			}
		}
	}

	// Drain whatever the reverb is still holding.
	for {
		n := rv.GetAudio(reverbOut)
		if n == 0 {
			break
		}
		if err := wavW.WriteFrame(reverbOut[:n]); err != nil {
			log.Fatal(err)
		}
	}

	player.Stop()
}
