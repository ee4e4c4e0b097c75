package main

/*-------------------------------------------------------------------
 *
 * Purpose:     Program for profiling the DSP hot paths offline.
 *
 *		Builds a deliberately heavy mixer (reverb, dynamic
 *		delay, compressor, limiter) and pumps blocks through it
 *		as fast as possible on the null backend's buffer sizes,
 *		reporting per-block timing and the mixer's own CPU
 *		telemetry.
 *
 *--------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	azaudio "github.com/Equivocatorrr/AzAudio-sub000/src"
)

type noiseDSP struct {
	azaudio.DSPHeader
	state uint32
}

func (n *noiseDSP) Process(dst, src *azaudio.Buffer, flags uint32) error {
	for i := uint32(0); i < dst.Frames; i++ {
		// xorshift, plenty random for load generation
		n.state ^= n.state << 13
		n.state ^= n.state >> 17
		n.state ^= n.state << 5
		sample := (float32(n.state)/float32(1<<31) - 1.0) * 0.25
		for c := uint32(0); c < uint32(dst.ChannelLayout.Count); c++ {
			dst.Samples[i*uint32(dst.Stride)+c] = sample
		}
	}
	return nil
}

func main() {
	var blocks = pflag.IntP("blocks", "n", 2000, "How many blocks to process")
	var frames = pflag.Uint32P("frames", "f", 512, "Frames per block")
	var samplerate = pflag.Uint32P("samplerate", "s", 48000, "Samplerate in Hz")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Offline DSP throughput measurement.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	// No hardware needed: force the null backend before Init
	os.Setenv("AZAUDIO_BACKEND", "null")
	if err := azaudio.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to Init: %v\n", err)
		os.Exit(1)
	}
	defer azaudio.Deinit()

	mixer := &azaudio.Mixer{}
	if err := azaudio.MixerInit(mixer, azaudio.MixerConfig{BufferFrames: *frames}, azaudio.ChannelLayoutStereo()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init mixer: %v\n", err)
		os.Exit(1)
	}
	defer mixer.Deinit()

	track, err := mixer.AddTrack(-1, azaudio.ChannelLayoutStereo(), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add track: %v\n", err)
		os.Exit(1)
	}
	track.AppendDSP(&noiseDSP{DSPHeader: azaudio.DSPHeader{Name: "Noise", Version: 1, Owned: true}, state: 0x2545F491})
	track.AppendDSP(azaudio.MakeDefaultCompressor())
	track.AppendDSP(azaudio.MakeDefaultDelayDynamic())
	track.AppendDSP(azaudio.MakeDefaultReverb())
	mixer.Master.AppendDSP(azaudio.MakeDefaultLookaheadLimiter())

	// Warm up the side buffer pool and delay lines
	for i := 0; i < 8; i++ {
		if err := mixer.Process(*frames, *samplerate); err != nil {
			fmt.Fprintf(os.Stderr, "Process failed: %v\n", err)
			os.Exit(1)
		}
	}

	var worst time.Duration
	start := time.Now()
	for i := 0; i < *blocks; i++ {
		blockStart := time.Now()
		if err := mixer.Process(*frames, *samplerate); err != nil {
			fmt.Fprintf(os.Stderr, "Process failed: %v\n", err)
			os.Exit(1)
		}
		blockTime := time.Since(blockStart)
		if blockTime > worst {
			worst = blockTime
		}
	}
	total := time.Since(start)

	blockBudget := time.Duration(float64(*frames) / float64(*samplerate) * float64(time.Second))
	average := total / time.Duration(*blocks)
	fmt.Printf("%d blocks of %d frames at %dHz\n", *blocks, *frames, *samplerate)
	fmt.Printf("average %v/block, worst %v/block, budget %v/block\n", average, worst, blockBudget)
	fmt.Printf("realtime load: %.2f%% average, %.2f%% worst\n",
		100.0*float64(average)/float64(blockBudget),
		100.0*float64(worst)/float64(blockBudget))
	fmt.Printf("mixer telemetry: %.2f%% (slow %.2f%%)\n", mixer.CPUPercent, mixer.CPUPercentSlow)
}
