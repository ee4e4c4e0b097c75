package main

/*-------------------------------------------------------------------
 *
 * Purpose:     Program for testing lookahead limiting.
 *
 *		Generates a -10dB 2kHz sine with a full-scale click
 *		(two impulses 16 frames apart) once a second,
 *		overdrives it into the lookahead
 *		limiter, and plays the result on the default output
 *		device. The output gain undoes the input gain so you
 *		can hear how hard the limiter is working without
 *		blowing your ears out.
 *
 *--------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	azaudio "github.com/Equivocatorrr/AzAudio-sub000/src"
)

var limiter *azaudio.LookaheadLimiter
var angle float32
var elapsed float32

func processCallbackOutput(dst, src *azaudio.Buffer, flags uint32) error {
	frameDelta := 1.0 / float32(dst.Samplerate)
	timeDelta := float32(dst.Frames) * frameDelta
	clickFrame := int32((0.5 - elapsed) * float32(dst.Samplerate))
	elapsed += timeDelta
	if elapsed > 1.0 {
		elapsed -= 1.0
	}
	sineAmp := float32(0.316227766) // -10dB
	for i := int32(0); i < int32(dst.Frames); i++ {
		sample := azaudio.OscSine(angle) * sineAmp
		// 2kHz
		angle += frameDelta * 2000.0
		if angle > 1.0 {
			angle -= 1.0
		}
		if i == clickFrame || i+16 == clickFrame {
			sample = 1.0
		}
		for c := uint32(0); c < uint32(dst.ChannelLayout.Count); c++ {
			dst.Samples[uint32(i)*uint32(dst.Stride)+c] = sample
		}
	}
	return limiter.Process(dst, dst, flags)
}

func main() {
	var gain = pflag.Float32P("gain", "g", 10.0, "Input gain in dB driven into the limiter (output gain is its negation)")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Feed an overdriven test tone through the lookahead limiter.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if err := azaudio.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to Init: %v\n", err)
		os.Exit(1)
	}
	defer azaudio.Deinit()

	limiter = azaudio.MakeLookaheadLimiter(azaudio.LookaheadLimiterConfig{
		GainInput:  *gain,
		GainOutput: -*gain,
	})

	var streamOutput azaudio.Stream
	streamOutput.ProcessCallback = processCallbackOutput
	if err := azaudio.StreamInitDefault(&streamOutput, azaudio.DeviceOutput, false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init output stream! (%v)\n", err)
		os.Exit(1)
	}

	streamOutput.SetActive(true)
	fmt.Println("Press ENTER to stop")
	fmt.Scanln()
	streamOutput.Deinit()
}
