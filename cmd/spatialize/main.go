package main

/*-------------------------------------------------------------------
 *
 * Purpose:     Program for testing sound spatialization.
 *
 *		Synthesizes a tone and flies it in a circle around the
 *		listener through the spatializer, with doppler and
 *		head-shadow filtering on, so you can hear the panning,
 *		pitch bend and distance attenuation on whatever speaker
 *		layout the device commits.
 *
 *--------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	azaudio "github.com/Equivocatorrr/AzAudio-sub000/src"
)

type orbitSource struct {
	spatialize *azaudio.Spatialize
	gen        float32
	orbitT     float32
	frequency  float32
	radius     float32
	orbitHz    float32
}

func (o *orbitSource) position() azaudio.Vec3 {
	return azaudio.Vec3{
		X: azaudio.OscSine(o.orbitT) * o.radius,
		Y: 0.0,
		Z: azaudio.OscCosine(o.orbitT) * o.radius,
	}
}

func (o *orbitSource) callback(dst, src *azaudio.Buffer, flags uint32) error {
	mono := azaudio.PushSideBufferZero(dst.Frames, 0, 0, 1, dst.Samplerate)
	defer azaudio.PopSideBuffer()
	timestep := 1.0 / float32(dst.Samplerate)
	for i := uint32(0); i < mono.Frames; i++ {
		mono.Samples[i] = azaudio.OscSine(o.gen) * 0.25
		o.gen += timestep * o.frequency
		if o.gen >= 1.0 {
			o.gen -= 1.0
		}
	}

	start := azaudio.SpatializeChannelConfig{Target: azaudio.SpatializeTarget{Position: o.position(), Amplitude: 1.0}}
	o.orbitT += float32(dst.Frames) * timestep * o.orbitHz
	end := azaudio.SpatializeChannelConfig{Target: azaudio.SpatializeTarget{Position: o.position(), Amplitude: 1.0}}
	o.spatialize.SetRamps(1, []azaudio.SpatializeChannelConfig{start}, []azaudio.SpatializeChannelConfig{end}, dst.Frames, dst.Samplerate)

	dst.Zero()
	return o.spatialize.Process(dst, &mono, flags)
}

func main() {
	var frequency = pflag.Float32P("frequency", "f", 220.0, "Tone frequency in Hz")
	var radius = pflag.Float32P("radius", "r", 8.0, "Orbit radius in meters")
	var orbitHz = pflag.Float32P("orbit", "o", 0.2, "Orbits per second")
	var noDoppler = pflag.Bool("no-doppler", false, "Disable the doppler delay")
	var noFilter = pflag.Bool("no-filter", false, "Disable the head-shadow filter")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Fly a tone around your head.\n\n", os.Args[0])
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

	source := &orbitSource{
		frequency: *frequency,
		radius:    *radius,
		orbitHz:   *orbitHz,
	}
	source.spatialize = azaudio.MakeSpatialize(azaudio.SpatializeConfig{
		DoDoppler:            !*noDoppler,
		DoFilter:             !*noFilter,
		UsePerChannelDelay:   true,
		UsePerChannelFilter:  true,
		NumSrcChannelsActive: 1,
		TargetFollowTimeMs:   20.0,
		EarDistance:          0.085,
	})

	var stream azaudio.Stream
	stream.ProcessCallback = source.callback
	if err := azaudio.StreamInitDefault(&stream, azaudio.DeviceOutput, false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init output stream! (%v)\n", err)
		os.Exit(1)
	}

	stream.SetActive(true)
	fmt.Printf("Orbiting a %.0fHz tone at %.1fm. Press ENTER to stop\n", *frequency, *radius)
	fmt.Scanln()
	stream.Deinit()
}
