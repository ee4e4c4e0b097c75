package main

/*-------------------------------------------------------------------
 *
 * Purpose:	Program for testing the mixer: builds a session of
 *		tracks, plugins and receives from a YAML file and runs
 *		it against the default output device.
 *
 *		Each track can carry a built-in synth voice so the
 *		session makes sound without any media decoding. Plugin
 *		names resolve through the registry, the same table a
 *		GUI would use for its "add plugin" menu.
 *
 *		Example session:
 *
 *		  bufferFrames: 512
 *		  tracks:
 *		    - name: Synth
 *		      synth: { frequency: 110.0, gain: -12.0 }
 *		      plugins: [Filter, Compressor, Reverb]
 *		      gain: -3.0
 *		    - name: Bus
 *		      receives: [Synth]
 *		      plugins: [Lookahead Limiter]
 *
 *		Every track also connects to the master, whether or not
 *		it has explicit receives.
 *
 *--------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	azaudio "github.com/Equivocatorrr/AzAudio-sub000/src"
)

type synthSpec struct {
	Frequency float32 `yaml:"frequency"`
	Gain      float32 `yaml:"gain"`
}

type trackSpec struct {
	Name     string     `yaml:"name"`
	Synth    *synthSpec `yaml:"synth"`
	Plugins  []string   `yaml:"plugins"`
	Receives []string   `yaml:"receives"`
	Gain     float32    `yaml:"gain"`
	Mute     bool       `yaml:"mute"`
}

type sessionSpec struct {
	BufferFrames uint32      `yaml:"bufferFrames"`
	Tracks       []trackSpec `yaml:"tracks"`
}

// A bandlimited sawtooth-ish additive voice, enough to hear the mixer
// doing its thing.
type synthDSP struct {
	azaudio.DSPHeader
	frequency float32
	amp       float32
	gen       [10]float32
}

func (s *synthDSP) Process(dst, src *azaudio.Buffer, flags uint32) error {
	timestep := 1.0 / float32(dst.Samplerate)
	for i := uint32(0); i < dst.Frames; i++ {
		sample := float32(0.0)
		for o := 0; o < len(s.gen); o++ {
			freq := float32(o*2+1) * s.frequency
			genstep := timestep * freq
			if genstep >= 0.5 {
				break
			}
			sample += azaudio.OscSine(s.gen[o]) / float32(o*2+1)
			s.gen[o] += genstep
			if s.gen[o] >= 1.0 {
				s.gen[o] -= 1.0
			}
		}
		sample *= s.amp
		for c := uint32(0); c < uint32(dst.ChannelLayout.Count); c++ {
			dst.Samples[i*uint32(dst.Stride)+c] = sample
		}
	}
	return nil
}

func buildMixer(mixer *azaudio.Mixer, session *sessionSpec) error {
	byName := map[string]*azaudio.Track{}
	specByName := map[string]trackSpec{}
	for _, spec := range session.Tracks {
		track, err := mixer.AddTrack(-1, azaudio.ChannelLayoutStereo(), false)
		if err != nil {
			return err
		}
		track.Name = spec.Name
		track.Gain = spec.Gain
		track.Mute = spec.Mute
		if spec.Synth != nil {
			amp := azaudio.DbToAmp(spec.Synth.Gain)
			track.AppendDSP(&synthDSP{
				DSPHeader: azaudio.DSPHeader{Name: "Synth", Version: 1, Owned: true},
				frequency: spec.Synth.Frequency,
				amp:       amp,
			})
		}
		for _, pluginName := range spec.Plugins {
			dsp := azaudio.MakeDSPByName(pluginName)
			if dsp == nil {
				return fmt.Errorf("unknown plugin %q on track %q", pluginName, spec.Name)
			}
			track.AppendDSP(dsp)
		}
		byName[spec.Name] = track
		specByName[spec.Name] = spec
	}
	// Wire up receives now that every track exists
	for name, track := range byName {
		spec := specByName[name]
		if len(spec.Receives) == 0 {
			azaudio.TrackConnect(track, &mixer.Master, 0.0, 0)
			continue
		}
		for _, sourceName := range spec.Receives {
			source, ok := byName[sourceName]
			if !ok {
				return fmt.Errorf("track %q receives from unknown track %q", name, sourceName)
			}
			azaudio.TrackConnect(source, track, 0.0, 0)
		}
		azaudio.TrackConnect(track, &mixer.Master, 0.0, 0)
	}
	return nil
}

func main() {
	var sessionPath = pflag.StringP("session", "s", "", "YAML session file describing tracks, plugins and receives")
	var device = pflag.StringP("device", "d", "", "Output device name (default device if empty)")
	var listDevices = pflag.BoolP("list-devices", "l", false, "List output devices and exit")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Run a mixer session against the sound card.\n\n", os.Args[0])
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

	if *listDevices {
		devices, err := azaudio.Devices(azaudio.DeviceOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to enumerate devices: %v\n", err)
			os.Exit(1)
		}
		for _, device := range devices {
			fmt.Printf("%s (%d channels)\n", device.Name, device.Channels)
		}
		return
	}

	session := sessionSpec{
		Tracks: []trackSpec{
			{Name: "Synth", Synth: &synthSpec{Frequency: 110.0, Gain: -12.0}, Plugins: []string{"Filter", "Reverb"}},
		},
	}
	if *sessionPath != "" {
		raw, err := os.ReadFile(*sessionPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read session: %v\n", err)
			os.Exit(1)
		}
		session = sessionSpec{}
		if err := yaml.Unmarshal(raw, &session); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse session: %v\n", err)
			os.Exit(1)
		}
	}

	mixer := &azaudio.Mixer{}
	err := azaudio.MixerStreamOpen(mixer, azaudio.MixerConfig{BufferFrames: session.BufferFrames}, azaudio.StreamConfig{DeviceName: *device}, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open mixer stream: %v\n", err)
		os.Exit(1)
	}
	if err := buildMixer(mixer, &session); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build session: %v\n", err)
		os.Exit(1)
	}

	mixer.StreamSetActive(true)
	fmt.Printf("Mixing %d tracks at %dHz. Press ENTER to stop\n", len(mixer.Tracks), mixer.Stream.Samplerate())
	fmt.Scanln()
	azaudio.MixerStreamClose(mixer, false)
}
