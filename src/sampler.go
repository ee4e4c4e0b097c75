package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Sampler: plays voices out of a source buffer with
 *		per-voice speed and volume followers, an ADSR envelope,
 *		looping, ping-pong and reverse playback.
 *
 *		Playback resamples through the default Lanczos kernels
 *		with the radius adapted to the playback rate, keeping
 *		the low pass below the minimum Nyquist frequency
 *		(leaving some space for the transition band to alias
 *		onto itself outside the range of human hearing).
 *
 *		play/stop may be called from non-audio threads, so all
 *		mutations of the voice list go through a mutex.
 *
 *---------------------------------------------------------------*/

import "sync"

// 13 plays nice with 8-wide unrolls
const samplerDesiredKernelRadius = 13

const samplerStopBand = float32(20000.0)

// Voice cap per sampler; play calls beyond this are rejected.
const SamplerMaxInstances = 32

type SamplerConfig struct {
	// The source to play from. Must outlive every voice.
	Buffer *Buffer
	// How long voices take to follow a speed change, in ms
	SpeedTransitionTimeMs float32
	// How long voices take to follow a volume change, in ms
	VolumeTransitionTimeMs float32
	// First frame of the loop region
	LoopStart int32
	// One past the last frame of the loop region; <= LoopStart means the whole buffer
	LoopEnd int32
	Loop    bool
	// Reflect at the loop points instead of wrapping
	Pingpong bool
	Envelope ADSRConfig
}

type SamplerInstance struct {
	ID       uint32
	Frame    int32
	Fraction float32
	Reverse  bool
	Speed    FollowerLinear
	Volume   FollowerLinear
	Envelope ADSRInstance
}

type Sampler struct {
	DSPHeader
	Config SamplerConfig

	MetersOutput Meters

	mutex        sync.Mutex
	instances    [SamplerMaxInstances]SamplerInstance
	numInstances uint32
	nextID       uint32
}

var _ DSP = (*Sampler)(nil)

func SamplerInit(data *Sampler, config SamplerConfig) {
	data.DSPHeader = DSPHeader{Name: "Sampler", Version: 1}
	data.Config = config
	data.numInstances = 0
	data.nextID = 1
}

func MakeSampler(config SamplerConfig) *Sampler {
	result := &Sampler{}
	SamplerInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultSampler() *Sampler {
	return MakeSampler(SamplerConfig{
		SpeedTransitionTimeMs:  50.0,
		VolumeTransitionTimeMs: 50.0,
	})
}

func (data *Sampler) Reset() {
	data.MetersOutput.Reset()
}

func (data *Sampler) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
}

// The sampler is a generator: it adds voices into dst and ignores src.
func (data *Sampler) Process(dst, src *Buffer, flags uint32) error {
	if flags&ProcessCut != 0 {
		data.Reset()
	}

	if err := checkBuffer(dst); err != nil {
		return err
	}

	_ = src

	if data.Config.Buffer == nil {
		// Without a buffer we are nothing
		return nil
	}

	// Put in as many channels as both sides have.
	channels := dst.ChannelLayout.Count
	if data.Config.Buffer.ChannelLayout.Count < channels {
		channels = data.Config.Buffer.ChannelLayout.Count
	}

	data.mutex.Lock()
	defer data.mutex.Unlock()
	source := data.Config.Buffer
	samplerateFactor := float32(source.Samplerate) / float32(dst.Samplerate)
	deltaMs := 1000.0 / float32(source.Samplerate)
	loopStart := data.Config.LoopStart
	if loopStart >= int32(source.Frames) {
		loopStart = 0
	}
	loopEnd := data.Config.LoopEnd
	if loopEnd <= loopStart {
		loopEnd = int32(source.Frames)
	}
	loopRegionLength := loopEnd - loopStart
	// Keep our lowpass below the minimum nyquist frequency
	stopBandFactor := clampf(2.0*samplerStopBand/float32(dst.Samplerate), 0.25, 1.0)
	var frame [MaxChannelPositions]float32
	for inst := 0; inst < int(data.numInstances); inst++ {
		instance := &data.instances[inst]
		for i := uint32(0); i < dst.Frames; i++ {
			volumeEnvelope := instance.Envelope.Update(&data.Config.Envelope, deltaMs)
			if instance.Envelope.Stage == ADSRStageStop {
				data.numInstances--
				if inst < int(data.numInstances) {
					copy(data.instances[inst:], data.instances[inst+1:data.numInstances+1])
				}
				inst--
				break
			}
			volumeGain := instance.Volume.Update(deltaMs / data.Config.VolumeTransitionTimeMs)
			volume := volumeEnvelope * volumeGain
			speed := instance.Speed.Update(deltaMs / data.Config.SpeedTransitionTimeMs)
			speed *= samplerateFactor
			if volume != 0.0 {
				if speed == 1.0 && instance.Fraction == 0.0 && instance.Frame >= 0 && instance.Frame < int32(source.Frames) {
					// No resampling necessary
					for c := uint8(0); c < channels; c++ {
						sample := source.Samples[uint32(instance.Frame)*uint32(source.Stride)+uint32(c)]
						dst.Samples[i*uint32(dst.Stride)+uint32(c)] += sample * volume
					}
				} else {
					rate := minf(stopBandFactor/speed, 1.0)
					kernel := KernelGetDefaultLanczos(KernelGetRadiusForRate(rate, samplerDesiredKernelRadius))
					// TODO: Find some way to deal with the quiet pops you get from swapping out kernels
					SampleWithKernel(frame[:channels], int(channels), kernel, source.Samples, 0, int(source.Stride), 0, int(source.Frames), data.Config.Loop, int(instance.Frame), instance.Fraction, rate)
					for c := uint8(0); c < channels; c++ {
						dst.Samples[i*uint32(dst.Stride)+uint32(c)] += frame[c] * volume
					}
				}
			}
			// TODO: Loop crossfades, because nobody likes a pop
			startedBeforeLoopEnd := instance.Frame <= loopEnd
			startedAfterLoopStart := instance.Frame >= loopStart
			if instance.Reverse {
				instance.Fraction -= speed
			} else {
				instance.Fraction += speed
			}
			framesToAdd := int32(truncf(instance.Fraction))
			instance.Frame += framesToAdd
			instance.Fraction -= float32(framesToAdd)
			if data.Config.Loop {
				if data.Config.Pingpong {
					if !instance.Reverse && startedBeforeLoopEnd && instance.Frame >= loopEnd {
						// - 1 because loopEnd is not considered a part of the range
						instance.Frame = loopEnd + loopEnd - instance.Frame - 1
						instance.Fraction = -instance.Fraction
						instance.Reverse = true
					} else if instance.Reverse && startedAfterLoopStart && instance.Frame <= loopStart {
						// not - 1 because loopStart is considered a part of the range
						instance.Frame = loopStart + loopStart - instance.Frame
						instance.Fraction = -instance.Fraction
						instance.Reverse = false
					}
				} else {
					if !instance.Reverse && startedBeforeLoopEnd && instance.Frame >= loopEnd {
						instance.Frame -= loopRegionLength
					} else if instance.Reverse && startedAfterLoopStart && instance.Frame <= loopStart {
						instance.Frame += loopRegionLength - 1
					}
				}
			}
			if (!instance.Reverse && instance.Frame >= int32(source.Frames)) || (instance.Reverse && instance.Frame < 0) {
				instance.Envelope.Stage = ADSRStageStop
			}
		}
	}

	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}

	return nil
}

// Starts a new voice at the given speed (negative plays in reverse from
// the end) and gain in dB. Returns the voice id for later control, or 0
// if the voice cap is reached. Safe to call from any thread.
func (data *Sampler) Play(speed, gainDB float32) uint32 {
	data.mutex.Lock()
	defer data.mutex.Unlock()
	if data.numInstances >= SamplerMaxInstances {
		return 0
	}
	id := data.nextID
	data.nextID++
	if data.nextID == 0 {
		data.nextID = 1
	}
	instance := &data.instances[data.numInstances]
	data.numInstances++
	*instance = SamplerInstance{ID: id}
	if speed < 0.0 {
		instance.Frame = int32(data.Config.Buffer.Frames) - 1
		instance.Reverse = true
		speed = -speed
	}
	instance.Envelope.Start()
	instance.Speed.Jump(speed)
	instance.Volume.Jump(dbToAmp(gainDB))
	return id
}

func (data *Sampler) getInstance(id uint32) *SamplerInstance {
	for i := uint32(0); i < data.numInstances; i++ {
		if data.instances[i].ID == id {
			return &data.instances[i]
		}
	}
	return nil
}

// Looks up a live voice by id. The result is only valid under the
// caller's knowledge that the audio thread isn't running; prefer
// Stop/StopAll for control.
func (data *Sampler) GetInstance(id uint32) *SamplerInstance {
	data.mutex.Lock()
	defer data.mutex.Unlock()
	return data.getInstance(id)
}

// Releases a voice into its envelope's release stage.
func (data *Sampler) Stop(id uint32) {
	data.mutex.Lock()
	defer data.mutex.Unlock()
	if instance := data.getInstance(id); instance != nil {
		instance.Envelope.Stop()
	}
}

func (data *Sampler) StopAll() {
	data.mutex.Lock()
	defer data.mutex.Unlock()
	for i := uint32(0); i < data.numInstances; i++ {
		data.instances[i].Envelope.Stop()
	}
}
