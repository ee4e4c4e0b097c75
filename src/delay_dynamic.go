package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Dynamic delay: delay time changes smoothly per channel,
 *		resampling the delay line through a Lanczos kernel.
 *		Shrinking delay over time plays the line back faster
 *		than realtime, which is exactly a doppler up-pitch, so
 *		this is the doppler engine for the spatializer.
 *
 *		Per channel the line holds delayMax samples plus kernel
 *		guards on both ends plus one block of input, organized
 *		so the "now" point sits delayMax samples in with
 *		sampleZero-1 leading and length-sampleZero trailing
 *		guard samples; kernel sampling can never run off either
 *		end. After reading, the ring shifts left so new input
 *		lands at the "now" position.
 *
 *		The kernel radius adapts to the resampling rate to keep
 *		tap counts bounded and the low pass under the output
 *		Nyquist. Swapping kernels by radius gets us nice
 *		predictable performance costs, but the jump in radius
 *		creates a very quiet pop in the sampled audio;
 *		cross-fading adjacent radii would double the sampling
 *		cost. TODO: Find some way to deal with the quiet pops
 *		you get from swapping out kernels.
 *
 *---------------------------------------------------------------*/

const delayDynamicDesiredKernelRadius = 13

type DelayDynamicChannelConfig struct {
	// Target delay in ms; the follower chases it over DelayFollowTimeMs
	DelayMs float32
}

type DelayDynamicConfig struct {
	// Gain in dB of the delayed signal
	GainWet float32
	// Gain in dB of the input signal
	GainDry float32
	MuteWet bool
	MuteDry bool
	// Upper bound of any channel's delay in ms; sizes the line
	DelayMaxMs float32
	// How long the per-channel followers take to reach a new target
	DelayFollowTimeMs float32
	// How much of the delayed signal feeds back into the line, from 0 to 1
	Feedback float32
	// How much of the wet signal crosses into the next channel, from 0 to 1
	Pingpong float32
	// Overrides the default radius-adapted Lanczos kernels. May be nil.
	Kernel   *Kernel
	Channels [MaxChannelPositions]DelayDynamicChannelConfig
}

type delayDynamicChannelData struct {
	buffer       []float32
	delayMs      FollowerLinear
	ratePrevious float32
}

type DelayDynamic struct {
	DSPHeader
	Config DelayDynamicConfig

	MetersInput  Meters
	MetersOutput Meters

	// Effects applied to the wet input before it enters the line.
	InputEffects DSPChain

	channelData         [MaxChannelPositions]delayDynamicChannelData
	buffer              []float32
	lastSrcBufferFrames uint32
}

var _ DSP = (*DelayDynamic)(nil)

func DelayDynamicInit(data *DelayDynamic, config DelayDynamicConfig) {
	data.DSPHeader = DSPHeader{Name: "Dynamic Delay", Version: 1}
	data.Config = config
	data.InputEffects.Init(0)
	data.lastSrcBufferFrames = 0
}

func MakeDelayDynamic(config DelayDynamicConfig) *DelayDynamic {
	result := &DelayDynamic{}
	DelayDynamicInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultDelayDynamic() *DelayDynamic {
	return MakeDelayDynamic(DelayDynamicConfig{
		GainWet:           -6.0,
		GainDry:           0.0,
		DelayMaxMs:        500.0,
		DelayFollowTimeMs: 20.0,
		Feedback:          0.5,
		Pingpong:          0.0,
	})
}

func (data *DelayDynamic) Free() {
	data.InputEffects.Deinit()
	data.buffer = nil
}

func (data *DelayDynamic) Reset() {
	data.MetersInput.Reset()
	data.MetersOutput.Reset()
	// This might be called before we allocate anything, so be smart about it
	clear(data.buffer)
	for c := range data.channelData {
		data.channelData[c].ratePrevious = 0.0
	}
}

func (data *DelayDynamic) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersInput.ResetChannels(firstChannel, channelCount)
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
	for c := firstChannel; c < firstChannel+channelCount && c < MaxChannelPositions; c++ {
		clear(data.channelData[c].buffer)
		data.channelData[c].ratePrevious = 0.0
	}
}

func (data *DelayDynamic) ChannelConfig(channel uint8) *DelayDynamicChannelConfig {
	return &data.Config.Channels[channel]
}

func (data *DelayDynamic) kernelForRate(rate float32) *Kernel {
	if data.Config.Kernel != nil {
		return data.Config.Kernel
	}
	return KernelGetDefaultLanczos(KernelGetRadiusForRate(rate, delayDynamicDesiredKernelRadius))
}

func (data *DelayDynamic) handleBufferResizes(src *Buffer) {
	// TODO: Probably track channel layouts and handle them changing. Right now the buffers will break if the number of channels changes.
	kernel := data.kernelForRate(1.0)
	kernelSamples := kernel.Length
	delaySamplesMax := uint32(ceilf(msToSamples(data.Config.DelayMaxMs, float32(src.Samplerate)))) + kernelSamples
	totalSamplesNeeded := delaySamplesMax + src.Frames
	channels := uint32(src.ChannelLayout.Count)
	perChannelBufferCap := uint32(0)
	if channels > 0 {
		perChannelBufferCap = uint32(len(data.buffer)) / channels
	}
	if perChannelBufferCap >= totalSamplesNeeded {
		return
	}
	newPerChannelBufferCap := totalSamplesNeeded + totalSamplesNeeded/2
	newBuffer := make([]float32, newPerChannelBufferCap*channels)
	for c := uint32(0); c < channels; c++ {
		channelData := &data.channelData[c]
		newChannelBuffer := newBuffer[c*newPerChannelBufferCap : (c+1)*newPerChannelBufferCap]
		if channelData.buffer != nil {
			// Keep the most recent history at the end of the new line.
			copy(newChannelBuffer[newPerChannelBufferCap-perChannelBufferCap:], channelData.buffer[:perChannelBufferCap])
		}
		channelData.buffer = newChannelBuffer
	}
	for c := channels; c < MaxChannelPositions; c++ {
		// If channel count shrinks, prevent the above from breaking if it grows again
		data.channelData[c].buffer = nil
		data.channelData[c].ratePrevious = 0.0
	}
	data.buffer = newBuffer
}

// Puts new audio data into the line for immediate sampling. Assumes
// handleBufferResizes was called already.
func (data *DelayDynamic) primeBuffer(src *Buffer) {
	kernel := data.kernelForRate(1.0)
	kernelSamples := kernel.Length
	delaySamplesMax := uint32(ceilf(msToSamples(data.Config.DelayMaxMs, float32(src.Samplerate)))) + kernelSamples
	for c := uint32(0); c < uint32(src.ChannelLayout.Count); c++ {
		channelData := &data.channelData[c]
		// Move existing history back to make room for the new block
		if data.lastSrcBufferFrames != 0 {
			copy(channelData.buffer[:delaySamplesMax], channelData.buffer[data.lastSrcBufferFrames:data.lastSrcBufferFrames+delaySamplesMax])
		}
		for i := uint32(0); i < src.Frames; i++ {
			channelData.buffer[delaySamplesMax+i] = src.Samples[i*uint32(src.Stride)+c]
		}
	}
	data.lastSrcBufferFrames = src.Frames
}

// Jumps the per-channel followers to startDelayMs and
// targets endDelayMs across this one block. The spatializer uses this to
// ramp delays it computed from positions.
func (data *DelayDynamic) SetRamps(numChannels uint8, startDelayMs, endDelayMs []float32, frames, samplerate uint32) {
	data.Config.DelayFollowTimeMs = samplesToMs(float32(frames), float32(samplerate))
	for c := uint8(0); c < numChannels; c++ {
		data.channelData[c].delayMs.Jump(startDelayMs[c])
		data.Config.Channels[c].DelayMs = endDelayMs[c]
	}
}

func (data *DelayDynamic) Process(dst, src *Buffer, flags uint32) error {
	if flags&ProcessCut != 0 {
		data.Reset()
	}

	if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
		return err
	}

	data.handleBufferResizes(src)

	firstNew, newCount := data.trackChannelCounts(dst, src)
	if newCount > 0 {
		data.ResetChannels(firstNew, newCount)
	}

	if data.Selected {
		data.MetersInput.Update(src, 1.0)
	}

	kernel := data.kernelForRate(1.0)
	sideBuffer := PushSideBufferCopy(src)
	defer PopSideBuffer()
	kernelSamplesLeft := int(kernel.SampleZero)
	kernelSamplesRight := int(kernel.Length - kernel.SampleZero)
	delaySamplesMax := uint32(ceilf(msToSamples(data.Config.DelayMaxMs, float32(src.Samplerate))))

	channels := uint32(dst.ChannelLayout.Count)
	if data.Config.Feedback != 0.0 {
		// Prime the wet input with our feedback
		for c := uint32(0); c < channels; c++ {
			channelData := &data.channelData[c]
			channelConfig := &data.Config.Channels[c]
			// Backup because we loop again below over the same range
			followerBackup := channelData.delayMs
			channelData.delayMs.SetTarget(channelConfig.DelayMs)

			deltaT := float32(dst.Frames) / msToSamples(data.Config.DelayFollowTimeMs, float32(sideBuffer.Samplerate))
			delayStartMs := clampf(channelData.delayMs.Update(deltaT), 0.0, data.Config.DelayMaxMs)
			delayEndMs := clampf(channelData.delayMs.GetValue(), 0.0, data.Config.DelayMaxMs)
			startIndex := float32(delaySamplesMax) - msToSamples(delayStartMs, float32(dst.Samplerate))
			endIndex := float32(delaySamplesMax) - msToSamples(delayEndMs, float32(dst.Samplerate)) + float32(dst.Frames)
			endRate := minf((endIndex-startIndex)/float32(dst.Frames), 1.0)

			// Very low rates would make the kernel sampling take 1/rate
			// times as long as normal, so bound the cost with silence.
			if endRate <= 0.01 {
				continue
			}
			startRate := endRate
			if channelData.ratePrevious != 0.0 {
				startRate = channelData.ratePrevious
			}
			kernel = data.kernelForRate(startRate)
			c2 := (c + 1) % channels
			maxFrame := int(delaySamplesMax) + kernelSamplesRight + int(sideBuffer.Frames)
			for i := uint32(0); i < sideBuffer.Frames; i++ {
				t := float32(i) / float32(dst.Frames)
				rate := lerpf(startRate, endRate, t)
				index := lerpf(startIndex, endIndex, t)
				frame := int(truncf(index))
				fraction := index - float32(frame)
				toAdd := SampleWithKernel1Ch(kernel, channelData.buffer, kernelSamplesLeft, 1, -kernelSamplesLeft, maxFrame, false, frame, fraction, rate) * data.Config.Feedback
				sideBuffer.Samples[i*uint32(sideBuffer.Stride)+c] += toAdd * (1.0 - data.Config.Pingpong)
				sideBuffer.Samples[i*uint32(sideBuffer.Stride)+c2] += toAdd * data.Config.Pingpong
			}
			channelData.delayMs = followerBackup
		}
	}
	if len(data.InputEffects.Steps) != 0 {
		if err := data.InputEffects.Process(&sideBuffer, &sideBuffer, flags); err != nil {
			return err
		}
	}
	data.primeBuffer(&sideBuffer)
	amountWet := dbToAmp(data.Config.GainWet)
	if data.Config.MuteWet {
		amountWet = 0.0
	}
	amountDry := dbToAmp(data.Config.GainDry)
	if data.Config.MuteDry {
		amountDry = 0.0
	}
	for c := uint32(0); c < channels; c++ {
		channelData := &data.channelData[c]
		channelConfig := &data.Config.Channels[c]
		channelData.delayMs.SetTarget(channelConfig.DelayMs)

		deltaT := float32(dst.Frames) / msToSamples(data.Config.DelayFollowTimeMs, float32(sideBuffer.Samplerate))
		delayStartMs := clampf(channelData.delayMs.Update(deltaT), 0.0, data.Config.DelayMaxMs)
		delayEndMs := clampf(channelData.delayMs.GetValue(), 0.0, data.Config.DelayMaxMs)
		startIndex := float32(delaySamplesMax) - msToSamples(delayStartMs, float32(dst.Samplerate))
		endIndex := float32(delaySamplesMax) - msToSamples(delayEndMs, float32(dst.Samplerate)) + float32(dst.Frames)
		endRate := minf((endIndex-startIndex)/float32(dst.Frames), 1.0)

		if endRate <= 0.01 {
			for i := uint32(0); i < dst.Frames; i++ {
				dst.Samples[i*uint32(dst.Stride)+c] = src.Samples[i*uint32(src.Stride)+c] * amountDry
			}
			continue
		}
		startRate := endRate
		if channelData.ratePrevious != 0.0 {
			startRate = channelData.ratePrevious
		}
		channelData.ratePrevious = endRate
		kernel = data.kernelForRate(startRate)
		maxFrame := int(delaySamplesMax) + kernelSamplesRight + int(src.Frames)
		for i := uint32(0); i < dst.Frames; i++ {
			t := float32(i) / float32(dst.Frames)
			rate := lerpf(startRate, endRate, t)
			index := lerpf(startIndex, endIndex, t)
			frame := int(truncf(index))
			fraction := index - float32(frame)
			wet := SampleWithKernel1Ch(kernel, channelData.buffer, kernelSamplesLeft, 1, -kernelSamplesLeft, maxFrame, false, frame, fraction, rate)
			dst.Samples[i*uint32(dst.Stride)+c] = wet*amountWet + src.Samples[i*uint32(src.Stride)+c]*amountDry
		}
	}

	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}

	return nil
}

func (data *DelayDynamic) GetSpecs(samplerate uint32) DSPSpecs {
	kernel := data.kernelForRate(1.0)
	return DSPSpecs{
		LatencyFrames:  0,
		LeadingFrames:  kernel.SampleZero - 1,
		TrailingFrames: kernel.Length - kernel.SampleZero,
	}
}
