package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Static delay with feedback, ping-pong, per-channel
 *		delay offsets and an optional effects chain on the wet
 *		input (inside the feedback loop).
 *
 *		One circular buffer per channel sized to the largest
 *		needed delay. Growing a delay makes the new samples
 *		read as zero until written; shrinking brings the read
 *		pointer forward, never dropping samples from the middle.
 *
 *---------------------------------------------------------------*/

type DelayChannelConfig struct {
	// Extra delay in ms added to the shared delay for this channel
	DelayMs float32
}

type DelayConfig struct {
	// Gain in dB of the delayed signal
	GainWet float32
	// Gain in dB of the input signal
	GainDry float32
	MuteWet bool
	MuteDry bool
	// Delay time in ms
	DelayMs float32
	// How much of the delayed signal feeds back into the delay, from 0 to 1
	Feedback float32
	// How much of the wet signal crosses into the next channel, from 0 to 1
	Pingpong float32
	// Effects applied to the wet signal inside the feedback loop. May be nil.
	InputEffects *DSPChain
	Channels     [MaxChannelPositions]DelayChannelConfig
}

type delayChannelData struct {
	buffer       []float32
	delaySamples uint32
	index        uint32
}

type Delay struct {
	DSPHeader
	Config DelayConfig

	MetersInput  Meters
	MetersOutput Meters

	channelData [MaxChannelPositions]delayChannelData
	buffer      []float32
}

var _ DSP = (*Delay)(nil)

func DelayInit(data *Delay, config DelayConfig) {
	data.DSPHeader = DSPHeader{Name: "Delay", Version: 1}
	data.Config = config
}

func MakeDelay(config DelayConfig) *Delay {
	result := &Delay{}
	DelayInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultDelay() *Delay {
	return MakeDelay(DelayConfig{
		GainWet:  -6.0,
		GainDry:  0.0,
		DelayMs:  300.0,
		Feedback: 0.5,
		Pingpong: 0.0,
	})
}

func (data *Delay) Reset() {
	data.MetersInput.Reset()
	data.MetersOutput.Reset()
	clear(data.buffer)
	for c := range data.channelData {
		data.channelData[c].index = 0
	}
}

func (data *Delay) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersInput.ResetChannels(firstChannel, channelCount)
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
	for c := firstChannel; c < firstChannel+channelCount && c < MaxChannelPositions; c++ {
		clear(data.channelData[c].buffer)
		data.channelData[c].index = 0
	}
}

func (data *Delay) Free() {
	if data.Config.InputEffects != nil {
		data.Config.InputEffects.Deinit()
	}
}

func (data *Delay) ChannelConfig(channel uint8) *DelayChannelConfig {
	return &data.Config.Channels[channel]
}

func (data *Delay) handleBufferResizes(samplerate uint32, channelCount uint8) {
	delaySamplesMax := uint32(0)
	perChannelBufferCap := uint32(0)
	if channelCount > 0 {
		perChannelBufferCap = uint32(len(data.buffer)) / uint32(channelCount)
	}
	realloc := false
	for c := uint8(0); c < channelCount; c++ {
		channelData := &data.channelData[c]
		// +1 because the ring reads one slot ahead of the write index,
		// making the effective shift exactly the rounded sample count.
		delaySamples := uint32(roundf(msToSamples(data.Config.DelayMs+data.Config.Channels[c].DelayMs, float32(samplerate)))) + 1
		if delaySamples > delaySamplesMax {
			delaySamplesMax = delaySamples
		}
		if channelData.delaySamples >= delaySamples && channelData.buffer != nil {
			if channelData.index > delaySamples {
				channelData.index = 0
			}
			channelData.delaySamples = delaySamples
		} else if perChannelBufferCap >= delaySamples && channelData.buffer != nil {
			channelData.delaySamples = delaySamples
		} else {
			realloc = true
		}
	}
	if !realloc {
		return
	}
	newPerChannelBufferCap := delaySamplesMax
	if newPerChannelBufferCap < 256 {
		newPerChannelBufferCap = 256
	}
	newBuffer := make([]float32, newPerChannelBufferCap*uint32(channelCount))
	for c := uint8(0); c < channelCount; c++ {
		channelData := &data.channelData[c]
		newChannelBuffer := newBuffer[uint32(c)*newPerChannelBufferCap : uint32(c+1)*newPerChannelBufferCap]
		if channelData.buffer != nil && channelData.delaySamples > 0 {
			copy(newChannelBuffer, channelData.buffer[:channelData.delaySamples])
		}
		channelData.buffer = newChannelBuffer
		channelData.delaySamples = uint32(roundf(msToSamples(data.Config.DelayMs+data.Config.Channels[c].DelayMs, float32(samplerate)))) + 1
	}
	data.buffer = newBuffer
}

func (data *Delay) Process(dst, src *Buffer, flags uint32) error {
	if flags&ProcessCut != 0 {
		data.Reset()
	}

	if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
		return err
	}

	firstNew, newCount := data.trackChannelCounts(dst, src)
	if newCount > 0 {
		data.ResetChannels(firstNew, newCount)
	}

	data.handleBufferResizes(src.Samplerate, src.ChannelLayout.Count)

	if data.Selected {
		data.MetersInput.Update(src, 1.0)
	}

	channels := uint32(src.ChannelLayout.Count)
	sideBuffer := PushSideBufferZero(src.Frames, 0, 0, channels, src.Samplerate)
	defer PopSideBuffer()
	// Gather the wet input: current input plus feedback, split between
	// this channel and the next by pingpong.
	for c := uint32(0); c < channels; c++ {
		channelData := &data.channelData[c]
		index := channelData.index
		c2 := (c + 1) % channels
		for i := uint32(0); i < src.Frames; i++ {
			toAdd := src.Samples[i*uint32(src.Stride)+c] + channelData.buffer[index]*data.Config.Feedback
			sideBuffer.Samples[i*uint32(sideBuffer.Stride)+c] += toAdd * (1.0 - data.Config.Pingpong)
			sideBuffer.Samples[i*uint32(sideBuffer.Stride)+c2] += toAdd * data.Config.Pingpong
			index = (index + 1) % channelData.delaySamples
		}
	}
	if data.Config.InputEffects != nil {
		if err := data.Config.InputEffects.Process(&sideBuffer, &sideBuffer, flags); err != nil {
			return err
		}
	}
	amount := dbToAmp(data.Config.GainWet)
	if data.Config.MuteWet {
		amount = 0.0
	}
	amountDry := dbToAmp(data.Config.GainDry)
	if data.Config.MuteDry {
		amountDry = 0.0
	}
	// Commit the wet input to the ring and produce the output.
	for c := uint32(0); c < channels; c++ {
		channelData := &data.channelData[c]
		index := channelData.index
		for i := uint32(0); i < dst.Frames; i++ {
			channelData.buffer[index] = sideBuffer.Samples[i*uint32(sideBuffer.Stride)+c]
			index = (index + 1) % channelData.delaySamples
			dst.Samples[i*uint32(dst.Stride)+c] = channelData.buffer[index]*amount + src.Samples[i*uint32(src.Stride)+c]*amountDry
		}
		channelData.index = index
	}

	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}

	return nil
}
