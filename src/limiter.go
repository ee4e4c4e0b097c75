package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	The two limiters.
 *
 *		Cubic Limiter: stateless soft clipper,
 *		1.5x - 0.5x^3 over [-1; 1].
 *
 *		Lookahead Limiter: delays the signal by lookaheadSamples
 *		and walks gain down along a slope chosen so attenuation
 *		lands exactly when the peak that caused it comes out of
 *		the delay line. Output saturates at +/-1. All channels
 *		share the gain envelope, keyed on the loudest channel
 *		per frame.
 *
 *---------------------------------------------------------------*/

// How many frames of delay the lookahead limiter uses to see peaks coming.
const lookaheadSamples = 128

type CubicLimiter struct {
	DSPHeader
}

var _ DSP = (*CubicLimiter)(nil)

func cubicLimiterSample(sample float32) float32 {
	if sample > 1.0 {
		sample = 1.0
	} else if sample < -1.0 {
		sample = -1.0
	}
	return 1.5*sample - 0.5*sample*sample*sample
}

func CubicLimiterInit(data *CubicLimiter) {
	data.DSPHeader = DSPHeader{Name: "Cubic Limiter", Version: 1}
}

func MakeCubicLimiter() *CubicLimiter {
	result := &CubicLimiter{}
	CubicLimiterInit(result)
	result.Owned = true
	return result
}

func MakeDefaultCubicLimiter() *CubicLimiter {
	return MakeCubicLimiter()
}

func (data *CubicLimiter) Process(dst, src *Buffer, flags uint32) error {
	if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
		return err
	}
	channels := uint32(dst.ChannelLayout.Count)
	if uint16(channels) == dst.Stride && uint16(channels) == src.Stride {
		for i := uint32(0); i < dst.Frames*channels; i++ {
			dst.Samples[i] = cubicLimiterSample(src.Samples[i])
		}
		return nil
	}
	for i := uint32(0); i < dst.Frames; i++ {
		for c := uint32(0); c < channels; c++ {
			dst.Samples[i*uint32(dst.Stride)+c] = cubicLimiterSample(src.Samples[i*uint32(src.Stride)+c])
		}
	}
	return nil
}

type LookaheadLimiterConfig struct {
	// Gain in dB applied before limiting.
	GainInput float32
	// Gain in dB applied after limiting, unlimited. Useful for
	// hearing into the saturated region without blowing your ears out.
	GainOutput float32
}

type lookaheadLimiterChannelData struct {
	valBuffer [lookaheadSamples]float32
}

type LookaheadLimiter struct {
	DSPHeader
	Config LookaheadLimiterConfig

	MetersInput  Meters
	MetersOutput Meters

	channelData [MaxChannelPositions]lookaheadLimiterChannelData
	peakBuffer  [lookaheadSamples]float32
	// Current gain envelope value and its per-frame slope.
	sum      float32
	slope    float32
	cooldown int
	index    int
	// Attenuation tracking for meters.
	minAmp      float32
	minAmpShort float32
}

var _ DSP = (*LookaheadLimiter)(nil)

func LookaheadLimiterInit(data *LookaheadLimiter, config LookaheadLimiterConfig) {
	data.DSPHeader = DSPHeader{Name: "Lookahead Limiter", Version: 1}
	data.Config = config
	data.Reset()
}

func MakeLookaheadLimiter(config LookaheadLimiterConfig) *LookaheadLimiter {
	result := &LookaheadLimiter{}
	LookaheadLimiterInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultLookaheadLimiter() *LookaheadLimiter {
	return MakeLookaheadLimiter(LookaheadLimiterConfig{
		GainInput:  0.0,
		GainOutput: 0.0,
	})
}

func (data *LookaheadLimiter) Reset() {
	data.MetersInput.Reset()
	data.MetersOutput.Reset()
	for c := range data.channelData {
		data.channelData[c] = lookaheadLimiterChannelData{}
	}
	for i := range data.peakBuffer {
		data.peakBuffer[i] = 1.0
	}
	data.sum = 1.0
	data.slope = 0.0
	data.cooldown = 0
	data.index = 0
	data.minAmp = 1.0
	data.minAmpShort = 1.0
}

func (data *LookaheadLimiter) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersInput.ResetChannels(firstChannel, channelCount)
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
	for c := firstChannel; c < firstChannel+channelCount && c < MaxChannelPositions; c++ {
		data.channelData[c] = lookaheadLimiterChannelData{}
	}
}

// The attenuation envelope one block at a time: every incoming frame's
// worst-case peak goes into peakBuffer; if bringing the gain down to
// 1/peak over the full lookahead needs a steeper slope than the current
// one, the slope steepens and holds for the lookahead. When the hold runs
// out we relax toward unity, re-scanning the window so any peak still in
// flight re-steepens us in time.
func (data *LookaheadLimiter) Process(dst, src *Buffer, flags uint32) error {
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
	channels := uint32(dst.ChannelLayout.Count)
	amountInput := dbToAmp(data.Config.GainInput)
	amountOutput := dbToAmp(data.Config.GainOutput)
	if data.Selected {
		data.MetersInput.Update(src, amountInput)
	}
	gainBuffer := PushSideBufferZero(dst.Frames, 0, 0, 1, dst.Samplerate)
	defer PopSideBuffer()
	// Do all the gain calculations and put them into gainBuffer
	index := data.index
	for i := uint32(0); i < src.Frames; i++ {
		for c := uint32(0); c < channels; c++ {
			sample := absf(src.Samples[i*uint32(src.Stride)+c])
			gainBuffer.Samples[i] = maxf(sample, gainBuffer.Samples[i])
		}
		peak := maxf(gainBuffer.Samples[i]*amountInput, 1.0)
		data.peakBuffer[index] = peak
		index = (index + 1) % lookaheadSamples
		slope := (1.0/peak - data.sum) / lookaheadSamples
		if slope < data.slope {
			data.slope = slope
			data.cooldown = lookaheadSamples
		} else if data.cooldown == 0 && data.sum < 1.0 {
			data.slope = (1.0 - data.sum) / (lookaheadSamples * 5.0)
			for index2 := 0; index2 < lookaheadSamples; index2++ {
				peak2 := data.peakBuffer[(index+index2)%lookaheadSamples]
				slope2 := (1.0/peak2 - data.sum) / float32(index2+1)
				if slope2 < data.slope {
					data.slope = slope2
					data.cooldown = index2 + 1
				}
			}
		} else if data.cooldown > 0 {
			data.cooldown--
		}
		data.sum += data.slope
		data.minAmpShort = minf(data.minAmpShort, data.sum)
		if data.sum > 1.0 {
			data.slope = 0.0
			data.sum = 1.0
		}
		gainBuffer.Samples[i] = data.sum
	}
	data.minAmp = minf(data.minAmp, data.minAmpShort)
	// Apply the gain from gainBuffer to all the channels
	for c := uint32(0); c < channels; c++ {
		channelData := &data.channelData[c]
		index = data.index
		for i := uint32(0); i < dst.Frames; i++ {
			s := i*uint32(src.Stride) + c
			channelData.valBuffer[index] = src.Samples[s]
			index = (index + 1) % lookaheadSamples
			out := clampf(channelData.valBuffer[index]*gainBuffer.Samples[i]*amountInput, -1.0, 1.0)
			dst.Samples[i*uint32(dst.Stride)+c] = out * amountOutput
		}
	}
	data.index = index
	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}
	return nil
}

func (data *LookaheadLimiter) GetSpecs(samplerate uint32) DSPSpecs {
	return DSPSpecs{LatencyFrames: lookaheadSamples}
}

// Minimum gain applied recently, for metering. Resets the short-term
// tracker on read.
func (data *LookaheadLimiter) GainReduction() (shortTerm, allTime float32) {
	shortTerm = data.minAmpShort
	allTime = data.minAmp
	data.minAmpShort = 1.0
	return
}
