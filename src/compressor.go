package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Compressor with an RMS sidechain.
 *
 *		Internally owns a mono RMS with a 128-sample window
 *		using max-of-squares combine. The attenuation envelope
 *		chases the RMS level in dB with separate attack and
 *		decay factors; gain reduction above threshold is
 *		overgain*(threshold - envelope) where overgain is
 *		1 - 1/ratio for ratio > 1, or -ratio for ratio < 0
 *		(expansion).
 *
 *---------------------------------------------------------------*/

type CompressorConfig struct {
	// Activation threshold in dB
	Threshold float32
	// Positive values are compression ratios; negative values are
	// expansion amounts.
	Ratio float32
	// Attack time in ms
	Attack float32
	// Decay time in ms
	Decay float32
	// Makeup gain in dB
	Gain float32
}

type Compressor struct {
	DSPHeader
	Config CompressorConfig

	MetersInput  Meters
	MetersOutput Meters

	rms         RMS
	attenuation float32
	// Minimum gain applied, for metering.
	minGain      float32
	minGainShort float32
}

var _ DSP = (*Compressor)(nil)

func CompressorInit(data *Compressor, config CompressorConfig) {
	data.DSPHeader = DSPHeader{Name: "Compressor", Version: 1}
	data.Config = config
	RMSInit(&data.rms, RMSConfig{
		WindowSamples: 128,
		CombineOp:     OpMax,
	})
}

func MakeCompressor(config CompressorConfig) *Compressor {
	result := &Compressor{}
	CompressorInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultCompressor() *Compressor {
	return MakeCompressor(CompressorConfig{
		Threshold: -12.0,
		Ratio:     10.0,
		Attack:    50.0,
		Decay:     200.0,
	})
}

func (data *Compressor) Reset() {
	data.MetersInput.Reset()
	data.MetersOutput.Reset()
	data.rms.Reset()
	data.attenuation = 0.0
	data.minGain = 0.0
	data.minGainShort = 0.0
}

func (data *Compressor) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersInput.ResetChannels(firstChannel, channelCount)
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
}

func (data *Compressor) Process(dst, src *Buffer, flags uint32) error {
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

	if data.Selected {
		data.MetersInput.Update(src, 1.0)
	}

	rmsBuffer := PushSideBuffer(src.Frames, 0, 0, 1, src.Samplerate)
	defer PopSideBuffer()
	if err := data.rms.Process(&rmsBuffer, src, flags&^ProcessCut); err != nil {
		return err
	}
	t := float32(src.Samplerate) / 1000.0
	attackFactor := expf(-1.0 / (data.Config.Attack * t))
	decayFactor := expf(-1.0 / (data.Config.Decay * t))
	var overgainFactor float32
	if data.Config.Ratio > 1.0 {
		overgainFactor = 1.0 - 1.0/data.Config.Ratio
	} else if data.Config.Ratio < 0.0 {
		overgainFactor = -data.Config.Ratio
	} else {
		overgainFactor = 0.0
	}
	data.minGainShort = 0.0
	channels := uint32(dst.ChannelLayout.Count)
	for i := uint32(0); i < dst.Frames; i++ {
		rms := ampToDb(rmsBuffer.Samples[i])
		if rms < -120.0 {
			rms = -120.0
		}
		if rms > data.attenuation {
			data.attenuation = rms + attackFactor*(data.attenuation-rms)
		} else {
			data.attenuation = rms + decayFactor*(data.attenuation-rms)
		}
		var gain float32
		if data.attenuation > data.Config.Threshold {
			gain = overgainFactor * (data.Config.Threshold - data.attenuation)
		} else {
			gain = 0.0
		}
		data.minGainShort = minf(data.minGainShort, gain)
		amp := dbToAmp(gain + data.Config.Gain)
		for c := uint32(0); c < channels; c++ {
			dst.Samples[i*uint32(dst.Stride)+c] = src.Samples[i*uint32(src.Stride)+c] * amp
		}
	}
	data.minGain = minf(data.minGain, data.minGainShort)

	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}

	return nil
}

// Minimum gain in dB applied recently and overall, for metering.
func (data *Compressor) GainReduction() (shortTerm, allTime float32) {
	return data.minGainShort, data.minGain
}
