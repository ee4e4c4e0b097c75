package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Noise gate with an RMS sidechain and an optional
 *		activation effects chain (typically a band pass tuned
 *		to whatever should open the gate).
 *
 *		Below threshold the output amplitude falls at 10dB per
 *		dB of shortfall; above threshold it's unity.
 *
 *---------------------------------------------------------------*/

type GateConfig struct {
	// Activation threshold in dB
	Threshold float32
	// Attack time in ms
	Attack float32
	// Decay time in ms
	Decay float32
	// Effects processed on a copy of the input, used for the
	// activation signal only. May be nil.
	ActivationEffects *DSPChain
}

type Gate struct {
	DSPHeader
	Config GateConfig

	rms         RMS
	attenuation float32
	// Current gate gain in dB, for observers.
	Gain float32
}

var _ DSP = (*Gate)(nil)

func GateInit(data *Gate, config GateConfig) {
	data.DSPHeader = DSPHeader{Name: "Gate", Version: 1}
	data.Config = config
	RMSInit(&data.rms, RMSConfig{
		WindowSamples: 128,
		CombineOp:     OpMax,
	})
}

func MakeGate(config GateConfig) *Gate {
	result := &Gate{}
	GateInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultGate() *Gate {
	return MakeGate(GateConfig{
		Threshold: -18.0,
		Attack:    5.0,
		Decay:     100.0,
	})
}

func (data *Gate) Reset() {
	data.rms.Reset()
	data.attenuation = 0.0
	data.Gain = 0.0
}

func (data *Gate) ResetChannels(firstChannel, channelCount uint32) {
}

func (data *Gate) Free() {
	if data.Config.ActivationEffects != nil {
		data.Config.ActivationEffects.Deinit()
	}
}

func (data *Gate) Process(dst, src *Buffer, flags uint32) error {
	if flags&ProcessCut != 0 {
		data.Reset()
	}

	if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
		return err
	}

	data.trackChannelCounts(dst, src)

	rmsBuffer := PushSideBuffer(src.Frames, 0, 0, 1, src.Samplerate)
	numSideBuffers := 1
	defer func() { PopSideBuffers(numSideBuffers) }()
	activationBuffer := *src
	if data.Config.ActivationEffects != nil {
		activationBuffer = PushSideBufferCopy(src)
		numSideBuffers++
		if err := data.Config.ActivationEffects.Process(&activationBuffer, &activationBuffer, flags); err != nil {
			return err
		}
	}

	if err := data.rms.Process(&rmsBuffer, &activationBuffer, flags&^ProcessCut); err != nil {
		return err
	}
	t := float32(src.Samplerate) / 1000.0
	attackFactor := expf(-1.0 / (data.Config.Attack * t))
	decayFactor := expf(-1.0 / (data.Config.Decay * t))

	channels := uint32(dst.ChannelLayout.Count)
	for i := uint32(0); i < dst.Frames; i++ {
		rms := ampToDb(rmsBuffer.Samples[i])
		if rms < -120.0 {
			rms = -120.0
		}
		if rms > data.Config.Threshold {
			data.attenuation = rms + attackFactor*(data.attenuation-rms)
		} else {
			data.attenuation = rms + decayFactor*(data.attenuation-rms)
		}
		var gain float32
		if data.attenuation > data.Config.Threshold {
			gain = 0.0
		} else {
			gain = -10.0 * (data.Config.Threshold - data.attenuation)
		}
		data.Gain = gain
		amp := dbToAmp(gain)
		for c := uint32(0); c < channels; c++ {
			dst.Samples[i*uint32(dst.Stride)+c] = src.Samples[i*uint32(src.Stride)+c] * amp
		}
	}
	return nil
}
