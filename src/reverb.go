package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Schroeder-style reverb: a parallel bank of 30 feedback
 *		delays with prime-ish tap lengths, each in series with
 *		a low pass filter.
 *
 *		The first two thirds of the taps share a feedback
 *		derived from roomsize and get the base color cutoff;
 *		the late taps ramp their feedback up and open the
 *		filter 4x to build the diffuse tail, feeding on the
 *		combined output of the early taps.
 *
 *---------------------------------------------------------------*/

const reverbDelayCount = 30

type ReverbConfig struct {
	// Gain in dB of the wet signal
	GainWet float32
	// Gain in dB of the input signal
	GainDry float32
	MuteWet bool
	MuteDry bool
	// Scales the feedback of the early taps, memorably from 1 to 100
	Roomsize float32
	// Scales the low pass cutoffs, memorably from 1 to 5
	Color float32
	// Delay in ms applied to the wet signal before it hits the tap bank
	DelayMs float32
}

// Tap lengths in samples at 48kHz, scaled to the active samplerate by
// the ms conversion roundtrip.
var reverbTapSamples = [reverbDelayCount]float32{
	2111, 2129, 2017, 2029, 1753, 1733, 1699, 1621, 1447, 1429,
	1361, 1319, 1201, 1171, 1129, 1117, 1063, 1051, 1039, 1009,
	977, 919, 857, 773, 743, 719, 643, 641, 631, 619,
}

type Reverb struct {
	DSPHeader
	Config ReverbConfig

	MetersInput  Meters
	MetersOutput Meters

	inputDelay Delay
	delays     [reverbDelayCount]Delay
	filters    [reverbDelayCount]Filter
}

var _ DSP = (*Reverb)(nil)

func ReverbInit(data *Reverb, config ReverbConfig) {
	data.DSPHeader = DSPHeader{Name: "Reverb", Version: 1}
	data.Config = config

	DelayInit(&data.inputDelay, DelayConfig{
		GainWet:  0.0,
		MuteDry:  true,
		DelayMs:  config.DelayMs,
		Feedback: 0.0,
		Pingpong: 0.0,
	})

	for tap := 0; tap < reverbDelayCount; tap++ {
		DelayInit(&data.delays[tap], DelayConfig{
			GainWet:  0.0,
			MuteDry:  true,
			DelayMs:  samplesToMs(reverbTapSamples[tap], 48000),
			Feedback: 0.0,
			Pingpong: 0.05,
		})
		FilterInit(&data.filters[tap], FilterConfig{
			Kind:      FilterLowPass,
			Poles:     Filter6dB,
			Frequency: 1000.0,
			DryMix:    0.0,
			GainWet:   0.0,
		})
	}
}

func MakeReverb(config ReverbConfig) *Reverb {
	result := &Reverb{}
	ReverbInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultReverb() *Reverb {
	return MakeReverb(ReverbConfig{
		GainWet:  -9.0,
		GainDry:  0.0,
		MuteWet:  false,
		MuteDry:  false,
		Roomsize: 5.0,
		Color:    1.0,
		DelayMs:  50.0,
	})
}

func (data *Reverb) Reset() {
	data.MetersInput.Reset()
	data.MetersOutput.Reset()
	data.inputDelay.Reset()
	for tap := 0; tap < reverbDelayCount; tap++ {
		data.delays[tap].Reset()
		data.filters[tap].Reset()
	}
}

func (data *Reverb) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersInput.ResetChannels(firstChannel, channelCount)
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
	data.inputDelay.ResetChannels(firstChannel, channelCount)
	for tap := 0; tap < reverbDelayCount; tap++ {
		data.delays[tap].ResetChannels(firstChannel, channelCount)
		data.filters[tap].ResetChannels(firstChannel, channelCount)
	}
}

func (data *Reverb) Process(dst, src *Buffer, flags uint32) error {
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

	channels := uint32(src.ChannelLayout.Count)
	inputBuffer := PushSideBuffer(src.Frames, 0, 0, channels, src.Samplerate)
	sideBufferCombined := PushSideBufferZero(src.Frames, 0, 0, channels, src.Samplerate)
	sideBufferEarly := PushSideBuffer(src.Frames, 0, 0, channels, src.Samplerate)
	sideBufferDiffuse := PushSideBuffer(src.Frames, 0, 0, channels, src.Samplerate)
	defer PopSideBuffers(4)
	childFlags := flags &^ ProcessCut
	if data.Config.DelayMs != 0.0 {
		data.inputDelay.Config.DelayMs = data.Config.DelayMs
		if err := data.inputDelay.Process(&inputBuffer, src, childFlags); err != nil {
			return err
		}
	} else {
		BufferCopy(&inputBuffer, src)
	}
	feedback := 0.985 - (0.2 / data.Config.Roomsize)
	color := data.Config.Color * 4000.0
	amount := dbToAmp(data.Config.GainWet)
	if data.Config.MuteWet {
		amount = 0.0
	}
	amountDry := dbToAmp(data.Config.GainDry)
	if data.Config.MuteDry {
		amountDry = 0.0
	}
	for tap := 0; tap < reverbDelayCount*2/3; tap++ {
		// TODO: Make feedback depend on delay time such that they all decay in amplitude at the same rate over time
		delay := &data.delays[tap]
		filter := &data.filters[tap]
		delay.Config.Feedback = feedback
		filter.Config.Frequency = color
		BufferCopy(&sideBufferEarly, &inputBuffer)
		if err := filter.Process(&sideBufferEarly, &sideBufferEarly, childFlags); err != nil {
			return err
		}
		if err := delay.Process(&sideBufferEarly, &sideBufferEarly, childFlags); err != nil {
			return err
		}
		BufferMix(&sideBufferCombined, 1.0, &sideBufferEarly, 1.0/float32(reverbDelayCount))
	}
	for tap := reverbDelayCount * 2 / 3; tap < reverbDelayCount; tap++ {
		delay := &data.delays[tap]
		filter := &data.filters[tap]
		delay.Config.Feedback = float32(tap+reverbDelayCount) / (reverbDelayCount * 2)
		filter.Config.Frequency = color * 4.0
		BufferCopy(&sideBufferDiffuse, &sideBufferCombined)
		if err := filter.Process(&sideBufferDiffuse, &sideBufferDiffuse, childFlags); err != nil {
			return err
		}
		if err := delay.Process(&sideBufferDiffuse, &sideBufferDiffuse, childFlags); err != nil {
			return err
		}
		BufferMix(&sideBufferCombined, 1.0, &sideBufferDiffuse, 1.0/float32(reverbDelayCount))
	}
	BufferMix(dst, amountDry, &sideBufferCombined, amount)

	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}

	return nil
}

func (data *Reverb) GetSpecs(samplerate uint32) DSPSpecs {
	return DSPSpecs{}
}
