package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Multi-pole one-pole-cascade filter (low pass, high
 *		pass, band pass).
 *
 *		Each pole is the recursion y += decay*(y - x) with
 *		decay = exp(-tau*frequency/samplerate). High pass
 *		subtracts the low-pass output from the input
 *		cumulatively across poles. Band pass runs a low pass
 *		then a high pass per pole with a 2x gain correction for
 *		the innate -3dB at the cutoff (done twice is -6dB,
 *		which is ~1/2 amp).
 *
 *---------------------------------------------------------------*/

type FilterKind uint8

const (
	FilterHighPass FilterKind = iota
	FilterLowPass
	FilterBandPass
)

var filterKindStrings = [...]string{
	"High Pass",
	"Low Pass",
	"Band Pass",
}

func (kind FilterKind) String() string {
	if int(kind) < len(filterKindStrings) {
		return filterKindStrings[kind]
	}
	return "Invalid FilterKind"
}

// Pole counts are specified by rolloff for readability.
const (
	Filter6dB uint8 = iota
	Filter12dB
	Filter18dB
	Filter24dB
	Filter30dB
	Filter36dB
	Filter42dB
	Filter48dB
)

const filterMaxPoles = 8

type FilterConfig struct {
	Kind FilterKind
	// Effective pole count is Poles+1, one of the Filter*dB constants.
	Poles uint8
	// Cutoff frequency in Hz
	Frequency float32
	// Blends in the unfiltered signal, from 0 to 1
	DryMix float32
	// Gain in dB applied to the filtered signal
	GainWet float32
	// Per-channel cutoff replacing Frequency where nonzero
	ChannelFrequencyOverride [MaxChannelPositions]float32
}

type filterChannelData struct {
	// 2 accumulators per pole for band pass's serial LP+HP cascade.
	outputs [2 * filterMaxPoles]float32
}

type Filter struct {
	DSPHeader
	Config FilterConfig

	MetersInput  Meters
	MetersOutput Meters

	channelData [MaxChannelPositions]filterChannelData
}

var _ DSP = (*Filter)(nil)

func FilterInit(data *Filter, config FilterConfig) {
	data.DSPHeader = DSPHeader{Name: "Filter", Version: 1}
	data.Config = config
	data.Reset()
}

func MakeFilter(config FilterConfig) *Filter {
	result := &Filter{}
	FilterInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultFilter() *Filter {
	return MakeFilter(FilterConfig{
		Kind:      FilterLowPass,
		Poles:     Filter12dB,
		Frequency: 500.0,
		DryMix:    0.0,
		GainWet:   0.0,
	})
}

func (data *Filter) Reset() {
	data.MetersInput.Reset()
	data.MetersOutput.Reset()
	for c := range data.channelData {
		data.channelData[c] = filterChannelData{}
	}
}

func (data *Filter) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersInput.ResetChannels(firstChannel, channelCount)
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
	for c := firstChannel; c < firstChannel+channelCount && c < MaxChannelPositions; c++ {
		data.channelData[c] = filterChannelData{}
	}
}

func (data *Filter) Process(dst, src *Buffer, flags uint32) error {
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

	amountWet := clampf(1.0-data.Config.DryMix, 0.0, 1.0) * dbToAmp(data.Config.GainWet)
	amountDry := clampf(data.Config.DryMix, 0.0, 1.0)

	if data.Selected {
		data.MetersInput.Update(src, 1.0)
	}

	poles := uint32(data.Config.Poles) + 1
	if poles > filterMaxPoles {
		poles = filterMaxPoles
	}
	dstStride := uint32(dst.Stride)
	srcStride := uint32(src.Stride)
	for c := uint32(0); c < uint32(dst.ChannelLayout.Count); c++ {
		channelData := &data.channelData[c]
		frequency := data.Config.ChannelFrequencyOverride[c]
		if frequency == 0.0 {
			frequency = data.Config.Frequency
		}
		decay := clampf(expf(-tau*(frequency/float32(dst.Samplerate))), 0.0, 1.0)

		switch data.Config.Kind {
		case FilterHighPass:
			for i := uint32(0); i < dst.Frames; i++ {
				// TODO: High pass seems to lose a lot of volume with lots of poles. Investigate if this is expected and how to handle it.
				sample := src.Samples[i*srcStride+c]
				channelData.outputs[0] = sample + decay*(channelData.outputs[0]-sample)
				in := sample
				sample -= channelData.outputs[0]
				for pole := uint32(1); pole < poles; pole++ {
					channelData.outputs[pole] = sample + decay*(channelData.outputs[pole]-sample)
					sample -= channelData.outputs[pole]
				}
				dst.Samples[i*dstStride+c] = sample*amountWet + in*amountDry
			}
		case FilterLowPass:
			for i := uint32(0); i < dst.Frames; i++ {
				sample := src.Samples[i*srcStride+c]
				channelData.outputs[0] = sample + decay*(channelData.outputs[0]-sample)
				for pole := uint32(1); pole < poles; pole++ {
					channelData.outputs[pole] = channelData.outputs[pole-1] + decay*(channelData.outputs[pole]-channelData.outputs[pole-1])
				}
				dst.Samples[i*dstStride+c] = channelData.outputs[poles-1]*amountWet + sample*amountDry
			}
		case FilterBandPass:
			for i := uint32(0); i < dst.Frames; i++ {
				in := src.Samples[i*srcStride+c]
				sample := in
				for pole := uint32(0); pole < poles; pole++ {
					// Low pass
					channelData.outputs[2*pole+0] = sample + decay*(channelData.outputs[2*pole+0]-sample)
					sample = channelData.outputs[2*pole+0]
					// High pass
					channelData.outputs[2*pole+1] = sample + decay*(channelData.outputs[2*pole+1]-sample)
					sample -= channelData.outputs[2*pole+1]
					sample *= 2.0
				}
				dst.Samples[i*dstStride+c] = sample*amountWet + in*amountDry
			}
		}
	}

	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}

	return nil
}
