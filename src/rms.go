package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	RMS plugin: writes the running root-mean-square
 *		amplitude of its input.
 *
 *		State is a ring of squared samples per channel plus a
 *		running sum. The sum is clamped at zero every frame to
 *		keep float underflow from feeding NaNs to sqrt.
 *
 *		When dst has 1 channel and src has many, the combine op
 *		aggregates across src channels per sample first (mono
 *		sidechain mode).
 *
 *---------------------------------------------------------------*/

// Per-sample combine ops for mono sidechain mode.

type RMSOp func(lhs *float32, rhs float32)

func OpAdd(lhs *float32, rhs float32) {
	*lhs += rhs
}

func OpMax(lhs *float32, rhs float32) {
	if rhs > *lhs {
		*lhs = rhs
	}
}

type RMSConfig struct {
	WindowSamples uint32
	// Combines the squared samples of all channels when outputting mono.
	// nil defaults to OpMax.
	CombineOp RMSOp
}

type rmsChannelData struct {
	squaredSum float32
}

type RMS struct {
	DSPHeader
	Config RMSConfig

	channelData [MaxChannelPositions]rmsChannelData
	buffer      []float32
	index       uint32
}

var _ DSP = (*RMS)(nil)

func RMSInit(data *RMS, config RMSConfig) {
	data.DSPHeader = DSPHeader{Name: "RMS", Version: 1}
	data.Config = config
	data.index = 0
	data.buffer = nil
}

func MakeRMS(config RMSConfig) *RMS {
	result := &RMS{}
	RMSInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultRMS() *RMS {
	return MakeRMS(RMSConfig{
		WindowSamples: 512,
		CombineOp:     nil,
	})
}

func (data *RMS) Reset() {
	data.index = 0
	clear(data.buffer)
	data.channelData = [MaxChannelPositions]rmsChannelData{}
}

func (data *RMS) ResetChannels(firstChannel, channelCount uint32) {
	for c := firstChannel; c < firstChannel+channelCount && c < MaxChannelPositions; c++ {
		data.channelData[c] = rmsChannelData{}
	}
	if data.buffer != nil {
		start := int(data.Config.WindowSamples * firstChannel)
		end := start + int(data.Config.WindowSamples*channelCount)
		if end > len(data.buffer) {
			end = len(data.buffer)
		}
		if start < end {
			clear(data.buffer[start:end])
		}
	}
}

func (data *RMS) handleBuffer(channels uint32) {
	needed := int(data.Config.WindowSamples * channels)
	if len(data.buffer) < needed {
		data.buffer = make([]float32, needed)
		data.Reset()
	}
}

func (data *RMS) Process(dst, src *Buffer, flags uint32) error {
	if flags&ProcessCut != 0 {
		data.Reset()
	}

	if err := checkBuffersForDSPProcess(dst, src, true, false); err != nil {
		return err
	}

	if dst.ChannelLayout.Count != 1 && dst.ChannelLayout.Count != src.ChannelLayout.Count {
		logError("RMS: expected dst to have either 1 channel or the same number as src, but dst had %d channels and src had %d channels.", dst.ChannelLayout.Count, src.ChannelLayout.Count)
		return ErrMismatchedChannelCount
	}

	data.handleBuffer(uint32(dst.ChannelLayout.Count))

	firstNew, newCount := data.trackChannelCounts(dst, src)
	if newCount > 0 {
		data.ResetChannels(firstNew, newCount)
	}

	window := data.Config.WindowSamples
	if dst.ChannelLayout.Count == 1 && src.ChannelLayout.Count != 1 {
		// Combine channels
		channelData := &data.channelData[0]
		channelBuffer := data.buffer
		op := data.Config.CombineOp
		if op == nil {
			op = OpMax
		}
		for i := uint32(0); i < src.Frames; i++ {
			channelData.squaredSum -= channelBuffer[data.index]
			channelBuffer[data.index] = 0.0
			for c := uint32(0); c < uint32(src.ChannelLayout.Count); c++ {
				op(&channelBuffer[data.index], sqrf(src.Samples[i*uint32(src.Stride)+c]))
			}
			channelData.squaredSum += channelBuffer[data.index]
			// Deal with potential rounding errors making sqrt emit NaNs
			if channelData.squaredSum < 0.0 {
				channelData.squaredSum = 0.0
			}
			dst.Samples[i*uint32(dst.Stride)] = sqrtf(channelData.squaredSum / float32(window*uint32(src.ChannelLayout.Count)))
			data.index++
			if data.index >= window {
				data.index = 0
			}
		}
		return nil
	}
	// Individual channels
	for c := uint32(0); c < uint32(dst.ChannelLayout.Count); c++ {
		channelData := &data.channelData[c]
		channelBuffer := data.buffer[window*c:]
		index := data.index
		for i := uint32(0); i < src.Frames; i++ {
			channelData.squaredSum -= channelBuffer[index]
			channelBuffer[index] = sqrf(src.Samples[i*uint32(src.Stride)+c])
			channelData.squaredSum += channelBuffer[index]
			// Deal with potential rounding errors making sqrt emit NaNs
			if channelData.squaredSum < 0.0 {
				channelData.squaredSum = 0.0
			}
			dst.Samples[i*uint32(dst.Stride)+c] = sqrtf(channelData.squaredSum / float32(window))
			index++
			if index >= window {
				index = 0
			}
		}
		if c+1 == uint32(dst.ChannelLayout.Count) {
			data.index = index
		}
	}
	return nil
}
