package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Per-channel RMS and peak metering, for display by
 *		whoever is observing (typically a mixer GUI).
 *
 *---------------------------------------------------------------*/

type Meters struct {
	// Exponentially smoothed mean of squared samples per channel.
	RMSSquaredAvg [MaxChannelPositions]float32
	// All-time peaks, until someone resets them.
	Peaks [MaxChannelPositions]float32
	// Peaks within the last update only.
	PeaksShortTerm [MaxChannelPositions]float32
	ActiveMeters   uint8
	rmsFrames      uint32
}

func (data *Meters) Reset() {
	*data = Meters{}
}

func (data *Meters) ResetChannels(firstChannel, channelCount uint32) {
	for c := firstChannel; c < firstChannel+channelCount && c < MaxChannelPositions; c++ {
		data.RMSSquaredAvg[c] = 0.0
		data.Peaks[c] = 0.0
		data.PeaksShortTerm[c] = 0.0
	}
}

func (data *Meters) Update(buffer *Buffer, inputAmp float32) {
	channels := buffer.ChannelLayout.Count
	if channels > MaxChannelPositions {
		channels = MaxChannelPositions
	}
	for c := data.ActiveMeters; c < channels; c++ {
		data.RMSSquaredAvg[c] = 0.0
		data.Peaks[c] = 0.0
	}
	data.ActiveMeters = channels
	for c := uint8(0); c < channels; c++ {
		data.PeaksShortTerm[c] = 0.0
		rmsSquaredAvg := float32(0.0)
		peak := float32(0.0)
		for i := uint32(0); i < buffer.Frames; i++ {
			sample := buffer.Samples[i*uint32(buffer.Stride)+uint32(c)]
			rmsSquaredAvg += sqrf(sample)
			sample = absf(sample)
			peak = maxf(peak, sample)
		}
		rmsSquaredAvg /= float32(buffer.Frames)
		rmsSquaredAvg *= sqrf(inputAmp)
		peak *= inputAmp
		data.RMSSquaredAvg[c] = lerpf(data.RMSSquaredAvg[c], rmsSquaredAvg, float32(buffer.Frames)/(float32(data.rmsFrames)+float32(buffer.Frames)))
		data.Peaks[c] = maxf(data.Peaks[c], peak)
		data.PeaksShortTerm[c] = maxf(data.PeaksShortTerm[c], peak)
	}
	data.rmsFrames += buffer.Frames
	if data.rmsFrames > 512 {
		data.rmsFrames = 512
	}
}
