package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Spatializer: places each source channel in 3D space
 *		around the listener, composing a dynamic delay (for
 *		doppler and path length) and a low pass filter (for
 *		head shadow) per source channel, summed into speaker
 *		channels weighted by direction.
 *
 *		Channel weighting happens in two stages: a raw
 *		dot-product against each speaker's unit vector biased
 *		by listener proximity, then (with 3+ speakers) a
 *		linstep remap that keeps only the 2 or 3 nearest
 *		channels audible. Headphones get a minimum floor amp so
 *		sounds behind the head never vanish entirely.
 *
 *---------------------------------------------------------------*/

import (
	"sort"
)

type SpatializeTarget struct {
	// Position in world space
	Position Vec3
	// Amplitude multiplier
	Amplitude float32
}

type SpatializeChannelConfig struct {
	Target SpatializeTarget
}

type SpatializeConfig struct {
	// The listener frame; nil uses WorldDefault.
	World *World
	// Apply the dynamic delay for doppler
	DoDoppler bool
	// Apply the head-shadow low pass
	DoFilter bool
	// Per-ear path-length delays instead of one shared delay
	UsePerChannelDelay bool
	// Per-speaker filter cutoffs instead of one shared cutoff
	UsePerChannelFilter bool
	// How many source channels are spatialized; 0 means all of them
	NumSrcChannelsActive uint8
	// How long position and amplitude followers take to reach targets
	TargetFollowTimeMs float32
	// Sizes the dynamic delay lines; 0 defaults to 500ms
	DelayMaxMs float32
	// Distance from head center to each ear in world units
	EarDistance float32
	Channels    [MaxChannelPositions]SpatializeChannelConfig
}

type spatializeChannelData struct {
	filter    Filter
	delay     DelayDynamic
	position  FollowerLinear3D
	amplitude FollowerLinear
}

type Spatialize struct {
	DSPHeader
	Config SpatializeConfig

	MetersInput  Meters
	MetersOutput Meters

	channelData [MaxChannelPositions]spatializeChannelData
}

var _ DSP = (*Spatialize)(nil)

func SpatializeInit(data *Spatialize, config SpatializeConfig) {
	data.DSPHeader = DSPHeader{Name: "Spatialize", Version: 1}
	data.Config = config
	delayMax := config.DelayMaxMs
	if delayMax == 0.0 {
		delayMax = 500.0
	}
	delayConfig := DelayDynamicConfig{
		GainWet:           0.0,
		GainDry:           0.0,
		MuteWet:           false,
		MuteDry:           true,
		DelayMaxMs:        delayMax,
		DelayFollowTimeMs: 10.0,
		Feedback:          0.0,
		Pingpong:          0.0,
	}
	filterConfig := FilterConfig{
		Kind:      FilterLowPass,
		Poles:     Filter6dB,
		Frequency: 15000.0,
		DryMix:    0.0,
		GainWet:   0.0,
	}
	for c := 0; c < MaxChannelPositions; c++ {
		FilterInit(&data.channelData[c].filter, filterConfig)
		DelayDynamicInit(&data.channelData[c].delay, delayConfig)
	}
}

func MakeSpatialize(config SpatializeConfig) *Spatialize {
	result := &Spatialize{}
	SpatializeInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultSpatialize() *Spatialize {
	return MakeSpatialize(SpatializeConfig{
		DoDoppler:            true,
		DoFilter:             true,
		UsePerChannelDelay:   true,
		UsePerChannelFilter:  true,
		NumSrcChannelsActive: 1,
		TargetFollowTimeMs:   20.0,
		DelayMaxMs:           0.0,
		EarDistance:          0.085,
	})
}

func (data *Spatialize) Reset() {
	data.MetersInput.Reset()
	data.MetersOutput.Reset()
	for c := 0; c < MaxChannelPositions; c++ {
		data.channelData[c].filter.Reset()
		data.channelData[c].delay.Reset()
	}
}

func (data *Spatialize) ResetChannels(firstChannel, channelCount uint32) {
	data.MetersInput.ResetChannels(firstChannel, channelCount)
	data.MetersOutput.ResetChannels(firstChannel, channelCount)
	for c := firstChannel; c < firstChannel+channelCount && c < MaxChannelPositions; c++ {
		data.channelData[c].filter.Reset()
		data.channelData[c].delay.ResetChannels(firstChannel, channelCount)
	}
}

// Jumps every follower to start and targets end across one block of the
// given size, for callers driving positions sample-accurately.
func (data *Spatialize) SetRamps(numChannels uint8, start, end []SpatializeChannelConfig, frames, samplerate uint32) {
	data.Config.TargetFollowTimeMs = samplesToMs(float32(frames), float32(samplerate))
	data.Config.NumSrcChannelsActive = numChannels
	for c := uint8(0); c < numChannels; c++ {
		data.channelData[c].position.Jump(start[c].Target.Position)
		data.Config.Channels[c].Target.Position = end[c].Target.Position
		data.channelData[c].amplitude.Jump(start[c].Target.Amplitude)
		data.Config.Channels[c].Target.Amplitude = end[c].Target.Amplitude
	}
}

type spatializeChannelMetadata struct {
	channel uint32
	amp     float32
	dot     float32
}

type channelPresence struct {
	hasFront, hasMidFront, hasSub, hasBack, hasSide, hasAerials bool
	subChannel                                                  uint8
}

func gatherChannelPresenceMetadata(channelLayout ChannelLayout) channelPresence {
	var p channelPresence
	for i := uint8(0); i < channelLayout.Count; i++ {
		switch channelLayout.Positions[i] {
		case PosLeftFront, PosCenterFront, PosRightFront:
			p.hasFront = true
		case PosLeftCenterFront, PosRightCenterFront:
			p.hasMidFront = true
		case PosSubwoofer:
			p.hasSub = true
			p.subChannel = i
		case PosLeftBack, PosCenterBack, PosRightBack:
			p.hasBack = true
		case PosLeftSide, PosRightSide:
			p.hasSide = true
		case PosCenterTop:
			p.hasAerials = true
		case PosLeftFrontTop, PosCenterFrontTop, PosRightFrontTop:
			p.hasFront = true
			p.hasAerials = true
		case PosLeftBackTop, PosCenterBackTop, PosRightBackTop:
			p.hasBack = true
			p.hasAerials = true
		}
	}
	return p
}

// Assigns a unit vector to every speaker, spreading the nominal angles
// out depending on which speaker groups are present.
func getChannelMetadata(channelLayout ChannelLayout, dstVectors []Vec3) (nonSubChannels uint8, hasAerials bool) {
	p := gatherChannelPresenceMetadata(channelLayout)
	hasAerials = p.hasAerials
	nonSubChannels = channelLayout.Count
	if p.hasSub {
		nonSubChannels = channelLayout.Count - 1
	}
	// Angles are relative to front center, to be signed later
	angleFront, angleMidFront, angleSide, angleBack := degToRad(75.0), degToRad(30.0), degToRad(90.0), degToRad(130.0)
	if p.hasFront && p.hasMidFront && p.hasSide && p.hasBack {
		// Standard 8 or 9 speaker layout
		angleFront = degToRad(60.0)
		angleMidFront = degToRad(30.0)
		angleBack = degToRad(140.0)
	} else if p.hasFront && p.hasSide && p.hasBack {
		// Standard 6 or 7 speaker layout
		angleFront = degToRad(60.0)
		angleBack = degToRad(140.0)
	} else if p.hasFront && p.hasBack {
		// Standard 4 or 5 speaker layout
		angleFront = degToRad(60.0)
		angleBack = degToRad(115.0)
	} else if p.hasFront {
		// Standard 2 or 3 speaker layout
		angleFront = degToRad(75.0)
	} else if p.hasBack {
		// Weird, will probably never actually happen, but we can work with it
		angleBack = degToRad(110.0)
	} else {
		// We're confused, just do anything
		angleFront = degToRad(45.0)
		angleMidFront = degToRad(22.5)
		angleSide = degToRad(90.0)
		angleBack = degToRad(120.0)
	}
	for i := uint8(0); i < channelLayout.Count; i++ {
		switch channelLayout.Positions[i] {
		case PosLeftFront:
			dstVectors[i] = Vec3{sinf(-angleFront), 0.0, cosf(-angleFront)}
		case PosCenterFront:
			dstVectors[i] = Vec3{0.0, 0.0, 1.0}
		case PosRightFront:
			dstVectors[i] = Vec3{sinf(angleFront), 0.0, cosf(angleFront)}
		case PosLeftCenterFront:
			dstVectors[i] = Vec3{sinf(-angleMidFront), 0.0, cosf(-angleMidFront)}
		case PosRightCenterFront:
			dstVectors[i] = Vec3{sinf(angleMidFront), 0.0, cosf(angleMidFront)}
		case PosLeftBack:
			dstVectors[i] = Vec3{sinf(-angleBack), 0.0, cosf(-angleBack)}
		case PosCenterBack:
			dstVectors[i] = Vec3{0.0, 0.0, -1.0}
		case PosRightBack:
			dstVectors[i] = Vec3{sinf(angleBack), 0.0, cosf(angleBack)}
		case PosLeftSide:
			dstVectors[i] = Vec3{sinf(-angleSide), 0.0, cosf(-angleSide)}
		case PosRightSide:
			dstVectors[i] = Vec3{sinf(angleSide), 0.0, cosf(angleSide)}
		case PosCenterTop:
			dstVectors[i] = Vec3{0.0, 1.0, 0.0}
		case PosLeftFrontTop:
			dstVectors[i] = Vec3{sinf(-angleFront), 1.0, cosf(-angleFront)}.Normalized()
		case PosCenterFrontTop:
			dstVectors[i] = Vec3{0.0, 1.0, 1.0}.Normalized()
		case PosRightFrontTop:
			dstVectors[i] = Vec3{sinf(angleFront), 1.0, cosf(angleFront)}.Normalized()
		case PosLeftBackTop:
			dstVectors[i] = Vec3{sinf(-angleBack), 1.0, cosf(-angleBack)}.Normalized()
		case PosCenterBackTop:
			dstVectors[i] = Vec3{0.0, 1.0, -1.0}.Normalized()
		case PosRightBackTop:
			dstVectors[i] = Vec3{sinf(angleBack), 1.0, cosf(angleBack)}.Normalized()
		default: // This includes PosSubwoofer
		}
	}
	return
}

// Closer sources arrive brighter; off-axis ears get more shadow.
func spatializeGetFilterCutoff(delayMs, dot float32) float32 {
	return 192000.0 / maxf(delayMs, 1.0) * (dot*0.35 + 0.65)
}

func (data *Spatialize) Process(dst, src *Buffer, flags uint32) error {
	if flags&ProcessCut != 0 {
		data.Reset()
	}

	if err := checkBuffersForDSPProcess(dst, src, true, false); err != nil {
		return err
	}

	firstNew, newCount := data.trackChannelCounts(dst, src)
	if newCount > 0 {
		data.ResetChannels(firstNew, newCount)
	}

	if data.Selected {
		data.MetersInput.Update(src, 1.0)
	}

	srcChannels := src.ChannelLayout.Count
	if data.Config.NumSrcChannelsActive != 0 && data.Config.NumSrcChannelsActive < srcChannels {
		srcChannels = data.Config.NumSrcChannelsActive
	}

	world := data.Config.World
	if world == nil {
		world = &WorldDefault
	}
	if world.SpeedOfSound <= 0.0 {
		logError("Spatialize error: world.SpeedOfSound (%f) is out of bounds! This must be a positive nonzero value!", world.SpeedOfSound)
		return ErrInvalidConfiguration
	}

	// Channel layout metadata
	var earNormal [MaxChannelPositions]Vec3
	nonSubChannels, hasAerials := getChannelMetadata(dst.ChannelLayout, earNormal[:])
	// Used to divide some volumes across channels
	channelCountDenominator := float32(nonSubChannels)
	if channelCountDenominator < 1.0 {
		channelCountDenominator = 1.0
	}

	// Since src and dst can be the same buffer, copy src out, zero dst,
	// and then go from there.
	srcBuffer := PushSideBuffer(src.Frames, 0, 0, uint32(srcChannels), src.Samplerate)
	{
		srcView := src.View()
		srcView.ChannelLayout.Count = srcChannels
		BufferCopy(&srcBuffer, &srcView)
	}
	dst.Zero()
	sideBuffer := PushSideBufferCopyZero(dst)
	defer PopSideBuffers(2)

	// We'll add this to per-channel delays to avoid negative delays.
	// TODO: We may consider adding this to the reported plugin delay to factor in to delay compensation.
	minDelayMs := data.Config.EarDistance / world.SpeedOfSound * 1000.0
	bufferLenMs := samplesToMs(float32(dst.Frames), float32(dst.Samplerate))
	followerDeltaT := bufferLenMs / data.Config.TargetFollowTimeMs

	minAmp := float32(0.0)
	if dst.ChannelLayout.FormFactor == FormFactorHeadphones {
		minAmp = 0.5
	}

	childFlags := flags &^ ProcessCut
	for srcC := uint8(0); srcC < srcChannels; srcC++ {
		sideBuffer.Zero()
		channelData := &data.channelData[srcC]
		channelData.amplitude.SetTarget(data.Config.Channels[srcC].Target.Amplitude)
		channelData.position.SetTarget(data.Config.Channels[srcC].Target.Position)
		// Transform srcPos to headspace
		srcPosStart := world.TransformPoint(channelData.position.Update(followerDeltaT))
		srcAmpStart := channelData.amplitude.Update(followerDeltaT)
		srcPosEnd := world.TransformPoint(channelData.position.GetValue())
		srcAmpEnd := channelData.amplitude.GetValue()
		delayStartMs := srcPosStart.Norm() / world.SpeedOfSound * 1000.0
		delayEndMs := srcPosEnd.Norm() / world.SpeedOfSound * 1000.0

		srcChannelBuffer := srcBuffer.OneChannel(srcC)

		avgDelayStartMs := minDelayMs
		avgDelayEndMs := minDelayMs
		if data.Config.DoDoppler {
			avgDelayStartMs += delayStartMs
			avgDelayEndMs += delayEndMs
		}

		if dst.ChannelLayout.Count == 1 {
			// Nothing to do but put it in there I guess
			BufferMixFadeLinear(&sideBuffer, 1.0, 1.0, &srcChannelBuffer, srcAmpStart, srcAmpEnd)

			if data.Config.DoFilter {
				// TODO: Probably let the filter cutoff change smoothly
				channelData.filter.Config.Frequency = spatializeGetFilterCutoff(delayStartMs, 1.0)
				if err := channelData.filter.Process(&sideBuffer, &sideBuffer, childFlags); err != nil {
					return err
				}
			}
			if data.Config.DoDoppler {
				channelData.delay.Config.DelayFollowTimeMs = bufferLenMs
				channelData.delay.channelData[0].delayMs.Jump(avgDelayStartMs)
				channelData.delay.Config.Channels[0].DelayMs = avgDelayEndMs
				if err := channelData.delay.Process(&sideBuffer, &sideBuffer, childFlags); err != nil {
					return err
				}
			}

			BufferMix(dst, 1.0, &sideBuffer, 1.0)
			continue
		}
		// How much of the signal to add to all channels in case srcPos
		// is crossing close to the head
		allChannelAddAmpStart := float32(0.0)
		allChannelAddAmpEnd := float32(0.0)
		var srcNormalStart, srcNormalEnd Vec3
		normStart := srcPosStart.Norm()
		if normStart < 0.5 {
			allChannelAddAmpStart = (0.5 - normStart) * 2.0
			srcNormalStart = srcPosStart
		} else {
			srcNormalStart = srcPosStart.DivScalar(normStart)
		}
		normEnd := srcPosEnd.Norm()
		if normEnd < 0.5 {
			allChannelAddAmpEnd = (0.5 - normEnd) * 2.0
			srcNormalEnd = srcPosEnd
		} else {
			srcNormalEnd = srcPosEnd.DivScalar(normEnd)
		}

		// Gather some channel info
		dstChannels := uint32(sideBuffer.ChannelLayout.Count)
		var channelsStart, channelsEnd [MaxChannelPositions]spatializeChannelMetadata
		totalMagnitudeStart := float32(0.0)
		totalMagnitudeEnd := float32(0.0)
		earDistance := data.Config.EarDistance
		if earDistance <= 0.0 {
			earDistance = 0.085
		}
		for i := uint32(0); i < dstChannels; i++ {
			channelsStart[i].channel = i
			channelsEnd[i].channel = i
			channelsStart[i].dot = earNormal[i].Dot(srcNormalStart)
			channelsEnd[i].dot = earNormal[i].Dot(srcNormalEnd)
			channelsStart[i].amp = 0.5*normStart + 0.5*channelsStart[i].dot + allChannelAddAmpStart/channelCountDenominator
			channelsEnd[i].amp = 0.5*normEnd + 0.5*channelsEnd[i].dot + allChannelAddAmpEnd/channelCountDenominator
			totalMagnitudeStart += channelsStart[i].amp
			totalMagnitudeEnd += channelsEnd[i].amp
		}

		// Use the minimum number of channels needed for surround sound
		// by remapping channel amps
		if dstChannels > 2 {
			minChannels := 2
			if dstChannels > 3 && hasAerials {
				// TODO: This probably isn't a reliable way to use aerials. Probably do something smarter.
				minChannels = 3
			}
			// Get channel amps in descending order
			sortChannelsByAmp(channelsStart[:dstChannels])
			sortChannelsByAmp(channelsEnd[:dstChannels])

			ampMaxRangeStart := channelsStart[0].amp
			ampMaxRangeEnd := channelsEnd[0].amp
			ampMinRangeStart := channelsStart[minChannels-1].amp
			ampMinRangeEnd := channelsEnd[minChannels-1].amp
			totalMagnitudeStart = 0.0
			totalMagnitudeEnd = 0.0
			for i := uint32(0); i < dstChannels; i++ {
				channelsStart[i].amp = linstepf(channelsStart[i].amp, ampMinRangeStart, ampMaxRangeStart) + allChannelAddAmpStart/channelCountDenominator
				channelsEnd[i].amp = linstepf(channelsEnd[i].amp, ampMinRangeEnd, ampMaxRangeEnd) + allChannelAddAmpEnd/channelCountDenominator
				totalMagnitudeStart += channelsStart[i].amp
				totalMagnitudeEnd += channelsEnd[i].amp
			}

			// Put the amps back into channel order
			sortChannelsByChannel(channelsStart[:dstChannels])
			sortChannelsByChannel(channelsEnd[:dstChannels])
		}

		// Calculate final channel amps by factoring in minAmp, and put
		// each channel into sideBuffer for further processing
		for c := uint32(0); c < dstChannels; c++ {
			ampStart := srcAmpStart
			ampEnd := srcAmpEnd
			if sideBuffer.ChannelLayout.Positions[c] != PosSubwoofer {
				ampStart *= (channelsStart[c].amp/totalMagnitudeStart)*(1.0-minAmp) + minAmp/channelCountDenominator
				ampEnd *= (channelsEnd[c].amp/totalMagnitudeEnd)*(1.0-minAmp) + minAmp/channelCountDenominator
			}
			dstChannelBuffer := sideBuffer.OneChannel(uint8(c))
			BufferMixFadeLinear(&dstChannelBuffer, 1.0, 1.0, &srcChannelBuffer, ampStart, ampEnd)
		}

		if data.Config.DoFilter {
			// TODO: Probably let the filter cutoff change smoothly
			if data.Config.UsePerChannelFilter {
				for c := uint32(0); c < dstChannels; c++ {
					channelData.filter.Config.ChannelFrequencyOverride[c] = spatializeGetFilterCutoff(delayStartMs, channelsStart[c].dot)
				}
			} else {
				channelData.filter.Config.Frequency = spatializeGetFilterCutoff(avgDelayStartMs, 1.0)
			}
			if err := channelData.filter.Process(&sideBuffer, &sideBuffer, childFlags); err != nil {
				return err
			}
		}

		if data.Config.DoDoppler || data.Config.UsePerChannelDelay {
			// We need to process the delay
			var startDelayMs, endDelayMs [MaxChannelPositions]float32
			if data.Config.UsePerChannelDelay {
				for c := uint32(0); c < dstChannels; c++ {
					earPos := earNormal[c].MulScalar(earDistance)
					startDelayMs[c] = minDelayMs + srcPosStart.Sub(earPos).Norm()/world.SpeedOfSound*1000.0
					endDelayMs[c] = minDelayMs + srcPosEnd.Sub(earPos).Norm()/world.SpeedOfSound*1000.0
				}
			} else {
				for c := uint32(0); c < dstChannels; c++ {
					startDelayMs[c] = avgDelayStartMs
					endDelayMs[c] = avgDelayEndMs
				}
			}
			channelData.delay.SetRamps(uint8(dstChannels), startDelayMs[:], endDelayMs[:], sideBuffer.Frames, sideBuffer.Samplerate)
			if err := channelData.delay.Process(&sideBuffer, &sideBuffer, childFlags); err != nil {
				return err
			}
		}

		BufferMix(dst, 1.0, &sideBuffer, 1.0)
	}

	if data.Selected {
		data.MetersOutput.Update(dst, 1.0)
	}

	return nil
}

func sortChannelsByAmp(channels []spatializeChannelMetadata) {
	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].amp > channels[j].amp
	})
}

func sortChannelsByChannel(channels []spatializeChannelMetadata) {
	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].channel < channels[j].channel
	})
}

func (data *Spatialize) GetSpecs(samplerate uint32) DSPSpecs {
	if data.Config.DoDoppler || data.Config.UsePerChannelDelay {
		return data.channelData[0].delay.GetSpecs(samplerate)
	}
	return DSPSpecs{}
}

func (data *Spatialize) Free() {
	for c := 0; c < MaxChannelPositions; c++ {
		data.channelData[c].delay.Free()
	}
}
