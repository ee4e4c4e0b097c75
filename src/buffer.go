package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Audio buffer. You understand.
 *
 *		Buffers are views over interleaved float32 frames with
 *		optional leading and trailing guard frames on either
 *		side of the logical range, used for sampling with
 *		kernels. Samples points at the logical origin; the
 *		guard frames live in the same backing region before and
 *		after it.
 *
 *		An owned buffer allocated with Init frees nothing on
 *		the audio thread: growth happens through Resize from
 *		control code. Views made by Slice/OneChannel never own
 *		their storage.
 *
 *---------------------------------------------------------------*/

import (
	"math"
)

type Buffer struct {
	// Read/write-able data starting at the logical origin.
	Samples []float32
	// Samples per second per channel, used by DSP functions that rely on timing.
	Samplerate uint32
	// How many frames there are in the logical range.
	Frames uint32
	// Guard frames before and after the logical range.
	LeadingFrames  uint32
	TrailingFrames uint32
	// Distance between samples from one channel in number of floats.
	Stride uint16
	// ChannelLayout.Count is always required. Some functions expect the
	// layout to be fully-specified, others don't care.
	ChannelLayout ChannelLayout

	// Backing region covering leading+frames+trailing, shared with views.
	region []float32
	owned  bool
}

// returns the frame count including leading and trailing frames
func (b *Buffer) TotalFrameCount() uint32 {
	return b.Frames + b.LeadingFrames + b.TrailingFrames
}

func (b *Buffer) LenMs() float32 {
	return 1000.0 * float32(b.Frames) / float32(b.Samplerate)
}

// Validates a buffer before use in a DSP function.
func checkBuffer(b *Buffer) error {
	if b == nil {
		logError("checkBuffer: the buffer itself is nil")
		return ErrNullPointer
	}
	if b.Samples == nil {
		logError("checkBuffer: Samples is nil")
		return ErrNullPointer
	}
	if b.ChannelLayout.Count == 0 {
		logError("checkBuffer: ChannelLayout.Count is 0")
		return ErrInvalidChannelCount
	}
	if b.ChannelLayout.Count > MaxChannelPositions {
		logError("checkBuffer: ChannelLayout.Count is %d, greater than our maximum of %d", b.ChannelLayout.Count, MaxChannelPositions)
		return ErrInvalidChannelCount
	}
	totalFrames := b.TotalFrameCount()
	if totalFrames == 0 {
		logError("checkBuffer: total frame count is 0")
		return ErrInvalidFrameCount
	}
	if totalFrames > math.MaxUint32/uint32(b.ChannelLayout.Count) {
		logError("checkBuffer: total frame count %d would overflow with %d channels", totalFrames, b.ChannelLayout.Count)
		return ErrInvalidFrameCount
	}
	return nil
}

// Validates both buffers of a process call, optionally requiring matching
// frame counts and channel counts.
func checkBuffersForDSPProcess(dst, src *Buffer, sameFrameCount, sameChannelCount bool) error {
	if err := checkBuffer(dst); err != nil {
		return err
	}
	if err := checkBuffer(src); err != nil {
		return err
	}
	if sameFrameCount && dst.Frames != src.Frames {
		logError("dst and src frame counts do not match! dst has %d frames and src has %d frames.", dst.Frames, src.Frames)
		return ErrMismatchedFrameCount
	}
	if sameChannelCount && dst.ChannelLayout.Count != src.ChannelLayout.Count {
		logError("dst and src channel counts do not match! dst has %d channels and src has %d channels.", dst.ChannelLayout.Count, src.ChannelLayout.Count)
		return ErrMismatchedChannelCount
	}
	if dst.Samplerate != 0 && src.Samplerate != 0 && dst.Samplerate != src.Samplerate {
		logError("dst and src samplerates do not match! dst is %dHz and src is %dHz.", dst.Samplerate, src.Samplerate)
		return ErrMismatchedSamplerate
	}
	return nil
}

// Allocates the backing region and sets up the view. If samples are
// externally-managed you don't have to call Init or Deinit.
func (b *Buffer) Init(frames, leadingFrames, trailingFrames uint32, channelLayout ChannelLayout) error {
	totalFrames := frames + leadingFrames + trailingFrames
	if totalFrames == 0 {
		return ErrInvalidFrameCount
	}
	if channelLayout.Count == 0 || channelLayout.Count > MaxChannelPositions {
		return ErrInvalidChannelCount
	}
	if totalFrames > math.MaxUint32/uint32(channelLayout.Count) {
		return ErrInvalidFrameCount
	}
	b.region = make([]float32, totalFrames*uint32(channelLayout.Count))
	b.Samples = b.region[leadingFrames*uint32(channelLayout.Count):]
	b.Frames = frames
	b.LeadingFrames = leadingFrames
	b.TrailingFrames = trailingFrames
	b.Stride = uint16(channelLayout.Count)
	b.ChannelLayout = channelLayout
	b.owned = true
	return nil
}

// Well-behaved for zero-valued buffers, only releasing a region if we own
// one. If warnOnUnowned is true we log when asked to deinit a view.
func (b *Buffer) Deinit(warnOnUnowned bool) {
	if !b.owned {
		if warnOnUnowned && b.Samples != nil {
			logError("Warning: called Buffer.Deinit on an unowned buffer")
		}
		return
	}
	b.region = nil
	b.Samples = nil
	b.owned = false
}

// Resizes an owned buffer, reallocating if necessary, zeroing any new
// space. Samples keep their order relative to the origin, so moving the
// boundaries between leading, body and trailing regions never introduces
// discontinuities in the signal: shrinking the body shifts frames into
// the trailing guard, growing the body pulls from the trailing guard
// first.
func (b *Buffer) Resize(frames, leadingFrames, trailingFrames uint32, channelLayout ChannelLayout) error {
	if channelLayout.Count == 0 || channelLayout.Count > MaxChannelPositions {
		return ErrInvalidChannelCount
	}
	totalFrames := frames + leadingFrames + trailingFrames
	if totalFrames == 0 {
		return ErrInvalidFrameCount
	}
	if b.Samples != nil && !b.owned {
		logError("Buffer.Resize called on an unowned buffer")
		return ErrInvalidConfiguration
	}
	if b.Samples != nil &&
		b.Frames == frames &&
		b.LeadingFrames == leadingFrames &&
		b.TrailingFrames == trailingFrames &&
		b.ChannelLayout.Count == channelLayout.Count {
		b.ChannelLayout = channelLayout
		return nil
	}
	newRegion := make([]float32, totalFrames*uint32(channelLayout.Count))
	if b.Samples != nil {
		// Copy the overlap of the old and new ranges, relative to the origin.
		channels := channelLayout.Count
		if b.ChannelLayout.Count < channels {
			channels = b.ChannelLayout.Count
		}
		start := -int64(leadingFrames)
		if old := -int64(b.LeadingFrames); old > start {
			start = old
		}
		end := int64(frames + trailingFrames)
		if old := int64(b.Frames + b.TrailingFrames); old < end {
			end = old
		}
		for frame := start; frame < end; frame++ {
			oldIndex := (frame + int64(b.LeadingFrames)) * int64(b.Stride)
			newIndex := (frame + int64(leadingFrames)) * int64(channelLayout.Count)
			for c := uint8(0); c < channels; c++ {
				newRegion[newIndex+int64(c)] = b.region[oldIndex+int64(c)]
			}
		}
	}
	b.region = newRegion
	b.Samples = newRegion[leadingFrames*uint32(channelLayout.Count):]
	b.Frames = frames
	b.LeadingFrames = leadingFrames
	b.TrailingFrames = trailingFrames
	b.Stride = uint16(channelLayout.Count)
	b.ChannelLayout = channelLayout
	b.owned = true
	return nil
}

// Zeroes out an entire buffer, including leading and trailing frames.
func (b *Buffer) Zero() {
	totalFrames := b.TotalFrameCount()
	if b.Samples == nil || totalFrames == 0 || b.ChannelLayout.Count == 0 {
		return
	}
	if uint16(b.ChannelLayout.Count) == b.Stride && b.region != nil {
		clear(b.region[:totalFrames*uint32(b.ChannelLayout.Count)])
		return
	}
	start := b.regionSamples()
	for i := uint32(0); i < totalFrames*uint32(b.Stride); i += uint32(b.Stride) {
		for c := uint8(0); c < b.ChannelLayout.Count; c++ {
			start[i+uint32(c)] = 0.0
		}
	}
}

// The backing region as a slice, beginning at the leading guard.
func (b *Buffer) regionSamples() []float32 {
	if b.region != nil {
		return b.region
	}
	return b.Samples
}

// Returns an unowned Buffer whose logical range covers the whole of b
// including its leading and trailing frames.
func (b *Buffer) GetExtended() Buffer {
	result := *b
	result.Samples = b.regionSamples()
	result.region = result.Samples
	result.Frames = b.TotalFrameCount()
	result.LeadingFrames = 0
	result.TrailingFrames = 0
	result.owned = false
	return result
}

// Get an unowned view into an existing buffer.
func (b *Buffer) View() Buffer {
	result := *b
	result.owned = false
	return result
}

// Get an unowned view offset by frameStart with a length of frameCount.
// Automatically expands the guard frames to include the entirety of b.
func (b *Buffer) Slice(frameStart, frameCount uint32) Buffer {
	if frameStart > b.Frames || frameCount > b.Frames-frameStart {
		logError("Buffer.Slice: range [%d; %d) is outside of the buffer's %d frames", frameStart, frameStart+frameCount, b.Frames)
		return Buffer{}
	}
	srcEndFrame := b.Frames + b.TrailingFrames
	result := *b
	result.Samples = b.Samples[frameStart*uint32(b.Stride):]
	result.Frames = frameCount
	result.LeadingFrames = b.LeadingFrames + frameStart
	result.TrailingFrames = srcEndFrame - (frameStart + frameCount)
	result.owned = false
	return result
}

// Get an unowned view with explicit leading and trailing frame counts.
// The whole requested range must be within b's backing region.
func (b *Buffer) SliceEx(frameStart, frameCount, leadingFrames, trailingFrames uint32) Buffer {
	full := b.Slice(frameStart, frameCount)
	if full.Samples == nil {
		return full
	}
	if leadingFrames > full.LeadingFrames || trailingFrames > full.TrailingFrames {
		logError("Buffer.SliceEx: guard frames %d/%d exceed the available %d/%d", leadingFrames, trailingFrames, full.LeadingFrames, full.TrailingFrames)
		return Buffer{}
	}
	full.LeadingFrames = leadingFrames
	full.TrailingFrames = trailingFrames
	if full.region != nil {
		skip := b.LeadingFrames + frameStart - leadingFrames
		full.region = full.region[skip*uint32(b.Stride):]
	}
	return full
}

// Get an unowned stride-preserving view that points at a single channel.
func (b *Buffer) OneChannel(channel uint8) Buffer {
	result := *b
	result.Samples = b.Samples[channel:]
	if result.region != nil {
		result.region = result.region[channel:]
	}
	result.ChannelLayout = b.ChannelLayout.OneChannel(channel)
	result.owned = false
	return result
}

// Get an unowned view at one singular float, represented as a Buffer.
func BufferOneSample(sample []float32, samplerate uint32) Buffer {
	return Buffer{
		Samples:       sample[:1],
		Samplerate:    samplerate,
		Frames:        1,
		Stride:        1,
		ChannelLayout: ChannelLayoutMono(),
	}
}

// Copies the contents of one buffer into the other.
// Requires that dst and src have the same frame count and channel count.
func BufferCopy(dst, src *Buffer) {
	channels := dst.ChannelLayout.Count
	if dst.Frames != src.Frames || channels != src.ChannelLayout.Count {
		logError("BufferCopy: mismatched buffers (%dx%d vs %dx%d)", dst.Frames, dst.ChannelLayout.Count, src.Frames, src.ChannelLayout.Count)
		return
	}
	if uint16(channels) == dst.Stride && uint16(channels) == src.Stride {
		copy(dst.Samples[:src.Frames*uint32(channels)], src.Samples[:src.Frames*uint32(channels)])
		return
	}
	for i := uint32(0); i < src.Frames; i++ {
		for c := uint8(0); c < channels; c++ {
			dst.Samples[i*uint32(dst.Stride)+uint32(c)] = src.Samples[i*uint32(src.Stride)+uint32(c)]
		}
	}
}

// Copies the contents of one channel of src into one channel of dst.
func BufferCopyChannel(dst *Buffer, channelDst uint8, src *Buffer, channelSrc uint8) {
	if dst.Frames != src.Frames {
		logError("BufferCopyChannel: mismatched frame counts (%d vs %d)", dst.Frames, src.Frames)
		return
	}
	if channelDst >= dst.ChannelLayout.Count || channelSrc >= src.ChannelLayout.Count {
		logError("BufferCopyChannel: channel out of range")
		return
	}
	if dst.Stride == 1 && src.Stride == 1 {
		copy(dst.Samples[:dst.Frames], src.Samples[:dst.Frames])
	} else if dst.Stride == 1 {
		for i := uint32(0); i < dst.Frames; i++ {
			dst.Samples[i] = src.Samples[i*uint32(src.Stride)+uint32(channelSrc)]
		}
	} else if src.Stride == 1 {
		for i := uint32(0); i < dst.Frames; i++ {
			dst.Samples[i*uint32(dst.Stride)+uint32(channelDst)] = src.Samples[i]
		}
	} else {
		for i := uint32(0); i < dst.Frames; i++ {
			dst.Samples[i*uint32(dst.Stride)+uint32(channelDst)] = src.Samples[i*uint32(src.Stride)+uint32(channelSrc)]
		}
	}
}

// Copies one channel from src into all channels of dst.
func BufferBroadcastChannel(dst, src *Buffer, channelSrc uint8) {
	if dst.Frames != src.Frames {
		logError("BufferBroadcastChannel: mismatched frame counts (%d vs %d)", dst.Frames, src.Frames)
		return
	}
	if channelSrc >= src.ChannelLayout.Count {
		logError("BufferBroadcastChannel: channel out of range")
		return
	}
	if dst.Stride == 1 && src.Stride == 1 {
		copy(dst.Samples[:dst.Frames], src.Samples[:dst.Frames])
		return
	}
	if dst.Stride == 1 {
		for i := uint32(0); i < dst.Frames; i++ {
			dst.Samples[i] = src.Samples[i*uint32(src.Stride)+uint32(channelSrc)]
		}
		return
	}
	for i := uint32(0); i < dst.Frames; i++ {
		sample := src.Samples[i*uint32(src.Stride)+uint32(channelSrc)]
		for c := uint8(0); c < dst.ChannelLayout.Count; c++ {
			dst.Samples[i*uint32(dst.Stride)+uint32(c)] = sample
		}
	}
}

// Mixes src into the existing contents of dst:
// dst = dst*volumeDst + src*volumeSrc
// This will not respect channel positions; the buffers are mixed as
// though the channel layouts are the same. For arbitrary channel mixing
// use BufferMixMatrix.
func BufferMix(dst *Buffer, volumeDst float32, src *Buffer, volumeSrc float32) {
	if dst.Frames != src.Frames || dst.ChannelLayout.Count != src.ChannelLayout.Count {
		logError("BufferMix: mismatched buffers (%dx%d vs %dx%d)", dst.Frames, dst.ChannelLayout.Count, src.Frames, src.ChannelLayout.Count)
		return
	}
	channels := uint32(dst.ChannelLayout.Count)
	dstStride := uint32(dst.Stride)
	srcStride := uint32(src.Stride)
	switch {
	case volumeDst == 1.0 && volumeSrc == 0.0:
		return
	case volumeDst == 0.0 && volumeSrc == 0.0:
		for i := uint32(0); i < dst.Frames; i++ {
			for c := uint32(0); c < channels; c++ {
				dst.Samples[i*dstStride+c] = 0.0
			}
		}
	case volumeDst == 1.0 && volumeSrc == 1.0:
		for i := uint32(0); i < dst.Frames; i++ {
			for c := uint32(0); c < channels; c++ {
				dst.Samples[i*dstStride+c] += src.Samples[i*srcStride+c]
			}
		}
	case volumeDst == 1.0:
		for i := uint32(0); i < dst.Frames; i++ {
			for c := uint32(0); c < channels; c++ {
				dst.Samples[i*dstStride+c] += src.Samples[i*srcStride+c] * volumeSrc
			}
		}
	case volumeSrc == 1.0:
		for i := uint32(0); i < dst.Frames; i++ {
			for c := uint32(0); c < channels; c++ {
				dst.Samples[i*dstStride+c] = dst.Samples[i*dstStride+c]*volumeDst + src.Samples[i*srcStride+c]
			}
		}
	default:
		for i := uint32(0); i < dst.Frames; i++ {
			for c := uint32(0); c < channels; c++ {
				dst.Samples[i*dstStride+c] = dst.Samples[i*dstStride+c]*volumeDst + src.Samples[i*srcStride+c]*volumeSrc
			}
		}
	}
}

// Same as BufferMix, but the volumes fade linearly across the buffer.
func BufferMixFadeLinear(dst *Buffer, volumeDstStart, volumeDstEnd float32, src *Buffer, volumeSrcStart, volumeSrcEnd float32) {
	if volumeDstStart == volumeDstEnd && volumeSrcStart == volumeSrcEnd {
		BufferMix(dst, volumeDstStart, src, volumeSrcStart)
		return
	}
	if dst.Frames != src.Frames || dst.ChannelLayout.Count != src.ChannelLayout.Count {
		logError("BufferMixFadeLinear: mismatched buffers (%dx%d vs %dx%d)", dst.Frames, dst.ChannelLayout.Count, src.Frames, src.ChannelLayout.Count)
		return
	}
	channels := uint32(dst.ChannelLayout.Count)
	dstStride := uint32(dst.Stride)
	srcStride := uint32(src.Stride)
	volumeDstDelta := volumeDstEnd - volumeDstStart
	volumeSrcDelta := volumeSrcEnd - volumeSrcStart
	framesF := float32(dst.Frames)
	if volumeDstDelta == 0.0 && volumeDstStart == 1.0 {
		for i := uint32(0); i < dst.Frames; i++ {
			t := float32(i) / framesF
			volumeSrc := volumeSrcStart + volumeSrcDelta*t
			for c := uint32(0); c < channels; c++ {
				dst.Samples[i*dstStride+c] += src.Samples[i*srcStride+c] * volumeSrc
			}
		}
		return
	}
	for i := uint32(0); i < dst.Frames; i++ {
		t := float32(i) / framesF
		volumeDst := volumeDstStart + volumeDstDelta*t
		volumeSrc := volumeSrcStart + volumeSrcDelta*t
		for c := uint32(0); c < channels; c++ {
			dst.Samples[i*dstStride+c] = dst.Samples[i*dstStride+c]*volumeDst + src.Samples[i*srcStride+c]*volumeSrc
		}
	}
}

// Same as BufferMix, but the volumes fade across the buffer according to
// the easing functions. A nil ease means linear.
// For uncorrelated signals, cosine crossfades maintain unity power (but
// may peak up to sqrt(2)). For correlated signals, linear crossfades
// maintain unity power (and cannot peak higher than 1). A cosine
// crossfade from dst to src would use easeDst=EaseCosineOut and
// easeSrc=EaseCosineIn.
func BufferMixFadeEase(dst *Buffer, volumeDstStart, volumeDstEnd float32, easeDst EaseFunc, src *Buffer, volumeSrcStart, volumeSrcEnd float32, easeSrc EaseFunc) {
	if volumeDstStart == volumeDstEnd && volumeSrcStart == volumeSrcEnd {
		BufferMix(dst, volumeDstStart, src, volumeSrcStart)
		return
	}
	dstIsLinear := easeDst == nil || volumeDstStart == volumeDstEnd
	srcIsLinear := easeSrc == nil || volumeSrcStart == volumeSrcEnd
	if dstIsLinear && srcIsLinear {
		BufferMixFadeLinear(dst, volumeDstStart, volumeDstEnd, src, volumeSrcStart, volumeSrcEnd)
		return
	}
	if dst.Frames != src.Frames || dst.ChannelLayout.Count != src.ChannelLayout.Count {
		logError("BufferMixFadeEase: mismatched buffers (%dx%d vs %dx%d)", dst.Frames, dst.ChannelLayout.Count, src.Frames, src.ChannelLayout.Count)
		return
	}
	if easeDst == nil {
		easeDst = EaseLinear
	}
	if easeSrc == nil {
		easeSrc = EaseLinear
	}
	channels := uint32(dst.ChannelLayout.Count)
	dstStride := uint32(dst.Stride)
	srcStride := uint32(src.Stride)
	volumeDstDelta := volumeDstEnd - volumeDstStart
	volumeSrcDelta := volumeSrcEnd - volumeSrcStart
	framesF := float32(dst.Frames)
	for i := uint32(0); i < dst.Frames; i++ {
		t := float32(i) / framesF
		volumeDst := volumeDstStart + volumeDstDelta*easeDst(t)
		volumeSrc := volumeSrcStart + volumeSrcDelta*easeSrc(t)
		for c := uint32(0); c < channels; c++ {
			dst.Samples[i*dstStride+c] = dst.Samples[i*dstStride+c]*volumeDst + src.Samples[i*srcStride+c]*volumeSrc
		}
	}
}
