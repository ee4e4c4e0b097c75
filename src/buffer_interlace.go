package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Deinterlace and reinterlace buffers.
 *
 *		Buffers are defined to be interlaced (channels come one
 *		after the other in memory for a single frame), but some
 *		operations are much faster on deinterlaced data, so
 *		these shuffle a buffer into a secondary buffer with all
 *		the samples of a single channel adjacent to each other.
 *
 *		A Deinterlace will pretty much always be paired with a
 *		Reinterlace; if you hold on to the side buffer and use
 *		it for processing, you effectively eliminate two full
 *		buffer copies. With only 1 channel consider handling
 *		that specially, because otherwise this is just a copy.
 *
 *		Channel counts 2 through 4 get unrolled block-transpose
 *		specializations; everything else takes the generic
 *		transpose.
 *
 *---------------------------------------------------------------*/

// Deinterlaces src into dst: dst holds channel-planar data where channel
// c occupies frames [c*frames; (c+1)*frames).
// Requires matching frame counts, channel counts, and tightly-packed
// strides on both buffers.
func BufferDeinterlace(dst, src *Buffer) {
	if !interlaceArgsOK("BufferDeinterlace", dst, src) {
		return
	}
	frames := int(src.Frames)
	channels := int(src.ChannelLayout.Count)
	switch channels {
	case 1:
		copy(dst.Samples[:frames], src.Samples[:frames])
	case 2:
		deinterlace2(dst.Samples, src.Samples, frames)
	case 3:
		deinterlace3(dst.Samples, src.Samples, frames)
	case 4:
		deinterlace4(dst.Samples, src.Samples, frames)
	default:
		for c := 0; c < channels; c++ {
			dstChannel := dst.Samples[c*frames:]
			for i := 0; i < frames; i++ {
				dstChannel[i] = src.Samples[i*channels+c]
			}
		}
	}
}

// Reinterlaces src (channel-planar) into dst (interlaced).
func BufferReinterlace(dst, src *Buffer) {
	if !interlaceArgsOK("BufferReinterlace", dst, src) {
		return
	}
	frames := int(src.Frames)
	channels := int(src.ChannelLayout.Count)
	switch channels {
	case 1:
		copy(dst.Samples[:frames], src.Samples[:frames])
	case 2:
		reinterlace2(dst.Samples, src.Samples, frames)
	case 3:
		reinterlace3(dst.Samples, src.Samples, frames)
	case 4:
		reinterlace4(dst.Samples, src.Samples, frames)
	default:
		for c := 0; c < channels; c++ {
			srcChannel := src.Samples[c*frames:]
			for i := 0; i < frames; i++ {
				dst.Samples[i*channels+c] = srcChannel[i]
			}
		}
	}
}

func interlaceArgsOK(context string, dst, src *Buffer) bool {
	if dst.Frames != src.Frames {
		logError("%s: mismatched frame counts (%d vs %d)", context, dst.Frames, src.Frames)
		return false
	}
	if dst.ChannelLayout.Count != src.ChannelLayout.Count {
		logError("%s: mismatched channel counts (%d vs %d)", context, dst.ChannelLayout.Count, src.ChannelLayout.Count)
		return false
	}
	if uint16(src.ChannelLayout.Count) != src.Stride || uint16(dst.ChannelLayout.Count) != dst.Stride {
		logError("%s: buffers must be tightly packed (stride == channel count)", context)
		return false
	}
	return true
}

// The unrolled specializations below process 4 frames per iteration,
// mirroring a 4-lane shuffle, with a scalar tail.

func deinterlace2(dst, src []float32, frames int) {
	d0 := dst[:frames]
	d1 := dst[frames : 2*frames]
	i := 0
	for ; i <= frames-4; i += 4 {
		s := src[i*2 : i*2+8]
		d0[i+0], d1[i+0] = s[0], s[1]
		d0[i+1], d1[i+1] = s[2], s[3]
		d0[i+2], d1[i+2] = s[4], s[5]
		d0[i+3], d1[i+3] = s[6], s[7]
	}
	for ; i < frames; i++ {
		d0[i] = src[i*2+0]
		d1[i] = src[i*2+1]
	}
}

func deinterlace3(dst, src []float32, frames int) {
	d0 := dst[:frames]
	d1 := dst[frames : 2*frames]
	d2 := dst[2*frames : 3*frames]
	i := 0
	for ; i <= frames-4; i += 4 {
		s := src[i*3 : i*3+12]
		d0[i+0], d1[i+0], d2[i+0] = s[0], s[1], s[2]
		d0[i+1], d1[i+1], d2[i+1] = s[3], s[4], s[5]
		d0[i+2], d1[i+2], d2[i+2] = s[6], s[7], s[8]
		d0[i+3], d1[i+3], d2[i+3] = s[9], s[10], s[11]
	}
	for ; i < frames; i++ {
		d0[i] = src[i*3+0]
		d1[i] = src[i*3+1]
		d2[i] = src[i*3+2]
	}
}

func deinterlace4(dst, src []float32, frames int) {
	d0 := dst[:frames]
	d1 := dst[frames : 2*frames]
	d2 := dst[2*frames : 3*frames]
	d3 := dst[3*frames : 4*frames]
	i := 0
	for ; i <= frames-4; i += 4 {
		s := src[i*4 : i*4+16]
		d0[i+0], d1[i+0], d2[i+0], d3[i+0] = s[0], s[1], s[2], s[3]
		d0[i+1], d1[i+1], d2[i+1], d3[i+1] = s[4], s[5], s[6], s[7]
		d0[i+2], d1[i+2], d2[i+2], d3[i+2] = s[8], s[9], s[10], s[11]
		d0[i+3], d1[i+3], d2[i+3], d3[i+3] = s[12], s[13], s[14], s[15]
	}
	for ; i < frames; i++ {
		d0[i] = src[i*4+0]
		d1[i] = src[i*4+1]
		d2[i] = src[i*4+2]
		d3[i] = src[i*4+3]
	}
}

func reinterlace2(dst, src []float32, frames int) {
	s0 := src[:frames]
	s1 := src[frames : 2*frames]
	i := 0
	for ; i <= frames-4; i += 4 {
		d := dst[i*2 : i*2+8]
		d[0], d[1] = s0[i+0], s1[i+0]
		d[2], d[3] = s0[i+1], s1[i+1]
		d[4], d[5] = s0[i+2], s1[i+2]
		d[6], d[7] = s0[i+3], s1[i+3]
	}
	for ; i < frames; i++ {
		dst[i*2+0] = s0[i]
		dst[i*2+1] = s1[i]
	}
}

func reinterlace3(dst, src []float32, frames int) {
	s0 := src[:frames]
	s1 := src[frames : 2*frames]
	s2 := src[2*frames : 3*frames]
	i := 0
	for ; i <= frames-4; i += 4 {
		d := dst[i*3 : i*3+12]
		d[0], d[1], d[2] = s0[i+0], s1[i+0], s2[i+0]
		d[3], d[4], d[5] = s0[i+1], s1[i+1], s2[i+1]
		d[6], d[7], d[8] = s0[i+2], s1[i+2], s2[i+2]
		d[9], d[10], d[11] = s0[i+3], s1[i+3], s2[i+3]
	}
	for ; i < frames; i++ {
		dst[i*3+0] = s0[i]
		dst[i*3+1] = s1[i]
		dst[i*3+2] = s2[i]
	}
}

func reinterlace4(dst, src []float32, frames int) {
	s0 := src[:frames]
	s1 := src[frames : 2*frames]
	s2 := src[2*frames : 3*frames]
	s3 := src[3*frames : 4*frames]
	i := 0
	for ; i <= frames-4; i += 4 {
		d := dst[i*4 : i*4+16]
		d[0], d[1], d[2], d[3] = s0[i+0], s1[i+0], s2[i+0], s3[i+0]
		d[4], d[5], d[6], d[7] = s0[i+1], s1[i+1], s2[i+1], s3[i+1]
		d[8], d[9], d[10], d[11] = s0[i+2], s1[i+2], s2[i+2], s3[i+2]
		d[12], d[13], d[14], d[15] = s0[i+3], s1[i+3], s2[i+3], s3[i+3]
	}
	for ; i < frames; i++ {
		dst[i*4+0] = s0[i]
		dst[i*4+1] = s1[i]
		dst[i*4+2] = s2[i]
		dst[i*4+3] = s3[i]
	}
}
