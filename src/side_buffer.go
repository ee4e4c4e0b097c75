package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Side buffers, because sometimes you need extra buffers
 *		for processing.
 *
 *		We maintain a small stack of reusable buffers that grows
 *		lazily during the first few callbacks and then stays
 *		hot, so the audio thread never allocates per call.
 *		Pushes and pops must pair up in LIFO order.
 *
 *		The stack belongs to the audio thread. Only one backend
 *		stream runs per process, so like the original's
 *		thread-local pool there is exactly one owner during
 *		streaming; control threads must not push side buffers.
 *
 *---------------------------------------------------------------*/

const maxSideBuffers = 64

type sideBufferStack struct {
	pool     [maxSideBuffers]Buffer
	capacity [maxSideBuffers]uint32
	inUse    int
}

var sideBuffers sideBufferStack

// Returns a buffer with at least the requested capacity. Contents are
// whatever was left there last time; use PushSideBufferZero if you care.
func PushSideBuffer(frames, leadingFrames, trailingFrames, channels, samplerate uint32) Buffer {
	if sideBuffers.inUse >= maxSideBuffers {
		logError("PushSideBuffer: side buffer stack overflow (%d buffers in use)", sideBuffers.inUse)
		return Buffer{}
	}
	buffer := &sideBuffers.pool[sideBuffers.inUse]
	capacity := &sideBuffers.capacity[sideBuffers.inUse]
	totalFrames := frames + leadingFrames + trailingFrames
	capacityNeeded := totalFrames * channels
	layout := ChannelLayoutDefaultFromCount(uint8(channels))
	if *capacity < capacityNeeded {
		buffer.Deinit(false)
		if err := buffer.Init(frames, leadingFrames, trailingFrames, layout); err != nil {
			logError("PushSideBuffer: %v", err)
			return Buffer{}
		}
		*capacity = capacityNeeded
	} else {
		region := buffer.region[:capacityNeeded]
		buffer.Samples = region[leadingFrames*channels:]
		buffer.Frames = frames
		buffer.LeadingFrames = leadingFrames
		buffer.TrailingFrames = trailingFrames
		buffer.Stride = uint16(channels)
		buffer.ChannelLayout = layout
	}
	buffer.Samplerate = samplerate
	sideBuffers.inUse++
	result := *buffer
	result.owned = false
	return result
}

func PushSideBufferZero(frames, leadingFrames, trailingFrames, channels, samplerate uint32) Buffer {
	buffer := PushSideBuffer(frames, leadingFrames, trailingFrames, channels, samplerate)
	buffer.Zero()
	return buffer
}

func PushSideBufferCopy(src *Buffer) Buffer {
	result := PushSideBuffer(src.Frames, src.LeadingFrames, src.TrailingFrames, uint32(src.ChannelLayout.Count), src.Samplerate)
	result.ChannelLayout = src.ChannelLayout
	BufferCopy(&result, src)
	return result
}

// Same shape as src, but zeroed instead of copied.
func PushSideBufferCopyZero(src *Buffer) Buffer {
	result := PushSideBufferZero(src.Frames, src.LeadingFrames, src.TrailingFrames, uint32(src.ChannelLayout.Count), src.Samplerate)
	result.ChannelLayout = src.ChannelLayout
	return result
}

func PopSideBuffer() {
	if sideBuffers.inUse < 1 {
		logError("PopSideBuffer: stack underflow")
		return
	}
	sideBuffers.inUse--
}

func PopSideBuffers(count int) {
	if sideBuffers.inUse < count {
		logError("PopSideBuffers: stack underflow (%d in use, popping %d)", sideBuffers.inUse, count)
		sideBuffers.inUse = 0
		return
	}
	sideBuffers.inUse -= count
}
