package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Sample delay utility with no extra bells and whistles.
 *		Primarily for facilitating latency compensation.
 *		This is deliberately not a plugin because Delay already
 *		does everything in here and more.
 *
 *---------------------------------------------------------------*/

type SampleDelayConfig struct {
	DelayFrames uint32
}

type SampleDelay struct {
	Config SampleDelayConfig
	buffer Buffer
}

func SampleDelayInit(data *SampleDelay, config SampleDelayConfig) {
	data.Config = config
	data.buffer = Buffer{}
}

func (data *SampleDelay) Deinit() {
	data.buffer.Deinit(true)
}

func (data *SampleDelay) handleBufferResizes(layout ChannelLayout) error {
	return data.buffer.Resize(data.Config.DelayFrames, 0, 0, layout)
}

func (data *SampleDelay) Process(dst, src *Buffer, flags uint32) error {
	if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
		return err
	}

	if data.Config.DelayFrames == 0 {
		if &dst.Samples[0] != &src.Samples[0] {
			BufferCopy(dst, src)
		}
		return nil
	}

	if err := data.handleBufferResizes(dst.ChannelLayout); err != nil {
		return err
	}

	numSideBuffers := 0
	defer func() { PopSideBuffers(numSideBuffers) }()
	if &dst.Samples[0] == &src.Samples[0] {
		sideBuffer := PushSideBufferCopy(src)
		numSideBuffers++
		src = &sideBuffer
	}

	carryFrames := min(data.buffer.Frames, dst.Frames)
	preserveFrames := data.buffer.Frames - carryFrames
	bodyFrames := dst.Frames - carryFrames

	// The oldest stored frames come out first...
	srcCarry := data.buffer.SliceEx(0, carryFrames, 0, 0)
	dstCarry := dst.SliceEx(0, carryFrames, 0, 0)
	BufferCopy(&dstCarry, &srcCarry)
	if preserveFrames > 0 {
		// ...the remainder shifts down...
		copy(data.buffer.Samples[:preserveFrames*uint32(data.buffer.Stride)],
			data.buffer.Samples[carryFrames*uint32(data.buffer.Stride):(carryFrames+preserveFrames)*uint32(data.buffer.Stride)])
	}
	// ...and the newest input frames take their place.
	srcCarry = src.SliceEx(bodyFrames, carryFrames, 0, 0)
	dstCarry = data.buffer.SliceEx(preserveFrames, carryFrames, 0, 0)
	BufferCopy(&dstCarry, &srcCarry)
	if bodyFrames > 0 {
		srcBody := src.SliceEx(0, bodyFrames, 0, 0)
		dstBody := dst.SliceEx(carryFrames, bodyFrames, 0, 0)
		BufferCopy(&dstBody, &srcBody)
	}

	return nil
}
