package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func makeTestBuffer(t require.TestingT, frames uint32, channels uint8, samplerate uint32) Buffer {
	var buffer Buffer
	require.NoError(t, buffer.Init(frames, 0, 0, ChannelLayoutDefaultFromCount(channels)))
	buffer.Samplerate = samplerate
	return buffer
}

func fillRamp(buffer *Buffer) {
	for i := uint32(0); i < buffer.Frames; i++ {
		for c := uint32(0); c < uint32(buffer.ChannelLayout.Count); c++ {
			buffer.Samples[i*uint32(buffer.Stride)+c] = float32(i)*0.001 + float32(c)*100.0
		}
	}
}

func Test_BufferInterlaceRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var channels = rapid.Uint8Range(1, MaxChannelPositions).Draw(t, "channels")
		var frames = rapid.Uint32Range(1, 257).Draw(t, "frames")

		src := makeTestBuffer(t, frames, channels, 48000)
		defer src.Deinit(false)
		for i := range src.Samples[:frames*uint32(channels)] {
			src.Samples[i] = rapid.Float32Range(-1.0, 1.0).Draw(t, "sample")
		}

		planar := makeTestBuffer(t, frames, channels, 48000)
		defer planar.Deinit(false)
		result := makeTestBuffer(t, frames, channels, 48000)
		defer result.Deinit(false)

		BufferDeinterlace(&planar, &src)
		BufferReinterlace(&result, &planar)

		assert.Equal(t, src.Samples[:frames*uint32(channels)], result.Samples[:frames*uint32(channels)], "reinterlace(deinterlace(b)) should be bit-exact")
	})
}

func Test_BufferDeinterlaceLayout(t *testing.T) {
	src := makeTestBuffer(t, 4, 2, 48000)
	defer src.Deinit(false)
	copy(src.Samples, []float32{0, 10, 1, 11, 2, 12, 3, 13})
	planar := makeTestBuffer(t, 4, 2, 48000)
	defer planar.Deinit(false)
	BufferDeinterlace(&planar, &src)
	assert.Equal(t, []float32{0, 1, 2, 3, 10, 11, 12, 13}, planar.Samples[:8])
}

func Test_BufferMixFastPaths(t *testing.T) {
	dst := makeTestBuffer(t, 16, 2, 48000)
	defer dst.Deinit(false)
	src := makeTestBuffer(t, 16, 2, 48000)
	defer src.Deinit(false)
	fillRamp(&dst)
	fillRamp(&src)

	reference := append([]float32(nil), dst.Samples...)

	// {1, 0} leaves dst untouched
	BufferMix(&dst, 1.0, &src, 0.0)
	assert.Equal(t, reference, dst.Samples)

	// {1, 1} sums
	BufferMix(&dst, 1.0, &src, 1.0)
	for i := range reference {
		assert.Equal(t, reference[i]*2.0, dst.Samples[i])
	}

	// {0, 0} silences
	BufferMix(&dst, 0.0, &src, 0.0)
	for i := uint32(0); i < dst.Frames*2; i++ {
		assert.Zero(t, dst.Samples[i])
	}
}

func Test_BufferMixFadeLinearMatchesConstantAtFlatRamp(t *testing.T) {
	dst1 := makeTestBuffer(t, 32, 1, 48000)
	defer dst1.Deinit(false)
	dst2 := makeTestBuffer(t, 32, 1, 48000)
	defer dst2.Deinit(false)
	src := makeTestBuffer(t, 32, 1, 48000)
	defer src.Deinit(false)
	fillRamp(&src)
	fillRamp(&dst1)
	fillRamp(&dst2)

	BufferMix(&dst1, 0.5, &src, 0.25)
	BufferMixFadeLinear(&dst2, 0.5, 0.5, &src, 0.25, 0.25)
	assert.Equal(t, dst1.Samples, dst2.Samples)
}

func Test_BufferSlice(t *testing.T) {
	buffer := makeTestBuffer(t, 100, 2, 48000)
	defer buffer.Deinit(false)
	fillRamp(&buffer)

	slice := buffer.Slice(10, 20)
	assert.Equal(t, uint32(20), slice.Frames)
	assert.Equal(t, uint32(10), slice.LeadingFrames)
	assert.Equal(t, uint32(70), slice.TrailingFrames)
	assert.Equal(t, buffer.Samples[10*2], slice.Samples[0])

	// Writes through the view land in the parent
	slice.Samples[0] = 1234.0
	assert.Equal(t, float32(1234.0), buffer.Samples[20])
}

func Test_BufferOneChannel(t *testing.T) {
	buffer := makeTestBuffer(t, 8, 4, 48000)
	defer buffer.Deinit(false)
	fillRamp(&buffer)

	view := buffer.OneChannel(2)
	assert.Equal(t, uint8(1), view.ChannelLayout.Count)
	assert.Equal(t, buffer.Stride, view.Stride)
	for i := uint32(0); i < 8; i++ {
		assert.Equal(t, buffer.Samples[i*4+2], view.Samples[i*uint32(view.Stride)])
	}
}

func Test_BufferCopyChannelAndBroadcast(t *testing.T) {
	src := makeTestBuffer(t, 8, 2, 48000)
	defer src.Deinit(false)
	fillRamp(&src)
	dst := makeTestBuffer(t, 8, 3, 48000)
	defer dst.Deinit(false)

	BufferCopyChannel(&dst, 1, &src, 0)
	for i := uint32(0); i < 8; i++ {
		assert.Equal(t, src.Samples[i*2], dst.Samples[i*3+1])
	}

	BufferBroadcastChannel(&dst, &src, 1)
	for i := uint32(0); i < 8; i++ {
		for c := uint32(0); c < 3; c++ {
			assert.Equal(t, src.Samples[i*2+1], dst.Samples[i*3+c])
		}
	}
}

func Test_BufferResizePreservesBody(t *testing.T) {
	var buffer Buffer
	require.NoError(t, buffer.Init(8, 0, 0, ChannelLayoutMono()))
	for i := range buffer.Samples {
		buffer.Samples[i] = float32(i + 1)
	}

	// Shrinking the body shifts frames into the trailing guard
	require.NoError(t, buffer.Resize(4, 0, 4, ChannelLayoutMono()))
	assert.Equal(t, []float32{1, 2, 3, 4}, buffer.Samples[:4])
	extended := buffer.GetExtended()
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, extended.Samples[:8])

	// Growing the body pulls from the trailing guard first
	require.NoError(t, buffer.Resize(8, 0, 0, ChannelLayoutMono()))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, buffer.Samples[:8])

	buffer.Deinit(false)
}

func Test_BufferCheckErrors(t *testing.T) {
	assert.ErrorIs(t, checkBuffer(nil), ErrNullPointer)

	var empty Buffer
	assert.ErrorIs(t, checkBuffer(&empty), ErrNullPointer)

	bad := makeTestBuffer(t, 4, 2, 48000)
	defer bad.Deinit(false)
	bad.ChannelLayout.Count = 0
	assert.ErrorIs(t, checkBuffer(&bad), ErrInvalidChannelCount)
	bad.ChannelLayout.Count = MaxChannelPositions + 1
	assert.ErrorIs(t, checkBuffer(&bad), ErrInvalidChannelCount)
	bad.ChannelLayout.Count = 2
	bad.Frames = 0
	assert.ErrorIs(t, checkBuffer(&bad), ErrInvalidFrameCount)

	a := makeTestBuffer(t, 4, 2, 48000)
	defer a.Deinit(false)
	b := makeTestBuffer(t, 8, 1, 48000)
	defer b.Deinit(false)
	assert.ErrorIs(t, checkBuffersForDSPProcess(&a, &b, true, false), ErrMismatchedFrameCount)
	assert.ErrorIs(t, checkBuffersForDSPProcess(&a, &b, false, true), ErrMismatchedChannelCount)

	c := makeTestBuffer(t, 4, 2, 44100)
	defer c.Deinit(false)
	assert.ErrorIs(t, checkBuffersForDSPProcess(&a, &c, true, true), ErrMismatchedSamplerate)
}

func Test_SideBufferLIFO(t *testing.T) {
	a := PushSideBuffer(64, 0, 0, 2, 48000)
	b := PushSideBuffer(32, 0, 0, 1, 48000)
	assert.GreaterOrEqual(t, len(a.Samples), 64*2)
	assert.GreaterOrEqual(t, len(b.Samples), 32)
	PopSideBuffer()
	PopSideBuffer()

	// The pool hands back grown buffers without reallocating
	c := PushSideBuffer(64, 0, 0, 2, 48000)
	assert.Equal(t, &a.Samples[0], &c.Samples[0])
	PopSideBuffer()
}
