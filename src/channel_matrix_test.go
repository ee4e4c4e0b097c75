package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ChannelMatrixRouting_5_1_ToStereo(t *testing.T) {
	srcLayout := ChannelLayout_5_1()
	dstLayout := ChannelLayoutStereo()

	var matrix ChannelMatrix
	ChannelMatrixInit(&matrix, srcLayout.Count, dstLayout.Count)
	ChannelMatrixGenerateRoutingFromLayouts(&matrix, srcLayout, dstLayout)

	// Matched positions connect directly
	assert.Equal(t, float32(1.0), matrix.Coefficient(0, 0), "front left to left")
	assert.Equal(t, float32(0.0), matrix.Coefficient(0, 1))
	assert.Equal(t, float32(1.0), matrix.Coefficient(1, 1), "front right to right")
	assert.Equal(t, float32(0.0), matrix.Coefficient(1, 0))

	// Everything else splits between the two nearest with weights summing to 1
	for srcC := uint8(2); srcC < srcLayout.Count; srcC++ {
		sum := matrix.Coefficient(srcC, 0) + matrix.Coefficient(srcC, 1)
		assert.InDelta(t, 1.0, sum, 1e-6, "channel %d weights should sum to 1", srcC)
	}

	// Center front is equidistant from both
	assert.InDelta(t, 0.5, matrix.Coefficient(2, 0), 1e-6)
	assert.InDelta(t, 0.5, matrix.Coefficient(2, 1), 1e-6)

	// Left back favors the left output
	assert.Greater(t, matrix.Coefficient(4, 0), matrix.Coefficient(4, 1))
}

func Test_ChannelMatrixRoutingToMono(t *testing.T) {
	srcLayout := ChannelLayout_7_1()
	dstLayout := ChannelLayoutMono()

	var matrix ChannelMatrix
	ChannelMatrixInit(&matrix, srcLayout.Count, dstLayout.Count)
	ChannelMatrixGenerateRoutingFromLayouts(&matrix, srcLayout, dstLayout)

	for srcC := uint8(0); srcC < srcLayout.Count; srcC++ {
		assert.Equal(t, float32(1.0), matrix.Coefficient(srcC, 0))
	}
}

func Test_BufferMixMatrixIdentityIsNoop(t *testing.T) {
	layout := ChannelLayoutStereo()
	var matrix ChannelMatrix
	ChannelMatrixInit(&matrix, 2, 2)
	matrix.Matrix[0] = 1.0
	matrix.Matrix[3] = 1.0

	src := makeTestBuffer(t, 64, 2, 48000)
	defer src.Deinit(false)
	src.ChannelLayout = layout
	fillRamp(&src)
	dst := makeTestBuffer(t, 64, 2, 48000)
	defer dst.Deinit(false)
	dst.ChannelLayout = layout

	BufferMixMatrix(&dst, 0.0, &src, 1.0, &matrix)
	assert.Equal(t, src.Samples[:64*2], dst.Samples[:64*2])
}

func Test_BufferMixMatrixSpecializationsAgree(t *testing.T) {
	srcLayout := ChannelLayout_5_1()
	dstLayout := ChannelLayoutStereo()
	var matrix ChannelMatrix
	ChannelMatrixInit(&matrix, srcLayout.Count, dstLayout.Count)
	ChannelMatrixGenerateRoutingFromLayouts(&matrix, srcLayout, dstLayout)

	src := makeTestBuffer(t, 127, 6, 48000)
	defer src.Deinit(false)
	src.ChannelLayout = srcLayout
	fillRamp(&src)

	run := func(mix func(*Buffer, float32, *Buffer, float32, *ChannelMatrix)) []float32 {
		dst := makeTestBuffer(t, 127, 2, 48000)
		defer dst.Deinit(false)
		dst.ChannelLayout = dstLayout
		fillRamp(&dst)
		mix(&dst, 0.5, &src, 0.75, &matrix)
		return append([]float32(nil), dst.Samples[:127*2]...)
	}

	scalar := run(bufferMixMatrix_scalar)
	wide4 := run(bufferMixMatrix_x4)
	wide8 := run(bufferMixMatrix_x8)
	require.Equal(t, scalar, wide4)
	require.Equal(t, scalar, wide8)
}
