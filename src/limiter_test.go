package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CubicLimiterSaturates(t *testing.T) {
	limiter := MakeCubicLimiter()
	buffer := makeTestBuffer(t, 6, 1, 48000)
	defer buffer.Deinit(false)
	copy(buffer.Samples, []float32{0.0, 0.5, 1.0, 2.0, -1.0, -3.0})

	require.NoError(t, limiter.Process(&buffer, &buffer, 0))
	assert.Zero(t, buffer.Samples[0])
	assert.InDelta(t, 0.6875, buffer.Samples[1], 1e-6)
	assert.Equal(t, float32(1.0), buffer.Samples[2])
	assert.Equal(t, float32(1.0), buffer.Samples[3], "clips above 1")
	assert.Equal(t, float32(-1.0), buffer.Samples[4])
	assert.Equal(t, float32(-1.0), buffer.Samples[5])
}

func Test_LookaheadLimiterHoldsCeiling(t *testing.T) {
	limiter := MakeLookaheadLimiter(LookaheadLimiterConfig{GainInput: 0.0, GainOutput: 0.0})

	const blockFrames = 256
	buffer := makeTestBuffer(t, blockFrames, 1, 48000)
	defer buffer.Deinit(false)

	// An impulse of amplitude 2 must never make it through above 1
	buffer.Samples[0] = 2.0
	require.NoError(t, limiter.Process(&buffer, &buffer, 0))
	for i := 0; i < blockFrames; i++ {
		assert.LessOrEqual(t, absf(buffer.Samples[i]), float32(1.0), "frame %d", i)
	}

	// After the lookahead window passes with silence, the gain relaxes
	// back to exactly 1
	for block := 0; block < 16; block++ {
		buffer.Zero()
		require.NoError(t, limiter.Process(&buffer, &buffer, 0))
	}
	assert.InDelta(t, 1.0, limiter.sum, 1e-6)
}

func Test_LookaheadLimiterDelaysByLookahead(t *testing.T) {
	limiter := MakeLookaheadLimiter(LookaheadLimiterConfig{})
	specs := limiter.GetSpecs(48000)
	assert.Equal(t, uint32(lookaheadSamples), specs.LatencyFrames)

	buffer := makeTestBuffer(t, lookaheadSamples*2, 1, 48000)
	defer buffer.Deinit(false)
	buffer.Samples[0] = 0.5
	require.NoError(t, limiter.Process(&buffer, &buffer, 0))
	// A quiet impulse emerges one lookahead later (minus the read-ahead
	// slot), completely unattenuated
	assert.Zero(t, buffer.Samples[0])
	assert.Equal(t, float32(0.5), buffer.Samples[lookaheadSamples-1])
}

func Test_LookaheadLimiterCutReset(t *testing.T) {
	limiter := MakeLookaheadLimiter(LookaheadLimiterConfig{})
	buffer := makeTestBuffer(t, lookaheadSamples, 1, 48000)
	defer buffer.Deinit(false)
	for i := range buffer.Samples {
		buffer.Samples[i] = 1.5
	}
	require.NoError(t, limiter.Process(&buffer, &buffer, 0))

	buffer.Zero()
	require.NoError(t, limiter.Process(&buffer, &buffer, ProcessCut))
	for i := range buffer.Samples {
		assert.Zero(t, buffer.Samples[i], "frame %d", i)
	}
}
