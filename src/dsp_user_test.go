package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DSPUserWrapsCallback(t *testing.T) {
	gain := float32(0.5)
	user := MakeDSPUser("Half Gain", &gain, func(userdata any, dst, src *Buffer, flags uint32) error {
		amp := *(userdata.(*float32))
		for i := uint32(0); i < dst.Frames; i++ {
			for c := uint32(0); c < uint32(dst.ChannelLayout.Count); c++ {
				dst.Samples[i*uint32(dst.Stride)+c] = src.Samples[i*uint32(src.Stride)+c] * amp
			}
		}
		return nil
	})
	user.SetSpecsCallback(func(userdata any, samplerate uint32) DSPSpecs {
		return DSPSpecs{LatencyFrames: 7}
	})

	buffer := makeTestBuffer(t, 8, 1, 48000)
	defer buffer.Deinit(false)
	for i := range buffer.Samples {
		buffer.Samples[i] = 1.0
	}
	require.NoError(t, DSPProcess(user, &buffer, &buffer, 0))
	assert.Equal(t, float32(0.5), buffer.Samples[0])
	assert.Equal(t, uint32(7), user.GetSpecs(48000).LatencyFrames)

	// Bypass skips the callback entirely
	user.Bypass = true
	require.NoError(t, DSPProcess(user, &buffer, &buffer, 0))
	assert.Equal(t, float32(0.5), buffer.Samples[0])
}

func Test_DSPUserWithoutCallbackErrors(t *testing.T) {
	user := &DSPUser{}
	DSPUserInit(user, "Empty", nil, nil)
	buffer := makeTestBuffer(t, 4, 1, 48000)
	defer buffer.Deinit(false)
	assert.ErrorIs(t, user.Process(&buffer, &buffer, 0), ErrNullPointer)
}
