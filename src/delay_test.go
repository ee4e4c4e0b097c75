package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_DelayCausality(t *testing.T) {
	delay := MakeDelay(DelayConfig{
		GainWet:  0.0,
		MuteDry:  true,
		DelayMs:  10.0,
		Feedback: 0.0,
		Pingpong: 0.0,
	})

	const samplerate = 48000
	const shift = 480 // round(10 * 48000 / 1000)
	const frames = 2048
	src := makeTestBuffer(t, frames, 1, samplerate)
	defer src.Deinit(false)
	for i := range src.Samples {
		src.Samples[i] = float32(i + 1)
	}
	dst := makeTestBuffer(t, frames, 1, samplerate)
	defer dst.Deinit(false)

	require.NoError(t, delay.Process(&dst, &src, 0))

	// Zeros fill the head, then the input comes out shifted by exactly
	// the rounded delay
	for i := 0; i < shift; i++ {
		assert.Zero(t, dst.Samples[i], "frame %d", i)
	}
	for i := shift; i < frames; i++ {
		assert.Equal(t, src.Samples[i-shift], dst.Samples[i], "frame %d", i)
	}
}

func Test_DelayCausalityAcrossRates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var samplerate = rapid.SampledFrom([]uint32{44100, 48000, 96000}).Draw(t, "samplerate")
		var delayMs = rapid.Float32Range(1.0, 50.0).Draw(t, "delayMs")

		delay := MakeDelay(DelayConfig{
			GainWet: 0.0,
			MuteDry: true,
			DelayMs: delayMs,
		})
		shift := int(roundf(msToSamples(delayMs, float32(samplerate))))
		frames := uint32(shift + 64)

		src := makeTestBuffer(t, frames, 1, samplerate)
		defer src.Deinit(false)
		src.Samples[0] = 1.0
		dst := makeTestBuffer(t, frames, 1, samplerate)
		defer dst.Deinit(false)

		require.NoError(t, delay.Process(&dst, &src, 0))
		assert.Equal(t, float32(1.0), dst.Samples[shift])
	})
}

func Test_DelayCutReset(t *testing.T) {
	delay := MakeDelay(DelayConfig{
		GainWet:  0.0,
		MuteDry:  true,
		DelayMs:  5.0,
		Feedback: 0.9,
	})
	buffer := makeTestBuffer(t, 1024, 2, 48000)
	defer buffer.Deinit(false)
	for i := range buffer.Samples {
		buffer.Samples[i] = 0.5
	}
	require.NoError(t, delay.Process(&buffer, &buffer, 0))

	buffer.Zero()
	require.NoError(t, delay.Process(&buffer, &buffer, ProcessCut))
	for i := range buffer.Samples {
		assert.Zero(t, buffer.Samples[i], "frame %d", i)
	}
}

func Test_DelayPingpongCrossesChannels(t *testing.T) {
	delay := MakeDelay(DelayConfig{
		GainWet:  0.0,
		MuteDry:  true,
		DelayMs:  1.0,
		Pingpong: 1.0,
	})
	const samplerate = 48000
	const shift = 48
	src := makeTestBuffer(t, 256, 2, samplerate)
	defer src.Deinit(false)
	src.Samples[0] = 1.0 // left channel impulse
	dst := makeTestBuffer(t, 256, 2, samplerate)
	defer dst.Deinit(false)

	require.NoError(t, delay.Process(&dst, &src, 0))
	// The whole wet signal lands on the right channel
	assert.Zero(t, dst.Samples[shift*2+0])
	assert.Equal(t, float32(1.0), dst.Samples[shift*2+1])
}

func Test_DelayDynamicConstantDelayShiftsInput(t *testing.T) {
	kernelDefaultsInit()
	delay := MakeDelayDynamic(DelayDynamicConfig{
		GainWet:           0.0,
		MuteDry:           true,
		DelayMaxMs:        50.0,
		DelayFollowTimeMs: 1.0,
		Feedback:          0.0,
	})
	const samplerate = 48000
	const delayMs = 10.0
	// The line keeps length-sampleZero future guard samples for the
	// kernel, which shows up as a fixed extra radius of delay.
	const shift = 480 + delayDynamicDesiredKernelRadius
	delay.Config.Channels[0].DelayMs = delayMs
	delay.channelData[0].delayMs.Jump(delayMs)

	const frames = 512
	src := makeTestBuffer(t, frames, 1, samplerate)
	defer src.Deinit(false)
	dst := makeTestBuffer(t, frames, 1, samplerate)
	defer dst.Deinit(false)

	// Feed a couple blocks of a ramp and find it again shifted
	var fed []float32
	var got []float32
	for block := 0; block < 4; block++ {
		for i := 0; i < frames; i++ {
			sample := OscSine(float32(block*frames+i) * 440.0 / samplerate)
			src.Samples[i] = sample
			fed = append(fed, sample)
		}
		require.NoError(t, delay.Process(&dst, &src, 0))
		got = append(got, dst.Samples[:frames]...)
	}

	// Skip the first block while the follower state settles
	for i := frames; i < len(got); i++ {
		if i < shift {
			continue
		}
		assert.InDelta(t, fed[i-shift], got[i], 1e-2, "frame %d", i)
	}
}

func Test_SampleDelayShifts(t *testing.T) {
	var delay SampleDelay
	SampleDelayInit(&delay, SampleDelayConfig{DelayFrames: 16})
	defer delay.Deinit()

	src := makeTestBuffer(t, 64, 1, 48000)
	defer src.Deinit(false)
	for i := range src.Samples {
		src.Samples[i] = float32(i + 1)
	}
	dst := makeTestBuffer(t, 64, 1, 48000)
	defer dst.Deinit(false)

	require.NoError(t, delay.Process(&dst, &src, 0))
	for i := 0; i < 16; i++ {
		assert.Zero(t, dst.Samples[i])
	}
	for i := 16; i < 64; i++ {
		assert.Equal(t, src.Samples[i-16], dst.Samples[i])
	}
}
