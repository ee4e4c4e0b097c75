package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSamplerSource(t *testing.T, frames uint32) *Buffer {
	source := &Buffer{}
	require.NoError(t, source.Init(frames, 0, 0, ChannelLayoutMono()))
	source.Samplerate = 48000
	for i := uint32(0); i < frames; i++ {
		source.Samples[i] = float32(i)
	}
	return source
}

func Test_SamplerPlaysThrough(t *testing.T) {
	kernelDefaultsInit()
	source := makeSamplerSource(t, 100)
	defer source.Deinit(false)
	sampler := MakeSampler(SamplerConfig{
		Buffer:                 source,
		SpeedTransitionTimeMs:  1.0,
		VolumeTransitionTimeMs: 1.0,
	})

	id := sampler.Play(1.0, 0.0)
	require.NotZero(t, id)

	dst := makeTestBuffer(t, 64, 1, 48000)
	defer dst.Deinit(false)
	require.NoError(t, sampler.Process(&dst, nil, 0))

	// Unity speed with zero fraction copies samples straight through
	for i := 0; i < 64; i++ {
		assert.Equal(t, source.Samples[i], dst.Samples[i], "frame %d", i)
	}

	// The rest of the source plays out, then the voice dies
	dst.Zero()
	require.NoError(t, sampler.Process(&dst, nil, 0))
	assert.Nil(t, sampler.GetInstance(id))
}

func Test_SamplerPingpongReflects(t *testing.T) {
	kernelDefaultsInit()
	source := makeSamplerSource(t, 100)
	defer source.Deinit(false)
	sampler := MakeSampler(SamplerConfig{
		Buffer:                 source,
		SpeedTransitionTimeMs:  1.0,
		VolumeTransitionTimeMs: 1.0,
		Loop:                   true,
		Pingpong:               true,
	})

	id := sampler.Play(1.0, 0.0)
	require.NotZero(t, id)

	// After 150 samples the voice has bounced off the loop end and is
	// headed backwards through the middle of the source
	dst := makeTestBuffer(t, 150, 1, 48000)
	defer dst.Deinit(false)
	require.NoError(t, sampler.Process(&dst, nil, 0))
	instance := sampler.GetInstance(id)
	require.NotNil(t, instance)
	assert.True(t, instance.Reverse)
	assert.InDelta(t, 50, instance.Frame, 2)

	// Another 100 samples later it has bounced off the loop start and
	// is headed forwards again
	dst2 := makeTestBuffer(t, 100, 1, 48000)
	defer dst2.Deinit(false)
	require.NoError(t, sampler.Process(&dst2, nil, 0))
	instance = sampler.GetInstance(id)
	require.NotNil(t, instance)
	assert.False(t, instance.Reverse)
	assert.InDelta(t, 50, instance.Frame, 2)
}

func Test_SamplerLoopWraps(t *testing.T) {
	kernelDefaultsInit()
	source := makeSamplerSource(t, 100)
	defer source.Deinit(false)
	sampler := MakeSampler(SamplerConfig{
		Buffer:                 source,
		SpeedTransitionTimeMs:  1.0,
		VolumeTransitionTimeMs: 1.0,
		Loop:                   true,
	})

	id := sampler.Play(1.0, 0.0)
	dst := makeTestBuffer(t, 250, 1, 48000)
	defer dst.Deinit(false)
	require.NoError(t, sampler.Process(&dst, nil, 0))
	instance := sampler.GetInstance(id)
	require.NotNil(t, instance)
	assert.False(t, instance.Reverse)
	assert.InDelta(t, 50, instance.Frame, 2)
}

func Test_SamplerVoiceCap(t *testing.T) {
	kernelDefaultsInit()
	source := makeSamplerSource(t, 100)
	defer source.Deinit(false)
	sampler := MakeSampler(SamplerConfig{Buffer: source})

	for i := 0; i < SamplerMaxInstances; i++ {
		assert.NotZero(t, sampler.Play(1.0, 0.0))
	}
	// New voices beyond capacity are rejected
	assert.Zero(t, sampler.Play(1.0, 0.0))
}

func Test_SamplerStopReleasesVoice(t *testing.T) {
	kernelDefaultsInit()
	source := makeSamplerSource(t, 48000)
	defer source.Deinit(false)
	sampler := MakeSampler(SamplerConfig{
		Buffer:                 source,
		SpeedTransitionTimeMs:  1.0,
		VolumeTransitionTimeMs: 1.0,
		// Instant release
		Envelope: ADSRConfig{},
	})

	id := sampler.Play(1.0, 0.0)
	require.NotZero(t, id)
	sampler.Stop(id)

	dst := makeTestBuffer(t, 64, 1, 48000)
	defer dst.Deinit(false)
	require.NoError(t, sampler.Process(&dst, nil, 0))
	assert.Nil(t, sampler.GetInstance(id))
}

func Test_SamplerReversePlayback(t *testing.T) {
	kernelDefaultsInit()
	source := makeSamplerSource(t, 1000)
	defer source.Deinit(false)
	sampler := MakeSampler(SamplerConfig{
		Buffer:                 source,
		SpeedTransitionTimeMs:  1.0,
		VolumeTransitionTimeMs: 1.0,
	})

	id := sampler.Play(-1.0, 0.0)
	require.NotZero(t, id)
	instance := sampler.GetInstance(id)
	require.NotNil(t, instance)
	assert.True(t, instance.Reverse)
	assert.Equal(t, int32(999), instance.Frame)

	dst := makeTestBuffer(t, 64, 1, 48000)
	defer dst.Deinit(false)
	require.NoError(t, sampler.Process(&dst, nil, 0))
	instance = sampler.GetInstance(id)
	require.NotNil(t, instance)
	assert.InDelta(t, 999-64, instance.Frame, 1)
}
