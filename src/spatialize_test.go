package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSpatializeTestSource(t *testing.T, frames uint32) Buffer {
	src := makeTestBuffer(t, frames, 1, 48000)
	for i := uint32(0); i < frames; i++ {
		src.Samples[i] = OscSine(float32(i) * 440.0 / 48000.0)
	}
	return src
}

func spatializeChannelPeaks(buffer *Buffer) []float32 {
	peaks := make([]float32, buffer.ChannelLayout.Count)
	for i := uint32(0); i < buffer.Frames; i++ {
		for c := range peaks {
			peaks[c] = maxf(peaks[c], absf(buffer.Samples[i*uint32(buffer.Stride)+uint32(c)]))
		}
	}
	return peaks
}

func Test_SpatializeCenterSourceIsBalanced(t *testing.T) {
	kernelDefaultsInit()
	spatialize := MakeSpatialize(SpatializeConfig{
		DoDoppler:            false,
		DoFilter:             false,
		NumSrcChannelsActive: 1,
		TargetFollowTimeMs:   1.0,
		EarDistance:          0.085,
	})
	// Dead ahead of the listener
	spatialize.Config.Channels[0].Target = SpatializeTarget{
		Position:  Vec3{0.0, 0.0, 2.0},
		Amplitude: 1.0,
	}
	spatialize.SetRamps(1,
		[]SpatializeChannelConfig{{Target: SpatializeTarget{Position: Vec3{0.0, 0.0, 2.0}, Amplitude: 1.0}}},
		[]SpatializeChannelConfig{{Target: SpatializeTarget{Position: Vec3{0.0, 0.0, 2.0}, Amplitude: 1.0}}},
		256, 48000)

	src := makeSpatializeTestSource(t, 256)
	defer src.Deinit(false)
	dst := makeTestBuffer(t, 256, 2, 48000)
	defer dst.Deinit(false)
	dst.ChannelLayout = ChannelLayoutStereo()

	require.NoError(t, spatialize.Process(&dst, &src, 0))
	peaks := spatializeChannelPeaks(&dst)
	assert.Greater(t, peaks[0], float32(0.0))
	assert.InDelta(t, peaks[0], peaks[1], 1e-4, "a centered source should hit both speakers equally")
}

func Test_SpatializeSidedSourceFavorsThatSide(t *testing.T) {
	kernelDefaultsInit()
	spatialize := MakeSpatialize(SpatializeConfig{
		DoDoppler:            false,
		DoFilter:             false,
		NumSrcChannelsActive: 1,
		TargetFollowTimeMs:   1.0,
	})
	right := SpatializeChannelConfig{Target: SpatializeTarget{Position: Vec3{3.0, 0.0, 0.5}, Amplitude: 1.0}}
	spatialize.SetRamps(1, []SpatializeChannelConfig{right}, []SpatializeChannelConfig{right}, 256, 48000)

	src := makeSpatializeTestSource(t, 256)
	defer src.Deinit(false)
	dst := makeTestBuffer(t, 256, 2, 48000)
	defer dst.Deinit(false)
	dst.ChannelLayout = ChannelLayoutStereo()

	require.NoError(t, spatialize.Process(&dst, &src, 0))
	peaks := spatializeChannelPeaks(&dst)
	assert.Greater(t, peaks[1], peaks[0]*1.5, "a source hard right should mostly hit the right speaker")
}

func Test_SpatializeMonoDestination(t *testing.T) {
	kernelDefaultsInit()
	spatialize := MakeSpatialize(SpatializeConfig{
		DoDoppler:            false,
		DoFilter:             false,
		NumSrcChannelsActive: 1,
		TargetFollowTimeMs:   1.0,
	})
	cfg := SpatializeChannelConfig{Target: SpatializeTarget{Position: Vec3{0.0, 0.0, 1.0}, Amplitude: 0.5}}
	spatialize.SetRamps(1, []SpatializeChannelConfig{cfg}, []SpatializeChannelConfig{cfg}, 128, 48000)

	src := makeSpatializeTestSource(t, 128)
	defer src.Deinit(false)
	dst := makeTestBuffer(t, 128, 1, 48000)
	defer dst.Deinit(false)

	require.NoError(t, spatialize.Process(&dst, &src, 0))
	for i := uint32(0); i < 128; i++ {
		assert.InDelta(t, src.Samples[i]*0.5, dst.Samples[i], 1e-4, "frame %d", i)
	}
}

func Test_SpatializeHeadphonesFloor(t *testing.T) {
	kernelDefaultsInit()
	spatialize := MakeSpatialize(SpatializeConfig{
		DoDoppler:            false,
		DoFilter:             false,
		NumSrcChannelsActive: 1,
		TargetFollowTimeMs:   1.0,
	})
	// Hard right again, but on headphones the left ear keeps a floor amp
	right := SpatializeChannelConfig{Target: SpatializeTarget{Position: Vec3{3.0, 0.0, 0.5}, Amplitude: 1.0}}
	spatialize.SetRamps(1, []SpatializeChannelConfig{right}, []SpatializeChannelConfig{right}, 256, 48000)

	src := makeSpatializeTestSource(t, 256)
	defer src.Deinit(false)
	dst := makeTestBuffer(t, 256, 2, 48000)
	defer dst.Deinit(false)
	dst.ChannelLayout = ChannelLayoutHeadphones()

	require.NoError(t, spatialize.Process(&dst, &src, 0))
	peaks := spatializeChannelPeaks(&dst)
	assert.Greater(t, peaks[0], float32(0.1), "headphones keep a minimum floor on the far ear")
}

func Test_SpatializeInvalidWorld(t *testing.T) {
	kernelDefaultsInit()
	badWorld := WorldDefault
	badWorld.SpeedOfSound = 0.0
	spatialize := MakeSpatialize(SpatializeConfig{World: &badWorld})

	src := makeSpatializeTestSource(t, 64)
	defer src.Deinit(false)
	dst := makeTestBuffer(t, 64, 2, 48000)
	defer dst.Deinit(false)

	assert.ErrorIs(t, spatialize.Process(&dst, &src, 0), ErrInvalidConfiguration)
}

func Test_SpatializeWithDopplerRuns(t *testing.T) {
	kernelDefaultsInit()
	spatialize := MakeDefaultSpatialize()
	start := SpatializeChannelConfig{Target: SpatializeTarget{Position: Vec3{-5.0, 0.0, 2.0}, Amplitude: 1.0}}
	end := SpatializeChannelConfig{Target: SpatializeTarget{Position: Vec3{5.0, 0.0, 2.0}, Amplitude: 1.0}}
	spatialize.SetRamps(1, []SpatializeChannelConfig{start}, []SpatializeChannelConfig{end}, 512, 48000)

	src := makeSpatializeTestSource(t, 512)
	defer src.Deinit(false)
	dst := makeTestBuffer(t, 512, 2, 48000)
	defer dst.Deinit(false)
	dst.ChannelLayout = ChannelLayoutStereo()

	// The path delay (over 15ms) is longer than one block, so the first
	// block comes out silent and a second one is needed
	for block := 0; block < 2; block++ {
		require.NoError(t, spatialize.Process(&dst, &src, 0))
	}
	// Mostly checking nothing blows up, but the source should be audible
	peaks := spatializeChannelPeaks(&dst)
	assert.Greater(t, peaks[0]+peaks[1], float32(0.0))
}
