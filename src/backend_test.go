package azaudio

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initNullBackend(t *testing.T) {
	t.Setenv("AZAUDIO_BACKEND", "null")
	require.NoError(t, backendInit())
	t.Cleanup(backendDeinit)
}

func Test_NullBackendStreamLifecycle(t *testing.T) {
	initNullBackend(t)
	assert.Equal(t, "null", BackendName())

	devices, err := Devices(DeviceOutput)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "null", devices[0].Name)

	var callbacks atomic.Int32
	var stream Stream
	stream.ProcessCallback = func(dst, src *Buffer, flags uint32) error {
		callbacks.Add(1)
		assert.Equal(t, uint32(nullBlockFrames), dst.Frames)
		return nil
	}
	require.NoError(t, StreamInit(&stream, StreamConfig{}, DeviceOutput, StreamCommitFormat))

	// The chosen format was committed back into the config
	assert.Equal(t, "null", stream.Config.DeviceName)
	assert.Equal(t, uint32(SamplerateDefault), stream.Samplerate())
	assert.Equal(t, uint8(ChannelsDefault), stream.ChannelLayout().Count)
	assert.Equal(t, uint32(nullBlockFrames), stream.BufferFrameCount())

	stream.SetActive(true)
	assert.True(t, stream.GetActive())
	deadline := time.Now().Add(2 * time.Second)
	for callbacks.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	stream.SetActive(false)
	assert.False(t, stream.GetActive())
	assert.Greater(t, callbacks.Load(), int32(0))

	stream.Deinit()
}

func Test_StreamInitRequiresCallback(t *testing.T) {
	initNullBackend(t)
	var stream Stream
	assert.ErrorIs(t, StreamInit(&stream, StreamConfig{}, DeviceOutput, 0), ErrNullPointer)
}

func Test_MixerStreamOpenOnNullBackend(t *testing.T) {
	initNullBackend(t)
	kernelDefaultsInit()

	mixer := &Mixer{}
	require.NoError(t, MixerStreamOpen(mixer, MixerConfig{}, StreamConfig{}, false))
	assert.GreaterOrEqual(t, mixer.Config.BufferFrames, uint32(nullBlockFrames))

	track, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	track.AppendDSP(&testToneDSP{DSPHeader: DSPHeader{Name: "Tone"}, pattern: []float32{0.25}})

	mixer.StreamSetActive(true)
	time.Sleep(50 * time.Millisecond)
	mixer.StreamSetActive(false)

	MixerStreamClose(mixer, false)
}

func Test_InitAndDeinit(t *testing.T) {
	t.Setenv("AZAUDIO_BACKEND", "null")
	t.Setenv("AZAUDIO_LOG_LEVEL", "error")
	require.NoError(t, Init())
	defer Deinit()

	assert.Equal(t, LogLevelError, logLevel)
	assert.True(t, cpuID.initted)
	assert.NotEmpty(t, DSPRegistryEntries())
	// The default kernels got built
	kernel := KernelGetDefaultLanczos(13)
	assert.Equal(t, uint32(27), kernel.Length)
	assert.Equal(t, "0.4.0-dev", VersionString)
}
