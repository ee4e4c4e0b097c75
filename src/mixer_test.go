package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A generator node for tests: writes a fixed pattern into dst.
type testToneDSP struct {
	DSPHeader
	pattern []float32
}

func (d *testToneDSP) Process(dst, src *Buffer, flags uint32) error {
	if err := checkBuffer(dst); err != nil {
		return err
	}
	for i := uint32(0); i < dst.Frames; i++ {
		for c := uint32(0); c < uint32(dst.ChannelLayout.Count); c++ {
			index := (i*uint32(dst.ChannelLayout.Count) + c) % uint32(len(d.pattern))
			dst.Samples[i*uint32(dst.Stride)+c] = d.pattern[index]
		}
	}
	return nil
}

// A node that always fails, for error latching.
type testFailingDSP struct {
	DSPHeader
}

func (d *testFailingDSP) Process(dst, src *Buffer, flags uint32) error {
	return ErrInvalidConfiguration
}

func newTestMixer(t *testing.T, frames uint32) *Mixer {
	mixer := &Mixer{}
	require.NoError(t, MixerInit(mixer, MixerConfig{BufferFrames: frames}, ChannelLayoutStereo()))
	return mixer
}

func Test_MixerStereoPassthroughWithBypassedReverb(t *testing.T) {
	kernelDefaultsInit()
	mixer := newTestMixer(t, 2)
	defer mixer.Deinit()

	track, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)

	pattern := []float32{1.0, 1.0, 0.5, 0.5}
	track.AppendDSP(&testToneDSP{DSPHeader: DSPHeader{Name: "Tone"}, pattern: pattern})
	reverb := MakeDefaultReverb()
	reverb.Bypass = true
	track.AppendDSP(reverb)

	require.NoError(t, mixer.Process(2, 48000))

	// Bypassed reverb and 0dB gains: output equals input exactly
	assert.Equal(t, pattern, mixer.Master.Buffer.Samples[:4])
}

func Test_MixerRoutingCycle(t *testing.T) {
	mixer := newTestMixer(t, 16)
	defer mixer.Deinit()

	a, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	b, err := mixer.AddTrack(-1, ChannelLayoutStereo(), false)
	require.NoError(t, err)
	a.AppendDSP(&testToneDSP{DSPHeader: DSPHeader{Name: "Tone"}, pattern: []float32{1.0}})

	TrackConnect(a, b, 0.0, 0)
	TrackConnect(b, a, 0.0, 0)

	err = mixer.Process(16, 48000)
	assert.ErrorIs(t, err, ErrMixerRoutingCycle)

	// Through the stream callback the master is silenced instead
	dst := makeTestBuffer(t, 16, 2, 48000)
	defer dst.Deinit(false)
	fillRamp(&dst)
	require.NoError(t, mixer.Callback(&dst, &dst, 0))
	assert.True(t, mixer.HasCircularRouting)
	for i := range dst.Samples[:16*2] {
		assert.Zero(t, dst.Samples[i], "sample %d", i)
	}

	// Breaking the cycle recovers
	TrackDisconnect(b, a)
	require.NoError(t, mixer.Process(16, 48000))
}

func Test_MixerReceiveMuteIdempotence(t *testing.T) {
	mixer := newTestMixer(t, 8)
	defer mixer.Deinit()

	track, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	track.AppendDSP(&testToneDSP{DSPHeader: DSPHeader{Name: "Tone"}, pattern: []float32{0.25}})

	route := TrackGetReceive(track, &mixer.Master)
	require.NotNil(t, route)

	require.NoError(t, mixer.Process(8, 48000))
	unmuted := append([]float32(nil), mixer.Master.Buffer.Samples[:16]...)
	assert.Equal(t, float32(0.25), unmuted[0])

	// Muting twice equals muting once
	route.Mute = true
	require.NoError(t, mixer.Process(8, 48000))
	mutedOnce := append([]float32(nil), mixer.Master.Buffer.Samples[:16]...)
	route.Mute = true
	require.NoError(t, mixer.Process(8, 48000))
	assert.Equal(t, mutedOnce, mixer.Master.Buffer.Samples[:16])
	for _, sample := range mutedOnce {
		assert.Zero(t, sample)
	}

	// Unmuting restores the original output
	route.Mute = false
	require.NoError(t, mixer.Process(8, 48000))
	assert.Equal(t, unmuted, mixer.Master.Buffer.Samples[:16])
}

func Test_MixerTrackGainApplies(t *testing.T) {
	mixer := newTestMixer(t, 4)
	defer mixer.Deinit()

	track, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	track.AppendDSP(&testToneDSP{DSPHeader: DSPHeader{Name: "Tone"}, pattern: []float32{1.0}})
	track.Gain = -6.0206 // half amplitude

	require.NoError(t, mixer.Process(4, 48000))
	assert.InDelta(t, 0.5, mixer.Master.Buffer.Samples[0], 1e-4)
}

func Test_MixerPluginErrorIsLatchedNotFatal(t *testing.T) {
	mixer := newTestMixer(t, 4)
	defer mixer.Deinit()

	track, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	failing := &testFailingDSP{DSPHeader: DSPHeader{Name: "Broken"}}
	track.AppendDSP(failing)
	track.AppendDSP(&testToneDSP{DSPHeader: DSPHeader{Name: "Tone"}, pattern: []float32{0.5}})

	// The chain continues past the failing plugin and the error is
	// latched on its header
	require.NoError(t, mixer.Process(4, 48000))
	assert.ErrorIs(t, failing.Err, ErrInvalidConfiguration)
	assert.Equal(t, float32(0.5), mixer.Master.Buffer.Samples[0])
}

func Test_MixerRemoveTrackDisconnects(t *testing.T) {
	mixer := newTestMixer(t, 4)
	defer mixer.Deinit()

	a, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	_, err = mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, mixer.GetTrackSendCount(a))

	mixer.RemoveTrack(0)
	assert.Len(t, mixer.Tracks, 1)
	assert.Len(t, mixer.Master.Receives, 1)
	require.NoError(t, mixer.Process(4, 48000))
}

func Test_MixerChannelMatrixDownmix(t *testing.T) {
	mixer := &Mixer{}
	require.NoError(t, MixerInit(mixer, MixerConfig{BufferFrames: 4}, ChannelLayoutMono()))
	defer mixer.Deinit()

	track, err := mixer.AddTrack(-1, ChannelLayoutStereo(), true)
	require.NoError(t, err)
	track.AppendDSP(&testToneDSP{DSPHeader: DSPHeader{Name: "Tone"}, pattern: []float32{0.5, 0.25}})

	require.NoError(t, mixer.Process(4, 48000))
	// Stereo to mono routes both channels at full weight
	assert.InDelta(t, 0.75, mixer.Master.Buffer.Samples[0], 1e-6)
}

func Test_RegistryMakesEveryKind(t *testing.T) {
	kernelDefaultsInit()
	dspRegistryInit()
	entries := DSPRegistryEntries()
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		dsp := entry.Make()
		require.NotNil(t, dsp, "constructor for %q", entry.Name)
		assert.Equal(t, entry.Name, dsp.Header().Name)
		assert.True(t, dsp.Header().Owned)
		FreeDSP(dsp)
	}
	assert.Nil(t, MakeDSPByName("No Such Plugin"))
	assert.NotNil(t, MakeDSPByName("Reverb"))
}

func Test_ChainProcessOrderAndBypass(t *testing.T) {
	var chain DSPChain
	chain.Init(2)
	first := &testToneDSP{DSPHeader: DSPHeader{Name: "A"}, pattern: []float32{0.125}}
	second := MakeCubicLimiter()
	chain.Append(first)
	chain.Append(second)
	assert.Equal(t, []DSP{first, second}, chain.Steps)

	chain.Prepend(MakeDSPDebugger(DSPDebuggerConfig{}))
	assert.Len(t, chain.Steps, 3)
	chain.Remove(first)
	assert.Len(t, chain.Steps, 2)

	buffer := makeTestBuffer(t, 4, 1, 48000)
	defer buffer.Deinit(false)
	require.NoError(t, chain.Process(&buffer, &buffer, 0))
}

func Test_ChainGetSpecsCombinesSerially(t *testing.T) {
	var chain DSPChain
	chain.Init(2)
	chain.Append(MakeDSPDebugger(DSPDebuggerConfig{SpecsToReport: DSPSpecs{LatencyFrames: 10}}))
	chain.Append(MakeDSPDebugger(DSPDebuggerConfig{SpecsToReport: DSPSpecs{LatencyFrames: 32, LeadingFrames: 4}}))
	specs := chain.GetSpecs(48000)
	assert.Equal(t, uint32(42), specs.LatencyFrames)
	assert.Equal(t, uint32(4), specs.LeadingFrames)
}
