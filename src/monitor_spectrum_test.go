package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MonitorSpectrumFindsTone(t *testing.T) {
	monitor := MakeMonitorSpectrum(MonitorSpectrumConfig{
		Mode:      MonitorSpectrumModeOneChannel,
		Window:    256,
		Smoothing: 1,
	})

	const samplerate = 48000
	const bin = 16
	frequency := float32(bin) * samplerate / 256.0
	buffer := makeTestBuffer(t, 512, 1, samplerate)
	defer buffer.Deinit(false)
	for i := 0; i < 512; i++ {
		buffer.Samples[i] = OscSine(float32(i) * frequency / samplerate)
	}
	reference := append([]float32(nil), buffer.Samples...)

	require.NoError(t, monitor.Process(&buffer, &buffer, 0))

	// Audio passes through untouched
	assert.Equal(t, reference, buffer.Samples)

	magnitudes := monitor.Magnitudes()
	require.Len(t, magnitudes, 256/2+1)
	peakBin := 0
	for i := range magnitudes {
		if magnitudes[i] > magnitudes[peakBin] {
			peakBin = i
		}
	}
	assert.Equal(t, bin, peakBin)
}

func Test_MonitorSpectrumAveragesChannels(t *testing.T) {
	monitor := MakeMonitorSpectrum(MonitorSpectrumConfig{
		Mode:      MonitorSpectrumModeAvgChannels,
		Window:    128,
		Smoothing: 4,
	})
	buffer := makeTestBuffer(t, 256, 2, 48000)
	defer buffer.Deinit(false)
	for i := 0; i < 256; i++ {
		buffer.Samples[i*2+0] = OscSine(float32(i) * 0.125)
		buffer.Samples[i*2+1] = OscSine(float32(i) * 0.0625)
	}
	require.NoError(t, monitor.Process(&buffer, &buffer, 0))
	magnitudes := monitor.Magnitudes()
	require.NotNil(t, magnitudes)
	total := float32(0.0)
	for _, magnitude := range magnitudes {
		total += magnitude
	}
	assert.Greater(t, total, float32(0.0))
}

func Test_MonitorSpectrumCutResets(t *testing.T) {
	monitor := MakeMonitorSpectrum(MonitorSpectrumConfig{
		Mode:   MonitorSpectrumModeOneChannel,
		Window: 64,
	})
	buffer := makeTestBuffer(t, 128, 1, 48000)
	defer buffer.Deinit(false)
	for i := range buffer.Samples {
		buffer.Samples[i] = 1.0
	}
	require.NoError(t, monitor.Process(&buffer, &buffer, 0))

	buffer.Zero()
	require.NoError(t, monitor.Process(&buffer, &buffer, ProcessCut))
	// Everything accumulated before the cut is gone; two windows of
	// silence leave a silent spectrum
	for _, magnitude := range monitor.Magnitudes() {
		assert.Zero(t, magnitude)
	}
}

func Test_MonitorSpectrumRejectsBadWindow(t *testing.T) {
	monitor := MakeMonitorSpectrum(MonitorSpectrumConfig{Window: 100})
	buffer := makeTestBuffer(t, 64, 1, 48000)
	defer buffer.Deinit(false)
	assert.ErrorIs(t, monitor.Process(&buffer, &buffer, 0), ErrInvalidConfiguration)
}
