package azaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_KernelMakeLanczos(t *testing.T) {
	var kernel Kernel
	KernelMakeLanczos(&kernel, 128, 3)

	assert.Equal(t, uint32(7), kernel.Length)
	assert.Equal(t, uint32(4), kernel.SampleZero)
	assert.Equal(t, uint32(128), kernel.Scale)

	// Exactly zero at the boundaries
	assert.Zero(t, kernel.Table[0])
	assert.Zero(t, kernel.Table[kernel.Size-1])
	// Unity at the center
	assert.Equal(t, float32(1.0), kernel.Table[kernel.SampleZero*kernel.Scale])
	// Symmetric around the center
	for i := uint32(1); i < 3*128; i++ {
		assert.Equal(t, kernel.Table[kernel.SampleZero*128-i], kernel.Table[kernel.SampleZero*128+i])
	}
	// The packed form agrees with the table
	for subsample := uint32(0); subsample < kernel.Scale; subsample++ {
		for i := uint32(0); i < kernel.Length; i++ {
			assert.Equal(t, kernel.Table[i*kernel.Scale+subsample], kernel.Packed[subsample*kernel.Length+i])
		}
	}
}

func Test_KernelSubsampleTieBreak(t *testing.T) {
	var kernel Kernel
	KernelMakeLanczos(&kernel, 128, 3)

	// A fraction landing exactly on a subsample boundary uses the
	// lower-index packed kernel with the next weighted zero.
	fraction := float32(5.0) / 128.0
	tap := kernel.sampleTap(0, fraction)
	x := float32(kernel.SampleZero) - fraction
	index := uint32(x)
	subsample := uint32((x - float32(index)) * float32(kernel.Scale))
	expected := kernel.Packed[subsample*kernel.Length+index]
	assert.Equal(t, expected, tap)
}

func Test_ResampleIdentity(t *testing.T) {
	kernelDefaultsInit()
	kernel := KernelGetDefaultLanczos(13)

	const frames = 4800
	src := make([]float32, frames)
	for i := range src {
		src[i] = OscSine(float32(i) * 997.0 / 48000.0)
	}
	dst := make([]float32, frames)
	Resample(kernel, 1.0, dst, 1, frames, src, 1, 0, frames, 0.0)

	// Interior window excluding the kernel guard regions
	guard := int(kernel.Length)
	peakErr := float32(0.0)
	for i := guard; i < frames-guard; i++ {
		peakErr = maxf(peakErr, absf(dst[i]-src[i]))
	}
	peakDb := ampToDb(peakErr)
	assert.LessOrEqual(t, peakDb, float32(-60.0), "peak error was %fdB", peakDb)
}

func Test_SampleWithKernelSpecializationsAgree(t *testing.T) {
	kernelDefaultsInit()
	kernel := KernelGetDefaultLanczos(13)

	src := make([]float32, 512)
	for i := range src {
		src[i] = OscSine(float32(i) * 0.0371)
	}

	for _, fraction := range []float32{0.0, 0.25, 0.5, 0.9999} {
		for _, frame := range []int{-5, 0, 13, 200, 500, 511} {
			scalar := sampleWithKernel1Ch_scalar(kernel, src, 0, 1, 0, 512, false, frame, fraction, 1.0)
			wide4 := sampleWithKernel1Ch_x4(kernel, src, 0, 1, 0, 512, false, frame, fraction, 1.0)
			wide8 := sampleWithKernel1Ch_x8(kernel, src, 0, 1, 0, 512, false, frame, fraction, 1.0)
			require.Equal(t, scalar, wide4, "frame %d fraction %f", frame, fraction)
			require.Equal(t, scalar, wide8, "frame %d fraction %f", frame, fraction)
		}
	}
}

func Test_SampleWithKernelClampAndWrap(t *testing.T) {
	kernelDefaultsInit()
	kernel := KernelGetDefaultLanczos(3)

	src := []float32{1, 2, 3, 4}

	// Far out of range with clamping lands on the edge sample
	clamped := SampleWithKernel1Ch(kernel, src, 0, 1, 0, 4, false, -100, 0.0, 1.0)
	assert.InDelta(t, 1.0, clamped, 1e-5)
	clamped = SampleWithKernel1Ch(kernel, src, 0, 1, 0, 4, false, 100, 0.0, 1.0)
	assert.InDelta(t, 4.0, clamped, 1e-5)

	// Wrapping samples the signal modulo the range
	wrappedA := SampleWithKernel1Ch(kernel, src, 0, 1, 0, 4, true, 1, 0.0, 1.0)
	wrappedB := SampleWithKernel1Ch(kernel, src, 0, 1, 0, 4, true, 5, 0.0, 1.0)
	assert.InDelta(t, wrappedA, wrappedB, 1e-6)
}

func Test_SampleWithKernelDownsamplingRateUnityGain(t *testing.T) {
	kernelDefaultsInit()
	kernel := KernelGetDefaultLanczos(13)

	src := make([]float32, 512)
	for i := range src {
		src[i] = 1.0
	}
	// A constant signal stays a constant signal at any rate
	for _, rate := range []float32{1.0, 0.5, 0.25, 0.1} {
		sample := SampleWithKernel1Ch(kernel, src, 0, 1, 0, 512, false, 256, 0.375, rate)
		assert.InDelta(t, 1.0, sample, 1e-3, "rate %f", rate)
	}
}

func Test_KernelGetRadiusForRate(t *testing.T) {
	assert.Equal(t, uint32(13), KernelGetRadiusForRate(1.0, 13))
	assert.Equal(t, uint32(7), KernelGetRadiusForRate(0.5, 13))
	assert.Equal(t, uint32(1), KernelGetRadiusForRate(0.01, 13))
	assert.Equal(t, uint32(kernelDefaultLanczosCount), KernelGetRadiusForRate(100.0, kernelDefaultLanczosCount))
}
