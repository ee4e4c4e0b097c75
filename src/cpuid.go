package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	CPU feature detection and hot-path dispatch.
 *
 *		Detection happens once in Init. The hottest inner loops
 *		(kernel sampling and matrix mixing) are reached
 *		through package-level function values that get
 *		rebound here to the widest implementation the host CPU
 *		justifies. With no features present everything stays on
 *		the scalar path.
 *
 *		The wide variants are unrolled to the SSE and AVX lane
 *		widths and keep a single accumulator so that their
 *		results match the scalar path bit for bit.
 *
 *---------------------------------------------------------------*/

import (
	"golang.org/x/sys/cpu"
)

type cpuFeatures struct {
	initted bool

	sse  bool
	sse2 bool
	avx  bool
	avx2 bool
	fma  bool
}

var cpuID cpuFeatures

func cpuIDInit() {
	cpuID.sse = cpu.X86.HasSSE2 // SSE implied by SSE2 on anything we run on
	cpuID.sse2 = cpu.X86.HasSSE2
	cpuID.avx = cpu.X86.HasAVX
	cpuID.avx2 = cpu.X86.HasAVX2
	cpuID.fma = cpu.X86.HasFMA
	cpuID.initted = true
}

// Rebinds all specialized function values to the best implementation.
func dispatchInit() {
	if cpuID.avx && cpuID.fma {
		logTrace("choosing sampleWithKernel1Ch_x8")
		sampleWithKernel1ChSpecialized = sampleWithKernel1Ch_x8
		bufferMixMatrixSpecialized = bufferMixMatrix_x8
	} else if cpuID.sse {
		logTrace("choosing sampleWithKernel1Ch_x4")
		sampleWithKernel1ChSpecialized = sampleWithKernel1Ch_x4
		bufferMixMatrixSpecialized = bufferMixMatrix_x4
	} else {
		logTrace("choosing scalar DSP paths")
		sampleWithKernel1ChSpecialized = sampleWithKernel1Ch_scalar
		bufferMixMatrixSpecialized = bufferMixMatrix_scalar
	}
}
