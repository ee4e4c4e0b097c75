package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Resampling kernels.
 *
 *		A kernel is a windowed-sinc lookup table sampled at
 *		Scale steps per input sample, plus a packed form where
 *		each subsample offset gets Length contiguous values for
 *		cache-friendly access during sampling. SampleZero marks
 *		the index of the kernel's t=0 sample; the table is
 *		symmetric around it and exactly zero at the boundaries.
 *
 *		Defaults are Lanczos kernels at radii 1 through
 *		kernelDefaultLanczosCount. A resolution of 128 is 2^7,
 *		which gives the LUT a signal-to-noise ratio of
 *		12+12*7 = 96dB.
 *
 *---------------------------------------------------------------*/

type Kernel struct {
	// Length = 2*radius+1
	Length uint32
	// Index of the t=0 sample
	SampleZero uint32
	// Subsample resolution
	Scale uint32
	// Length*Scale+1 table samples
	Size  uint32
	Table []float32
	// Scale+1 contiguous kernels of Length values, one per subsample offset
	Packed []float32
}

const kernelDefaultLanczosCount = 16

var kernelDefaultLanczos [kernelDefaultLanczosCount]Kernel

func KernelInit(kernel *Kernel, length, sampleZero, scale uint32) {
	kernel.Length = length
	kernel.SampleZero = sampleZero
	kernel.Scale = scale
	kernel.Size = length*scale + 1
	kernel.Table = make([]float32, kernel.Size)
	kernel.Packed = make([]float32, length*(scale+1))
}

func KernelPack(kernel *Kernel) {
	for subsample := uint32(0); subsample <= kernel.Scale; subsample++ {
		dst := kernel.Packed[subsample*kernel.Length:]
		for i := uint32(0); i < kernel.Length; i++ {
			index := i*kernel.Scale + subsample
			if index < kernel.Size {
				dst[i] = kernel.Table[index]
			} else {
				dst[i] = 0.0
			}
		}
	}
}

func KernelMakeLanczos(kernel *Kernel, resolution, radius uint32) {
	KernelInit(kernel, 1+radius*2, 1+radius, resolution)
	kernel.Table[0] = 0.0
	for i := uint32(0); i < radius*resolution; i++ {
		value := lanczosf(float32(i)/float32(resolution), float32(radius))
		kernel.Table[kernel.SampleZero*resolution-i] = value
		kernel.Table[kernel.SampleZero*resolution+i] = value
	}
	kernel.Table[kernel.Size-1] = 0.0
	KernelPack(kernel)
}

func kernelDefaultsInit() {
	// See file header for why 128.
	const kernelResolution = 128
	for radius := uint32(1); radius <= kernelDefaultLanczosCount; radius++ {
		KernelMakeLanczos(&kernelDefaultLanczos[radius-1], kernelResolution, radius)
	}
}

// Returns the default Lanczos kernel closest to the given radius.
func KernelGetDefaultLanczos(radius uint32) *Kernel {
	if radius < 1 {
		radius = 1
	}
	if radius > kernelDefaultLanczosCount {
		radius = kernelDefaultLanczosCount
	}
	return &kernelDefaultLanczos[radius-1]
}

// Picks a kernel radius for a resampling rate such that the per-sample
// tap count stays roughly constant: downsampling at rate spreads the
// kernel over 1/rate input samples, so we shrink the radius with it.
func KernelGetRadiusForRate(rate float32, desiredRadius uint32) uint32 {
	radius := uint32(roundf(rate * float32(desiredRadius)))
	if radius < 1 {
		radius = 1
	}
	if radius > kernelDefaultLanczosCount {
		radius = kernelDefaultLanczosCount
	}
	return radius
}

// Evaluates one kernel tap at integer offset d from the sampling point,
// with the fractional position in [0; 1). When the fraction lands
// exactly on a subsample boundary the lower-index packed kernel is used
// and the next is weighted zero.
func (kernel *Kernel) sampleTap(d int, fraction float32) float32 {
	return kernel.sampleTapX(float32(d+int(kernel.SampleZero)) - fraction)
}

// Same, but with the kernel-domain position computed by the caller, as
// needed when resampling the kernel itself for low-pass prefiltering.
func (kernel *Kernel) sampleTapX(x float32) float32 {
	index := int32(x)
	if index < 0 || index >= int32(kernel.Length)-1 {
		return 0.0
	}
	x -= float32(index)
	x *= float32(kernel.Scale)
	subsample := int32(x)
	x -= float32(subsample)
	s0 := kernel.Packed[(uint32(subsample)+0)*kernel.Length+uint32(index)]
	s1 := kernel.Packed[(uint32(subsample)+1)*kernel.Length+uint32(index)]
	return lerpf(s0, s1, x)
}

// Resamples a single channel of src into dst, where factor is the input
// sample distance between consecutive output samples.
func Resample(kernel *Kernel, factor float32, dst []float32, dstStride, dstFrames int, src []float32, srcStride, srcFrameMin, srcFrameMax int, srcSampleOffset float32) {
	rate := minf(1.0/factor, 1.0)
	for i := 0; i < dstFrames; i++ {
		pos := float64(i) * float64(factor)
		frame := int(pos)
		fraction := float32(pos-float64(frame)) + srcSampleOffset
		dst[i*dstStride] = SampleWithKernel1Ch(kernel, src, 0, srcStride, srcFrameMin, srcFrameMax, false, frame, fraction, rate)
	}
}

// Like Resample but adds into dst with a volume.
func ResampleAdd(kernel *Kernel, factor, amp float32, dst []float32, dstStride, dstFrames int, src []float32, srcStride, srcFrameMin, srcFrameMax int, srcSampleOffset float32) {
	rate := minf(1.0/factor, 1.0)
	for i := 0; i < dstFrames; i++ {
		pos := float64(i) * float64(factor)
		frame := int(pos)
		fraction := float32(pos-float64(frame)) + srcSampleOffset
		dst[i*dstStride] += amp * SampleWithKernel1Ch(kernel, src, 0, srcStride, srcFrameMin, srcFrameMax, false, frame, fraction, rate)
	}
}
