package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Specialized implementations of kernel sampling and
 *		dispatch.
 *
 *		This is the hottest loop in the library: every
 *		resampled output sample evaluates Length kernel taps
 *		against the source. The dispatcher binds the widest
 *		unrolled variant the CPU justifies; all variants keep a
 *		single accumulator walking taps in ascending order, so
 *		their results are bit-identical to the scalar path.
 *
 *		Indices are relative to origin within src. frame may
 *		lie outside [minFrame; maxFrame): taps clamp to the
 *		edges when wrap is false and wrap modulo the range when
 *		wrap is true.
 *
 *		rate <= 1 adjusts the kernel sample density for
 *		low-pass prefiltering during downsampling; those taps
 *		are normalized by the sampled kernel integral to keep
 *		unity gain.
 *
 *---------------------------------------------------------------*/

// Samples one channel of src at frame+fraction through the kernel.
func SampleWithKernel1Ch(kernel *Kernel, src []float32, origin, stride, minFrame, maxFrame int, wrap bool, frame int, fraction, rate float32) float32 {
	return sampleWithKernel1ChSpecialized(kernel, src, origin, stride, minFrame, maxFrame, wrap, frame, fraction, rate)
}

var sampleWithKernel1ChSpecialized = sampleWithKernel1Ch_scalar

func sampleIndex(i, minFrame, maxFrame int, wrap bool) int {
	if wrap {
		return wrapi(i-minFrame, maxFrame-minFrame) + minFrame
	}
	if i < minFrame {
		return minFrame
	}
	if i >= maxFrame {
		return maxFrame - 1
	}
	return i
}

func sampleWithKernel1Ch_scalar(kernel *Kernel, src []float32, origin, stride, minFrame, maxFrame int, wrap bool, frame int, fraction, rate float32) float32 {
	if rate < 1.0 {
		return sampleWithKernel1ChRate(kernel, src, origin, stride, minFrame, maxFrame, wrap, frame, fraction, rate)
	}
	result := float32(0.0)
	start := 1 - int(kernel.SampleZero)
	end := start + int(kernel.Length)
	for d := start; d < end; d++ {
		index := sampleIndex(frame+d, minFrame, maxFrame, wrap)
		s := src[origin+index*stride]
		result += s * kernel.sampleTap(d, fraction)
	}
	return result
}

// Wide variants: when the whole window is in range with unit stride we
// iterate width taps per block without edge handling; the tail and any
// edge-touching window fall back to per-tap clamping. Accumulation stays
// in tap order with one accumulator.

func sampleWithKernel1Ch_x4(kernel *Kernel, src []float32, origin, stride, minFrame, maxFrame int, wrap bool, frame int, fraction, rate float32) float32 {
	return sampleWithKernel1Ch_wide(kernel, src, origin, stride, minFrame, maxFrame, wrap, frame, fraction, rate, 4)
}

func sampleWithKernel1Ch_x8(kernel *Kernel, src []float32, origin, stride, minFrame, maxFrame int, wrap bool, frame int, fraction, rate float32) float32 {
	return sampleWithKernel1Ch_wide(kernel, src, origin, stride, minFrame, maxFrame, wrap, frame, fraction, rate, 8)
}

func sampleWithKernel1Ch_wide(kernel *Kernel, src []float32, origin, stride, minFrame, maxFrame int, wrap bool, frame int, fraction, rate float32, width int) float32 {
	if rate < 1.0 {
		return sampleWithKernel1ChRate(kernel, src, origin, stride, minFrame, maxFrame, wrap, frame, fraction, rate)
	}
	result := float32(0.0)
	start := 1 - int(kernel.SampleZero)
	end := start + int(kernel.Length)
	d := start
	if stride == 1 && frame+start >= minFrame && frame+end <= maxFrame {
		for ; d <= end-width; d += width {
			base := origin + frame + d
			for j := 0; j < width; j++ {
				result += src[base+j] * kernel.sampleTap(d+j, fraction)
			}
		}
	}
	for ; d < end; d++ {
		index := sampleIndex(frame+d, minFrame, maxFrame, wrap)
		s := src[origin+index*stride]
		result += s * kernel.sampleTap(d, fraction)
	}
	return result
}

// Downsampling path: the kernel is sampled at rate-spaced positions so
// its cutoff lands below the output Nyquist, covering 1/rate as many
// input taps. Normalized by the sampled integral.
func sampleWithKernel1ChRate(kernel *Kernel, src []float32, origin, stride, minFrame, maxFrame int, wrap bool, frame int, fraction, rate float32) float32 {
	sampleZero := float32(kernel.SampleZero)
	// Solve for the d range where the kernel-domain position stays inside the table.
	dStart := int(ceilf(fraction - sampleZero/rate))
	dEnd := int(floorf(fraction + (float32(kernel.Length-1)-sampleZero)/rate))
	result := float32(0.0)
	integral := float32(0.0)
	for d := dStart; d <= dEnd; d++ {
		x := (float32(d)-fraction)*rate + sampleZero
		amount := kernel.sampleTapX(x)
		if amount == 0.0 {
			continue
		}
		index := sampleIndex(frame+d, minFrame, maxFrame, wrap)
		result += src[origin+index*stride] * amount
		integral += amount
	}
	if integral != 0.0 {
		result /= integral
	}
	return result
}

// Samples all channels of an interleaved source at once, evaluating each
// kernel tap a single time. dst receives one sample per channel.
func SampleWithKernel(dst []float32, channels int, kernel *Kernel, src []float32, origin, stride, minFrame, maxFrame int, wrap bool, frame int, fraction, rate float32) {
	for c := 0; c < channels; c++ {
		dst[c] = 0.0
	}
	if rate < 1.0 {
		sampleZero := float32(kernel.SampleZero)
		dStart := int(ceilf(fraction - sampleZero/rate))
		dEnd := int(floorf(fraction + (float32(kernel.Length-1)-sampleZero)/rate))
		integral := float32(0.0)
		for d := dStart; d <= dEnd; d++ {
			x := (float32(d)-fraction)*rate + sampleZero
			amount := kernel.sampleTapX(x)
			if amount == 0.0 {
				continue
			}
			index := sampleIndex(frame+d, minFrame, maxFrame, wrap)
			for c := 0; c < channels; c++ {
				dst[c] += src[origin+index*stride+c] * amount
			}
			integral += amount
		}
		if integral != 0.0 {
			for c := 0; c < channels; c++ {
				dst[c] /= integral
			}
		}
		return
	}
	start := 1 - int(kernel.SampleZero)
	end := start + int(kernel.Length)
	for d := start; d < end; d++ {
		amount := kernel.sampleTap(d, fraction)
		if amount == 0.0 {
			continue
		}
		index := sampleIndex(frame+d, minFrame, maxFrame, wrap)
		for c := 0; c < channels; c++ {
			dst[c] += src[origin+index*stride+c] * amount
		}
	}
}
