package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Fast Fourier Transform.
 *
 *		This is a translation of the basic implementation of
 *		the FFT from Chapter 12 of The Scientist and Engineer's
 *		Guide to Digital Signal Processing by Steven W. Smith,
 *		with bit shifts and hopefully more descriptive variable
 *		names.
 *		https://www.dspguide.com/ch12/3.htm
 *
 *		len must be a power of 2. For time-domain signals
 *		valReal should contain len samples and valImag len
 *		zeroes. The output valReal[i] and valImag[i] correspond
 *		to i*samplerate/len Hz for the lower len/2+1 bins.
 *
 *---------------------------------------------------------------*/

func FFT(valReal, valImag []float32, length uint32) {
	if length == 0 || (length&(length-1)) != 0 {
		logError("FFT: len must be a nonzero power of 2, got %d", length)
		return
	}

	halfLen := length >> 1
	var tempReal, tempImag float32

	// Bit reversal sorting
	// This effectively does a multi-stage deinterlace, ex:
	// 1 8-point signal:  0 1 2 3 4 5 6 7
	// 2 4-point signals: 0 2 4 6|1 3 5 7
	// 4 2-point signals: 0 4|2 6|1 5|3 7
	// 8 1-point signals: 0|4|2|6|1|5|3|7
	for i, j := uint32(1), halfLen; i < length-1; i++ {
		if i < j {
			tempReal = valReal[j]
			tempImag = valImag[j]
			valReal[j] = valReal[i]
			valImag[j] = valImag[i]
			valReal[i] = tempReal
			valImag[i] = tempImag
		}
		k := halfLen
		for k <= j {
			j -= k
			k >>= 1
		}
		j += k
	}

	// Loop for each stage, starting with the 2-point signals because
	// 1-point signals would be unaltered anyway
	levelLenOver2 := uint32(1)
	for levelLen := uint32(2); levelLen <= length; levelLenOver2, levelLen = levelLen, levelLen<<1 {
		rotReal := float32(1.0)
		rotImag := float32(0.0)
		// Sine and cosine values of 1 point along our signal
		cosReal := cosf(tau / float32(levelLen))
		cosImag := -sinf(tau / float32(levelLen))
		// Loop for each sub DFT
		for subDFT := uint32(0); subDFT < levelLenOver2; subDFT++ {
			// Loop for each butterfly
			for i := subDFT; i < length; i += levelLen {
				ip := i + levelLenOver2
				tempReal = valReal[ip]*rotReal - valImag[ip]*rotImag
				tempImag = valReal[ip]*rotImag + valImag[ip]*rotReal
				valReal[ip] = valReal[i] - tempReal
				valImag[ip] = valImag[i] - tempImag
				valReal[i] = valReal[i] + tempReal
				valImag[i] = valImag[i] + tempImag
			}
			// Progress along the sinusoids
			tempReal = rotReal
			rotReal = tempReal*cosReal - rotImag*cosImag
			rotImag = tempReal*cosImag + rotImag*cosReal
		}
	}
}
