package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Spectrum monitor: accumulates input frames into a
 *		window, applies a Blackman-Harris window, runs the
 *		forward FFT, and exponentially smooths magnitude+phase
 *		pairs for the lower window/2+1 bins into an output
 *		buffer for display.
 *
 *		Window advance is either a full window (no overlap) or
 *		half a window (50% overlap).
 *
 *---------------------------------------------------------------*/

type MonitorSpectrumMode uint8

const (
	// Analyze one chosen channel
	MonitorSpectrumModeOneChannel MonitorSpectrumMode = iota
	// Average the spectra of all channels
	MonitorSpectrumModeAvgChannels
)

type MonitorSpectrumConfig struct {
	Mode MonitorSpectrumMode
	// Which channel to analyze in one-channel mode
	ChannelChosen uint8
	// Advance a full window at a time instead of half
	FullWindowProgression bool
	// Window size in frames; must be a power of 2
	Window uint32
	// How many windows the output is smoothed over
	Smoothing uint32
	// Display floor in dB
	Floor int32
	// Display ceiling in dB
	Ceiling int32
}

type MonitorSpectrum struct {
	DSPHeader
	Config MonitorSpectrumConfig

	// Samplerate of the last analyzed input, for bin labeling.
	Samplerate uint32

	inputBuffer             []float32
	inputBufferUsed         uint32
	inputBufferChannelCount uint8
	// window/2+1 magnitudes followed by phases.
	outputBuffer []float32
	numCounted   uint32
}

var _ DSP = (*MonitorSpectrum)(nil)

func MonitorSpectrumInit(data *MonitorSpectrum, config MonitorSpectrumConfig) {
	*data = MonitorSpectrum{}
	data.DSPHeader = DSPHeader{Name: "Spectrum Monitor", Version: 1}
	data.Config = config
}

func MakeMonitorSpectrum(config MonitorSpectrumConfig) *MonitorSpectrum {
	result := &MonitorSpectrum{}
	MonitorSpectrumInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultMonitorSpectrum() *MonitorSpectrum {
	return MakeMonitorSpectrum(MonitorSpectrumConfig{
		Mode:                  MonitorSpectrumModeAvgChannels,
		FullWindowProgression: false,
		Window:                1024,
		Smoothing:             1,
		Floor:                 -96,
		Ceiling:               12,
	})
}

func (data *MonitorSpectrum) Reset() {
	clear(data.outputBuffer)
	data.numCounted = 0
	data.inputBufferUsed = 0
}

func (data *MonitorSpectrum) ResetChannels(firstChannel, channelCount uint32) {
	// Nothing to do :)
}

// The smoothed spectrum: window/2+1 magnitudes. Read from the thread
// that owns the display.
func (data *MonitorSpectrum) Magnitudes() []float32 {
	if data.outputBuffer == nil {
		return nil
	}
	return data.outputBuffer[:data.Config.Window/2+1]
}

func (data *MonitorSpectrum) handleBufferResizes(buffer *Buffer) {
	requiredInputCapacity := data.Config.Window * uint32(buffer.ChannelLayout.Count)
	if int(requiredInputCapacity) > len(data.inputBuffer) {
		// Don't bother carrying data over
		data.inputBuffer = make([]float32, requiredInputCapacity)
		data.inputBufferUsed = 0
	}
	if data.inputBufferChannelCount != buffer.ChannelLayout.Count {
		data.inputBufferChannelCount = buffer.ChannelLayout.Count
		data.inputBufferUsed = 0
	}
	requiredOutputCapacity := data.Config.Window * 2
	if int(requiredOutputCapacity) > len(data.outputBuffer) {
		data.outputBuffer = make([]float32, requiredOutputCapacity)
	}
}

// offset is the frame offset into buffer to start from.
// Returns how many frames were consumed.
func (data *MonitorSpectrum) primeBuffer(buffer *Buffer, offset uint32) uint32 {
	used := min(data.Config.Window-data.inputBufferUsed, buffer.Frames-offset)
	if used > 0 {
		channels := uint32(data.inputBufferChannelCount)
		dst := Buffer{
			Samples:       data.inputBuffer[channels*data.inputBufferUsed:],
			Samplerate:    buffer.Samplerate,
			Frames:        used,
			Stride:        uint16(channels),
			ChannelLayout: buffer.ChannelLayout,
		}
		src := buffer.Slice(offset, used)
		BufferCopy(&dst, &src)
		data.inputBufferUsed += used
	}
	return used
}

func (data *MonitorSpectrum) applyWindow(buffer []float32) {
	frames := len(buffer)
	for i := 0; i < frames; i++ {
		t := float32(i) / float32(frames)
		// Blackman-Harris, divided by its integral to keep unity gain
		buffer[i] *= windowBlackmanHarrisf(t) / windowBlackmanHarrisIntegral
	}
}

// FFTs one channel of the accumulated window and smooths the result in.
func (data *MonitorSpectrum) analyzeChannel(inputBuffer *Buffer, channel uint8, mix float32) {
	window := data.Config.Window
	full := PushSideBuffer(window*2, 0, 0, 1, data.Samplerate)
	defer PopSideBuffer()
	real := full.Samples[:window]
	imag := full.Samples[window : window*2]
	realBuffer := Buffer{
		Samples:       real,
		Samplerate:    data.Samplerate,
		Frames:        window,
		Stride:        1,
		ChannelLayout: ChannelLayoutMono(),
	}
	BufferCopyChannel(&realBuffer, 0, inputBuffer, channel)
	clear(imag)
	data.applyWindow(real)
	FFT(real, imag, window)
	bins := (window >> 1) + 1
	for i := uint32(0); i < bins; i++ {
		x := real[i]
		y := imag[i]
		mag := sqrtf(x*x+y*y) / float32(bins)
		phase := atan2f(y, x)
		real[i] = mag
		imag[i] = phase
	}
	// Smooth the magnitude+phase pairs into the output
	out := data.outputBuffer[:window*2]
	for i := uint32(0); i < window*2; i++ {
		out[i] = out[i]*(1.0-mix) + full.Samples[i]*mix
	}
}

func (data *MonitorSpectrum) Process(dst, src *Buffer, flags uint32) error {
	if flags&ProcessCut != 0 {
		data.Reset()
	}

	if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
		return err
	}

	if data.Config.Window == 0 || (data.Config.Window&(data.Config.Window-1)) != 0 {
		logError("MonitorSpectrum: window must be a power of 2, got %d", data.Config.Window)
		return ErrInvalidConfiguration
	}

	data.handleBufferResizes(src)

	if dst.ChannelLayout.Count < data.prevChannelCountDst && data.Config.ChannelChosen >= dst.ChannelLayout.Count {
		data.Config.ChannelChosen = dst.ChannelLayout.Count - 1
	}
	data.trackChannelCounts(dst, src)

	// This is a monitor: audio passes through untouched.
	if &dst.Samples[0] != &src.Samples[0] {
		BufferCopy(dst, src)
	}

	data.Samplerate = src.Samplerate
	for offset := uint32(0); offset < src.Frames; {
		used := data.primeBuffer(src, offset)
		offset += used
		for data.inputBufferUsed >= data.Config.Window {
			channels := uint32(data.inputBufferChannelCount)
			inputBuffer := Buffer{
				Samples:       data.inputBuffer,
				Samplerate:    data.Samplerate,
				Frames:        data.Config.Window,
				Stride:        uint16(channels),
				ChannelLayout: ChannelLayoutDefaultFromCount(data.inputBufferChannelCount),
			}
			switch data.Config.Mode {
			case MonitorSpectrumModeOneChannel:
				channelChosen := data.Config.ChannelChosen
				if channelChosen >= data.inputBufferChannelCount {
					channelChosen = 0
				}
				mix := 1.0 / float32(1+data.numCounted)
				data.analyzeChannel(&inputBuffer, channelChosen, mix)
				data.numCounted = min(data.numCounted+1, data.Config.Smoothing)
			case MonitorSpectrumModeAvgChannels:
				for c := uint8(0); c < data.inputBufferChannelCount; c++ {
					mix := 1.0 / float32(1+uint32(c)+data.numCounted*channels)
					data.analyzeChannel(&inputBuffer, c, mix)
					data.numCounted = min(data.numCounted+1, data.Config.Smoothing)
				}
			}
			if data.Config.FullWindowProgression {
				data.inputBufferUsed -= data.Config.Window
				if data.inputBufferUsed > 0 {
					copy(data.inputBuffer, data.inputBuffer[data.Config.Window*channels:(data.Config.Window+data.inputBufferUsed)*channels])
				}
			} else {
				// Shift by half a window each time
				halfWindow := data.Config.Window >> 1
				data.inputBufferUsed -= halfWindow
				copy(data.inputBuffer, data.inputBuffer[halfWindow*channels:(halfWindow+data.inputBufferUsed)*channels])
			}
		}
		if used == 0 {
			break
		}
	}
	return nil
}
