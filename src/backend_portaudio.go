//go:build cgo

package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	PortAudio backend: full duplex streaming and device
 *		enumeration via github.com/gordonklaus/portaudio.
 *
 *		Audio flows interleaved float32 both ways, which
 *		matches our buffers exactly, so the callback only has
 *		to wrap the slices.
 *
 *---------------------------------------------------------------*/

import (
	"github.com/gordonklaus/portaudio"
)

// Frames per callback block when the device doesn't care.
const portaudioBlockFrames = 512

type backendPortaudio struct{}

type portaudioStreamData struct {
	stream     *portaudio.Stream
	active     bool
	samplerate uint32
	layout     ChannelLayout
	frames     uint32
	// Kept between callbacks to avoid per-block allocation.
	dst Buffer
	src Buffer
}

func (b *backendPortaudio) name() string { return "portaudio" }

func (b *backendPortaudio) init() error {
	if err := portaudio.Initialize(); err != nil {
		return ErrBackendLoadError
	}
	return nil
}

func (b *backendPortaudio) deinit() {
	if err := portaudio.Terminate(); err != nil {
		logError("portaudio.Terminate: %v", err)
	}
}

func (b *backendPortaudio) devices(deviceInterface DeviceInterface) ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, ErrBackendError
	}
	var result []DeviceInfo
	for _, device := range devices {
		channels := device.MaxOutputChannels
		if deviceInterface == DeviceInput {
			channels = device.MaxInputChannels
		}
		if channels <= 0 {
			continue
		}
		if channels > MaxChannelPositions {
			channels = MaxChannelPositions
		}
		result = append(result, DeviceInfo{Name: device.Name, Channels: uint8(channels)})
	}
	if len(result) == 0 {
		return nil, ErrNoDevicesAvailable
	}
	return result, nil
}

func (b *backendPortaudio) chooseDevice(stream *Stream) (*portaudio.DeviceInfo, error) {
	if stream.Config.DeviceName != "" {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, ErrBackendError
		}
		for _, device := range devices {
			if device.Name == stream.Config.DeviceName {
				logInfo("Chose device by name: %q", device.Name)
				return device, nil
			}
		}
		logError("device %q not found, falling back to the default", stream.Config.DeviceName)
	}
	var device *portaudio.DeviceInfo
	var err error
	if stream.DeviceInterface == DeviceInput {
		device, err = portaudio.DefaultInputDevice()
	} else {
		device, err = portaudio.DefaultOutputDevice()
	}
	if err != nil {
		return nil, ErrNoDevicesAvailable
	}
	return device, nil
}

func (b *backendPortaudio) streamInit(stream *Stream, flags uint32) error {
	device, err := b.chooseDevice(stream)
	if err != nil {
		return err
	}

	data := &portaudioStreamData{}
	data.samplerate = stream.Config.Samplerate
	if data.samplerate == 0 {
		data.samplerate = uint32(device.DefaultSampleRate)
		if data.samplerate == 0 {
			data.samplerate = SamplerateDefault
		}
	}
	data.layout = stream.Config.ChannelLayout
	if data.layout.Count == 0 {
		channels := device.MaxOutputChannels
		if stream.DeviceInterface == DeviceInput {
			channels = device.MaxInputChannels
		}
		if channels > ChannelsDefault {
			channels = ChannelsDefault
		}
		if channels < 1 {
			channels = 1
		}
		data.layout = ChannelLayoutDefaultFromCount(uint8(channels))
	}
	data.frames = portaudioBlockFrames
	logInfo("Channels: %d, Samplerate: %d", data.layout.Count, data.samplerate)

	params := portaudio.StreamParameters{
		SampleRate:      float64(data.samplerate),
		FramesPerBuffer: int(data.frames),
	}
	deviceParams := portaudio.StreamDeviceParameters{
		Device:   device,
		Channels: int(data.layout.Count),
		Latency:  device.DefaultLowOutputLatency,
	}
	var callback any
	if stream.DeviceInterface == DeviceInput {
		deviceParams.Latency = device.DefaultLowInputLatency
		params.Input = deviceParams
		callback = func(in []float32) {
			b.processInput(stream, data, in)
		}
	} else {
		params.Output = deviceParams
		callback = func(out []float32) {
			b.processOutput(stream, data, out)
		}
	}
	paStream, paErr := portaudio.OpenStream(params, callback)
	if paErr != nil {
		logError("portaudio.OpenStream: %v", paErr)
		return ErrBackendError
	}
	data.stream = paStream
	stream.impl = data

	if flags&StreamCommitFormat != 0 {
		stream.Config.DeviceName = device.Name
		stream.Config.Samplerate = data.samplerate
		stream.Config.ChannelLayout = data.layout
	}
	return nil
}

func (b *backendPortaudio) wrap(data *portaudioStreamData, samples []float32) Buffer {
	frames := uint32(len(samples)) / uint32(data.layout.Count)
	return Buffer{
		Samples:       samples,
		Samplerate:    data.samplerate,
		Frames:        frames,
		Stride:        uint16(data.layout.Count),
		ChannelLayout: data.layout,
	}
}

func (b *backendPortaudio) processOutput(stream *Stream, data *portaudioStreamData, out []float32) {
	data.dst = b.wrap(data, out)
	data.dst.Zero()
	if err := stream.ProcessCallback(&data.dst, &data.dst, 0); err != nil {
		logError("stream callback: %v", err)
		b.streamSetActive(stream, false)
	}
}

func (b *backendPortaudio) processInput(stream *Stream, data *portaudioStreamData, in []float32) {
	data.src = b.wrap(data, in)
	if err := stream.ProcessCallback(&data.src, &data.src, 0); err != nil {
		logError("stream callback: %v", err)
		b.streamSetActive(stream, false)
	}
}

func (b *backendPortaudio) streamDeinit(stream *Stream) {
	data, ok := stream.impl.(*portaudioStreamData)
	if !ok {
		return
	}
	b.streamSetActive(stream, false)
	if err := data.stream.Close(); err != nil {
		logError("portaudio close: %v", err)
	}
}

func (b *backendPortaudio) streamSetActive(stream *Stream, active bool) {
	data, ok := stream.impl.(*portaudioStreamData)
	if !ok || data.active == active {
		return
	}
	var err error
	if active {
		err = data.stream.Start()
	} else {
		err = data.stream.Stop()
	}
	if err != nil {
		logError("portaudio set active %v: %v", active, err)
		return
	}
	data.active = active
}

func (b *backendPortaudio) streamGetActive(stream *Stream) bool {
	data, ok := stream.impl.(*portaudioStreamData)
	return ok && data.active
}

func (b *backendPortaudio) streamBufferFrameCount(stream *Stream) uint32 {
	data, ok := stream.impl.(*portaudioStreamData)
	if !ok {
		return 0
	}
	return data.frames
}
