package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Interface to the audio device commonly called a "sound
 *		card" for historical reasons.
 *
 *		Several backends are supported:
 *
 *		* portaudio - full duplex with device enumeration,
 *		  wherever PortAudio runs.
 *
 *		* oto - output only, no native dependencies beyond the
 *		  platform audio API.
 *
 *		* null - a timer-driven backend with no hardware at
 *		  all, for tests and offline processing.
 *
 *		Backends are selected at runtime: AZAUDIO_BACKEND picks
 *		one by name, otherwise the first backend that loads
 *		wins. Only one backend is active per process.
 *
 *		A stream calls its process callback at device-chosen
 *		block sizes with interleaved float32 buffers. A nonzero
 *		error returned from the callback aborts the stream.
 *		Stream init can commit the chosen format back into the
 *		stream config so the caller can query what it got.
 *
 *---------------------------------------------------------------*/

import (
	"os"
)

type DeviceInterface uint8

const (
	DeviceOutput DeviceInterface = iota
	DeviceInput
)

type DeviceInfo struct {
	Name     string
	Channels uint8
}

type StreamConfig struct {
	// Empty chooses the backend's default device.
	DeviceName string
	// 0 lets the device choose.
	Samplerate uint32
	// A zero Count lets the device choose.
	ChannelLayout ChannelLayout
}

const (
	// Write the format the device actually chose back into Config.
	StreamCommitFormat uint32 = 1 << iota
)

// The audio thread calls this once per block. dst is what the device
// will play; src holds capture data for input streams (for pure output
// streams dst and src are the same buffer). Returning an error aborts
// the stream.
type ProcessCallback func(dst, src *Buffer, flags uint32) error

type Stream struct {
	ProcessCallback ProcessCallback
	Config          StreamConfig
	DeviceInterface DeviceInterface

	backend backendAPI
	// Backend-private state.
	impl any
}

type backendAPI interface {
	name() string
	init() error
	deinit()
	devices(deviceInterface DeviceInterface) ([]DeviceInfo, error)
	streamInit(stream *Stream, flags uint32) error
	streamDeinit(stream *Stream)
	streamSetActive(stream *Stream, active bool)
	streamGetActive(stream *Stream) bool
	streamBufferFrameCount(stream *Stream) uint32
}

var activeBackend backendAPI

func backendInit() error {
	candidates := []backendAPI{
		&backendPortaudio{},
		&backendOto{},
		&backendNull{},
	}
	if want := os.Getenv("AZAUDIO_BACKEND"); want != "" {
		for _, backend := range candidates {
			if backend.name() == want {
				candidates = []backendAPI{backend}
				break
			}
		}
	}
	for _, backend := range candidates {
		if err := backend.init(); err != nil {
			logInfo("backend %q unavailable: %v", backend.name(), err)
			continue
		}
		logInfo("using backend %q", backend.name())
		activeBackend = backend
		return nil
	}
	return ErrBackendUnavailable
}

func backendDeinit() {
	if activeBackend != nil {
		activeBackend.deinit()
		activeBackend = nil
	}
}

// The name of the backend that won selection, or "" before Init.
func BackendName() string {
	if activeBackend == nil {
		return ""
	}
	return activeBackend.name()
}

// Enumerates devices on the active backend.
func Devices(deviceInterface DeviceInterface) ([]DeviceInfo, error) {
	if activeBackend == nil {
		return nil, ErrBackendUnavailable
	}
	return activeBackend.devices(deviceInterface)
}

func StreamInit(stream *Stream, config StreamConfig, deviceInterface DeviceInterface, flags uint32) error {
	if activeBackend == nil {
		return ErrBackendUnavailable
	}
	if stream.ProcessCallback == nil {
		logError("StreamInit error: no process callback provided.")
		return ErrNullPointer
	}
	stream.Config = config
	stream.DeviceInterface = deviceInterface
	stream.backend = activeBackend
	return activeBackend.streamInit(stream, flags)
}

// Like StreamInit with an all-default config, always committing the
// chosen format.
func StreamInitDefault(stream *Stream, deviceInterface DeviceInterface, activate bool) error {
	if err := StreamInit(stream, StreamConfig{}, deviceInterface, StreamCommitFormat); err != nil {
		return err
	}
	if activate {
		stream.SetActive(true)
	}
	return nil
}

func (stream *Stream) Deinit() {
	if stream.backend != nil {
		stream.backend.streamDeinit(stream)
		stream.backend = nil
		stream.impl = nil
	}
}

func (stream *Stream) SetActive(active bool) {
	if stream.backend != nil {
		stream.backend.streamSetActive(stream, active)
	}
}

func (stream *Stream) GetActive() bool {
	return stream.backend != nil && stream.backend.streamGetActive(stream)
}

// The device-chosen block size in frames.
func (stream *Stream) BufferFrameCount() uint32 {
	if stream.backend == nil {
		return 0
	}
	return stream.backend.streamBufferFrameCount(stream)
}

func (stream *Stream) Samplerate() uint32 {
	if stream.Config.Samplerate != 0 {
		return stream.Config.Samplerate
	}
	return SamplerateDefault
}

func (stream *Stream) ChannelLayout() ChannelLayout {
	if stream.Config.ChannelLayout.Count != 0 {
		return stream.Config.ChannelLayout
	}
	return ChannelLayoutDefaultFromCount(ChannelsDefault)
}

func (stream *Stream) DeviceName() string {
	return stream.Config.DeviceName
}
