//go:build !cgo

package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Stand-in for the PortAudio backend on builds without
 *		cgo, where github.com/gordonklaus/portaudio cannot be
 *		compiled at all. Always reports itself unavailable so
 *		backend selection falls through to the next candidate.
 *
 *---------------------------------------------------------------*/

type backendPortaudio struct{}

func (b *backendPortaudio) name() string { return "portaudio" }

func (b *backendPortaudio) init() error { return ErrBackendUnavailable }

func (b *backendPortaudio) deinit() {}

func (b *backendPortaudio) devices(deviceInterface DeviceInterface) ([]DeviceInfo, error) {
	return nil, ErrBackendUnavailable
}

func (b *backendPortaudio) streamInit(stream *Stream, flags uint32) error {
	return ErrBackendUnavailable
}

func (b *backendPortaudio) streamDeinit(stream *Stream) {}

func (b *backendPortaudio) streamSetActive(stream *Stream, active bool) {}

func (b *backendPortaudio) streamGetActive(stream *Stream) bool { return false }

func (b *backendPortaudio) streamBufferFrameCount(stream *Stream) uint32 { return 0 }
