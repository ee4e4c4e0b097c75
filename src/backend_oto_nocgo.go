//go:build !cgo

package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Stand-in for the Oto backend on builds without cgo,
 *		where github.com/ebitengine/oto/v3's Linux/Unix driver
 *		cannot be compiled at all. Always reports itself
 *		unavailable so backend selection falls through to the
 *		next candidate.
 *
 *---------------------------------------------------------------*/

type backendOto struct{}

func (b *backendOto) name() string { return "oto" }

func (b *backendOto) init() error { return ErrBackendUnavailable }

func (b *backendOto) deinit() {}

func (b *backendOto) devices(deviceInterface DeviceInterface) ([]DeviceInfo, error) {
	return nil, ErrBackendUnavailable
}

func (b *backendOto) streamInit(stream *Stream, flags uint32) error {
	return ErrBackendUnavailable
}

func (b *backendOto) streamDeinit(stream *Stream) {}

func (b *backendOto) streamSetActive(stream *Stream, active bool) {}

func (b *backendOto) streamGetActive(stream *Stream) bool { return false }

func (b *backendOto) streamBufferFrameCount(stream *Stream) uint32 { return 0 }
