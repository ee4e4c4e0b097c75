package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Error codes shared by the whole library.
 *
 *		DSP process functions return these directly. The mixer
 *		latches per-plugin errors on the plugin header instead of
 *		aborting the chain, so one misbehaving plugin doesn't
 *		drop audio for everyone else.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
)

type ErrorCode int

const (
	// The operation completed successfully. Functions return nil rather than Success.
	Success ErrorCode = iota
	// A memory allocation or bounded capacity was exhausted
	ErrOutOfMemory
	// A backend is not available on this system
	ErrBackendUnavailable
	// Failed to initialize a backend
	ErrBackendLoadError
	// A backend produced an error
	ErrBackendError
	// There are no sound devices available to create a Stream
	ErrNoDevicesAvailable
	// A pointer was unexpectedly nil
	ErrNullPointer
	// A dsp function was given a buffer with no channels, or an otherwise incorrect number of channels for the specific DSP
	ErrInvalidChannelCount
	// A dsp function was given a buffer with no frames
	ErrInvalidFrameCount
	// Something wasn't configured right... check the log
	ErrInvalidConfiguration
	// Two buffers were expected to have the same number of channels, but they didn't
	ErrMismatchedChannelCount
	// Two buffers were expected to have the same number of frames, but they didn't
	ErrMismatchedFrameCount
	// Two buffers were expected to have the same samplerate, but they didn't
	ErrMismatchedSamplerate
	// Attempted to process a Mixer with circular track routing
	ErrMixerRoutingCycle
)

var errorStrings = [...]string{
	"Success",
	"OutOfMemory",
	"BackendUnavailable",
	"BackendLoadError",
	"BackendError",
	"NoDevicesAvailable",
	"NullPointer",
	"InvalidChannelCount",
	"InvalidFrameCount",
	"InvalidConfiguration",
	"MismatchedChannelCount",
	"MismatchedFrameCount",
	"MismatchedSamplerate",
	"MixerRoutingCycle",
}

func (e ErrorCode) Error() string {
	if e >= 0 && int(e) < len(errorStrings) {
		return errorStrings[e]
	}
	return fmt.Sprintf("Unknown Error 0x%x", int(e))
}
