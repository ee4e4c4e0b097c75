package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	User-defined plugin: wraps an application callback in
 *		the DSP contract so synths and one-off effects can sit
 *		in a chain next to the built-in catalog.
 *
 *---------------------------------------------------------------*/

// The callback does the actual processing. dst and src may alias.
type UserProcessFunc func(userdata any, dst, src *Buffer, flags uint32) error

type DSPUser struct {
	DSPHeader
	Userdata any

	processCallback UserProcessFunc
	getSpecs        func(userdata any, samplerate uint32) DSPSpecs
}

var _ DSP = (*DSPUser)(nil)

func DSPUserInit(data *DSPUser, name string, userdata any, processCallback UserProcessFunc) {
	data.DSPHeader = DSPHeader{Name: name, Version: 1}
	data.Userdata = userdata
	data.processCallback = processCallback
}

func MakeDSPUser(name string, userdata any, processCallback UserProcessFunc) *DSPUser {
	result := &DSPUser{}
	DSPUserInit(result, name, userdata, processCallback)
	result.Owned = true
	return result
}

// Optional latency reporting for the wrapped callback.
func (data *DSPUser) SetSpecsCallback(getSpecs func(userdata any, samplerate uint32) DSPSpecs) {
	data.getSpecs = getSpecs
}

func (data *DSPUser) Process(dst, src *Buffer, flags uint32) error {
	if data.processCallback == nil {
		return ErrNullPointer
	}
	if err := checkBuffersForDSPProcess(dst, src, true, false); err != nil {
		return err
	}
	return data.processCallback(data.Userdata, dst, src, flags)
}

func (data *DSPUser) GetSpecs(samplerate uint32) DSPSpecs {
	if data.getSpecs != nil {
		return data.getSpecs(data.Userdata, samplerate)
	}
	return DSPSpecs{}
}
