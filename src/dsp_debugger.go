package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	A plugin with some config settings for debugging plugin
 *		chains. Passes audio through untouched and reports
 *		whatever specs you tell it to, to exercise latency
 *		compensation paths.
 *
 *---------------------------------------------------------------*/

type DSPDebuggerConfig struct {
	SpecsToReport DSPSpecs
}

type DSPDebugger struct {
	DSPHeader
	Config DSPDebuggerConfig
}

var _ DSP = (*DSPDebugger)(nil)

func DSPDebuggerInit(data *DSPDebugger, config DSPDebuggerConfig) {
	data.DSPHeader = DSPHeader{Name: "DSP Debugger", Version: 1}
	data.Config = config
}

func MakeDSPDebugger(config DSPDebuggerConfig) *DSPDebugger {
	result := &DSPDebugger{}
	DSPDebuggerInit(result, config)
	result.Owned = true
	return result
}

func MakeDefaultDSPDebugger() *DSPDebugger {
	return MakeDSPDebugger(DSPDebuggerConfig{})
}

func (data *DSPDebugger) Process(dst, src *Buffer, flags uint32) error {
	if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
		return err
	}
	if &dst.Samples[0] != &src.Samples[0] {
		BufferCopy(dst, src)
	}
	return nil
}

func (data *DSPDebugger) GetSpecs(samplerate uint32) DSPSpecs {
	return data.Config.SpecsToReport
}
