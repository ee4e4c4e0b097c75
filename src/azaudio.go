package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Main entry point to using the AzAudio library.
 *
 *		Init wires up everything that must happen exactly once
 *		before any DSP or streaming: log level from the
 *		environment, CPU feature dispatch, the default Lanczos
 *		kernels, oscillator tables, the plugin registry and the
 *		hardware backend. Deinit tears the backend down again.
 *
 *---------------------------------------------------------------*/

const (
	SamplerateDefault = 48000
	ChannelsDefault   = 2
)

func Init() error {
	logLevelFromEnvironment()
	cpuIDInit()
	dispatchInit()
	logInfo("AzAudio Version: %s", VersionString)

	kernelDefaultsInit()
	dspRegistryInit()
	initOscillators()

	return backendInit()
}

func Deinit() {
	backendDeinit()
}
