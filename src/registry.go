package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Catalog of plugin constructors, for discovery by name.
 *		A GUI populates its "add plugin" menu from this; the
 *		mixer session loader resolves plugin names through it
 *		too.
 *
 *---------------------------------------------------------------*/

import "sync"

type DSPRegEntry struct {
	Name string
	// Makes a node with default configuration. The result is owned by
	// whoever appends it to a chain.
	Make func() DSP
}

var (
	dspRegistryMutex sync.Mutex
	dspRegistry      []DSPRegEntry
)

// Registers a constructor. Replaces any existing entry with the same name.
func DSPAddRegEntry(name string, makeDSP func() DSP) {
	dspRegistryMutex.Lock()
	defer dspRegistryMutex.Unlock()
	for i := range dspRegistry {
		if dspRegistry[i].Name == name {
			dspRegistry[i].Make = makeDSP
			return
		}
	}
	dspRegistry = append(dspRegistry, DSPRegEntry{Name: name, Make: makeDSP})
}

// Returns a snapshot of all registered entries in registration order.
func DSPRegistryEntries() []DSPRegEntry {
	dspRegistryMutex.Lock()
	defer dspRegistryMutex.Unlock()
	result := make([]DSPRegEntry, len(dspRegistry))
	copy(result, dspRegistry)
	return result
}

// Makes a node by registered name, or nil if the name is unknown.
func MakeDSPByName(name string) DSP {
	dspRegistryMutex.Lock()
	defer dspRegistryMutex.Unlock()
	for i := range dspRegistry {
		if dspRegistry[i].Name == name {
			return dspRegistry[i].Make()
		}
	}
	return nil
}

func dspRegistryInit() {
	DSPAddRegEntry("RMS", func() DSP { return MakeDefaultRMS() })
	DSPAddRegEntry("Cubic Limiter", func() DSP { return MakeDefaultCubicLimiter() })
	DSPAddRegEntry("Lookahead Limiter", func() DSP { return MakeDefaultLookaheadLimiter() })
	DSPAddRegEntry("Filter", func() DSP { return MakeDefaultFilter() })
	DSPAddRegEntry("Compressor", func() DSP { return MakeDefaultCompressor() })
	DSPAddRegEntry("Gate", func() DSP { return MakeDefaultGate() })
	DSPAddRegEntry("Delay", func() DSP { return MakeDefaultDelay() })
	DSPAddRegEntry("Dynamic Delay", func() DSP { return MakeDefaultDelayDynamic() })
	DSPAddRegEntry("Reverb", func() DSP { return MakeDefaultReverb() })
	DSPAddRegEntry("Sampler", func() DSP { return MakeDefaultSampler() })
	DSPAddRegEntry("Spatialize", func() DSP { return MakeDefaultSpatialize() })
	DSPAddRegEntry("Spectrum Monitor", func() DSP { return MakeDefaultMonitorSpectrum() })
	DSPAddRegEntry("DSP Debugger", func() DSP { return MakeDefaultDSPDebugger() })
}
