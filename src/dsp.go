package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	The plugin contract every DSP node implements.
 *
 *		A node reads src and writes dst, which may alias. The
 *		cut flag signals that the caller discontinued the audio
 *		(transport jump, seek) and the node must reset delay
 *		lines, followers and meters. Bypass is handled out here
 *		in DSPProcess so nodes never see it: a bypassed node
 *		passes src through untouched with no side effects.
 *
 *		Nodes track the channel count of the previous call.
 *		When dst grows channels, state for the new channels is
 *		reset first so stale per-channel memory doesn't bleed
 *		into new outputs.
 *
 *		Errors from a node's process are latched on its header
 *		by the track processing loop so one misbehaving plugin
 *		doesn't drop audio; a GUI can display and clear them.
 *
 *---------------------------------------------------------------*/

const (
	// The caller has discontinued audio; reset all internal history.
	ProcessCut uint32 = 1 << iota
)

// A node's contribution to overall delay and the guard-sample
// requirements it imposes on its input buffer.
type DSPSpecs struct {
	LatencyFrames  uint32
	LeadingFrames  uint32
	TrailingFrames uint32
}

// Accumulates the specs of a node running after us.
func (specs *DSPSpecs) CombineSerial(other DSPSpecs) {
	specs.LatencyFrames += other.LatencyFrames
	specs.LeadingFrames = max(specs.LeadingFrames, other.LeadingFrames)
	specs.TrailingFrames = max(specs.TrailingFrames, other.TrailingFrames)
}

// Accumulates the specs of a node running alongside us.
func (specs *DSPSpecs) CombineParallel(other DSPSpecs) {
	specs.LatencyFrames = max(specs.LatencyFrames, other.LatencyFrames)
	specs.LeadingFrames = max(specs.LeadingFrames, other.LeadingFrames)
	specs.TrailingFrames = max(specs.TrailingFrames, other.TrailingFrames)
}

type DSP interface {
	Header() *DSPHeader
	// Reads src, writes dst. src and dst may alias.
	Process(dst, src *Buffer, flags uint32) error
	// Reports latency and guard-sample requirements. Optional; the
	// embedded header provides the all-zero default.
	GetSpecs(samplerate uint32) DSPSpecs
	// Releases anything the node owns.
	Free()
}

// Common state embedded at the top of every plugin.
type DSPHeader struct {
	Name    string
	Version uint32
	// The chain owning this node frees it on deinit.
	Owned bool
	// Pass audio through untouched.
	Bypass bool
	// Someone (a GUI) is looking at this node; keep its meters fed.
	Selected bool
	// Latched error from the last failing process call.
	Err error

	prevChannelCountDst uint8
	prevChannelCountSrc uint8
}

func (h *DSPHeader) Header() *DSPHeader { return h }

func (h *DSPHeader) GetSpecs(samplerate uint32) DSPSpecs { return DSPSpecs{} }

func (h *DSPHeader) Free() {}

// Returns how many destination channels were just added compared to the
// previous call, after recording the new count. Plugins reset state for
// that range before using it.
func (h *DSPHeader) trackChannelCounts(dst, src *Buffer) (firstNewChannel, newChannelCount uint32) {
	if dst.ChannelLayout.Count > h.prevChannelCountDst {
		firstNewChannel = uint32(h.prevChannelCountDst)
		newChannelCount = uint32(dst.ChannelLayout.Count) - firstNewChannel
	}
	h.prevChannelCountDst = dst.ChannelLayout.Count
	h.prevChannelCountSrc = src.ChannelLayout.Count
	return
}

// Calls a node's process with bypass handling. This is what chains and
// tracks go through; call the node's Process directly only if you want
// to ignore bypass.
func DSPProcess(dsp DSP, dst, src *Buffer, flags uint32) error {
	if dsp == nil {
		return ErrNullPointer
	}
	if dsp.Header().Bypass {
		if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
			return err
		}
		if &dst.Samples[0] != &src.Samples[0] {
			BufferCopy(dst, src)
		}
		return nil
	}
	return dsp.Process(dst, src, flags)
}

// Frees a node if its chain owns it.
func FreeDSP(dsp DSP) {
	if dsp == nil {
		return
	}
	if dsp.Header().Owned {
		dsp.Free()
	}
}
