package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	General purpose mixer with track routing and DSP
 *		plugins.
 *
 *		Tracks form a directed graph through receives: a
 *		receive sums a source track's output into this track's
 *		input through a gain and a channel routing matrix.
 *		Processing walks the graph leaves-first from the master
 *		track, memoized with a processed flag; a depth-first
 *		pre-pass detects routing cycles, and a cycle silences
 *		the master for that block instead of killing the stream
 *		so runtime routing edits stay recoverable.
 *
 *		Topology (tracks, receives, plugins) only changes under
 *		the mixer mutex, which the audio thread holds for the
 *		duration of a process call.
 *
 *---------------------------------------------------------------*/

import (
	"sync"
	"time"
)

type TrackRoute struct {
	Track         *Track
	Gain          float32
	Mute          bool
	ChannelMatrix ChannelMatrix
}

func (route *TrackRoute) deinit() {
	route.ChannelMatrix = ChannelMatrix{}
}

// A track has the capabilities of a bus and can have sound sources on it.
type Track struct {
	Name   string
	Buffer Buffer
	// Plugin chain, including synths and samplers
	DSP      DSPChain
	Receives []TrackRoute
	// Gain in dB applied after the chain
	Gain   float32
	Mute   bool
	Meters Meters

	processed bool
	// Used to determine whether routing is cyclic.
	mark uint8
}

func TrackInit(data *Track, bufferFrames uint32, bufferChannelLayout ChannelLayout) error {
	return data.Buffer.Init(bufferFrames, 0, 0, bufferChannelLayout)
}

func (data *Track) Deinit() {
	data.Buffer.Deinit(true)
	data.DSP.Deinit()
	for i := range data.Receives {
		data.Receives[i].deinit()
	}
	data.Receives = nil
}

// Adds a dsp to the end of the dsp chain
func (data *Track) AppendDSP(dsp DSP) {
	data.DSP.Append(dsp)
}

// Adds a dsp to the beginning of the dsp chain
func (data *Track) PrependDSP(dsp DSP) {
	data.DSP.Prepend(dsp)
}

func (data *Track) InsertDSP(dsp DSP, before DSP) {
	data.DSP.Insert(dsp, before)
}

// Removes the dsp from the chain without freeing it.
func (data *Track) RemoveDSP(dsp DSP) {
	data.DSP.Remove(dsp)
}

const (
	// Tells TrackConnect not to generate any default values for the
	// channelMatrix (leaving them all at zero)
	TrackChannelRoutingZero uint32 = 0x0001
)

// Routes the output of from to the input of to (bet you had to reread
// that a few times). Returns the connection that was made (or the
// existing one); the pointer is only valid until the receives list next
// changes, so don't hold on to it.
func TrackConnect(from, to *Track, gain float32, flags uint32) *TrackRoute {
	for i := range to.Receives {
		if to.Receives[i].Track == from {
			to.Receives[i].Gain = gain
			return &to.Receives[i]
		}
	}
	route := TrackRoute{
		Track: from,
		Gain:  gain,
	}
	ChannelMatrixInit(&route.ChannelMatrix, from.Buffer.ChannelLayout.Count, to.Buffer.ChannelLayout.Count)
	if flags&TrackChannelRoutingZero == 0 {
		ChannelMatrixGenerateRoutingFromLayouts(&route.ChannelMatrix, from.Buffer.ChannelLayout, to.Buffer.ChannelLayout)
	}
	to.Receives = append(to.Receives, route)
	return &to.Receives[len(to.Receives)-1]
}

func TrackDisconnect(from, to *Track) {
	for i := range to.Receives {
		if to.Receives[i].Track == from {
			to.Receives[i].deinit()
			to.Receives = append(to.Receives[:i], to.Receives[i+1:]...)
			return
		}
	}
}

func TrackGetReceive(from, to *Track) *TrackRoute {
	for i := range to.Receives {
		if to.Receives[i].Track == from {
			return &to.Receives[i]
		}
	}
	return nil
}

func (data *Track) process(frames, samplerate uint32, observing bool) error {
	if data.processed {
		return nil
	}
	data.Buffer.Samplerate = samplerate
	buffer := data.Buffer.Slice(0, frames)
	buffer.Zero()
	if data.Mute {
		data.processed = true
		return nil
	}
	for i := range data.Receives {
		route := &data.Receives[i]
		if route.Mute || route.Track.Mute {
			continue
		}
		if err := route.Track.process(frames, samplerate, observing); err != nil {
			return err
		}
		// TODO: Latency compensation
		srcBuffer := route.Track.Buffer.Slice(0, frames)
		BufferMixMatrix(&buffer, 1.0, &srcBuffer, dbToAmp(route.Gain), &route.ChannelMatrix)
	}
	for _, dsp := range data.DSP.Steps {
		// TODO: Check when track configuration changed so we can pass the cut flag
		if err := DSPProcess(dsp, &buffer, &buffer, 0); err != nil {
			// Latch the error on the plugin and keep the chain going so
			// one misbehaving plugin doesn't drop audio.
			dsp.Header().Err = err
			logError("Track %q: plugin %q failed: %v", data.Name, dsp.Header().Name, err)
		}
	}
	if data.Gain != 0.0 {
		amp := dbToAmp(data.Gain)
		for i := uint32(0); i < buffer.Frames; i++ {
			for c := uint32(0); c < uint32(buffer.ChannelLayout.Count); c++ {
				buffer.Samples[i*uint32(buffer.Stride)+c] *= amp
			}
		}
	}
	if observing {
		data.Meters.Update(&buffer, 1.0)
	}
	data.processed = true
	return nil
}

type MixerConfig struct {
	// How many frames our track buffers hold. This should probably match
	// the maximum size of the backend buffer, if applicable.
	BufferFrames uint32
}

type Mixer struct {
	Config MixerConfig
	Tracks []*Track
	Master Track
	// Guards topology: adding/removing tracks, plugins and receives.
	Mutex sync.Mutex
	// Whether an observer (a GUI) wants meters fed.
	Observing bool
	// Latched when the last process found circular routing.
	HasCircularRouting bool

	// Rolling CPU usage of the process callback, in percent.
	CPUPercent float32
	// Same, updated only every 20 callbacks so it's readable.
	CPUPercentSlow float32

	tsOfflineStart time.Time
	times          uint32

	// We may optionally own a stream to which we output the contents of master.
	Stream Stream
}

func MixerInit(data *Mixer, config MixerConfig, masterChannelLayout ChannelLayout) error {
	data.Config = config
	if err := TrackInit(&data.Master, config.BufferFrames, masterChannelLayout); err != nil {
		return err
	}
	data.Master.Name = "Master"
	data.tsOfflineStart = time.Now()
	data.CPUPercent = 0.0
	return nil
}

func (data *Mixer) Deinit() {
	for _, track := range data.Tracks {
		track.Deinit()
	}
	data.Tracks = nil
	data.Master.Deinit()
}

// Allocates a track, inserts it at index (or appends if index < 0), and
// optionally connects it to the master at 0dB.
func (data *Mixer) AddTrack(index int, channelLayout ChannelLayout, connectToMaster bool) (*Track, error) {
	result := &Track{}
	data.Mutex.Lock()
	defer data.Mutex.Unlock()
	if err := TrackInit(result, data.Config.BufferFrames, channelLayout); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(data.Tracks) {
		data.Tracks = append(data.Tracks, result)
	} else {
		data.Tracks = append(data.Tracks, nil)
		copy(data.Tracks[index+1:], data.Tracks[index:])
		data.Tracks[index] = result
	}
	if connectToMaster {
		TrackConnect(result, &data.Master, 0.0, 0)
	}
	return result, nil
}

func (data *Mixer) RemoveTrack(index int) {
	if index < 0 || index >= len(data.Tracks) {
		return
	}
	data.Mutex.Lock()
	defer data.Mutex.Unlock()
	track := data.Tracks[index]
	TrackDisconnect(track, &data.Master)
	for _, other := range data.Tracks {
		// Remove our receives from all the tracks
		TrackDisconnect(track, other)
	}
	track.Deinit()
	data.Tracks = append(data.Tracks[:index], data.Tracks[index+1:]...)
}

// How many tracks (including the master) receive from this one.
func (data *Mixer) GetTrackSendCount(track *Track) int {
	count := 0
	if TrackGetReceive(track, &data.Master) != nil {
		count++
	}
	for _, other := range data.Tracks {
		if TrackGetReceive(track, other) != nil {
			count++
		}
	}
	return count
}

// Modified depth-first search for directed graphs to determine whether a
// cycle exists. Co-opted to also reset the processed flags.
func mixerCheckRoutingVisit(track *Track) error {
	track.processed = false
	for i := range track.Receives {
		recv := track.Receives[i].Track
		if recv == nil {
			break
		}
		if recv.mark == 2 {
			continue
		}
		if recv.mark == 1 {
			return ErrMixerRoutingCycle
		}
		recv.mark = 1
		if mixerCheckRoutingVisit(recv) != nil {
			return ErrMixerRoutingCycle
		}
		recv.mark = 2
	}
	return nil
}

func (data *Mixer) checkRouting() error {
	for _, track := range data.Tracks {
		track.mark = 0
	}
	data.Master.mark = 0
	return mixerCheckRoutingVisit(&data.Master)
}

// Processes all the tracks to produce a result into the master track.
// frames MUST be <= Config.BufferFrames.
func (data *Mixer) Process(frames, samplerate uint32) error {
	data.Mutex.Lock()
	defer data.Mutex.Unlock()
	tsStart := time.Now()
	timeOffline := tsStart.Sub(data.tsOfflineStart)
	var err error
	if err = data.checkRouting(); err == nil {
		err = data.Master.process(frames, samplerate, data.Observing)
	}
	tsEnd := time.Now()
	timeOnline := tsEnd.Sub(tsStart)
	cpuPercent := float32(100.0 * float64(timeOnline) / float64(timeOffline+timeOnline))
	data.CPUPercent = lerpf(data.CPUPercent, cpuPercent, 1.0/float32(1+data.times%20))
	data.times++
	if data.times%20 == 0 {
		data.CPUPercentSlow = data.CPUPercent
	}
	data.tsOfflineStart = tsEnd
	return err
}

// Builtin callback for processing the mixer on a stream.
func (data *Mixer) Callback(dst, src *Buffer, flags uint32) error {
	stash := data.Master.Buffer
	data.Master.Buffer = dst.View()
	if dst != src && &dst.Samples[0] != &src.Samples[0] {
		BufferCopy(dst, src)
	}
	err := data.Process(dst.Frames, dst.Samplerate)
	if err == ErrMixerRoutingCycle {
		// Gracefully zero out audio since a cycle can be remedied by
		// routing edits
		data.HasCircularRouting = true
		dst.Zero()
		err = nil
	} else {
		data.HasCircularRouting = false
	}
	data.Master.Buffer = stash
	return err
}

// Opens an output stream that processes this mixer, sizing the track
// buffers to the stream. config.BufferFrames is raised to at least what
// the stream requires, so you can leave it at zero. Pass activate=false
// if you want to configure DSP based on the committed device format
// before starting the clock.
func MixerStreamOpen(data *Mixer, config MixerConfig, streamConfig StreamConfig, activate bool) error {
	data.Stream.ProcessCallback = data.Callback
	if err := StreamInit(&data.Stream, streamConfig, DeviceOutput, StreamCommitFormat); err != nil {
		logError("MixerStreamOpen error: StreamInit failed (%v)", err)
		return err
	}
	config.BufferFrames = max(config.BufferFrames, data.Stream.BufferFrameCount())
	if err := MixerInit(data, config, data.Stream.ChannelLayout()); err != nil {
		data.Stream.Deinit()
		return err
	}
	if activate {
		data.Stream.SetActive(true)
	}
	return nil
}

// if preserveMixer is false, we also deinit the mixer.
func MixerStreamClose(data *Mixer, preserveMixer bool) {
	data.Stream.Deinit()
	if !preserveMixer {
		data.Deinit()
	}
}

func (data *Mixer) StreamSetActive(active bool) {
	data.Stream.SetActive(active)
}
