package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Null backend: no hardware at all. A timer goroutine
 *		drives the process callback at the configured block
 *		rate and throws the audio away.
 *
 *		Used by tests and offline profiling, and as the last
 *		resort when no real backend loads, so that an
 *		application still runs on machines with no sound
 *		devices.
 *
 *---------------------------------------------------------------*/

import (
	"time"
)

const nullBlockFrames = 512

type backendNull struct{}

type nullStreamData struct {
	stream     *Stream
	samplerate uint32
	layout     ChannelLayout
	buffer     Buffer
	stop       chan struct{}
	done       chan struct{}
	active     bool
}

func (b *backendNull) name() string { return "null" }

func (b *backendNull) init() error { return nil }

func (b *backendNull) deinit() {}

func (b *backendNull) devices(deviceInterface DeviceInterface) ([]DeviceInfo, error) {
	return []DeviceInfo{{Name: "null", Channels: ChannelsDefault}}, nil
}

func (b *backendNull) streamInit(stream *Stream, flags uint32) error {
	data := &nullStreamData{
		stream:     stream,
		samplerate: stream.Config.Samplerate,
		layout:     stream.Config.ChannelLayout,
	}
	if data.samplerate == 0 {
		data.samplerate = SamplerateDefault
	}
	if data.layout.Count == 0 {
		data.layout = ChannelLayoutDefaultFromCount(ChannelsDefault)
	}
	if err := data.buffer.Init(nullBlockFrames, 0, 0, data.layout); err != nil {
		return err
	}
	data.buffer.Samplerate = data.samplerate
	stream.impl = data
	if flags&StreamCommitFormat != 0 {
		stream.Config.DeviceName = "null"
		stream.Config.Samplerate = data.samplerate
		stream.Config.ChannelLayout = data.layout
	}
	return nil
}

func (b *backendNull) streamDeinit(stream *Stream) {
	b.streamSetActive(stream, false)
	if data, ok := stream.impl.(*nullStreamData); ok {
		data.buffer.Deinit(false)
	}
}

func (b *backendNull) streamSetActive(stream *Stream, active bool) {
	data, ok := stream.impl.(*nullStreamData)
	if !ok || data.active == active {
		return
	}
	if active {
		data.stop = make(chan struct{})
		data.done = make(chan struct{})
		go data.run()
	} else {
		close(data.stop)
		<-data.done
	}
	data.active = active
}

func (data *nullStreamData) run() {
	defer close(data.done)
	interval := time.Duration(float64(nullBlockFrames) / float64(data.samplerate) * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-data.stop:
			return
		case <-ticker.C:
			data.buffer.Zero()
			if err := data.stream.ProcessCallback(&data.buffer, &data.buffer, 0); err != nil {
				logError("stream callback: %v", err)
				return
			}
		}
	}
}

func (b *backendNull) streamGetActive(stream *Stream) bool {
	data, ok := stream.impl.(*nullStreamData)
	return ok && data.active
}

func (b *backendNull) streamBufferFrameCount(stream *Stream) uint32 {
	return nullBlockFrames
}
