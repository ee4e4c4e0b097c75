//go:build cgo

package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Oto backend: output-only playback through the platform
 *		audio API via github.com/ebitengine/oto/v3.
 *
 *		Oto pulls from an io.Reader, so the stream runs the
 *		process callback one block at a time and serves the
 *		result as little-endian float32 bytes.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

const otoBlockFrames = 512

type backendOto struct {
	ctx *oto.Context
}

type otoStreamData struct {
	backend    *backendOto
	stream     *Stream
	player     *oto.Player
	active     bool
	samplerate uint32
	layout     ChannelLayout
	// One rendered block as bytes, drained by Read.
	pending []byte
	buffer  Buffer
}

func (b *backendOto) name() string { return "oto" }

func (b *backendOto) init() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SamplerateDefault,
		ChannelCount: ChannelsDefault,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return ErrBackendLoadError
	}
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		return ErrBackendLoadError
	}
	b.ctx = ctx
	return nil
}

func (b *backendOto) deinit() {
	// Oto contexts cannot be torn down; suspending is the best we can do.
	if b.ctx != nil {
		if err := b.ctx.Suspend(); err != nil {
			logError("oto suspend: %v", err)
		}
	}
}

func (b *backendOto) devices(deviceInterface DeviceInterface) ([]DeviceInfo, error) {
	if deviceInterface == DeviceInput {
		return nil, ErrNoDevicesAvailable
	}
	return []DeviceInfo{{Name: "default", Channels: ChannelsDefault}}, nil
}

func (b *backendOto) streamInit(stream *Stream, flags uint32) error {
	if stream.DeviceInterface == DeviceInput {
		return ErrNoDevicesAvailable
	}
	data := &otoStreamData{
		backend: b,
		stream:  stream,
		// The context is fixed-format, so the stream is too.
		samplerate: SamplerateDefault,
		layout:     ChannelLayoutDefaultFromCount(ChannelsDefault),
	}
	if err := data.buffer.Init(otoBlockFrames, 0, 0, data.layout); err != nil {
		return err
	}
	data.buffer.Samplerate = data.samplerate
	data.player = b.ctx.NewPlayer(data)
	stream.impl = data
	if flags&StreamCommitFormat != 0 {
		stream.Config.DeviceName = "default"
		stream.Config.Samplerate = data.samplerate
		stream.Config.ChannelLayout = data.layout
	}
	return nil
}

// io.Reader feeding the oto player: renders blocks through the process
// callback on demand.
func (data *otoStreamData) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if len(data.pending) == 0 {
			data.buffer.Zero()
			if err := data.stream.ProcessCallback(&data.buffer, &data.buffer, 0); err != nil {
				logError("stream callback: %v", err)
				return total, nil
			}
			samples := data.buffer.Samples[:otoBlockFrames*uint32(data.layout.Count)]
			block := make([]byte, len(samples)*4)
			for i, sample := range samples {
				binary.LittleEndian.PutUint32(block[i*4:], math.Float32bits(sample))
			}
			data.pending = block
		}
		n := copy(p[total:], data.pending)
		data.pending = data.pending[n:]
		total += n
	}
	return total, nil
}

func (b *backendOto) streamDeinit(stream *Stream) {
	data, ok := stream.impl.(*otoStreamData)
	if !ok {
		return
	}
	data.player.Pause()
	if err := data.player.Close(); err != nil {
		logError("oto close: %v", err)
	}
	data.buffer.Deinit(false)
}

func (b *backendOto) streamSetActive(stream *Stream, active bool) {
	data, ok := stream.impl.(*otoStreamData)
	if !ok || data.active == active {
		return
	}
	if active {
		data.player.Play()
	} else {
		data.player.Pause()
	}
	data.active = active
}

func (b *backendOto) streamGetActive(stream *Stream) bool {
	data, ok := stream.impl.(*otoStreamData)
	return ok && data.active
}

func (b *backendOto) streamBufferFrameCount(stream *Stream) uint32 {
	return otoBlockFrames
}
