package ebitensink

import (
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/zhaomo08/avplay/sink"
)

// audioPullBufferSize mirrors the original player's SDL_AUDIO_BUFFER_SIZE
// (1024 samples), scaled up to a duration ebitengine's player is
// comfortable pulling in (spec §6: "samples, not... an arbitrary size").
const audioPullBufferSize time.Duration = 40 * time.Millisecond

// AudioDevice opens ebitengine audio.Player streams against the process's
// single audio.Context (spec §4.6: one audio device per playback session).
type AudioDevice struct {
	ctx *audio.Context
}

// NewAudioDevice wraps an already-created ebitengine audio context. The
// caller is responsible for creating it with the stream's sample rate
// (audio.NewContext can only be called once per process).
func NewAudioDevice(ctx *audio.Context) *AudioDevice {
	return &AudioDevice{ctx: ctx}
}

var _ sink.AudioDevice = (*AudioDevice)(nil)

func (d *AudioDevice) NewStream(sampleRate, channels int, pull func([]byte) (int, error)) (sink.AudioStream, error) {
	if d.ctx.SampleRate() != sampleRate {
		return nil, fmt.Errorf("ebitensink: audio context sample rate %d does not match stream rate %d", d.ctx.SampleRate(), sampleRate)
	}
	player, err := d.ctx.NewPlayer(&readerFunc{pull: pull})
	if err != nil {
		return nil, fmt.Errorf("ebitensink: create audio player: %w", err)
	}
	player.SetBufferSize(audioPullBufferSize)
	return &audioStream{player: player, sampleRate: sampleRate, channels: channels}, nil
}

// readerFunc adapts a pull callback to io.Reader, the shape ebitengine's
// audio.Player expects.
type readerFunc struct {
	pull func([]byte) (int, error)
}

func (r *readerFunc) Read(p []byte) (int, error) { return r.pull(p) }

type audioStream struct {
	player     *audio.Player
	sampleRate int
	channels   int
}

func (s *audioStream) Play()  { s.player.Play() }
func (s *audioStream) Pause() { s.player.Pause() }

// UnplayedBytes approximates the device's output latency in bytes as one
// full player buffer (audioPullBufferSize). ebitengine does not expose a
// direct "queued bytes" counter, so the value is constant for the life of
// the stream (spec §5: unplayedBytes feeds
// into the audio clock's small correction term, not an exact requirement).
func (s *audioStream) UnplayedBytes() int {
	bytesPerSecond := s.sampleRate * s.channels * 2
	return int(audioPullBufferSize.Seconds() * float64(bytesPerSecond))
}

func (s *audioStream) Close() error {
	s.player.Pause()
	return s.player.Close()
}

var _ io.Reader = (*readerFunc)(nil)
