package player

import (
	"io"
	"time"

	"github.com/zhaomo08/avplay/media"
	"github.com/zhaomo08/avplay/sink"
)

// Fakes satisfying the narrow media/sink interfaces, used to drive the
// actor goroutines without any real ffmpeg or ebiten dependency (spec
// §8's quit-propagation test).

type fakeStreamHandle struct {
	index int
	typ   media.MediaType
	tb    media.Rational
	fr    media.Rational
}

func (h *fakeStreamHandle) Index() int               { return h.index }
func (h *fakeStreamHandle) Type() media.MediaType     { return h.typ }
func (h *fakeStreamHandle) TimeBase() media.Rational  { return h.tb }
func (h *fakeStreamHandle) FrameRate() media.Rational { return h.fr }

// fakeDemuxer always reports end of stream immediately, which is all the
// Reader-quit-propagation test needs.
type fakeDemuxer struct {
	streams []media.StreamHandle
}

func (d *fakeDemuxer) Streams() []media.StreamHandle { return d.streams }

func (d *fakeDemuxer) OpenDecoder(media.StreamHandle) (media.Decoder, error) {
	return &fakeDecoder{}, nil
}

func (d *fakeDemuxer) ReadPacket() (media.Packet, error) { return nil, io.EOF }
func (d *fakeDemuxer) Seek(float64) error                { return nil }
func (d *fakeDemuxer) Close() error                      { return nil }

type fakeDecoder struct {
	stream media.StreamHandle
}

func (d *fakeDecoder) Stream() media.StreamHandle                { return d.stream }
func (d *fakeDecoder) SendPacket(media.Packet) error              { return nil }
func (d *fakeDecoder) Flush() error                               { return nil }
func (d *fakeDecoder) ReceiveVideoFrame() (media.VideoFrame, error) { return nil, io.EOF }
func (d *fakeDecoder) ReceiveAudioFrame() (media.AudioFrame, error) { return nil, io.EOF }
func (d *fakeDecoder) NewResampler() (media.Resampler, error)     { return &fakeResampler{}, nil }
func (d *fakeDecoder) NewScaler() (media.Scaler, error)           { return &fakeScaler{}, nil }
func (d *fakeDecoder) Close() error                               { return nil }

type fakeResampler struct{}

func (r *fakeResampler) Convert(media.AudioFrame, []byte) (int, error) { return 0, nil }
func (r *fakeResampler) Close() error                                 { return nil }

type fakeScaler struct{}

func (s *fakeScaler) Scale(src media.VideoFrame) (media.VideoFrame, error) { return src, nil }
func (s *fakeScaler) Close() error                                         { return nil }

type fakePacket struct {
	streamIndex int
	size        int
	duration    float64
	pts, dts    int64
	havePTS     bool
	haveDTS     bool
	tb          media.Rational
	released    bool
}

func (p *fakePacket) StreamIndex() int         { return p.streamIndex }
func (p *fakePacket) PayloadSize() int         { return p.size }
func (p *fakePacket) DurationSeconds() float64 { return p.duration }
func (p *fakePacket) PTS() (int64, bool)       { return p.pts, p.havePTS }
func (p *fakePacket) DTS() (int64, bool)       { return p.dts, p.haveDTS }
func (p *fakePacket) TimeBase() media.Rational { return p.tb }
func (p *fakePacket) Release()                 { p.released = true }

type fakeVideoSurface struct {
	uploads int
}

func (s *fakeVideoSurface) Upload(int, int, [3][]byte, [3]int, int, int) error { s.uploads++; return nil }
func (s *fakeVideoSurface) Close() error                                      { return nil }

type fakeAudioDevice struct{}

func (d *fakeAudioDevice) NewStream(int, int, func([]byte) (int, error)) (sink.AudioStream, error) {
	return &fakeAudioStream{}, nil
}

type fakeAudioStream struct{}

func (s *fakeAudioStream) Play()              {}
func (s *fakeAudioStream) Pause()             {}
func (s *fakeAudioStream) UnplayedBytes() int { return 0 }
func (s *fakeAudioStream) Close() error       { return nil }

type fakeTimer struct {
	scheduled int
}

func (t *fakeTimer) Schedule(_ time.Duration, fire func()) func() {
	t.scheduled++
	return func() {}
}

type fakeEventPump struct {
	quit bool
}

func (e *fakeEventPump) QuitRequested() bool { return e.quit }

var (
	_ sink.VideoSurface = (*fakeVideoSurface)(nil)
	_ sink.AudioDevice  = (*fakeAudioDevice)(nil)
	_ sink.AudioStream  = (*fakeAudioStream)(nil)
	_ sink.Timer        = (*fakeTimer)(nil)
	_ sink.EventPump    = (*fakeEventPump)(nil)
	_ media.Demuxer     = (*fakeDemuxer)(nil)
	_ media.Decoder     = (*fakeDecoder)(nil)
	_ media.Resampler   = (*fakeResampler)(nil)
	_ media.Scaler      = (*fakeScaler)(nil)
	_ media.Packet      = (*fakePacket)(nil)
)
