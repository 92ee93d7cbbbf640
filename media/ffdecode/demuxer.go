// Package ffdecode implements media.Demuxer/Decoder/Resampler on top of
// github.com/asticode/go-astiav (Go bindings for ffmpeg's libavformat,
// libavcodec and libswresample). It is the only adapter between the
// player core and a real media library; the core never imports astiav
// directly.
package ffdecode

import (
	"errors"
	"fmt"
	"io"

	"github.com/asticode/go-astiav"

	"github.com/zhaomo08/avplay/media"
)

// Demuxer wraps one opened astiav.FormatContext.
type Demuxer struct {
	fc      *astiav.FormatContext
	streams []media.StreamHandle
	pkt     *astiav.Packet
}

// Open opens url (a file path or network URL) and probes its streams. The
// caller must call Close when done.
func Open(url string) (*Demuxer, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("ffdecode: AllocFormatContext failed")
	}
	if err := fc.OpenInput(url, nil, nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("ffdecode: open input %q: %w", url, err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("ffdecode: probe %q: %w", url, err)
	}

	astiavStreams := fc.Streams()
	streams := make([]media.StreamHandle, len(astiavStreams))
	for i, s := range astiavStreams {
		streams[i] = &Stream{s: s}
	}

	return &Demuxer{
		fc:      fc,
		streams: streams,
		pkt:     astiav.AllocPacket(),
	}, nil
}

func (d *Demuxer) Streams() []media.StreamHandle { return d.streams }

// OpenDecoder finds a decoder for stream's codec, allocates and opens its
// codec context (spec §4.8: stream_component_open).
func (d *Demuxer) OpenDecoder(stream media.StreamHandle) (media.Decoder, error) {
	sh, ok := stream.(*Stream)
	if !ok {
		return nil, fmt.Errorf("ffdecode: OpenDecoder called with a foreign StreamHandle")
	}

	params := sh.s.CodecParameters()
	codec := astiav.FindDecoder(params.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("ffdecode: no decoder for codec id %v", params.CodecID())
	}
	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return nil, errors.New("ffdecode: AllocCodecContext failed")
	}
	if err := params.ToCodecContext(ctx); err != nil {
		ctx.Free()
		return nil, fmt.Errorf("ffdecode: copy codec parameters: %w", err)
	}
	ctx.SetThreadCount(1)
	if err := ctx.Open(codec, nil); err != nil {
		ctx.Free()
		return nil, fmt.Errorf("ffdecode: open codec: %w", err)
	}

	return &Decoder{ctx: ctx, stream: sh, frame: astiav.AllocFrame()}, nil
}

// ReadPacket reads the next demuxed packet (spec §4.3 step 2:
// av_read_frame).
func (d *Demuxer) ReadPacket() (media.Packet, error) {
	d.pkt.Unref()
	if err := d.fc.ReadFrame(d.pkt); err != nil {
		if errors.Is(err, astiav.ErrEof) {
			return nil, io.EOF
		}
		if errors.Is(err, astiav.ErrEagain) {
			return nil, media.ErrAgain
		}
		return nil, fmt.Errorf("ffdecode: read frame: %w", err)
	}

	out := astiav.AllocPacket()
	out.Ref(d.pkt)
	si := d.streams[d.pkt.StreamIndex()]
	return &Packet{
		p:           out,
		streamIndex: si.Index(),
		timeBase:    si.TimeBase(),
		pts:         out.Pts(),
		dts:         out.Dts(),
	}, nil
}

// Seek repositions every stream to the nearest keyframe at or before
// seconds (spec §8 scenario 6: av_seek_frame(ctx, -1, t*AV_TIME_BASE,
// AVSEEK_FLAG_BACKWARD)).
func (d *Demuxer) Seek(seconds float64) error {
	const avTimeBase = 1000000 // ffmpeg's AV_TIME_BASE, fixed by definition
	ts := int64(seconds * avTimeBase)
	flags := astiav.NewSeekFlags(astiav.SeekFlagBackward)
	if err := d.fc.SeekFrame(-1, ts, flags); err != nil {
		return fmt.Errorf("ffdecode: seek to %.3fs: %w", seconds, err)
	}
	return nil
}

func (d *Demuxer) Close() error {
	d.pkt.Free()
	d.fc.CloseInput()
	d.fc.Free()
	return nil
}

type Stream struct {
	s *astiav.Stream
}

// Native exposes the underlying astiav.Stream for cmd/avremux, which needs
// codec parameters and time base to build the matching output stream during
// stream-copy remuxing.
func (h *Stream) Native() *astiav.Stream { return h.s }

func (h *Stream) Index() int { return h.s.Index() }

func (h *Stream) Type() media.MediaType {
	switch h.s.CodecParameters().MediaType() {
	case astiav.MediaTypeVideo:
		return media.TypeVideo
	case astiav.MediaTypeAudio:
		return media.TypeAudio
	default:
		return media.TypeUnknown
	}
}

func (h *Stream) TimeBase() media.Rational {
	tb := h.s.TimeBase()
	return media.Rational{Num: tb.Num(), Den: tb.Den()}
}

func (h *Stream) FrameRate() media.Rational {
	r := h.s.AvgFrameRate()
	return media.Rational{Num: r.Num(), Den: r.Den()}
}

type Packet struct {
	p           *astiav.Packet
	streamIndex int
	timeBase    media.Rational
	pts         int64
	dts         int64
}

func (p *Packet) StreamIndex() int { return p.streamIndex }
func (p *Packet) PayloadSize() int { return p.p.Size() }

func (p *Packet) DurationSeconds() float64 {
	return p.timeBase.Seconds(p.p.Duration())
}

func (p *Packet) PTS() (int64, bool) {
	if p.pts == astiav.NoPtsValue {
		return 0, false
	}
	return p.pts, true
}

func (p *Packet) DTS() (int64, bool) {
	if p.dts == astiav.NoPtsValue {
		return 0, false
	}
	return p.dts, true
}

func (p *Packet) TimeBase() media.Rational { return p.timeBase }

// Native exposes the underlying astiav.Packet for cmd/avremux's stream-copy
// writer, which needs to rescale and re-stamp the same packet it read
// rather than construct a new one.
func (p *Packet) Native() *astiav.Packet { return p.p }

func (p *Packet) Release() {
	p.p.Unref()
	p.p.Free()
}
