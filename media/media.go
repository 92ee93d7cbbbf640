// Package media defines the narrow, decode-library-agnostic contract the
// player core consumes: opaque packets, decoded audio/video frames, and a
// handful of codec-shaped calls (open/close, send/receive, resample,
// rescale). spec.md treats the demuxer/decoder library as an external
// collaborator; this package is the seam. The only implementation in this
// repository is media/ffdecode, built on go-astiav.
package media

import (
	"errors"
)

// ErrAgain means the decoder needs more input (avcodec's EAGAIN) or the
// demuxer has no packet ready yet on a source that hasn't errored. It is
// not a fatal condition at the component boundary (spec §7 taxonomy #3).
var ErrAgain = errors.New("media: need more input")

// MediaType classifies a stream.
type MediaType int

const (
	TypeUnknown MediaType = iota
	TypeVideo
	TypeAudio
)

func (t MediaType) String() string {
	switch t {
	case TypeVideo:
		return "video"
	case TypeAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Rational is a timebase or aspect-ratio fraction, mirroring AVRational.
type Rational struct {
	Num, Den int
}

// Seconds converts an integer tick count expressed in this rational
// timebase into seconds (spec §4.4's "pts_raw = frame.pts * time_base").
func (r Rational) Seconds(ticks int64) float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(ticks) * float64(r.Num) / float64(r.Den)
}

// Float64 returns Num/Den, or 0 if Den is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// IsValid reports whether the rational can be used as a frame rate or
// timebase (spec §4.4: "if the container provides a usable frame rate").
func (r Rational) IsValid() bool {
	return r.Num > 0 && r.Den > 0
}

// PixelFormat enumerates the planar YUV families this player recognizes.
// The renderer only needs to know plane count and chroma subsampling to
// upload textures; frames in any other format are converted to YUV420P by
// the video decoder's Scaler before they are queued.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatYUV420P
	PixelFormatYUVJ420P
)

// SampleFormat enumerates the decoded audio sample formats this player
// recognizes. The player does not branch on it: a Resampler is created for
// every audio stream and every decoded frame goes through it, S16 input
// included.
type SampleFormat int

const (
	SampleFormatUnknown SampleFormat = iota
	SampleFormatS16
	SampleFormatOther
)

// Packet is an opaque, reference-counted unit of compressed media (spec
// §3). The core never inspects payload bytes; it only accounts for size
// and duration and dispatches by stream index.
type Packet interface {
	StreamIndex() int
	PayloadSize() int
	DurationSeconds() float64
	// PTS and DTS return the packet's raw timestamps in its owning
	// stream's TimeBase, and ok=false if the demuxer reported none. The
	// player core (spec §4.3) never calls these — it only accounts for
	// size and duration — but cmd/avremux needs them to cut and rescale
	// a stream-copy (spec §8 scenario 6).
	PTS() (ticks int64, ok bool)
	DTS() (ticks int64, ok bool)
	TimeBase() Rational
	// Release returns the packet's resources to the decode library. Safe
	// to call exactly once.
	Release()
}

// VideoFrame is a decoded video frame as produced by a Decoder, before the
// player core turns it into the queued player.Frame record.
type VideoFrame interface {
	Width() int
	Height() int
	PixelFormat() PixelFormat
	SampleAspectRatio() Rational
	// PTS returns the frame's raw presentation timestamp in the owning
	// stream's Rational timebase, and ok=false if the decoder reported no
	// pts (AV_NOPTS_VALUE).
	PTS() (ticks int64, ok bool)
	// RepeatPict is AVFrame.repeat_pict: extra half-frame-duration units to
	// hold this frame for (spec §4.4's synchronizeVideo).
	RepeatPict() int
	// Pos is the decoded frame's source byte position, or -1 if unknown.
	Pos() int64
	// Plane returns the i-th plane's raw bytes, tightly bounded by
	// Linesize(i)*Height() (or half that for subsampled chroma planes).
	Plane(i int) []byte
	Linesize(i int) int
	Release()
}

// AudioFrame is a decoded audio frame as produced by a Decoder.
type AudioFrame interface {
	SampleRate() int
	Channels() int
	SampleFormat() SampleFormat
	NbSamples() int
	// PTS returns the frame's presentation timestamp in seconds (already
	// rescaled by the owning stream's timebase), and ok=false if unset.
	PTS() (seconds float64, ok bool)
	Release()
}

// StreamHandle describes one elementary stream inside an opened container.
type StreamHandle interface {
	Index() int
	Type() MediaType
	TimeBase() Rational
	// FrameRate returns the guessed frame rate for a video stream, or the
	// zero Rational if unknown/not applicable.
	FrameRate() Rational
}

// Decoder wraps one opened codec context, bound to a single stream. The
// Send/Receive shape matches spec §6's "send/receive packet and frame"
// contract (avcodec_send_packet/avcodec_receive_frame).
type Decoder interface {
	Stream() StreamHandle
	SendPacket(Packet) error
	// Flush signals end of stream (avcodec_send_packet(ctx, NULL)): no more
	// packets are coming, but buffered frames can still be drained via the
	// Receive methods until they return io.EOF (spec §4.3's end-of-stream
	// handling).
	Flush() error
	// ReceiveVideoFrame and ReceiveAudioFrame return ErrAgain when the
	// decoder needs another packet, io.EOF when fully drained after a nil
	// flush packet, or a fatal error otherwise (spec §7 taxonomy #3/#4).
	ReceiveVideoFrame() (VideoFrame, error)
	ReceiveAudioFrame() (AudioFrame, error)
	// NewResampler builds a resampler converting this (audio) decoder's
	// output to signed-16 interleaved samples at the same rate and channel
	// layout (spec §4.5). Only valid for audio decoders.
	NewResampler() (Resampler, error)
	// NewScaler builds a scaler normalizing this (video) decoder's native
	// pixel format to planar YUV420P, so the rest of the pipeline never has
	// to special-case whatever format the source container used. Only
	// valid for video decoders.
	NewScaler() (Scaler, error)
	Close() error
}

// Scaler wraps libswscale to normalize a decoded VideoFrame to a single
// planar pixel format the video surface understands. This is the
// media-layer half of spec §4.7's pixel handling; no RGB conversion
// happens here (that stays on the GPU, in the video surface).
type Scaler interface {
	Scale(src VideoFrame) (VideoFrame, error)
	Close() error
}

// Resampler converts one decoded AudioFrame into signed-16 interleaved
// bytes, writing into out and returning the number of samples (per
// channel) produced. Implementations size their own internal scratch
// state; out must be large enough for (frame.NbSamples()+256)*channels*2
// bytes per spec §4.5/§9 Open Question 1.
type Resampler interface {
	Convert(frame AudioFrame, out []byte) (samples int, err error)
	Close() error
}

// Demuxer owns an opened container: stream enumeration, packet reads, and
// decoder construction (spec §4.8's "look up decoder, allocate context,
// copy parameters, open").
type Demuxer interface {
	Streams() []StreamHandle
	OpenDecoder(stream StreamHandle) (Decoder, error)
	// ReadPacket reads the next packet from the container. It returns
	// ErrAgain when the underlying source has no data yet but has not
	// errored (spec §4.3 step 3: "producer waiting for data"), io.EOF at
	// the clean end of the container, or a fatal error otherwise.
	ReadPacket() (Packet, error)
	// Seek repositions the read cursor to the nearest keyframe at or before
	// seconds, across all streams (spec §8 scenario 6's av_seek_frame with a
	// negative stream index and AVSEEK_FLAG_BACKWARD). The player core never
	// calls this; only cmd/avremux does.
	Seek(seconds float64) error
	Close() error
}
