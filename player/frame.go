package player

import "github.com/zhaomo08/avplay/media"

// Frame is a decoded, display-ready video frame sitting in the
// player-core's FrameQueue (spec §3's "VideoPicture" record). Plane bytes
// are copied out of the decode library's own buffers before queuing, since
// those buffers are reused/unreffed by the decoder on its next iteration
// and must not be read concurrently by the renderer.
type Frame struct {
	Width             int
	Height            int
	PixelFormat       media.PixelFormat
	Planes            [3][]byte
	Linesize          [3]int
	PTS               float64 // seconds; synchronizeVideo's corrected value
	Duration          float64 // seconds; how long this frame should be held
	Pos               int64   // source byte position, or -1 if unknown
	SampleAspectRatio media.Rational
}

func (f *Frame) copyFrom(src media.VideoFrame, pts, duration float64) {
	f.Width = src.Width()
	f.Height = src.Height()
	f.PixelFormat = src.PixelFormat()
	f.PTS = pts
	f.Duration = duration
	f.Pos = src.Pos()
	f.SampleAspectRatio = src.SampleAspectRatio()
	for i := 0; i < 3; i++ {
		ls := src.Linesize(i)
		plane := src.Plane(i)
		f.Linesize[i] = ls
		if cap(f.Planes[i]) < len(plane) {
			f.Planes[i] = make([]byte, len(plane))
		} else {
			f.Planes[i] = f.Planes[i][:len(plane)]
		}
		copy(f.Planes[i], plane)
	}
}

// flushPacket is a zero-size sentinel the Reader actor enqueues when the
// demuxer reaches end of stream, so each decoder knows to flush buffered
// frames rather than blocking forever on the next real packet (mirrors
// ffmpeg's own avcodec_send_packet(ctx, NULL) flush convention, spec
// §4.3's end-of-stream handling).
type flushPacket struct{}

func (flushPacket) StreamIndex() int        { return -1 }
func (flushPacket) PayloadSize() int        { return 0 }
func (flushPacket) DurationSeconds() float64 { return 0 }
func (flushPacket) PTS() (int64, bool)       { return 0, false }
func (flushPacket) DTS() (int64, bool)       { return 0, false }
func (flushPacket) TimeBase() media.Rational { return media.Rational{} }
func (flushPacket) Release()                {}

func isFlush(p media.Packet) bool {
	_, ok := p.(flushPacket)
	return ok
}
