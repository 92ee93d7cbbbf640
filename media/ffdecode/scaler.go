package ffdecode

import (
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/zhaomo08/avplay/media"
)

// scaler wraps an astiav.SoftwareScaleContext, lazily (re)created when the
// source frame's dimensions or pixel format change, mirroring the
// ensure()-on-first-use pattern of e1z0-QAnotherRTSP's bgraScaler — but
// targeting planar YUV420P instead of a packed RGB format, since the video
// surface does its own GPU-side color conversion (spec §4.7).
type scaler struct {
	ssc    *astiav.SoftwareScaleContext
	dst    *astiav.Frame
	srcW   int
	srcH   int
	srcFmt astiav.PixelFormat
	tb     media.Rational
}

func newScaler(tb media.Rational) (*scaler, error) {
	return &scaler{tb: tb}, nil
}

func (s *scaler) ensure(src *astiav.Frame) error {
	w, h, fmt_ := src.Width(), src.Height(), src.PixelFormat()
	if s.ssc != nil && w == s.srcW && h == s.srcH && fmt_ == s.srcFmt {
		return nil
	}
	if s.ssc != nil {
		s.ssc.Free()
		s.dst.Free()
	}

	flags := astiav.NewSoftwareScaleContextFlags()
	ssc, err := astiav.CreateSoftwareScaleContext(
		w, h, fmt_,
		w, h, astiav.PixelFormatYuv420P,
		flags,
	)
	if err != nil {
		return fmt.Errorf("ffdecode: create scale context: %w", err)
	}

	dst := astiav.AllocFrame()
	dst.SetWidth(w)
	dst.SetHeight(h)
	dst.SetPixelFormat(astiav.PixelFormatYuv420P)
	if err := dst.AllocBuffer(0); err != nil {
		ssc.Free()
		return fmt.Errorf("ffdecode: allocate scale output buffer: %w", err)
	}

	s.ssc, s.dst, s.srcW, s.srcH, s.srcFmt = ssc, dst, w, h, fmt_
	return nil
}

func (s *scaler) Scale(src media.VideoFrame) (media.VideoFrame, error) {
	vf, ok := src.(*videoFrame)
	if !ok {
		return nil, fmt.Errorf("ffdecode: Scale called with a foreign VideoFrame")
	}
	if err := s.ensure(vf.f); err != nil {
		return nil, err
	}
	if err := s.ssc.ScaleFrame(vf.f, s.dst); err != nil {
		return nil, fmt.Errorf("ffdecode: scale frame: %w", err)
	}
	s.dst.SetPts(vf.f.Pts())
	s.dst.SetPktPos(vf.f.PktPos())
	s.dst.SetRepeatPict(vf.f.RepeatPict())
	s.dst.SetSampleAspectRatio(vf.f.SampleAspectRatio())
	return &videoFrame{f: s.dst, tb: vf.tb}, nil
}

func (s *scaler) Close() error {
	if s.ssc != nil {
		s.ssc.Free()
		s.dst.Free()
	}
	return nil
}
