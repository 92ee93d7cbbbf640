package ffdecode

import (
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/zhaomo08/avplay/media"
)

// resampler wraps an astiav.SoftwareResampleContext converting one audio
// decoder's native output format into signed-16 interleaved samples at the
// same rate and channel layout (spec §4.5). It reuses a single scratch
// output frame across calls, sized with the +256 sample margin resolved in
// DESIGN.md (spec §9 Open Question 1).
type resampler struct {
	swr       *astiav.SoftwareResampleContext
	ctx       *astiav.CodecContext
	scratch   *astiav.Frame
	outLayout astiav.ChannelLayout
	rate      int
}

const resamplerScratchMargin = 256

func newResampler(ctx *astiav.CodecContext) (*resampler, error) {
	swr := astiav.AllocSoftwareResampleContext()
	if swr == nil {
		return nil, fmt.Errorf("ffdecode: AllocSoftwareResampleContext failed")
	}

	layout := ctx.ChannelLayout()
	rate := ctx.SampleRate()

	scratch := astiav.AllocFrame()
	scratch.SetChannelLayout(layout)
	scratch.SetSampleRate(rate)
	scratch.SetSampleFormat(astiav.SampleFormatS16)

	return &resampler{swr: swr, ctx: ctx, scratch: scratch, outLayout: layout, rate: rate}, nil
}

// Convert resamples frame into out, writing interleaved S16 samples and
// returning the number of samples (per channel) produced. out must hold at
// least (frame.NbSamples()+256)*channels*2 bytes.
func (r *resampler) Convert(frame media.AudioFrame, out []byte) (int, error) {
	af, ok := frame.(*audioFrame)
	if !ok {
		return 0, fmt.Errorf("ffdecode: Convert called with a foreign AudioFrame")
	}

	r.scratch.SetNbSamples(af.f.NbSamples() + resamplerScratchMargin)
	if err := r.scratch.AllocBuffer(0); err != nil {
		return 0, fmt.Errorf("ffdecode: allocate resample output buffer: %w", err)
	}
	defer r.scratch.Unref()

	if err := r.swr.ConvertFrame(af.f, r.scratch); err != nil {
		return 0, fmt.Errorf("ffdecode: resample: %w", err)
	}

	samples := r.scratch.NbSamples()
	channels := r.outLayout.Channels()
	n := samples * channels * 2
	if n > len(out) {
		n = len(out)
		samples = n / (channels * 2)
	}
	data, err := r.scratch.Data().Bytes(0)
	if err != nil {
		return 0, fmt.Errorf("ffdecode: read resampled buffer: %w", err)
	}
	copy(out[:n], data[:n])
	return samples, nil
}

func (r *resampler) Close() error {
	r.scratch.Free()
	r.swr.Free()
	return nil
}
