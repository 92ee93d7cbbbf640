// Command avremux cuts [start, end] seconds out of a media file via stream
// copy, writing a new container with no re-encode (spec §8 scenario 6),
// grounded in original_source/5-6/cut.c and, for the output muxer calls, in
// e1z0-QAnotherRTSP's recording path (AllocOutputFormatContext/OpenIOContext/
// NewStream/WriteHeader/WriteInterleavedFrame/WriteTrailer).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/asticode/go-astiav"

	"github.com/zhaomo08/avplay/internal/remux"
	"github.com/zhaomo08/avplay/media"
	"github.com/zhaomo08/avplay/media/ffdecode"
)

func main() {
	start := flag.Float64("start", 0, "cut start time, in seconds")
	end := flag.Float64("end", 0, "cut end time, in seconds")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: avremux -start=<seconds> -end=<seconds> <src> <dst>\n")
		os.Exit(1)
	}
	if *end <= *start {
		fmt.Fprintf(os.Stderr, "avremux: -end (%.3f) must be greater than -start (%.3f)\n", *end, *start)
		os.Exit(1)
	}
	src, dst := flag.Arg(0), flag.Arg(1)

	logger := log.New(os.Stderr, "avremux: ", log.LstdFlags)

	demux, err := ffdecode.Open(src)
	if err != nil {
		logger.Fatalf("open %q: %v", src, err)
	}
	defer demux.Close()

	streams := demux.Streams()
	plan := remux.PlanStreams(streams)

	w, err := newMuxWriter(streams, plan, dst)
	if err != nil {
		logger.Fatalf("open output %q: %v", dst, err)
	}
	defer w.close()

	if err := w.writeHeader(); err != nil {
		logger.Fatalf("write header: %v", err)
	}

	if err := remux.Run(demux, w, plan, *start, *end); err != nil {
		logger.Fatalf("remux: %v", err)
	}

	if err := w.writeTrailer(); err != nil {
		logger.Fatalf("write trailer: %v", err)
	}
}

// muxWriter implements remux.Writer on top of astiav's muxer API. It is
// astiav-specific by necessity: the narrow media.Demuxer/Decoder interfaces
// the player core relies on have no muxing counterpart, and inventing one
// just for this command would not be "narrow" anymore.
type muxWriter struct {
	oc         *astiav.OutputFormatContext
	pb         *astiav.IOContext
	outStreams []*astiav.Stream // indexed by output stream index
}

func newMuxWriter(streams []media.StreamHandle, plan []int, dst string) (*muxWriter, error) {
	oc, err := astiav.AllocOutputFormatContext(nil, "", dst)
	if err != nil || oc == nil {
		return nil, fmt.Errorf("AllocOutputFormatContext: %w", err)
	}

	outStreams := make([]*astiav.Stream, 0, len(streams))
	for i, s := range streams {
		if plan[i] < 0 {
			continue
		}
		fs, ok := s.(*ffdecode.Stream)
		if !ok {
			oc.Free()
			return nil, fmt.Errorf("stream %d is not an ffdecode.Stream", i)
		}
		in := fs.Native()

		out := oc.NewStream(nil)
		if out == nil {
			oc.Free()
			return nil, fmt.Errorf("NewStream for input stream %d failed", i)
		}
		if err := in.CodecParameters().Copy(out.CodecParameters()); err != nil {
			oc.Free()
			return nil, fmt.Errorf("copy codec parameters for stream %d: %w", i, err)
		}
		out.CodecParameters().SetCodecTag(0)
		out.SetTimeBase(in.TimeBase())
		outStreams = append(outStreams, out)
	}

	ioFlags := astiav.NewIOContextFlags(astiav.IOContextFlagWrite)
	pb, err := astiav.OpenIOContext(dst, ioFlags, nil, nil)
	if err != nil {
		oc.Free()
		return nil, fmt.Errorf("OpenIOContext: %w", err)
	}
	oc.SetPb(pb)

	return &muxWriter{oc: oc, pb: pb, outStreams: outStreams}, nil
}

func (w *muxWriter) writeHeader() error {
	if err := w.oc.WriteHeader(nil); err != nil {
		return fmt.Errorf("WriteHeader: %w", err)
	}
	return nil
}

// WritePacket implements remux.Writer. pkt must be the *ffdecode.Packet the
// demuxer produced, since only it exposes the native astiav.Packet this
// stream-copy write rescales and re-stamps in place (cut.c's
// av_packet_rescale_ts followed by av_interleaved_write_frame).
func (w *muxWriter) WritePacket(pkt media.Packet, outputStreamIndex int, pts, dts int64) error {
	fp, ok := pkt.(*ffdecode.Packet)
	if !ok {
		return fmt.Errorf("packet is not an ffdecode.Packet")
	}
	native := fp.Native()
	native.SetPts(pts)
	native.SetDts(dts)

	inTB := pkt.TimeBase()
	outStream := w.outStreams[outputStreamIndex]
	native.RescaleTs(astiav.NewRational(inTB.Num, inTB.Den), outStream.TimeBase())
	native.SetStreamIndex(outStream.Index())

	if err := w.oc.WriteInterleavedFrame(native); err != nil {
		return fmt.Errorf("WriteInterleavedFrame: %w", err)
	}
	return nil
}

func (w *muxWriter) writeTrailer() error {
	if err := w.oc.WriteTrailer(); err != nil {
		return fmt.Errorf("WriteTrailer: %w", err)
	}
	return nil
}

func (w *muxWriter) close() {
	if w.pb != nil {
		w.pb.Close()
		w.pb.Free()
	}
	if w.oc != nil {
		w.oc.Free()
	}
}
