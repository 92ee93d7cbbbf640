// Package remux implements spec §8 scenario 6: cutting [start, end] seconds
// out of a container via stream copy (no re-encode), grounded in
// original_source/5-6/cut.c. It is deliberately split from cmd/avremux:
// this package holds only the pure stream-selection and timestamp-rebasing
// logic, testable against a fake media.Demuxer; the astiav-specific output
// muxer (AllocOutputFormatContext/NewStream/WriteHeader/WriteTrailer) lives
// in cmd/avremux, behind the narrow Writer interface below.
package remux

import (
	"errors"
	"fmt"
	"io"

	"github.com/zhaomo08/avplay/media"
)

// dropped marks a stream cut.c's stream_map entry set to -1: anything that
// isn't audio or video. cut.c also forwards subtitle streams, but
// media.StreamHandle (shared with the player core) only distinguishes
// audio/video/unknown, so subtitle passthrough is out of scope here; see
// DESIGN.md.
const dropped = -1

// PlanStreams assigns each input stream an output stream index (cut.c's
// stream_map), or dropped if the command should skip it.
func PlanStreams(streams []media.StreamHandle) []int {
	plan := make([]int, len(streams))
	next := 0
	for i, s := range streams {
		if s.Type() == media.TypeUnknown {
			plan[i] = dropped
			continue
		}
		plan[i] = next
		next++
	}
	return plan
}

// Rebaser tracks, per input stream, the first pts/dts observed after a seek
// and subtracts it from every subsequent packet so the cut output starts at
// timestamp zero (cut.c's dts_start_time/pts_start_time arrays).
type Rebaser struct {
	ptsStart map[int]int64
	dtsStart map[int]int64
}

// NewRebaser returns a Rebaser ready to process packets from a freshly
// seeked demuxer.
func NewRebaser() *Rebaser {
	return &Rebaser{ptsStart: make(map[int]int64), dtsStart: make(map[int]int64)}
}

// Rebase returns the pts/dts a cut output packet should carry for a packet
// read from input stream streamIndex. Packets without a pts or dts (ok
// false) pass through unchanged, since cut.c has no defined behavior for
// AV_NOPTS_VALUE and this package should not invent one.
func (r *Rebaser) Rebase(streamIndex int, pts int64, havePTS bool, dts int64, haveDTS bool) (outPTS, outDTS int64) {
	outPTS, outDTS = pts, dts

	if haveDTS {
		if _, seen := r.dtsStart[streamIndex]; !seen {
			r.dtsStart[streamIndex] = dts
		}
		outDTS = dts - r.dtsStart[streamIndex]
	}
	if havePTS {
		if _, seen := r.ptsStart[streamIndex]; !seen {
			r.ptsStart[streamIndex] = pts
		}
		outPTS = pts - r.ptsStart[streamIndex]
	}

	// cut.c: "if (pkt.dts > pkt.pts) pkt.pts = pkt.dts" — a decreasing-pts
	// artifact of subtracting two different per-stream start offsets can
	// otherwise violate dts<=pts.
	if haveDTS && havePTS && outDTS > outPTS {
		outPTS = outDTS
	}
	return outPTS, outDTS
}

// PastEnd reports whether pkt falls after endSeconds, in which case
// the caller should stop reading (cut.c: av_q2d(time_base)*pkt.pts >
// endtime). A packet with no pts never triggers the stop condition.
func PastEnd(pkt media.Packet, endSeconds float64) bool {
	pts, ok := pkt.PTS()
	if !ok {
		return false
	}
	return pkt.TimeBase().Seconds(pts) > endSeconds
}

// Writer receives one stream-copied packet per call, already assigned to
// its output stream index with rebased pts/dts ticks (still in the input
// stream's time base; the Writer rescales to its own output stream's time
// base, mirroring av_packet_rescale_ts). It owns writing the container
// header/trailer; Run calls neither.
type Writer interface {
	WritePacket(pkt media.Packet, outputStreamIndex int, pts, dts int64) error
}

// ErrNoStreams means every input stream was dropped by PlanStreams, so there
// is nothing to remux.
var ErrNoStreams = errors.New("remux: no audio or video streams to copy")

// Run seeks demux to start and writes every in-range audio/video packet to w
// until end is reached or the input is exhausted (cut.c's main read loop).
// It does not write the container header or trailer; the caller does that
// around Run so it can also handle streams Run never sees (e.g. zero
// packets selected).
func Run(demux media.Demuxer, w Writer, plan []int, start, end float64) error {
	if allDropped(plan) {
		return ErrNoStreams
	}
	if err := demux.Seek(start); err != nil {
		return fmt.Errorf("remux: seek to %.3fs: %w", start, err)
	}

	rebaser := NewRebaser()
	for {
		pkt, err := demux.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, media.ErrAgain) {
				continue
			}
			return fmt.Errorf("remux: read packet: %w", err)
		}

		if PastEnd(pkt, end) {
			pkt.Release()
			return nil
		}

		si := pkt.StreamIndex()
		outIdx := dropped
		if si >= 0 && si < len(plan) {
			outIdx = plan[si]
		}
		if outIdx == dropped {
			pkt.Release()
			continue
		}

		pts, havePTS := pkt.PTS()
		dts, haveDTS := pkt.DTS()
		outPTS, outDTS := rebaser.Rebase(si, pts, havePTS, dts, haveDTS)

		if err := w.WritePacket(pkt, outIdx, outPTS, outDTS); err != nil {
			pkt.Release()
			return fmt.Errorf("remux: write packet: %w", err)
		}
		pkt.Release()
	}
}

func allDropped(plan []int) bool {
	for _, v := range plan {
		if v != dropped {
			return false
		}
	}
	return true
}
