package remux

import (
	"errors"
	"io"
	"testing"

	"github.com/zhaomo08/avplay/media"
)

type fakeStream struct {
	typ media.MediaType
}

func (s *fakeStream) Index() int               { return 0 }
func (s *fakeStream) Type() media.MediaType     { return s.typ }
func (s *fakeStream) TimeBase() media.Rational  { return media.Rational{Num: 1, Den: 1000} }
func (s *fakeStream) FrameRate() media.Rational { return media.Rational{} }

func TestPlanStreams_DropsUnknownKeepsAudioVideoOrder(t *testing.T) {
	streams := []media.StreamHandle{
		&fakeStream{typ: media.TypeVideo},
		&fakeStream{typ: media.TypeUnknown},
		&fakeStream{typ: media.TypeAudio},
	}
	plan := PlanStreams(streams)
	if got, want := plan, ([]int{0, dropped, 1}); !equal(got, want) {
		t.Fatalf("plan = %v, want %v", got, want)
	}
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRebaser_SubtractsFirstSeenStartOffset(t *testing.T) {
	r := NewRebaser()

	pts, dts := r.Rebase(0, 1000, true, 1000, true)
	if pts != 0 || dts != 0 {
		t.Fatalf("first packet becomes its own start offset, so it rebases to 0; got pts=%d dts=%d", pts, dts)
	}

	pts, dts = r.Rebase(0, 1500, true, 1500, true)
	if pts != 500 || dts != 500 {
		t.Fatalf("second packet should be rebased to 500, got pts=%d dts=%d", pts, dts)
	}
}

func TestRebaser_ClampsPTSUpToDTS(t *testing.T) {
	r := NewRebaser()
	r.Rebase(0, 1000, true, 1000, true)

	pts, dts := r.Rebase(0, 1200, true, 1400, true)
	if dts != 400 {
		t.Fatalf("dts = %d, want 400", dts)
	}
	if pts != dts {
		t.Fatalf("pts = %d, want clamped up to dts %d", pts, dts)
	}
}

func TestRebaser_IndependentPerStream(t *testing.T) {
	r := NewRebaser()
	r.Rebase(0, 1000, true, 1000, true)
	r.Rebase(1, 5000, true, 5000, true)

	pts, _ := r.Rebase(1, 5200, true, 5200, true)
	if pts != 200 {
		t.Fatalf("stream 1 pts = %d, want 200 (independent of stream 0's offset)", pts)
	}
}

type fakePacket struct {
	streamIndex int
	pts, dts    int64
	havePTS     bool
	haveDTS     bool
	tb          media.Rational
	released    bool
}

func (p *fakePacket) StreamIndex() int         { return p.streamIndex }
func (p *fakePacket) PayloadSize() int         { return 0 }
func (p *fakePacket) DurationSeconds() float64 { return 0 }
func (p *fakePacket) PTS() (int64, bool)       { return p.pts, p.havePTS }
func (p *fakePacket) DTS() (int64, bool)       { return p.dts, p.haveDTS }
func (p *fakePacket) TimeBase() media.Rational { return p.tb }
func (p *fakePacket) Release()                 { p.released = true }

func TestPastEnd(t *testing.T) {
	tb := media.Rational{Num: 1, Den: 1000}
	p := &fakePacket{pts: 2500, havePTS: true, tb: tb}
	if PastEnd(p, 3.0) {
		t.Fatalf("2.5s should not be past a 3.0s end time")
	}
	if !PastEnd(p, 2.0) {
		t.Fatalf("2.5s should be past a 2.0s end time")
	}
}

func TestPastEnd_NoPTSNeverStops(t *testing.T) {
	p := &fakePacket{havePTS: false}
	if PastEnd(p, 0) {
		t.Fatalf("a packet with no pts must never trigger the stop condition")
	}
}

type fakeDemuxer struct {
	streams  []media.StreamHandle
	packets  []*fakePacket
	next     int
	seekedTo float64
	seekErr  error
}

func (d *fakeDemuxer) Streams() []media.StreamHandle { return d.streams }
func (d *fakeDemuxer) OpenDecoder(media.StreamHandle) (media.Decoder, error) {
	return nil, errors.New("not used by remux.Run")
}

func (d *fakeDemuxer) ReadPacket() (media.Packet, error) {
	if d.next >= len(d.packets) {
		return nil, io.EOF
	}
	p := d.packets[d.next]
	d.next++
	return p, nil
}

func (d *fakeDemuxer) Seek(seconds float64) error {
	d.seekedTo = seconds
	return d.seekErr
}

func (d *fakeDemuxer) Close() error { return nil }

type writeCall struct {
	outIdx   int
	pts, dts int64
}

type fakeWriter struct {
	calls []writeCall
}

func (w *fakeWriter) WritePacket(pkt media.Packet, outputStreamIndex int, pts, dts int64) error {
	w.calls = append(w.calls, writeCall{outIdx: outputStreamIndex, pts: pts, dts: dts})
	return nil
}

func tb1000() media.Rational { return media.Rational{Num: 1, Den: 1000} }

func TestRun_SeeksDropsUnselectedAndStopsAtEnd(t *testing.T) {
	streams := []media.StreamHandle{
		&fakeStream{typ: media.TypeVideo},
		&fakeStream{typ: media.TypeUnknown},
	}
	demux := &fakeDemuxer{
		streams: streams,
		packets: []*fakePacket{
			{streamIndex: 0, pts: 1000, dts: 1000, havePTS: true, haveDTS: true, tb: tb1000()},
			{streamIndex: 1, pts: 1000, dts: 1000, havePTS: true, haveDTS: true, tb: tb1000()}, // dropped stream
			{streamIndex: 0, pts: 2000, dts: 2000, havePTS: true, haveDTS: true, tb: tb1000()},
			{streamIndex: 0, pts: 5000, dts: 5000, havePTS: true, haveDTS: true, tb: tb1000()}, // past end
		},
	}
	w := &fakeWriter{}
	plan := PlanStreams(streams)

	if err := Run(demux, w, plan, 1.0, 3.0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if demux.seekedTo != 1.0 {
		t.Fatalf("seekedTo = %v, want 1.0", demux.seekedTo)
	}
	if len(w.calls) != 2 {
		t.Fatalf("writer got %d calls, want 2 (dropped stream skipped, 5s packet past end)", len(w.calls))
	}
	for _, c := range w.calls {
		if c.outIdx != 0 {
			t.Fatalf("outIdx = %d, want 0", c.outIdx)
		}
	}
	for _, p := range demux.packets[:3] {
		if !p.released {
			t.Fatalf("packet for stream %d was never released", p.streamIndex)
		}
	}
}

func TestRun_NoStreamsSelected(t *testing.T) {
	streams := []media.StreamHandle{&fakeStream{typ: media.TypeUnknown}}
	demux := &fakeDemuxer{streams: streams}
	plan := PlanStreams(streams)

	if err := Run(demux, &fakeWriter{}, plan, 0, 1); !errors.Is(err, ErrNoStreams) {
		t.Fatalf("err = %v, want ErrNoStreams", err)
	}
}

var _ media.Demuxer = (*fakeDemuxer)(nil)
var _ media.Packet = (*fakePacket)(nil)
