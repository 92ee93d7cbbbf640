package player

import (
	"testing"
	"time"

	"github.com/zhaomo08/avplay/internal/queue"
	"github.com/zhaomo08/avplay/media"
)

func newTestState() *VideoState {
	vs := &VideoState{
		demuxer:      &fakeDemuxer{},
		videoStream:  &fakeStreamHandle{index: 0, typ: media.TypeVideo, tb: media.Rational{Num: 1, Den: 25}, fr: media.Rational{Num: 25, Den: 1}},
		videoDecoder: &fakeDecoder{},
		scaler:       &fakeScaler{},
		videoQueue:   queue.New[media.Packet](),
		audioQueue:   queue.New[media.Packet](),
		pictq:        queue.NewFrameQueue[Frame](videoPictureQueueSize),
		videoSurface: &fakeVideoSurface{},
		audioDevice:  &fakeAudioDevice{},
		timer:        &fakeTimer{},
		events:       &fakeEventPump{},
	}
	return vs
}

func TestRunReader_ExitsPromptlyAfterQuit(t *testing.T) {
	t.Parallel()
	vs := newTestState()

	done := make(chan struct{})
	go func() {
		runReader(vs) // demuxer reports io.EOF immediately, so this parks in waitForDrainOrQuit
		close(done)
	}()

	time.Sleep(5 * readerIdleSleep)
	vs.quit.Store(true)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runReader did not exit after quit was set")
	}
}

func TestRunVideoDecoder_ExitsPromptlyAfterQuit(t *testing.T) {
	t.Parallel()
	vs := newTestState()

	done := make(chan struct{})
	go func() {
		runVideoDecoder(vs) // empty queue, so this parks in the 10ms poll loop
		close(done)
	}()

	time.Sleep(5 * readerIdleSleep)
	vs.quit.Store(true)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runVideoDecoder did not exit after quit was set")
	}
}

func TestClose_ReleasesQueuesWithoutLeakingPacketCounts(t *testing.T) {
	t.Parallel()
	vs := newTestState()
	pkt := &fakePacket{streamIndex: 0, size: 128}
	vs.videoQueue.Put(pkt)

	p := &Player{vs: vs, state: Playing}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !pkt.released {
		t.Fatal("Close() did not release a packet still sitting in the video queue")
	}
	if vs.videoQueue.Count() != 0 || vs.videoQueue.Size() != 0 {
		t.Fatalf("video queue not empty after Close(): count=%d size=%d", vs.videoQueue.Count(), vs.videoQueue.Size())
	}
	if p.State() != Stopped {
		t.Fatalf("State() = %v, want Stopped", p.State())
	}
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()
	vs := newTestState()
	p := &Player{vs: vs, state: Playing}

	if err := p.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := p.Close(); err != ErrAlreadyClosed {
		t.Fatalf("second Close() error = %v, want ErrAlreadyClosed", err)
	}
}
