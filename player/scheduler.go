package player

import (
	"math"
	"time"

	"github.com/zhaomo08/avplay/internal/clock"
)

// scheduleRefresh arranges the next refresh tick via the sink.Timer (spec
// §4.7, player.c's schedule_refresh). On the ebitengine adapter this is a
// polled deadline rather than a true timer interrupt (spec §5); the
// scheduler re-measures actual_delay against wall time regardless, so a
// late tick self-corrects instead of accumulating drift.
func scheduleRefresh(vs *VideoState, delay time.Duration) {
	vs.timer.Schedule(delay, func() { refreshTick(vs) })
}

// refreshTick is one pass of the renderer/refresh scheduler (spec §4.7,
// player.c's video_refresh_timer): it computes how long to hold the
// currently queued frame, corrects that delay against the master clock,
// displays the frame, and reschedules itself.
func refreshTick(vs *VideoState) {
	if vs.quit.Load() {
		return
	}

	if vs.pictq.Size() == 0 {
		scheduleRefresh(vs, time.Millisecond)
		return
	}

	idx := vs.pictq.Peek()
	frame := vs.pictq.Slot(idx)

	refClock := vs.clocks.Master(time.Now(), vs.start, vs.audioUnplayedBytes(), vs.bytesPerSecond)
	delay := computeDelay(frame.PTS, vs.frameLastPTS, vs.frameLastDelay, refClock, vs.clocks.SyncType)

	vs.frameLastDelay = delay
	vs.frameLastPTS = frame.PTS
	vs.frameTimer += delay

	actualDelay := clampActualDelay(time.Duration(vs.frameTimer*float64(time.Second)) - time.Since(vs.start))

	sar := frame.SampleAspectRatio
	if err := vs.videoSurface.Upload(frame.Width, frame.Height, frame.Planes, frame.Linesize, sar.Num, sar.Den); err != nil {
		pkgLogger.Printf("avplay: upload frame: %v", err)
	}
	vs.clocks.Video.Set(frame.PTS, time.Now())
	vs.pictq.Pop()

	scheduleRefresh(vs, actualDelay)
}

// computeDelay is the pure core of video_refresh_timer's timing math,
// extracted for testability (spec §8's five refresh-scheduler scenarios).
// pts is the queued frame's display timestamp; lastPTS/lastDelay are the
// scheduler's running state from the previous tick; refClock is the
// current master clock reading.
func computeDelay(pts, lastPTS, lastDelay, refClock float64, syncType clock.SyncType) float64 {
	delay := pts - lastPTS
	if delay <= 0 || delay >= 1.0 {
		delay = lastDelay
	}

	if syncType != clock.VideoMaster {
		diff := pts - refClock
		syncThreshold := math.Max(avSyncThreshold, delay)
		if math.Abs(diff) < avNosyncThreshold {
			switch {
			case diff <= -syncThreshold:
				delay = 0
			case diff >= syncThreshold:
				delay *= 2
			}
		}
	}

	return delay
}

// clampActualDelay enforces the scheduler's floor on the wall-clock delay
// before the next refresh (player.c clamps actual_delay to >= 0.010s so a
// backlog of overdue frames doesn't spin the refresh loop).
func clampActualDelay(actualDelay time.Duration) time.Duration {
	if actualDelay < minActualDelay {
		return minActualDelay
	}
	return actualDelay
}

// audioUnplayedBytes returns the audio device's current output latency in
// bytes, or 0 if there is no audio stream.
func (vs *VideoState) audioUnplayedBytes() int {
	if vs.audioStreamH == nil {
		return 0
	}
	return vs.audioStreamH.UnplayedBytes()
}
