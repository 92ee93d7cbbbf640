package player

import (
	"errors"
	"io"

	"github.com/zhaomo08/avplay/media"
)

// runVideoDecoder is the video decode actor (spec §4.4, player.c's
// video_thread): it polls the video packet queue non-blocking, re-checking
// quit every 10ms the same way it backs off on an empty queue, feeds
// packets to the codec, scales each decoded frame to planar YUV420P,
// computes its display pts via synchronizeVideo, and pushes the result
// onto the bounded picture queue.
func runVideoDecoder(vs *VideoState) {
	defer vs.videoDecoder.Close()
	defer vs.scaler.Close()

	for {
		if vs.quit.Load() {
			return
		}

		pkt, ok := vs.videoQueue.Get(false)
		if !ok {
			sleepIdle()
			continue
		}

		if isFlush(pkt) {
			if err := vs.videoDecoder.Flush(); err != nil {
				pkgLogger.Printf("avplay: video: flush: %v", err)
			}
			drainVideoFrames(vs)
			return
		}

		sendErr := vs.videoDecoder.SendPacket(pkt)
		pkt.Release()
		if sendErr != nil && !errors.Is(sendErr, media.ErrAgain) {
			pkgLogger.Printf("avplay: video: send packet: %v", sendErr)
			continue
		}

		if !receiveVideoFrames(vs) {
			return
		}
	}
}

// receiveVideoFrames drains every frame currently available from the
// codec. It returns false if the player should stop (quit requested).
func receiveVideoFrames(vs *VideoState) bool {
	for {
		if vs.quit.Load() {
			return false
		}
		raw, err := vs.videoDecoder.ReceiveVideoFrame()
		if errors.Is(err, media.ErrAgain) {
			return true
		}
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			pkgLogger.Printf("avplay: video: receive frame: %v", err)
			return true
		}
		queueVideoFrame(vs, raw)
	}
}

func drainVideoFrames(vs *VideoState) {
	for {
		raw, err := vs.videoDecoder.ReceiveVideoFrame()
		if err != nil {
			return
		}
		queueVideoFrame(vs, raw)
	}
}

func queueVideoFrame(vs *VideoState, raw media.VideoFrame) {
	scaled, err := vs.scaler.Scale(raw)
	raw.Release()
	if err != nil {
		pkgLogger.Printf("avplay: video: scale: %v", err)
		return
	}
	defer scaled.Release()

	pts, duration := synchronizeVideo(vs, scaled)

	idx, ok := vs.pictq.PeekWritable()
	if !ok {
		return // aborted
	}
	vs.pictq.Slot(idx).copyFrom(scaled, pts, duration)
	vs.pictq.Push()
}

// synchronizeVideo computes the display pts for frame, predicting it from
// the running videoClock when the decoder itself reported none (spec
// §4.4, player.c's synchronize_video). It is the VideoDecoder actor's
// single-writer counter (spec §9 Open Question 3), so no locking is
// needed. The returned duration is how long the frame should be held
// before the next one is due, accounting for repeat_pict.
func synchronizeVideo(vs *VideoState, frame media.VideoFrame) (pts, duration float64) {
	frameRate := vs.videoStream.FrameRate()
	var frameDelay float64
	if frameRate.IsValid() {
		frameDelay = 1.0 / frameRate.Float64()
	} else {
		frameDelay = vs.videoStream.TimeBase().Float64()
	}

	if ticks, ok := frame.PTS(); ok {
		pts = vs.videoStream.TimeBase().Seconds(ticks)
		vs.videoClock = pts
	} else {
		pts = vs.videoClock
	}

	duration = frameDelay * (1.0 + 0.5*float64(frame.RepeatPict()))
	vs.videoClock += duration
	return pts, duration
}
