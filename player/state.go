package player

import (
	"sync/atomic"
	"time"

	"github.com/zhaomo08/avplay/internal/clock"
	"github.com/zhaomo08/avplay/internal/queue"
	"github.com/zhaomo08/avplay/media"
	"github.com/zhaomo08/avplay/sink"
)

// VideoState is the shared, per-session state the Reader, VideoDecoder,
// audio pull callback and Scheduler actors all operate on (spec §3's
// VideoState record). Fields are grouped by which actor owns them; cross-
// actor fields use the queue/clock package's own synchronization instead
// of a blanket mutex, following the original's per-field locking choices.
type VideoState struct {
	demuxer media.Demuxer

	videoStream media.StreamHandle
	audioStream media.StreamHandle

	videoDecoder media.Decoder
	audioDecoder media.Decoder
	scaler       media.Scaler
	resampler    media.Resampler

	videoQueue *queue.PacketQueue[media.Packet]
	audioQueue *queue.PacketQueue[media.Packet]
	pictq      *queue.FrameQueue[Frame]

	clocks clock.Clocks
	start  time.Time

	quit atomic.Bool

	// videoClock is the VideoDecoder actor's running prediction of the
	// next frame's pts when the decoder itself reports none (spec §4.4's
	// synchronizeVideo / player.c's is->video_clock). Touched only by the
	// VideoDecoder actor.
	videoClock float64

	// frameTimer/frameLastPTS/frameLastDelay belong exclusively to the
	// Scheduler actor (spec §9 Open Question 3: single-writer, no lock
	// needed).
	frameTimer     float64
	frameLastPTS   float64
	frameLastDelay float64

	// audioBuf holds already-resampled S16 bytes not yet handed to the
	// audio device, touched only from the audio pull callback (spec §4.5's
	// "leftover audio" convention).
	audioBuf       []byte
	bytesPerSecond int

	videoSurface sink.VideoSurface
	audioDevice  sink.AudioDevice
	audioStreamH sink.AudioStream
	timer        sink.Timer
	events       sink.EventPump
}
