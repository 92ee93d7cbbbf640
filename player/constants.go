package player

import "time"

const (
	// maxQueueSize bounds each PacketQueue's byte size, the backpressure
	// ceiling the Reader actor waits under (spec §4.3, player.c's
	// MAX_QUEUE_SIZE).
	maxQueueSize = 5 * 1024 * 1024

	// videoPictureQueueSize is the FrameQueue capacity for decoded video
	// frames (player.c's VIDEO_PICTURE_QUEUE_SIZE).
	videoPictureQueueSize = 3

	// audioPictureQueueSize mirrors the same backpressure idea for the
	// small queue of already-resampled audio buffers waiting to be pulled
	// (spec §4.5/§4.6); the original keeps a single scratch buffer instead
	// of a queue, which this player follows (see audiopuller.go).
	audioPictureQueueSize = 1

	// readerIdleSleep is how long the Reader actor backs off on queue-size
	// backpressure, and how long the VideoDecoder actor polls its packet
	// queue for (spec §4.3 step 2, §4.4 step 2, player.c's SDL_Delay(10)).
	readerIdleSleep = 10 * time.Millisecond

	// readerEmptySleep is the Reader actor's backoff after a transient
	// empty read (media.ErrAgain): spec §4.3 step 3 calls for a 100ms
	// retry here, distinct from the 10ms backpressure backoff.
	readerEmptySleep = 100 * time.Millisecond

	// avSyncThreshold and avNosyncThreshold are the refresh scheduler's
	// correction thresholds (spec §4.7, player.c's AV_SYNC_THRESHOLD /
	// AV_NOSYNC_THRESHOLD).
	avSyncThreshold   = 0.01
	avNosyncThreshold = 10.0

	// minActualDelay is the scheduler's floor on the wall-clock delay
	// before the next refresh, to avoid busy-looping (player.c clamps
	// actual_delay to >= 0.010s).
	minActualDelay = 10 * time.Millisecond

	// resamplerScratchMargin bytes-of-samples headroom, resolved in
	// DESIGN.md (spec §9 Open Question 1): the player never changes sample
	// rate mid-stream, so a single uniform 256-sample margin is safe.
	resamplerScratchMargin = 256
)
