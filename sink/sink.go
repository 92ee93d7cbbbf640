// Package sink defines the narrow windowing/graphics/audio/timer/event-pump
// contract the player core consumes (spec §1, §6). The only implementation
// in this repository is sink/ebitensink, built on ebitengine.
package sink

import "time"

// VideoSurface receives decoded planar YUV frames and displays the most
// recently uploaded one. Implementations own whatever GPU texture/shader
// pipeline is required to convert planar YUV to screen pixels (spec §4.7:
// "hands the frame to the renderer").
type VideoSurface interface {
	// Upload copies luma/chroma plane bytes (with their reported strides)
	// into the surface's backing texture(s), replacing whatever was
	// previously displayed. width/height are the luma plane's dimensions;
	// sarNum/sarDen is the frame's sample aspect ratio (1/1 if unknown),
	// used by Draw to letterbox instead of stretching to fill the
	// destination (spec §4.7 step 10's calculate_display_rect).
	Upload(width, height int, planes [3][]byte, linesize [3]int, sarNum, sarDen int) error
	Close() error
}

// AudioDevice is the output audio device: a single playback stream pulling
// bytes from a caller-supplied reader, matching spec §4.5/§6's audio pull
// model (SDL's callback adapted to ebitengine's io.Reader-based player).
type AudioDevice interface {
	// NewStream opens one playback stream at sampleRate/channels, pulling
	// S16 interleaved bytes from pull on demand. pull must behave like
	// io.Reader: returning io.EOF permanently stops the stream.
	NewStream(sampleRate, channels int, pull func([]byte) (int, error)) (AudioStream, error)
}

// AudioStream is one open output audio stream.
type AudioStream interface {
	Play()
	Pause()
	// UnplayedBytes returns how many bytes handed to the device have not
	// yet reached the speakers, for the audio clock correction in spec §5.
	UnplayedBytes() int
	Close() error
}

// Timer schedules one-shot callbacks, used by the refresh scheduler (spec
// §4.7) to replace SDL's SDL_AddTimer-driven custom event.
type Timer interface {
	// Schedule arranges for fire to run once after delay, and returns a
	// handle that cancels it if called before it fires. Implementations
	// built on a polling loop (spec §5's ebitengine adaptation) may fire
	// fire up to one tick late; the scheduler re-measures actual delay
	// afterwards rather than trusting the nominal one.
	Schedule(delay time.Duration, fire func()) (cancel func())
}

// EventPump signals a request to quit the player (spec §4.2's SDL_QUIT).
// In the ebitengine adaptation this is driven by the Escape key, polled once
// per host tick, rather than a blocking SDL_WaitEvent loop (spec §5).
type EventPump interface {
	// QuitRequested reports whether the host asked the application to
	// close since the last call.
	QuitRequested() bool
}
