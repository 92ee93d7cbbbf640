// Package clock implements the three playback clocks of the synchronized
// player (audio, video, external wall-clock) and the master-clock policy
// used to pick which one the renderer corrects video timing against.
package clock

import (
	"math"
	"sync/atomic"
	"time"
)

// SyncType selects which clock is authoritative for the renderer's delay
// correction. AudioMaster is the default and the only path the original
// tutorial and this player actually exercise end-to-end; VideoMaster and
// ExternalMaster exist because the source defines all three, but are not
// held to the same tested standard (spec §1 Non-goals).
type SyncType int

const (
	AudioMaster SyncType = iota
	VideoMaster
	ExternalMaster
)

func (s SyncType) String() string {
	switch s {
	case AudioMaster:
		return "audio"
	case VideoMaster:
		return "video"
	case ExternalMaster:
		return "external"
	default:
		return "unknown"
	}
}

// AudioClock holds the timestamp of the last decoded audio frame, updated
// once per decoded frame by the audio pull callback and read (without
// locking) by the sync math. It is stored as the raw bits of a float64 in
// an atomic.Uint64 so concurrent access is race-free even though, per
// spec §5, the value itself is only ever a smoothed approximation that
// tolerates being read mid-update.
type AudioClock struct {
	bits atomic.Uint64
}

// Set stores pts, the frame.pts + samples/sampleRate, value computed by the
// audio decode step. NaN is a valid value representing "no pts available".
func (c *AudioClock) Set(pts float64) {
	c.bits.Store(math.Float64bits(pts))
}

// rawPTS returns the last value stored by Set.
func (c *AudioClock) rawPTS() float64 {
	return math.Float64frombits(c.bits.Load())
}

// Value returns the corrected audio clock: rawPTS() minus the seconds of
// audio already handed to the device but not yet consumed, computed from
// unplayedBytes and the stream's bytes-per-second.
func (c *AudioClock) Value(unplayedBytes int, bytesPerSecond int) float64 {
	pts := c.rawPTS()
	if bytesPerSecond <= 0 {
		return pts
	}
	return pts - float64(unplayedBytes)/float64(bytesPerSecond)
}

// VideoClock tracks the last displayed frame's pts and the wall-clock time
// it was set, both written exclusively by the renderer/scheduler (spec §9:
// video_current_pts is effectively single-writer/single-reader in a
// multi-threaded redesign), so plain fields suffice.
type VideoClock struct {
	pts     float64
	ptsTime time.Time
}

// Set records the currently displayed frame's pts at wall-clock time now.
func (c *VideoClock) Set(pts float64, now time.Time) {
	c.pts = pts
	c.ptsTime = now
}

// Value returns pts + elapsed wall time since it was last Set, evaluated at
// now.
func (c *VideoClock) Value(now time.Time) float64 {
	if c.ptsTime.IsZero() {
		return c.pts
	}
	return c.pts + now.Sub(c.ptsTime).Seconds()
}

// Clocks bundles the audio and video clocks and the sync policy for a
// single playback session; the external clock is computed by ExternalClock.
type Clocks struct {
	Audio    AudioClock
	Video    VideoClock
	SyncType SyncType
}

// ExternalClock returns the wall clock in seconds, relative to start.
func ExternalClock(start time.Time, now time.Time) float64 {
	return now.Sub(start).Seconds()
}

// Master returns the clock selected by SyncType.
func (c *Clocks) Master(now time.Time, start time.Time, unplayedBytes, bytesPerSecond int) float64 {
	switch c.SyncType {
	case VideoMaster:
		return c.Video.Value(now)
	case ExternalMaster:
		return ExternalClock(start, now)
	default:
		return c.Audio.Value(unplayedBytes, bytesPerSecond)
	}
}
