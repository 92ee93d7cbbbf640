package clock

import (
	"math"
	"testing"
	"time"
)

func TestAudioClock_CorrectsForUnplayedBytes(t *testing.T) {
	t.Parallel()
	var c AudioClock
	const sampleRate = 48000
	const channels = 2
	const bytesPerSample = 2
	bytesPerSecond := sampleRate * channels * bytesPerSample

	const n = 4096 // bytes just decoded
	const pts = 1.5
	c.Set(pts + float64(n/(channels*bytesPerSample))/sampleRate)

	// With nothing left unplayed there is no correction: the clock reads
	// the stored value, pts plus the duration of the n decoded bytes.
	got := c.Value(0, bytesPerSecond)
	want := pts + float64(n/(channels*bytesPerSample))/sampleRate
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Value(0, ...) = %v, want %v", got, want)
	}

	// With n bytes still unplayed, the clock should read back exactly pts.
	got = c.Value(n, bytesPerSecond)
	if math.Abs(got-pts) > 1e-9 {
		t.Fatalf("Value(n, ...) = %v, want %v", got, pts)
	}
}

func TestVideoClock_AdvancesWithWallTime(t *testing.T) {
	t.Parallel()
	var c VideoClock
	t0 := time.Unix(1000, 0)
	c.Set(2.0, t0)

	later := t0.Add(250 * time.Millisecond)
	got := c.Value(later)
	want := 2.25
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Value() = %v, want %v", got, want)
	}
}

func TestClocks_MasterSelectsAudioByDefault(t *testing.T) {
	t.Parallel()
	var c Clocks
	c.Audio.Set(3.0)
	c.Video.Set(9.0, time.Unix(0, 0))

	got := c.Master(time.Unix(0, 0), time.Unix(-10, 0), 0, 1)
	if math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("Master() = %v, want audio clock 3.0", got)
	}
}

func TestClocks_MasterSelectsVideo(t *testing.T) {
	t.Parallel()
	c := Clocks{SyncType: VideoMaster}
	t0 := time.Unix(100, 0)
	c.Video.Set(1.0, t0)

	got := c.Master(t0.Add(time.Second), time.Unix(0, 0), 0, 1)
	want := 2.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Master() = %v, want %v", got, want)
	}
}

func TestClocks_MasterSelectsExternal(t *testing.T) {
	t.Parallel()
	c := Clocks{SyncType: ExternalMaster}
	start := time.Unix(0, 0)
	now := start.Add(5 * time.Second)

	got := c.Master(now, start, 0, 1)
	if math.Abs(got-5.0) > 1e-9 {
		t.Fatalf("Master() = %v, want 5.0", got)
	}
}

func TestAudioClock_NaNWhenUnset(t *testing.T) {
	t.Parallel()
	var c AudioClock
	c.Set(math.NaN())
	got := c.Value(0, 48000*2*2)
	if !math.IsNaN(got) {
		t.Fatalf("Value() = %v, want NaN", got)
	}
}
