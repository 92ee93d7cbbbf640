package ebitensink

import (
	"sync"
	"time"

	"github.com/zhaomo08/avplay/sink"
)

// Timer replaces SDL's SDL_AddTimer with a polling design driven by
// ebitengine's fixed-tick Game.Update() loop (spec §5's documented
// adaptation). A tick comes about every 16.7ms, longer than the scheduler's
// 10ms minimum delay, so a callback can fire up to one tick late; the
// scheduler re-measures the actual delay against wall time on each pass.
type Timer struct {
	mu      sync.Mutex
	pending []pendingCallback
}

type pendingCallback struct {
	deadline  time.Time
	fire      func()
	cancelled *bool
}

func NewTimer() *Timer {
	return &Timer{}
}

var _ sink.Timer = (*Timer)(nil)

func (t *Timer) Schedule(delay time.Duration, fire func()) (cancel func()) {
	cancelled := new(bool)
	t.mu.Lock()
	t.pending = append(t.pending, pendingCallback{
		deadline:  time.Now().Add(delay),
		fire:      fire,
		cancelled: cancelled,
	})
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		*cancelled = true
		t.mu.Unlock()
	}
}

// Tick must be called once per ebiten.Game.Update() invocation. It fires
// (and removes) every scheduled callback whose deadline has passed.
func (t *Timer) Tick() {
	now := time.Now()

	t.mu.Lock()
	var due []pendingCallback
	remaining := t.pending[:0]
	for _, p := range t.pending {
		if *p.cancelled {
			continue
		}
		if !now.Before(p.deadline) {
			due = append(due, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	t.pending = remaining
	t.mu.Unlock()

	for _, p := range due {
		if !*p.cancelled {
			p.fire()
		}
	}
}
