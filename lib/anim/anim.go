// Package anim models animated transitions as explicit, interruptible
// tasks. A transition settles after its duration, or immediately when a new
// transition starts on the same target. Awaiters never see an error: an
// interrupted transition's Done channel closes normally, so callers can
// chain viewport moves without cancellation handling.
package anim

import (
	"sync"
	"time"
)

type Transition struct {
	dur time.Duration

	mu          sync.Mutex
	done        chan struct{}
	timer       *time.Timer
	closed      bool
	interrupted bool
}

func newTransition(dur time.Duration) *Transition {
	t := &Transition{
		dur:  dur,
		done: make(chan struct{}),
	}
	if dur <= 0 {
		t.settle()
		return t
	}
	t.timer = time.AfterFunc(dur, t.settle)
	return t
}

// Settled returns a transition that is already complete. Useful for no-op
// operations that still promise an awaitable.
func Settled() *Transition {
	return newTransition(0)
}

// Done resolves when the transition settles or is interrupted.
func (t *Transition) Done() <-chan struct{} {
	return t.done
}

// Interrupted reports whether the transition was cut short by a newer one.
func (t *Transition) Interrupted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interrupted
}

func (t *Transition) settle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.done)
}

// interrupt settles early.
func (t *Transition) interrupt() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Lock()
	if !t.closed {
		t.interrupted = true
	}
	t.mu.Unlock()
	t.settle()
}

// Animator hands out transitions keyed by target. Starting a transition on
// a target interrupts the one already running there, matching how a second
// render supersedes in-flight animations on the same element.
type Animator struct {
	mu     sync.Mutex
	active map[string]*Transition
}

func NewAnimator() *Animator {
	return &Animator{active: make(map[string]*Transition)}
}

// Start begins a transition on target, interrupting any active one.
func (a *Animator) Start(target string, dur time.Duration) *Transition {
	a.mu.Lock()
	prev := a.active[target]
	t := newTransition(dur)
	a.active[target] = t
	a.mu.Unlock()
	if prev != nil {
		prev.interrupt()
	}
	return t
}

// StopAll interrupts every active transition. Used on teardown.
func (a *Animator) StopAll() {
	a.mu.Lock()
	ts := make([]*Transition, 0, len(a.active))
	for _, t := range a.active {
		ts = append(ts, t)
	}
	a.active = make(map[string]*Transition)
	a.mu.Unlock()
	for _, t := range ts {
		t.interrupt()
	}
}
