// Package broadcast is a process-wide refresh channel. Any number of live
// diagram instances register a callback and get notified when something
// global changes (a stylesheet swap, a theme toggle, a watched file write).
//
// Registration returns a Disposer; calling it more than once is safe, so a
// teardown path can dispose unconditionally.
package broadcast

import "sync"

// Disposer removes a previously registered callback. Idempotent.
type Disposer func()

type Registry struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[int]func())}
}

// Register adds fn to the registry and returns its disposer.
func (r *Registry) Register(fn func()) Disposer {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs, id)
		})
	}
}

// Notify invokes every registered callback. Callbacks run outside the
// registry lock so they may register or dispose reentrantly.
func (r *Registry) Notify() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of live subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

var global = NewRegistry()

// Refresh is the process-wide registry shared by all diagram instances.
func Refresh() *Registry {
	return global
}
