// Package event provides the named-event emitter a widget instance holds
// for host notifications.
package event

import (
	"slices"
	"sync"
)

// Names of events emitted by the engine.
const (
	Show        = "show"
	Hide        = "hide"
	SigninReady = "signin ready"
	SignupReady = "signup ready"
	RenderError = "render error"
)

// Listener receives an event's arguments.
type Listener func(args ...any)

// EmitFunc delivers one event.
type EmitFunc func(name string, args ...any)

type entry struct {
	seq  uint64
	fn   Listener
	once bool
}

// Emitter is a synchronous, concurrency-safe event emitter. Listeners run in
// registration order on the emitting goroutine.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]entry
	seq       uint64
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[string][]entry)}
}

// On registers fn for name and returns a function that removes it.
func (e *Emitter) On(name string, fn Listener) (off func()) {
	return e.add(name, fn, false)
}

// Once registers fn for the next emission of name only.
func (e *Emitter) Once(name string, fn Listener) (off func()) {
	return e.add(name, fn, true)
}

// Emit calls every listener of name and returns how many ran.
func (e *Emitter) Emit(name string, args ...any) int {
	e.mu.Lock()
	current := slices.Clone(e.listeners[name])
	kept := slices.DeleteFunc(slices.Clone(current), func(x entry) bool { return x.once })
	if len(kept) == 0 {
		delete(e.listeners, name)
	} else {
		e.listeners[name] = kept
	}
	e.mu.Unlock()

	for _, l := range current {
		l.fn(args...)
	}
	return len(current)
}

// Off removes every listener of name.
func (e *Emitter) Off(name string) {
	e.mu.Lock()
	delete(e.listeners, name)
	e.mu.Unlock()
}

// ListenerCount returns the number of listeners for name.
func (e *Emitter) ListenerCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[name])
}

func (e *Emitter) add(name string, fn Listener, once bool) func() {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.listeners[name] = append(e.listeners[name], entry{seq: seq, fn: fn, once: once})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		kept := slices.DeleteFunc(slices.Clone(e.listeners[name]), func(x entry) bool { return x.seq == seq })
		if len(kept) == 0 {
			delete(e.listeners, name)
			return
		}
		e.listeners[name] = kept
	}
}
