// Package abort implements the trigger-once cancellation primitive behind
// client-disconnect detection. One Signal per request is fed by exactly one
// disconnect event and observed two ways: a non-blocking poll (Fired, Err)
// and a subscription callback. Both views agree at all times.
package abort

import (
	"sync"

	"github.com/Melown/libhttp/core/sink"
)

// Signal fires at most once. The zero value is not usable; construct with
// New. Trigger may be called from any goroutine, typically the transport's
// I/O-event path, independent of the handler's own execution.
type Signal struct {
	done chan struct{}

	mu    sync.Mutex
	fired bool
	fns   []func()
}

// New returns an unfired signal.
func New() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Trigger fires the signal. Subscribed callbacks run synchronously on the
// triggering goroutine, each at most once; repeated triggers are no-ops.
func (s *Signal) Trigger() {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	fns := s.fns
	s.fns = nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Fired reports whether the signal has fired. Non-blocking.
func (s *Signal) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Err returns sink.ErrClientAborted once the signal has fired, nil before.
func (s *Signal) Err() error {
	if s.Fired() {
		return sink.ErrClientAborted
	}
	return nil
}

// Subscribe registers fn to run when the signal fires. Registering after the
// fire invokes fn immediately, keeping the callback view consistent with the
// poll view. fn must only signal; it runs without handler-side coordination.
func (s *Signal) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		fn()
		return
	}
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
}

// Done returns a channel closed when the signal fires, for select loops.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}
