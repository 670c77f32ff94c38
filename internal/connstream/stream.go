package connstream

import "conngofer/internal/events"

// Stream is an immutable connection stream. It owns exactly one Handler,
// fixed at construction; create streams only via New or ForError.
type Stream[W, R any] struct {
	h Handler[W, R]
}

// New wraps handler with no behavior change: calling the stream's operations
// is observably identical to calling the handler's directly.
func New[W, R any](handler Handler[W, R]) *Stream[W, R] {
	return &Stream[W, R]{h: handler}
}

// ForError creates a stream whose every data subscription terminates
// immediately with err and produces no connections. SubscribeForEvents still
// succeeds, returning a no-op cancellation handle: no connection is ever
// produced, so the listener can never be invoked.
func ForError[W, R any](err error) *Stream[W, R] {
	return &Stream[W, R]{h: errorHandler[W, R]{err: err}}
}

// Subscribe starts one independent, cold data subscription: the handler's
// produce step runs fresh for this subscriber. The returned CancelFunc stops
// further delivery to sub; it has no effect on event-listener registrations.
// A connection produced after cancellation is closed instead of delivered.
func (s *Stream[W, R]) Subscribe(sub Subscriber[W, R]) events.CancelFunc {
	g := newGate(sub)
	s.h.Produce(g)
	return g.Cancel
}

// SubscribeForEvents registers listener for lifecycle events on all
// connections created by this stream. It delegates verbatim to the handler
// and may be called any number of times, before, during, or after any data
// subscription; each call yields an independent cancellation handle.
func (s *Stream[W, R]) SubscribeForEvents(listener events.Listener) events.CancelFunc {
	return s.h.RegisterListener(listener)
}

// errorHandler terminates every subscription with a fixed error.
type errorHandler[W, R any] struct {
	err error
}

func (h errorHandler[W, R]) Produce(sub Subscriber[W, R]) {
	sub.OnError(h.err)
}

func (h errorHandler[W, R]) RegisterListener(events.Listener) events.CancelFunc {
	return events.NopCancel
}
