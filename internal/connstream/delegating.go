package connstream

import "conngofer/internal/events"

// ForwardFunc forwards every listener registered on a delegating handler,
// present and future, onto inner's own registration mechanism.
type ForwardFunc[W, R any] func(inner *Stream[W, R])

// ResolveFunc is the extension point of a DelegatingHandler. Per call it
// must, exactly once: determine the inner Stream to use, invoke forward with
// it, and subscribe sub to it so connections and the terminal signal flow
// through unchanged. A non-nil return value becomes the subscription's
// terminal error.
type ResolveFunc[W, R any] func(sub Subscriber[W, R], forward ForwardFunc[W, R]) error

// DelegatingHandler is a Handler whose connections come from an inner Stream
// resolved dynamically per subscription (chosen by a pool, balancer, or
// retry policy). It owns one listener registry, created once per handler and
// shared across every subscription to it, so a listener registered once
// observes connections from every subsequent subscription.
type DelegatingHandler[W, R any] struct {
	listeners *events.Registry[events.Listener]
	resolve   ResolveFunc[W, R]
}

// NewDelegatingHandler creates a DelegatingHandler around resolve.
func NewDelegatingHandler[W, R any](resolve ResolveFunc[W, R]) *DelegatingHandler[W, R] {
	return &DelegatingHandler[W, R]{
		listeners: events.NewRegistry[events.Listener](),
		resolve:   resolve,
	}
}

// Produce implements Handler. Resolution failures surface as the data
// channel's terminal error, never out of Produce itself.
func (h *DelegatingHandler[W, R]) Produce(sub Subscriber[W, R]) {
	err := h.resolve(sub, func(inner *Stream[W, R]) {
		h.listeners.ForwardAllTo(inner)
	})
	if err != nil {
		sub.OnError(err)
	}
}

// RegisterListener implements Handler: the listener joins the shared
// registry regardless of whether any subscription has happened yet, and is
// forwarded onto every inner stream this handler has resolved or will
// resolve.
func (h *DelegatingHandler[W, R]) RegisterListener(l events.Listener) events.CancelFunc {
	return h.listeners.Register(l)
}
