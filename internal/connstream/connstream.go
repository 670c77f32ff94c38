// Package connstream provides a cold, connection-producing stream with an
// independent side-channel for lifecycle event listeners.
//
// A Stream wraps exactly one Handler. Every data subscription re-runs the
// handler's produce step from scratch; nothing is shared between data
// subscribers. Event listeners register through SubscribeForEvents at any
// time, on their own lifeline: they survive data subscriptions coming and
// going, and when the handler delegates to an inner stream they are
// forwarded onto it automatically, including listeners registered after
// forwarding already happened.
package connstream

import "conngofer/internal/events"

// Conn is an opaque bidirectional connection carrying W-typed writes and
// R-typed reads. The stream core never constructs, inspects, or mutates
// connections; it only relays values produced by handlers.
type Conn[W, R any] interface {
	Write(msg W) error
	Read() (R, error)
	Close() error
}

// Subscriber receives the cold-stream contract from one data subscription:
// zero or more connections followed by exactly one terminal signal.
type Subscriber[W, R any] interface {
	// OnConn delivers one produced connection.
	OnConn(c Conn[W, R])

	// OnError delivers the terminal error. No method is called afterwards.
	OnError(err error)

	// OnComplete signals successful termination. No method is called
	// afterwards.
	OnComplete()
}

// Handler is the pluggable logic behind a Stream.
type Handler[W, R any] interface {
	// Produce pushes connections and a single terminal signal to sub. It
	// must return without blocking on I/O; handlers that dial do so on
	// their own goroutines.
	Produce(sub Subscriber[W, R])

	// RegisterListener registers a lifecycle listener. It succeeds
	// synchronously and unconditionally; whether events ever reach the
	// listener is a downstream concern.
	RegisterListener(l events.Listener) events.CancelFunc
}
