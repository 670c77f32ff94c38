package events

import "time"

// Kind identifies the lifecycle stage an Event describes.
type Kind string

const (
	KindConnectStart   Kind = "connectStart"
	KindConnectSuccess Kind = "connectSuccess"
	KindConnectFailed  Kind = "connectFailed"
	KindConnClosed     Kind = "connClosed"
	KindBytesRead      Kind = "bytesRead"
	KindBytesWritten   Kind = "bytesWritten"
)

// Event is a connection lifecycle notification. Connection producers fill it
// in; the stream core only relays listeners, never events, so everything a
// listener learns arrives through this struct.
type Event struct {
	Kind     Kind
	Endpoint string
	ConnID   uint64
	Elapsed  time.Duration
	Bytes    int
	Err      error
}

// Listener receives lifecycle events from every connection produced by the
// stream(s) it is registered on. OnEvent may be called from any goroutine and
// must not block.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(ev Event) { f(ev) }
