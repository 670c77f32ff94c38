package metrics

import (
	"sync/atomic"

	"conngofer/internal/events"
)

// ConnMetrics aggregates connection lifecycle counters. It implements
// events.Listener; register it on any connection stream to count every
// connection that stream (or the inner streams it delegates to) produces.
type ConnMetrics struct {
	attempts     atomic.Uint64
	successes    atomic.Uint64
	failures     atomic.Uint64
	closes       atomic.Uint64
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Attempts     uint64
	Successes    uint64
	Failures     uint64
	Closes       uint64
	BytesRead    uint64
	BytesWritten uint64
}

// NewConnMetrics creates a zeroed ConnMetrics.
func NewConnMetrics() *ConnMetrics {
	return &ConnMetrics{}
}

// OnEvent implements events.Listener.
func (m *ConnMetrics) OnEvent(ev events.Event) {
	switch ev.Kind {
	case events.KindConnectStart:
		m.attempts.Add(1)
	case events.KindConnectSuccess:
		m.successes.Add(1)
	case events.KindConnectFailed:
		m.failures.Add(1)
	case events.KindConnClosed:
		m.closes.Add(1)
	case events.KindBytesRead:
		m.bytesRead.Add(uint64(ev.Bytes))
	case events.KindBytesWritten:
		m.bytesWritten.Add(uint64(ev.Bytes))
	}
}

// Snapshot returns the current counter values.
func (m *ConnMetrics) Snapshot() Snapshot {
	return Snapshot{
		Attempts:     m.attempts.Load(),
		Successes:    m.successes.Load(),
		Failures:     m.failures.Load(),
		Closes:       m.closes.Load(),
		BytesRead:    m.bytesRead.Load(),
		BytesWritten: m.bytesWritten.Load(),
	}
}
