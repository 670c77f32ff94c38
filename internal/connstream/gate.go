package connstream

import "sync/atomic"

const (
	gateActive int32 = iota
	gateCancelled
	gateTerminated
)

// gate wraps a Subscriber and enforces the cold-stream contract on behalf of
// handlers: at most one terminal signal, and nothing after cancellation.
// Connections emitted once the gate is no longer active are closed, not
// dropped. Handlers emit from arbitrary goroutines, so the state is a single
// atomic.
type gate[W, R any] struct {
	sub   Subscriber[W, R]
	state atomic.Int32
}

func newGate[W, R any](sub Subscriber[W, R]) *gate[W, R] {
	return &gate[W, R]{sub: sub}
}

// Cancel stops further delivery. Idempotent; a terminal signal already
// delivered wins over a later cancel.
func (g *gate[W, R]) Cancel() {
	g.state.CompareAndSwap(gateActive, gateCancelled)
}

func (g *gate[W, R]) OnConn(c Conn[W, R]) {
	if g.state.Load() == gateActive {
		g.sub.OnConn(c)
		return
	}
	// Nobody downstream will ever hold this connection; close it so a dial
	// that finishes after cancellation does not leak an open socket.
	c.Close()
}

func (g *gate[W, R]) OnError(err error) {
	if g.state.CompareAndSwap(gateActive, gateTerminated) {
		g.sub.OnError(err)
	}
}

func (g *gate[W, R]) OnComplete() {
	if g.state.CompareAndSwap(gateActive, gateTerminated) {
		g.sub.OnComplete()
	}
}
