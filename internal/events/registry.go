package events

import (
	"reflect"
	"sync"
)

// CancelFunc removes exactly one prior registration. Calling it more than
// once is a harmless no-op. Cancelling one registration never affects any
// other, even for the same listener value registered twice.
type CancelFunc func()

// NopCancel is the CancelFunc returned where there is nothing to cancel.
func NopCancel() {}

// Sink is anything listeners can be forwarded onto. A Stream satisfies it
// via SubscribeForEvents.
type Sink[L any] interface {
	SubscribeForEvents(listener L) CancelFunc
}

type entry[L any] struct {
	listener L
	// cancels holds, per sink ID, the cancellation handle for this entry's
	// forwarded registration on that sink.
	cancels map[uint64]CancelFunc
}

// Registry is a concurrency-safe set of listener registrations. Each
// Register yields an independent, idempotent cancellation handle.
//
// ForwardAllTo establishes a standing relationship with a sink: every
// registration present when the call is made, and every registration added
// afterwards, is forwarded onto the sink; cancelling the local registration
// cancels its forwarded counterparts. Sinks accumulate for the lifetime of
// the registry, so one registry can feed every inner stream its owner ever
// resolves.
type Registry[L any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]*entry[L]
	sinks   map[uint64]Sink[L]
}

// NewRegistry creates an empty Registry.
func NewRegistry[L any]() *Registry[L] {
	return &Registry[L]{
		entries: make(map[uint64]*entry[L]),
		sinks:   make(map[uint64]Sink[L]),
	}
}

// Register adds a listener and returns its cancellation handle. The listener
// is immediately forwarded onto every sink previously passed to
// ForwardAllTo. Registering the same listener value twice produces two
// independent registrations.
func (r *Registry[L]) Register(listener L) CancelFunc {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	e := &entry[L]{listener: listener, cancels: make(map[uint64]CancelFunc)}
	r.entries[id] = e
	sinks := r.snapshotSinks()
	r.mu.Unlock()

	// Forward without holding the lock; sinks call back into arbitrary
	// handlers.
	for sinkID, sink := range sinks {
		r.attach(id, sinkID, sink)
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.unregister(id) })
	}
}

// ForwardAllTo forwards all current and future registrations onto sink.
// Forwarding twice to the same sink value is a no-op: the relationship is
// already standing. Identity is interface equality, so a sink of a
// non-comparable dynamic type (a func adapter, say) cannot be deduplicated
// and every call adds a fresh standing relationship.
func (r *Registry[L]) ForwardAllTo(sink Sink[L]) {
	dedup := sink != nil && reflect.TypeOf(sink).Comparable()

	r.mu.Lock()
	if dedup {
		for _, s := range r.sinks {
			if s == sink {
				r.mu.Unlock()
				return
			}
		}
	}
	r.nextID++
	sinkID := r.nextID
	r.sinks[sinkID] = sink
	current := make([]uint64, 0, len(r.entries))
	for id := range r.entries {
		current = append(current, id)
	}
	r.mu.Unlock()

	for _, id := range current {
		r.attach(id, sinkID, sink)
	}
}

// attach forwards entry id onto sink and records the resulting cancel. If
// the entry was cancelled while the sink call was in flight, the forwarded
// registration is cancelled right away.
func (r *Registry[L]) attach(id, sinkID uint64, sink Sink[L]) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	listener := e.listener
	r.mu.Unlock()

	cancel := sink.SubscribeForEvents(listener)

	r.mu.Lock()
	e, ok = r.entries[id]
	if ok {
		if _, dup := e.cancels[sinkID]; !dup {
			e.cancels[sinkID] = cancel
			cancel = nil
		}
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *Registry[L]) unregister(id uint64) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	for _, cancel := range e.cancels {
		cancel()
	}
}

// Each calls fn with a snapshot of the currently registered listeners.
// Delivery order between listeners is unspecified. A listener cancelled
// while Each is running may still be invoked for this broadcast.
func (r *Registry[L]) Each(fn func(L)) {
	r.mu.Lock()
	listeners := make([]L, 0, len(r.entries))
	for _, e := range r.entries {
		listeners = append(listeners, e.listener)
	}
	r.mu.Unlock()

	for _, l := range listeners {
		fn(l)
	}
}

// Len returns the number of live registrations.
func (r *Registry[L]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry[L]) snapshotSinks() map[uint64]Sink[L] {
	sinks := make(map[uint64]Sink[L], len(r.sinks))
	for id, s := range r.sinks {
		sinks[id] = s
	}
	return sinks
}
