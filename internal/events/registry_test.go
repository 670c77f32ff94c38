package events

import (
	"sync"
	"testing"
)

// mockSink is a forwarding target that tracks live registrations and can
// broadcast events to them.
type mockSink struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

func newMockSink() *mockSink {
	return &mockSink{listeners: make(map[int]Listener)}
}

func (s *mockSink) SubscribeForEvents(l Listener) CancelFunc {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *mockSink) emit(ev Event) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l.OnEvent(ev)
	}
}

func (s *mockSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// countingListener counts events it receives.
type countingListener struct {
	mu    sync.Mutex
	count int
}

func (c *countingListener) OnEvent(Event) {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func (c *countingListener) got() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func TestRegistry_RegisterCancel(t *testing.T) {
	r := NewRegistry[Listener]()

	l := &countingListener{}
	cancel := r.Register(l)
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	cancel()
	if r.Len() != 0 {
		t.Fatalf("Len after cancel = %d, want 0", r.Len())
	}

	// Idempotent: a second invocation is a harmless no-op.
	cancel()
	if r.Len() != 0 {
		t.Fatalf("Len after repeated cancel = %d, want 0", r.Len())
	}
}

func TestRegistry_ForwardExistingRegistrations(t *testing.T) {
	r := NewRegistry[Listener]()
	l := &countingListener{}
	r.Register(l)

	sink := newMockSink()
	r.ForwardAllTo(sink)

	if sink.count() != 1 {
		t.Fatalf("sink registrations = %d, want 1", sink.count())
	}

	sink.emit(Event{Kind: KindConnectSuccess})
	if l.got() != 1 {
		t.Errorf("listener events = %d, want 1", l.got())
	}
}

func TestRegistry_ForwardIsLateBinding(t *testing.T) {
	r := NewRegistry[Listener]()
	sink := newMockSink()
	r.ForwardAllTo(sink)

	// Registered after forwarding already began; must still reach the sink.
	l := &countingListener{}
	r.Register(l)

	if sink.count() != 1 {
		t.Fatalf("sink registrations = %d, want 1", sink.count())
	}

	sink.emit(Event{Kind: KindConnectSuccess})
	if l.got() != 1 {
		t.Errorf("listener events = %d, want 1", l.got())
	}
}

func TestRegistry_ForwardToMultipleSinks(t *testing.T) {
	r := NewRegistry[Listener]()
	first := newMockSink()
	second := newMockSink()
	r.ForwardAllTo(first)

	l := &countingListener{}
	r.Register(l)

	r.ForwardAllTo(second)

	if first.count() != 1 || second.count() != 1 {
		t.Fatalf("sink registrations = %d/%d, want 1/1", first.count(), second.count())
	}

	first.emit(Event{Kind: KindConnectStart})
	second.emit(Event{Kind: KindConnectStart})
	if l.got() != 2 {
		t.Errorf("listener events = %d, want 2", l.got())
	}
}

func TestRegistry_ForwardToSameSinkIsIdempotent(t *testing.T) {
	r := NewRegistry[Listener]()
	sink := newMockSink()

	l := &countingListener{}
	r.Register(l)

	r.ForwardAllTo(sink)
	r.ForwardAllTo(sink)

	if sink.count() != 1 {
		t.Fatalf("sink registrations = %d, want 1", sink.count())
	}

	sink.emit(Event{Kind: KindConnectSuccess})
	if l.got() != 1 {
		t.Errorf("listener events = %d, want 1", l.got())
	}
}

// funcSink adapts a function to Sink. Func types are not comparable, so the
// registry must not attempt identity deduplication on them.
type funcSink func(Listener) CancelFunc

func (f funcSink) SubscribeForEvents(l Listener) CancelFunc { return f(l) }

func TestRegistry_ForwardNonComparableSinkDoesNotPanic(t *testing.T) {
	r := NewRegistry[Listener]()
	sink := newMockSink()
	forward := funcSink(sink.SubscribeForEvents)

	l := &countingListener{}
	r.Register(l)

	// Two forwards of sinks with the same non-comparable dynamic type; the
	// identity check must be skipped, not panic. Without deduplication each
	// call establishes its own standing relationship.
	r.ForwardAllTo(forward)
	r.ForwardAllTo(funcSink(sink.SubscribeForEvents))

	if sink.count() != 2 {
		t.Errorf("sink registrations = %d, want 2", sink.count())
	}
}

func TestRegistry_CancelRemovesForwardedRegistrations(t *testing.T) {
	r := NewRegistry[Listener]()
	sink := newMockSink()
	r.ForwardAllTo(sink)

	l := &countingListener{}
	cancel := r.Register(l)
	if sink.count() != 1 {
		t.Fatalf("sink registrations = %d, want 1", sink.count())
	}

	cancel()
	if sink.count() != 0 {
		t.Fatalf("sink registrations after cancel = %d, want 0", sink.count())
	}

	sink.emit(Event{Kind: KindConnectFailed})
	if l.got() != 0 {
		t.Errorf("cancelled listener events = %d, want 0", l.got())
	}
}

func TestRegistry_DuplicateListenerIndependentHandles(t *testing.T) {
	r := NewRegistry[Listener]()
	sink := newMockSink()
	r.ForwardAllTo(sink)

	l := &countingListener{}
	cancelFirst := r.Register(l)
	r.Register(l)

	if sink.count() != 2 {
		t.Fatalf("sink registrations = %d, want 2", sink.count())
	}

	// Cancelling one registration never suppresses the other.
	cancelFirst()
	if sink.count() != 1 {
		t.Fatalf("sink registrations after one cancel = %d, want 1", sink.count())
	}

	sink.emit(Event{Kind: KindConnectSuccess})
	if l.got() != 1 {
		t.Errorf("listener events = %d, want 1", l.got())
	}
}

func TestRegistry_CancelOnlyAffectsOwnRegistration(t *testing.T) {
	r := NewRegistry[Listener]()
	sink := newMockSink()
	r.ForwardAllTo(sink)

	l1 := &countingListener{}
	l2 := &countingListener{}
	cancel1 := r.Register(l1)
	r.Register(l2)

	cancel1()
	sink.emit(Event{Kind: KindConnectSuccess})

	if l1.got() != 0 {
		t.Errorf("cancelled listener events = %d, want 0", l1.got())
	}
	if l2.got() != 1 {
		t.Errorf("remaining listener events = %d, want 1", l2.got())
	}
}

func TestRegistry_Each(t *testing.T) {
	r := NewRegistry[Listener]()
	l1 := &countingListener{}
	l2 := &countingListener{}
	r.Register(l1)
	cancel2 := r.Register(l2)
	cancel2()

	r.Each(func(l Listener) { l.OnEvent(Event{Kind: KindConnClosed}) })

	if l1.got() != 1 {
		t.Errorf("registered listener events = %d, want 1", l1.got())
	}
	if l2.got() != 0 {
		t.Errorf("cancelled listener events = %d, want 0", l2.got())
	}
}

func TestRegistry_ConcurrentRegisterCancelForward(t *testing.T) {
	r := NewRegistry[Listener]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cancel := r.Register(&countingListener{})
				cancel()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				r.ForwardAllTo(newMockSink())
			}
		}()
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("Len after all cancels = %d, want 0", r.Len())
	}
}

func TestRegistry_ConcurrentForwardedCancels(t *testing.T) {
	r := NewRegistry[Listener]()
	sinks := make([]*mockSink, 4)
	for i := range sinks {
		sinks[i] = newMockSink()
		r.ForwardAllTo(sinks[i])
	}

	cancels := make([]CancelFunc, 64)
	for i := range cancels {
		cancels[i] = r.Register(&countingListener{})
	}

	var wg sync.WaitGroup
	for _, cancel := range cancels {
		wg.Add(1)
		go func(c CancelFunc) {
			defer wg.Done()
			c()
		}(cancel)
	}
	wg.Wait()

	for i, s := range sinks {
		if s.count() != 0 {
			t.Errorf("sink[%d] registrations = %d, want 0", i, s.count())
		}
	}
}
