package wsconn

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"conngofer/internal/connstream"
	"conngofer/internal/events"
)

// Factory produces WebSocket connections for one endpoint. It implements
// connstream.Handler: every data subscription dials the endpoint afresh
// (cold), emits a single connection, then completes. All lifecycle events of
// the connections it creates are announced to its listener registry.
type Factory struct {
	name        string
	url         string
	dialer      Dialer
	dialTimeout time.Duration
	listeners   *events.Registry[events.Listener]
	logger      zerolog.Logger
	connSeq     atomic.Uint64

	// stream is the single stream value handed out by Stream, so repeated
	// forwarding onto this factory stays idempotent.
	stream *connstream.Stream[[]byte, []byte]
}

// Config for creating a new Factory.
type Config struct {
	// Name identifies the endpoint in events and logs.
	Name string
	// URL is the WebSocket endpoint to dial.
	URL string
	// Dialer overrides the default gorilla dialer.
	Dialer Dialer
	// DialTimeout bounds each dial attempt.
	DialTimeout time.Duration
	Logger      zerolog.Logger
}

// NewFactory creates a Factory for one endpoint.
func NewFactory(cfg Config) *Factory {
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = GorillaDialer{HandshakeTimeout: cfg.DialTimeout}
	}
	f := &Factory{
		name:        cfg.Name,
		url:         cfg.URL,
		dialer:      dialer,
		dialTimeout: cfg.DialTimeout,
		listeners:   events.NewRegistry[events.Listener](),
		logger:      cfg.Logger.With().Str("endpoint", cfg.Name).Logger(),
	}
	f.stream = connstream.New[[]byte, []byte](f)
	return f
}

// Name returns the endpoint name.
func (f *Factory) Name() string {
	return f.name
}

// Stream returns this factory as a connection stream. The same stream value
// is returned every time.
func (f *Factory) Stream() *connstream.Stream[[]byte, []byte] {
	return f.stream
}

// Produce implements connstream.Handler. The dial runs on its own goroutine
// so subscribing never blocks on I/O.
func (f *Factory) Produce(sub connstream.Subscriber[[]byte, []byte]) {
	go f.dial(sub)
}

// RegisterListener implements connstream.Handler.
func (f *Factory) RegisterListener(l events.Listener) events.CancelFunc {
	return f.listeners.Register(l)
}

func (f *Factory) dial(sub connstream.Subscriber[[]byte, []byte]) {
	connID := f.connSeq.Add(1)
	start := time.Now()

	f.announce(events.Event{Kind: events.KindConnectStart, Endpoint: f.name, ConnID: connID})

	ctx := context.Background()
	if f.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.dialTimeout)
		defer cancel()
	}

	raw, err := f.dialer.Dial(ctx, f.url)
	if err != nil {
		err = fmt.Errorf("failed to connect WebSocket: %w", err)
		f.logger.Debug().Err(err).Uint64("connID", connID).Msg("dial failed")
		f.announce(events.Event{
			Kind:     events.KindConnectFailed,
			Endpoint: f.name,
			ConnID:   connID,
			Elapsed:  time.Since(start),
			Err:      err,
		})
		sub.OnError(err)
		return
	}

	f.logger.Debug().Uint64("connID", connID).Dur("elapsed", time.Since(start)).Msg("connected")
	f.announce(events.Event{
		Kind:     events.KindConnectSuccess,
		Endpoint: f.name,
		ConnID:   connID,
		Elapsed:  time.Since(start),
	})

	sub.OnConn(newConn(raw, f, connID))
	sub.OnComplete()
}

// announce broadcasts ev to the current listener set.
func (f *Factory) announce(ev events.Event) {
	f.listeners.Each(func(l events.Listener) { l.OnEvent(ev) })
}
