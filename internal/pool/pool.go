package pool

import (
	"errors"

	"github.com/rs/zerolog"

	"conngofer/internal/config"
	"conngofer/internal/connstream"
	"conngofer/internal/events"
)

// ErrNoEndpointsAvailable is returned when no endpoint can be selected.
var ErrNoEndpointsAvailable = errors.New("no endpoints available")

// Pool owns a group of endpoints and hands out connection streams over them.
// Streams produced by the pool are delegating: each data subscription
// resolves an endpoint through the balancer and delegates to that endpoint's
// factory stream, with listener registrations forwarded along.
type Pool struct {
	endpoints []*Endpoint
	selector  Selector
	monitor   *Monitor
	retry     RetryConfig
	logger    zerolog.Logger
}

// NewPool creates a Pool from configuration.
func NewPool(cfg *config.Config, logger zerolog.Logger) *Pool {
	poolLogger := logger.With().Str("component", "pool").Logger()

	breakerCfg := BreakerConfig{}
	if cfg.Breaker != nil {
		breakerCfg = BreakerConfig{
			Enabled:             cfg.Breaker.Enabled,
			FailureThreshold:    cfg.Breaker.FailureThreshold,
			RecoveryTimeout:     cfg.GetBreakerRecoveryTimeoutDuration(),
			HalfOpenMaxAttempts: cfg.Breaker.HalfOpenMaxAttempts,
		}
	}

	endpoints := make([]*Endpoint, 0, len(cfg.Endpoints))
	for _, epCfg := range cfg.Endpoints {
		endpoints = append(endpoints, NewEndpoint(epCfg, cfg.GetDialTimeoutDuration(), breakerCfg, poolLogger))
	}

	p := &Pool{
		endpoints: endpoints,
		retry: RetryConfig{
			Enabled:     cfg.RetryEnabled,
			MaxAttempts: cfg.RetryMaxAttempts,
		},
		logger: poolLogger,
	}
	p.selector = NewWeightedRoundRobin(p)
	p.monitor = NewMonitor(endpoints, cfg.GetStatusLogIntervalDuration(), poolLogger)
	return p
}

// Start starts the status monitor.
func (p *Pool) Start() {
	p.monitor.Start()
	p.logger.Info().Int("endpoints", len(p.endpoints)).Msg("pool started")
}

// Stop stops the pool.
func (p *Pool) Stop() {
	p.monitor.Stop()
	p.logger.Info().Msg("pool stopped")
}

// Endpoints returns all endpoints.
func (p *Pool) Endpoints() []*Endpoint {
	result := make([]*Endpoint, len(p.endpoints))
	copy(result, p.endpoints)
	return result
}

// AvailableMain implements EndpointProvider.
func (p *Pool) AvailableMain() []*Endpoint {
	result := make([]*Endpoint, 0, len(p.endpoints))
	for _, e := range p.endpoints {
		if e.Available() && e.IsMain() {
			result = append(result, e)
		}
	}
	return result
}

// AvailableFallback implements EndpointProvider.
func (p *Pool) AvailableFallback() []*Endpoint {
	result := make([]*Endpoint, 0, len(p.endpoints))
	for _, e := range p.endpoints {
		if e.Available() && e.IsFallback() {
			result = append(result, e)
		}
	}
	return result
}

// GetByName returns an endpoint by name, or nil.
func (p *Pool) GetByName(name string) *Endpoint {
	for _, e := range p.endpoints {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Stream returns a connection stream that resolves one endpoint per data
// subscription. Listeners registered on it, before or after subscribing,
// reach whichever endpoint factories end up producing connections.
func (p *Pool) Stream() *connstream.Stream[[]byte, []byte] {
	h := connstream.NewDelegatingHandler[[]byte, []byte](p.resolveOnce)
	h.RegisterListener(p.breakerListener())
	return connstream.New[[]byte, []byte](h)
}

// resolveOnce picks one endpoint and delegates to its factory stream.
func (p *Pool) resolveOnce(sub connstream.Subscriber[[]byte, []byte], forward connstream.ForwardFunc[[]byte, []byte]) error {
	ep := p.selector.Next(nil)
	if ep == nil {
		return ErrNoEndpointsAvailable
	}
	p.logger.Debug().Str("endpoint", ep.Name()).Msg("resolved endpoint")

	inner := ep.Factory().Stream()
	forward(inner)
	inner.Subscribe(sub)
	return nil
}

// breakerListener feeds dial outcomes observed on the event side-channel
// back into the endpoints' circuit breakers. It is registered on every
// stream the pool hands out, so it reaches every inner factory stream the
// delegating handlers resolve.
func (p *Pool) breakerListener() events.Listener {
	return events.ListenerFunc(func(ev events.Event) {
		ep := p.GetByName(ev.Endpoint)
		if ep == nil {
			return
		}
		switch ev.Kind {
		case events.KindConnectSuccess:
			ep.Breaker().RecordSuccess()
		case events.KindConnectFailed:
			ep.Breaker().RecordFailure()
		}
	})
}
