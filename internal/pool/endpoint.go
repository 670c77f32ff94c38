package pool

import (
	"time"

	"github.com/rs/zerolog"

	"conngofer/internal/config"
	"conngofer/internal/wsconn"
)

// Role represents the endpoint role.
type Role string

const (
	RoleMain     Role = "main"
	RoleFallback Role = "fallback"
)

// RoleFromConfig converts config.Role to pool.Role.
func RoleFromConfig(r config.Role) Role {
	switch r {
	case config.RoleFallback:
		return RoleFallback
	default:
		return RoleMain
	}
}

// Endpoint is one dialable WebSocket endpoint with its selection state.
// Availability is owned entirely by the circuit breaker, which is fed dial
// outcomes through the event side-channel.
type Endpoint struct {
	name   string
	url    string
	weight int
	role   Role

	breaker *Breaker
	factory *wsconn.Factory
}

// NewEndpoint creates an Endpoint from configuration.
func NewEndpoint(cfg config.EndpointConfig, dialTimeout time.Duration, breakerCfg BreakerConfig, logger zerolog.Logger) *Endpoint {
	e := &Endpoint{
		name:    cfg.Name,
		url:     cfg.URL,
		weight:  cfg.Weight,
		role:    RoleFromConfig(cfg.Role),
		breaker: NewBreaker(breakerCfg),
		factory: wsconn.NewFactory(wsconn.Config{
			Name:        cfg.Name,
			URL:         cfg.URL,
			DialTimeout: dialTimeout,
			Logger:      logger,
		}),
	}
	return e
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string {
	return e.name
}

// URL returns the WebSocket URL.
func (e *Endpoint) URL() string {
	return e.url
}

// Weight returns the weight for load balancing.
func (e *Endpoint) Weight() int {
	return e.weight
}

// Role returns the endpoint role.
func (e *Endpoint) Role() Role {
	return e.role
}

// IsMain returns true if this is a main endpoint.
func (e *Endpoint) IsMain() bool {
	return e.role == RoleMain
}

// IsFallback returns true if this is a fallback endpoint.
func (e *Endpoint) IsFallback() bool {
	return e.role == RoleFallback
}

// Available reports whether the endpoint may be dialed right now, i.e. it is
// not excluded by its circuit breaker.
func (e *Endpoint) Available() bool {
	return e.breaker.AllowRequest()
}

// Factory returns the endpoint's connection factory.
func (e *Endpoint) Factory() *wsconn.Factory {
	return e.factory
}

// Breaker returns the endpoint's circuit breaker.
func (e *Endpoint) Breaker() *Breaker {
	return e.breaker
}
