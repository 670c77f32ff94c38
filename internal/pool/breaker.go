package pool

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	Enabled             bool
	FailureThreshold    int
	RecoveryTimeout     time.Duration
	HalfOpenMaxAttempts int
}

// Breaker temporarily excludes an endpoint from selection after consecutive
// dial failures. It is fed through the event side-channel: the pool
// registers a listener on its own streams that records dial outcomes here.
type Breaker struct {
	cfg             BreakerConfig
	state           breakerState
	failures        int
	halfOpenSuccess int
	lastFailureAt   time.Time
	mu              sync.Mutex
}

// NewBreaker creates a new Breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxAttempts <= 0 {
		cfg.HalfOpenMaxAttempts = 2
	}
	return &Breaker{
		cfg:   cfg,
		state: breakerClosed,
	}
}

// AllowRequest returns true if a dial should be allowed. An open breaker
// moves to half-open once the recovery timeout since the last failure has
// elapsed.
func (b *Breaker) AllowRequest() bool {
	if !b.cfg.Enabled {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen && time.Since(b.lastFailureAt) >= b.cfg.RecoveryTimeout {
		b.state = breakerHalfOpen
		b.halfOpenSuccess = 0
	}
	if b.state == breakerHalfOpen {
		return b.halfOpenSuccess < b.cfg.HalfOpenMaxAttempts
	}
	return b.state == breakerClosed
}

// RecordSuccess records a successful dial. Enough half-open successes close
// the breaker.
func (b *Breaker) RecordSuccess() {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.halfOpenSuccess++
		if b.halfOpenSuccess >= b.cfg.HalfOpenMaxAttempts {
			b.state = breakerClosed
		}
	}
	if b.state == breakerClosed {
		b.failures = 0
	}
}

// RecordFailure records a failed dial. A half-open breaker reopens on the
// first failure; a closed one opens at the threshold.
func (b *Breaker) RecordFailure() {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureAt = time.Now()

	if b.state == breakerHalfOpen {
		b.state = breakerOpen
		b.halfOpenSuccess = 0
		return
	}
	if b.state == breakerClosed {
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.state = breakerOpen
		}
	}
}
