package pool

import (
	"errors"

	"conngofer/internal/connstream"
)

// ErrAllEndpointsFailed is returned when every selectable endpoint has been
// tried and failed.
var ErrAllEndpointsFailed = errors.New("all endpoints failed")

// RetryConfig holds retry configuration.
type RetryConfig struct {
	Enabled     bool
	MaxAttempts int
}

// StreamWithRetry returns a connection stream that, when a dial fails before
// any connection was delivered, re-resolves on a not-yet-tried endpoint up
// to the configured attempt cap. Every resolved inner stream receives the
// forwarded listeners, so listeners observe the failed attempts too.
func (p *Pool) StreamWithRetry() *connstream.Stream[[]byte, []byte] {
	h := connstream.NewDelegatingHandler[[]byte, []byte](func(sub connstream.Subscriber[[]byte, []byte], forward connstream.ForwardFunc[[]byte, []byte]) error {
		return p.resolveWithRetry(sub, forward, make(map[string]bool), 1)
	})
	h.RegisterListener(p.breakerListener())
	return connstream.New[[]byte, []byte](h)
}

// resolveWithRetry picks the next untried endpoint and delegates to it,
// installing a subscriber that re-resolves on failure.
func (p *Pool) resolveWithRetry(sub connstream.Subscriber[[]byte, []byte], forward connstream.ForwardFunc[[]byte, []byte], tried map[string]bool, attempt int) error {
	ep := p.selector.Next(tried)
	if ep == nil {
		if len(tried) == 0 {
			return ErrNoEndpointsAvailable
		}
		return ErrAllEndpointsFailed
	}
	tried[ep.Name()] = true

	if ep.IsFallback() {
		p.logger.Warn().Str("endpoint", ep.Name()).Int("attempt", attempt).Msg("no main endpoints available, using fallback")
	}

	inner := ep.Factory().Stream()
	forward(inner)
	inner.Subscribe(&retrySubscriber{
		pool:    p,
		down:    sub,
		forward: forward,
		tried:   tried,
		attempt: attempt,
	})
	return nil
}

// retrySubscriber relays the inner stream's output downstream, except for a
// terminal error before the first connection, which triggers another
// resolution while attempts remain.
type retrySubscriber struct {
	pool      *Pool
	down      connstream.Subscriber[[]byte, []byte]
	forward   connstream.ForwardFunc[[]byte, []byte]
	tried     map[string]bool
	attempt   int
	delivered bool
}

func (rs *retrySubscriber) OnConn(c connstream.Conn[[]byte, []byte]) {
	rs.delivered = true
	rs.down.OnConn(c)
}

func (rs *retrySubscriber) OnComplete() {
	rs.down.OnComplete()
}

func (rs *retrySubscriber) OnError(err error) {
	maxAttempts := rs.pool.retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if rs.delivered || !rs.pool.retry.Enabled || rs.attempt >= maxAttempts {
		rs.down.OnError(err)
		return
	}

	rs.pool.logger.Warn().Err(err).Int("attempt", rs.attempt).Msg("dial failed, retrying on another endpoint")

	if rerr := rs.pool.resolveWithRetry(rs.down, rs.forward, rs.tried, rs.attempt+1); rerr != nil {
		// Nothing left to try; surface the dial error, not the exhaustion.
		rs.down.OnError(err)
	}
}
