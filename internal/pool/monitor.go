package pool

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Monitor periodically logs endpoint availability.
type Monitor struct {
	endpoints []*Endpoint
	interval  time.Duration
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates a Monitor over endpoints.
func NewMonitor(endpoints []*Endpoint, interval time.Duration, logger zerolog.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		endpoints: endpoints,
		interval:  interval,
		logger:    logger.With().Str("component", "monitor").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the status logging loop.
func (m *Monitor) Start() {
	if m.interval <= 0 {
		return
	}
	m.wg.Add(1)
	go m.statusLoop()
}

// Stop stops the monitor and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) statusLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.logStatus()
		}
	}
}

func (m *Monitor) logStatus() {
	available := 0
	for _, e := range m.endpoints {
		if e.Available() {
			available++
		}
		m.logger.Debug().
			Str("endpoint", e.Name()).
			Bool("available", e.Available()).
			Str("role", string(e.Role())).
			Msg("endpoint status")
	}
	m.logger.Info().
		Int("available", available).
		Int("total", len(m.endpoints)).
		Msg("pool status")
}
