package metrics

import (
	"github.com/rs/zerolog"

	"conngofer/internal/events"
)

// LogListener logs every lifecycle event it observes.
type LogListener struct {
	logger zerolog.Logger
}

// NewLogListener creates a LogListener.
func NewLogListener(logger zerolog.Logger) *LogListener {
	return &LogListener{logger: logger.With().Str("component", "conn-events").Logger()}
}

// OnEvent implements events.Listener.
func (l *LogListener) OnEvent(ev events.Event) {
	e := l.logger.Debug().
		Str("kind", string(ev.Kind)).
		Str("endpoint", ev.Endpoint).
		Uint64("connID", ev.ConnID)
	if ev.Elapsed > 0 {
		e = e.Dur("elapsed", ev.Elapsed)
	}
	if ev.Bytes > 0 {
		e = e.Int("bytes", ev.Bytes)
	}
	if ev.Err != nil {
		e = e.Err(ev.Err)
	}
	e.Msg("connection event")
}
