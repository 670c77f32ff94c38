package main

import (
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"conngofer/internal/config"
	"conngofer/internal/connstream"
	"conngofer/internal/events"
	"conngofer/internal/metrics"
	"conngofer/internal/pool"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Basic logger for startup errors
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info().
		Str("config", *configPath).
		Int("endpoints", len(cfg.Endpoints)).
		Bool("retry", cfg.RetryEnabled).
		Msg("starting conngofer")

	p := pool.NewPool(cfg, logger)
	p.Start()

	stream := p.StreamWithRetry()

	// Instrument the stream before the first subscription: counters plus a
	// deduplicated event log.
	connMetrics := metrics.NewConnMetrics()
	cancelMetrics := stream.SubscribeForEvents(connMetrics)

	logListener, err := events.NewDeduplicator(metrics.NewLogListener(logger), cfg.DedupCacheSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event deduplicator")
	}
	cancelLog := stream.SubscribeForEvents(logListener)

	sub := &connLogger{logger: logger.With().Str("component", "subscriber").Logger()}
	cancelData := stream.Subscribe(sub)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	cancelData()
	sub.CloseConns()
	cancelLog()
	cancelMetrics()
	p.Stop()

	snap := connMetrics.Snapshot()
	logger.Info().
		Uint64("attempts", snap.Attempts).
		Uint64("successes", snap.Successes).
		Uint64("failures", snap.Failures).
		Uint64("bytesRead", snap.BytesRead).
		Uint64("bytesWritten", snap.BytesWritten).
		Msg("final connection stats")
}

// connLogger is a demo data subscriber: it logs produced connections and
// drains them in a read loop until shutdown.
type connLogger struct {
	logger zerolog.Logger
	mu     sync.Mutex
	conns  []connstream.Conn[[]byte, []byte]
}

func (s *connLogger) OnConn(c connstream.Conn[[]byte, []byte]) {
	s.mu.Lock()
	s.conns = append(s.conns, c)
	s.mu.Unlock()

	s.logger.Info().Msg("connection established")
	go func() {
		for {
			msg, err := c.Read()
			if err != nil {
				s.logger.Debug().Err(err).Msg("read loop ended")
				return
			}
			s.logger.Debug().Int("bytes", len(msg)).Msg("message received")
		}
	}()
}

func (s *connLogger) OnError(err error) {
	s.logger.Error().Err(err).Msg("connection stream failed")
}

func (s *connLogger) OnComplete() {
	s.logger.Info().Msg("connection stream completed")
}

// CloseConns closes every connection received so far.
func (s *connLogger) CloseConns() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// setupLogger configures the zerolog logger.
func setupLogger(level string) zerolog.Logger {
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
