package config

import "time"

// Role is the endpoint role in config.
type Role string

const (
	RoleMain     Role = "main"
	RoleFallback Role = "fallback"
)

// Default configuration values.
const (
	DefaultLogLevel          = "info"
	DefaultDialTimeout       = 10000 // ms
	DefaultStatusLogInterval = 60000 // ms
	DefaultDedupCacheSize    = 1024
	DefaultRetryMaxAttempts  = 3
	DefaultEndpointWeight    = 1
	DefaultEndpointRole      = RoleMain

	DefaultBreakerFailureThreshold    = 5
	DefaultBreakerRecoveryTimeout     = 30000 // ms
	DefaultBreakerHalfOpenMaxAttempts = 2
)

// EndpointConfig describes one WebSocket endpoint.
type EndpointConfig struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Weight int    `json:"weight"`
	Role   Role   `json:"role"`
}

// BreakerConfig describes circuit breaker settings.
type BreakerConfig struct {
	Enabled             bool `json:"enabled"`
	FailureThreshold    int  `json:"failureThreshold"`
	RecoveryTimeout     int  `json:"recoveryTimeout"` // ms
	HalfOpenMaxAttempts int  `json:"halfOpenMaxAttempts"`
}

// Config is the top-level configuration.
type Config struct {
	LogLevel          string           `json:"logLevel"`
	DialTimeout       int              `json:"dialTimeout"`       // ms
	StatusLogInterval int              `json:"statusLogInterval"` // ms
	DedupCacheSize    int              `json:"dedupCacheSize"`
	RetryEnabled      bool             `json:"retryEnabled"`
	RetryMaxAttempts  int              `json:"retryMaxAttempts"`
	Breaker           *BreakerConfig   `json:"breaker"`
	Endpoints         []EndpointConfig `json:"endpoints"`
}

// GetDialTimeoutDuration returns the dial timeout as a time.Duration.
func (c *Config) GetDialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Millisecond
}

// GetStatusLogIntervalDuration returns the status log interval as a time.Duration.
func (c *Config) GetStatusLogIntervalDuration() time.Duration {
	return time.Duration(c.StatusLogInterval) * time.Millisecond
}

// GetBreakerRecoveryTimeoutDuration returns the breaker recovery timeout as a time.Duration.
func (c *Config) GetBreakerRecoveryTimeoutDuration() time.Duration {
	if c.Breaker == nil {
		return time.Duration(DefaultBreakerRecoveryTimeout) * time.Millisecond
	}
	return time.Duration(c.Breaker.RecoveryTimeout) * time.Millisecond
}
