package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.StatusLogInterval == 0 {
		cfg.StatusLogInterval = DefaultStatusLogInterval
	}
	if cfg.DedupCacheSize == 0 {
		cfg.DedupCacheSize = DefaultDedupCacheSize
	}
	if cfg.RetryMaxAttempts == 0 {
		cfg.RetryMaxAttempts = DefaultRetryMaxAttempts
	}

	if cfg.Breaker != nil {
		if cfg.Breaker.FailureThreshold == 0 {
			cfg.Breaker.FailureThreshold = DefaultBreakerFailureThreshold
		}
		if cfg.Breaker.RecoveryTimeout == 0 {
			cfg.Breaker.RecoveryTimeout = DefaultBreakerRecoveryTimeout
		}
		if cfg.Breaker.HalfOpenMaxAttempts == 0 {
			cfg.Breaker.HalfOpenMaxAttempts = DefaultBreakerHalfOpenMaxAttempts
		}
	}

	for i := range cfg.Endpoints {
		if cfg.Endpoints[i].Weight == 0 {
			cfg.Endpoints[i].Weight = DefaultEndpointWeight
		}
		if cfg.Endpoints[i].Role == "" {
			cfg.Endpoints[i].Role = DefaultEndpointRole
		}
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if len(cfg.Endpoints) == 0 {
		return errors.New("at least one endpoint is required")
	}

	names := make(map[string]bool)
	for i, ep := range cfg.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("endpoint[%d]: name is required", i)
		}

		if names[ep.Name] {
			return fmt.Errorf("endpoint[%d]: duplicate endpoint name '%s'", i, ep.Name)
		}
		names[ep.Name] = true

		if ep.URL == "" {
			return fmt.Errorf("endpoint '%s': url is required", ep.Name)
		}

		if ep.Weight <= 0 {
			return fmt.Errorf("endpoint '%s': weight must be positive", ep.Name)
		}

		if ep.Role != RoleMain && ep.Role != RoleFallback {
			return fmt.Errorf("endpoint '%s': role must be 'main' or 'fallback'", ep.Name)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("logLevel must be one of: debug, info, warn, error")
	}

	if cfg.DialTimeout < 0 {
		return fmt.Errorf("dialTimeout must be non-negative")
	}

	if cfg.StatusLogInterval < 0 {
		return fmt.Errorf("statusLogInterval must be non-negative")
	}

	if cfg.DedupCacheSize < 0 {
		return fmt.Errorf("dedupCacheSize must be non-negative")
	}

	if cfg.RetryMaxAttempts < 0 {
		return fmt.Errorf("retryMaxAttempts must be non-negative")
	}

	if cfg.Breaker != nil && cfg.Breaker.Enabled {
		if cfg.Breaker.FailureThreshold <= 0 {
			return fmt.Errorf("breaker.failureThreshold must be positive when breaker is enabled")
		}
		if cfg.Breaker.RecoveryTimeout <= 0 {
			return fmt.Errorf("breaker.recoveryTimeout must be positive when breaker is enabled")
		}
	}

	return nil
}
