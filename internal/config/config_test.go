package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"endpoints": [
			{"name": "primary", "url": "wss://example.com/ws"}
		]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.DialTimeout != DefaultDialTimeout {
		t.Errorf("DialTimeout = %d, want %d", cfg.DialTimeout, DefaultDialTimeout)
	}
	if cfg.DedupCacheSize != DefaultDedupCacheSize {
		t.Errorf("DedupCacheSize = %d, want %d", cfg.DedupCacheSize, DefaultDedupCacheSize)
	}
	if cfg.Endpoints[0].Weight != DefaultEndpointWeight {
		t.Errorf("Weight = %d, want %d", cfg.Endpoints[0].Weight, DefaultEndpointWeight)
	}
	if cfg.Endpoints[0].Role != RoleMain {
		t.Errorf("Role = %s, want %s", cfg.Endpoints[0].Role, RoleMain)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `{
		"logLevel": "debug",
		"dialTimeout": 2000,
		"retryEnabled": true,
		"retryMaxAttempts": 5,
		"breaker": {"enabled": true, "failureThreshold": 3},
		"endpoints": [
			{"name": "a", "url": "wss://a.example.com", "weight": 3, "role": "main"},
			{"name": "b", "url": "wss://b.example.com", "weight": 1, "role": "fallback"}
		]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.RetryEnabled || cfg.RetryMaxAttempts != 5 {
		t.Errorf("retry = %v/%d, want true/5", cfg.RetryEnabled, cfg.RetryMaxAttempts)
	}
	if cfg.Breaker.RecoveryTimeout != DefaultBreakerRecoveryTimeout {
		t.Errorf("breaker recovery default not applied: %d", cfg.Breaker.RecoveryTimeout)
	}
	if len(cfg.Endpoints) != 2 || cfg.Endpoints[1].Role != RoleFallback {
		t.Errorf("endpoints parsed wrong: %+v", cfg.Endpoints)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"noEndpoints", `{"endpoints": []}`},
		{"missingName", `{"endpoints": [{"url": "wss://x"}]}`},
		{"missingURL", `{"endpoints": [{"name": "a"}]}`},
		{"duplicateName", `{"endpoints": [
			{"name": "a", "url": "wss://x"},
			{"name": "a", "url": "wss://y"}
		]}`},
		{"badRole", `{"endpoints": [{"name": "a", "url": "wss://x", "role": "backup"}]}`},
		{"badLogLevel", `{"logLevel": "trace", "endpoints": [{"name": "a", "url": "wss://x"}]}`},
		{"badJSON", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error")
	}
}
