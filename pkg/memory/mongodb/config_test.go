// ABOUTME: Tests for configuration defaulting
// ABOUTME: Zero values fall back to documented defaults, URI stays as given

package mongodb

import (
	"testing"
	"time"
)

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := Config{URI: "mongodb://localhost:27017"}.withDefaults()

	if cfg.URI != "mongodb://localhost:27017" {
		t.Errorf("URI must pass through, got %q", cfg.URI)
	}
	if cfg.Database != DefaultDatabase {
		t.Errorf("Expected default database %q, got %q", DefaultDatabase, cfg.Database)
	}
	if cfg.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("Expected %d reconnect attempts, got %d", DefaultMaxReconnectAttempts, cfg.MaxReconnectAttempts)
	}
	if cfg.ReconnectInterval != DefaultReconnectInterval {
		t.Errorf("Expected reconnect interval %v, got %v", DefaultReconnectInterval, cfg.ReconnectInterval)
	}
	if cfg.MaxPoolSize != DefaultMaxPoolSize {
		t.Errorf("Expected pool size %d, got %d", DefaultMaxPoolSize, cfg.MaxPoolSize)
	}
	if cfg.OperationTimeout != DefaultOperationTimeout {
		t.Errorf("Expected operation timeout %v, got %v", DefaultOperationTimeout, cfg.OperationTimeout)
	}
	if cfg.EnsureWaitTimeout != DefaultEnsureWaitTimeout {
		t.Errorf("Expected ensure wait %v, got %v", DefaultEnsureWaitTimeout, cfg.EnsureWaitTimeout)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		URI:                  "mongodb://db:27017",
		Database:             "custom",
		MaxReconnectAttempts: 2,
		ReconnectInterval:    time.Second,
		OperationTimeout:     time.Minute,
	}.withDefaults()

	if cfg.Database != "custom" {
		t.Errorf("Explicit database overridden: %q", cfg.Database)
	}
	if cfg.MaxReconnectAttempts != 2 {
		t.Errorf("Explicit attempts overridden: %d", cfg.MaxReconnectAttempts)
	}
	if cfg.ReconnectInterval != time.Second {
		t.Errorf("Explicit interval overridden: %v", cfg.ReconnectInterval)
	}
	if cfg.OperationTimeout != time.Minute {
		t.Errorf("Explicit operation timeout overridden: %v", cfg.OperationTimeout)
	}
	if cfg.SocketTimeout != DefaultSocketTimeout {
		t.Errorf("Unset socket timeout must default, got %v", cfg.SocketTimeout)
	}
}
