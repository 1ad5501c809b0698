package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeFile is shared by the config and environment tests.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// unsetenv removes a variable for the duration of the test. t.Setenv must be
// called first so the previous value is restored on cleanup.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8765" {
		t.Errorf("Server.Addr = %q, expected %q", cfg.Server.Addr, ":8765")
	}
	if !cfg.Probes.Enabled {
		t.Error("Probes.Enabled = false, expected true")
	}
	if cfg.ProbeInterval() != 5*time.Minute {
		t.Errorf("ProbeInterval() = %v, expected 5m", cfg.ProbeInterval())
	}
	if cfg.NATS.URL != "" {
		t.Errorf("NATS.URL = %q, expected empty (publisher disabled)", cfg.NATS.URL)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, expected %q", cfg.DataDir, "data")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("Load() = %v, expected defaults for missing implicit file", err)
	}
	if cfg.Server.Addr != ":8765" {
		t.Errorf("Server.Addr = %q, expected default", cfg.Server.Addr)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	if err == nil {
		t.Fatal("Load() = nil error, expected failure for missing explicit file")
	}
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsadapter.yaml")
	writeFile(t, path, `
server:
  addr: ":9999"
  read_timeout: 2s
probes:
  enabled: false
nats:
  url: nats://localhost:4222
eventstore:
  path: /tmp/events.db
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, expected %q", cfg.Server.Addr, ":9999")
	}
	if cfg.ReadTimeout() != 2*time.Second {
		t.Errorf("ReadTimeout() = %v, expected 2s", cfg.ReadTimeout())
	}
	// Untouched fields keep their defaults.
	if cfg.WriteTimeout() != 30*time.Second {
		t.Errorf("WriteTimeout() = %v, expected default 30s", cfg.WriteTimeout())
	}
	if cfg.Probes.Enabled {
		t.Error("Probes.Enabled = true, expected false from file")
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("NATS.URL = %q, expected file value", cfg.NATS.URL)
	}
	if cfg.NATS.Subject != "opsadapter.events" {
		t.Errorf("NATS.Subject = %q, expected default subject", cfg.NATS.Subject)
	}
	if cfg.EventStore.Path != "/tmp/events.db" {
		t.Errorf("EventStore.Path = %q, expected file value", cfg.EventStore.Path)
	}
	if NormalizeLogLevel(cfg.Logging.Level) != LogLevelDebug {
		t.Errorf("Logging.Level = %q, expected debug", cfg.Logging.Level)
	}
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("OPSADAPTER_TEST_ADDR", ":7070")
	path := filepath.Join(t.TempDir(), "opsadapter.yaml")
	writeFile(t, path, "server:\n  addr: \"${OPSADAPTER_TEST_ADDR}\"\n")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, expected expanded %q", cfg.Server.Addr, ":7070")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsadapter.yaml")
	writeFile(t, path, "server: [not a mapping\n")

	_, err := Load(path, true)
	if err == nil {
		t.Fatal("Load() = nil error, expected YAML parse failure")
	}
	if !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("error = %q, expected parse context", err.Error())
	}
}

func TestValidateRejectsBadDurations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "bad read timeout",
			mutate: func(c *Config) { c.Server.ReadTimeout = "fast" },
		},
		{
			name:   "bad probe interval",
			mutate: func(c *Config) { c.Probes.Interval = "5minutes" },
		},
		{
			name:   "empty addr",
			mutate: func(c *Config) { c.Server.Addr = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, expected error")
			}
		})
	}
}

func TestDurationAccessorsFallBackOnEmpty(t *testing.T) {
	cfg := &Config{}
	if cfg.ReadTimeout() != 10*time.Second {
		t.Errorf("ReadTimeout() = %v, expected fallback 10s", cfg.ReadTimeout())
	}
	if cfg.ShutdownTimeout() != 10*time.Second {
		t.Errorf("ShutdownTimeout() = %v, expected fallback 10s", cfg.ShutdownTimeout())
	}
	if cfg.ProbeInterval() != 5*time.Minute {
		t.Errorf("ProbeInterval() = %v, expected fallback 5m", cfg.ProbeInterval())
	}
}
