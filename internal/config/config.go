package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

// Config is the optional file configuration for the serve sidecar and the
// report command. The environment snapshot (tier, token) is deliberately not
// part of it: a config file can never override DOCS_ENVIRONMENT.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Probes     ProbesConfig     `yaml:"probes"`
	NATS       NATSConfig       `yaml:"nats"`
	EventStore EventStoreConfig `yaml:"eventstore"`
	Logging    LoggingConfig    `yaml:"logging"`
	// DataDir anchors bundled data files such as the local metadata schema.
	DataDir string `yaml:"data_dir"`
}

// ServerConfig configures the sidecar HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout,omitempty"`
	WriteTimeout    string `yaml:"write_timeout,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// ProbesConfig configures periodic upstream reachability checks.
type ProbesConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval,omitempty"`
}

// NATSConfig configures the optional diagnostics publisher.
type NATSConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	Stream  string `yaml:"stream,omitempty"`
}

// EventStoreConfig configures the optional SQLite diagnostics store.
type EventStoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig configures the default slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8765",
			ReadTimeout:     "10s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Probes: ProbesConfig{
			Enabled:  true,
			Interval: "5m",
		},
		NATS: NATSConfig{
			Subject: "opsadapter.events",
			Stream:  "OPSADAPTER",
		},
		Logging: LoggingConfig{
			Level:  string(LogLevelInfo),
			Format: string(LogFormatText),
		},
		DataDir: "data",
	}
}

// Load reads the YAML file at configPath over the defaults. A missing file
// is not an error when the path is the conventional default; callers that
// pass an explicit path get the failure.
func Load(configPath string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read config file").
			WithContext("path", configPath).
			Build()
	}

	// Environment variables expand inside the file body, matching how
	// deployment manifests template these files.
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse config file").
			WithContext("path", configPath).
			Build()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field formats without touching the filesystem or network.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.ConfigError("server.addr must not be empty").Build()
	}
	for _, f := range []struct {
		name  string
		value string
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"probes.interval", c.Probes.Interval},
	} {
		if f.value == "" {
			continue
		}
		if _, err := time.ParseDuration(f.value); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid duration").
				WithContext("field", f.name).
				WithContext("value", f.value).
				Build()
		}
	}
	return nil
}

// ProbeInterval returns the parsed probe interval, falling back to the
// default when unset.
func (c *Config) ProbeInterval() time.Duration {
	return parseDurationOr(c.Probes.Interval, 5*time.Minute)
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return parseDurationOr(c.Server.ReadTimeout, 10*time.Second)
}

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return parseDurationOr(c.Server.WriteTimeout, 30*time.Second)
}

// ShutdownTimeout returns the parsed graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDurationOr(c.Server.ShutdownTimeout, 10*time.Second)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
