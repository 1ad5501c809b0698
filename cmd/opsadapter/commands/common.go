// Package commands defines the opsadapter CLI grammar and subcommands.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/opsadapter/internal/config"
)

// DefaultConfigPath is where commands look for optional file configuration
// when --config is not given.
const DefaultConfigPath = "opsadapter.yaml"

// Global carries state shared across subcommands if we need it later.
type Global struct{}

// CLI is the root command grammar.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"opsadapter.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Resolve ResolveCmd `cmd:"" help:"Resolve the build configuration for a docset"`
	Serve   ServeCmd   `cmd:"" help:"Run the sidecar HTTP server"`
	Report  ReportCmd  `cmd:"" help:"Render a diagnostics report from the event store"`
}

// AfterApply runs after flag parsing; it installs a provisional handler so
// config loading itself logs sensibly. Commands refine it once the file
// configuration is in.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// configExplicit reports whether the user pointed at a specific file, which
// turns a missing file into an error instead of a fallback to defaults.
func (c *CLI) configExplicit() bool {
	return c.Config != DefaultConfigPath
}

// loadConfig reads the file configuration and applies its logging settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config, c.configExplicit())
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, c.Verbose)
	return cfg, nil
}

// setupLogging replaces the provisional handler with the configured one.
// Verbose always wins over the configured level.
func setupLogging(cfg *config.Config, verbose bool) {
	level := config.NormalizeLogLevel(cfg.Logging.Level).SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.NormalizeLogFormat(cfg.Logging.Format) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
