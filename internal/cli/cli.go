// Package cli provides Cargo/rustc-style output formatting for the calyx
// command line: colored diagnostics, formatted errors, and simple tables
// and lists. Color is auto-detected and disabled for pipes and CI.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// OutputMode determines how output is formatted.
type OutputMode int

const (
	// ModeTTY enables rich colored output for interactive terminals.
	ModeTTY OutputMode = iota
	// ModePlain outputs plain text without colors (for pipes/CI).
	ModePlain
	// ModeJSON outputs structured JSON for programmatic consumption.
	ModeJSON
)

// Config holds CLI output configuration.
type Config struct {
	Mode   OutputMode
	Writer io.Writer
}

// DefaultConfig returns the auto-detected configuration:
//   - stdout is a TTY and NO_COLOR unset -> ModeTTY
//   - otherwise -> ModePlain
//
// ModeJSON is only selected explicitly via NewConfigWithMode.
func DefaultConfig() *Config {
	mode := ModePlain

	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		mode = ModeTTY
	}

	// Respect NO_COLOR (https://no-color.org/) and TERM=dumb.
	if os.Getenv("NO_COLOR") != "" {
		mode = ModePlain
	}
	if os.Getenv("TERM") == "dumb" {
		mode = ModePlain
	}

	return &Config{
		Mode:   mode,
		Writer: os.Stdout,
	}
}

// NewConfigWithMode creates a config with a specific output mode.
// Used for --json or in tests.
func NewConfigWithMode(mode OutputMode) *Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	return cfg
}

// IsTTY reports whether rich interactive output is active.
func (c *Config) IsTTY() bool { return c.Mode == ModeTTY }

// IsPlain reports whether plain text output is active.
func (c *Config) IsPlain() bool { return c.Mode == ModePlain }

// IsJSON reports whether JSON output is active.
func (c *Config) IsJSON() bool { return c.Mode == ModeJSON }

// Global default config, initialized lazily.
var defaultCfg *Config

// Default returns the global default configuration.
func Default() *Config {
	if defaultCfg == nil {
		defaultCfg = DefaultConfig()
	}
	return defaultCfg
}

// SetDefault sets the global default configuration.
func SetDefault(cfg *Config) {
	defaultCfg = cfg
}

// EnableColors reports whether styled output should be used.
func EnableColors() bool {
	return Default().IsTTY()
}
