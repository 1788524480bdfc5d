package config

import (
	"time"

	"github.com/dshills/crossload/internal/foreign"
)

// Run modes.
const (
	ModeBackground = "background"
	ModeSync       = "sync"
)

// Config is the complete host configuration.
type Config struct {
	Library   LibraryConfig   `toml:"library" yaml:"library"`
	Plugin    PluginConfig    `toml:"plugin" yaml:"plugin"`
	Symbols   SymbolsConfig   `toml:"symbols" yaml:"symbols"`
	Run       RunConfig       `toml:"run" yaml:"run"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
	Preflight PreflightConfig `toml:"preflight" yaml:"preflight"`
}

// LibraryConfig describes the shared object to load.
type LibraryConfig struct {
	// Path is the shared object to open.
	Path string `toml:"path" yaml:"path"`
	// LazyBinding resolves function references on first call.
	LazyBinding bool `toml:"lazy_binding" yaml:"lazy_binding"`
	// GlobalSymbols exposes the library's exports to later loads.
	GlobalSymbols bool `toml:"global_symbols" yaml:"global_symbols"`
	// Watch logs a warning whenever the file changes on disk while mapped.
	Watch bool `toml:"watch" yaml:"watch"`
}

// PluginConfig describes the auxiliary plugin handed to the rich entry point.
type PluginConfig struct {
	// Path is passed through as a C string; the host never opens it.
	Path string `toml:"path" yaml:"path"`
	// Required makes a missing Path a startup failure.
	Required bool `toml:"required" yaml:"required"`
}

// SymbolsConfig names the entry points. Setting a name to "" disables that
// entry point; keys left out of the file keep their defaults.
type SymbolsConfig struct {
	Rich        string `toml:"rich" yaml:"rich"`
	Plain       string `toml:"plain" yaml:"plain"`
	RuntimeInfo string `toml:"runtime_info" yaml:"runtime_info"`
	RichStatus  bool   `toml:"rich_status" yaml:"rich_status"`
	PlainStatus bool   `toml:"plain_status" yaml:"plain_status"`
}

// RunConfig controls how the entry point is invoked.
type RunConfig struct {
	// Mode is "background" or "sync".
	Mode string `toml:"mode" yaml:"mode"`
	// StatusInterval is how often a background run logs its status.
	StatusInterval string `toml:"status_interval" yaml:"status_interval"`
}

// LoggingConfig controls host logging.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// PreflightConfig lists conditions checked before the library is opened.
type PreflightConfig struct {
	// RequiredFiles must all exist, typically config the foreign side reads.
	RequiredFiles []string `toml:"required_files" yaml:"required_files"`
}

// Default returns the built-in configuration.
func Default() *Config {
	syms := foreign.DefaultSymbols()
	return &Config{
		Library: LibraryConfig{
			Path: "./libotelcorecol.so",
		},
		Symbols: SymbolsConfig{
			Rich:        syms.Rich,
			Plain:       syms.Plain,
			RuntimeInfo: syms.RuntimeInfo,
		},
		Run: RunConfig{
			Mode:           ModeBackground,
			StatusInterval: "5s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ForeignSymbols converts the symbol settings for the orchestrator.
func (c *Config) ForeignSymbols() foreign.Symbols {
	return foreign.Symbols{
		Rich:        c.Symbols.Rich,
		Plain:       c.Symbols.Plain,
		RuntimeInfo: c.Symbols.RuntimeInfo,
		RichStatus:  c.Symbols.RichStatus,
		PlainStatus: c.Symbols.PlainStatus,
	}
}

// StatusInterval returns the parsed status interval. Call after Validate.
func (c *Config) StatusInterval() time.Duration {
	d, err := time.ParseDuration(c.Run.StatusInterval)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Validate checks every setting and returns the first failure.
func (c *Config) Validate() error {
	if c.Library.Path == "" {
		return &ValidationError{Setting: "library.path", Value: `""`, Reason: "must be set"}
	}

	switch c.Run.Mode {
	case ModeBackground, ModeSync:
	default:
		return &ValidationError{Setting: "run.mode", Value: c.Run.Mode, Reason: "must be background or sync"}
	}

	d, err := time.ParseDuration(c.Run.StatusInterval)
	if err != nil {
		return &ValidationError{Setting: "run.status_interval", Value: c.Run.StatusInterval, Reason: err.Error()}
	}
	if d <= 0 {
		return &ValidationError{Setting: "run.status_interval", Value: c.Run.StatusInterval, Reason: "must be positive"}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Setting: "logging.level", Value: c.Logging.Level, Reason: "must be debug, info, warn, or error"}
	}

	if c.Symbols.Rich == "" && c.Symbols.Plain == "" {
		return &ValidationError{Setting: "symbols", Value: `""`, Reason: "at least one of rich or plain must be named"}
	}

	if c.Plugin.Required && c.Plugin.Path == "" {
		return &ValidationError{Setting: "plugin.path", Value: `""`, Reason: "must be set when plugin.required is true"}
	}

	return nil
}
