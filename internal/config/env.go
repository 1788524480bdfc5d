package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of every environment variable the host reads.
const EnvPrefix = "CROSSLOAD_"

// setter applies one environment value to the configuration.
type setter func(cfg *Config, value string) error

// EnvLoader applies environment variables to a configuration.
type EnvLoader struct {
	prefix  string
	lookup  func(key string) (string, bool)
	mapping map[string]setter // suffix after prefix -> setter
}

// NewEnvLoader creates a loader reading the process environment.
// The prefix should include the trailing underscore (e.g., "CROSSLOAD_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithLookup(prefix, os.LookupEnv)
}

// NewEnvLoaderWithLookup creates a loader reading variables through lookup.
func NewEnvLoaderWithLookup(prefix string, lookup func(key string) (string, bool)) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		lookup:  lookup,
		mapping: defaultEnvMapping(),
	}
}

// defaultEnvMapping returns the supported variables, keyed without prefix.
func defaultEnvMapping() map[string]setter {
	return map[string]setter{
		"LIBRARY_PATH": func(cfg *Config, v string) error {
			cfg.Library.Path = v
			return nil
		},
		"PLUGIN_PATH": func(cfg *Config, v string) error {
			cfg.Plugin.Path = v
			return nil
		},
		"RUN_MODE": func(cfg *Config, v string) error {
			cfg.Run.Mode = strings.ToLower(v)
			return nil
		},
		"STATUS_INTERVAL": func(cfg *Config, v string) error {
			cfg.Run.StatusInterval = v
			return nil
		},
		"LOG_LEVEL": func(cfg *Config, v string) error {
			cfg.Logging.Level = strings.ToLower(v)
			return nil
		},
		"WATCH_LIBRARY": func(cfg *Config, v string) error {
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			cfg.Library.Watch = b
			return nil
		},
	}
}

// Variables returns the full names of the supported variables.
func (l *EnvLoader) Variables() []string {
	names := make([]string, 0, len(l.mapping))
	for suffix := range l.mapping {
		names = append(names, l.prefix+suffix)
	}
	return names
}

// Apply overrides cfg with every supported variable that is set.
// Empty strings are treated as set values, not as unset.
func (l *EnvLoader) Apply(cfg *Config) error {
	for suffix, set := range l.mapping {
		name := l.prefix + suffix
		val, ok := l.lookup(name)
		if !ok {
			continue
		}
		if err := set(cfg, val); err != nil {
			return &ParseError{Path: name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

// parseBool accepts the usual spellings of true and false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off", "":
		return false, nil
	}
	return strconv.ParseBool(s)
}
