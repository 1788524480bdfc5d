package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Decoder parses configuration data into cfg, overriding only the keys
// present in data.
type Decoder func(source string, data []byte, cfg *Config) error

// decoders maps file extensions to their decoder.
var decoders = map[string]Decoder{
	".toml": decodeTOML,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
}

// Load builds the configuration from defaults, the file at path and the
// process environment, then validates it. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, NewEnvLoader(EnvPrefix))
}

// LoadWithEnv is Load with a caller-supplied environment loader.
func LoadWithEnv(path string, env *EnvLoader) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if env != nil {
		if err := env.Apply(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes the file at path into cfg, choosing the format by extension.
func LoadFile(path string, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return decode(path, data, cfg)
}
