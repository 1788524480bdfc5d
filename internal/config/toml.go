package config

import "github.com/pelletier/go-toml/v2"

// decodeTOML parses TOML data into cfg.
func decodeTOML(source string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return nil
}
