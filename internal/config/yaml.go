package config

import "gopkg.in/yaml.v3"

// decodeYAML parses YAML data into cfg.
func decodeYAML(source string, data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return nil
}
