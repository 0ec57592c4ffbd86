package config

import (
	"bytes"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Read reads a config from the given file. ${VAR} references are expanded from the environment
// before decoding, and the file may use JSON5 comments and trailing commas.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	cfg := &Config{}
	if err := json5.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	cfg.ConfigFilePath = originalPath
	return processConfig(cfg)
}

// processConfig applies defaults and validates.
func processConfig(cfg *Config) (*Config, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		if cfg.ConfigFilePath != "" {
			return nil, errors.Wrapf(err, "invalid config %s", cfg.ConfigFilePath)
		}
		return nil, err
	}
	return cfg, nil
}
