// Package config defines the configuration of a whole rig: its joint chain, its blend set, and
// the frame driver running them.
package config

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/armrig/blend"
	"go.viam.com/armrig/kinematics"
	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/utils"
)

// DefaultFPS is the frame rate used when a config does not set one.
const DefaultFPS = 60.0

// Config describes a rig. A nil Chain or Blend disables that subsystem.
type Config struct {
	Chain  *kinematics.ChainConfig `json:"chain,omitempty"`
	Blend  *blend.Config           `json:"blend,omitempty"`
	Driver DriverConfig            `json:"driver"`

	LogLevel string `json:"log_level,omitempty"`

	// ConfigFilePath is the file the config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// DriverConfig configures the frame driver.
type DriverConfig struct {
	FPS float64 `json:"fps"`
}

// Default returns the canonical rig: the default arm chain and a continuous blend set.
func Default() *Config {
	cfg := &Config{
		Chain: kinematics.DefaultChainConfig(),
		Blend: blend.DefaultConfig(),
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in zero-valued fields of every section present.
func (c *Config) SetDefaults() {
	if c.Chain != nil {
		c.Chain.SetDefaults()
	}
	if c.Blend != nil {
		c.Blend.SetDefaults()
	}
	if c.Driver.FPS == 0 {
		c.Driver.FPS = DefaultFPS
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if c.Chain == nil && c.Blend == nil {
		return errors.New("config must enable a chain, a blend set, or both")
	}
	if c.Chain != nil {
		if err := c.Chain.Validate("chain"); err != nil {
			return err
		}
	}
	if c.Blend != nil {
		if err := c.Blend.Validate("blend"); err != nil {
			return err
		}
	}
	if err := c.Driver.Validate("driver"); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return utils.NewConfigValidationError("log_level", err)
	}
	return nil
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() (logging.Level, error) {
	if c.LogLevel == "" {
		return logging.INFO, nil
	}
	return logging.LevelFromString(c.LogLevel)
}

// Validate ensures all parts of the config are valid.
func (c *DriverConfig) Validate(path string) error {
	if c.FPS <= 0 || math.IsNaN(c.FPS) || math.IsInf(c.FPS, 0) {
		return utils.NewConfigValidationError(path, errors.Errorf("fps must be a positive number, got %v", c.FPS))
	}
	return nil
}
