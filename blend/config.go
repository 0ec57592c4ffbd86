package blend

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/armrig/utils"
)

// Mode selects the blending policy.
type Mode string

const (
	// ModeContinuous blends all clips every tick.
	ModeContinuous Mode = "continuous"
	// ModeDiscrete plays one clip at a time and crossfades on change.
	ModeDiscrete Mode = "discrete"
)

// Defaults for Config fields left zero.
const (
	DefaultDeadZone         = 0.1
	DefaultLerpSpeed        = 3.0
	DefaultCrossfadeSeconds = 0.5
	DefaultTimeScale        = 1.0
)

// Config describes a blend set.
type Config struct {
	Mode Mode `json:"mode"`

	DeadZone       float64 `json:"dead_zone"`
	RadialDeadZone bool    `json:"radial_dead_zone,omitempty"`
	// CornerThreshold only applies in discrete mode; see Classify.
	CornerThreshold float64 `json:"corner_threshold,omitempty"`

	// LerpSpeed is the exponential rate at which continuous weights follow their targets.
	LerpSpeed        float64 `json:"lerp_speed"`
	CrossfadeSeconds float64 `json:"crossfade_seconds"`
	TimeScale        float64 `json:"time_scale"`

	// Clips maps clip names (TopLeft, ..., Idle) to the mixer action playing them. Clips not
	// listed use an action named after the clip.
	Clips map[string]string `json:"clips,omitempty"`
}

// DefaultConfig returns a continuous blend with the standard tuning.
func DefaultConfig() *Config {
	cfg := &Config{Mode: ModeContinuous}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in zero-valued tuning.
func (cfg *Config) SetDefaults() {
	if cfg.Mode == "" {
		cfg.Mode = ModeContinuous
	}
	if cfg.DeadZone == 0 {
		cfg.DeadZone = DefaultDeadZone
	}
	if cfg.LerpSpeed == 0 {
		cfg.LerpSpeed = DefaultLerpSpeed
	}
	if cfg.CrossfadeSeconds == 0 {
		cfg.CrossfadeSeconds = DefaultCrossfadeSeconds
	}
	if cfg.TimeScale == 0 {
		cfg.TimeScale = DefaultTimeScale
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	switch cfg.Mode {
	case ModeContinuous, ModeDiscrete:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown mode %q, expected %q or %q", cfg.Mode, ModeContinuous, ModeDiscrete))
	}
	for name, v := range map[string]float64{
		"dead_zone":         cfg.DeadZone,
		"corner_threshold":  cfg.CornerThreshold,
		"lerp_speed":        cfg.LerpSpeed,
		"crossfade_seconds": cfg.CrossfadeSeconds,
	} {
		if !(v >= 0) || math.IsInf(v, 1) {
			return utils.NewConfigValidationError(path, errors.Errorf("%q must be finite and non-negative, got %v", name, v))
		}
	}
	if !(cfg.TimeScale > 0) || math.IsInf(cfg.TimeScale, 1) {
		return utils.NewConfigValidationError(path, errors.Errorf("\"time_scale\" must be positive, got %v", cfg.TimeScale))
	}
	for clip, action := range cfg.Clips {
		if _, err := ParseClipName(clip); err != nil {
			return utils.NewConfigValidationError(path+".clips", err)
		}
		if action == "" {
			return utils.NewConfigValidationFieldRequiredError(path+".clips", clip)
		}
	}
	return nil
}

// ActionName returns the mixer action backing clip c.
func (cfg *Config) ActionName(c ClipName) string {
	for clip, action := range cfg.Clips {
		if parsed, err := ParseClipName(clip); err == nil && parsed == c {
			return action
		}
	}
	return c.String()
}
