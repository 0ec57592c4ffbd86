package blend

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armrig/animation"
	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/referenceframe"
)

// An Engine turns the latest signal into clip weights.
type Engine interface {
	// SetSignal stores the latest pointer position. Last write wins.
	SetSignal(x, y float64)
	// Tick advances the engine by dt seconds. Non-positive dt does nothing.
	Tick(dt float64)
	// Weights returns the weights currently applied to the clips.
	Weights() Weights
	// Active returns the dominant clip.
	Active() ClipName
	Mode() Mode
}

// NewEngine builds the engine selected by cfg.Mode.
func NewEngine(mixer animation.Mixer, cfg *Config, logger logging.Logger) (Engine, error) {
	if cfg == nil {
		return nil, errors.New("blend engine requires a config")
	}
	switch cfg.Mode {
	case ModeDiscrete:
		return NewDiscrete(mixer, cfg, logger)
	case ModeContinuous, "":
		return NewContinuous(mixer, cfg, logger)
	default:
		return nil, errors.Errorf("unknown blend mode %q", cfg.Mode)
	}
}

// resolveConfig returns a defaulted, validated copy of cfg; the caller's config is left as is.
func resolveConfig(cfg *Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("blend engine requires a config")
	}
	resolved := *cfg
	resolved.SetDefaults()
	if err := resolved.Validate("blend"); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// clipSet is the registry of resolved clip actions, indexed by ClipName.
type clipSet [NumClips]animation.Action

// resolveClips looks up every clip's action, naming all the missing ones in a single error.
func resolveClips(mixer animation.Mixer, cfg *Config) (clipSet, error) {
	var clips clipSet
	if mixer == nil {
		return clips, errors.New("blend engine requires a mixer")
	}
	var errs []error
	for _, c := range AllClips {
		name := cfg.ActionName(c)
		a, ok := mixer.Action(name)
		if !ok {
			errs = append(errs, referenceframe.NewClipMissingError(c.String(), name))
			continue
		}
		clips[c] = a
	}
	if err := multierr.Combine(errs...); err != nil {
		return clipSet{}, errors.Wrap(err, "cannot build blend set")
	}
	return clips, nil
}

// playOnceAndHold configures every clip to play a single time and keep its last frame.
func (clips *clipSet) playOnceAndHold(timeScale float64) {
	for _, a := range clips {
		a.SetLoop(animation.LoopOnce, 1)
		a.SetClampWhenFinished(true)
		a.SetTimeScale(timeScale)
	}
}

func (clips *clipSet) weights() Weights {
	var w Weights
	for c, a := range clips {
		w[c] = a.Weight()
	}
	return w
}
