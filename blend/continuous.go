package blend

import (
	"sync"

	"go.viam.com/armrig/animation"
	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/utils"
)

// Continuous blends every clip at once. Each tick it recomputes target weights from the latest
// signal and moves the current weights toward them; since every clip moves by the same fraction
// the weights keep summing to 1.
type Continuous struct {
	cfg    Config
	clips  clipSet
	signal *utils.Mailbox[Signal]
	logger logging.Logger

	mu      sync.Mutex
	current Weights
	target  Weights
}

// NewContinuous resolves the clips on mixer, starts them all playing once and holding their
// last frame, and applies uniform starting weights.
func NewContinuous(mixer animation.Mixer, cfg *Config, logger logging.Logger) (*Continuous, error) {
	resolved, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = &resolved
	clips, err := resolveClips(mixer, cfg)
	if err != nil {
		return nil, err
	}
	e := &Continuous{
		cfg:     *cfg,
		clips:   clips,
		signal:  utils.NewMailbox(Signal{}),
		logger:  logger,
		current: UniformWeights(),
		target:  UniformWeights(),
	}
	e.clips.playOnceAndHold(cfg.TimeScale)
	for _, a := range e.clips {
		a.Reset()
		a.Play()
	}
	e.apply()
	logger.Debugw("continuous blend ready", "dead_zone", cfg.DeadZone, "lerp_speed", cfg.LerpSpeed)
	return e, nil
}

// Mode returns ModeContinuous.
func (e *Continuous) Mode() Mode {
	return ModeContinuous
}

// SetSignal stores the signal for the next tick.
func (e *Continuous) SetSignal(x, y float64) {
	e.signal.Post(Signal{X: x, Y: y})
}

// Signal returns the last stored signal.
func (e *Continuous) Signal() Signal {
	return e.signal.Load()
}

// Tick steps the current weights toward the targets for the latest signal and applies them.
func (e *Continuous) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	target, ok := TargetWeights(e.signal.Load(), e.cfg.DeadZone, e.cfg.RadialDeadZone)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = target
	next := e.current.Lerp(target, utils.ExpSmoothingFactor(e.cfg.LerpSpeed, dt))
	if normalized, ok := next.Normalize(); ok {
		e.current = normalized
	}
	e.apply()
}

// apply pushes the current weights to the clips. Callers hold mu or own e exclusively.
func (e *Continuous) apply() {
	for c, a := range e.clips {
		a.SetWeight(e.current[c])
	}
}

// Weights returns the current weights.
func (e *Continuous) Weights() Weights {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// TargetWeights returns the targets computed on the last tick.
func (e *Continuous) TargetWeights() Weights {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// Active returns the clip with the largest current weight.
func (e *Continuous) Active() ClipName {
	return e.Weights().Max()
}
