package blend

import (
	"sync"

	"go.viam.com/armrig/animation"
	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/utils"
)

// Discrete plays a single clip at a time. A new signal is classified immediately; when the
// class differs from the active clip the new clip restarts from its first frame and the two
// crossfade. Re-entering the active state does nothing.
type Discrete struct {
	cfg    Config
	clips  clipSet
	signal *utils.Mailbox[Signal]
	logger logging.Logger

	mu          sync.Mutex
	state       ClipName
	previous    ClipName
	transitions int
}

// NewDiscrete resolves the clips on mixer and starts in Idle.
func NewDiscrete(mixer animation.Mixer, cfg *Config, logger logging.Logger) (*Discrete, error) {
	resolved, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = &resolved
	clips, err := resolveClips(mixer, cfg)
	if err != nil {
		return nil, err
	}
	e := &Discrete{
		cfg:      *cfg,
		clips:    clips,
		signal:   utils.NewMailbox(Signal{}),
		logger:   logger,
		state:    Idle,
		previous: Idle,
	}
	e.clips.playOnceAndHold(cfg.TimeScale)
	for c, a := range e.clips {
		if ClipName(c) == Idle {
			a.SetWeight(1)
			continue
		}
		a.SetWeight(0)
	}
	idle := e.clips[Idle]
	idle.Reset()
	idle.Play()
	logger.Debugw("discrete blend ready", "state", Idle, "crossfade_seconds", cfg.CrossfadeSeconds)
	return e, nil
}

// Mode returns ModeDiscrete.
func (e *Discrete) Mode() Mode {
	return ModeDiscrete
}

// SetSignal stores the signal and transitions right away if it selects a different clip.
func (e *Discrete) SetSignal(x, y float64) {
	s := Signal{X: x, Y: y}
	e.signal.Post(s)

	e.mu.Lock()
	defer e.mu.Unlock()
	next := Classify(s, e.cfg.DeadZone, e.cfg.RadialDeadZone, e.cfg.CornerThreshold, e.state)
	if next == e.state {
		return
	}
	e.transition(next)
}

// transition crossfades from the active clip to next. Callers hold mu.
func (e *Discrete) transition(next ClipName) {
	from := e.clips[e.state]
	to := e.clips[next]

	from.FadeOut(e.cfg.CrossfadeSeconds)
	to.SetWeight(1)
	to.Reset()
	to.FadeIn(e.cfg.CrossfadeSeconds)
	to.Play()

	e.logger.Debugw("blend transition", "from", e.state, "to", next)
	e.previous = e.state
	e.state = next
	e.transitions++
}

// Tick does nothing: transitions are driven by SetSignal and fades by the mixer.
func (e *Discrete) Tick(dt float64) {}

// State returns the active clip.
func (e *Discrete) State() ClipName {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Previous returns the clip active before the last transition.
func (e *Discrete) Previous() ClipName {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previous
}

// Transitions returns the number of state changes so far.
func (e *Discrete) Transitions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transitions
}

// Active returns the active clip.
func (e *Discrete) Active() ClipName {
	return e.State()
}

// Weights returns the clips' effective weights, which include any crossfade in progress.
func (e *Discrete) Weights() Weights {
	return e.clips.weights()
}
