// Package rig composes a joint chain and a blend set over a skeleton and an animation mixer, and
// drives both from a single frame loop.
package rig

import (
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armrig/animation"
	"go.viam.com/armrig/blend"
	"go.viam.com/armrig/config"
	"go.viam.com/armrig/kinematics"
	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/referenceframe"
	"go.viam.com/armrig/skeleton"
	"go.viam.com/armrig/utils"
)

// Controls is the inbound surface handed to whatever tracks the pointer. Both methods only store
// the value; it takes effect on the next tick.
type Controls interface {
	// MoveTarget sets the point the chain's end effector reaches for.
	MoveTarget(target r3.Vector)
	// SetSignal sets the normalized pointer position driving the blend set.
	SetSignal(x, y float64)
}

// A Rig owns a chain and a blend engine, either of which may be absent, and ticks them together.
type Rig struct {
	skeleton skeleton.Skeleton
	mixer    animation.Mixer
	logger   logging.Logger

	target *utils.Mailbox[r3.Vector]
	signal *utils.Mailbox[blend.Signal]

	// tickMu serializes ticks and reconfiguration. handlesMu only guards the handles below and
	// is never held across a tick, so Controls never wait on one.
	tickMu  sync.Mutex
	frames  uint64
	elapsed float64

	handlesMu sync.RWMutex
	chain     *kinematics.Chain
	engine    blend.Engine
	cfg       config.Config
}

// New builds the rig described by cfg. The chain is built when both skel and cfg.Chain are
// present, and the blend engine when both mixer and cfg.Blend are. A missing handle on either
// side fails construction. The returned rig is ready: its Controls may be used immediately.
func New(skel skeleton.Skeleton, mixer animation.Mixer, cfg *config.Config, logger logging.Logger) (*Rig, error) {
	r := &Rig{
		skeleton: skel,
		mixer:    mixer,
		logger:   logger,
		signal:   utils.NewMailbox(blend.Signal{}),
	}
	chain, engine, err := r.build(cfg)
	if err != nil {
		return nil, err
	}
	r.chain = chain
	r.engine = engine
	r.cfg = *cfg
	initial := kinematics.DefaultInitialTarget
	if chain != nil {
		initial = chain.Target()
	}
	r.target = utils.NewMailbox(initial)
	logger.Infow("rig ready", "chain", chain != nil, "blend", engine != nil)
	return r, nil
}

func (r *Rig) build(cfg *config.Config) (*kinematics.Chain, blend.Engine, error) {
	var (
		chain  *kinematics.Chain
		engine blend.Engine
		errs   []error
	)
	if r.skeleton != nil && cfg.Chain != nil {
		c, err := kinematics.NewChain(r.skeleton, cfg.Chain, r.logger.Sublogger("chain"))
		if err != nil {
			errs = append(errs, err)
		}
		chain = c
	}
	if r.mixer != nil && cfg.Blend != nil {
		e, err := blend.NewEngine(r.mixer, cfg.Blend, r.logger.Sublogger("blend"))
		if err != nil {
			errs = append(errs, err)
		}
		engine = e
	}
	if err := multierr.Combine(errs...); err != nil {
		return nil, nil, err
	}
	if chain == nil && engine == nil {
		return nil, nil, errors.New("rig has neither a chain nor a blend set to drive")
	}
	return chain, engine, nil
}

// Reconfigure rebuilds the chain and blend engine from cfg on the same skeleton and mixer. The
// current target and signal carry over. On error the rig keeps running its previous setup.
func (r *Rig) Reconfigure(cfg *config.Config) error {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	chain, engine, err := r.build(cfg)
	if err != nil {
		return errors.Wrap(err, "cannot reconfigure rig")
	}

	r.handlesMu.Lock()
	defer r.handlesMu.Unlock()
	if chain != nil {
		chain.SetTarget(r.target.Load())
		if r.chain != nil && !referenceframe.LimitsAlmostEqual(r.chain.Limits(), chain.Limits()) {
			r.logger.Infow("joint limits changed", "joints", chain.JointNames())
		}
	}
	if engine != nil {
		s := r.signal.Load()
		engine.SetSignal(s.X, s.Y)
	}
	r.chain = chain
	r.engine = engine
	r.cfg = *cfg
	r.logger.Infow("rig reconfigured", "chain", chain != nil, "blend", engine != nil)
	return nil
}

// Controls returns the rig's inbound control surface.
func (r *Rig) Controls() Controls {
	return controls{r}
}

type controls struct {
	r *Rig
}

func (c controls) MoveTarget(target r3.Vector) {
	c.r.target.Post(target)
	if chain := c.r.currentChain(); chain != nil {
		chain.SetTarget(target)
	}
}

func (c controls) SetSignal(x, y float64) {
	c.r.signal.Post(blend.Signal{X: x, Y: y})
	if engine := c.r.currentEngine(); engine != nil {
		engine.SetSignal(x, y)
	}
}

func (r *Rig) currentChain() *kinematics.Chain {
	r.handlesMu.RLock()
	defer r.handlesMu.RUnlock()
	return r.chain
}

func (r *Rig) currentEngine() blend.Engine {
	r.handlesMu.RLock()
	defer r.handlesMu.RUnlock()
	return r.engine
}

// Tick advances the chain, the blend engine and the mixer by dt seconds, in that order.
// Non-positive dt does nothing.
func (r *Rig) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	if chain := r.currentChain(); chain != nil {
		chain.Tick(dt)
	}
	if engine := r.currentEngine(); engine != nil {
		engine.Tick(dt)
		r.mixer.Update(dt)
	}
	r.frames++
	r.elapsed += dt
}

// Chain returns the rig's chain, or nil if it has none.
func (r *Rig) Chain() *kinematics.Chain {
	return r.currentChain()
}

// Engine returns the rig's blend engine, or nil if it has none.
func (r *Rig) Engine() blend.Engine {
	return r.currentEngine()
}

// Config returns the configuration the rig was last built from.
func (r *Rig) Config() config.Config {
	r.handlesMu.RLock()
	defer r.handlesMu.RUnlock()
	return r.cfg
}
