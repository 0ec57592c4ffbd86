package blend

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"

	"go.viam.com/armrig/animation"
	"go.viam.com/armrig/animation/fake"
	"go.viam.com/armrig/logging"
)

func newClipMixer() *fake.Mixer {
	return fake.NewMixer("TopLeft", "TopRight", "BottomLeft", "BottomRight", "Idle")
}

func newTestContinuous(t *testing.T) (*Continuous, *fake.Mixer) {
	t.Helper()
	mixer := newClipMixer()
	e, err := NewContinuous(mixer, DefaultConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return e, mixer
}

func tickFor(e Engine, mixer animation.Mixer, seconds, dt float64) {
	for elapsed := 0.0; elapsed < seconds; elapsed += dt {
		e.Tick(dt)
		mixer.Update(dt)
	}
}

func TestContinuousStart(t *testing.T) {
	e, mixer := newTestContinuous(t)
	test.That(t, e.Mode(), test.ShouldEqual, ModeContinuous)
	test.That(t, cmp.Diff(UniformWeights(), e.Weights(), approx), test.ShouldBeEmpty)

	for _, c := range AllClips {
		a, ok := mixer.FakeAction(c.String())
		test.That(t, ok, test.ShouldBeTrue)
		mode, reps := a.Loop()
		test.That(t, mode, test.ShouldEqual, animation.LoopOnce)
		test.That(t, reps, test.ShouldEqual, 1)
		test.That(t, a.ClampWhenFinished(), test.ShouldBeTrue)
		test.That(t, a.TimeScale(), test.ShouldEqual, 1.0)
		test.That(t, a.IsRunning(), test.ShouldBeTrue)
		test.That(t, a.Weight(), test.ShouldAlmostEqual, 0.2)
	}
}

func TestContinuousIdleAtOrigin(t *testing.T) {
	e, mixer := newTestContinuous(t)
	e.SetSignal(0, 0)
	tickFor(e, mixer, 5, 1.0/60)

	test.That(t, e.Active(), test.ShouldEqual, Idle)
	test.That(t, e.Weights().Of(Idle), test.ShouldAlmostEqual, 1.0, 1e-5)
	for _, c := range AllClips[:Idle] {
		test.That(t, e.Weights().Of(c), test.ShouldAlmostEqual, 0.0, 1e-5)
	}
	test.That(t, e.TargetWeights(), test.ShouldResemble, OnlyWeights(Idle))

	// clips finish and hold their last frame without losing their weight
	idle, _ := mixer.FakeAction("Idle")
	test.That(t, idle.Finished(), test.ShouldBeTrue)
	test.That(t, idle.Weight(), test.ShouldAlmostEqual, 1.0, 1e-5)
}

func TestContinuousTopRight(t *testing.T) {
	e, mixer := newTestContinuous(t)
	e.SetSignal(0.8, 0.8)
	tickFor(e, mixer, 5, 1.0/60)

	test.That(t, e.Active(), test.ShouldEqual, TopRight)
	test.That(t, e.Weights().Of(TopRight), test.ShouldAlmostEqual, 0.81, 1e-4)
	test.That(t, e.Weights().Of(Idle), test.ShouldAlmostEqual, 0.0, 1e-4)

	// full deflection puts all the weight on the corner
	e.SetSignal(1, 1)
	tickFor(e, mixer, 5, 1.0/60)
	test.That(t, e.Weights().Of(TopRight), test.ShouldAlmostEqual, 1.0, 1e-4)
}

func TestContinuousSetSignalDefersToTick(t *testing.T) {
	e, _ := newTestContinuous(t)
	e.SetSignal(1, 1)
	test.That(t, e.Signal(), test.ShouldResemble, Signal{1, 1})
	test.That(t, cmp.Diff(UniformWeights(), e.Weights(), approx), test.ShouldBeEmpty)

	// last write wins
	e.SetSignal(-1, -1)
	e.Tick(1.0 / 60)
	test.That(t, e.TargetWeights(), test.ShouldResemble, OnlyWeights(BottomLeft))
}

func TestContinuousTickZero(t *testing.T) {
	e, mixer := newTestContinuous(t)
	e.SetSignal(0.5, -0.3)
	tickFor(e, mixer, 0.2, 1.0/60)

	before := e.Weights()
	applied := e.clips.weights()
	e.Tick(0)
	e.Tick(-1)
	test.That(t, e.Weights(), test.ShouldResemble, before)
	test.That(t, e.clips.weights(), test.ShouldResemble, applied)
}

func TestContinuousSumsToOne(t *testing.T) {
	e, mixer := newTestContinuous(t)
	//nolint:gosec
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		e.SetSignal(r.Float64()*4-2, r.Float64()*4-2)
		dt := r.Float64() / 10
		e.Tick(dt)
		mixer.Update(dt)
		test.That(t, e.Weights().Sum(), test.ShouldAlmostEqual, 1.0, 1e-9)
	}
}

func TestContinuousDegenerateSignal(t *testing.T) {
	e, mixer := newTestContinuous(t)
	e.SetSignal(-0.6, 0.6)
	tickFor(e, mixer, 0.5, 1.0/60)
	before := e.Weights()

	e.SetSignal(math.NaN(), 0)
	e.Tick(1.0 / 60)
	test.That(t, e.Weights(), test.ShouldResemble, before)
}

func TestContinuousFrameRateIndependent(t *testing.T) {
	slow, slowMixer := newTestContinuous(t)
	fast, fastMixer := newTestContinuous(t)
	slow.SetSignal(1, -1)
	fast.SetSignal(1, -1)
	for i := 0; i < 30; i++ {
		slow.Tick(1.0 / 30)
		slowMixer.Update(1.0 / 30)
	}
	for i := 0; i < 120; i++ {
		fast.Tick(1.0 / 120)
		fastMixer.Update(1.0 / 120)
	}
	test.That(t, cmp.Diff(slow.Weights(), fast.Weights(), approx), test.ShouldBeEmpty)
}

func TestContinuousClipMapping(t *testing.T) {
	mixer := fake.NewMixer("tl", "tr", "bl", "br", "rest")
	cfg := DefaultConfig()
	cfg.TimeScale = 0.5
	cfg.Clips = map[string]string{
		"TopLeft":     "tl",
		"topright":    "tr",
		"BottomLeft":  "bl",
		"BottomRight": "br",
		"Idle":        "rest",
	}
	test.That(t, cfg.Validate("blend"), test.ShouldBeNil)
	e, err := NewContinuous(mixer, cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	e.SetSignal(0, 0)
	e.Tick(10)
	rest, _ := mixer.FakeAction("rest")
	test.That(t, rest.Weight(), test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, rest.TimeScale(), test.ShouldEqual, 0.5)
}

func TestMissingClips(t *testing.T) {
	logger := logging.NewTestLogger(t)
	mixer := fake.NewMixer("TopLeft", "BottomLeft", "Idle")
	for _, mode := range []Mode{ModeContinuous, ModeDiscrete} {
		cfg := DefaultConfig()
		cfg.Mode = mode
		_, err := NewEngine(mixer, cfg, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot build blend set")
		test.That(t, err.Error(), test.ShouldContainSubstring, `"TopRight"`)
		test.That(t, err.Error(), test.ShouldContainSubstring, `"BottomRight"`)
		test.That(t, err.Error(), test.ShouldNotContainSubstring, `"Idle"`)
	}

	_, err := NewEngine(nil, DefaultConfig(), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewEngine(t *testing.T) {
	logger := logging.NewTestLogger(t)

	e, err := NewEngine(newClipMixer(), DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	_, ok := e.(*Continuous)
	test.That(t, ok, test.ShouldBeTrue)

	cfg := DefaultConfig()
	cfg.Mode = ModeDiscrete
	e, err = NewEngine(newClipMixer(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e.Mode(), test.ShouldEqual, ModeDiscrete)

	cfg.Mode = "stochastic"
	_, err = NewEngine(newClipMixer(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestEngineFromZeroConfig(t *testing.T) {
	logger := logging.NewTestLogger(t)
	mixer := newClipMixer()
	cfg := &Config{}
	e, err := NewEngine(mixer, cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.DeadZone, test.ShouldEqual, 0.0)

	e.SetSignal(0, 0)
	tickFor(e, mixer, 5, 1.0/60)
	test.That(t, e.Weights().Of(Idle), test.ShouldAlmostEqual, 1.0, 1e-3)
	test.That(t, fakeClip(t, mixer, Idle).TimeScale(), test.ShouldEqual, DefaultTimeScale)

	mixer = newClipMixer()
	d, err := NewEngine(mixer, &Config{Mode: ModeDiscrete}, logger)
	test.That(t, err, test.ShouldBeNil)
	d.SetSignal(0.8, 0.8)
	mixer.Update(DefaultCrossfadeSeconds / 2)
	test.That(t, d.Weights().Of(TopRight), test.ShouldAlmostEqual, 0.5)

	_, err = NewEngine(newClipMixer(), &Config{LerpSpeed: math.NaN()}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `error validating "blend"`)
	_, err = NewDiscrete(newClipMixer(), &Config{Mode: ModeDiscrete, TimeScale: -1}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewEngine(newClipMixer(), nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	test.That(t, cfg, test.ShouldResemble, DefaultConfig())
	test.That(t, cfg.Validate("blend"), test.ShouldBeNil)
	test.That(t, cfg.ActionName(BottomRight), test.ShouldEqual, "BottomRight")

	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		errStr string
	}{
		{"mode", func(c *Config) { c.Mode = "wobbly" }, `unknown mode "wobbly"`},
		{"dead zone", func(c *Config) { c.DeadZone = -1 }, `"dead_zone" must be finite and non-negative`},
		{"crossfade", func(c *Config) { c.CrossfadeSeconds = math.NaN() }, `"crossfade_seconds" must be finite`},
		{"lerp speed", func(c *Config) { c.LerpSpeed = math.Inf(1) }, `"lerp_speed" must be finite`},
		{"time scale", func(c *Config) { c.TimeScale = -2 }, `"time_scale" must be positive`},
		{"time scale nan", func(c *Config) { c.TimeScale = math.NaN() }, `"time_scale" must be positive`},
		{"clip", func(c *Config) { c.Clips = map[string]string{"Middle": "m"} }, `unknown clip "Middle"`},
		{"action", func(c *Config) { c.Clips = map[string]string{"Idle": ""} }, `"Idle" is required`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate("blend")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
			test.That(t, err.Error(), test.ShouldContainSubstring, `error validating "blend`)
		})
	}
}
