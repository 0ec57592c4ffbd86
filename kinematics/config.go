package kinematics

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/armrig/referenceframe"
	"go.viam.com/armrig/skeleton"
	"go.viam.com/armrig/spatialmath"
	"go.viam.com/armrig/utils"
)

// Smoothing selects how joints ease toward their desired angles.
type Smoothing string

// Supported smoothing modes.
const (
	SmoothingExponential Smoothing = "exponential"
	SmoothingSpring      Smoothing = "spring"
)

// Defaults for ChainConfig and JointConfig fields left zero.
const (
	DefaultEpsilon         = 0.1
	DefaultGain            = 1.0
	DefaultSpringFrequency = 6.0
	DefaultSpringDamping   = 1.0

	// tuningFPS is the frame rate the per-frame convergence fractions below were tuned at.
	tuningFPS = 60
)

// DefaultInitialTarget is where the chain points before any target is set.
var DefaultInitialTarget = r3.Vector{X: 0, Y: 2, Z: 2}

// DefaultJointRate is the convergence rate of a joint configured without one.
var DefaultJointRate = utils.RateFromFrameFraction(0.03, tuningFPS)

// JointConfig describes one driven joint of a chain.
type JointConfig struct {
	// Name of the skeleton bone the joint rotates.
	Name string           `json:"name"`
	Axis spatialmath.Axis `json:"axis"`

	Plane BendPlane `json:"plane,omitempty"`
	// Gain scales the raw plane angle, approximating the share of the bend left to downstream
	// joints. A negative gain flips the rotation sense.
	Gain  float64               `json:"gain,omitempty"`
	Limit *referenceframe.Limit `json:"limit,omitempty"`
	// Rate is the exponential convergence rate in 1/s.
	Rate        float64      `json:"rate,omitempty"`
	Oscillation *Oscillation `json:"oscillation,omitempty"`
}

// SetDefaults fills in zero-valued tuning.
func (cfg *JointConfig) SetDefaults() {
	if cfg.Plane == "" {
		cfg.Plane = PlaneNone
	}
	if cfg.Gain == 0 {
		cfg.Gain = DefaultGain
	}
	if cfg.Rate == 0 {
		cfg.Rate = DefaultJointRate
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *JointConfig) Validate(path string) error {
	if cfg.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if _, err := spatialmath.ParseAxis(string(cfg.Axis)); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if err := cfg.Plane.Validate(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if math.IsNaN(cfg.Gain) || math.IsInf(cfg.Gain, 0) {
		return utils.NewConfigValidationError(path, errors.Errorf("gain must be a number, got %v", cfg.Gain))
	}
	if cfg.Rate < 0 || math.IsNaN(cfg.Rate) {
		return utils.NewConfigValidationError(path, errors.Errorf("rate must be non-negative, got %v", cfg.Rate))
	}
	if cfg.Limit != nil {
		if err := cfg.Limit.Validate(path + ".limit"); err != nil {
			return err
		}
	}
	if cfg.Oscillation != nil {
		if err := cfg.Oscillation.Validate(); err != nil {
			return utils.NewConfigValidationError(path+".oscillation", err)
		}
	}
	return nil
}

// ChainConfig describes a chain of joints and the bone whose position is steered to the target.
type ChainConfig struct {
	// Joints are listed root first.
	Joints      []JointConfig `json:"joints"`
	EndEffector string        `json:"end_effector"`

	// Epsilon is the end effector distance under which the chain stops adjusting.
	Epsilon       float64    `json:"epsilon"`
	InitialTarget *r3.Vector `json:"initial_target,omitempty"`

	Smoothing       Smoothing `json:"smoothing,omitempty"`
	SpringFrequency float64   `json:"spring_frequency,omitempty"`
	SpringDamping   float64   `json:"spring_damping,omitempty"`
}

// DefaultChainConfig returns the canonical arm: a turntable base, a constrained shoulder doing
// the primary bend, an arm swinging toward the target, and elbow and forearm joints kept alive by
// small oscillations.
func DefaultChainConfig() *ChainConfig {
	cfg := &ChainConfig{
		EndEffector: skeleton.HandBone,
		Joints: []JointConfig{
			{
				Name:  skeleton.BaseBone,
				Axis:  spatialmath.AxisY,
				Plane: PlaneYaw,
				Gain:  1,
				Rate:  utils.RateFromFrameFraction(0.03, tuningFPS),
			},
			{
				Name:  skeleton.ShoulderBone,
				Axis:  spatialmath.AxisZ,
				Plane: PlaneSagittal,
				Gain:  0.8,
				Limit: referenceframe.SymmetricLimit(1.22),
				Rate:  utils.RateFromFrameFraction(0.03, tuningFPS),
			},
			{
				Name:  skeleton.ArmBone,
				Axis:  spatialmath.AxisY,
				Plane: PlaneSwing,
				Gain:  0.4,
				Limit: referenceframe.SymmetricLimit(1.0),
				Rate:  utils.RateFromFrameFraction(0.02, tuningFPS),
			},
			{
				Name:        skeleton.ElbowBone,
				Axis:        spatialmath.AxisZ,
				Limit:       referenceframe.SymmetricLimit(0.5),
				Rate:        utils.RateFromFrameFraction(0.01, tuningFPS),
				Oscillation: &Oscillation{Amplitude: 0.2, Frequency: 2, Wave: WaveSin},
			},
			{
				Name:        skeleton.ForearmBone,
				Axis:        spatialmath.AxisZ,
				Limit:       referenceframe.SymmetricLimit(0.3),
				Rate:        utils.RateFromFrameFraction(0.005, tuningFPS),
				Oscillation: &Oscillation{Amplitude: 0.1, Frequency: 1, Wave: WaveCos},
			},
		},
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in zero-valued tuning on the chain and every joint.
func (cfg *ChainConfig) SetDefaults() {
	if cfg.Epsilon == 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	if cfg.InitialTarget == nil {
		target := DefaultInitialTarget
		cfg.InitialTarget = &target
	}
	if cfg.Smoothing == "" {
		cfg.Smoothing = SmoothingExponential
	}
	if cfg.SpringFrequency == 0 {
		cfg.SpringFrequency = DefaultSpringFrequency
	}
	if cfg.SpringDamping == 0 {
		cfg.SpringDamping = DefaultSpringDamping
	}
	for i := range cfg.Joints {
		cfg.Joints[i].SetDefaults()
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *ChainConfig) Validate(path string) error {
	if len(cfg.Joints) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "joints")
	}
	for i := range cfg.Joints {
		if err := cfg.Joints[i].Validate(fmt.Sprintf("%s.joints.%d", path, i)); err != nil {
			return err
		}
	}
	names := lo.Map(cfg.Joints, func(j JointConfig, _ int) string { return j.Name })
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("duplicate joints %q", dups))
	}
	if cfg.EndEffector == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "end_effector")
	}
	if !(cfg.Epsilon >= 0) || math.IsInf(cfg.Epsilon, 1) {
		return utils.NewConfigValidationError(path, errors.Errorf("epsilon must be finite and non-negative, got %v", cfg.Epsilon))
	}
	switch cfg.Smoothing {
	case "", SmoothingExponential:
	case SmoothingSpring:
		if cfg.SpringFrequency < 0 || cfg.SpringDamping < 0 {
			return utils.NewConfigValidationError(path, errors.New("spring frequency and damping must be non-negative"))
		}
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown smoothing %q, expected %q or %q", cfg.Smoothing, SmoothingExponential, SmoothingSpring))
	}
	return nil
}

func (cfg *ChainConfig) newSmoother(j JointConfig) Smoother {
	if cfg.Smoothing == SmoothingSpring {
		return NewSpringSmoother(cfg.SpringFrequency, cfg.SpringDamping)
	}
	return ExponentialSmoother{Rate: j.Rate}
}
