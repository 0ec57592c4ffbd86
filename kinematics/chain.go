package kinematics

import (
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/referenceframe"
	"go.viam.com/armrig/skeleton"
	"go.viam.com/armrig/spatialmath"
	"go.viam.com/armrig/utils"
)

// A Joint is a resolved bone rotating about one local axis.
type Joint struct {
	cfg      JointConfig
	bone     skeleton.Bone
	smoother Smoother
}

// Name returns the bone name.
func (j *Joint) Name() string {
	return j.cfg.Name
}

// Axis returns the local rotation axis.
func (j *Joint) Axis() spatialmath.Axis {
	return j.cfg.Axis
}

// Limit returns the joint's limit, or nil if it is unconstrained.
func (j *Joint) Limit() *referenceframe.Limit {
	return j.cfg.Limit
}

// Angle returns the current rotation about the joint's axis.
func (j *Joint) Angle() float64 {
	return j.bone.Rotation(j.cfg.Axis)
}

// WorldPosition returns the joint's position in world space.
func (j *Joint) WorldPosition() r3.Vector {
	return j.bone.WorldPosition()
}

// desired returns the angle the joint should head toward given the direction to the target and
// the elapsed time. It returns false when the joint has nothing to follow this tick.
func (j *Joint) desired(toTarget r3.Vector, elapsed float64) (float64, bool) {
	angle := j.cfg.Oscillation.At(elapsed)
	if j.cfg.Plane.Driven() {
		raw, ok := j.cfg.Plane.Angle(toTarget)
		if !ok {
			return 0, false
		}
		angle += raw * j.cfg.Gain
	} else if j.cfg.Oscillation == nil {
		return 0, false
	}
	return j.cfg.Limit.Clamp(angle), true
}

// A Chain steers an end effector toward a target by easing each joint toward a heuristic angle
// once per tick. The target is a single slot that any goroutine may overwrite; Tick reads it once
// and works from that snapshot.
type Chain struct {
	cfg         ChainConfig
	joints      []*Joint
	endEffector skeleton.Bone
	target      *utils.Mailbox[r3.Vector]
	logger      logging.Logger

	mu      sync.Mutex
	elapsed float64
}

// NewChain resolves every joint and the end effector on skel. Missing bones fail construction,
// and the error names all of them. Bones already rotated beyond their joint's limit are clamped.
func NewChain(skel skeleton.Skeleton, cfg *ChainConfig, logger logging.Logger) (*Chain, error) {
	if skel == nil {
		return nil, errors.New("chain requires a skeleton")
	}
	resolved := *cfg
	resolved.Joints = append([]JointConfig(nil), cfg.Joints...)
	resolved.SetDefaults()
	if err := resolved.Validate("chain"); err != nil {
		return nil, err
	}

	var errs []error
	joints := make([]*Joint, 0, len(resolved.Joints))
	for _, jc := range resolved.Joints {
		bone, ok := skel.Bone(jc.Name)
		if !ok {
			errs = append(errs, referenceframe.NewJointMissingError(jc.Name))
			continue
		}
		joints = append(joints, &Joint{cfg: jc, bone: bone, smoother: resolved.newSmoother(jc)})
	}
	endEffector, ok := skel.Bone(resolved.EndEffector)
	if !ok {
		errs = append(errs, referenceframe.NewJointMissingError(resolved.EndEffector))
	}
	if err := multierr.Combine(errs...); err != nil {
		return nil, errors.Wrap(err, "cannot build chain")
	}

	for _, j := range joints {
		angle := j.Angle()
		if !j.cfg.Limit.Contains(angle) {
			clamped := j.cfg.Limit.Clamp(angle)
			logger.Debugw("clamping initial joint angle", "joint", j.Name(), "angle", angle, "clamped", clamped)
			j.bone.SetRotation(j.cfg.Axis, clamped)
		}
	}

	c := &Chain{
		cfg:         resolved,
		joints:      joints,
		endEffector: endEffector,
		target:      utils.NewMailbox(*resolved.InitialTarget),
		logger:      logger,
	}
	logger.Debugw("chain ready", "joints", len(joints), "end_effector", resolved.EndEffector,
		"smoothing", resolved.Smoothing)
	return c, nil
}

// SetTarget replaces the target. It never blocks and the last write wins.
func (c *Chain) SetTarget(target r3.Vector) {
	c.target.Post(target)
}

// Target returns the current target.
func (c *Chain) Target() r3.Vector {
	return c.target.Load()
}

// Tick advances every joint one step toward the target. Non-positive or non-finite dt does
// nothing. A non-finite target, or an end effector already within epsilon of the target, only
// advances elapsed time.
func (c *Chain) Tick(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}
	target := c.target.Load()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed += dt
	if !finiteVector(target) || c.endEffector.WorldPosition().Distance(target) <= c.cfg.Epsilon {
		return
	}

	// Every joint sees the pose as it was at the start of the tick.
	positions := make([]r3.Vector, len(c.joints))
	for i, j := range c.joints {
		positions[i] = j.WorldPosition()
	}
	for i, j := range c.joints {
		desired, ok := j.desired(target.Sub(positions[i]), c.elapsed)
		if !ok {
			continue
		}
		next := j.smoother.Step(j.Angle(), desired, dt)
		if math.IsNaN(next) {
			j.smoother.Halt()
			continue
		}
		clamped := j.cfg.Limit.Clamp(next)
		if clamped != next {
			j.smoother.Halt()
		}
		j.bone.SetRotation(j.cfg.Axis, clamped)
	}
}

// Angles returns a snapshot of the joint angles, root first.
func (c *Chain) Angles() []referenceframe.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	angles := make([]float64, len(c.joints))
	for i, j := range c.joints {
		angles[i] = j.Angle()
	}
	return referenceframe.FloatsToInputs(angles)
}

// Joints returns the resolved joints, root first.
func (c *Chain) Joints() []*Joint {
	return append([]*Joint(nil), c.joints...)
}

// JointNames returns the joint names, root first.
func (c *Chain) JointNames() []string {
	names := make([]string, len(c.joints))
	for i, j := range c.joints {
		names[i] = j.Name()
	}
	return names
}

// Limits returns each joint's limit, root first. Unconstrained joints report infinite bounds.
func (c *Chain) Limits() []referenceframe.Limit {
	limits := make([]referenceframe.Limit, len(c.joints))
	for i, j := range c.joints {
		if j.cfg.Limit == nil {
			limits[i] = referenceframe.Limit{Min: math.Inf(-1), Max: math.Inf(1)}
			continue
		}
		limits[i] = *j.cfg.Limit
	}
	return limits
}

// EndEffector returns the end effector's world position.
func (c *Chain) EndEffector() r3.Vector {
	return c.endEffector.WorldPosition()
}

// Distance returns how far the end effector is from the target.
func (c *Chain) Distance() float64 {
	return c.EndEffector().Distance(c.Target())
}

// Converged reports whether the end effector is within epsilon of the target.
func (c *Chain) Converged() bool {
	return c.Distance() <= c.cfg.Epsilon
}

// Elapsed returns the time accumulated by ticks, in seconds.
func (c *Chain) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Config returns the chain's resolved configuration.
func (c *Chain) Config() ChainConfig {
	return c.cfg
}
