package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/referenceframe"
	"go.viam.com/armrig/skeleton"
	"go.viam.com/armrig/skeleton/fake"
	"go.viam.com/armrig/spatialmath"
)

const frame = 1.0 / 60

func newArmChain(t *testing.T, cfg *ChainConfig) (*Chain, *fake.Skeleton) {
	t.Helper()
	skel := fake.NewArm()
	if cfg == nil {
		cfg = DefaultChainConfig()
	}
	c, err := NewChain(skel, cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return c, skel
}

func angle(t *testing.T, skel *fake.Skeleton, name string, axis spatialmath.Axis) float64 {
	t.Helper()
	b, ok := skel.Bone(name)
	test.That(t, ok, test.ShouldBeTrue)
	return b.Rotation(axis)
}

func TestNewChain(t *testing.T) {
	c, _ := newArmChain(t, nil)
	test.That(t, c.JointNames(), test.ShouldResemble, skeleton.ArmBones[:5])
	test.That(t, c.Target(), test.ShouldResemble, r3.Vector{Y: 2, Z: 2})
	test.That(t, c.EndEffector().Distance(r3.Vector{X: 3, Y: 1}), test.ShouldBeLessThan, 1e-9)
	test.That(t, c.Angles(), test.ShouldResemble, make([]referenceframe.Input, 5))
	test.That(t, c.Elapsed(), test.ShouldEqual, 0.0)
	test.That(t, c.Config().Epsilon, test.ShouldEqual, DefaultEpsilon)

	joints := c.Joints()
	test.That(t, joints[1].Name(), test.ShouldEqual, skeleton.ShoulderBone)
	test.That(t, joints[1].Axis(), test.ShouldEqual, spatialmath.AxisZ)
	test.That(t, *joints[1].Limit(), test.ShouldResemble, referenceframe.Limit{Min: -1.22, Max: 1.22})
	test.That(t, joints[0].Limit(), test.ShouldBeNil)
}

func TestNewChainMissingBones(t *testing.T) {
	skel := fake.NewSkeleton()
	_, err := skel.AddBone(skeleton.BaseBone, "", r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	_, err = skel.AddBone(skeleton.ShoulderBone, skeleton.BaseBone, r3.Vector{Y: 1})
	test.That(t, err, test.ShouldBeNil)

	_, err = NewChain(skel, DefaultChainConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot build chain")
	for _, name := range []string{skeleton.ArmBone, skeleton.ElbowBone, skeleton.ForearmBone, skeleton.HandBone} {
		test.That(t, err.Error(), test.ShouldContainSubstring, `"`+name+`"`)
	}
	test.That(t, err.Error(), test.ShouldNotContainSubstring, `"shoulder"`)

	_, err = NewChain(nil, DefaultChainConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewChain(fake.NewArm(), &ChainConfig{EndEffector: skeleton.HandBone}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"joints" is required`)
}

func TestNewChainClampsInitialPose(t *testing.T) {
	skel := fake.NewArm()
	shoulder, _ := skel.Bone(skeleton.ShoulderBone)
	shoulder.SetRotation(spatialmath.AxisZ, 2)
	elbow, _ := skel.Bone(skeleton.ElbowBone)
	elbow.SetRotation(spatialmath.AxisZ, -3)
	base, _ := skel.Bone(skeleton.BaseBone)
	base.SetRotation(spatialmath.AxisY, 5)

	_, err := NewChain(skel, DefaultChainConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, shoulder.Rotation(spatialmath.AxisZ), test.ShouldEqual, 1.22)
	test.That(t, elbow.Rotation(spatialmath.AxisZ), test.ShouldEqual, -0.5)
	// unconstrained
	test.That(t, base.Rotation(spatialmath.AxisY), test.ShouldEqual, 5.0)
}

func TestShoulderClampsStraightUp(t *testing.T) {
	for _, smoothing := range []Smoothing{SmoothingExponential, SmoothingSpring} {
		t.Run(string(smoothing), func(t *testing.T) {
			cfg := DefaultChainConfig()
			cfg.Smoothing = smoothing
			c, skel := newArmChain(t, cfg)
			c.SetTarget(r3.Vector{Y: 4})

			for i := 0; i < 600; i++ {
				c.Tick(frame)
				test.That(t, angle(t, skel, skeleton.ShoulderBone, spatialmath.AxisZ), test.ShouldBeLessThanOrEqualTo, 1.22)
			}
			shoulder := angle(t, skel, skeleton.ShoulderBone, spatialmath.AxisZ)
			test.That(t, shoulder, test.ShouldAlmostEqual, 1.22, 1e-3)
			test.That(t, shoulder, test.ShouldBeLessThan, math.Pi/2*0.8)
			// straight above the base the turntable has no direction to follow
			test.That(t, angle(t, skel, skeleton.BaseBone, spatialmath.AxisY), test.ShouldEqual, 0.0)
		})
	}
}

func TestTargetAtEndEffector(t *testing.T) {
	c, skel := newArmChain(t, nil)
	c.SetTarget(r3.Vector{Y: 2, Z: 2})
	for i := 0; i < 30; i++ {
		c.Tick(frame)
	}

	c.SetTarget(c.EndEffector())
	test.That(t, c.Distance(), test.ShouldAlmostEqual, 0.0)
	test.That(t, c.Converged(), test.ShouldBeTrue)
	before := c.Angles()
	for i := 0; i < 100; i++ {
		c.Tick(frame)
	}
	test.That(t, c.Angles(), test.ShouldResemble, before)
	test.That(t, angle(t, skel, skeleton.ShoulderBone, spatialmath.AxisZ), test.ShouldEqual, before[1].Value)
}

func TestTickNonPositive(t *testing.T) {
	c, _ := newArmChain(t, nil)
	c.SetTarget(r3.Vector{X: 1, Y: 3, Z: -1})
	for i := 0; i < 10; i++ {
		c.Tick(frame)
	}
	before := c.Angles()
	elapsed := c.Elapsed()
	c.Tick(0)
	c.Tick(-frame)
	c.Tick(math.NaN())
	c.Tick(math.Inf(1))
	test.That(t, c.Angles(), test.ShouldResemble, before)
	test.That(t, c.Elapsed(), test.ShouldEqual, elapsed)
}

func TestLimitsHold(t *testing.T) {
	for _, smoothing := range []Smoothing{SmoothingExponential, SmoothingSpring} {
		t.Run(string(smoothing), func(t *testing.T) {
			cfg := DefaultChainConfig()
			cfg.Smoothing = smoothing
			c, _ := newArmChain(t, cfg)

			//nolint:gosec
			r := rand.New(rand.NewSource(3))
			for i := 0; i < 2000; i++ {
				if i%20 == 0 {
					c.SetTarget(r3.Vector{X: r.Float64()*20 - 10, Y: r.Float64()*20 - 10, Z: r.Float64()*20 - 10})
				}
				c.Tick(r.Float64() / 10)
				for _, j := range c.Joints() {
					test.That(t, j.Limit().Contains(j.Angle()), test.ShouldBeTrue)
				}
			}
		})
	}
}

func TestNonFiniteTargetIgnored(t *testing.T) {
	for _, smoothing := range []Smoothing{SmoothingExponential, SmoothingSpring} {
		t.Run(string(smoothing), func(t *testing.T) {
			cfg := DefaultChainConfig()
			cfg.Smoothing = smoothing
			c, _ := newArmChain(t, cfg)
			c.SetTarget(r3.Vector{X: 1, Y: 3, Z: 1})
			for i := 0; i < 30; i++ {
				c.Tick(frame)
			}

			before := c.Angles()
			for _, bad := range []r3.Vector{
				{X: math.NaN(), Y: 2, Z: 2},
				{X: math.Inf(1), Y: 2, Z: 2},
				{X: math.Inf(1), Y: math.Inf(-1)},
			} {
				c.SetTarget(bad)
				c.Tick(frame)
			}
			test.That(t, c.Angles(), test.ShouldResemble, before)

			c.SetTarget(r3.Vector{X: 1, Y: 3, Z: 1})
			for i := 0; i < 600; i++ {
				c.Tick(frame)
			}
			for _, j := range c.Joints() {
				test.That(t, math.IsNaN(j.Angle()), test.ShouldBeFalse)
				test.That(t, j.Limit().Contains(j.Angle()), test.ShouldBeTrue)
			}
			test.That(t, math.IsNaN(c.Distance()), test.ShouldBeFalse)
		})
	}
}

func TestOscillationKeepsIdleJointsMoving(t *testing.T) {
	c, skel := newArmChain(t, nil)
	c.SetTarget(r3.Vector{X: -5, Y: -5, Z: -5})
	seen := map[float64]bool{}
	for i := 0; i < 120; i++ {
		c.Tick(frame)
		seen[angle(t, skel, skeleton.ElbowBone, spatialmath.AxisZ)] = true
	}
	test.That(t, len(seen), test.ShouldBeGreaterThan, 100)
	test.That(t, c.Elapsed(), test.ShouldAlmostEqual, 2.0)
}

// newPointer builds a two joint rig whose hand can reach any direction at distance reach from
// the shoulder: a turntable base about Y and a shoulder pitching about X.
func newPointer(t *testing.T, reach float64) (*Chain, r3.Vector) {
	t.Helper()
	skel := fake.NewSkeleton()
	_, err := skel.AddBone("base", "", r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	_, err = skel.AddBone("shoulder", "base", r3.Vector{Y: 1})
	test.That(t, err, test.ShouldBeNil)
	_, err = skel.AddBone("hand", "shoulder", r3.Vector{Z: reach})
	test.That(t, err, test.ShouldBeNil)

	cfg := &ChainConfig{
		EndEffector: "hand",
		Joints: []JointConfig{
			{Name: "base", Axis: spatialmath.AxisY, Plane: PlaneYaw, Gain: 1, Rate: 3},
			{
				Name: "shoulder", Axis: spatialmath.AxisX, Plane: PlaneElevation, Gain: -1, Rate: 3,
				Limit: referenceframe.SymmetricLimit(math.Pi / 2),
			},
		},
	}
	c, err := NewChain(skel, cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return c, r3.Vector{Y: 1}
}

func TestConvergesMonotonically(t *testing.T) {
	const reach = 2.0
	c, shoulder := newPointer(t, reach)
	yaw, pitch := 0.6, 0.5
	target := shoulder.Add(r3.Vector{
		X: math.Cos(pitch) * math.Sin(yaw),
		Y: math.Sin(pitch),
		Z: math.Cos(pitch) * math.Cos(yaw),
	}.Mul(reach))
	c.SetTarget(target)

	last := c.Distance()
	ticks := 0
	for ; !c.Converged(); ticks++ {
		test.That(t, ticks, test.ShouldBeLessThan, 1000)
		c.Tick(frame)
		d := c.Distance()
		test.That(t, d, test.ShouldBeLessThan, last)
		last = d
	}
	test.That(t, last, test.ShouldBeLessThanOrEqualTo, DefaultEpsilon)

	settled := c.Angles()
	for i := 0; i < 100; i++ {
		c.Tick(frame)
	}
	test.That(t, referenceframe.InputsL2Distance(settled, c.Angles()), test.ShouldAlmostEqual, 0.0)
}

func TestFrameRateIndependence(t *testing.T) {
	slow, _ := newPointer(t, 2)
	fast, _ := newPointer(t, 2)
	target := r3.Vector{X: -3, Y: 2, Z: 1}
	slow.SetTarget(target)
	fast.SetTarget(target)
	for i := 0; i < 15; i++ {
		slow.Tick(1.0 / 30)
	}
	for i := 0; i < 60; i++ {
		fast.Tick(1.0 / 120)
	}
	test.That(t, referenceframe.InputsL2Distance(slow.Angles(), fast.Angles()), test.ShouldBeLessThan, 1e-9)
}
