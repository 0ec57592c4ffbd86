// Package kinematics implements the heuristic joint-chain solver that points an articulated rig
// toward a target. Each tick every driven joint derives a desired angle from the direction to the
// target projected onto its bend plane, damps it, clamps it to the joint's limits, and eases
// toward it. It is not an exact inverse kinematics solve: unreachable targets simply settle into
// a clamped best-effort pose.
package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// planeEpsilon is the magnitude below which both plane components count as zero.
const planeEpsilon = 1e-9

// BendPlane selects which two components of the joint-to-target direction drive a joint.
type BendPlane string

// The supported bend planes.
const (
	// PlaneNone leaves the joint to its oscillation alone.
	PlaneNone BendPlane = "none"
	// PlaneSagittal bends in the XY plane: atan2(y, x).
	PlaneSagittal BendPlane = "sagittal"
	// PlaneYaw turns a turntable about Y: atan2(x, z).
	PlaneYaw BendPlane = "yaw"
	// PlaneSwing swings in the XZ plane: atan2(z, x).
	PlaneSwing BendPlane = "swing"
	// PlaneElevation pitches toward the target's height over the ground: atan2(y, hypot(x, z)).
	PlaneElevation BendPlane = "elevation"
)

// Validate ensures the plane is known. The empty plane is treated as PlaneNone.
func (p BendPlane) Validate() error {
	switch p {
	case "", PlaneNone, PlaneSagittal, PlaneYaw, PlaneSwing, PlaneElevation:
		return nil
	default:
		return errors.Errorf("unknown bend plane %q", p)
	}
}

// Driven reports whether the plane contributes a target-driven angle.
func (p BendPlane) Driven() bool {
	return p != "" && p != PlaneNone
}

// Angle returns the raw angle of v in the plane. It returns false when the plane is PlaneNone or
// v has no component in the plane or is not finite, in which case the direction is undefined.
func (p BendPlane) Angle(v r3.Vector) (float64, bool) {
	if !finiteVector(v) {
		return 0, false
	}
	var a, b float64
	switch p {
	case PlaneSagittal:
		a, b = v.Y, v.X
	case PlaneYaw:
		a, b = v.X, v.Z
	case PlaneSwing:
		a, b = v.Z, v.X
	case PlaneElevation:
		a, b = v.Y, math.Hypot(v.X, v.Z)
	default:
		return 0, false
	}
	if math.Abs(a) < planeEpsilon && math.Abs(b) < planeEpsilon {
		return 0, false
	}
	return math.Atan2(a, b), true
}

func finiteVector(v r3.Vector) bool {
	return !math.IsNaN(v.X+v.Y+v.Z) && !math.IsInf(v.X+v.Y+v.Z, 0)
}

// Wave is the shape of an oscillation.
type Wave string

// Supported waves.
const (
	WaveSin Wave = "sin"
	WaveCos Wave = "cos"
)

// Oscillation is a small periodic term added to a joint's desired angle so that otherwise idle
// joints keep moving.
type Oscillation struct {
	Amplitude float64 `json:"amplitude"`
	// Frequency is in radians per second.
	Frequency float64 `json:"frequency"`
	Phase     float64 `json:"phase,omitempty"`
	Wave      Wave    `json:"wave,omitempty"`
}

// At returns the oscillation's value t seconds in. A nil oscillation is always zero.
func (o *Oscillation) At(t float64) float64 {
	if o == nil {
		return 0
	}
	arg := o.Frequency*t + o.Phase
	if o.Wave == WaveCos {
		return o.Amplitude * math.Cos(arg)
	}
	return o.Amplitude * math.Sin(arg)
}

// Validate ensures the oscillation is well formed.
func (o *Oscillation) Validate() error {
	switch o.Wave {
	case "", WaveSin, WaveCos:
	default:
		return errors.Errorf("unknown wave %q, expected %q or %q", o.Wave, WaveSin, WaveCos)
	}
	if o.Amplitude < 0 || math.IsNaN(o.Amplitude) || math.IsInf(o.Amplitude, 0) {
		return errors.Errorf("amplitude must be a non-negative number, got %v", o.Amplitude)
	}
	if math.IsNaN(o.Frequency) || math.IsInf(o.Frequency, 0) {
		return errors.Errorf("frequency must be a number, got %v", o.Frequency)
	}
	return nil
}
