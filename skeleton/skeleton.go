// Package skeleton defines the narrow view of a rigged skeleton the joint solver depends on.
// Scene graphs, meshes and materials stay with the host; only named bones cross this boundary.
package skeleton

import (
	"github.com/golang/geo/r3"

	"go.viam.com/armrig/spatialmath"
)

// A Bone is a resolved joint handle. Rotations are local Euler angles in radians; the world
// position reflects every ancestor's current rotation.
type Bone interface {
	Name() string
	Rotation(axis spatialmath.Axis) float64
	SetRotation(axis spatialmath.Axis, radians float64)
	WorldPosition() r3.Vector
}

// A Skeleton resolves bones by their stable name.
type Skeleton interface {
	Bone(name string) (Bone, bool)
}

// Canonical bone names of the articulated arm rig, root to end effector.
const (
	BaseBone     = "base"
	ShoulderBone = "shoulder"
	ArmBone      = "arm"
	ElbowBone    = "elbow"
	ForearmBone  = "forearm"
	HandBone     = "hand"
)

// ArmBones lists the canonical arm bones in chain order.
var ArmBones = []string{BaseBone, ShoulderBone, ArmBone, ElbowBone, ForearmBone, HandBone}
