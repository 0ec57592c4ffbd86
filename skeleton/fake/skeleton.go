// Package fake implements an in-memory skeleton with forward kinematics.
package fake

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/armrig/skeleton"
	"go.viam.com/armrig/spatialmath"
)

// Skeleton is a tree of bones. Each bone sits at a fixed offset in its parent's local frame and
// rotates about its own origin.
type Skeleton struct {
	mu    sync.RWMutex
	bones map[string]*Bone
	order []*Bone
}

// NewSkeleton returns an empty skeleton.
func NewSkeleton() *Skeleton {
	return &Skeleton{bones: map[string]*Bone{}}
}

// NewArm returns the canonical arm rig: a turntable base at the origin, a shoulder one unit
// above it, and a three unit reach along +X out to the hand when every joint is at rest.
func NewArm() *Skeleton {
	s := NewSkeleton()
	must := func(_ *Bone, err error) {
		if err != nil {
			panic(err)
		}
	}
	must(s.AddBone(skeleton.BaseBone, "", r3.Vector{}))
	must(s.AddBone(skeleton.ShoulderBone, skeleton.BaseBone, r3.Vector{Y: 1}))
	must(s.AddBone(skeleton.ArmBone, skeleton.ShoulderBone, r3.Vector{X: 0.5}))
	must(s.AddBone(skeleton.ElbowBone, skeleton.ArmBone, r3.Vector{X: 1}))
	must(s.AddBone(skeleton.ForearmBone, skeleton.ElbowBone, r3.Vector{X: 0.5}))
	must(s.AddBone(skeleton.HandBone, skeleton.ForearmBone, r3.Vector{X: 1}))
	return s
}

// AddBone attaches a new bone to parent, or makes it a root when parent is empty. Bones must be
// added parent first.
func (s *Skeleton) AddBone(name, parent string, offset r3.Vector) (*Bone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return nil, errors.New("bone name cannot be empty")
	}
	if _, ok := s.bones[name]; ok {
		return nil, errors.Errorf("bone %q already exists", name)
	}
	var p *Bone
	if parent != "" {
		var ok bool
		if p, ok = s.bones[parent]; !ok {
			return nil, errors.Errorf("parent bone %q of %q not found", parent, name)
		}
	}
	b := &Bone{skel: s, name: name, parent: p, offset: offset}
	s.bones[name] = b
	s.order = append(s.order, b)
	return b, nil
}

// Bone implements skeleton.Skeleton.
func (s *Skeleton) Bone(name string) (skeleton.Bone, bool) {
	b, ok := s.FakeBone(name)
	if !ok {
		return nil, false
	}
	return b, true
}

// FakeBone returns the concrete bone for name.
func (s *Skeleton) FakeBone(name string) (*Bone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bones[name]
	return b, ok
}

// Names returns bone names in insertion order.
func (s *Skeleton) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.order))
	for _, b := range s.order {
		names = append(names, b.name)
	}
	return names
}

// Bone is a single joint of a fake skeleton.
type Bone struct {
	skel   *Skeleton
	name   string
	parent *Bone
	offset r3.Vector
	euler  [3]float64
}

// Name returns the bone name.
func (b *Bone) Name() string {
	return b.name
}

// Rotation returns the local rotation about axis.
func (b *Bone) Rotation(axis spatialmath.Axis) float64 {
	b.skel.mu.RLock()
	defer b.skel.mu.RUnlock()
	return b.euler[axis.Index()]
}

// SetRotation sets the local rotation about axis.
func (b *Bone) SetRotation(axis spatialmath.Axis, radians float64) {
	b.skel.mu.Lock()
	defer b.skel.mu.Unlock()
	b.euler[axis.Index()] = radians
}

// WorldPosition returns the bone origin in world coordinates.
func (b *Bone) WorldPosition() r3.Vector {
	b.skel.mu.RLock()
	defer b.skel.mu.RUnlock()
	m := b.worldMatrix()
	return r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}
}

// worldMatrix chains local transforms from the root down. Callers hold the skeleton lock.
func (b *Bone) worldMatrix() mgl64.Mat4 {
	local := b.localMatrix()
	if b.parent == nil {
		return local
	}
	return b.parent.worldMatrix().Mul4(local)
}

func (b *Bone) localMatrix() mgl64.Mat4 {
	q := spatialmath.EulerXYZ(b.euler[0], b.euler[1], b.euler[2])
	rot := mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Mat4()
	return mgl64.Translate3D(b.offset.X, b.offset.Y, b.offset.Z).Mul4(rot)
}
