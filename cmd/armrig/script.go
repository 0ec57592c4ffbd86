package main

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/armrig/kinematics"
	"go.viam.com/armrig/rig"
	"go.viam.com/armrig/spatialmath"
)

// inputPath scripts the pointer the way a user moving a mouse over the scene would.
type inputPath string

const (
	pathCircle  inputPath = "circle"
	pathCorners inputPath = "corners"
	pathStatic  inputPath = "static"

	// cornerDwell is how long the corners path rests on each corner, in seconds.
	cornerDwell = 2.0
)

func parseInputPath(s string) (inputPath, error) {
	switch p := inputPath(s); p {
	case pathCircle, pathCorners, pathStatic:
		return p, nil
	default:
		return "", errors.Errorf("unknown path %q, expected %q, %q or %q", s, pathCircle, pathCorners, pathStatic)
	}
}

// corners are visited in order, ending on the neutral centre.
var corners = [...]struct{ x, y float64 }{{-0.8, 0.8}, {0.8, 0.8}, {0.8, -0.8}, {-0.8, -0.8}, {0, 0}}

// at returns the target and signal t seconds into the path.
func (p inputPath) at(t float64) (r3.Vector, float64, float64) {
	switch p {
	case pathCircle:
		// the target orbits the vertical axis at half the signal's rate and bobs with it
		x, y := 0.8*math.Cos(t), 0.8*math.Sin(t)
		orbit := spatialmath.RotateVector(spatialmath.AxisRotation(spatialmath.AxisY, -t/2), r3.Vector{X: 2})
		return orbit.Add(r3.Vector{Y: 2 + y}), x, y
	case pathCorners:
		c := corners[int(t/cornerDwell)%len(corners)]
		return r3.Vector{X: 2.5 * c.x, Y: 2 + c.y, Z: 1}, c.x, c.y
	default:
		return kinematics.DefaultInitialTarget, 0, 0
	}
}

// apply feeds the path's state at t into controls.
func (p inputPath) apply(controls rig.Controls, t float64) {
	target, x, y := p.at(t)
	controls.MoveTarget(target)
	controls.SetSignal(x, y)
}
