// Package spatialmath defines the rotations the rig needs: single-axis joint rotations, their
// quaternion form, and rotating vectors by them.
package spatialmath

import (
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Axis names one of the three local rotation axes of a joint.
type Axis string

// The local axes a joint may rotate about.
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// ParseAxis parses "x", "y" or "z" (case-insensitive).
func ParseAxis(s string) (Axis, error) {
	a := Axis(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case AxisX, AxisY, AxisZ:
		return a, nil
	default:
		return "", errors.Errorf("unknown axis %q, expected one of x, y, z", s)
	}
}

// Vector returns the unit vector of the axis.
func (a Axis) Vector() r3.Vector {
	switch a {
	case AxisX:
		return r3.Vector{X: 1}
	case AxisY:
		return r3.Vector{Y: 1}
	default:
		return r3.Vector{Z: 1}
	}
}

// Index returns 0, 1 or 2 for x, y and z.
func (a Axis) Index() int {
	switch a {
	case AxisX:
		return 0
	case AxisY:
		return 1
	default:
		return 2
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(text []byte) error {
	parsed, err := ParseAxis(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
