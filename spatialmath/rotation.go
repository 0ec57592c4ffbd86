package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// AxisRotation returns the unit quaternion rotating theta radians about the given axis.
func AxisRotation(axis Axis, theta float64) quat.Number {
	v := axis.Vector()
	return (&R4AA{Theta: theta, RX: v.X, RY: v.Y, RZ: v.Z}).ToQuat()
}

// EulerXYZ composes rotations about the local x, then y, then z axes (intrinsic XYZ order).
func EulerXYZ(x, y, z float64) quat.Number {
	return quat.Mul(quat.Mul(AxisRotation(AxisX, x), AxisRotation(AxisY, y)), AxisRotation(AxisZ, z))
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
