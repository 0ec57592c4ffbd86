package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon. Equal infinities compare equal.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return a == b || math.Abs(a-b) <= epsilon
}

// Clamp returns v limited to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Lerp returns the value t of the way from a to b.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// ExpSmoothingFactor returns the fraction of the remaining distance an exponentially decaying
// follower with rate k covers in dt seconds: 1 - e^(-k*dt). It is 0 for non-positive dt or k
// and approaches 1 as k*dt grows, so repeated steps are frame-rate independent.
func ExpSmoothingFactor(k, dt float64) float64 {
	if k <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-k*dt)
}

// RateFromFrameFraction converts a fixed per-frame lerp fraction tuned at the given frame rate
// into the equivalent exponential rate, i.e. the k for which ExpSmoothingFactor(k, 1/fps) == frac.
func RateFromFrameFraction(frac, fps float64) float64 {
	if frac <= 0 || fps <= 0 {
		return 0
	}
	if frac >= 1 {
		return math.Inf(1)
	}
	return -math.Log(1-frac) * fps
}
