package blend

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Signal is the normalized pointer position, nominally within [-1,1] on both axes with +Y up.
type Signal struct {
	X, Y float64
}

func (s Signal) finite() bool {
	return !math.IsNaN(s.X) && !math.IsNaN(s.Y) && !math.IsInf(s.X, 0) && !math.IsInf(s.Y, 0)
}

// Weights holds one weight per clip, indexed by ClipName.
type Weights [NumClips]float64

// UniformWeights returns equal weights summing to 1.
func UniformWeights() Weights {
	var w Weights
	for i := range w {
		w[i] = 1 / float64(NumClips)
	}
	return w
}

// OnlyWeights returns weight 1 on c and 0 elsewhere.
func OnlyWeights(c ClipName) Weights {
	var w Weights
	w[c] = 1
	return w
}

// Of returns the weight of clip c.
func (w Weights) Of(c ClipName) float64 {
	return w[c]
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return floats.Sum(w[:])
}

// Normalize scales the weights to sum to 1. Weights summing to zero, or to anything that is not
// a finite positive number, are returned unchanged with ok false.
func (w Weights) Normalize() (Weights, bool) {
	sum := w.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return w, false
	}
	floats.Scale(1/sum, w[:])
	return w, true
}

// Lerp moves every weight the fraction t of the way toward target.
func (w Weights) Lerp(target Weights, t float64) Weights {
	for i := range w {
		w[i] += (target[i] - w[i]) * t
	}
	return w
}

// Max returns the clip with the largest weight, earliest in order on ties.
func (w Weights) Max() ClipName {
	return ClipName(floats.MaxIdx(w[:]))
}

// InDeadZone reports whether s is close enough to the origin to count as Idle. The square zone
// requires both |x| and |y| under deadZone; the radial zone compares the distance from origin.
func InDeadZone(s Signal, deadZone float64, radial bool) bool {
	if radial {
		return math.Hypot(s.X, s.Y) < deadZone
	}
	return math.Abs(s.X) < deadZone && math.Abs(s.Y) < deadZone
}

// cornerWeights are the unnormalized corner products of complementary axis weights.
func cornerWeights(s Signal) Weights {
	nx := (s.X + 1) / 2
	ny := (s.Y + 1) / 2
	top := math.Max(0, ny)
	bottom := math.Max(0, 1-ny)
	left := math.Max(0, 1-nx)
	right := math.Max(0, nx)

	var w Weights
	w[TopLeft] = top * left
	w[TopRight] = top * right
	w[BottomLeft] = bottom * left
	w[BottomRight] = bottom * right
	return w
}

// TargetWeights computes the weights the continuous blend converges to for signal s. The dead
// zone maps to Idle alone; elsewhere the four corners share the weight by bilinear products and
// Idle gets none. The second result is false when s is degenerate (not finite).
func TargetWeights(s Signal, deadZone float64, radial bool) (Weights, bool) {
	if !s.finite() {
		return Weights{}, false
	}
	if InDeadZone(s, deadZone, radial) {
		return OnlyWeights(Idle), true
	}
	return cornerWeights(s).Normalize()
}

// classifyOrder breaks argmax ties toward the right and top.
var classifyOrder = [...]ClipName{TopRight, TopLeft, BottomRight, BottomLeft}

// Classify picks the single clip for s: Idle in the dead zone, otherwise the corner with the
// largest blend weight. With cornerThreshold > 0, a signal outside the dead zone that is not
// beyond the threshold on both axes keeps current, so small drifts across an axis do not flip
// the state. Degenerate signals keep current.
func Classify(s Signal, deadZone float64, radial bool, cornerThreshold float64, current ClipName) ClipName {
	if !s.finite() {
		return current
	}
	if InDeadZone(s, deadZone, radial) {
		return Idle
	}
	if cornerThreshold > 0 && (math.Abs(s.X) <= cornerThreshold || math.Abs(s.Y) <= cornerThreshold) {
		return current
	}
	w := cornerWeights(s)
	best := classifyOrder[0]
	for _, c := range classifyOrder[1:] {
		if w[c] > w[best] {
			best = c
		}
	}
	return best
}
