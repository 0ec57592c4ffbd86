// Package referenceframe holds the value types shared by the joint solver: joint angle limits,
// joint inputs, and the errors raised when a named handle cannot be resolved.
package referenceframe

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/armrig/utils"
)

// Limit represents the limits of motion of a single joint axis, in radians.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SymmetricLimit returns the limit [-r, r].
func SymmetricLimit(r float64) *Limit {
	r = math.Abs(r)
	return &Limit{Min: -r, Max: r}
}

// Validate ensures the limit is well formed.
func (l *Limit) Validate(path string) error {
	if math.IsNaN(l.Min) || math.IsNaN(l.Max) {
		return utils.NewConfigValidationError(path, errors.New("limit bounds must be numbers"))
	}
	if l.Min > l.Max {
		return utils.NewConfigValidationError(path, errors.Errorf("min %v is greater than max %v", l.Min, l.Max))
	}
	return nil
}

// Clamp restricts v to the limit. A nil limit leaves v unconstrained.
func (l *Limit) Clamp(v float64) float64 {
	if l == nil {
		return v
	}
	return utils.Clamp(v, l.Min, l.Max)
}

// Contains reports whether v lies within the limit. Everything is within a nil limit.
func (l *Limit) Contains(v float64) bool {
	if l == nil {
		return true
	}
	return v >= l.Min && v <= l.Max
}

// LimitsAlmostEqual reports whether two sets of limits match to within floating point noise.
func LimitsAlmostEqual(a, b []Limit) bool {
	if len(a) != len(b) {
		return false
	}

	const epsilon = 1e-5
	for idx, x := range a {
		if !utils.Float64AlmostEqual(x.Min, b[idx].Min, epsilon) ||
			!utils.Float64AlmostEqual(x.Max, b[idx].Max, epsilon) {
			return false
		}
	}

	return true
}
