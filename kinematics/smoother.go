package kinematics

import (
	"github.com/charmbracelet/harmonica"

	"go.viam.com/armrig/utils"
)

// A Smoother eases a joint angle toward its desired value.
type Smoother interface {
	// Step returns the angle dt seconds after current while following desired.
	Step(current, desired, dt float64) float64
	// Halt discards any motion carried between steps, e.g. when the joint hits a limit.
	Halt()
}

// ExponentialSmoother covers the fraction 1-e^(-Rate*dt) of the remaining distance each step,
// so the result does not depend on how the time is sliced into ticks.
type ExponentialSmoother struct {
	Rate float64
}

// Step implements Smoother.
func (s ExponentialSmoother) Step(current, desired, dt float64) float64 {
	return utils.Lerp(current, desired, utils.ExpSmoothingFactor(s.Rate, dt))
}

// Halt implements Smoother. Exponential smoothing has no carried state.
func (s ExponentialSmoother) Halt() {}

// SpringSmoother follows the desired angle with a damped spring, carrying velocity between steps.
type SpringSmoother struct {
	// Frequency is the spring's angular frequency; Damping its damping ratio (1 is critical).
	Frequency float64
	Damping   float64

	velocity float64
}

// NewSpringSmoother returns a spring at rest.
func NewSpringSmoother(frequency, damping float64) *SpringSmoother {
	return &SpringSmoother{Frequency: frequency, Damping: damping}
}

// Step implements Smoother.
func (s *SpringSmoother) Step(current, desired, dt float64) float64 {
	if dt <= 0 {
		return current
	}
	// harmonica precomputes coefficients for a fixed step, and ticks are not evenly spaced.
	spring := harmonica.NewSpring(dt, s.Frequency, s.Damping)
	pos, vel := spring.Update(current, s.velocity, desired)
	s.velocity = vel
	return pos
}

// Halt implements Smoother.
func (s *SpringSmoother) Halt() {
	s.velocity = 0
}

// Velocity returns the spring's current angular velocity.
func (s *SpringSmoother) Velocity() float64 {
	return s.velocity
}
