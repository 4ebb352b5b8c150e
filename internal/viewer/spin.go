package viewer

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Spin eases the scene's rotation speed between stopped and full speed on a
// critically damped spring.
type Spin struct {
	spring harmonica.Spring
	scale  float64
	vel    float64
	target float64
}

// NewSpin creates a spin stepped fps times a second, at rest at full speed
// when on is set, stopped otherwise.
func NewSpin(fps int, on bool) *Spin {
	s := &Spin{
		// Frequency 4, damping 1: settles in about a second, no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
	if on {
		s.scale, s.target = 1, 1
	}
	return s
}

// Toggle starts easing toward the other state.
func (s *Spin) Toggle() {
	s.target = 1 - s.target
}

// On reports whether the spin is heading toward full speed.
func (s *Spin) On() bool {
	return s.target == 1
}

// Step advances the spring one frame and returns the new scale.
func (s *Spin) Step() float64 {
	if s.Settled() {
		s.scale, s.vel = s.target, 0
		return s.scale
	}
	s.scale, s.vel = s.spring.Update(s.scale, s.vel, s.target)
	return s.scale
}

// Scale returns the current speed multiplier.
func (s *Spin) Scale() float64 {
	return s.scale
}

// Settled reports whether the spring has come to rest at its target.
func (s *Spin) Settled() bool {
	return math.Abs(s.scale-s.target) < 1e-3 && math.Abs(s.vel) < 1e-3
}
