// ABOUTME: Peak envelope follower
// ABOUTME: One-pole smoothing of |x| with separate attack and release times
package dsp

import "math"

// EnvelopeFollower tracks the amplitude of a signal
type EnvelopeFollower struct {
	attack  float32
	release float32
	env     float32
}

// NewEnvelopeFollower creates a follower with attack/release in milliseconds
func NewEnvelopeFollower(sampleRate int, attackMs, releaseMs float64) *EnvelopeFollower {
	return &EnvelopeFollower{
		attack:  timeCoef(sampleRate, attackMs),
		release: timeCoef(sampleRate, releaseMs),
	}
}

// timeCoef returns exp(-1 / (t * fs))
func timeCoef(sampleRate int, ms float64) float32 {
	t := ms / 1000
	if t <= 0 || sampleRate <= 0 {
		return 0
	}
	return float32(math.Exp(-1 / (t * float64(sampleRate))))
}

// Process updates the envelope with one sample and returns it
func (e *EnvelopeFollower) Process(x float32) float32 {
	if x < 0 {
		x = -x
	}
	coef := e.release
	if x > e.env {
		coef = e.attack
	}
	e.env = coef*e.env + (1-coef)*x
	return e.env
}

// Value returns the current envelope
func (e *EnvelopeFollower) Value() float32 {
	return e.env
}

// LinearToDB converts an amplitude to decibels, floored at -120 dB
func LinearToDB(x float32) float32 {
	if x <= 1e-6 {
		return -120
	}
	return float32(20 * math.Log10(float64(x)))
}

// DBToLinear converts decibels to an amplitude
func DBToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}
