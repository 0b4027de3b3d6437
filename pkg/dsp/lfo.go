// ABOUTME: Sine low-frequency oscillator
// ABOUTME: Float64 phase accumulator so long sessions do not drift
package dsp

import "math"

const twoPi = 2 * math.Pi

// LFO is a sine oscillator whose rate may change every sample
type LFO struct {
	sampleRate float64
	phase      float64
}

// NewLFO creates an oscillator for the given sample rate
func NewLFO(sampleRate int) *LFO {
	return &LFO{sampleRate: float64(sampleRate)}
}

// Next advances the phase by one sample at rateHz and returns sin(phase)
func (l *LFO) Next(rateHz float32) float32 {
	l.phase = math.Mod(l.phase+twoPi*float64(rateHz)/l.sampleRate, twoPi)
	if l.phase < 0 {
		l.phase += twoPi
		if l.phase >= twoPi {
			l.phase = 0
		}
	}
	return float32(math.Sin(l.phase))
}

// Unipolar advances like Next but maps the output to [0, 1]
func (l *LFO) Unipolar(rateHz float32) float32 {
	return (l.Next(rateHz) + 1) / 2
}

// Phase returns the current phase in radians
func (l *LFO) Phase() float64 {
	return l.phase
}
