// ABOUTME: Chamberlin state-variable filter
// ABOUTME: Simultaneous low, band and high outputs with per-sample retuning
package dsp

import "math"

// SVF is a Chamberlin state-variable filter
type SVF struct {
	low, band, high float32
}

// Tune returns the frequency coefficient 2*sin(pi*cutoff/fs)
func Tune(sampleRate int, cutoff float32) float32 {
	return float32(2 * math.Sin(math.Pi*float64(cutoff)/float64(sampleRate)))
}

// Process runs one step with frequency coefficient f and damping q and
// returns the band-pass output
func (s *SVF) Process(x, f, q float32) float32 {
	s.low += f * s.band
	s.high = x - s.low - q*s.band
	s.band += f * s.high
	return s.band
}

// Low returns the last low-pass output
func (s *SVF) Low() float32 {
	return s.low
}

// High returns the last high-pass output
func (s *SVF) High() float32 {
	return s.high
}
