// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts streamed audio between sample rates
// Package resample provides streaming sample rate conversion.
//
// Linear interpolation over a virtual stream that carries the last frame of
// the previous call, so consecutive buffers join without clicks.
//
// Example:
//
//	r := resample.New(44100, 48000, 1)
//	out := make([]int16, r.OutputCapacity(len(in)))
//	n := r.Resample(in, out)
package resample
