// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and int16/float32 sample conversion functions
// Package audio provides fundamental audio types for the mono 16-bit engine.
//
// Samples travel as int16 on the wire and as float32 in [-1, 1] inside the
// effect chain:
//
//	x := audio.Normalize(sample)    // s / 32768
//	y := process(x)
//	out := audio.Denormalize(y)     // round(y * 32768), clamped
//
// The pair is exact: Denormalize(Normalize(s)) == s for every int16.
package audio
