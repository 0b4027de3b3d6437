// ABOUTME: DSP primitive package
// ABOUTME: Filters, envelope followers, delay lines and oscillators used by the effects
// Package dsp provides the per-sample building blocks the effect processors
// are assembled from.
//
// Every primitive owns its state, operates on float32 samples and never
// allocates after construction, so it is safe to call from the audio loop.
// None of them are safe for concurrent use.
package dsp
