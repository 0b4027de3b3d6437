// ABOUTME: Second-order IIR filter section
// ABOUTME: Peaking EQ coefficients from the RBJ audio EQ cookbook, direct form I
package dsp

import "math"

// MaxFreqRatio keeps filter center frequencies safely below Nyquist
const MaxFreqRatio = 0.45

// Biquad is a direct form I second-order section with a0 normalized to 1
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

// NewBiquad returns a pass-through section
func NewBiquad() *Biquad {
	return &Biquad{b0: 1}
}

// SetPeaking computes peaking EQ coefficients. State is preserved so the
// filter can be retuned while running.
func (b *Biquad) SetPeaking(sampleRate int, freq, q, gainDB float32) {
	fs := float64(sampleRate)
	f := float64(freq)
	if f > fs*MaxFreqRatio {
		f = fs * MaxFreqRatio
	}
	if q <= 0 {
		q = 0.0001
	}

	w0 := 2 * math.Pi * f / fs
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * float64(q))
	a := math.Pow(10, float64(gainDB)/40)

	b0 := 1 + alpha*a
	b1 := -2 * cosW0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosW0
	a2 := 1 - alpha/a

	b.b0 = float32(b0 / a0)
	b.b1 = float32(b1 / a0)
	b.b2 = float32(b2 / a0)
	b.a1 = float32(a1 / a0)
	b.a2 = float32(a2 / a0)
}

// Process filters one sample
func (b *Biquad) Process(x float32) float32 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2 = b.x1
	b.x1 = x
	b.y2 = b.y1
	b.y1 = y
	return y
}

// Reset clears the filter history
func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}
