// ABOUTME: Nonlinear effects
// ABOUTME: Soft-clip distortion and sample-and-hold bitcrusher
package effects

import "math"

// Distort soft-clips x with drive 1 + amount*20. Amounts at or below 0.01
// pass the signal through untouched.
func Distort(x, amount float32) float32 {
	if amount <= 0.01 {
		return x
	}
	d := x * (1 + amount*20)
	if d < 0 {
		return d / (1 - d)
	}
	return d / (1 + d)
}

// BitcrusherFx reduces sample rate and bit depth
type BitcrusherFx struct {
	counter float32
	hold    float32

	depth  float32
	levels float32
}

// NewBitcrusher creates a bitcrusher
func NewBitcrusher() *BitcrusherFx {
	return &BitcrusherFx{depth: -1}
}

// Process crushes one sample. depth 0..1 maps to 16..1 bits; rate 0..1
// maps to holding each sample for 1..50 input samples.
func (b *BitcrusherFx) Process(x, depth, rate, mix float32) float32 {
	step := 1 + rate*49
	b.counter++
	if b.counter >= step {
		b.counter -= step
		b.hold = x
	}

	if depth != b.depth {
		b.depth = depth
		b.levels = float32(math.Pow(2, float64(16-depth*15)))
	}
	q := float32(math.Round(float64(b.hold*b.levels))) / b.levels

	return x*(1-mix) + q*mix
}
