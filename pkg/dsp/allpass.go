// ABOUTME: All-pass and comb filters
// ABOUTME: First-order all-pass for phasing, Schroeder all-pass and feedback comb for reverb
package dsp

// FirstOrderAllPass implements y[n] = a*x[n] + x[n-1] - a*y[n-1]
type FirstOrderAllPass struct {
	x1, y1 float32
}

// Process filters one sample with coefficient a
func (f *FirstOrderAllPass) Process(x, a float32) float32 {
	y := a*x + f.x1 - a*f.y1
	f.x1 = x
	f.y1 = y
	return y
}

// Comb is a feedback comb filter
type Comb struct {
	buf []float32
	pos int
	fb  float32
}

// NewComb creates a comb filter with the given delay in samples
func NewComb(delay int) *Comb {
	if delay < 1 {
		delay = 1
	}
	return &Comb{buf: make([]float32, delay)}
}

// SetFeedback sets the loop gain
func (c *Comb) SetFeedback(fb float32) {
	c.fb = fb
}

// Len returns the delay length in samples
func (c *Comb) Len() int {
	return len(c.buf)
}

// Process returns the delayed sample and feeds the input back into the loop
func (c *Comb) Process(in float32) float32 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

// SchroederAllPass is a delay-based all-pass diffuser
type SchroederAllPass struct {
	buf []float32
	pos int
	fb  float32
}

// NewSchroederAllPass creates an all-pass with the given delay and coefficient
func NewSchroederAllPass(delay int, fb float32) *SchroederAllPass {
	if delay < 1 {
		delay = 1
	}
	return &SchroederAllPass{buf: make([]float32, delay), fb: fb}
}

// Len returns the delay length in samples
func (a *SchroederAllPass) Len() int {
	return len(a.buf)
}

// Process filters one sample
func (a *SchroederAllPass) Process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
