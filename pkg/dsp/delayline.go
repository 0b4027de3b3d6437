// ABOUTME: Circular delay buffer
// ABOUTME: Integer and linearly interpolated taps relative to the write cursor
package dsp

// DelayLine is a fixed-capacity circular buffer. The write cursor and every
// read index stay in [0, Cap()).
type DelayLine struct {
	buf   []float32
	write int
}

// NewDelayLine allocates a line holding capacity samples
func NewDelayLine(capacity int) *DelayLine {
	if capacity < 1 {
		capacity = 1
	}
	return &DelayLine{buf: make([]float32, capacity)}
}

// Cap returns the capacity in samples
func (d *DelayLine) Cap() int {
	return len(d.buf)
}

// WriteIndex returns the current write cursor
func (d *DelayLine) WriteIndex() int {
	return d.write
}

// Tap reads the sample written delay samples before the cursor.
// delay is clamped to [0, Cap()-1].
func (d *DelayLine) Tap(delay int) float32 {
	return d.buf[d.index(delay)]
}

func (d *DelayLine) index(delay int) int {
	n := len(d.buf)
	if delay < 0 {
		delay = 0
	} else if delay >= n {
		delay = n - 1
	}
	i := d.write - delay
	if i < 0 {
		i += n
	}
	return i
}

// TapFrac reads a fractional delay with linear interpolation between
// floor(pos) and the following slot.
func (d *DelayLine) TapFrac(delay float32) float32 {
	n := len(d.buf)
	pos := float32(d.write) - delay
	for pos < 0 {
		pos += float32(n)
	}
	for pos >= float32(n) {
		pos -= float32(n)
	}
	i := int(pos)
	if i >= n {
		i = n - 1
	}
	frac := pos - float32(i)
	next := i + 1
	if next >= n {
		next = 0
	}
	return d.buf[i]*(1-frac) + d.buf[next]*frac
}

// Push stores x at the cursor and advances it
func (d *DelayLine) Push(x float32) {
	d.buf[d.write] = x
	d.write++
	if d.write >= len(d.buf) {
		d.write = 0
	}
}

// Reset zeroes the buffer and rewinds the cursor
func (d *DelayLine) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.write = 0
}
