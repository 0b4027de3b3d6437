// ABOUTME: LFO-driven modulation effects
// ABOUTME: Tremolo, chorus, flanger and a six-stage phaser
package effects

import "github.com/micamp/micamp-go/pkg/dsp"

// TremoloFx modulates amplitude with a sine LFO
type TremoloFx struct {
	lfo *dsp.LFO
}

// NewTremolo creates a tremolo
func NewTremolo(sampleRate int) *TremoloFx {
	return &TremoloFx{lfo: dsp.NewLFO(sampleRate)}
}

// Process applies gain 1 - depth*(sin+1)/2 at rate Hz
func (t *TremoloFx) Process(x, depth, rate float32) float32 {
	return x * (1 - depth*t.lfo.Unipolar(rate))
}

// modDelay is the shared modulated delay behind chorus and flanger
type modDelay struct {
	line       *dsp.DelayLine
	lfo        *dsp.LFO
	sampleRate float32
	baseDelay  float32
}

func newModDelay(sampleRate int, capacityMs, baseMs int) modDelay {
	return modDelay{
		line:       dsp.NewDelayLine(capacityMs * sampleRate / 1000),
		lfo:        dsp.NewLFO(sampleRate),
		sampleRate: float32(sampleRate),
		baseDelay:  float32(baseMs * sampleRate / 1000),
	}
}

// tap advances the LFO and reads the modulated delay. depthMs is clamped
// to half the line; the total delay is clamped to the line.
func (m *modDelay) tap(rate, depthMs float32) float32 {
	capacity := float32(m.line.Cap())
	depth := depthMs * m.sampleRate / 1000
	if depth < 0 {
		depth = 0
	} else if depth > capacity/2 {
		depth = capacity / 2
	}

	delay := m.baseDelay + m.lfo.Next(rate)*depth
	if delay < 0 {
		delay = 0
	} else if delay > capacity-1 {
		delay = capacity - 1
	}
	return m.line.TapFrac(delay)
}

// ChorusFx is a 30ms modulated delay around a 15ms center
type ChorusFx struct {
	modDelay
}

// NewChorus creates a chorus
func NewChorus(sampleRate int) *ChorusFx {
	return &ChorusFx{newModDelay(sampleRate, 30, 15)}
}

// Process applies chorus; depth is in milliseconds
func (c *ChorusFx) Process(x, rate, depth, mix float32) float32 {
	delayed := c.tap(rate, depth)
	c.line.Push(x)
	return x*(1-mix) + delayed*mix
}

// FlangerFx is a 15ms modulated delay around a 3ms center, with feedback
type FlangerFx struct {
	modDelay
}

// NewFlanger creates a flanger
func NewFlanger(sampleRate int) *FlangerFx {
	return &FlangerFx{newModDelay(sampleRate, 15, 3)}
}

// Process applies flanging; depth is in milliseconds
func (f *FlangerFx) Process(x, rate, depth, mix, feedback float32) float32 {
	delayed := f.tap(rate, depth)
	f.line.Push(x + delayed*feedback)
	return x*(1-mix) + delayed*mix
}

const phaserStages = 6

// PhaserFx sweeps six first-order all-pass stages with feedback
type PhaserFx struct {
	stages [phaserStages]dsp.FirstOrderAllPass
	lfo    *dsp.LFO
	last   float32
}

// NewPhaser creates a phaser
func NewPhaser(sampleRate int) *PhaserFx {
	return &PhaserFx{lfo: dsp.NewLFO(sampleRate)}
}

// Process applies phasing
func (p *PhaserFx) Process(x, rate, depth, feedback, mix float32) float32 {
	a := (p.lfo.Unipolar(rate) - 0.5) * 1.8 * depth

	in := x + p.last*feedback
	if in > 2 {
		in = 2
	} else if in < -2 {
		in = -2
	}

	y := in
	for i := range p.stages {
		y = p.stages[i].Process(y, a)
	}
	p.last = y

	return x*(1-mix) + y*mix
}
