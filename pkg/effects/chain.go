// ABOUTME: Reorderable effect chain
// ABOUTME: Owns one processor per kind and runs them in snapshot order per sample
package effects

import "github.com/micamp/micamp-go/pkg/audio"

// Chain holds one instance of every processor. Processor state lives for
// the chain's lifetime and is never reset by enabling or disabling.
type Chain struct {
	sampleRate int

	noiseGate  *NoiseGateFx
	compressor *CompressorFx
	autoWah    *AutoWahFx
	bitcrusher *BitcrusherFx
	eq         *EqFx
	phaser     *PhaserFx
	flanger    *FlangerFx
	tremolo    *TremoloFx
	chorus     *ChorusFx
	delay      *DelayFx
	reverb     *ReverbFx
	limiter    *LimiterFx
}

// NewChain allocates every processor for sampleRate
func NewChain(sampleRate int) *Chain {
	return &Chain{
		sampleRate: sampleRate,
		noiseGate:  NewNoiseGate(sampleRate),
		compressor: NewCompressor(sampleRate),
		autoWah:    NewAutoWah(sampleRate),
		bitcrusher: NewBitcrusher(),
		eq:         NewEq(sampleRate),
		phaser:     NewPhaser(sampleRate),
		flanger:    NewFlanger(sampleRate),
		tremolo:    NewTremolo(sampleRate),
		chorus:     NewChorus(sampleRate),
		delay:      NewDelay(sampleRate),
		reverb:     NewReverb(sampleRate),
		limiter:    NewLimiter(sampleRate),
	}
}

// SampleRate returns the rate the chain was built for
func (c *Chain) SampleRate() int {
	return c.sampleRate
}

// Delay exposes the delay processor
func (c *Chain) Delay() *DelayFx {
	return c.delay
}

// Prepare applies per-chunk work before samples are processed
func (c *Chain) Prepare(s *Snapshot) {
	if s.Enabled[Eq] {
		c.eq.Update(s.Params[Eq])
	}
}

// Process runs one normalized sample through the chain in s.Order, applies
// master volume and clamps the result to [-1, 1]
func (c *Chain) Process(x float32, s *Snapshot) float32 {
	for _, k := range s.Order {
		if !s.Enabled[k] {
			if k == Delay {
				c.delay.Feed(x)
			}
			continue
		}
		p := &s.Params[k]
		switch k {
		case NoiseGate:
			x = c.noiseGate.Process(x, p[0])
		case Compressor:
			x = c.compressor.Process(x, p[0], p[1], p[2])
		case AutoWah:
			x = c.autoWah.Process(x, p[0], p[1], p[2], p[3])
		case Bitcrusher:
			x = c.bitcrusher.Process(x, p[0], p[1], p[2])
		case Eq:
			x = c.eq.Process(x)
		case Distortion:
			x = Distort(x, p[0])
		case Phaser:
			x = c.phaser.Process(x, p[0], p[1], p[3], p[2])
		case Flanger:
			x = c.flanger.Process(x, p[0], p[1], p[2], p[3])
		case Tremolo:
			x = c.tremolo.Process(x, p[0], p[1])
		case Chorus:
			x = c.chorus.Process(x, p[0], p[1], p[2])
		case Delay:
			x = c.delay.Process(x, p[0], p[1], p[2])
		case Reverb:
			x = c.reverb.Process(x, p[0], p[1])
		case Limiter:
			x = c.limiter.Process(x, p[0])
		}
	}
	return audio.Clamp(x * s.Volume)
}

// ProcessBlock converts, processes and quantizes a chunk in place
func (c *Chain) ProcessBlock(samples []int16, s *Snapshot) {
	c.Prepare(s)
	for i, v := range samples {
		samples[i] = audio.Denormalize(c.Process(audio.Normalize(v), s))
	}
}
