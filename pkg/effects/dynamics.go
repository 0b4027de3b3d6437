// ABOUTME: Dynamics processors
// ABOUTME: Noise gate, compressor and limiter driven by envelope followers
package effects

import "github.com/micamp/micamp-go/pkg/dsp"

// NoiseGateFx mutes the signal while its envelope is below the threshold
type NoiseGateFx struct {
	env *dsp.EnvelopeFollower
}

// NewNoiseGate creates a gate with 10ms attack and 100ms release
func NewNoiseGate(sampleRate int) *NoiseGateFx {
	return &NoiseGateFx{env: dsp.NewEnvelopeFollower(sampleRate, 10, 100)}
}

// Process gates one sample. The gain is either 0 or 1.
func (g *NoiseGateFx) Process(x, threshold float32) float32 {
	if g.env.Process(x) < threshold {
		return 0
	}
	return x
}

// CompressorFx reduces gain above a threshold
type CompressorFx struct {
	env *dsp.EnvelopeFollower
}

// NewCompressor creates a compressor with 10ms attack and 100ms release
func NewCompressor(sampleRate int) *CompressorFx {
	return &CompressorFx{env: dsp.NewEnvelopeFollower(sampleRate, 10, 100)}
}

// Process compresses one sample. threshold is linear, ratio is N:1 and
// makeup is a linear gain.
func (c *CompressorFx) Process(x, threshold, ratio, makeup float32) float32 {
	envDB := dsp.LinearToDB(c.env.Process(x))
	threshDB := dsp.LinearToDB(threshold)
	if ratio < 1 {
		ratio = 1
	}

	gain := float32(1)
	if envDB > threshDB {
		gain = dsp.DBToLinear((threshDB - envDB) * (1 - 1/ratio))
	}
	return x * gain * makeup
}

// LimiterFx scales the signal so its envelope stays at the threshold
type LimiterFx struct {
	env *dsp.EnvelopeFollower
}

// NewLimiter creates a limiter with 1ms attack and 50ms release
func NewLimiter(sampleRate int) *LimiterFx {
	return &LimiterFx{env: dsp.NewEnvelopeFollower(sampleRate, 1, 50)}
}

// Process limits one sample
func (l *LimiterFx) Process(x, threshold float32) float32 {
	env := l.env.Process(x)
	if env > threshold {
		return x * threshold / env
	}
	return x
}
