// ABOUTME: Filter-based effects
// ABOUTME: Six-band peaking equalizer and envelope-controlled auto-wah
package effects

import (
	"github.com/micamp/micamp-go/pkg/dsp"
)

// EqQ is the bandwidth of every equalizer band
const EqQ = 1.4

// EqFx is a bank of six peaking biquads in series
type EqFx struct {
	sampleRate int
	bands      [MaxParams]*dsp.Biquad
	gains      Params
	tuned      bool
}

// NewEq creates a flat equalizer
func NewEq(sampleRate int) *EqFx {
	e := &EqFx{sampleRate: sampleRate}
	for i := range e.bands {
		e.bands[i] = dsp.NewBiquad()
		e.bands[i].SetPeaking(sampleRate, EqFrequencies[i], 1.0, 0)
	}
	return e
}

// Update retunes the bands to the given gains in dB. Coefficients are only
// recomputed when a gain changes; filter history is kept.
func (e *EqFx) Update(gains Params) {
	if e.tuned && gains == e.gains {
		return
	}
	for i, b := range e.bands {
		b.SetPeaking(e.sampleRate, EqFrequencies[i], EqQ, gains[i])
	}
	e.gains = gains
	e.tuned = true
}

// Process runs one sample through all bands
func (e *EqFx) Process(x float32) float32 {
	for _, b := range e.bands {
		x = b.Process(x)
	}
	return x
}

const (
	wahMinFreq = 200
	wahMaxFreq = 3000
)

// AutoWahFx is a band-pass whose cutoff follows the input envelope
type AutoWahFx struct {
	sampleRate int
	env        *dsp.EnvelopeFollower
	svf        dsp.SVF
}

// NewAutoWah creates an auto-wah with 10ms attack and 50ms release
func NewAutoWah(sampleRate int) *AutoWahFx {
	return &AutoWahFx{
		sampleRate: sampleRate,
		env:        dsp.NewEnvelopeFollower(sampleRate, 10, 50),
	}
}

// Process applies the wah. rate acts as envelope sensitivity.
func (w *AutoWahFx) Process(x, depth, rate, mix, resonance float32) float32 {
	f := dsp.Tune(w.sampleRate, wahCutoff(w.env.Process(x), depth, rate))
	q := 0.1 + (1-resonance)*0.5
	band := w.svf.Process(x, f, q)

	return x*(1-mix) + band*mix*3
}

// wahCutoff maps the envelope to a cutoff in [wahMinFreq, wahMaxFreq]
func wahCutoff(env, depth, rate float32) float32 {
	drive := env * rate * 10
	if drive > 1 {
		drive = 1
	}
	cutoff := wahMinFreq + (wahMaxFreq-wahMinFreq)*depth*drive
	if cutoff < wahMinFreq {
		cutoff = wahMinFreq
	} else if cutoff > wahMaxFreq {
		cutoff = wahMaxFreq
	}
	return cutoff
}
