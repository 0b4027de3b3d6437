// ABOUTME: Time-based effects
// ABOUTME: Feedback echo delay and a Schroeder reverb
package effects

import (
	"math"

	"github.com/micamp/micamp-go/pkg/dsp"
)

// MaxDelaySeconds is the delay line capacity
const MaxDelaySeconds = 2

// DelayFx is a feedback echo
type DelayFx struct {
	line       *dsp.DelayLine
	sampleRate float32
}

// NewDelay creates a delay with a two second line
func NewDelay(sampleRate int) *DelayFx {
	return &DelayFx{
		line:       dsp.NewDelayLine(MaxDelaySeconds * sampleRate),
		sampleRate: float32(sampleRate),
	}
}

// DelaySamples converts a time in seconds to a sample count within the line
func (d *DelayFx) DelaySamples(seconds float32) int {
	n := int(math.Round(float64(seconds * d.sampleRate)))
	if n < 0 {
		return 0
	}
	if n > d.line.Cap()-1 {
		return d.line.Cap() - 1
	}
	return n
}

// Process echoes x after time seconds
func (d *DelayFx) Process(x, time, feedback, mix float32) float32 {
	delayed := d.line.Tap(d.DelaySamples(time))
	d.line.Push(x + delayed*feedback)
	return x + delayed*mix
}

// Feed records x without producing an echo. A bypassed delay keeps its
// line current so re-enabling it does not replay stale audio.
func (d *DelayFx) Feed(x float32) {
	d.line.Push(x)
}

// Line exposes the underlying buffer
func (d *DelayFx) Line() *dsp.DelayLine {
	return d.line
}

// Comb and all-pass lengths tuned for 44.1kHz
var (
	reverbCombLengths    = [4]int{1557, 1617, 1491, 1422}
	reverbAllPassLengths = [2]int{225, 341}
)

// ReverbFx is four parallel combs into two series all-passes
type ReverbFx struct {
	combs   [4]*dsp.Comb
	allpass [2]*dsp.SchroederAllPass
}

// NewReverb scales the tuning lengths to sampleRate
func NewReverb(sampleRate int) *ReverbFx {
	r := &ReverbFx{}
	for i, n := range reverbCombLengths {
		r.combs[i] = dsp.NewComb(n * sampleRate / 44100)
	}
	for i, n := range reverbAllPassLengths {
		r.allpass[i] = dsp.NewSchroederAllPass(n*sampleRate/44100, 0.5)
	}
	return r
}

// Process reverberates one sample. size 0..1 maps to comb feedback 0.7..0.98.
func (r *ReverbFx) Process(x, mix, size float32) float32 {
	fb := 0.7 + 0.28*size

	var wet float32
	for _, c := range r.combs {
		c.SetFeedback(fb)
		wet += c.Process(x)
	}
	for _, a := range r.allpass {
		wet = a.Process(wet)
	}

	return x*(1-mix) + wet*mix*0.5
}
