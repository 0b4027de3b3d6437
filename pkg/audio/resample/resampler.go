// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Streams int16 chunks with interpolation continuing across chunk boundaries
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
	lastSample []int16 // one sample per channel
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels < 1 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastSample: make([]int16, channels),
	}
}

// Passthrough reports whether input and output rates match
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// sample returns frame i of the virtual stream [lastSample, input...]
func (r *Resampler) sample(input []int16, i, ch int) int16 {
	if i == 0 {
		return r.lastSample[ch]
	}
	return input[(i-1)*r.channels+ch]
}

// Resample converts input samples to output sample rate using linear interpolation.
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate, sized with OutputCapacity
// The last input frame is carried into the next call so chunk edges are
// interpolated like any other pair.
func (r *Resampler) Resample(input []int16, output []int16) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	if !r.primed {
		copy(r.lastSample, input[:r.channels])
		r.primed = true
	}

	outputFrames := len(output) / r.channels
	outIdx := 0

	for outIdx < outputFrames {
		idx := int(r.position)
		if idx >= inputFrames {
			break
		}
		frac := r.position - float64(idx)

		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(r.sample(input, idx, ch))
			s2 := float64(r.sample(input, idx+1, ch))
			output[outIdx*r.channels+ch] = int16(math.Round(s1*(1.0-frac) + s2*frac))
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional position relative to the new last frame
	r.position -= float64(inputFrames)
	if r.position < 0 {
		r.position = 0
	}
	copy(r.lastSample, input[(inputFrames-1)*r.channels:inputFrames*r.channels])

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
	r.primed = false
	for i := range r.lastSample {
		r.lastSample[i] = 0
	}
}

// OutputCapacity returns a buffer size that always holds the output for
// inputSamples of input
func (r *Resampler) OutputCapacity(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	return (int(float64(inputFrames)/r.ratio) + 2) * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}
