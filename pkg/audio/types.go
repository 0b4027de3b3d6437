// ABOUTME: Audio type definitions
// ABOUTME: Defines the mono 16-bit stream format and sample conversions
package audio

import "math"

const (
	// 16-bit sample range
	MaxInt16 = 32767
	MinInt16 = -32768

	// Scale used for normalize/denormalize (2^15)
	Scale = 32768.0

	// DefaultSampleRate is used when the output device reports no native rate
	DefaultSampleRate = 48000

	// BytesPerSample for 16-bit PCM
	BytesPerSample = 2
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Mono16 returns the engine's wire format at the given rate
func Mono16(sampleRate int) Format {
	return Format{
		Codec:      "pcm",
		SampleRate: sampleRate,
		Channels:   1,
		BitDepth:   16,
	}
}

// BytesPerSecond returns the PCM byte rate for the format
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BitDepth / 8
}

// Normalize converts an int16 sample to float32 in [-1, 1)
func Normalize(s int16) float32 {
	return float32(s) / Scale
}

// Denormalize converts a float32 sample back to int16, rounding and clamping.
// Denormalize(Normalize(s)) == s for every int16 s.
func Denormalize(x float32) int16 {
	v := math.Round(float64(x) * Scale)
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}

// Clamp limits x to [-1, 1]
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// DownmixInt16 averages interleaved frames into a mono slice.
// dst must hold len(src)/channels samples.
func DownmixInt16(dst, src []int16, channels int) int {
	if channels <= 1 {
		return copy(dst, src)
	}
	frames := len(src) / channels
	if frames > len(dst) {
		frames = len(dst)
	}
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += int(src[i*channels+ch])
		}
		dst[i] = int16(sum / channels)
	}
	return frames
}
