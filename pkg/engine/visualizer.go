// ABOUTME: Waveform decimation for the visualizer feed
// ABOUTME: Reduces a processed chunk to a fixed number of normalized points
package engine

import "github.com/micamp/micamp-go/pkg/audio"

const (
	// VisualizerPoints is the length of every visualizer frame
	VisualizerPoints = 100

	// VisualizerStride delivers one frame per this many chunks
	VisualizerStride = 2
)

// Decimate samples chunk at VisualizerPoints evenly spaced indices.
// An empty chunk yields a silent frame.
func Decimate(chunk []int16) []float32 {
	frame := make([]float32, VisualizerPoints)
	n := len(chunk)
	if n == 0 {
		return frame
	}
	for j := range frame {
		idx := j * n / VisualizerPoints
		if idx >= n {
			idx = n - 1
		}
		frame[j] = audio.Normalize(chunk[idx])
	}
	return frame
}
