// ABOUTME: Capture and playback device interfaces
// ABOUTME: Common contract for the malgo, oto and file backends
package device

import (
	"errors"

	"github.com/micamp/micamp-go/pkg/audio"
)

// MinBufferBytes is the smallest chunk the engine will ever use
const MinBufferBytes = 1024

// DefaultPeriodMs is the device period used when none is configured
const DefaultPeriodMs = 20

var (
	// ErrClosed is returned by Read/Write after Close
	ErrClosed = errors.New("device closed")

	// ErrNotOpen is returned by Read/Write before Open
	ErrNotOpen = errors.New("device not open")
)

// Capture is a mono 16-bit input device
type Capture interface {
	// Open starts capturing at sampleRate with roughly bufferBytes per period
	Open(sampleRate, bufferBytes int) error

	// Read blocks until samples are available and returns how many were filled
	Read(samples []int16) (int, error)

	// MinBufferBytes returns the backend's minimum period size in bytes
	MinBufferBytes(sampleRate int) int

	// Close releases the device
	Close() error
}

// Playback is a mono 16-bit output device
type Playback interface {
	// Open starts playback at sampleRate with roughly bufferBytes per period
	Open(sampleRate, bufferBytes int) error

	// Write queues samples, blocking while the device buffer is full
	Write(samples []int16) (int, error)

	// MinBufferBytes returns the backend's minimum period size in bytes
	MinBufferBytes(sampleRate int) int

	// NativeSampleRate returns the device's preferred rate, or 0 if unknown
	NativeSampleRate() int

	// Close releases the device
	Close() error
}

// periodBytes converts a period length to a byte count, never below MinBufferBytes
func periodBytes(sampleRate, periodMs int) int {
	if periodMs <= 0 {
		periodMs = DefaultPeriodMs
	}
	n := sampleRate * periodMs / 1000 * audio.BytesPerSample
	if n < MinBufferBytes {
		n = MinBufferBytes
	}
	return n
}
