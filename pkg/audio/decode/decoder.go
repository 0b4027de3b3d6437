// ABOUTME: Decoder interface definition and file dispatch
// ABOUTME: Opens MP3, FLAC and WAV files as mono int16 sources
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Source yields mono int16 samples at its native sample rate
type Source interface {
	// Read fills dst and returns the number of samples; io.EOF at end
	Read(dst []int16) (int, error)

	// SampleRate returns the native rate of the decoded stream
	SampleRate() int

	// Close releases decoder resources
	Close() error
}

// Supported lists the file extensions Open understands
var Supported = []string{".mp3", ".flac", ".wav"}

// Open picks a decoder by file extension
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var open func(f *os.File) (Source, error)
	switch ext {
	case ".mp3":
		open = func(f *os.File) (Source, error) { return NewMP3(f) }
	case ".flac":
		open = func(f *os.File) (Source, error) { return NewFLAC(f) }
	case ".wav":
		open = func(f *os.File) (Source, error) { return NewWAV(f) }
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: %s)", ext, strings.Join(Supported, ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	src, err := open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

// ReadAll drains a source into memory
func ReadAll(src Source) ([]int16, error) {
	var out []int16
	buf := make([]int16, 4096)
	for {
		n, err := src.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// scaleTo16 converts a sample of the given bit depth to 16 bits
func scaleTo16(s int, bits int) int16 {
	switch {
	case bits > 16:
		s >>= uint(bits - 16)
	case bits < 16 && bits > 0:
		s <<= uint(16 - bits)
	}
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	return int16(s)
}
