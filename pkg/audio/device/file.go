// ABOUTME: File-backed capture and playback devices
// ABOUTME: Feeds decoded audio files into the engine and writes its output to WAV
package device

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/micamp/micamp-go/pkg/audio/decode"
	"github.com/micamp/micamp-go/pkg/audio/encode"
	"github.com/micamp/micamp-go/pkg/audio/resample"
)

// FileCapture plays an audio file into the engine as if it were a microphone
type FileCapture struct {
	path     string
	realtime bool

	src        decode.Source
	resampler  *resample.Resampler
	sampleRate int
	in         []int16
	out        []int16
	pending    []int16
	eof        bool

	start     time.Time
	delivered int64
	closed    bool
	mu        sync.Mutex
}

// NewFileCapture creates a capture device for an mp3, flac or wav file.
// With realtime set, Read is paced to the sample rate.
func NewFileCapture(path string, realtime bool) *FileCapture {
	return &FileCapture{path: path, realtime: realtime}
}

// Open decodes the file header and prepares resampling to sampleRate
func (f *FileCapture) Open(sampleRate, bufferBytes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.src != nil {
		return fmt.Errorf("file capture already open")
	}

	src, err := decode.Open(f.path)
	if err != nil {
		return err
	}

	f.src = src
	f.sampleRate = sampleRate
	f.resampler = resample.New(src.SampleRate(), sampleRate, 1)
	f.in = make([]int16, bufferBytes/2)
	f.out = make([]int16, f.resampler.OutputCapacity(len(f.in)))
	f.pending = f.pending[:0]
	f.eof = false
	f.closed = false
	f.delivered = 0
	f.start = time.Now()

	log.Printf("File capture opened: %s (%dHz -> %dHz)", f.path, src.SampleRate(), sampleRate)
	return nil
}

// Read returns the next decoded samples, io.EOF at end of file
func (f *FileCapture) Read(samples []int16) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrClosed
	}
	if f.src == nil {
		return 0, ErrNotOpen
	}

	for len(f.pending) < len(samples) && !f.eof {
		if err := f.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(samples, f.pending)
	f.pending = f.pending[:copy(f.pending, f.pending[n:])]
	if n == 0 {
		return 0, io.EOF
	}

	if f.realtime {
		f.pace(n)
	}
	return n, nil
}

// fill decodes and resamples one buffer into pending
func (f *FileCapture) fill() error {
	n, err := f.src.Read(f.in)
	if err == io.EOF {
		f.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("file capture read failed: %w", err)
	}
	if n == 0 {
		return nil
	}

	if f.resampler.Passthrough() {
		f.pending = append(f.pending, f.in[:n]...)
		return nil
	}
	m := f.resampler.Resample(f.in[:n], f.out)
	f.pending = append(f.pending, f.out[:m]...)
	return nil
}

// pace sleeps until the wall clock catches up with the delivered audio
func (f *FileCapture) pace(n int) {
	f.delivered += int64(n)
	due := f.start.Add(time.Duration(f.delivered) * time.Second / time.Duration(f.sampleRate))
	if wait := time.Until(due); wait > 0 {
		time.Sleep(wait)
	}
}

// MinBufferBytes returns the smallest supported chunk size
func (f *FileCapture) MinBufferBytes(int) int {
	return MinBufferBytes
}

// Close releases the decoder
func (f *FileCapture) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	if f.src == nil {
		return nil
	}
	err := f.src.Close()
	f.src = nil
	return err
}

// WAVPlayback writes the processed stream to a WAV file
type WAVPlayback struct {
	path       string
	sampleRate int
	writer     *encode.WAVWriter
	mu         sync.Mutex
}

// NewWAVPlayback creates a playback device writing to path. A non-zero
// sampleRate is reported as the native rate.
func NewWAVPlayback(path string, sampleRate int) *WAVPlayback {
	return &WAVPlayback{path: path, sampleRate: sampleRate}
}

// Open creates the output file
func (w *WAVPlayback) Open(sampleRate, _ int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer != nil {
		return fmt.Errorf("wav playback already open")
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", w.path, err)
	}
	writer, err := encode.NewWAVWriter(f, sampleRate)
	if err != nil {
		f.Close()
		return err
	}
	w.writer = writer
	return nil
}

// Write appends samples to the file
func (w *WAVPlayback) Write(samples []int16) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return 0, ErrNotOpen
	}
	if err := w.writer.WriteSamples(samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// MinBufferBytes returns the smallest supported chunk size
func (w *WAVPlayback) MinBufferBytes(int) int {
	return MinBufferBytes
}

// NativeSampleRate returns the rate given at construction
func (w *WAVPlayback) NativeSampleRate() int {
	return w.sampleRate
}

// Seconds returns how much audio has been written
func (w *WAVPlayback) Seconds() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return 0
	}
	return w.writer.Seconds()
}

// Close finalizes the header and closes the file
func (w *WAVPlayback) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return nil
	}
	err := w.writer.Close()
	w.writer = nil
	return err
}
