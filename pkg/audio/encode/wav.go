// ABOUTME: Streaming WAV file writer backed by go-audio/wav
// ABOUTME: Appends mono 16-bit chunks and tracks payload length for progress
package encode

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVHeaderSize is the size of the canonical PCM header
const WAVHeaderSize = 44

// wavPCMFormat is the WAVE format tag for linear PCM
const wavPCMFormat = 1

// ErrWriterClosed is returned when writing to a finalized WAV
var ErrWriterClosed = errors.New("wav writer closed")

// WAVWriter streams mono 16-bit PCM into a seekable sink
type WAVWriter struct {
	w          io.WriteSeeker
	enc        *wav.Encoder
	sampleRate int
	buf        *audio.IntBuffer
	written    int64
	closed     bool
}

// NewWAVWriter writes a header with zero lengths and returns a writer
// positioned at the start of the data chunk
func NewWAVWriter(w io.WriteSeeker, sampleRate int) (*WAVWriter, error) {
	ww := &WAVWriter{
		w:          w,
		enc:        wav.NewEncoder(w, sampleRate, 16, 1, wavPCMFormat),
		sampleRate: sampleRate,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}

	// An empty write emits the RIFF, fmt and data headers up front so an
	// empty take still finalizes to a valid 44-byte file
	if err := ww.enc.Write(ww.buf); err != nil {
		return nil, fmt.Errorf("failed to write wav header: %w", err)
	}
	return ww, nil
}

// WriteSamples appends samples to the data chunk
func (ww *WAVWriter) WriteSamples(samples []int16) error {
	if ww.closed {
		return ErrWriterClosed
	}

	data := ww.buf.Data[:0]
	for _, s := range samples {
		data = append(data, int(s))
	}
	ww.buf.Data = data

	if err := ww.enc.Write(ww.buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	ww.written += int64(len(samples)) * 2
	return nil
}

// PayloadBytes returns the number of data bytes written so far
func (ww *WAVWriter) PayloadBytes() int64 {
	return ww.written
}

// Seconds returns the written audio length in whole seconds
func (ww *WAVWriter) Seconds() int64 {
	if ww.sampleRate <= 0 {
		return 0
	}
	return ww.written / int64(ww.sampleRate*2)
}

// Finalize patches the RIFF and data sizes. The sink is left open.
func (ww *WAVWriter) Finalize() error {
	if ww.closed {
		return nil
	}
	ww.closed = true

	if err := ww.enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav header: %w", err)
	}
	return nil
}

// Close finalizes the header and closes the sink if it is an io.Closer
func (ww *WAVWriter) Close() error {
	err := ww.Finalize()
	if c, ok := ww.w.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
