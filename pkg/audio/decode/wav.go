// ABOUTME: WAV audio decoder
// ABOUTME: Decodes PCM WAV files to mono int16 samples via go-audio/wav
package decode

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder decodes PCM WAV audio
type WAVDecoder struct {
	decoder  *wav.Decoder
	format   *goaudio.Format
	closer   io.Closer
	channels int
	bits     int
	buf      *goaudio.IntBuffer
	eof      bool
}

// NewWAV creates a decoder reading from r. If r is an io.Closer it is
// closed with the decoder.
func NewWAV(r io.ReadSeeker) (*WAVDecoder, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file")
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to locate wav data: %w", err)
	}

	format := decoder.Format()
	d := &WAVDecoder{
		decoder:  decoder,
		format:   format,
		channels: format.NumChannels,
		bits:     int(decoder.SampleBitDepth()),
	}
	if d.channels < 1 {
		return nil, fmt.Errorf("wav file has no channels")
	}
	if d.bits == 0 {
		return nil, fmt.Errorf("unknown bit depth for wav file")
	}
	if c, ok := r.(io.Closer); ok {
		d.closer = c
	}
	return d, nil
}

// SampleRate returns the file's sample rate
func (d *WAVDecoder) SampleRate() int {
	return d.format.SampleRate
}

// Read decodes up to len(dst) mono samples
func (d *WAVDecoder) Read(dst []int16) (int, error) {
	if d.eof {
		return 0, io.EOF
	}

	need := len(dst) * d.channels
	if d.buf == nil || len(d.buf.Data) != need {
		d.buf = &goaudio.IntBuffer{
			Format: d.format,
			Data:   make([]int, need),
		}
	}

	n, err := d.decoder.PCMBuffer(d.buf)
	if err != nil {
		return 0, fmt.Errorf("wav decode error: %w", err)
	}
	if n == 0 {
		d.eof = true
		return 0, io.EOF
	}

	frames := n / d.channels
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < d.channels; ch++ {
			sum += d.buf.Data[i*d.channels+ch]
		}
		dst[i] = scaleTo16(sum/d.channels, d.bits)
	}
	return frames, nil
}

// Close releases decoder resources
func (d *WAVDecoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
