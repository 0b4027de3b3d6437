// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC files frame by frame to mono int16 samples
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct {
	stream  *flac.Stream
	bits    int
	pending []int16
	eof     bool
}

// NewFLAC creates a decoder reading from r. If r is an io.Closer it is
// closed with the decoder.
func NewFLAC(r io.Reader) (*FLACDecoder, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create flac decoder: %w", err)
	}
	if stream.Info.NChannels == 0 {
		stream.Close()
		return nil, fmt.Errorf("flac stream has no channels")
	}

	return &FLACDecoder{
		stream: stream,
		bits:   int(stream.Info.BitsPerSample),
	}, nil
}

// SampleRate returns the stream's sample rate
func (d *FLACDecoder) SampleRate() int {
	return int(d.stream.Info.SampleRate)
}

// Read decodes up to len(dst) mono samples
func (d *FLACDecoder) Read(dst []int16) (int, error) {
	for len(d.pending) < len(dst) && !d.eof {
		if err := d.decodeFrame(); err != nil {
			return 0, err
		}
	}

	n := copy(dst, d.pending)
	d.pending = d.pending[:copy(d.pending, d.pending[n:])]
	if n == 0 && d.eof {
		return 0, io.EOF
	}
	return n, nil
}

// decodeFrame appends one downmixed frame to pending
func (d *FLACDecoder) decodeFrame() error {
	frame, err := d.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		d.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("flac decode error: %w", err)
	}

	channels := len(frame.Subframes)
	for i := 0; i < int(frame.BlockSize); i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += int(frame.Subframes[ch].Samples[i])
		}
		d.pending = append(d.pending, scaleTo16(sum/channels, d.bits))
	}
	return nil
}

// Close releases decoder resources
func (d *FLACDecoder) Close() error {
	return d.stream.Close()
}
