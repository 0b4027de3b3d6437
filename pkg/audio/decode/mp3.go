// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to mono int16 samples
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved stereo 16-bit little-endian
const mp3FrameBytes = 4

// MP3Decoder decodes MP3 audio
type MP3Decoder struct {
	decoder *mp3.Decoder
	closer  io.Closer
	buf     []byte
	eof     bool
}

// NewMP3 creates a decoder reading from r. If r is an io.Closer it is
// closed with the decoder.
func NewMP3(r io.Reader) (*MP3Decoder, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	d := &MP3Decoder{decoder: decoder}
	if c, ok := r.(io.Closer); ok {
		d.closer = c
	}
	return d, nil
}

// SampleRate returns the stream's sample rate
func (d *MP3Decoder) SampleRate() int {
	return d.decoder.SampleRate()
}

// Read decodes up to len(dst) mono samples
func (d *MP3Decoder) Read(dst []int16) (int, error) {
	if d.eof {
		return 0, io.EOF
	}

	need := len(dst) * mp3FrameBytes
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	buf := d.buf[:need]

	n, err := io.ReadFull(d.decoder, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		d.eof = true
		err = nil
	}
	if err != nil {
		return 0, fmt.Errorf("mp3 decode error: %w", err)
	}

	frames := n / mp3FrameBytes
	for i := 0; i < frames; i++ {
		l := int(int16(binary.LittleEndian.Uint16(buf[i*4:])))
		r := int(int16(binary.LittleEndian.Uint16(buf[i*4+2:])))
		dst[i] = int16((l + r) / 2)
	}
	if frames == 0 && d.eof {
		return 0, io.EOF
	}
	return frames, nil
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
