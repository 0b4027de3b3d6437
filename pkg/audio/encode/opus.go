// ABOUTME: Opus audio encoder
// ABOUTME: Encodes 20ms int16 frames to Opus packets
package encode

import (
	"fmt"

	"github.com/micamp/micamp-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// MaxOpusPacket is the largest packet the encoder will produce
const MaxOpusPacket = 4000

// OpusEncoder encodes Opus audio
type OpusEncoder struct {
	encoder    *opus.Encoder
	sampleRate int
	channels   int
	frameSize  int
	buf        []byte
}

// NewOpus creates a new Opus encoder
func NewOpus(format audio.Format) (*OpusEncoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus encoder: %s", format.Codec)
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	return &OpusEncoder{
		encoder:    encoder,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		frameSize:  format.SampleRate / 50, // 20ms frame
		buf:        make([]byte, MaxOpusPacket),
	}, nil
}

// FrameSamples returns how many interleaved samples one Encode call takes
func (e *OpusEncoder) FrameSamples() int {
	return e.frameSize * e.channels
}

// SetBitrate sets the target bitrate in bits per second
func (e *OpusEncoder) SetBitrate(bps int) error {
	return e.encoder.SetBitrate(bps)
}

// Encode converts one frame of int16 samples to an Opus packet
func (e *OpusEncoder) Encode(samples []int16) ([]byte, error) {
	if len(samples) != e.FrameSamples() {
		return nil, fmt.Errorf("opus frame must be %d samples, got %d", e.FrameSamples(), len(samples))
	}

	n, err := e.encoder.Encode(samples, e.buf)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	out := make([]byte, n)
	copy(out, e.buf[:n])
	return out, nil
}

// Close releases resources
func (e *OpusEncoder) Close() error {
	return nil
}
