// ABOUTME: Decoders for monitor audio frames
// ABOUTME: Supports 16-bit PCM and Opus mono streams
package client

import (
	"fmt"

	"github.com/micamp/micamp-go/internal/protocol"
	"github.com/micamp/micamp-go/pkg/audio/encode"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusFrame is the longest Opus frame, 120ms at 48kHz
const maxOpusFrame = 5760

// Decoder turns one binary frame payload into samples
type Decoder interface {
	Decode(data []byte) ([]int16, error)
	Close() error
}

// NewDecoder creates a decoder for the advertised stream format
func NewDecoder(format protocol.AudioFormat) (Decoder, error) {
	if format.Channels != 0 && format.Channels != 1 {
		return nil, fmt.Errorf("unsupported channel count: %d", format.Channels)
	}
	switch format.Codec {
	case "pcm":
		return &PCMDecoder{}, nil
	case "opus":
		return NewOpusDecoder(format)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", format.Codec)
	}
}

// PCMDecoder decodes little-endian 16-bit PCM
type PCMDecoder struct{}

func (d *PCMDecoder) Decode(data []byte) ([]int16, error) {
	samples := make([]int16, len(data)/2)
	encode.DecodePCM16(samples, data)
	return samples, nil
}

func (d *PCMDecoder) Close() error {
	return nil
}

// OpusDecoder decodes Opus audio
type OpusDecoder struct {
	decoder *opus.Decoder
	pcm     []int16
}

func NewOpusDecoder(format protocol.AudioFormat) (*OpusDecoder, error) {
	dec, err := opus.NewDecoder(format.SampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}
	return &OpusDecoder{
		decoder: dec,
		pcm:     make([]int16, maxOpusFrame),
	}, nil
}

func (d *OpusDecoder) Decode(data []byte) ([]int16, error) {
	n, err := d.decoder.Decode(data, d.pcm)
	if err != nil {
		return nil, fmt.Errorf("opus decode failed: %w", err)
	}
	return append([]int16(nil), d.pcm[:n]...), nil
}

func (d *OpusDecoder) Close() error {
	return nil
}
