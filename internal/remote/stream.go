// ABOUTME: Encodes tapped engine audio into fixed-length monitor frames
// ABOUTME: Resamples to 48kHz for Opus, passes PCM through at the engine rate
package remote

import (
	"fmt"
	"log"

	"github.com/micamp/micamp-go/internal/protocol"
	"github.com/micamp/micamp-go/pkg/audio"
	"github.com/micamp/micamp-go/pkg/audio/encode"
	"github.com/micamp/micamp-go/pkg/audio/resample"
)

const (
	// FrameMs is the duration of every monitor frame
	FrameMs = 20

	// OpusSampleRate is the rate of the Opus stream
	OpusSampleRate = 48000
)

// stream turns engine chunks into encoded frames
type stream struct {
	format    protocol.AudioFormat
	encoder   encode.Encoder
	resampler *resample.Resampler
	frame     []int16
	scratch   []int16
	pending   []int16
	position  int64 // samples emitted, at the stream rate
}

// newStream builds the encoder for codec at the engine's sample rate
func newStream(codec string, engineRate int) (*stream, error) {
	s := &stream{}

	switch codec {
	case "opus":
		format := audio.Mono16(OpusSampleRate)
		format.Codec = "opus"
		enc, err := encode.NewOpus(format)
		if err != nil {
			return nil, fmt.Errorf("failed to create opus encoder: %w", err)
		}
		s.encoder = enc
		s.format = protocol.AudioFormat{Codec: "opus", SampleRate: OpusSampleRate}
		if engineRate != OpusSampleRate {
			s.resampler = resample.New(engineRate, OpusSampleRate, 1)
		}
	case "pcm", "":
		enc, err := encode.NewPCM(audio.Mono16(engineRate))
		if err != nil {
			return nil, err
		}
		s.encoder = enc
		s.format = protocol.AudioFormat{Codec: "pcm", SampleRate: engineRate}
	default:
		return nil, fmt.Errorf("unsupported monitor codec: %s", codec)
	}

	s.format.Channels = 1
	s.format.BitDepth = 16
	s.format.FrameMs = FrameMs
	s.frame = make([]int16, s.format.SampleRate*FrameMs/1000)
	return s, nil
}

// push consumes a chunk and calls emit for every complete frame
func (s *stream) push(samples []int16, emit func([]byte)) {
	if s.resampler != nil {
		need := s.resampler.OutputCapacity(len(samples))
		if cap(s.scratch) < need {
			s.scratch = make([]int16, need)
		}
		n := s.resampler.Resample(samples, s.scratch[:need])
		samples = s.scratch[:n]
	}
	s.pending = append(s.pending, samples...)

	for len(s.pending) >= len(s.frame) {
		copy(s.frame, s.pending)
		s.pending = s.pending[:copy(s.pending, s.pending[len(s.frame):])]

		data, err := s.encoder.Encode(s.frame)
		if err != nil {
			log.Printf("Monitor encode error: %v", err)
			continue
		}
		ts := s.position * 1_000_000 / int64(s.format.SampleRate)
		s.position += int64(len(s.frame))
		emit(protocol.CreateAudioChunk(ts, data))
	}
}

func (s *stream) close() {
	if err := s.encoder.Close(); err != nil {
		log.Printf("Warning: monitor encoder close error: %v", err)
	}
}
