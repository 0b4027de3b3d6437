// ABOUTME: Oto-based playback device
// ABOUTME: Streams PCM through a pipe into a persistent oto player
package device

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/micamp/micamp-go/pkg/audio/encode"
)

// oto only allows one context per process
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

// OtoPlayback plays through the oto library
type OtoPlayback struct {
	periodMs   int
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	buf        []byte
	ready      bool
	mu         sync.Mutex
}

// NewOtoPlayback creates an oto playback device
func NewOtoPlayback(periodMs int) *OtoPlayback {
	return &OtoPlayback{periodMs: periodMs}
}

// Open initializes the output device
func (o *OtoPlayback) Open(sampleRate, bufferBytes int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ready {
		return fmt.Errorf("playback device already open")
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan
		otoCtx = ctx
		otoRate = sampleRate
	})
	if otoErr != nil {
		return otoErr
	}
	if otoRate != sampleRate {
		return fmt.Errorf("oto context already running at %dHz, cannot reopen at %dHz", otoRate, sampleRate)
	}
	if err := otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}

	// Create pipe for continuous streaming
	o.pipeReader, o.pipeWriter = io.Pipe()

	// Create persistent player that reads from the pipe
	o.player = otoCtx.NewPlayer(o.pipeReader)
	o.player.SetBufferSize(bufferBytes * 2)
	o.player.Play()
	o.ready = true

	log.Printf("Audio playback initialized: %dHz mono (oto)", sampleRate)
	return nil
}

// Write outputs audio samples (blocks until written)
func (o *OtoPlayback) Write(samples []int16) (int, error) {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return 0, ErrNotOpen
	}
	w := o.pipeWriter
	o.buf = encode.AppendPCM16(o.buf[:0], samples)
	buf := o.buf
	o.mu.Unlock()

	// Write to pipe (which feeds the persistent player)
	if _, err := w.Write(buf); err != nil {
		if err == io.ErrClosedPipe {
			return 0, ErrClosed
		}
		return 0, fmt.Errorf("pipe write failed: %w", err)
	}
	return len(samples), nil
}

// MinBufferBytes returns the configured period size in bytes
func (o *OtoPlayback) MinBufferBytes(sampleRate int) int {
	return periodBytes(sampleRate, o.periodMs)
}

// NativeSampleRate is unknown for oto, the engine falls back to its default
func (o *OtoPlayback) NativeSampleRate() int {
	return 0
}

// Close releases output resources
func (o *OtoPlayback) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.ready {
		if err := otoCtx.Suspend(); err != nil {
			log.Printf("Warning: oto suspend error: %v", err)
		}
		o.ready = false
	}
	return nil
}
