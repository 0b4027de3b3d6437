// ABOUTME: Real-time audio engine running capture, effect chain and playback
// ABOUTME: Fans processed chunks out to the recorder, visualizer and monitor tap
package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/micamp/micamp-go/pkg/audio"
	"github.com/micamp/micamp-go/pkg/audio/device"
	"github.com/micamp/micamp-go/pkg/effects"
)

const joinTimeout = time.Second

// ErrRunning is returned by Start when the engine is already running
var ErrRunning = errors.New("engine already running")

// Config holds engine configuration
type Config struct {
	Input    device.Capture
	Output   device.Playback
	Controls Controls

	// SampleRate overrides the playback device's native rate when non-zero
	SampleRate int

	// ChunkBytes raises the chunk size above the device minimums
	ChunkBytes int

	// RecordDir receives recordings, the working directory when empty
	RecordDir string

	// QueueDepth is the recording queue capacity, DefaultQueueDepth when zero
	QueueDepth int

	Debug bool

	// Callbacks, run on the dispatcher goroutine. They must not call Stop.
	OnRecordingError    func(err error)
	OnRecordingSaved    func(path string)
	OnRecordingProgress func(seconds int64)
	OnVisualizerFrame   func(frame []float32)
	OnStopped           func(err error)

	// Tap receives every processed chunk on the audio goroutine. It must
	// not block and must copy samples it keeps.
	Tap func(samples []int16)

	// Dispatch runs callbacks on a caller-chosen context, inline when nil
	Dispatch func(fn func())

	// Now is the clock used for recording names
	Now func() time.Time
}

// Engine runs the capture → effects → playback loop
type Engine struct {
	config Config

	mu         sync.Mutex
	started    bool
	running    atomic.Bool
	recording  atomic.Bool
	sampleRate atomic.Int64
	chunkSize  int

	chain    *effects.Chain
	snapshot effects.Snapshot
	queue    chan recordMessage
	pool     *chunkPool
	dispatch *dispatcher

	stopChan  chan struct{}
	stopOnce  *sync.Once
	audioDone chan struct{}
	recDone   chan struct{}
}

// New creates an engine. Devices are opened by Start.
func New(config Config) *Engine {
	if config.QueueDepth <= 0 {
		config.QueueDepth = DefaultQueueDepth
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Engine{config: config}
}

// Start resolves the sample rate, opens capture then playback and starts
// the audio and recording goroutines
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running.Load() {
		return ErrRunning
	}
	if e.started {
		// Previous run ended on its own, collect it first
		e.shutdown()
	}
	if e.config.Input == nil || e.config.Output == nil {
		return fmt.Errorf("engine needs both an input and an output device")
	}

	rate := e.resolveSampleRate()
	chunkBytes := e.resolveChunkBytes(rate)

	if err := e.config.Input.Open(rate, chunkBytes); err != nil {
		return fmt.Errorf("failed to open capture device: %w", err)
	}
	if err := e.config.Output.Open(rate, chunkBytes); err != nil {
		if cerr := e.config.Input.Close(); cerr != nil {
			log.Printf("Warning: failed to release capture device: %v", cerr)
		}
		return fmt.Errorf("failed to open playback device: %w", err)
	}

	e.sampleRate.Store(int64(rate))
	e.chunkSize = chunkBytes / audio.BytesPerSample
	e.chain = effects.NewChain(rate)
	e.queue = make(chan recordMessage, e.config.QueueDepth)
	e.pool = newChunkPool(e.chunkSize)
	e.dispatch = newDispatcher(e.config.Dispatch)
	e.stopChan = make(chan struct{})
	e.stopOnce = &sync.Once{}
	e.audioDone = make(chan struct{})
	e.recDone = make(chan struct{})

	rec := &recorder{
		dir:        e.config.RecordDir,
		sampleRate: rate,
		queue:      e.queue,
		pool:       e.pool,
		dispatch:   e.dispatch,
		now:        e.config.Now,
		disarm:     func() { e.recording.Store(false) },
		debug:      e.config.Debug,
		onError:    e.config.OnRecordingError,
		onSaved:    e.config.OnRecordingSaved,
		onProgress: e.config.OnRecordingProgress,
	}

	e.started = true
	e.running.Store(true)

	go func() {
		defer close(e.recDone)
		rec.run()
	}()
	go e.audioLoop()

	log.Printf("Engine started: %dHz mono, %d samples per chunk", rate, e.chunkSize)
	return nil
}

// Stop clears the running flag and waits a bounded time for both goroutines
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}
	e.running.Store(false)
	e.stopOnce.Do(func() { close(e.stopChan) })
	e.shutdown()
	log.Printf("Engine stopped")
}

// shutdown joins the goroutines of the last run, must hold e.mu
func (e *Engine) shutdown() {
	select {
	case <-e.audioDone:
	case <-time.After(joinTimeout):
		log.Printf("Warning: audio loop did not exit within %v", joinTimeout)
	}
	select {
	case <-e.recDone:
	case <-time.After(joinTimeout):
		log.Printf("Warning: recorder did not exit within %v", joinTimeout)
	}
	e.dispatch.stop()
	e.started = false
}

// SetRecording arms or disarms recording. The audio loop applies the
// change at the next chunk.
func (e *Engine) SetRecording(on bool) {
	e.recording.Store(on)
}

// Running reports whether the audio loop is active
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Recording reports whether recording is armed
func (e *Engine) Recording() bool {
	return e.recording.Load()
}

// SampleRate returns the rate of the current or last run
func (e *Engine) SampleRate() int {
	return int(e.sampleRate.Load())
}

func (e *Engine) resolveSampleRate() int {
	if e.config.SampleRate > 0 {
		return e.config.SampleRate
	}
	if rate := e.config.Output.NativeSampleRate(); rate > 0 {
		return rate
	}
	return audio.DefaultSampleRate
}

func (e *Engine) resolveChunkBytes(rate int) int {
	n := device.MinBufferBytes
	for _, m := range []int{e.config.ChunkBytes, e.config.Input.MinBufferBytes(rate), e.config.Output.MinBufferBytes(rate)} {
		if m > n {
			n = m
		}
	}
	// Whole samples only
	return n &^ 1
}

// audioLoop reads, processes and writes chunks until stopped or the input ends
func (e *Engine) audioLoop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.audioDone)

	input := e.config.Input
	output := e.config.Output
	buf := make([]int16, e.chunkSize)

	var (
		runErr       error
		armed        bool
		chunks       int
		writeErrSeen bool
	)

	for e.running.Load() {
		n, err := input.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) && e.running.Load() {
				runErr = fmt.Errorf("capture read failed: %w", err)
				log.Printf("Audio loop ending: %v", runErr)
			}
			break
		}
		if !e.running.Load() {
			break
		}
		if n == 0 {
			continue
		}
		chunk := buf[:n]

		e.config.Controls.read(&e.snapshot)
		e.chain.ProcessBlock(chunk, &e.snapshot)

		if _, err := output.Write(chunk); err != nil && !writeErrSeen {
			log.Printf("Warning: playback write failed: %v", err)
			writeErrSeen = true
		}

		if want := e.recording.Load(); want != armed {
			if want {
				e.enqueue(recordMessage{kind: recordStart})
			} else {
				e.enqueue(recordMessage{kind: recordStop})
			}
			armed = want
		}
		if armed {
			e.enqueue(recordMessage{kind: recordChunk, samples: e.pool.copyOf(chunk)})
		}

		chunks++
		if chunks%VisualizerStride == 0 && e.config.OnVisualizerFrame != nil {
			frame := Decimate(chunk)
			cb := e.config.OnVisualizerFrame
			e.dispatch.post(func() { cb(frame) })
		}

		if e.config.Tap != nil {
			e.config.Tap(chunk)
		}

		if e.config.Debug && chunks%500 == 0 {
			log.Printf("[DEBUG] Audio loop: %d chunks, %d visualizer frames dropped", chunks, e.dispatch.dropped.Load())
		}
	}

	e.running.Store(false)
	e.recording.Store(false)

	// Finalize any open recording before reporting the stop
	close(e.queue)
	select {
	case <-e.recDone:
	case <-time.After(joinTimeout):
		log.Printf("Warning: recorder still busy after %v", joinTimeout)
	}

	// Release in reverse order of acquisition
	if err := output.Close(); err != nil {
		log.Printf("Warning: failed to release playback device: %v", err)
	}
	if err := input.Close(); err != nil {
		log.Printf("Warning: failed to release capture device: %v", err)
	}

	if e.config.OnStopped != nil {
		cb := e.config.OnStopped
		e.dispatch.postWait(func() { cb(runErr) })
	}
}

// enqueue hands a message to the recorder, blocking while the queue is
// full. Chunks are dropped once Stop has been requested.
func (e *Engine) enqueue(msg recordMessage) {
	if msg.kind != recordChunk {
		e.queue <- msg
		return
	}
	select {
	case e.queue <- msg:
	case <-e.stopChan:
		e.pool.put(msg.samples)
	}
}
