// ABOUTME: Recording pipeline consumer writing processed chunks to WAV files
// ABOUTME: Drains the bounded queue filled by the audio goroutine
package engine

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/micamp/micamp-go/pkg/audio/encode"
)

// DefaultQueueDepth is the recording queue capacity in messages
const DefaultQueueDepth = 256

type recordKind int

const (
	recordStart recordKind = iota
	recordChunk
	recordStop
)

// recordMessage is one entry of the recording queue
type recordMessage struct {
	kind    recordKind
	samples *[]int16
}

// chunkPool recycles chunk copies between the audio and recording goroutines
type chunkPool struct {
	pool sync.Pool
	size int
}

func newChunkPool(size int) *chunkPool {
	p := &chunkPool{size: size}
	p.pool.New = func() any {
		buf := make([]int16, size)
		return &buf
	}
	return p
}

func (p *chunkPool) copyOf(samples []int16) *[]int16 {
	buf := p.pool.Get().(*[]int16)
	*buf = append((*buf)[:0], samples...)
	return buf
}

func (p *chunkPool) put(buf *[]int16) {
	p.pool.Put(buf)
}

// session is one open recording
type session struct {
	id     string
	path   string
	writer *encode.WAVWriter
	start  time.Time
}

// sessionName returns the file name for a recording started at t
func sessionName(t time.Time) string {
	return "MicAmp_" + t.Format("20060102_150405") + ".wav"
}

// openSession creates the next recording file in dir
func openSession(dir string, sampleRate int, now time.Time) (*session, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}

	id := uuid.New().String()
	name := sessionName(now)
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		// Same second as a previous session, disambiguate with the session id
		path = filepath.Join(dir, name[:len(name)-len(".wav")]+"_"+id[:8]+".wav")
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file: %w", err)
	}

	writer, err := encode.NewWAVWriter(f, sampleRate)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write wav header: %w", err)
	}

	return &session{
		id:     id,
		path:   path,
		writer: writer,
		start:  now,
	}, nil
}

// recorder consumes the recording queue
type recorder struct {
	dir        string
	sampleRate int
	queue      <-chan recordMessage
	pool       *chunkPool
	dispatch   *dispatcher
	now        func() time.Time
	disarm     func()
	debug      bool

	onError    func(error)
	onSaved    func(string)
	onProgress func(int64)

	current      *session
	lastProgress int64
}

// run blocks until the queue is closed, finalizing any open session
func (r *recorder) run() {
	for msg := range r.queue {
		switch msg.kind {
		case recordStart:
			if r.current != nil {
				r.finish()
			}
			r.begin()
		case recordChunk:
			if r.current != nil {
				r.write(*msg.samples)
			}
			r.pool.put(msg.samples)
		case recordStop:
			if r.current != nil {
				r.finish()
			}
		}
	}

	if r.current != nil {
		r.finish()
	}
}

func (r *recorder) begin() {
	s, err := openSession(r.dir, r.sampleRate, r.now())
	if err != nil {
		r.fail(err)
		return
	}
	r.current = s
	r.lastProgress = -1
	log.Printf("Recording started: %s (session %s)", s.path, s.id)
}

func (r *recorder) write(samples []int16) {
	if err := r.current.writer.WriteSamples(samples); err != nil {
		r.fail(fmt.Errorf("failed to write recording: %w", err))
		return
	}

	seconds := r.current.writer.Seconds()
	if r.onProgress != nil {
		cb := r.onProgress
		r.dispatch.post(func() { cb(seconds) })
	}
	if r.debug && seconds != r.lastProgress {
		log.Printf("[DEBUG] Recording %s: %ds, %d bytes", r.current.id, seconds, r.current.writer.PayloadBytes())
	}
	r.lastProgress = seconds
}

func (r *recorder) finish() {
	s := r.current
	r.current = nil

	if err := s.writer.Close(); err != nil {
		r.report(fmt.Errorf("failed to finalize recording: %w", err))
		return
	}

	log.Printf("Recording saved: %s (%d bytes, %ds)", s.path, s.writer.PayloadBytes(), s.writer.Seconds())
	if r.onSaved != nil {
		cb := r.onSaved
		path := s.path
		r.dispatch.postWait(func() { cb(path) })
	}
}

// fail abandons the open session and disarms recording
func (r *recorder) fail(err error) {
	if s := r.current; s != nil {
		r.current = nil
		if cerr := s.writer.Close(); cerr != nil {
			log.Printf("Warning: failed to close abandoned recording %s: %v", s.path, cerr)
		}
	}
	r.disarm()
	r.report(err)
}

func (r *recorder) report(err error) {
	log.Printf("Recording error: %v", err)
	if r.onError != nil {
		cb := r.onError
		r.dispatch.postWait(func() { cb(err) })
	}
}
