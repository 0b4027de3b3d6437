// ABOUTME: Thread-safe circular buffer bridging device callbacks and blocking I/O
// ABOUTME: Callbacks use the non-blocking side, the engine uses the blocking side
package device

import "sync"

// RingBuffer provides thread-safe circular buffer for audio samples
type RingBuffer struct {
	buffer   []int16
	readPos  int
	writePos int
	size     int
	count    int // Number of samples currently in buffer
	closed   bool
	mu       sync.Mutex
	cond     *sync.Cond
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	rb := &RingBuffer{
		buffer: make([]int16, capacity),
		size:   capacity,
	}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write adds samples without blocking and returns how many fit.
// Samples that do not fit are dropped.
func (rb *RingBuffer) Write(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := rb.put(samples)
	if written > 0 {
		rb.cond.Broadcast()
	}
	return written
}

// WriteBlocking adds all samples, waiting for free space as needed.
// Returns ErrClosed if the buffer is closed before everything is written.
func (rb *RingBuffer) WriteBlocking(samples []int16) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for written < len(samples) {
		for rb.count == rb.size && !rb.closed {
			rb.cond.Wait()
		}
		if rb.closed {
			return written, ErrClosed
		}
		written += rb.put(samples[written:])
		rb.cond.Broadcast()
	}
	return written, nil
}

// Read retrieves samples without blocking, zero-filling on underrun
func (rb *RingBuffer) Read(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := rb.take(samples)
	if read > 0 {
		rb.cond.Broadcast()
	}

	// Zero-fill remaining if underrun
	for i := read; i < len(samples); i++ {
		samples[i] = 0
	}

	return read
}

// ReadBlocking waits until at least one sample is available and returns
// up to len(samples). Returns ErrClosed once the buffer is closed and drained.
func (rb *RingBuffer) ReadBlocking(samples []int16) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 && !rb.closed {
		rb.cond.Wait()
	}
	if rb.count == 0 {
		return 0, ErrClosed
	}

	read := rb.take(samples)
	rb.cond.Broadcast()
	return read, nil
}

// put copies samples in, must hold rb.mu
func (rb *RingBuffer) put(samples []int16) int {
	written := 0
	for i := 0; i < len(samples) && rb.count < rb.size; i++ {
		rb.buffer[rb.writePos] = samples[i]
		rb.writePos = (rb.writePos + 1) % rb.size
		rb.count++
		written++
	}
	return written
}

// take copies samples out, must hold rb.mu
func (rb *RingBuffer) take(samples []int16) int {
	read := 0
	for i := 0; i < len(samples) && rb.count > 0; i++ {
		samples[i] = rb.buffer[rb.readPos]
		rb.readPos = (rb.readPos + 1) % rb.size
		rb.count--
		read++
	}
	return read
}

// Available returns the number of samples available to read
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of free slots in the buffer
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size - rb.count
}

// Close wakes all blocked readers and writers
func (rb *RingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
