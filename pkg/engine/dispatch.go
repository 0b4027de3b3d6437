// ABOUTME: Callback dispatcher running collaborator callbacks off the audio goroutine
// ABOUTME: Droppable posts never block, required posts wait for queue space
package engine

import (
	"sync"
	"sync/atomic"
)

const dispatchQueueSize = 64

// dispatcher runs callbacks in order on its own goroutine
type dispatcher struct {
	queue   chan func()
	run     func(func())
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

func newDispatcher(run func(func())) *dispatcher {
	if run == nil {
		run = func(fn func()) { fn() }
	}
	d := &dispatcher{
		queue: make(chan func(), dispatchQueueSize),
		run:   run,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case fn := <-d.queue:
			d.run(fn)
		case <-d.quit:
			// Drain what was queued before stop
			for {
				select {
				case fn := <-d.queue:
					d.run(fn)
				default:
					return
				}
			}
		}
	}
}

// post queues fn, dropping it when the queue is full
func (d *dispatcher) post(fn func()) bool {
	select {
	case d.queue <- fn:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// postWait queues fn, waiting for space unless the dispatcher is stopping
func (d *dispatcher) postWait(fn func()) {
	select {
	case d.queue <- fn:
	case <-d.quit:
		d.run(fn)
	}
}

// stop drains pending callbacks and ends the loop
func (d *dispatcher) stop() {
	d.once.Do(func() { close(d.quit) })
	<-d.done
}
