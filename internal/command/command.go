// Package command implements the cross-thread command queue: a lock-free
// MPSC channel of closures the audio thread drains once per tick, used for
// every audio-graph mutation that isn't a plain property set (attaching a
// generator to a source, configuring a route, destroying an object).
//
// Destruction is special-cased: rather than run a destructor on the audio
// thread — which could free memory or close a file descriptor at an
// unpredictable time — the audio thread hands finished objects to a
// deferred-deletion goroutine that does the real work off the audio path.
package command

import (
	"log/slog"
)

// Func is a unit of work queued for the audio thread. It must not block.
type Func func()

const defaultCapacity = 256

// Queue is a single-consumer command queue. Any number of goroutines may
// call Push; only the audio thread may call Drain.
type Queue struct {
	ch chan Func
}

// NewQueue creates a command queue with room for capacity pending commands
// before Push blocks. Audio-graph mutations are rare relative to audio
// ticks, so a bounded channel with a generous capacity is sufficient —
// unlike the sample ring, back-pressure here does not corrupt audio.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{ch: make(chan Func, capacity)}
}

// Push enqueues fn for execution on the audio thread's next Drain. It may
// be called from any goroutine.
func (q *Queue) Push(fn Func) {
	q.ch <- fn
}

// TryPush enqueues fn without blocking, reporting false if the queue is
// currently full.
func (q *Queue) TryPush(fn Func) bool {
	select {
	case q.ch <- fn:
		return true
	default:
		return false
	}
}

// Drain runs every command currently queued, in FIFO order, and returns
// once the queue observed empty. It must only be called from the audio
// thread.
func (q *Queue) Drain() {
	for {
		select {
		case fn := <-q.ch:
			fn()
		default:
			return
		}
	}
}

// Disposer is anything the deferred-deletion goroutine knows how to tear
// down. Implementations do real work — closing files, releasing pooled
// buffers — so they must never run on the audio thread.
type Disposer interface {
	Dispose()
}

// Collector is the deferred-deletion thread: objects the audio thread has
// finished with are handed here instead of destructed in place, so that
// teardown cost never lands on a tick deadline.
type Collector struct {
	ch   chan Disposer
	done chan struct{}
}

// NewCollector starts the deferred-deletion goroutine. Callers must call
// Close to stop it once the engine is shutting down.
func NewCollector() *Collector {
	c := &Collector{
		ch:   make(chan Disposer, defaultCapacity),
		done: make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Collector) run() {
	for {
		select {
		case d, ok := <-c.ch:
			if !ok {
				return
			}
			safeDispose(d)
		case <-c.done:
			// Drain whatever is left before exiting so nothing leaks.
			for {
				select {
				case d := <-c.ch:
					safeDispose(d)
				default:
					return
				}
			}
		}
	}
}

func safeDispose(d Disposer) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("command: disposer panicked", "recovered", r)
		}
	}()
	d.Dispose()
}

// Retire hands d to the deferred-deletion goroutine. Safe to call from the
// audio thread — this is the entire point of the collector. If the
// collector's queue is full the object is dropped rather than disposed of
// in place, preserving the audio thread's never-block guarantee; this
// should only be reachable under pathological object churn and is logged
// so it gets noticed.
func (c *Collector) Retire(d Disposer) {
	select {
	case c.ch <- d:
	default:
		slog.Warn("command: deferred-deletion queue full, dropping disposer")
	}
}

// Close stops the deferred-deletion goroutine after draining any objects
// already queued.
func (c *Collector) Close() {
	close(c.done)
}
