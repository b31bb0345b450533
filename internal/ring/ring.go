// Package ring implements the lock-free single-producer/single-consumer
// audio sample ring described in the engine's concurrency model. It bridges
// a decode goroutine (producer) to the audio goroutine (consumer) without
// either side ever taking a lock.
//
// The API is modelled after DirectSound's locking buffer pattern, and
// mirrors it directly: a caller asks for a run of samples, gets back one or
// two contiguous spans (the second is non-empty only when the request wraps
// past the end of the backing array), writes or reads through those spans,
// then commits the amount actually used.
package ring

import "sync/atomic"

// Ring is a fixed-capacity SPSC ring of float32 samples.
type Ring struct {
	data []float32

	writePos int
	readPos  int

	// samplesInBuffer is the single point of cross-goroutine synchronization.
	// The producer only ever increases it (in EndWrite); the consumer only
	// ever decreases it (in EndRead). Go gives every atomic operation
	// sequential consistency, which is at least as strong as the
	// acquire/release pairing the original C++ ring relies on.
	samplesInBuffer atomic.Int64

	pendingWrite int
	pendingRead  int

	// readSignal wakes a blocked producer when the consumer frees space.
	// A 1-buffered channel coalesces multiple signals the way an
	// auto-reset event does: at most one pending wakeup is ever queued.
	readSignal chan struct{}
}

// New allocates a ring able to hold n samples.
func New(n int) *Ring {
	if n <= 0 {
		panic("ring: capacity must be positive")
	}
	return &Ring{
		data:       make([]float32, n),
		readSignal: make(chan struct{}, 1),
	}
}

// Size returns the ring's total capacity in samples.
func (r *Ring) Size() int { return len(r.data) }

// BeginWrite reserves space for the producer. If maxAvailable is false and
// there is not currently enough free space for requested samples, it blocks
// until the consumer frees enough (the audio thread never calls this side).
// It returns up to two contiguous spans into the ring's backing storage;
// the caller writes samples into them and then calls EndWrite with however
// many samples it actually produced.
func (r *Ring) BeginWrite(requested int, maxAvailable bool) (s1, s2 []float32) {
	if !maxAvailable && requested == 0 {
		panic("ring: requested must be nonzero unless maxAvailable")
	}
	if requested > r.Size() {
		panic("ring: requested exceeds ring capacity")
	}

	var available int
	for {
		available = r.Size() - int(r.samplesInBuffer.Load())
		if available >= requested {
			break
		}
		<-r.readSignal
	}

	allocating := requested
	if maxAvailable {
		allocating = available
	}
	r.pendingWrite = allocating

	size1 := min(r.Size()-r.writePos, allocating)
	s1 = r.data[r.writePos : r.writePos+size1]
	if size1 == allocating {
		return s1, nil
	}
	size2 := allocating - size1
	s2 = r.data[:size2]
	return s1, s2
}

// EndWrite publishes amount samples (which must be <= the amount reserved
// by the preceding BeginWrite) to the consumer.
func (r *Ring) EndWrite(amount int) {
	if amount > r.pendingWrite {
		panic("ring: EndWrite amount exceeds reservation")
	}
	r.writePos = (r.writePos + amount) % r.Size()
	r.pendingWrite -= amount
	r.samplesInBuffer.Add(int64(amount))
}

// BeginRead is the non-blocking read side used exclusively by the audio
// goroutine. If maxAvailable is false and fewer than requested samples are
// available, it returns (nil, nil) immediately — the caller is expected to
// treat this as a recoverable underflow and emit silence for the tick.
func (r *Ring) BeginRead(requested int, maxAvailable bool) (s1, s2 []float32) {
	if !maxAvailable && requested == 0 {
		panic("ring: requested must be nonzero unless maxAvailable")
	}
	if requested > r.Size() {
		panic("ring: requested exceeds ring capacity")
	}

	available := int(r.samplesInBuffer.Load())
	if available == 0 || (available < requested && !maxAvailable) {
		return nil, nil
	}

	allocating := requested
	if maxAvailable {
		allocating = available
	}
	r.pendingRead = allocating

	size1 := min(allocating, r.Size()-r.readPos)
	s1 = r.data[r.readPos : r.readPos+size1]
	if size1 == allocating {
		return s1, nil
	}
	size2 := allocating - size1
	s2 = r.data[:size2]
	return s1, s2
}

// EndRead retires amount samples (<= the amount reserved by BeginRead) and
// wakes any producer blocked in BeginWrite.
func (r *Ring) EndRead(amount int) {
	if amount > r.pendingRead {
		panic("ring: EndRead amount exceeds reservation")
	}
	r.readPos = (r.readPos + amount) % r.Size()
	r.pendingRead -= amount
	r.samplesInBuffer.Add(-int64(amount))
	select {
	case r.readSignal <- struct{}{}:
	default:
	}
}

// Available reports how many samples the consumer could currently read.
func (r *Ring) Available() int { return int(r.samplesInBuffer.Load()) }
