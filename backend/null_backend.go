package backend

import "sync"

// NullBackend discards submitted audio and drives the scheduler's tick
// rate only when Tick is called externally, grounded on the teacher's
// headless OtoPlayer stub. It's the backend used by tests and by offline
// rendering, where nothing is actually being played.
type NullBackend struct {
	mu           sync.Mutex
	started      bool
	channels     int
	onBlockReady func()

	LastSubmitted []float32
	SubmitCount   int
}

// NewNullBackend creates a backend that does nothing until driven.
func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

func (b *NullBackend) Start(sampleRate, channels int, onBlockReady func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = true
	b.channels = channels
	b.onBlockReady = onBlockReady
	return nil
}

// Tick simulates one device period elapsing, invoking onBlockReady so the
// scheduler produces and submits exactly one block. Safe to call
// repeatedly from a test's driving goroutine.
func (b *NullBackend) Tick() {
	b.mu.Lock()
	cb := b.onBlockReady
	b.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (b *NullBackend) Submit(frames []float32, nFrames int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return ErrNotStarted
	}
	n := nFrames * b.channels
	if n > len(frames) {
		n = len(frames)
	}
	b.LastSubmitted = append([]float32(nil), frames[:n]...)
	b.SubmitCount++
	return nil
}

func (b *NullBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = false
	return nil
}
