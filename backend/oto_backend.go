//go:build !headless

package backend

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend drives real device output via ebitengine/oto/v3, grounded on
// the teacher's OtoPlayer: an oto.Player pulls bytes through Read, which
// this backend turns into a request for the scheduler's next block.
type OtoBackend struct {
	ctx    *oto.Context
	player *oto.Player

	channels     int
	onBlockReady func()

	mu      sync.Mutex
	started bool
	dataCh  chan []float32
}

// NewOtoBackend creates an OtoBackend without starting device output;
// call Start to begin playback.
func NewOtoBackend() *OtoBackend {
	return &OtoBackend{dataCh: make(chan []float32)}
}

// Start opens the device at sampleRate/channels and begins calling
// onBlockReady from oto's internal read goroutine whenever it needs more
// audio.
func (b *OtoBackend) Start(sampleRate, channels int, onBlockReady func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}

	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return fmt.Errorf("backend: opening oto context: %w", err)
	}
	<-ready

	b.ctx = ctx
	b.channels = channels
	b.onBlockReady = onBlockReady
	b.player = ctx.NewPlayer(b)
	b.player.Play()
	b.started = true
	return nil
}

// Read implements io.Reader for oto's player. It requests the next block
// from the scheduler via onBlockReady, then blocks until Submit delivers
// it.
func (b *OtoBackend) Read(p []byte) (int, error) {
	if b.onBlockReady != nil {
		b.onBlockReady()
	}
	samples, ok := <-b.dataCh
	if !ok {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	if len(samples) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := len(samples) * 4
	if n > len(p) {
		n = len(p)
	}
	copy(p[:n], (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:n])
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// Submit hands nFrames*channels interleaved samples to the device,
// blocking until the backend's Read call consumes them.
func (b *OtoBackend) Submit(frames []float32, nFrames int) error {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	n := nFrames * b.channels
	if n > len(frames) {
		n = len(frames)
	}
	b.dataCh <- frames[:n]
	return nil
}

// Stop halts playback and releases the device.
func (b *OtoBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nil
	}
	b.started = false
	close(b.dataCh)
	if b.player != nil {
		b.player.Close()
	}
	return nil
}
