// Package backend implements the AudioBackend boundary between the
// engine's block-synchronous scheduler and an actual output device: a
// real device backed by ebitengine/oto/v3, and a headless backend for
// testing and offline rendering, grounded on the teacher's
// audio_backend_oto.go / audio_backend_headless.go pair.
package backend

import "fmt"

// AudioBackend is the implementor-provided boundary the scheduler drives:
// Start begins device playback and arranges for onBlockReady to be
// called (from any goroutine) whenever the device wants another block;
// Submit hands over exactly one block's worth of interleaved samples;
// Stop halts playback.
type AudioBackend interface {
	Start(sampleRate, channels int, onBlockReady func()) error
	Submit(frames []float32, nFrames int) error
	Stop() error
}

// ErrNotStarted is returned by Submit if called before Start, or after
// Stop.
var ErrNotStarted = fmt.Errorf("backend: not started")
