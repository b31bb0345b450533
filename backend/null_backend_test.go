package backend

import (
	"testing"
	"time"
)

func TestNullBackend_TickDrivesOnBlockReady(t *testing.T) {
	b := NewNullBackend()
	called := make(chan struct{}, 1)
	if err := b.Start(44100, 2, func() { called <- struct{}{} }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Tick()
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected onBlockReady to be called after Tick")
	}
}

func TestNullBackend_SubmitBeforeStartFails(t *testing.T) {
	b := NewNullBackend()
	if err := b.Submit([]float32{1, 2}, 1); err != ErrNotStarted {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestNullBackend_SubmitRecordsFrames(t *testing.T) {
	b := NewNullBackend()
	b.Start(44100, 2, nil)
	if err := b.Submit([]float32{0.1, 0.2, 0.3, 0.4}, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.SubmitCount != 1 {
		t.Fatalf("expected 1 submission, got %d", b.SubmitCount)
	}
	if len(b.LastSubmitted) != 4 {
		t.Fatalf("expected 4 samples recorded, got %d", len(b.LastSubmitted))
	}
}

func TestNullBackend_StopClearsStarted(t *testing.T) {
	b := NewNullBackend()
	b.Start(44100, 1, nil)
	b.Stop()
	if err := b.Submit([]float32{1}, 1); err != ErrNotStarted {
		t.Fatalf("expected ErrNotStarted after Stop, got %v", err)
	}
}
