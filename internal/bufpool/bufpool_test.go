package bufpool

import "testing"

func TestPool_AcquireIsZeroed(t *testing.T) {
	p := New(16, 2)
	b := p.Acquire()
	for i, v := range b.Data {
		if v != 0 {
			t.Fatalf("index %d not zeroed: %v", i, v)
		}
	}
	for i := range b.Data {
		b.Data[i] = 1
	}
	b.Release()

	b2 := p.Acquire()
	for i, v := range b2.Data {
		if v != 0 {
			t.Fatalf("reacquired buffer not zeroed at %d: %v", i, v)
		}
	}
}

func TestPool_AcquireBeyondReserveFallsBackToAllocation(t *testing.T) {
	p := New(4, 1)
	first := p.Acquire()
	// Second acquire exhausts the reserve; in the default (release) build
	// this degrades to an allocation rather than panicking.
	second := p.Acquire()
	if len(second.Data) != 4 {
		t.Fatalf("expected fallback buffer of size 4, got %d", len(second.Data))
	}
	first.Release()
	second.Release()
}
