package command

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_DrainRunsInFIFOOrder(t *testing.T) {
	q := NewQueue(8)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.Push(func() { order = append(order, i) })
	}
	q.Drain()
	for i, v := range order {
		if v != i {
			t.Fatalf("out of order at %d: %v", i, order)
		}
	}
}

func TestQueue_DrainIsIdempotentWhenEmpty(t *testing.T) {
	q := NewQueue(4)
	q.Drain() // must not block or panic on an empty queue
}

func TestQueue_ConcurrentPushThenSingleDrain(t *testing.T) {
	q := NewQueue(1024)
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.Push(func() {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()
	q.Drain()
	if count != 16*50 {
		t.Fatalf("expected 800 commands run, got %d", count)
	}
}

type testDisposer struct {
	disposed chan struct{}
}

func (d *testDisposer) Dispose() { close(d.disposed) }

func TestCollector_RetireRunsDisposeAsynchronously(t *testing.T) {
	c := NewCollector()
	defer c.Close()

	d := &testDisposer{disposed: make(chan struct{})}
	c.Retire(d)

	select {
	case <-d.disposed:
	case <-time.After(time.Second):
		t.Fatal("disposer was never run")
	}
}

type panicDisposer struct{}

func (panicDisposer) Dispose() { panic("boom") }

func TestCollector_PanicInDisposeDoesNotKillCollector(t *testing.T) {
	c := NewCollector()
	defer c.Close()

	c.Retire(panicDisposer{})

	d := &testDisposer{disposed: make(chan struct{})}
	c.Retire(d)

	select {
	case <-d.disposed:
	case <-time.After(time.Second):
		t.Fatal("collector appears to have died after a panicking disposer")
	}
}
