package ring

import (
	"sync"
	"testing"
)

func TestRing_WrapAroundSpans(t *testing.T) {
	r := New(8)

	s1, s2 := r.BeginWrite(6, false)
	if len(s1) != 6 || s2 != nil {
		t.Fatalf("expected single 6-sample span, got %d/%d", len(s1), len(s2))
	}
	for i := range s1 {
		s1[i] = float32(i + 1)
	}
	r.EndWrite(6)

	rs1, _ := r.BeginRead(6, false)
	for i := range rs1 {
		_ = i
	}
	r.EndRead(6)

	// Now writePos is at 6; requesting 4 more must wrap into two spans.
	s1, s2 = r.BeginWrite(4, false)
	if len(s1) != 2 || len(s2) != 2 {
		t.Fatalf("expected wrap into 2+2 spans, got %d/%d", len(s1), len(s2))
	}
}

func TestRing_UnderflowReturnsNil(t *testing.T) {
	r := New(4)
	s1, s2 := r.BeginRead(1, false)
	if s1 != nil || s2 != nil {
		t.Fatalf("expected nil spans on underflow, got %v/%v", s1, s2)
	}
}

func TestRing_FIFOOrdering(t *testing.T) {
	r := New(16)
	var wg sync.WaitGroup
	const total = 10000

	wg.Add(1)
	go func() {
		defer wg.Done()
		written := 0
		for written < total {
			n := 3
			if total-written < n {
				n = total - written
			}
			s1, s2 := r.BeginWrite(n, false)
			idx := written
			for _, s := range [][]float32{s1, s2} {
				for i := range s {
					s[i] = float32(idx)
					idx++
				}
			}
			r.EndWrite(n)
			written += n
		}
	}()

	got := make([]float32, 0, total)
	for len(got) < total {
		s1, s2 := r.BeginRead(1, true)
		if s1 == nil {
			continue
		}
		got = append(got, s1...)
		got = append(got, s2...)
		r.EndRead(len(s1) + len(s2))
	}
	wg.Wait()

	for i, v := range got {
		if int(v) != i {
			t.Fatalf("FIFO violated at index %d: got %v want %v", i, v, i)
		}
	}
}
