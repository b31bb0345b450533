package effect

import (
	"math"
	"testing"

	"github.com/intuitionamiga/syzcore/internal/bus"
)

func TestEcho_SingleTapReproducesDelayedSignal(t *testing.T) {
	e := NewEcho(16)
	e.SetTaps([]EchoTap{{DelayFrames: 4, GainL: 1, GainR: 1}})

	e.Input = bus.New(1, 8)
	e.Input.Data[0] = 1.0 // an impulse at frame 0

	out := bus.New(2, 8)
	e.Process(&out)

	for f := 0; f < 8; f++ {
		want := float32(0)
		if f == 4 {
			want = 1.0
		}
		if out.Data[f*2] != want {
			t.Fatalf("frame %d: expected L=%v, got %v", f, want, out.Data[f*2])
		}
	}
}

func TestEcho_TapBeyondCapacityIsClamped(t *testing.T) {
	e := NewEcho(4)
	e.SetTaps([]EchoTap{{DelayFrames: 1000, GainL: 1, GainR: 1}})
	if e.Taps[0].DelayFrames != 3 {
		t.Fatalf("expected clamp to memory capacity - 1 (3), got %d", e.Taps[0].DelayFrames)
	}
}

func TestIsPrime_KnownValues(t *testing.T) {
	primes := map[int]bool{2: true, 3: true, 4: false, 17: true, 18: false, 1: false}
	for n, want := range primes {
		if got := isPrime(n); got != want {
			t.Errorf("isPrime(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestReverbPrimes_AreAllDistinctPrimes(t *testing.T) {
	seen := map[int]bool{}
	for _, p := range reverbPrimes {
		if !isPrime(p) {
			t.Fatalf("reverb prime %d is not prime", p)
		}
		if seen[p] {
			t.Fatalf("duplicate reverb prime %d", p)
		}
		seen[p] = true
	}
}

func TestHadamard_RowsAreOrthonormal(t *testing.T) {
	h := hadamard(8)
	for i := range h {
		var norm float64
		for _, v := range h[i] {
			norm += v * v
		}
		if math.Abs(norm-1) > 1e-9 {
			t.Fatalf("row %d not unit norm: %v", i, norm)
		}
	}
	for i := 0; i < len(h); i++ {
		for j := i + 1; j < len(h); j++ {
			var dot float64
			for k := range h[i] {
				dot += h[i][k] * h[j][k]
			}
			if math.Abs(dot) > 1e-9 {
				t.Fatalf("rows %d and %d not orthogonal: dot=%v", i, j, dot)
			}
		}
	}
}

func TestReverb_ImpulseTailStaysFiniteAndBounded(t *testing.T) {
	r := NewReverb(44100, 0.5)
	r.Input = bus.New(1, 1)
	r.Input.Data[0] = 1.0

	out := bus.New(2, 1)
	r.Process(&out) // impulse in

	// Feed silence and confirm the tail stays finite and its peak stays
	// below 2.0 rather than blowing up.
	var maxLater float32
	for i := 0; i < 20000; i++ {
		r.Input = bus.New(1, 1)
		out := bus.New(2, 1)
		r.Process(&out)
		if v := absf32(out.Data[0]); v > maxLater {
			maxLater = v
		}
		if v := absf32(out.Data[0]); math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("reverb output diverged at sample %d: %v", i, v)
		}
	}
	if maxLater > 2.0 {
		t.Fatalf("expected a bounded tail, got peak %v", maxLater)
	}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
