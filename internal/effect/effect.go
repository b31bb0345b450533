// Package effect implements the two built-in effect types sources route
// into: a tap-list Echo and a feedback-delay-network Reverb. Both embed
// Base, which owns the effect's input accumulation bus and the "effects
// zero, router accumulates" contract: an effect zeros its own input bus
// once at the start of its tick, and every route configured into it adds
// on top during the router's Process pass, before the effect's own
// Process runs.
package effect

import (
	"math"

	"github.com/intuitionamiga/syzcore/internal/bus"
)

// Base holds the per-tick input accumulation bus shared by every effect
// type.
type Base struct {
	Input bus.Bus
}

// InputBus returns the effect's input accumulation bus, for the router to
// mix routed sources into.
func (b *Base) InputBus() *bus.Bus { return &b.Input }

// ZeroInput clears the input bus. Call once per tick before the router
// mixes routed sources into it.
func (b *Base) ZeroInput() { b.Input.Zero() }

// EchoTap is one delay tap: how far back to read, and how much of it to
// send to each output channel.
type EchoTap struct {
	DelayFrames  int
	GainL, GainR float32
}

// Echo is a bank of fixed-tap delay lines sharing a single delay memory
// ring, sized once by NewEcho to the maximum delay it was given; SetTaps
// clamps longer tap delays to fit that ring.
type Echo struct {
	Base
	Taps []EchoTap

	memory []float32
	write  int
}

// NewEcho creates an Echo whose delay memory can address up to
// maxDelayFrames of history.
func NewEcho(maxDelayFrames int) *Echo {
	if maxDelayFrames < 1 {
		maxDelayFrames = 1
	}
	return &Echo{memory: make([]float32, maxDelayFrames)}
}

// SetTaps reconfigures the tap list. Taps referencing a delay beyond the
// memory's capacity are clamped to the maximum addressable delay rather
// than rejected, so a client can't silently lose a request; a wider
// effective delay memory can be obtained by constructing a larger Echo.
func (e *Echo) SetTaps(taps []EchoTap) {
	max := len(e.memory) - 1
	clamped := make([]EchoTap, len(taps))
	for i, t := range taps {
		if t.DelayFrames > max {
			t.DelayFrames = max
		}
		if t.DelayFrames < 0 {
			t.DelayFrames = 0
		}
		clamped[i] = t
	}
	e.Taps = clamped
}

// Process reads the effect's input bus (mono-summed across channels),
// writes it into delay memory, and accumulates every tap's delayed,
// gained copy into out.
func (e *Echo) Process(out *bus.Bus) {
	frames := e.Input.Frames()
	inCh := e.Input.Channels
	n := len(e.memory)

	for f := 0; f < frames; f++ {
		var mono float32
		for ch := 0; ch < inCh; ch++ {
			mono += e.Input.Data[f*inCh+ch]
		}
		if inCh > 0 {
			mono /= float32(inCh)
		}
		e.memory[e.write] = mono

		for _, tap := range e.Taps {
			idx := ((e.write-tap.DelayFrames)%n + n) % n
			s := e.memory[idx]
			outIdx := f * out.Channels
			out.Data[outIdx] += s * tap.GainL
			if out.Channels > 1 {
				out.Data[outIdx+1] += s * tap.GainR
			}
		}

		e.write = (e.write + 1) % n
	}
}

// Reverb is a feedback-delay-network reverb: a fixed set of prime-length
// delay lines mixed through an orthonormal (Hadamard) matrix, each line
// damped by a one-pole lowpass, with per-line feedback gain derived from
// the target T60 decay time.
type Reverb struct {
	Base

	sampleRate float64
	lines      []reverbLine
	mix        [][]float64

	readOut []float32 // scratch, sized len(lines), reused across Process calls
	mixed   []float32

	T60                      float64
	MeanFreePath             float64
	LateReflectionsLFRolloff float64
}

type reverbLine struct {
	buf      []float32
	write    int
	damping  float32 // one-pole coefficient, 0=no damping, closer to 1=darker
	feedback float32
	state    float32 // damping filter state
}

// reverbLineCount is the FDN order; must be a power of two for the
// Hadamard mixing matrix construction.
const reverbLineCount = 8

// reverbPrimes holds the prime delay lengths (in frames) used by every
// Reverb instance, chosen once at package init by a sieve over a range
// comfortably inside typical room-reverb delay times so no two lines
// share a common factor and the network avoids periodic coloration.
var reverbPrimes = sievePrimesFrom(1009, reverbLineCount, 97)

// sievePrimesFrom returns count primes >= start, each spaced by at least
// stride apart in the search (by skipping ahead after each hit) so the
// resulting delay lengths are spread out rather than clustered.
func sievePrimesFrom(start, count, stride int) []int {
	primes := make([]int, 0, count)
	n := start
	if n%2 == 0 {
		n++
	}
	for len(primes) < count {
		if isPrime(n) {
			primes = append(primes, n)
			n += stride
			if n%2 == 0 {
				n++
			}
		} else {
			n += 2
		}
	}
	return primes
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// hadamard builds the n x n normalized Hadamard mixing matrix via the
// Sylvester construction. n must be a power of two.
func hadamard(n int) [][]float64 {
	h := [][]float64{{1}}
	for len(h) < n {
		size := len(h)
		next := make([][]float64, size*2)
		for i := range next {
			next[i] = make([]float64, size*2)
		}
		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				v := h[i][j]
				next[i][j] = v
				next[i][j+size] = v
				next[i+size][j] = v
				next[i+size][j+size] = -v
			}
		}
		h = next
	}
	norm := 1 / math.Sqrt(float64(n))
	for i := range h {
		for j := range h[i] {
			h[i][j] *= norm
		}
	}
	return h
}

// NewReverb creates a Reverb tuned for t60 seconds of decay time at
// sampleRate, with the prime delay lines' feedback gains derived from the
// standard per-line RT60 formula g = 10^(-3*delayFrames/(t60*sampleRate)).
func NewReverb(sampleRate float64, t60 float64) *Reverb {
	r := &Reverb{
		sampleRate:   sampleRate,
		mix:          hadamard(reverbLineCount),
		T60:          t60,
		MeanFreePath: 0.02,
	}
	r.lines = make([]reverbLine, reverbLineCount)
	for i, n := range reverbPrimes {
		r.lines[i] = reverbLine{
			buf:      make([]float32, n),
			damping:  0.2,
			feedback: rt60Gain(n, sampleRate, t60),
		}
	}
	r.readOut = make([]float32, reverbLineCount)
	r.mixed = make([]float32, reverbLineCount)
	return r
}

// rt60Gain computes the per-line feedback gain that decays a delay line of
// the given length to -60dB after t60 seconds.
func rt60Gain(delayFrames int, sampleRate, t60 float64) float32 {
	if t60 <= 0 {
		return 0
	}
	return float32(math.Pow(10, -3*float64(delayFrames)/(t60*sampleRate)))
}

// SetT60 retunes every line's feedback gain for a new decay time without
// reallocating the delay lines themselves.
func (r *Reverb) SetT60(t60 float64) {
	r.T60 = t60
	for i := range r.lines {
		r.lines[i].feedback = rt60Gain(len(r.lines[i].buf), r.sampleRate, t60)
	}
}

// Process reads the effect's input bus, drives the feedback delay
// network one sample at a time, and accumulates the result into out
// (alternating lines feed left/right to give the tail some width).
func (r *Reverb) Process(out *bus.Bus) {
	frames := r.Input.Frames()
	inCh := r.Input.Channels
	n := len(r.lines)

	readOut := r.readOut
	mixed := r.mixed

	for f := 0; f < frames; f++ {
		var mono float32
		for ch := 0; ch < inCh; ch++ {
			mono += r.Input.Data[f*inCh+ch]
		}
		if inCh > 0 {
			mono /= float32(inCh)
		}

		for i := range r.lines {
			ln := &r.lines[i]
			readOut[i] = ln.buf[ln.write]
			ln.state = ln.damping*ln.state + (1-ln.damping)*readOut[i]
		}

		for i := range r.lines {
			var acc float64
			for j := range r.lines {
				acc += r.mix[i][j] * float64(r.lines[j].state)
			}
			mixed[i] = float32(acc)
		}

		for i := range r.lines {
			ln := &r.lines[i]
			ln.buf[ln.write] = mono + mixed[i]*ln.feedback
			ln.write = (ln.write + 1) % len(ln.buf)
		}

		var left, right float32
		for i, v := range readOut {
			if i%2 == 0 {
				left += v
			} else {
				right += v
			}
		}
		left /= float32(n / 2)
		right /= float32(n / 2)

		outIdx := f * out.Channels
		out.Data[outIdx] += left
		if out.Channels > 1 {
			out.Data[outIdx+1] += right
		}
	}
}
