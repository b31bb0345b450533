// Package generator implements the pull nodes a source mixes together
// each tick: decoded-buffer playback, ring-fed streaming playback, noise,
// and an additive sine bank.
package generator

import (
	"math"
	"math/rand"

	"github.com/intuitionamiga/syzcore/internal/bus"
	"github.com/intuitionamiga/syzcore/internal/ring"
)

// Generator is a pull node that fills a channels x frames bus on demand.
// Generate must add into out (accumulate), never overwrite, since a
// source may mix several generators into the same bus.
type Generator interface {
	Generate(out *bus.Bus)
}

// Buffer is an immutable decoded PCM buffer, shared by reference across
// any number of BufferGenerators.
type Buffer struct {
	Data     []float32 // frame-major, Channels samples per frame
	Channels int
	Frames   int
}

// NewBuffer wraps decoded interleaved PCM data as an immutable Buffer.
func NewBuffer(data []float32, channels int) *Buffer {
	frames := 0
	if channels > 0 {
		frames = len(data) / channels
	}
	return &Buffer{Data: data, Channels: channels, Frames: frames}
}

// BufferGenerator reads from an immutable Buffer, supporting looping and
// sub-sample pitch via linear interpolation on the resampled position.
type BufferGenerator struct {
	buf *Buffer

	// PlaybackPosition is externally settable (seek); the audio thread
	// advances it every tick and the owner is responsible for publishing
	// the advanced value back to the property shadow slot.
	PlaybackPosition float64
	PitchBend        float64
	Gain             float32
	Looping          bool

	// Finished reports whether a non-looping generator has reached the
	// end of its buffer; the Context reads it after each tick to post
	// EventFinished for the owning source.
	Finished bool
}

// NewBufferGenerator creates a generator reading buf from the start.
func NewBufferGenerator(buf *Buffer) *BufferGenerator {
	return &BufferGenerator{buf: buf, PitchBend: 1.0, Gain: 1.0}
}

// Generate resamples buf at the current pitch bend and mixes frames
// samples into out, advancing PlaybackPosition. Channel count mismatches
// between the buffer and out are handled via bus.MixInto's mixdown rules.
func (g *BufferGenerator) Generate(out *bus.Bus) {
	if g.Finished || g.buf == nil || g.buf.Frames == 0 {
		return
	}
	frames := out.Frames()
	src := bus.New(g.buf.Channels, frames)

	pos := g.PlaybackPosition
	step := g.PitchBend
	if step == 0 {
		step = 1
	}

	for f := 0; f < frames; f++ {
		if pos < 0 {
			pos = 0
		}
		if int(pos) >= g.buf.Frames {
			if g.Looping {
				pos = math.Mod(pos, float64(g.buf.Frames))
			} else {
				g.Finished = true
				break
			}
		}
		i0 := int(pos)
		i1 := i0 + 1
		frac := float32(pos - math.Floor(pos))
		for ch := 0; ch < g.buf.Channels; ch++ {
			s0 := g.buf.Data[i0*g.buf.Channels+ch]
			var s1 float32
			if i1 < g.buf.Frames {
				s1 = g.buf.Data[i1*g.buf.Channels+ch]
			} else if g.Looping {
				s1 = g.buf.Data[ch]
			} else {
				s1 = s0
			}
			src.Data[f*g.buf.Channels+ch] = s0 + (s1-s0)*frac
		}
		pos += step
	}
	g.PlaybackPosition = pos

	bus.AddScaled(out, src, g.Gain)
}

// FrameFiller is implemented by a decode source that a StreamingGenerator
// pulls from. It runs on a background goroutine, never on the audio
// thread; dst is interleaved PCM of the generator's fixed channel count.
type FrameFiller interface {
	FillFrames(dst []float32) (framesFilled int, err error)
}

// StreamingGenerator pulls decoded audio from a ring fed by a background
// decode goroutine, emitting silence and marking Underflowed on ring
// underflow rather than blocking the audio thread.
type StreamingGenerator struct {
	channels    int
	ring        *ring.Ring
	Gain        float32
	Looping     bool
	Underflowed bool

	stop chan struct{}
}

const streamingRingFrames = 8192

// NewStreamingGenerator starts a background goroutine pulling from filler
// via FillFrames and pushing decoded frames into an internal ring, which
// Generate then drains once per tick.
func NewStreamingGenerator(filler FrameFiller, channels int) *StreamingGenerator {
	g := &StreamingGenerator{
		channels: channels,
		ring:     ring.New(streamingRingFrames * channels),
		Gain:     1.0,
		stop:     make(chan struct{}),
	}
	go g.decodeLoop(filler)
	return g
}

func (g *StreamingGenerator) decodeLoop(filler FrameFiller) {
	const chunkFrames = 1024
	chunk := make([]float32, chunkFrames*g.channels)
	for {
		select {
		case <-g.stop:
			return
		default:
		}
		n, err := filler.FillFrames(chunk)
		if n > 0 {
			s1, s2 := g.ring.BeginWrite(n*g.channels, false)
			written := copy(s1, chunk[:n*g.channels])
			if written < n*g.channels {
				written += copy(s2, chunk[written:n*g.channels])
			}
			g.ring.EndWrite(written)
		}
		if err != nil {
			return
		}
	}
}

// Close stops the background decode goroutine. Safe to call once, from
// any thread, when the owning source is torn down.
func (g *StreamingGenerator) Close() {
	close(g.stop)
}

// Dispose satisfies command.Disposer structurally (no import needed: the
// interface is just a Dispose method), so a StreamingGenerator released
// without ever being attached to a source still stops its decode
// goroutine instead of leaking it.
func (g *StreamingGenerator) Dispose() {
	g.Close()
}

// Generate drains channels*frames samples from the ring into out. On
// underflow (fewer than channels*frames samples in the ring) it adds
// nothing to out for the whole block, leaving any partial data in the ring
// for a later tick, and sets Underflowed so the owner can post an event.
func (g *StreamingGenerator) Generate(out *bus.Bus) {
	frames := out.Frames()
	need := frames * g.channels
	s1, s2 := g.ring.BeginRead(need, false)
	if s1 == nil {
		g.Underflowed = true
		return
	}
	g.Underflowed = false

	src := bus.New(g.channels, frames)
	n := copy(src.Data, s1)
	n += copy(src.Data[n:], s2)
	g.ring.EndRead(n)

	bus.AddScaled(out, src, g.Gain)
}

// NoiseKind selects the spectral shape of a NoiseGenerator.
type NoiseKind int

const (
	NoiseWhite NoiseKind = iota
	NoiseFilteredOneOverF
	NoisePinkVossMcCartney
)

// NoiseGenerator produces uniform white, filtered 1/f, or Voss-McCartney
// pink noise. Internal state is small and kept local to the generator so
// multiple instances never share randomness.
type NoiseGenerator struct {
	Kind    NoiseKind
	Gain    float32
	Channels int

	rng *rand.Rand

	// 1/f single-pole filter state per channel.
	oneOverFState []float32

	// Voss-McCartney state: one running value per octave-row, per channel,
	// refreshed on a schedule derived from a per-sample counter.
	vossRows    [][]float32 // [channel][row]
	vossCounter uint64
}

const vossRowCount = 16

// NewNoiseGenerator creates a noise generator of the given kind and
// channel count, seeded from seed so tests can reproduce exact output.
func NewNoiseGenerator(kind NoiseKind, channels int, seed int64) *NoiseGenerator {
	g := &NoiseGenerator{
		Kind:     kind,
		Gain:     1.0,
		Channels: channels,
		rng:      rand.New(rand.NewSource(seed)),
	}
	g.oneOverFState = make([]float32, channels)
	g.vossRows = make([][]float32, channels)
	for i := range g.vossRows {
		g.vossRows[i] = make([]float32, vossRowCount)
	}
	return g
}

// Generate fills frames samples of noise per channel and mixes into out.
func (g *NoiseGenerator) Generate(out *bus.Bus) {
	frames := out.Frames()
	src := bus.New(g.Channels, frames)
	for f := 0; f < frames; f++ {
		for ch := 0; ch < g.Channels; ch++ {
			var v float32
			switch g.Kind {
			case NoiseWhite:
				v = g.whiteSample()
			case NoiseFilteredOneOverF:
				v = g.oneOverFSample(ch)
			case NoisePinkVossMcCartney:
				v = g.vossSample(ch)
			}
			src.Data[f*g.Channels+ch] = v
		}
		if g.Kind == NoisePinkVossMcCartney {
			g.vossCounter++
		}
	}
	bus.AddScaled(out, src, g.Gain)
}

func (g *NoiseGenerator) whiteSample() float32 {
	return float32(g.rng.Float64()*2 - 1)
}

// oneOverFSample runs a single-pole lowpass over white noise, the cheap
// approximation of a 1/f spectrum used when true pink noise's extra
// filtering cost isn't warranted.
func (g *NoiseGenerator) oneOverFSample(ch int) float32 {
	const pole = 0.98
	white := g.whiteSample()
	g.oneOverFState[ch] = pole*g.oneOverFState[ch] + (1-pole)*white
	// Compensate for the lowpass's amplitude loss so the output stays in
	// a similar range to white noise.
	return g.oneOverFState[ch] * 4
}

// vossSample implements Voss-McCartney pink noise: vossRowCount
// independent white-noise generators, each updated at half the rate of
// the one before, summed together. Rows update when the corresponding
// bit of the sample counter changes, the standard trick for driving the
// algorithm without a per-row countdown timer.
func (g *NoiseGenerator) vossSample(ch int) float32 {
	rows := g.vossRows[ch]
	counter := g.vossCounter + 1
	prevCounter := g.vossCounter
	diff := counter ^ prevCounter
	for row := 0; row < vossRowCount; row++ {
		if diff&(1<<uint(row)) != 0 {
			rows[row] = g.whiteSample()
		}
	}
	var sum float32
	for _, r := range rows {
		sum += r
	}
	return sum / float32(vossRowCount)
}

// FastSineBank sums a bank of sinusoids synthesized from a recursive
// (Goertzel-style) oscillator per partial rather than repeated calls to
// math.Sin, using the two-multiply recurrence
// y[n] = 2*cos(w)*y[n-1] - y[n-2]. Partial amplitudes are tapered with a
// Lanczos-sigma partial-sum smoothing factor so a bank approximating a
// square or sawtooth wave from its harmonic series doesn't ring with
// Gibbs-phenomenon overshoot.
type FastSineBank struct {
	Gain float32

	freqs  []float64 // normalized frequency (cycles/sample) per partial
	amps   []float32 // amplitude per partial, after sigma smoothing
	y1, y2 []float64 // recurrence state per partial
	coeff  []float64 // 2*cos(w) per partial
}

// NewFastSineBank builds a bank from partial frequencies (in cycles per
// sample) and raw amplitudes; sigmaSmoothing, if true, applies the
// Lanczos-sigma factor sinc(k/N) to each partial's amplitude before
// summation.
func NewFastSineBank(freqs []float64, rawAmps []float32, sigmaSmoothing bool) *FastSineBank {
	n := len(freqs)
	b := &FastSineBank{
		Gain:  1.0,
		freqs: append([]float64(nil), freqs...),
		amps:  make([]float32, n),
		y1:    make([]float64, n),
		y2:    make([]float64, n),
		coeff: make([]float64, n),
	}
	for i, f := range freqs {
		w := 2 * math.Pi * f
		b.coeff[i] = 2 * math.Cos(w)
		// Seed the recurrence: y[-1] = sin(-w), y[-2] = sin(-2w), so that
		// evaluating the recurrence at n=0 produces sin(0)=0 and the phase
		// advances correctly from there.
		b.y1[i] = math.Sin(-w)
		b.y2[i] = math.Sin(-2 * w)
	}
	for i, a := range rawAmps {
		if sigmaSmoothing {
			b.amps[i] = a * sigmaApproximate(i, n)
		} else {
			b.amps[i] = a
		}
	}
	return b
}

// sigmaApproximate is the Lanczos sigma factor sinc(k/N) for partial index
// k of an N-partial sum, used to damp the Gibbs-phenomenon ringing of a
// truncated harmonic series.
func sigmaApproximate(k, n int) float32 {
	if n <= 1 {
		return 1
	}
	x := math.Pi * float64(k) / float64(n)
	if x == 0 {
		return 1
	}
	return float32(math.Sin(x) / x)
}

// Generate advances every partial's oscillator by frames samples, summing
// them (scaled by amps and Gain) into out's first channel, then broadcast
// to the remaining channels via bus.AddScaled's mono mixdown rule.
func (b *FastSineBank) Generate(out *bus.Bus) {
	frames := out.Frames()
	mono := bus.New(1, frames)
	for f := 0; f < frames; f++ {
		var acc float32
		for i := range b.freqs {
			y0 := b.coeff[i]*b.y1[i] - b.y2[i]
			b.y2[i] = b.y1[i]
			b.y1[i] = y0
			acc += b.amps[i] * float32(y0)
		}
		mono.Data[f] = acc
	}
	bus.AddScaled(out, mono, b.Gain)
}
