// Package panner implements the two spatialization voice types sources
// dispatch to: cheap equal-power stereo panning and binaural HRTF
// convolution. A Bank pre-allocates a bounded pool of each at construction
// time so acquiring a voice on the audio thread never allocates.
package panner

import (
	"math"

	"github.com/intuitionamiga/syzcore/internal/hrtfdata"
)

// StereoVoice pans a mono block to stereo using the constant-power law
// L = cos(theta)*x, R = sin(theta)*x, theta = (pan+1)*pi/4, pan in [-1, 1].
type StereoVoice struct {
	pan float32
}

// SetPan sets the pan position, clamped to [-1, 1].
func (v *StereoVoice) SetPan(pan float32) {
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	v.pan = pan
}

// Process pans mono into outL/outR, which must be at least as long as mono.
func (v *StereoVoice) Process(mono, outL, outR []float32) {
	theta := float64(v.pan+1) * math.Pi / 4
	l := float32(math.Cos(theta))
	r := float32(math.Sin(theta))
	for i, x := range mono {
		outL[i] = l * x
		outR[i] = r * x
	}
}

// Reset clears pan state back to center.
func (v *StereoVoice) Reset() { v.pan = 0 }

// fracDelay is a linearly-interpolated fractional delay line used for the
// ITD component of HRTF panning, kept separate from the FIR impulse per
// the spec's distinction between "timbre" (the impulse) and "inter-aural
// time delay" (this delay line).
type fracDelay struct {
	buf []float32
	pos int
}

func newFracDelay(maxDelaySamples int) *fracDelay {
	n := maxDelaySamples + 4
	return &fracDelay{buf: make([]float32, n)}
}

func (d *fracDelay) processSample(x float32, delaySamples float64) float32 {
	n := len(d.buf)
	d.buf[d.pos] = x
	readPos := float64(d.pos) - delaySamples
	for readPos < 0 {
		readPos += float64(n)
	}
	i0 := int(readPos) % n
	i1 := (i0 + 1) % n
	frac := float32(readPos - math.Floor(readPos))
	out := d.buf[i0]*(1-frac) + d.buf[i1]*frac
	d.pos = (d.pos + 1) % n
	return out
}

func (d *fracDelay) reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}

// firConvolver applies a (possibly block-to-block varying) set of FIR taps
// to a stream, keeping history across blocks so convolution at a block
// boundary sees the tail of the previous block instead of zeros.
type firConvolver struct {
	history []float32 // most recent len(history) input samples, oldest first
	scratch []float32 // history ++ current block, reused across calls
}

func newFIRConvolver(maxTaps, maxBlock int) *firConvolver {
	histLen := maxTaps - 1
	if histLen < 0 {
		histLen = 0
	}
	return &firConvolver{
		history: make([]float32, histLen),
		scratch: make([]float32, histLen+maxBlock),
	}
}

// convolve filters in with taps, writing len(in) samples to out, and
// updates history for the next call. taps must have length <= maxTaps and
// in must have length <= maxBlock as given to newFIRConvolver.
func (f *firConvolver) convolve(in []float32, taps []float32, out []float32) {
	h := len(f.history)
	extended := f.scratch[:h+len(in)]
	copy(extended, f.history)
	copy(extended[h:], in)

	for n := range in {
		var acc float32
		base := n + h
		for k := 0; k < len(taps); k++ {
			idx := base - k
			if idx >= 0 {
				acc += taps[k] * extended[idx]
			}
		}
		out[n] = acc
	}

	if h > 0 {
		copy(f.history, extended[len(extended)-h:])
	}
}

func (f *firConvolver) reset() {
	for i := range f.history {
		f.history[i] = 0
	}
}

// HRTFVoice convolves a mono source block against the dataset's
// interpolated impulse for the source's current (azimuth, elevation),
// crossfading from the previous block's impulse to the new one across the
// block to avoid zipper artifacts on large angular jumps.
type HRTFVoice struct {
	dataset *hrtfdata.Dataset

	// leftStorage/rightStorage double-buffer the prev/target impulses: the
	// slot not currently pointed to by targetIdx holds the crossfade-from
	// impulse and is exactly the slot the next SetPosition overwrites, so
	// no allocation is needed to keep both alive across the swap.
	leftStorage, rightStorage     [2][]float32
	targetIdx                     int
	prevITDLeft, prevITDRight     float64
	targetITDLeft, targetITDRight float64

	convPrevL, convPrevR, convNextL, convNextR *firConvolver
	itdLeft, itdRight                          *fracDelay

	scratchITDL, scratchITDR             []float32
	scratchPrevL, scratchPrevR           []float32
	scratchNextL, scratchNextR           []float32

	newLeft, newRight []float32 // scratch for interpolateTaps, sized dataset.ImpulseLen

	initialized bool
}

// NewHRTFVoice creates a voice bound to dataset, with internal buffers
// sized for maxBlock-sample blocks.
func NewHRTFVoice(dataset *hrtfdata.Dataset, maxBlock int) *HRTFVoice {
	taps := dataset.ImpulseLen
	v := &HRTFVoice{
		dataset:   dataset,
		convPrevL: newFIRConvolver(taps, maxBlock),
		convPrevR: newFIRConvolver(taps, maxBlock),
		convNextL: newFIRConvolver(taps, maxBlock),
		convNextR: newFIRConvolver(taps, maxBlock),
		itdLeft:   newFracDelay(64),
		itdRight:  newFracDelay(64),

		scratchITDL:  make([]float32, maxBlock),
		scratchITDR:  make([]float32, maxBlock),
		scratchPrevL: make([]float32, maxBlock),
		scratchPrevR: make([]float32, maxBlock),
		scratchNextL: make([]float32, maxBlock),
		scratchNextR: make([]float32, maxBlock),

		newLeft:  make([]float32, taps),
		newRight: make([]float32, taps),
	}
	for i := 0; i < 2; i++ {
		v.leftStorage[i] = make([]float32, taps)
		v.rightStorage[i] = make([]float32, taps)
	}
	return v
}

func (v *HRTFVoice) prevLeft() []float32    { return v.leftStorage[1-v.targetIdx] }
func (v *HRTFVoice) prevRight() []float32   { return v.rightStorage[1-v.targetIdx] }
func (v *HRTFVoice) targetLeft() []float32  { return v.leftStorage[v.targetIdx] }
func (v *HRTFVoice) targetRight() []float32 { return v.rightStorage[v.targetIdx] }

// SetPosition updates the voice's target direction for the next Process
// call. The previous target becomes the crossfade-from impulse.
func (v *HRTFVoice) SetPosition(azimuthDeg, elevationDeg float64) {
	cells, weights := v.dataset.Lookup(azimuthDeg, elevationDeg)

	interpolateTaps(v.newLeft, cells, weights, func(c hrtfdata.Cell) []float32 { return c.Left })
	interpolateTaps(v.newRight, cells, weights, func(c hrtfdata.Cell) []float32 { return c.Right })
	var newITDLeft, newITDRight float64
	for i, w := range weights {
		newITDLeft += w * cells[i].ITDLeft
		newITDRight += w * cells[i].ITDRight
	}

	writeIdx := 1 - v.targetIdx
	copy(v.leftStorage[writeIdx], v.newLeft)
	copy(v.rightStorage[writeIdx], v.newRight)

	if !v.initialized {
		copy(v.leftStorage[v.targetIdx], v.newLeft)
		copy(v.rightStorage[v.targetIdx], v.newRight)
		v.prevITDLeft, v.prevITDRight = newITDLeft, newITDRight
		v.initialized = true
	} else {
		v.prevITDLeft, v.prevITDRight = v.targetITDLeft, v.targetITDRight
		v.targetIdx = writeIdx
	}
	v.targetITDLeft, v.targetITDRight = newITDLeft, newITDRight
}

// interpolateTaps writes the weighted sum of the four cells' taps (as
// picked by pick) into out, which must already be sized and is zeroed
// first.
func interpolateTaps(out []float32, cells [4]hrtfdata.Cell, weights [4]float64, pick func(hrtfdata.Cell) []float32) {
	for i := range out {
		out[i] = 0
	}
	for i := range cells {
		taps := pick(cells[i])
		w := float32(weights[i])
		for k, t := range taps {
			out[k] += w * t
		}
	}
}

// Process convolves mono against the crossfaded prev->target impulse and
// applies the crossfaded ITD, writing the binaural result to outL/outR.
// All slices must be at least as long as mono, and no longer than the
// maxBlock given to NewHRTFVoice.
func (v *HRTFVoice) Process(mono, outL, outR []float32) {
	n := len(mono)
	if !v.initialized {
		v.SetPosition(0, 0)
	}

	itdL := v.scratchITDL[:n]
	itdR := v.scratchITDR[:n]
	for i, x := range mono {
		t := float64(i) / float64(n)
		delayL := v.prevITDLeft*(1-t) + v.targetITDLeft*t
		delayR := v.prevITDRight*(1-t) + v.targetITDRight*t
		itdL[i] = v.itdLeft.processSample(x, delayL)
		itdR[i] = v.itdRight.processSample(x, delayR)
	}

	prevL := v.scratchPrevL[:n]
	prevR := v.scratchPrevR[:n]
	nextL := v.scratchNextL[:n]
	nextR := v.scratchNextR[:n]
	v.convPrevL.convolve(itdL, v.prevLeft(), prevL)
	v.convPrevR.convolve(itdR, v.prevRight(), prevR)
	v.convNextL.convolve(itdL, v.targetLeft(), nextL)
	v.convNextR.convolve(itdR, v.targetRight(), nextR)

	for i := 0; i < n; i++ {
		t := float32(i) / float32(n)
		outL[i] = prevL[i]*(1-t) + nextL[i]*t
		outR[i] = prevR[i]*(1-t) + nextR[i]*t
	}
}

// Reset clears all delay-line and convolution history, used when a voice
// is returned to the bank's free pool for reuse by a different source.
func (v *HRTFVoice) Reset() {
	v.initialized = false
	v.itdLeft.reset()
	v.itdRight.reset()
	v.convPrevL.reset()
	v.convPrevR.reset()
	v.convNextL.reset()
	v.convNextR.reset()
}

// Bank pre-allocates a bounded pool of StereoVoice and HRTFVoice at
// construction so Acquire never allocates on the audio thread.
type Bank struct {
	stereoFree []*StereoVoice
	hrtfFree   []*HRTFVoice
}

// NewBank builds a bank with stereoCount StereoVoices and hrtfCount
// HRTFVoices, the latter bound to dataset and sized for maxBlock-sample
// blocks.
func NewBank(dataset *hrtfdata.Dataset, stereoCount, hrtfCount, maxBlock int) *Bank {
	b := &Bank{
		stereoFree: make([]*StereoVoice, stereoCount),
		hrtfFree:   make([]*HRTFVoice, hrtfCount),
	}
	for i := range b.stereoFree {
		b.stereoFree[i] = &StereoVoice{}
	}
	for i := range b.hrtfFree {
		b.hrtfFree[i] = NewHRTFVoice(dataset, maxBlock)
	}
	return b
}

// AcquireStereo pops a StereoVoice from the free pool, or returns nil if
// the pool is exhausted. The Context's source constructors then allocate
// an unpooled voice and log a warning on every such allocation; they do
// not fall back to direct (unspatialized) mixing.
func (b *Bank) AcquireStereo() *StereoVoice {
	n := len(b.stereoFree)
	if n == 0 {
		return nil
	}
	v := b.stereoFree[n-1]
	b.stereoFree = b.stereoFree[:n-1]
	v.Reset()
	return v
}

// ReleaseStereo returns v to the free pool.
func (b *Bank) ReleaseStereo(v *StereoVoice) {
	b.stereoFree = append(b.stereoFree, v)
}

// AcquireHRTF pops an HRTFVoice from the free pool, or returns nil if the
// pool is exhausted.
func (b *Bank) AcquireHRTF() *HRTFVoice {
	n := len(b.hrtfFree)
	if n == 0 {
		return nil
	}
	v := b.hrtfFree[n-1]
	b.hrtfFree = b.hrtfFree[:n-1]
	v.Reset()
	return v
}

// ReleaseHRTF returns v to the free pool.
func (b *Bank) ReleaseHRTF(v *HRTFVoice) {
	b.hrtfFree = append(b.hrtfFree, v)
}
