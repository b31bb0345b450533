// Package source implements the shared per-tick source pipeline (mix
// generators, filter, gain ramp) and the three spatialization
// specializations a source dispatches to: direct summation, stereo
// panning, and full 3D positioning via HRTF.
package source

import (
	"math"

	"github.com/intuitionamiga/syzcore/internal/bus"
	"github.com/intuitionamiga/syzcore/filter"
	"github.com/intuitionamiga/syzcore/internal/generator"
	"github.com/intuitionamiga/syzcore/internal/panner"
)

// Spatializer is the capability record a source dispatches its finished
// per-tick bus to, generalizing the CRTP specialization the original
// implementation uses for DirectSource/PannedSource/Source3D: dispatch
// happens once per tick per source, so an interface call here costs
// nothing that matters.
type Spatializer interface {
	Spatialize(srcBus bus.Bus, master *bus.Bus)
}

// Base holds the state and per-tick pipeline every source shares:
// generator list, channel-count negotiation, per-channel filter, gain
// ramp, and dispatch to a Spatializer.
type Base struct {
	Generators []generator.Generator
	Channels   int
	Filters    []filter.Biquad // one per channel

	Gain     float32
	prevGain float32

	Spatializer Spatializer

	scratch        bus.Bus
	channelScratch []float32
}

// NewBase creates a source pipeline for channels-channel audio at the
// given block size, dispatching finished blocks to spat.
func NewBase(channels, blockSize int, spat Spatializer) *Base {
	b := &Base{
		Channels:       channels,
		Filters:        make([]filter.Biquad, channels),
		Gain:           1,
		prevGain:       1,
		Spatializer:    spat,
		scratch:        bus.New(channels, blockSize),
		channelScratch: make([]float32, blockSize),
	}
	for i := range b.Filters {
		b.Filters[i].SetConfig(filter.Identity())
	}
	return b
}

// Tick runs one block of the source pipeline: mix every generator into a
// scratch bus, filter, apply the gain ramp, then dispatch to the
// spatializer, which is responsible for contributing to master and/or a
// routed effect input.
func (s *Base) Tick(master *bus.Bus) {
	s.scratch.Zero()
	for _, g := range s.Generators {
		g.Generate(&s.scratch)
	}
	s.applyFilters()
	s.applyGainRamp()
	if s.Spatializer != nil {
		s.Spatializer.Spatialize(s.scratch, master)
	}
}

// LastBus returns the post-filter, post-gain-ramp bus computed by the
// most recent Tick, for the router to mix into any effects this source is
// routed to.
func (s *Base) LastBus() bus.Bus { return s.scratch }

func (s *Base) applyFilters() {
	frames := s.scratch.Frames()
	buf := s.channelScratch[:frames]
	for ch := 0; ch < s.Channels; ch++ {
		for f := 0; f < frames; f++ {
			buf[f] = s.scratch.Data[f*s.Channels+ch]
		}
		s.Filters[ch].ProcessBlock(buf)
		for f := 0; f < frames; f++ {
			s.scratch.Data[f*s.Channels+ch] = buf[f]
		}
	}
}

// applyGainRamp linearly ramps from the previous block's settled gain to
// the current target across this block, so a client-driven gain change
// never clicks.
func (s *Base) applyGainRamp() {
	frames := s.scratch.Frames()
	for f := 0; f < frames; f++ {
		t := float32(0)
		if frames > 1 {
			t = float32(f) / float32(frames-1)
		}
		g := s.prevGain*(1-t) + s.Gain*t
		for ch := 0; ch < s.Channels; ch++ {
			s.scratch.Data[f*s.Channels+ch] *= g
		}
	}
	s.prevGain = s.Gain
}

// DirectSpatializer sums a source's bus verbatim into master, with no
// panning or attenuation.
type DirectSpatializer struct{}

func (DirectSpatializer) Spatialize(srcBus bus.Bus, master *bus.Bus) {
	bus.AddScaled(master, srcBus, 1)
}

// PannedSpatializer routes a source through a stereo equal-power voice.
// Pan is settable directly (ScalarPannedSource) or derived from an angle
// upstream (AngularPannedSource) — both boil down to the same voice call
// once a pan value in [-1, 1] is known.
type PannedSpatializer struct {
	Voice *panner.StereoVoice

	mono, l, r []float32
}

// NewPannedSpatializer creates a spatializer driving voice, with scratch
// buffers sized for blockSize-frame blocks.
func NewPannedSpatializer(voice *panner.StereoVoice, blockSize int) *PannedSpatializer {
	return &PannedSpatializer{
		Voice: voice,
		mono:  make([]float32, blockSize),
		l:     make([]float32, blockSize),
		r:     make([]float32, blockSize),
	}
}

func (p *PannedSpatializer) Spatialize(srcBus bus.Bus, master *bus.Bus) {
	frames := srcBus.Frames()
	mono := p.mono[:frames]
	for f := 0; f < frames; f++ {
		var acc float32
		for ch := 0; ch < srcBus.Channels; ch++ {
			acc += srcBus.Data[f*srcBus.Channels+ch]
		}
		if srcBus.Channels > 0 {
			acc /= float32(srcBus.Channels)
		}
		mono[f] = acc
	}
	l := p.l[:frames]
	r := p.r[:frames]
	p.Voice.Process(mono, l, r)

	for f := 0; f < frames; f++ {
		idx := f * master.Channels
		master.Data[idx] += l[f]
		if master.Channels > 1 {
			master.Data[idx+1] += r[f]
		}
	}
}

// DistanceModel selects how a Source3D's distance from the listener maps
// to an attenuation gain.
type DistanceModel int

const (
	DistanceInverse DistanceModel = iota
	DistanceLinear
	DistanceExponential
)

// DistanceGain computes the attenuation gain for a source at distance d
// from the listener, per the spec's three distance-model formulas, always
// clamped to [0, 1].
func DistanceGain(model DistanceModel, d, ref, max, rolloff float64) float64 {
	var g float64
	switch model {
	case DistanceInverse:
		dd := math.Max(d, ref)
		g = ref / (ref + rolloff*(dd-ref))
	case DistanceLinear:
		dd := clampf(d, ref, max)
		span := max - ref
		if span == 0 {
			g = 1
		} else {
			g = 1 - rolloff*(dd-ref)/span
		}
	case DistanceExponential:
		dd := math.Max(d, ref)
		if ref == 0 {
			g = 0
		} else {
			g = math.Pow(dd/ref, -rolloff)
		}
	}
	if g < 0 {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	return g
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Vec3 is a position or direction in 3D space.
type Vec3 struct{ X, Y, Z float64 }

func sub(a, b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func length(v Vec3) float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// AzimuthElevation converts a listener-relative position into the
// (azimuth, elevation) pair the HRTF dataset is indexed by. Convention:
// +Z is forward, +X is right, +Y is up; azimuth is measured clockwise
// from forward in degrees [0, 360), elevation is measured up from the
// horizontal plane in degrees [-90, 90].
func AzimuthElevation(relative Vec3) (azimuthDeg, elevationDeg float64) {
	horizontalDist := math.Hypot(relative.X, relative.Z)
	azimuthDeg = math.Atan2(relative.X, relative.Z) * 180 / math.Pi
	if azimuthDeg < 0 {
		azimuthDeg += 360
	}
	elevationDeg = math.Atan2(relative.Y, horizontalDist) * 180 / math.Pi
	return azimuthDeg, elevationDeg
}

// Source3DSpatializer computes relative position in the listener frame,
// applies a distance attenuation model, derives azimuth/elevation, and
// dispatches to an HRTF voice.
type Source3DSpatializer struct {
	Voice *panner.HRTFVoice

	Position         Vec3
	ListenerPosition Vec3

	Model       DistanceModel
	RefDistance float64
	MaxDistance float64
	Rolloff     float64

	mono, l, r []float32
}

// NewSource3DSpatializer creates a spatializer driving voice, with
// reasonable default distance-model parameters (inverse model,
// ref=1, max=100, rolloff=1) and scratch buffers sized for
// blockSize-frame blocks.
func NewSource3DSpatializer(voice *panner.HRTFVoice, blockSize int) *Source3DSpatializer {
	return &Source3DSpatializer{
		Voice:       voice,
		Model:       DistanceInverse,
		RefDistance: 1,
		MaxDistance: 100,
		Rolloff:     1,
		mono:        make([]float32, blockSize),
		l:           make([]float32, blockSize),
		r:           make([]float32, blockSize),
	}
}

func (s *Source3DSpatializer) Spatialize(srcBus bus.Bus, master *bus.Bus) {
	relative := sub(s.Position, s.ListenerPosition)
	d := length(relative)
	gain := float32(DistanceGain(s.Model, d, s.RefDistance, s.MaxDistance, s.Rolloff))
	az, el := AzimuthElevation(relative)
	s.Voice.SetPosition(az, el)

	frames := srcBus.Frames()
	mono := s.mono[:frames]
	for f := 0; f < frames; f++ {
		var acc float32
		for ch := 0; ch < srcBus.Channels; ch++ {
			acc += srcBus.Data[f*srcBus.Channels+ch]
		}
		if srcBus.Channels > 0 {
			acc /= float32(srcBus.Channels)
		}
		mono[f] = acc * gain
	}
	l := s.l[:frames]
	r := s.r[:frames]
	s.Voice.Process(mono, l, r)

	for f := 0; f < frames; f++ {
		idx := f * master.Channels
		master.Data[idx] += l[f]
		if master.Channels > 1 {
			master.Data[idx+1] += r[f]
		}
	}
}
