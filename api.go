package syzcore

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/intuitionamiga/syzcore/internal/effect"
	"github.com/intuitionamiga/syzcore/internal/generator"
	"github.com/intuitionamiga/syzcore/internal/panner"
	"github.com/intuitionamiga/syzcore/internal/property"
	"github.com/intuitionamiga/syzcore/internal/source"
)

// Property tags shared by every source kind; a given source's Schema only
// ever contains the tags that apply to it (a DirectSource has no pan tag,
// for instance), so Set/Get reject tags that don't apply via
// property.ErrUnknownProperty.
const (
	TagGain     property.Tag = iota
	TagPan                   // panned sources only
	TagPosition              // 3D sources only: [3]float64 source position (same space as TagListener)
	TagListener              // 3D sources only: [3]float64 listener position
)

func gainDefault() property.Value {
	return property.Value{Kind: property.KindDouble, D: 1}
}

func nonNegativeGain(v property.Value) error {
	if v.D < 0 {
		return fmt.Errorf("gain must be non-negative, got %v", v.D)
	}
	return nil
}

func panSchema() property.Schema {
	return property.Schema{
		TagGain: {Kind: property.KindDouble, Default: gainDefault(), Validator: nonNegativeGain},
		TagPan:  {Kind: property.KindDouble, Default: property.Value{Kind: property.KindDouble, D: 0}},
	}
}

func directSchema() property.Schema {
	return property.Schema{
		TagGain: {Kind: property.KindDouble, Default: gainDefault(), Validator: nonNegativeGain},
	}
}

func source3DSchema() property.Schema {
	return property.Schema{
		TagGain:     {Kind: property.KindDouble, Default: gainDefault(), Validator: nonNegativeGain},
		TagPosition: {Kind: property.KindDouble3, Default: property.Value{Kind: property.KindDouble3}},
		TagListener: {Kind: property.KindDouble3, Default: property.Value{Kind: property.KindDouble3}},
	}
}

// applySourceProperties applies se's drained audio-thread view onto the
// live Base/Spatializer state. Called once per tick, immediately after
// se.props.Drain, before se.base.Tick.
func (c *Context) applySourceProperties(se *sourceEntry) {
	if v, ok := se.props.AudioGet(TagGain); ok {
		se.base.Gain = float32(v.D)
	}
	if se.stereoV != nil {
		if v, ok := se.props.AudioGet(TagPan); ok {
			se.stereoV.SetPan(float32(v.D))
		}
	}
	if se.spat3D != nil {
		if v, ok := se.props.AudioGet(TagPosition); ok {
			se.spat3D.Position = source.Vec3{X: v.D3[0], Y: v.D3[1], Z: v.D3[2]}
		}
		if v, ok := se.props.AudioGet(TagListener); ok {
			se.spat3D.ListenerPosition = source.Vec3{X: v.D3[0], Y: v.D3[1], Z: v.D3[2]}
		}
	}
}

// SetGain sets a source's output gain, ramped smoothly over the next block
// by source.Base's built-in gain ramp.
func (c *Context) SetGain(h Handle, gain float64) error {
	se, err := c.lookupSource(h)
	if err != nil {
		return err
	}
	return propErr(se.props.Set(TagGain, property.Value{Kind: property.KindDouble, D: gain}))
}

// Gain returns a source's most recently set gain.
func (c *Context) Gain(h Handle) (float64, error) {
	se, err := c.lookupSource(h)
	if err != nil {
		return 0, err
	}
	v, err := se.props.Get(TagGain)
	return v.D, propErr(err)
}

// SetPan sets a panned source's stereo position in [-1, 1]; only valid for
// sources created with CreatePannedSource.
func (c *Context) SetPan(h Handle, pan float64) error {
	se, err := c.lookupSource(h)
	if err != nil {
		return err
	}
	return propErr(se.props.Set(TagPan, property.Value{Kind: property.KindDouble, D: pan}))
}

// SetPosition sets a 3D source's position, in the same space as the
// listener position (the spatializer subtracts the listener position
// itself); only valid for sources created with CreateSource3D.
func (c *Context) SetPosition(h Handle, x, y, z float64) error {
	se, err := c.lookupSource(h)
	if err != nil {
		return err
	}
	return propErr(se.props.Set(TagPosition, property.Value{Kind: property.KindDouble3, D3: [3]float64{x, y, z}}))
}

// SetListenerPosition sets the listener position a 3D source's distance
// model and azimuth/elevation are computed relative to.
func (c *Context) SetListenerPosition(h Handle, x, y, z float64) error {
	se, err := c.lookupSource(h)
	if err != nil {
		return err
	}
	return propErr(se.props.Set(TagListener, property.Value{Kind: property.KindDouble3, D3: [3]float64{x, y, z}}))
}

func propErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, property.ErrUnknownProperty):
		return ErrUnknownProperty
	case errors.Is(err, property.ErrPropertyTypeMismatch):
		return ErrPropertyTypeMismatch
	default:
		return wrapError(InvalidPropertyValue, "property rejected", err)
	}
}

func (c *Context) lookupSource(h Handle) (*sourceEntry, error) {
	v, err := c.handles.lookup(h, kindSource)
	if err != nil {
		return nil, err
	}
	return v.(*sourceEntry), nil
}

func (c *Context) lookupEffect(h Handle) (*effectEntry, error) {
	v, err := c.handles.lookup(h, kindEffect)
	if err != nil {
		return nil, err
	}
	return v.(*effectEntry), nil
}

// CreateDirectSource creates a source that sums verbatim into the master
// bus with no panning or distance attenuation.
func (c *Context) CreateDirectSource(channels int) (Handle, error) {
	return c.newSource(channels, directSchema(), func(se *sourceEntry) {
		se.base.Spatializer = source.DirectSpatializer{}
	})
}

// CreatePannedSource creates a source spatialized with equal-power stereo
// panning, driven by the TagPan property.
func (c *Context) CreatePannedSource(channels int) (Handle, error) {
	return c.newSource(channels, panSchema(), func(se *sourceEntry) {
		voice := c.bank.AcquireStereo()
		if voice == nil {
			slog.Warn("syzcore: stereo voice pool exhausted, allocating outside the bank")
			voice = &panner.StereoVoice{}
		} else {
			se.pooled = true
		}
		se.stereoV = voice
		se.base.Spatializer = source.NewPannedSpatializer(voice, BlockSize)
	})
}

// CreateSource3D creates a source spatialized with HRTF binaural
// convolution and distance attenuation, driven by the TagPosition and
// TagListener properties.
func (c *Context) CreateSource3D(channels int) (Handle, error) {
	return c.newSource(channels, source3DSchema(), func(se *sourceEntry) {
		voice := c.bank.AcquireHRTF()
		if voice == nil {
			slog.Warn("syzcore: HRTF voice pool exhausted, allocating outside the bank")
			voice = panner.NewHRTFVoice(dataset(), BlockSize)
		} else {
			se.pooled = true
		}
		se.hrtfV = voice
		spat := source.NewSource3DSpatializer(voice, BlockSize)
		se.spat3D = spat
		se.base.Spatializer = spat
	})
}

func (c *Context) newSource(channels int, schema property.Schema, configure func(*sourceEntry)) (Handle, error) {
	if channels < 1 || channels > MaxChannels {
		return 0, newError(InvalidPropertyValue, "channel count out of range")
	}
	se := &sourceEntry{
		id:    c.allocObjectID(),
		base:  source.NewBase(channels, BlockSize, nil),
		props: property.NewBlock(schema),
		bank:  c.bank,
	}
	configure(se)
	se.handle = c.handles.allocate(kindSource, se)

	c.cmdQueue.Push(func() {
		c.sources = append(c.sources, se)
	})
	return se.handle, nil
}

// AttachGenerator adds genHandle's generator to sourceHandle's mix list.
// The generator handle is retained for the lifetime of the attachment and
// released when the source is destroyed.
func (c *Context) AttachGenerator(sourceHandle, genHandle Handle) error {
	se, err := c.lookupSource(sourceHandle)
	if err != nil {
		return err
	}
	gv, err := c.handles.lookup(genHandle, kindGenerator)
	if err != nil {
		return err
	}
	g, ok := gv.(generator.Generator)
	if !ok {
		return newError(InternalError, "handle is not a Generator")
	}
	c.handles.retain(genHandle)
	c.cmdQueue.Push(func() {
		se.base.Generators = append(se.base.Generators, g)
		se.attached = append(se.attached, genHandle)
		if sg, ok := g.(*generator.StreamingGenerator); ok {
			se.streams = append(se.streams, sg)
		}
	})
	return nil
}

// CreateBufferGenerator creates a generator playing back decoded PCM data
// in memory; data must be channels-channel interleaved float32.
func (c *Context) CreateBufferGenerator(data []float32, channels int) Handle {
	buf := generator.NewBuffer(data, channels)
	g := generator.NewBufferGenerator(buf)
	return c.handles.allocate(kindGenerator, g)
}

// SetBufferLooping sets whether a buffer generator loops at the end of its
// data instead of finishing.
func (c *Context) SetBufferLooping(h Handle, looping bool) error {
	v, err := c.handles.lookup(h, kindGenerator)
	if err != nil {
		return err
	}
	g, ok := v.(*generator.BufferGenerator)
	if !ok {
		return newError(InvalidPropertyValue, "handle is not a buffer generator")
	}
	c.cmdQueue.Push(func() { g.Looping = looping })
	return nil
}

// CreateStreamingGenerator creates a generator that pulls decoded audio
// from filler on a background goroutine, per the spec's ring-buffered
// streaming-playback contract.
func (c *Context) CreateStreamingGenerator(filler generator.FrameFiller, channels int) Handle {
	g := generator.NewStreamingGenerator(filler, channels)
	return c.handles.allocate(kindGenerator, g)
}

// CreateNoiseGenerator creates a white, filtered-1/f, or Voss-McCartney
// pink noise generator, seeded from seed for reproducible output.
func (c *Context) CreateNoiseGenerator(kind generator.NoiseKind, channels int, seed int64) Handle {
	g := generator.NewNoiseGenerator(kind, channels, seed)
	return c.handles.allocate(kindGenerator, g)
}

// CreateSineBankGenerator creates an additive sine-bank generator from
// partial frequencies (Hz) and amplitudes.
func (c *Context) CreateSineBankGenerator(freqsHz []float64, amps []float32, sigmaSmoothing bool) Handle {
	normalized := make([]float64, len(freqsHz))
	for i, f := range freqsHz {
		normalized[i] = f / SampleRate
	}
	g := generator.NewFastSineBank(normalized, amps, sigmaSmoothing)
	return c.handles.allocate(kindGenerator, g)
}

// CreateEcho creates an Echo effect whose delay memory can address up to
// maxDelayFrames of history.
func (c *Context) CreateEcho(maxDelayFrames int) Handle {
	e := effect.NewEcho(maxDelayFrames)
	return c.newEffect(e)
}

// SetEchoTaps reconfigures an Echo's tap list.
func (c *Context) SetEchoTaps(h Handle, taps []effect.EchoTap) error {
	fe, err := c.lookupEffect(h)
	if err != nil {
		return err
	}
	e, ok := fe.effect.(*effect.Echo)
	if !ok {
		return newError(InvalidPropertyValue, "handle is not an Echo")
	}
	c.cmdQueue.Push(func() { e.SetTaps(taps) })
	return nil
}

// CreateReverb creates a feedback-delay-network Reverb tuned for t60
// seconds of decay time.
func (c *Context) CreateReverb(t60 float64) Handle {
	r := effect.NewReverb(SampleRate, t60)
	return c.newEffect(r)
}

// SetReverbT60 retunes a Reverb's decay time.
func (c *Context) SetReverbT60(h Handle, t60 float64) error {
	fe, err := c.lookupEffect(h)
	if err != nil {
		return err
	}
	r, ok := fe.effect.(*effect.Reverb)
	if !ok {
		return newError(InvalidPropertyValue, "handle is not a Reverb")
	}
	c.cmdQueue.Push(func() { r.SetT60(t60) })
	return nil
}

func (c *Context) newEffect(e spatialEffect) Handle {
	fe := &effectEntry{id: c.allocObjectID(), effect: e}
	fe.handle = c.handles.allocate(kindEffect, fe)
	c.cmdQueue.Push(func() {
		c.effects[fe.id] = fe
	})
	return fe.handle
}

// ConfigRoute creates or retargets the route from sourceHandle to
// effectHandle, ramped to gain over fadeSeconds seconds. Passing
// fadeSeconds <= 0 uses the router's default fade length instead.
func (c *Context) ConfigRoute(sourceHandle, effectHandle Handle, gain float32, fadeSeconds float64) error {
	se, err := c.lookupSource(sourceHandle)
	if err != nil {
		return err
	}
	fe, err := c.lookupEffect(effectHandle)
	if err != nil {
		return err
	}
	fadeBlocks := fadeBlocksFromSeconds(fadeSeconds)
	c.cmdQueue.Push(func() {
		c.router.ConfigRoute(se.id, fe.id, gain, fadeBlocks)
	})
	return nil
}

// RemoveRoute fades out over fadeSeconds seconds and then removes the
// route from sourceHandle to effectHandle. Passing fadeSeconds <= 0 uses
// the router's default fade length instead.
func (c *Context) RemoveRoute(sourceHandle, effectHandle Handle, fadeSeconds float64) error {
	se, err := c.lookupSource(sourceHandle)
	if err != nil {
		return err
	}
	fe, err := c.lookupEffect(effectHandle)
	if err != nil {
		return err
	}
	fadeBlocks := fadeBlocksFromSeconds(fadeSeconds)
	c.cmdQueue.Push(func() {
		c.router.RemoveRoute(se.id, fe.id, fadeBlocks)
	})
	return nil
}

// fadeBlocksFromSeconds converts a fade_time_seconds route attribute to a
// whole number of audio blocks, rounding to the nearest block; <= 0 means
// "use the router's default" and is passed through unconverted.
func fadeBlocksFromSeconds(fadeSeconds float64) int {
	if fadeSeconds <= 0 {
		return 0
	}
	return int(math.Round(fadeSeconds * SampleRate / BlockSize))
}

// Release decrements h's reference count, destroying the underlying
// object on the deferred-deletion goroutine once it reaches zero. Source
// and effect handles are additionally removed from the live tick graph on
// the audio thread before teardown runs.
func (c *Context) Release(h Handle) error {
	kind, ok := c.handles.kindOf(h)
	if !ok {
		return newError(InvalidHandle, "handle does not exist")
	}
	switch kind {
	case kindSource:
		c.cmdQueue.Push(func() {
			c.removeSource(h)
			c.handles.release(h, c.collector)
		})
	case kindEffect:
		c.cmdQueue.Push(func() {
			c.removeEffect(h)
			c.handles.release(h, c.collector)
		})
	default:
		c.handles.release(h, c.collector)
	}
	return nil
}

func (c *Context) removeSource(h Handle) {
	for i, se := range c.sources {
		if se.handle != h {
			continue
		}
		c.router.RemoveAllRoutes(se.id, 0)
		for _, gh := range se.attached {
			c.handles.release(gh, c.collector)
		}
		c.sources = append(c.sources[:i], c.sources[i+1:]...)
		return
	}
}

func (c *Context) removeEffect(h Handle) {
	for id, fe := range c.effects {
		if fe.handle != h {
			continue
		}
		c.router.RemoveAllRoutes(0, id)
		delete(c.effects, id)
		return
	}
}
