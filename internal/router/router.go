// Package router implements the source-to-effect routing matrix: which
// sources feed which effects, at what gain, with linear fade-in/fade-out
// ramps whenever a route is added, changed, or removed — so routing
// changes never produce an audible click.
package router

import (
	"sort"

	"github.com/intuitionamiga/syzcore/internal/bus"
)

// ObjectID identifies a source or an effect for routing purposes. The
// router doesn't care which concrete type an ID names; that's the caller's
// business.
type ObjectID uint64

// defaultFadeBlocks is how many audio blocks a gain change ramps over,
// matching the original implementation's default crossfade time expressed
// in blocks instead of seconds.
const defaultFadeBlocks = 10

// gainDriver linearly ramps currentGain toward targetGain over fadeBlocks
// calls to Step, generalizing the original FadeDriver template to a plain
// struct since Go has no lightweight callback-driven template equivalent
// worth reproducing for a per-sample loop this simple.
type gainDriver struct {
	current    float32
	target     float32
	fadeBlocks int
	remaining  int
}

func newGainDriver(initial float32) gainDriver {
	return gainDriver{current: initial, target: initial}
}

// setTarget begins a ramp toward target over fadeBlocks blocks. Setting a
// target equal to the current target is a no-op, so re-configuring a route
// to the same gain doesn't restart a ramp already in flight.
func (g *gainDriver) setTarget(target float32, fadeBlocks int) {
	if target == g.target {
		return
	}
	g.target = target
	g.fadeBlocks = fadeBlocks
	g.remaining = fadeBlocks
}

// step advances the ramp by one block and returns the gain at the start and
// end of that block, so the caller can interpolate per sample across the
// block instead of applying one scalar to the whole thing.
func (g *gainDriver) step() (start, end float32) {
	start = g.current
	if g.remaining <= 0 {
		g.current = g.target
		return start, g.current
	}
	delta := (g.target - g.current) / float32(g.remaining)
	g.current += delta
	g.remaining--
	return start, g.current
}

// idle reports whether the ramp has settled at zero gain and the route can
// be pruned.
func (g *gainDriver) idle() bool {
	return g.remaining <= 0 && g.current == 0 && g.target == 0
}

// route is one configured source->effect edge.
type route struct {
	source ObjectID
	effect ObjectID
	gain   gainDriver
	dying  bool // removed by the caller, ramping to zero before pruning
}

// Router owns every configured route. Routes are kept sorted by
// (source, effect) so ConfigRoute/RemoveRoute can binary-search instead of
// scanning, mirroring the original's std::lower_bound-based Router.
type Router struct {
	routes     []route
	fadeBlocks int
}

// New creates an empty router. fadeBlocks overrides the default fade
// length in blocks; pass 0 to use the default.
func New(fadeBlocks int) *Router {
	if fadeBlocks <= 0 {
		fadeBlocks = defaultFadeBlocks
	}
	return &Router{fadeBlocks: fadeBlocks}
}

func (r *Router) search(source, effect ObjectID) (int, bool) {
	i := sort.Search(len(r.routes), func(i int) bool {
		rt := r.routes[i]
		if rt.source != source {
			return rt.source >= source
		}
		return rt.effect >= effect
	})
	if i < len(r.routes) && r.routes[i].source == source && r.routes[i].effect == effect {
		return i, true
	}
	return i, false
}

// ConfigRoute creates or retargets the route from source to effect, ramping
// to gain over fadeBlocks blocks. Passing fadeBlocks <= 0 uses the router's
// default fade length instead.
func (r *Router) ConfigRoute(source, effect ObjectID, gain float32, fadeBlocks int) {
	if fadeBlocks <= 0 {
		fadeBlocks = r.fadeBlocks
	}
	i, found := r.search(source, effect)
	if found {
		rt := &r.routes[i]
		rt.dying = false
		rt.gain.setTarget(gain, fadeBlocks)
		return
	}
	rt := route{source: source, effect: effect, gain: newGainDriver(0)}
	rt.gain.setTarget(gain, fadeBlocks)
	r.routes = append(r.routes, route{})
	copy(r.routes[i+1:], r.routes[i:])
	r.routes[i] = rt
}

// RemoveRoute begins fading the named route to zero gain over fadeBlocks
// blocks (or the router's default fade length if fadeBlocks <= 0); it is
// pruned on a later FinishBlock once the fade completes, so in-flight audio
// never clicks off.
func (r *Router) RemoveRoute(source, effect ObjectID, fadeBlocks int) {
	if fadeBlocks <= 0 {
		fadeBlocks = r.fadeBlocks
	}
	i, found := r.search(source, effect)
	if !found {
		return
	}
	rt := &r.routes[i]
	rt.dying = true
	rt.gain.setTarget(0, fadeBlocks)
}

// RemoveAllRoutes begins fading out every route from source, or every
// route into effect if source is zero and effect is non-zero. Passing both
// zero is a no-op; callers that want to clear everything should enumerate.
func (r *Router) RemoveAllRoutes(source, effect ObjectID) {
	if source == 0 && effect == 0 {
		return
	}
	for i := range r.routes {
		rt := &r.routes[i]
		if source != 0 && rt.source != source {
			continue
		}
		if effect != 0 && rt.effect != effect {
			continue
		}
		rt.dying = true
		rt.gain.setTarget(0, r.fadeBlocks)
	}
}

// RouteFunc is called once per active route during Process, in sorted
// order, receiving the gain at the start and end of this block so the
// caller can interpolate per sample rather than apply one scalar to the
// whole block.
type RouteFunc func(source, effect ObjectID, gainStart, gainEnd float32)

// Process invokes fn once per route that is not fully silent for this
// block, with the gain ramp's start/end values to apply across it. It must
// be called exactly once per audio tick, before FinishBlock.
func (r *Router) Process(fn RouteFunc) {
	for i := range r.routes {
		rt := &r.routes[i]
		start, end := rt.gain.step()
		if start == 0 && end == 0 && rt.gain.idle() {
			continue
		}
		fn(rt.source, rt.effect, start, end)
	}
}

// FinishBlock prunes routes that finished fading to zero. Call once per
// tick, after Process.
func (r *Router) FinishBlock() {
	kept := r.routes[:0]
	for _, rt := range r.routes {
		if rt.dying && rt.gain.idle() {
			continue
		}
		kept = append(kept, rt)
	}
	r.routes = kept
}

// MixChannels downmixes or upmixes src into dst using the mono/stereo/
// quad/5.1 weighting table from package bus, linearly interpolating the
// gain applied from gainStart at frame 0 to gainEnd at the last frame
// rather than applying one scalar across the whole block, per the spec's
// per-sample ramp requirement. Routes always accumulate into their
// destination effect's input bus rather than overwrite it, per the
// "effects zero, router accumulates" contract: effects zero their own
// input bus at the start of their tick, and every route into that effect
// adds on top.
func MixChannels(dst *bus.Bus, src bus.Bus, gainStart, gainEnd float32) {
	frames := dst.Frames()
	if sf := src.Frames(); sf < frames {
		frames = sf
	}
	denom := float32(frames - 1)
	bus.MixInto(dst, src, func(frame int, sample float32) float32 {
		var t float32
		if denom > 0 {
			t = float32(frame) / denom
		}
		gain := gainStart + (gainEnd-gainStart)*t
		return sample * gain
	})
}
