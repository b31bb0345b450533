package syzcore

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/intuitionamiga/syzcore/backend"
	"github.com/intuitionamiga/syzcore/internal/bus"
	"github.com/intuitionamiga/syzcore/internal/command"
	"github.com/intuitionamiga/syzcore/internal/generator"
	"github.com/intuitionamiga/syzcore/internal/hrtfdata"
	"github.com/intuitionamiga/syzcore/internal/panner"
	"github.com/intuitionamiga/syzcore/internal/property"
	"github.com/intuitionamiga/syzcore/internal/router"
	"github.com/intuitionamiga/syzcore/internal/source"
)

const (
	kindSource    = "source"
	kindGenerator = "generator"
	kindEffect    = "effect"
)

// sharedDataset is the process-wide, immutable HRTF dataset every Context
// shares, generated once. Per the spec's global-state note, the dataset
// is loaded (here, synthesized) once and never mutated.
var (
	sharedDataset     *hrtfdata.Dataset
	sharedDatasetOnce sync.Once
)

func dataset() *hrtfdata.Dataset {
	sharedDatasetOnce.Do(func() {
		sharedDataset = hrtfdata.Generate(32, 36, 9)
	})
	return sharedDataset
}

// spatialEffect is the interface effect.Echo and effect.Reverb both
// satisfy through embedding effect.Base, letting the scheduler treat
// every effect type uniformly.
type spatialEffect interface {
	InputBus() *bus.Bus
	ZeroInput()
	Process(out *bus.Bus)
}

type sourceEntry struct {
	id      router.ObjectID
	base    *source.Base
	props   *property.Block
	stereoV *panner.StereoVoice // set whenever a panned source is active, pooled or not
	hrtfV   *panner.HRTFVoice   // set whenever a 3D source is active, pooled or not
	pooled  bool                // whether stereoV/hrtfV came from bank and must be returned on Dispose
	spat3D  *source.Source3DSpatializer
	streams  []*generator.StreamingGenerator
	attached []Handle // generator handles retained while attached, released by removeSource
	handle   Handle
	bank     *panner.Bank
}

// Dispose releases any pooled voice back to the bank and stops background
// decode goroutines. Runs on the deferred-deletion goroutine, never the
// audio thread.
func (e *sourceEntry) Dispose() {
	for _, s := range e.streams {
		s.Close()
	}
	if !e.pooled {
		return
	}
	if e.stereoV != nil {
		e.bank.ReleaseStereo(e.stereoV)
	}
	if e.hrtfV != nil {
		e.bank.ReleaseHRTF(e.hrtfV)
	}
}

type effectEntry struct {
	id     router.ObjectID
	effect spatialEffect
	handle Handle
}

func (e *effectEntry) Dispose() {}

// Context is an audio-producing graph tied to an output device. It owns
// every Source, Generator, and Effect created from it, and runs the
// block-rate mixing graph on a single dedicated goroutine.
type Context struct {
	backend  backend.AudioBackend
	channels int

	handles   *handleTable
	cmdQueue  *command.Queue
	collector *command.Collector
	router    *router.Router
	bank      *panner.Bank

	sources []*sourceEntry
	effects map[router.ObjectID]*effectEntry

	nextObjectID atomic.Uint64

	master bus.Bus

	events chan Event

	tickSignal chan struct{}
	stopCh     chan struct{}
	stoppedCh  chan struct{}
	stopOnce   sync.Once
}

// NewContext creates a Context producing channels-channel audio and
// starts its audio thread, wiring backend as the device boundary.
func NewContext(be backend.AudioBackend, channels int) (*Context, error) {
	if channels < 1 || channels > MaxChannels {
		return nil, newError(InvalidPropertyValue, fmt.Sprintf("channel count %d out of range", channels))
	}

	ctx := &Context{
		backend:    be,
		channels:   channels,
		handles:    newHandleTable(),
		cmdQueue:   command.NewQueue(0),
		collector:  command.NewCollector(),
		router:     router.New(0),
		bank:       panner.NewBank(dataset(), 32, 16, BlockSize),
		effects:    make(map[router.ObjectID]*effectEntry),
		master:     bus.New(channels, BlockSize),
		events:     make(chan Event, 256),
		tickSignal: make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}

	if err := be.Start(SampleRate, channels, ctx.signalTick); err != nil {
		ctx.collector.Close()
		return nil, wrapError(InternalError, "starting audio backend", err)
	}

	go ctx.run()
	return ctx, nil
}

// signalTick is called by the backend, from any goroutine, whenever it
// wants another block. It never blocks: at most one pending tick request
// is ever queued, coalescing bursts the way the ring's readSignal does.
func (c *Context) signalTick() {
	select {
	case c.tickSignal <- struct{}{}:
	default:
	}
}

// Events returns the channel events are posted to. Reading from it is
// optional; a client that never reads simply misses events once the
// channel's buffer fills, per the audio thread's never-block guarantee.
func (c *Context) Events() <-chan Event { return c.events }

func (c *Context) run() {
	defer close(c.stoppedCh)
	for {
		select {
		case <-c.stopCh:
			c.shutdown()
			return
		case <-c.tickSignal:
			c.tick()
		}
	}
}

func (c *Context) tick() {
	c.cmdQueue.Drain()

	c.master.Zero()
	for _, e := range c.effects {
		e.effect.ZeroInput()
	}

	for _, se := range c.sources {
		se.props.Drain()
		c.applySourceProperties(se)
		se.base.Tick(&c.master)
		c.postGeneratorEvents(se)
	}

	c.router.Process(func(srcID, fxID router.ObjectID, gainStart, gainEnd float32) {
		se := c.sourceByID(srcID)
		fe := c.effects[fxID]
		if se == nil || fe == nil {
			return
		}
		router.MixChannels(fe.effect.InputBus(), se.base.LastBus(), gainStart, gainEnd)
	})
	c.router.FinishBlock()

	for _, e := range c.effects {
		e.effect.Process(&c.master)
	}

	if err := c.backend.Submit(c.master.Data, BlockSize); err != nil {
		slog.Warn("syzcore: backend submit failed", "error", err)
	}
}

func (c *Context) postGeneratorEvents(se *sourceEntry) {
	for _, g := range se.base.Generators {
		switch gv := g.(type) {
		case *generator.BufferGenerator:
			if gv.Finished {
				c.postEvent(Event{Kind: EventFinished, Source: se.handle})
			}
		case *generator.StreamingGenerator:
			if gv.Underflowed {
				c.postEvent(Event{Kind: EventUnderflow, Source: se.handle})
			}
		}
	}
}

func (c *Context) postEvent(ev Event) {
	select {
	case c.events <- ev:
	default:
		slog.Warn("syzcore: event channel full, dropping event", "kind", ev.Kind)
	}
}

func (c *Context) sourceByID(id router.ObjectID) *sourceEntry {
	for _, s := range c.sources {
		if s.id == id {
			return s
		}
	}
	return nil
}

// Shutdown posts a shutdown command and blocks until the audio thread has
// finished its in-flight tick, drained pending deletions, and stopped the
// backend. Safe to call multiple times.
func (c *Context) Shutdown() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.signalTick() // wake the run loop if it's parked waiting for a tick
	})
	<-c.stoppedCh
}

func (c *Context) shutdown() {
	c.cmdQueue.Drain()
	if err := c.backend.Stop(); err != nil {
		slog.Warn("syzcore: backend stop failed", "error", err)
	}
	c.collector.Close()
}

func (c *Context) allocObjectID() router.ObjectID {
	return router.ObjectID(c.nextObjectID.Add(1))
}
