// Package property implements the cross-thread property protocol: typed
// get/set on a per-object basis, delivered from any caller goroutine to the
// audio goroutine without the audio goroutine ever blocking, and read back
// from any caller goroutine via a linearizable shadow slot.
//
// Properties are addressed by a small integer Tag, shared across object
// kinds the way the original implementation's SYZ_P_* enum is: a tag's
// validity for a given object is checked against that object's Schema, not
// against the tag space itself.
package property

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Tag identifies a property within an object's schema.
type Tag int

// Kind is a property's value type.
type Kind int

const (
	KindDouble Kind = iota
	KindInt
	KindBool
	KindDouble3
	KindDouble6
	KindBiquad
)

// Biquad mirrors filter.Config's shape without importing package filter,
// so property stays a low-level, dependency-free package; syzcore converts
// at the boundary.
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
	Gain       float64
}

// Value is a tagged union big enough to hold any supported property type,
// sized so a queue entry never needs a heap allocation.
type Value struct {
	Kind   Kind
	D      float64
	I      int64
	B      bool
	D3     [3]float64
	D6     [6]float64
	Biquad Biquad
}

// Validator checks a prospective value before it is queued. It runs on the
// calling (setting) thread, never on the audio thread.
type Validator func(Value) error

// FieldDesc describes one property slot in an object's Schema.
type FieldDesc struct {
	Kind      Kind
	Validator Validator
	Default   Value
}

// Schema is the data-driven table of properties an object type supports,
// replacing the original per-object-type property-definition macros with
// a single generic table walked by Get/Set.
type Schema map[Tag]FieldDesc

// ErrUnknownProperty and friends identify protocol failures by sentinel so
// callers can branch with errors.Is.
var (
	ErrUnknownProperty      = fmt.Errorf("property: unknown tag for this object type")
	ErrPropertyTypeMismatch = fmt.Errorf("property: value kind does not match schema")
	ErrInvalidPropertyValue = fmt.Errorf("property: value rejected by validator")
)

const queueCapacity = 64

type queueEntry struct {
	tag   Tag
	value Value
}

// Block is the per-object property state: the MPSC queue (one per object,
// shared by every tag) drained
// once per audio tick, the audio-thread view authoritative during a tick,
// and the shadow slot external Get calls read from. The queue is a
// channel, not a mutex-guarded slice, so the audio thread's Drain never
// waits on a lock an external Set call might be holding — the same
// lock-free handoff package command uses for its cross-thread queue.
type Block struct {
	schema Schema

	queue chan queueEntry // any goroutine sends, only the audio thread receives

	audioView map[Tag]Value

	shadow sync.Map // Tag -> *atomicValue
}

// atomicValue guards a Value behind a mutex; Value contains a non-atomic
// array payload (D3/D6) so a plain atomic.Pointer would still need to
// allocate on every publish, which is fine off the audio thread but we
// reuse one instance per tag regardless to avoid map growth churn.
type atomicValue struct {
	mu sync.RWMutex
	v  Value
}

func (a *atomicValue) store(v Value) {
	a.mu.Lock()
	a.v = v
	a.mu.Unlock()
}

func (a *atomicValue) load() Value {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.v
}

// NewBlock creates a property block for an object governed by schema. The
// audio-thread view and shadow slots are seeded from each field's default.
func NewBlock(schema Schema) *Block {
	b := &Block{
		schema:    schema,
		queue:     make(chan queueEntry, queueCapacity),
		audioView: make(map[Tag]Value, len(schema)),
	}
	for tag, desc := range schema {
		b.audioView[tag] = desc.Default
		av := &atomicValue{v: desc.Default}
		b.shadow.Store(tag, av)
	}
	return b
}

// Set validates and enqueues a new value for tag, to be observed by the
// audio thread on its next tick. It never runs on the audio thread's
// behalf and never waits on a lock the audio thread might hold — this is
// the external-thread side of the protocol. It blocks only if queueCapacity
// pending sets for this object are already unconsumed, the same
// back-pressure package command accepts for its own cross-thread queue.
func (b *Block) Set(tag Tag, v Value) error {
	desc, ok := b.schema[tag]
	if !ok {
		return ErrUnknownProperty
	}
	if v.Kind != desc.Kind {
		return ErrPropertyTypeMismatch
	}
	if desc.Validator != nil {
		if err := desc.Validator(v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPropertyValue, err)
		}
	}

	b.queue <- queueEntry{tag: tag, value: v}

	// Publish to the shadow slot immediately so a Get from the same or a
	// different thread observes this value even before the next tick —
	// satisfying "linearizable reads... consistent with some total order
	// of concurrent sets" without waiting on the audio thread.
	b.shadowFor(tag).store(v)
	return nil
}

// Get reads the most recently published value for tag from the shadow
// slot. It is safe to call from any thread and never blocks on the audio
// thread.
func (b *Block) Get(tag Tag) (Value, error) {
	if _, ok := b.schema[tag]; !ok {
		return Value{}, ErrUnknownProperty
	}
	return b.shadowFor(tag).load(), nil
}

func (b *Block) shadowFor(tag Tag) *atomicValue {
	if v, ok := b.shadow.Load(tag); ok {
		return v.(*atomicValue)
	}
	av := &atomicValue{}
	actual, _ := b.shadow.LoadOrStore(tag, av)
	return actual.(*atomicValue)
}

// Drain is called exactly once at the start of each audio tick. It applies
// every queued Set in issue order to the audio-thread view, which is then
// authoritative (stable, read-many-times-same-value) for the remainder of
// the tick. It must only be called from the audio goroutine, and never
// blocks: once the queue is observed empty it returns.
func (b *Block) Drain() {
	for {
		select {
		case e := <-b.queue:
			b.audioView[e.tag] = e.value
		default:
			return
		}
	}
}

// AudioGet reads the stable, tick-local value of tag. It must only be
// called from the audio goroutine, during a tick, after Drain.
func (b *Block) AudioGet(tag Tag) (Value, bool) {
	v, ok := b.audioView[tag]
	return v, ok
}

// AudioPublish is how the audio thread reports a value it computed (e.g.
// advancing playback position) back out to external Get callers. It
// writes the audio-thread view and the shadow slot immediately, so Get
// returns whichever of AudioPublish and Set wrote the shadow slot last.
// Context.tick does not call it.
func (b *Block) AudioPublish(tag Tag, v Value) {
	b.audioView[tag] = v
	b.shadowFor(tag).store(v)
}

var atomicGen atomic.Uint64

// NextGeneration is a monotonically increasing counter exposed for tests
// that want to observe "which set happened most recently" without relying
// on wall-clock time.
func NextGeneration() uint64 { return atomicGen.Add(1) }
