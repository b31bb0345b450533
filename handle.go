package syzcore

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/intuitionamiga/syzcore/internal/command"
)

// Handle is an opaque reference, unique within one Context, to a Source,
// Generator, or Effect; Contexts and buffers are not given handles.
// Handles are reference-counted: Release on
// the last reference schedules teardown on the deferred-deletion
// goroutine rather than running it inline, so no destructor ever runs on
// the audio thread or blocks the releasing caller.
type Handle uint64

type handleEntry struct {
	kind     string
	refcount int64
	value    any
}

// handleTable is the per-Context table backing every Handle. One table
// is shared by a Context and everything it creates.
type handleTable struct {
	mu      sync.Mutex
	next    uint64
	entries map[Handle]*handleEntry
}

func newHandleTable() *handleTable {
	return &handleTable{entries: make(map[Handle]*handleEntry)}
}

func (t *handleTable) allocate(kind string, value any) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	h := Handle(t.next)
	t.entries[h] = &handleEntry{kind: kind, refcount: 1, value: value}
	return h
}

// kindOf reports the kind a handle was allocated with, for callers that
// need to dispatch on type before doing a kind-checked lookup.
func (t *handleTable) kindOf(h Handle) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[h]
	if !ok {
		return "", false
	}
	return e.kind, true
}

func (t *handleTable) lookup(h Handle, kind string) (any, error) {
	t.mu.Lock()
	e, ok := t.entries[h]
	t.mu.Unlock()
	if !ok {
		return nil, wrapError(InvalidHandle, fmt.Sprintf("handle %d does not exist", h), nil)
	}
	if e.kind != kind {
		return nil, wrapError(InvalidHandle, fmt.Sprintf("handle %d is a %s, not a %s", h, e.kind, kind), nil)
	}
	return e.value, nil
}

func (t *handleTable) retain(h Handle) {
	t.mu.Lock()
	e, ok := t.entries[h]
	t.mu.Unlock()
	if ok {
		atomic.AddInt64(&e.refcount, 1)
	}
}

// release decrements h's reference count. At zero it removes the entry
// and, if its value implements command.Disposer, hands it to collector
// for background teardown.
func (t *handleTable) release(h Handle, collector *command.Collector) {
	t.mu.Lock()
	e, ok := t.entries[h]
	if !ok {
		t.mu.Unlock()
		return
	}
	remaining := atomic.AddInt64(&e.refcount, -1)
	if remaining <= 0 {
		delete(t.entries, h)
	}
	t.mu.Unlock()

	if remaining <= 0 {
		if d, ok := e.value.(command.Disposer); ok {
			collector.Retire(d)
		}
	}
}
