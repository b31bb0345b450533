package property

import (
	"errors"
	"sync"
	"testing"
)

const (
	tagGain Tag = iota
	tagLooping
	tagPosition
)

func testSchema() Schema {
	return Schema{
		tagGain: {
			Kind:    KindDouble,
			Default: Value{Kind: KindDouble, D: 1.0},
			Validator: func(v Value) error {
				if v.D < 0 {
					return errors.New("gain must be non-negative")
				}
				return nil
			},
		},
		tagLooping: {
			Kind:    KindBool,
			Default: Value{Kind: KindBool, B: false},
		},
		tagPosition: {
			Kind:    KindDouble3,
			Default: Value{Kind: KindDouble3},
		},
	}
}

func TestBlock_UnknownTagRejected(t *testing.T) {
	b := NewBlock(testSchema())
	if err := b.Set(Tag(999), Value{Kind: KindDouble, D: 1}); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
	if _, err := b.Get(Tag(999)); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty from Get, got %v", err)
	}
}

func TestBlock_TypeMismatchRejected(t *testing.T) {
	b := NewBlock(testSchema())
	if err := b.Set(tagGain, Value{Kind: KindBool, B: true}); !errors.Is(err, ErrPropertyTypeMismatch) {
		t.Fatalf("expected ErrPropertyTypeMismatch, got %v", err)
	}
}

func TestBlock_ValidatorRejectsInvalidValue(t *testing.T) {
	b := NewBlock(testSchema())
	if err := b.Set(tagGain, Value{Kind: KindDouble, D: -1}); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Fatalf("expected ErrInvalidPropertyValue, got %v", err)
	}
	// Rejected set must not have moved the shadow slot.
	v, _ := b.Get(tagGain)
	if v.D != 1.0 {
		t.Fatalf("shadow value changed despite rejected set: %v", v.D)
	}
}

func TestBlock_SetVisibleImmediatelyViaShadow(t *testing.T) {
	b := NewBlock(testSchema())
	if err := b.Set(tagGain, Value{Kind: KindDouble, D: 0.5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := b.Get(tagGain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.D != 0.5 {
		t.Fatalf("expected immediate shadow visibility, got %v", v.D)
	}
}

func TestBlock_DrainAppliesInOrderToAudioView(t *testing.T) {
	b := NewBlock(testSchema())
	b.Set(tagGain, Value{Kind: KindDouble, D: 0.2})
	b.Set(tagGain, Value{Kind: KindDouble, D: 0.4})
	b.Set(tagGain, Value{Kind: KindDouble, D: 0.6})

	b.Drain()
	v, ok := b.AudioGet(tagGain)
	if !ok {
		t.Fatal("expected audio view to contain tagGain")
	}
	if v.D != 0.6 {
		t.Fatalf("expected last queued value to win, got %v", v.D)
	}
}

func TestBlock_AudioPublishWinsOverStaleShadowButLosesToNewerSet(t *testing.T) {
	b := NewBlock(testSchema())
	b.AudioPublish(tagGain, Value{Kind: KindDouble, D: 0.3})
	v, _ := b.Get(tagGain)
	if v.D != 0.3 {
		t.Fatalf("expected audio publish visible via shadow, got %v", v.D)
	}

	// An external Set during the same tick must win when it happens after
	// the audio thread's publish, per the resolved ordering rule.
	b.Set(tagGain, Value{Kind: KindDouble, D: 0.9})
	v, _ = b.Get(tagGain)
	if v.D != 0.9 {
		t.Fatalf("expected external set to win over stale audio publish, got %v", v.D)
	}
}

func TestBlock_ConcurrentSetsNeverPanic(t *testing.T) {
	b := NewBlock(testSchema())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Set(tagGain, Value{Kind: KindDouble, D: float64(n)})
			}
		}(i)
	}
	wg.Wait()
	b.Drain()
	if _, ok := b.AudioGet(tagGain); !ok {
		t.Fatal("expected a value to be present after concurrent sets")
	}
}
