package syzcore

import (
	"math"
	"testing"

	"github.com/intuitionamiga/syzcore/backend"
	"github.com/intuitionamiga/syzcore/internal/effect"
	"github.com/intuitionamiga/syzcore/internal/generator"
)

func newTestContext(t *testing.T, channels int) (*Context, *backend.NullBackend) {
	t.Helper()
	be := backend.NewNullBackend()
	ctx, err := NewContext(be, channels)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Shutdown)
	return ctx, be
}

func TestContext_DirectSourceWithNoiseProducesNonSilentOutput(t *testing.T) {
	ctx, _ := newTestContext(t, 2)

	srcHandle, err := ctx.CreateDirectSource(2)
	if err != nil {
		t.Fatalf("CreateDirectSource: %v", err)
	}
	genHandle := ctx.CreateNoiseGenerator(generator.NoiseWhite, 2, 1)
	if err := ctx.AttachGenerator(srcHandle, genHandle); err != nil {
		t.Fatalf("AttachGenerator: %v", err)
	}
	if err := ctx.SetGain(srcHandle, 1); err != nil {
		t.Fatalf("SetGain: %v", err)
	}

	ctx.tick()

	var sumSq float64
	for _, v := range ctx.master.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("master contains non-finite sample %v", v)
		}
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		t.Fatal("expected non-silent master output from a direct noise source")
	}
}

func TestContext_GainOfZeroEventuallySilencesOutput(t *testing.T) {
	ctx, _ := newTestContext(t, 2)

	srcHandle, err := ctx.CreateDirectSource(2)
	if err != nil {
		t.Fatalf("CreateDirectSource: %v", err)
	}
	genHandle := ctx.CreateNoiseGenerator(generator.NoiseWhite, 2, 1)
	if err := ctx.AttachGenerator(srcHandle, genHandle); err != nil {
		t.Fatalf("AttachGenerator: %v", err)
	}
	if err := ctx.SetGain(srcHandle, 0); err != nil {
		t.Fatalf("SetGain: %v", err)
	}

	// Gain ramps from the default of 1 toward 0 across the first tick, then
	// settles; the second tick should be exactly silent.
	ctx.tick()
	ctx.tick()

	for _, v := range ctx.master.Data {
		if v != 0 {
			t.Fatalf("expected silence after gain settled at 0, got %v", v)
		}
	}
}

func TestContext_PannedSourceFullLeftPanSilencesRightChannel(t *testing.T) {
	ctx, _ := newTestContext(t, 2)

	srcHandle, err := ctx.CreatePannedSource(2)
	if err != nil {
		t.Fatalf("CreatePannedSource: %v", err)
	}
	genHandle := ctx.CreateNoiseGenerator(generator.NoiseWhite, 1, 7)
	if err := ctx.AttachGenerator(srcHandle, genHandle); err != nil {
		t.Fatalf("AttachGenerator: %v", err)
	}
	if err := ctx.SetPan(srcHandle, -1); err != nil {
		t.Fatalf("SetPan: %v", err)
	}

	ctx.tick()

	for f := 0; f < BlockSize; f++ {
		right := ctx.master.Data[f*2+1]
		if math.Abs(float64(right)) > 1e-5 {
			t.Fatalf("expected right channel near zero at full-left pan, got %v at frame %d", right, f)
		}
	}
}

func TestContext_RoutingThroughEchoKeepsOutputFinite(t *testing.T) {
	ctx, _ := newTestContext(t, 2)

	srcHandle, err := ctx.CreateDirectSource(2)
	if err != nil {
		t.Fatalf("CreateDirectSource: %v", err)
	}
	genHandle := ctx.CreateNoiseGenerator(generator.NoiseWhite, 2, 3)
	if err := ctx.AttachGenerator(srcHandle, genHandle); err != nil {
		t.Fatalf("AttachGenerator: %v", err)
	}

	fxHandle := ctx.CreateEcho(BlockSize * 4)
	if err := ctx.SetEchoTaps(fxHandle, []effect.EchoTap{
		{DelayFrames: BlockSize, GainL: 0.5, GainR: 0.5},
	}); err != nil {
		t.Fatalf("SetEchoTaps: %v", err)
	}
	if err := ctx.ConfigRoute(srcHandle, fxHandle, 1, 0); err != nil {
		t.Fatalf("ConfigRoute: %v", err)
	}

	// Fade-in takes the router's defaultFadeBlocks (10) ticks; run enough ticks that the
	// route is fully open and the echo has received at least one full block
	// of input to read back.
	for i := 0; i < 16; i++ {
		ctx.tick()
	}

	for _, v := range ctx.master.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("master contains non-finite sample %v after routing through echo", v)
		}
	}
}

func TestContext_ReleaseSourceStopsItContributingToFutureTicks(t *testing.T) {
	ctx, _ := newTestContext(t, 2)

	srcHandle, err := ctx.CreateDirectSource(2)
	if err != nil {
		t.Fatalf("CreateDirectSource: %v", err)
	}
	genHandle := ctx.CreateNoiseGenerator(generator.NoiseWhite, 2, 9)
	if err := ctx.AttachGenerator(srcHandle, genHandle); err != nil {
		t.Fatalf("AttachGenerator: %v", err)
	}
	ctx.tick()

	if err := ctx.Release(srcHandle); err != nil {
		t.Fatalf("Release: %v", err)
	}
	ctx.tick()

	if len(ctx.sources) != 0 {
		t.Fatalf("expected source to be removed from the live graph after Release, got %d sources", len(ctx.sources))
	}
}

func TestContext_InvalidHandleOperationsReturnTypedError(t *testing.T) {
	ctx, _ := newTestContext(t, 2)

	if err := ctx.SetGain(Handle(9999), 1); err == nil {
		t.Fatal("expected an error setting gain on a nonexistent handle")
	} else if e, ok := err.(*Error); !ok || e.Kind != InvalidHandle {
		t.Fatalf("expected InvalidHandle error, got %v", err)
	}
}
