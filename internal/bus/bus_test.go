package bus

import "testing"

func TestNewZeroesBuffer(t *testing.T) {
	b := New(2, 4)
	for i, v := range b.Data {
		if v != 0 {
			t.Fatalf("Data[%d] = %v, want 0", i, v)
		}
	}
	if got := b.Frames(); got != 4 {
		t.Fatalf("Frames() = %d, want 4", got)
	}
}

func TestZeroClearsInPlace(t *testing.T) {
	b := New(2, 2)
	for i := range b.Data {
		b.Data[i] = 1
	}
	b.Zero()
	for i, v := range b.Data {
		if v != 0 {
			t.Fatalf("Data[%d] = %v after Zero, want 0", i, v)
		}
	}
}

func TestAddScaledSameChannelCount(t *testing.T) {
	dst := New(2, 1)
	src := New(2, 1)
	src.Data[0] = 1
	src.Data[1] = 2
	AddScaled(&dst, src, 0.5)
	if dst.Data[0] != 0.5 || dst.Data[1] != 1 {
		t.Fatalf("got %v, want [0.5 1]", dst.Data)
	}
}

func TestMixWeightMonoBroadcastsToEveryChannel(t *testing.T) {
	for dch := 0; dch < 6; dch++ {
		if w := MixWeight(1, 0, 6, dch); w != 1 {
			t.Fatalf("MixWeight(1,0,6,%d) = %v, want 1", dch, w)
		}
	}
}

func TestMixWeightStereoToMonoSumsWithAttenuation(t *testing.T) {
	w := MixWeight(2, 0, 1, 0)
	if w != 0.5 {
		t.Fatalf("MixWeight(2,0,1,0) = %v, want 0.5", w)
	}
}

func TestMixIntoStereoToMonoDownmix(t *testing.T) {
	dst := New(1, 1)
	src := New(2, 1)
	src.Data[0] = 1
	src.Data[1] = 1
	MixInto(&dst, src, func(_ int, s float32) float32 { return s })
	if dst.Data[0] != 1 {
		t.Fatalf("got %v, want 1 (0.5*1 + 0.5*1)", dst.Data[0])
	}
}

func TestMixIntoStereoTo51FrontChannelsPassThrough(t *testing.T) {
	dst := New(6, 1)
	src := New(2, 1)
	src.Data[0] = 1
	src.Data[1] = 1
	MixInto(&dst, src, func(_ int, s float32) float32 { return s })
	if dst.Data[0] != 1 || dst.Data[1] != 1 {
		t.Fatalf("front L/R = %v, %v, want 1, 1", dst.Data[0], dst.Data[1])
	}
	if dst.Data[2] != 0 || dst.Data[3] != 0 {
		t.Fatalf("center/LFE = %v, %v, want 0, 0", dst.Data[2], dst.Data[3])
	}
	if dst.Data[4] != 0.5 || dst.Data[5] != 0.5 {
		t.Fatalf("surround L/R = %v, %v, want 0.5, 0.5", dst.Data[4], dst.Data[5])
	}
}

func TestMixInto51ToStereoDropsLFE(t *testing.T) {
	dst := New(2, 1)
	src := New(6, 1)
	src.Data[3] = 1 // LFE only
	MixInto(&dst, src, func(_ int, s float32) float32 { return s })
	if dst.Data[0] != 0 || dst.Data[1] != 0 {
		t.Fatalf("got %v, want LFE dropped", dst.Data)
	}
}

func TestMixIntoStopsAtShorterBufferFrameCount(t *testing.T) {
	dst := New(1, 4)
	src := New(1, 2)
	src.Data[0] = 1
	src.Data[1] = 1
	MixInto(&dst, src, func(_ int, s float32) float32 { return s })
	if dst.Data[0] != 1 || dst.Data[1] != 1 {
		t.Fatalf("first two frames = %v, %v, want 1, 1", dst.Data[0], dst.Data[1])
	}
	if dst.Data[2] != 0 || dst.Data[3] != 0 {
		t.Fatalf("remaining frames = %v, %v, want 0, 0 (src exhausted)", dst.Data[2], dst.Data[3])
	}
}
