// Package filter implements the per-channel biquad filter used by sources
// and effects, and the cookbook coefficient designers exposed to client
// code (the Go equivalents of syz_biquadDesignLowpass and friends).
package filter

// Config is a biquad's coefficients in the engine's internal normalized
// form: numerator (b0, b1, b2) and denominator (a1, a2, with a0 implicitly
// 1) plus an overall gain applied after the two poles/zeros. This mirrors
// convertBiquadDef's external syz_BiquadConfig shape from the original
// implementation.
type Config struct {
	B0, B1, B2 float64
	A1, A2     float64
	Gain       float64
}

// Identity returns the coefficients of a bypass filter: b0=1, everything
// else 0, gain=1.
func Identity() Config {
	return Config{B0: 1, Gain: 1}
}

// IsIdentity reports whether cfg is bit-identical to the bypass filter, the
// cold-path optimization the spec calls for so identity filters skip DSP
// entirely.
func (c Config) IsIdentity() bool {
	return c == Identity()
}

// Biquad is one channel's worth of Direct Form I filter state.
type Biquad struct {
	cfg    Config
	x1, x2 float64
	y1, y2 float64
}

// SetConfig replaces the filter's coefficients. Per the spec there is no
// smoothing of coefficient changes across the update — a client wanting a
// smooth sweep must automate frequency across multiple blocks and let each
// block's SetConfig take effect at the following block boundary.
func (b *Biquad) SetConfig(cfg Config) { b.cfg = cfg }

// Config returns the filter's current coefficients.
func (b *Biquad) Config() Config { return b.cfg }

// Reset clears the filter's delay state without changing its coefficients.
func (b *Biquad) Reset() { b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0 }

// ProcessBlock filters samples in place. If the filter is currently
// configured as identity, it is a no-op — the bypass optimization from
// spec.md 4.6.
func (b *Biquad) ProcessBlock(samples []float32) {
	if b.cfg.IsIdentity() {
		return
	}
	c := b.cfg
	for i, x := range samples {
		xf := float64(x)
		y := c.B0*xf + c.B1*b.x1 + c.B2*b.x2 - c.A1*b.y1 - c.A2*b.y2
		b.x2, b.x1 = b.x1, xf
		b.y2, b.y1 = b.y1, y
		samples[i] = float32(y * c.Gain)
	}
}
