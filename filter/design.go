package filter

import "math"

// DesignLowpass designs an RBJ-cookbook lowpass biquad. normalizedFreq is
// the cutoff divided by the sample rate (cycles per sample, so 0.5 is
// Nyquist), not Hz; q is the resonance/Q factor.
func DesignLowpass(normalizedFreq, q float64) Config {
	_, _, cs, alpha := cookbookTerms(normalizedFreq, q)
	b0 := (1 - cs) / 2
	b1 := 1 - cs
	b2 := (1 - cs) / 2
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// DesignHighpass designs an RBJ-cookbook highpass biquad.
func DesignHighpass(normalizedFreq, q float64) Config {
	_, _, cs, alpha := cookbookTerms(normalizedFreq, q)
	b0 := (1 + cs) / 2
	b1 := -(1 + cs)
	b2 := (1 + cs) / 2
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// DesignBandpass designs an RBJ-cookbook constant 0 dB peak gain bandpass
// biquad parameterized by bandwidth in octaves (matching
// syz_biquadDesignBandpass's (frequency, bandwidth) signature).
func DesignBandpass(normalizedFreq, bandwidthOctaves float64) Config {
	omega, sn, cs, _ := cookbookTerms(normalizedFreq, 0.70710678)
	alpha := sn * math.Sinh(math.Ln2/2*bandwidthOctaves*omega/sn)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// DesignNotch designs an RBJ-cookbook notch biquad.
func DesignNotch(normalizedFreq, q float64) Config {
	_, _, cs, alpha := cookbookTerms(normalizedFreq, q)
	b0 := 1.0
	b1 := -2 * cs
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cs
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// DesignPeaking designs an RBJ-cookbook peaking EQ biquad. gainDB is the
// boost/cut in decibels.
func DesignPeaking(normalizedFreq, q, gainDB float64) Config {
	_, _, cs, alpha := cookbookTerms(normalizedFreq, q)
	a := math.Pow(10, gainDB/40)
	b0 := 1 + alpha*a
	b1 := -2 * cs
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cs
	a2 := 1 - alpha/a
	return normalize(b0, b1, b2, a0, a1, a2)
}

// DesignLowShelf designs an RBJ-cookbook low-shelf biquad.
func DesignLowShelf(normalizedFreq, q, gainDB float64) Config {
	_, sn, cs, _ := cookbookTerms(normalizedFreq, q)
	a := math.Pow(10, gainDB/40)
	alpha := sn / 2 * math.Sqrt((a+1/a)*(1/q-1)+2)
	sqrtA := math.Sqrt(a)
	b0 := a * ((a + 1) - (a-1)*cs + 2*sqrtA*alpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cs)
	b2 := a * ((a + 1) - (a-1)*cs - 2*sqrtA*alpha)
	a0 := (a + 1) + (a-1)*cs + 2*sqrtA*alpha
	a1 := -2 * ((a - 1) + (a+1)*cs)
	a2 := (a + 1) + (a-1)*cs - 2*sqrtA*alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// DesignHighShelf designs an RBJ-cookbook high-shelf biquad.
func DesignHighShelf(normalizedFreq, q, gainDB float64) Config {
	_, sn, cs, _ := cookbookTerms(normalizedFreq, q)
	a := math.Pow(10, gainDB/40)
	alpha := sn / 2 * math.Sqrt((a+1/a)*(1/q-1)+2)
	sqrtA := math.Sqrt(a)
	b0 := a * ((a + 1) + (a-1)*cs + 2*sqrtA*alpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cs)
	b2 := a * ((a + 1) + (a-1)*cs - 2*sqrtA*alpha)
	a0 := (a + 1) - (a-1)*cs + 2*sqrtA*alpha
	a1 := 2 * ((a - 1) - (a+1)*cs)
	a2 := (a + 1) - (a-1)*cs - 2*sqrtA*alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// cookbookTerms computes the shared intermediate values RBJ's cookbook
// formulas are built from. normalizedFreq is frequency/sampleRate.
func cookbookTerms(normalizedFreq, q float64) (omega, sn, cs, alpha float64) {
	omega = 2 * math.Pi * normalizedFreq
	sn = math.Sin(omega)
	cs = math.Cos(omega)
	alpha = sn / (2 * q)
	return
}

// normalize divides through by a0 and folds the result into a Config with
// gain left at unity (the cookbook coefficients already embed the response;
// Gain exists for the identity-filter fast path and other callers that want
// a post-filter trim).
func normalize(b0, b1, b2, a0, a1, a2 float64) Config {
	return Config{
		B0:   b0 / a0,
		B1:   b1 / a0,
		B2:   b2 / a0,
		A1:   a1 / a0,
		A2:   a2 / a0,
		Gain: 1,
	}
}
