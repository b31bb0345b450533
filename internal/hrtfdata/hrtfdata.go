// Package hrtfdata provides the compiled HRTF dataset the panner package
// convolves against. A real deployment would ship a measured dataset
// compiled the way original_source/data_processor/hrtf_writer.py compiles
// Synthizer's own hrtf.dat; this package generates a small deterministic
// synthetic dataset instead, structured the same way (a lattice of
// (azimuth, elevation) cells, each a short two-eared impulse response plus
// an inter-aural time delay), so the bilinear-interpolation and
// crossfade-on-jump code downstream has real, reproducible data to work
// with without bundling a multi-megabyte binary blob.
package hrtfdata

import "math"

// Cell is one dataset entry: a short per-ear FIR impulse response plus the
// inter-aural time delay, in fractional samples, associated with that
// direction.
type Cell struct {
	Left, Right         []float32
	ITDLeft, ITDRight   float64
}

// Dataset is a lattice of Cells indexed by elevation row then azimuth
// column. Azimuths run [0, 360) degrees and wrap; elevations run
// [-90, 90] degrees and clamp at the poles.
type Dataset struct {
	Azimuths   []float64
	Elevations []float64
	Cells      [][]Cell // Cells[elevationIdx][azimuthIdx]
	ImpulseLen int
}

// maxITDSamples bounds how many samples of inter-aural delay the synthetic
// dataset encodes. At 44.1kHz, 32 samples is about 726us, slightly above
// the ~650us maximum ITD of a typical human head.
const maxITDSamples = 32.0

// Generate builds a deterministic synthetic dataset with the given impulse
// length and lattice resolution. The same arguments always produce
// bit-identical output, which is the property the spec's HRTF lookup
// stability requirement depends on.
func Generate(impulseLen, azimuthSteps, elevationSteps int) *Dataset {
	if impulseLen < 2 {
		impulseLen = 2
	}
	if azimuthSteps < 1 {
		azimuthSteps = 1
	}
	if elevationSteps < 1 {
		elevationSteps = 1
	}

	azimuths := make([]float64, azimuthSteps)
	for i := range azimuths {
		azimuths[i] = 360 * float64(i) / float64(azimuthSteps)
	}

	elevations := make([]float64, elevationSteps)
	if elevationSteps == 1 {
		elevations[0] = 0
	} else {
		for i := range elevations {
			elevations[i] = -90 + 180*float64(i)/float64(elevationSteps-1)
		}
	}

	cells := make([][]Cell, elevationSteps)
	for ei, el := range elevations {
		row := make([]Cell, azimuthSteps)
		for ai, az := range azimuths {
			row[ai] = synthesizeCell(az, el, impulseLen)
		}
		cells[ei] = row
	}

	return &Dataset{Azimuths: azimuths, Elevations: elevations, Cells: cells, ImpulseLen: impulseLen}
}

// synthesizeCell builds a plausible, deterministic impulse for a given
// direction: a decaying-exponential envelope shaped by azimuth (the ear
// facing the source gets more energy and less delay), with an ITD derived
// from a simple sine-of-azimuth head model and elevation tapering the
// effect as the source approaches directly overhead or underfoot.
func synthesizeCell(azimuthDeg, elevationDeg float64, impulseLen int) Cell {
	azRad := azimuthDeg * math.Pi / 180
	elRad := elevationDeg * math.Pi / 180
	elevationTaper := math.Cos(elRad)

	// sinAz > 0 means the source is toward the right ear.
	sinAz := math.Sin(azRad) * elevationTaper

	itd := maxITDSamples * sinAz
	var itdLeft, itdRight float64
	if itd >= 0 {
		itdRight = 0
		itdLeft = itd
	} else {
		itdLeft = 0
		itdRight = -itd
	}

	leftGain := 0.5 + 0.5*math.Max(0, -sinAz)
	rightGain := 0.5 + 0.5*math.Max(0, sinAz)
	// A source directly overhead/underfoot should reach both ears equally
	// regardless of azimuth, since a spinning azimuth at the poles is
	// degenerate; blend toward 0.5/0.5 as elevationTaper shrinks.
	leftGain = leftGain*elevationTaper + 0.5*(1-elevationTaper)
	rightGain = rightGain*elevationTaper + 0.5*(1-elevationTaper)

	left := make([]float32, impulseLen)
	right := make([]float32, impulseLen)
	const decay = 0.6
	for n := 0; n < impulseLen; n++ {
		env := math.Pow(decay, float64(n))
		left[n] = float32(leftGain * env)
		right[n] = float32(rightGain * env)
	}

	return Cell{Left: left, Right: right, ITDLeft: itdLeft, ITDRight: itdRight}
}

// Lookup finds the four nearest lattice cells around (azimuth, elevation)
// and their bilinear interpolation weights, in the order
// (elLow,azLow), (elLow,azHigh), (elHigh,azLow), (elHigh,azHigh).
// Azimuth wraps at 360; elevation clamps to the dataset's range. Calling
// Lookup twice with the same arguments always returns the same cells and
// weights.
func (d *Dataset) Lookup(azimuthDeg, elevationDeg float64) (cells [4]Cell, weights [4]float64) {
	az := math.Mod(azimuthDeg, 360)
	if az < 0 {
		az += 360
	}
	el := elevationDeg
	if el < d.Elevations[0] {
		el = d.Elevations[0]
	}
	if el > d.Elevations[len(d.Elevations)-1] {
		el = d.Elevations[len(d.Elevations)-1]
	}

	azLo, azHi, azFrac := wrapIndex(d.Azimuths, az, 360)
	elLo, elHi, elFrac := clampIndex(d.Elevations, el)

	cells[0] = d.Cells[elLo][azLo]
	cells[1] = d.Cells[elLo][azHi]
	cells[2] = d.Cells[elHi][azLo]
	cells[3] = d.Cells[elHi][azHi]

	weights[0] = (1 - elFrac) * (1 - azFrac)
	weights[1] = (1 - elFrac) * azFrac
	weights[2] = elFrac * (1 - azFrac)
	weights[3] = elFrac * azFrac
	return cells, weights
}

// wrapIndex finds the bracketing indices of a wrapping axis (azimuth) and
// the fractional position of value between them.
func wrapIndex(axis []float64, value, period float64) (lo, hi int, frac float64) {
	n := len(axis)
	if n == 1 {
		return 0, 0, 0
	}
	for i := 0; i < n; i++ {
		next := i + 1
		nextVal := period
		if next < n {
			nextVal = axis[next]
		}
		if value >= axis[i] && value < nextVal {
			lo = i
			hi = next % n
			span := nextVal - axis[i]
			if span <= 0 {
				frac = 0
			} else {
				frac = (value - axis[i]) / span
			}
			return lo, hi, frac
		}
	}
	return n - 1, 0, 0
}

// clampIndex finds the bracketing indices of a clamping axis (elevation)
// and the fractional position of value between them.
func clampIndex(axis []float64, value float64) (lo, hi int, frac float64) {
	n := len(axis)
	if n == 1 {
		return 0, 0, 0
	}
	if value <= axis[0] {
		return 0, 0, 0
	}
	if value >= axis[n-1] {
		return n - 1, n - 1, 0
	}
	for i := 0; i < n-1; i++ {
		if value >= axis[i] && value <= axis[i+1] {
			span := axis[i+1] - axis[i]
			return i, i + 1, (value - axis[i]) / span
		}
	}
	return n - 1, n - 1, 0
}
