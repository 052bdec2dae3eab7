package design

import (
	"math"

	"github.com/W47K3R9/LudEQ/dsp/core"
	"github.com/W47K3R9/LudEQ/dsp/filter/biquad"
)

// Parameter bounds shared by every designer.
const (
	MinFrequency = 20.0
	MaxFrequency = 20000.0

	MinQ = 0.1
	MaxQ = 10.0

	MinGainDB = -12.0
	MaxGainDB = 12.0

	// NyquistGuardHz is the minimum distance kept between a designed
	// frequency and the Nyquist frequency.
	NyquistGuardHz = 1.0
)

const defaultQ = 1 / math.Sqrt2

// ClampFrequency limits freq to [MinFrequency, min(MaxFrequency,
// sampleRate/2 - guard)], where guard is NyquistGuardHz or
// sampleRate*1e-6, whichever is larger.
//
// A frequency at or above Nyquist is clamped, never rejected, so designers
// always return finite coefficients. NaN maps to MinFrequency. For sample
// rates too low to hold MinFrequency the upper bound wins.
func ClampFrequency(freq, sampleRate float64) float64 {
	hi := MaxFrequency
	if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
		guard := math.Max(NyquistGuardHz, sampleRate*1e-6)
		hi = math.Min(hi, sampleRate/2-guard)
	}

	lo := MinFrequency
	if hi < lo {
		lo = hi
	}

	return core.ClampFinite(freq, lo, hi, MinFrequency)
}

// ClampQ limits q to [MinQ, MaxQ]. NaN maps to 1.
func ClampQ(q float64) float64 {
	return core.ClampFinite(q, MinQ, MaxQ, 1)
}

// ClampGain limits gainDB to [MinGainDB, MaxGainDB]. NaN maps to 0 dB.
func ClampGain(gainDB float64) float64 {
	return core.ClampFinite(gainDB, MinGainDB, MaxGainDB, 0)
}

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality factor q.
// freq is clamped with ClampFrequency. An invalid sample rate yields the
// identity section.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs an RBJ highpass biquad at freq (Hz) with quality factor q.
// freq is clamped with ClampFrequency. An invalid sample rate yields the
// identity section.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Peak designs an RBJ peaking-EQ biquad with gain in dB.
//
// freq, gainDB and q are clamped with ClampFrequency, ClampGain and ClampQ.
// A gain of 0 dB yields the identity response.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * ClampQ(q))
	a := math.Pow(10, ClampGain(gainDB)/40)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	freq = ClampFrequency(freq, sampleRate)
	if freq <= 0 {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Identity()
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
