package design

import (
	"math"

	"github.com/W47K3R9/LudEQ/dsp/filter/biquad"
)

// ButterworthQ returns the quality factor of second-order stage index of
// an even-order Butterworth filter:
//
//	Q = 1 / (2 sin((2*index+1) pi / (2*order)))
//
// Index 0 is the most resonant stage.
func ButterworthQ(order, index int) float64 {
	if order <= 0 {
		return defaultQ
	}

	theta := math.Pi * float64(2*index+1) / (2 * float64(order))
	s := math.Sin(theta)
	if s <= 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

// ButterworthLP designs a maximally-flat lowpass cascade with the given
// slope. The result has slope.Sections() sections sharing the cutoff freq.
func ButterworthLP(freq float64, slope Slope, sampleRate float64) []biquad.Coefficients {
	var dst [biquad.MaxSections]biquad.Coefficients
	n := ButterworthLPInto(&dst, freq, slope, sampleRate)

	return append([]biquad.Coefficients(nil), dst[:n]...)
}

// ButterworthHP designs a maximally-flat highpass cascade with the given
// slope.
func ButterworthHP(freq float64, slope Slope, sampleRate float64) []biquad.Coefficients {
	var dst [biquad.MaxSections]biquad.Coefficients
	n := ButterworthHPInto(&dst, freq, slope, sampleRate)

	return append([]biquad.Coefficients(nil), dst[:n]...)
}

// ButterworthLPInto is the allocation-free form of ButterworthLP. It fills
// the first n entries of dst and returns n.
func ButterworthLPInto(dst *[biquad.MaxSections]biquad.Coefficients, freq float64, slope Slope, sampleRate float64) int {
	return butterworthInto(dst, freq, slope, sampleRate, Lowpass)
}

// ButterworthHPInto is the allocation-free form of ButterworthHP.
func ButterworthHPInto(dst *[biquad.MaxSections]biquad.Coefficients, freq float64, slope Slope, sampleRate float64) int {
	return butterworthInto(dst, freq, slope, sampleRate, Highpass)
}

// Stages are emitted from the lowest Q to the highest, so the resonant
// stage sees an already band-limited signal.
func butterworthInto(
	dst *[biquad.MaxSections]biquad.Coefficients,
	freq float64,
	slope Slope,
	sampleRate float64,
	stage func(freq, q, sampleRate float64) biquad.Coefficients,
) int {
	n := slope.Sections()
	order := slope.Order()
	for i := range n {
		dst[i] = stage(freq, ButterworthQ(order, n-1-i), sampleRate)
	}

	return n
}
