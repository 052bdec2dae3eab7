// Package response measures the frequency response of a linear processor
// from its impulse response.
//
// [Analyze] zero-pads an impulse response to a power-of-two length, takes
// its FFT and keeps the magnitude of the non-negative frequency bins.
// [Spectrum] then answers point queries (magnitude, dB, slope per octave)
// with linear interpolation between bins. [ToneLevel] estimates the
// amplitude of a single tone with the Goertzel recurrence, which is
// cheaper than a full FFT when only a few frequencies matter.
package response
