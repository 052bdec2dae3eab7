// Package design computes biquad coefficients for the equalizer bands.
//
// All designers are pure: the same inputs always yield the same
// coefficients. Out-of-range frequencies, Q and gain values are clamped
// rather than rejected, so every result is finite and usable from the
// audio thread. [ButterworthLPInto] and [ButterworthHPInto] write into a
// caller-owned array and never allocate.
package design
