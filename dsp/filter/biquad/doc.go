// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] runs the transfer function given by [Coefficients] as a
// trapezoidal state-variable filter, which stays well behaved while its
// coefficients are automated; coefficient changes glide over
// [GlideSamples] samples. Up to [MaxSections] sections can be cascaded via
// [Cascade] for the variable-slope cut filters of the equalizer (12 to
// 48 dB/oct).
//
// Everything on the processing path is allocation-free and lock-free, so a
// Section or Cascade may be driven directly from an audio callback.
// Coefficient design lives in dsp/filter/design.
package biquad
