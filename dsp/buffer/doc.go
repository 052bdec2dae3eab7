// Package buffer provides planar multichannel sample blocks for the host
// adapters. A Block keeps every channel in one contiguous allocation and
// exposes them as [][]float64, the layout the equalizer engine processes.
// Interleave and Deinterleave convert to and from the frame-interleaved
// layout used by audio files and output devices without allocating.
package buffer
