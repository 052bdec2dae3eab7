// Package eq is a three-band parametric equalizer: a variable-slope
// low-cut, one peaking band and a variable-slope high-cut, processed in
// that order.
//
// The package splits into a real-time half and a control half. [Engine]
// runs on the audio goroutine; its ProcessBlock never allocates, locks or
// blocks. [Store] is written by control goroutines (UI, automation, state
// restore) and read by the audio goroutine through [Store.Load], which is
// wait-free. [Layout] describes every parameter for hosts and editors.
package eq
