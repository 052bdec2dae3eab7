// Package registry selects the biquad block kernel for the running CPU.
package registry

import (
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// Params is one second-order section in trapezoidal state-variable form.
// A1..A3 are the integrator solve gains derived from the cutoff g and
// damping k; M0..M2 mix the input, band and low outputs:
//
//	v3 = x - s2
//	v1 = A1*s1 + A2*v3
//	v2 = s2 + A2*s1 + A3*v3
//	s1, s2 = 2*v1 - s1, 2*v2 - s2
//	y  = M0*x + M1*v1 + M2*v2
type Params struct {
	A1, A2, A3 float64
	M0, M1, M2 float64
}

// ProcessBlockFn processes buf in-place with one section and returns the
// updated integrator state.
type ProcessBlockFn func(p Params, s1, s2 float64, buf []float64) (newS1, newS2 float64)

// OpEntry is one registered biquad kernel implementation.
type OpEntry struct {
	Name         string
	SIMDLevel    cpu.SIMDLevel
	Priority     int
	ProcessBlock ProcessBlockFn
}

// OpRegistry stores available implementations ordered by priority.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
}

// Global is the default biquad kernel registry. Kernels add themselves
// from init functions.
var Global = &OpRegistry{}

// Register adds an implementation entry, keeping entries sorted by
// descending priority.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := len(r.entries)
	r.entries = append(r.entries, entry)
	for i > 0 && r.entries[i-1].Priority < entry.Priority {
		r.entries[i] = r.entries[i-1]
		i--
	}
	r.entries[i] = entry
}

// Lookup returns the highest-priority implementation supported by features,
// or nil if nothing matches.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		entry := &r.entries[i]
		if supports(features, entry.SIMDLevel) {
			return entry
		}
	}

	return nil
}

// ListEntries returns a copy of entries for tests/debugging.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]OpEntry, len(r.entries))
	copy(entries, r.entries)

	return entries
}

// supports reports whether a kernel built for level may run on features.
// ForceGeneric pins selection to the portable kernel.
func supports(features cpu.Features, level cpu.SIMDLevel) bool {
	if features.ForceGeneric {
		return level == cpu.SIMDNone
	}

	switch level {
	case cpu.SIMDNone:
		return true
	case cpu.SIMDSSE2:
		return features.HasSSE2
	case cpu.SIMDAVX2:
		return features.HasAVX2
	default:
		return false
	}
}
