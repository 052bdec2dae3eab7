//go:build amd64 && !purego

// Package unroll2 registers a two-samples-per-iteration biquad kernel.
//
// The kernel is plain Go and issues no packed SSE2 instructions. It is
// registered at the SSE2 level because that is the amd64 baseline, so it
// wins over the generic loop on every amd64 CPU.
package unroll2

import (
	"github.com/W47K3R9/LudEQ/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "unroll2",
		SIMDLevel:    cpu.SIMDSSE2,
		Priority:     10,
		ProcessBlock: processBlock,
	})
}

// processBlock handles two samples per iteration so that both integrator
// states stay in registers between them.
func processBlock(p registry.Params, s1, s2 float64, buf []float64) (newS1, newS2 float64) {
	a1, a2, a3 := p.A1, p.A2, p.A3
	m0, m1, m2 := p.M0, p.M1, p.M2

	i := 0
	n := len(buf)
	for ; i+1 < n; i += 2 {
		x0 := buf[i]
		v3 := x0 - s2
		v1 := a1*s1 + a2*v3
		v2 := s2 + a2*s1 + a3*v3
		t1 := 2*v1 - s1
		t2 := 2*v2 - s2
		y0 := m0*x0 + m1*v1 + m2*v2

		x1 := buf[i+1]
		w3 := x1 - t2
		w1 := a1*t1 + a2*w3
		w2 := t2 + a2*t1 + a3*w3
		s1 = 2*w1 - t1
		s2 = 2*w2 - t2

		buf[i] = y0
		buf[i+1] = m0*x1 + m1*w1 + m2*w2
	}

	if i < n {
		x := buf[i]
		v3 := x - s2
		v1 := a1*s1 + a2*v3
		v2 := s2 + a2*s1 + a3*v3
		s1 = 2*v1 - s1
		s2 = 2*v2 - s2
		buf[i] = m0*x + m1*v1 + m2*v2
	}

	return s1, s2
}
