// Package generic registers the portable biquad block kernel.
package generic

import (
	"github.com/W47K3R9/LudEQ/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "generic",
		SIMDLevel:    cpu.SIMDNone,
		Priority:     0,
		ProcessBlock: processBlock,
	})
}

func processBlock(p registry.Params, s1, s2 float64, buf []float64) (newS1, newS2 float64) {
	a1, a2, a3 := p.A1, p.A2, p.A3
	m0, m1, m2 := p.M0, p.M1, p.M2

	for i, x := range buf {
		v3 := x - s2
		v1 := a1*s1 + a2*v3
		v2 := s2 + a2*s1 + a3*v3
		s1 = 2*v1 - s1
		s2 = 2*v2 - s2
		buf[i] = m0*x + m1*v1 + m2*v2
	}

	return s1, s2
}
