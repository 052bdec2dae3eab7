package biquad

import (
	"math"
	"math/cmplx"

	"github.com/W47K3R9/LudEQ/dsp/core"
)

// Response computes the complex frequency response H(e^jw) of a biquad
// at the given frequency (Hz) and sample rate (Hz).
func (c *Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*ejw + complex(c.B2, 0)*ej2w
	den := complex(1, 0) + complex(c.A1, 0)*ejw + complex(c.A2, 0)*ej2w

	return num / den
}

// MagnitudeSquared returns |H(f)|^2 using a closed-form expression that
// avoids complex exponentials.
func (c *Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	cw := 2 * math.Cos(2*math.Pi*freqHz/sampleRate)
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	num := (b0-b2)*(b0-b2) + b1*b1 + (b1*(b0+b2)+b0*b2*cw)*cw
	den := (1-a2)*(1-a2) + a1*a1 + (a1*(a2+1)+cw*a2)*cw

	return num / den
}

// MagnitudeDB returns 10*log10(|H(f)|^2).
func (c *Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return core.LinearPowerToDB(c.MagnitudeSquared(freqHz, sampleRate))
}

// Response computes the complex frequency response of the active sections
// as the product of the individual section responses.
func (c *Cascade) Response(freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for i := 0; i < c.active; i++ {
		h *= c.sections[i].Response(freqHz, sampleRate)
	}

	return h
}

// MagnitudeDB returns the cascaded magnitude response in dB.
func (c *Cascade) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return core.LinearToDB(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// ImpulseResponse computes n samples of the impulse response h[n] of the
// target coefficients by feeding an impulse through a reset copy of the
// section. The section itself is not modified.
func (s *Section) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}

	f := *s
	f.Reset()

	ir := make([]float64, n)
	ir[0] = f.ProcessSample(1)
	for i := 1; i < n; i++ {
		ir[i] = f.ProcessSample(0)
	}

	return ir
}

// ImpulseResponse computes n samples of the cascade impulse response on a
// reset copy of the cascade.
func (c *Cascade) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}

	f := *c
	f.Reset()

	ir := make([]float64, n)
	ir[0] = f.ProcessSample(1)
	for i := 1; i < n; i++ {
		ir[i] = f.ProcessSample(0)
	}

	return ir
}
