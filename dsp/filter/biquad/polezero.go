package biquad

import "math/cmplx"

// PoleZeroPair lists where one section's transfer function goes to
// infinity (Poles) and to zero (Zeros) in the z-plane. A section that is
// only first order leaves the second root at the origin.
type PoleZeroPair struct {
	Poles [2]complex128
	Zeros [2]complex128
}

// Poles solves z^2 + A1*z + A2 = 0.
func (c *Coefficients) Poles() [2]complex128 {
	return quadraticRoots(1, c.A1, c.A2)
}

// Zeros solves B0*z^2 + B1*z + B2 = 0.
func (c *Coefficients) Zeros() [2]complex128 {
	return quadraticRoots(c.B0, c.B1, c.B2)
}

func (c *Coefficients) PoleZeroPair() PoleZeroPair {
	return PoleZeroPair{
		Poles: c.Poles(),
		Zeros: c.Zeros(),
	}
}

// IsStable uses the stability triangle of the denominator: |A2| < 1 and
// |A1| < 1 + A2. Sections outside it cannot be realized by a Section.
func (c *Coefficients) IsStable() bool {
	return 1+c.A1+c.A2 > 0 && 1-c.A1+c.A2 > 0 && c.A2 < 1
}

// PoleZeroPairs reports the active sections only.
func (c *Cascade) PoleZeroPairs() []PoleZeroPair {
	out := make([]PoleZeroPair, c.active)
	for i := range out {
		out[i] = c.sections[i].PoleZeroPair()
	}

	return out
}

// quadraticRoots returns the roots of a*z^2 + b*z + c, falling back to the
// linear root when a is zero.
func quadraticRoots(a, b, c float64) [2]complex128 {
	if a == 0 {
		if b == 0 {
			return [2]complex128{}
		}

		return [2]complex128{complex(-c/b, 0), 0}
	}

	root := cmplx.Sqrt(complex(b*b-4*a*c, 0))
	twoA := complex(2*a, 0)

	return [2]complex128{
		(complex(-b, 0) + root) / twoA,
		(complex(-b, 0) - root) / twoA,
	}
}
