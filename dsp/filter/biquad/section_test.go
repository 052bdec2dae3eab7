package biquad

import (
	"math"
	"math/rand/v2"
	"testing"
)

// tolerance for floating-point comparisons.
const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// refCoeffs is a stable lowpass-like section used throughout the tests.
func refCoeffs() Coefficients {
	return Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
}

func TestNewSection(t *testing.T) {
	c := Coefficients{B0: 1, B1: 2, B2: 3, A1: 4, A2: 5}
	s := NewSection(c)
	if s.Coefficients != c {
		t.Fatalf("coefficients mismatch: got %v, want %v", s.Coefficients, c)
	}
	if st := s.State(); st != [2]float64{0, 0} {
		t.Fatalf("initial state not zero: %v", st)
	}
}

func TestIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Fatal("Identity() must report IsIdentity")
	}
	if refCoeffs().IsIdentity() {
		t.Fatal("lowpass coefficients reported as identity")
	}

	s := NewSection(Identity())
	for i, x := range []float64{1, 0, -1, 0.5, 0.25} {
		if y := s.ProcessSample(x); y != x {
			t.Errorf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

// directForm runs the difference equation of c, the reference that the
// state-variable realization must reproduce.
func directForm(c Coefficients, x []float64) []float64 {
	y := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, v := range x {
		y[i] = c.B0*v + c.B1*x1 + c.B2*x2 - c.A1*y1 - c.A2*y2
		x2, x1 = x1, v
		y2, y1 = y1, y[i]
	}

	return y
}

func TestProcessSample_MatchesDifferenceEquation(t *testing.T) {
	tests := []struct {
		name string
		c    Coefficients
	}{
		{"lowpass", refCoeffs()},
		{"resonant", Coefficients{B0: 1.05, B1: -1.8, B2: 0.82, A1: -1.8, A2: 0.87}},
		{"allpass", Coefficients{B0: 0.3, B1: -0.5, B2: 1, A1: -0.5, A2: 0.3}},
		{"first order", Coefficients{B0: 1, B1: -0.3, A1: -0.8}},
		{"pure delay", Coefficients{B1: 1}},
		{"negative real poles", Coefficients{B0: 0.5, B1: 0.1, B2: -0.2, A1: 1.1, A2: 0.3}},
	}

	x := make([]float64, 256)
	for i := range x {
		x[i] = math.Sin(float64(i)*0.37) + 0.3*math.Cos(float64(i)*1.9)
	}
	x[0] += 1

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := directForm(tt.c, x)
			s := NewSection(tt.c)
			for i, v := range x {
				if y := s.ProcessSample(v); !almostEqual(y, want[i], 1e-10) {
					t.Fatalf("sample %d: got %.15f, want %.15f", i, y, want[i])
				}
			}
		})
	}
}

func TestNewSection_UnstableIsPassThrough(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.5, A1: -2.5, A2: 1.2})
	for i, x := range []float64{1, -0.5, 0.25, 3} {
		if y := s.ProcessSample(x); !almostEqual(y, x, eps) {
			t.Fatalf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestProcessBlock_MatchesSample(t *testing.T) {
	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8, -0.1}

	s1 := NewSection(refCoeffs())
	ref := make([]float64, len(input))
	for i, x := range input {
		ref[i] = s1.ProcessSample(x)
	}

	s2 := NewSection(refCoeffs())
	block := append([]float64(nil), input...)
	s2.ProcessBlock(block)

	for i := range block {
		if !almostEqual(block[i], ref[i], eps) {
			t.Errorf("sample %d: ProcessBlock=%.15f, ProcessSample=%.15f", i, block[i], ref[i])
		}
	}
	st1, st2 := s1.State(), s2.State()
	if !almostEqual(st1[0], st2[0], eps) || !almostEqual(st1[1], st2[1], eps) {
		t.Fatalf("state mismatch: block=%v sample=%v", st2, st1)
	}
}

func TestProcessBlock_Empty(t *testing.T) {
	s := NewSection(refCoeffs())
	s.ProcessSample(1)
	before := s.State()
	s.ProcessBlock(nil)
	if s.State() != before {
		t.Fatal("empty block changed state")
	}
}

func TestProcessBlockTo_MatchesSample(t *testing.T) {
	orig := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}
	input := append([]float64(nil), orig...)

	s1 := NewSection(refCoeffs())
	ref := make([]float64, len(input))
	for i, x := range input {
		ref[i] = s1.ProcessSample(x)
	}

	s2 := NewSection(refCoeffs())
	dst := make([]float64, len(input))
	s2.ProcessBlockTo(dst, input)

	for i := range dst {
		if !almostEqual(dst[i], ref[i], eps) {
			t.Errorf("sample %d: ProcessBlockTo=%.15f, ProcessSample=%.15f", i, dst[i], ref[i])
		}
	}
	for i := range input {
		if input[i] != orig[i] {
			t.Errorf("src modified at index %d", i)
		}
	}
}

func TestProcessSample_PureDelay(t *testing.T) {
	// B1=1 only: y[n] = x[n-1].
	s := NewSection(Coefficients{B1: 1})
	input := []float64{1, 2, 3, 4, 5}
	want := []float64{0, 1, 2, 3, 4}
	for i, x := range input {
		if y := s.ProcessSample(x); !almostEqual(y, want[i], eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, want[i])
		}
	}
}

func TestUpdateCoefficients_KeepsState(t *testing.T) {
	s := NewSection(refCoeffs())
	s.ProcessSample(1)
	s.ProcessSample(0.5)
	before := s.State()

	next := Coefficients{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1}
	s.UpdateCoefficients(next)

	if s.State() != before {
		t.Fatalf("UpdateCoefficients changed state: %v -> %v", before, s.State())
	}
	if s.Coefficients != next {
		t.Fatalf("coefficients not applied: %v", s.Coefficients)
	}
}

func TestUpdateCoefficients_Idempotent(t *testing.T) {
	c := refCoeffs()
	s := NewSection(c)
	s.ProcessSample(0.3)

	s.UpdateCoefficients(c)
	first, firstState := s.Coefficients, s.State()
	s.UpdateCoefficients(c)

	// Bit-identical comparison on purpose.
	if s.Coefficients != first || s.State() != firstState {
		t.Fatalf("repeated update not idempotent: %v/%v vs %v/%v",
			s.Coefficients, s.State(), first, firstState)
	}
}

func TestUpdateCoefficients_NoDiscontinuity(t *testing.T) {
	// A coefficient change on a steady DC input must not jump to zero the
	// way a state reset would.
	s := NewSection(refCoeffs()) // DC gain = 1/0.84
	var y float64
	for range 200 {
		y = s.ProcessSample(1)
	}

	s.UpdateCoefficients(Coefficients{B0: 0.24, B1: 0.48, B2: 0.24, A1: -0.2, A2: 0.04})
	next := s.ProcessSample(1)

	if math.Abs(next-y) > 0.05 {
		t.Fatalf("output jumped from %.4f to %.4f after coefficient change", y, next)
	}
}

func TestUpdateCoefficients_Glides(t *testing.T) {
	next := Coefficients{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1}

	s := NewSection(refCoeffs())
	if s.Gliding() {
		t.Fatal("a new section must start on its coefficients")
	}
	s.ProcessSample(1)

	s.UpdateCoefficients(next)
	for i := range GlideSamples {
		if !s.Gliding() {
			t.Fatalf("glide ended after %d samples, want %d", i, GlideSamples)
		}
		s.ProcessSample(0.5)
	}
	if s.Gliding() {
		t.Fatalf("still gliding after %d samples", GlideSamples)
	}

	// From here on the section is exactly the new filter.
	ref := NewSection(next)
	ref.SetState(s.State())
	for i := range 32 {
		x := math.Sin(float64(i))
		if got, want := s.ProcessSample(x), ref.ProcessSample(x); got != want {
			t.Fatalf("sample %d after glide: got %v, want %v", i, got, want)
		}
	}
}

func TestUpdateCoefficients_GlideIsBlockSizeIndependent(t *testing.T) {
	next := Coefficients{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1}
	x := make([]float64, 3*GlideSamples)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.21)
	}

	ref := NewSection(refCoeffs())
	ref.ProcessSample(1)
	ref.UpdateCoefficients(next)
	want := make([]float64, len(x))
	for i, v := range x {
		want[i] = ref.ProcessSample(v)
	}

	for _, size := range []int{1, 5, GlideSamples, len(x)} {
		s := NewSection(refCoeffs())
		s.ProcessSample(1)
		s.UpdateCoefficients(next)
		got := append([]float64(nil), x...)
		for start := 0; start < len(got); start += size {
			s.ProcessBlock(got[start:min(start+size, len(got))])
		}
		for i := range got {
			if !almostEqual(got[i], want[i], eps) {
				t.Fatalf("block size %d sample %d: got %v, want %v", size, i, got[i], want[i])
			}
		}
	}
}

func TestSettle(t *testing.T) {
	next := Coefficients{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1}

	s := NewSection(refCoeffs())
	s.ProcessSample(1)
	s.UpdateCoefficients(next)
	s.Settle()
	if s.Gliding() {
		t.Fatal("Settle left the glide running")
	}

	ref := NewSection(next)
	ref.SetState(s.State())
	if got, want := s.ProcessSample(0.5), ref.ProcessSample(0.5); got != want {
		t.Fatalf("settled section: got %v, want %v", got, want)
	}

	var zero Section
	zero.UpdateCoefficients(next)
	if zero.Gliding() {
		t.Fatal("a zero section has nothing to glide from")
	}
}

// The integrator energy s1^2+s2^2 of a silent section must never grow,
// however the coefficients move. This is what keeps automation bounded.
func TestSection_EnergyNeverGrowsUnderModulation(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	random := func() Coefficients {
		r := 0.999 * rng.Float64()
		theta := math.Pi * rng.Float64()
		return Coefficients{
			B0: 4*rng.Float64() - 2, B1: 4*rng.Float64() - 2, B2: 4*rng.Float64() - 2,
			A1: -2 * r * math.Cos(theta), A2: r * r,
		}
	}

	s := NewSection(random())
	s.SetState([2]float64{1, -1})
	energy := 2.0

	for i := range 20000 {
		if i%3 == 0 {
			s.UpdateCoefficients(random())
		}
		if i%500 == 0 {
			s.Settle()
		}
		s.ProcessSample(0)

		st := s.State()
		e := st[0]*st[0] + st[1]*st[1]
		if e > energy*(1+1e-12) {
			t.Fatalf("sample %d: energy grew from %g to %g", i, energy, e)
		}
		energy = e

		// Re-excite before the state decays into subnormals.
		if energy < 1e-6 {
			s.SetState([2]float64{1, -1})
			energy = 2
		}
	}
}

func TestReset(t *testing.T) {
	s := NewSection(refCoeffs())
	s.ProcessSample(1)
	s.ProcessSample(0.5)

	if s.State() == [2]float64{0, 0} {
		t.Fatal("state should be non-zero after processing")
	}

	s.Reset()
	if st := s.State(); st != [2]float64{0, 0} {
		t.Fatalf("state not zero after reset: %v", st)
	}
}

func TestState_SaveRestore(t *testing.T) {
	s := NewSection(refCoeffs())
	s.ProcessSample(1)
	s.ProcessSample(0.5)
	saved := s.State()

	y3 := s.ProcessSample(-0.3)
	y4 := s.ProcessSample(0.7)

	s.SetState(saved)
	if y := s.ProcessSample(-0.3); !almostEqual(y, y3, eps) {
		t.Errorf("sample 3: got %v after restore, want %v", y, y3)
	}
	if y := s.ProcessSample(0.7); !almostEqual(y, y4, eps) {
		t.Errorf("sample 4: got %v after restore, want %v", y, y4)
	}
}

func TestProcessSample_StabilityLongRun(t *testing.T) {
	s := NewSection(refCoeffs())
	s.ProcessSample(1)

	for range 10000 {
		s.ProcessSample(0)
	}

	st := s.State()
	if math.Abs(st[0]) > 1e-100 || math.Abs(st[1]) > 1e-100 {
		t.Errorf("state did not decay: %v", st)
	}
}

func TestProcessBlock_ZeroAlloc(t *testing.T) {
	s := NewSection(refCoeffs())
	buf := make([]float64, 512)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.1)
	}
	s.ProcessBlock(buf) // trigger kernel selection outside the measurement

	allocs := testing.AllocsPerRun(100, func() {
		s.ProcessBlock(buf)
		s.UpdateCoefficients(refCoeffs())
	})
	if allocs != 0 {
		t.Fatalf("ProcessBlock allocated %.1f times per run", allocs)
	}
}
