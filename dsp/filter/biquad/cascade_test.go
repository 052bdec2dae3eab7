package biquad

import "testing"

func passthrough() Coefficients {
	return Coefficients{B0: 1}
}

func twoSectionCoeffs() []Coefficients {
	return []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1},
	}
}

func TestNewCascade(t *testing.T) {
	c := NewCascade(twoSectionCoeffs()...)
	if c.Active() != 2 {
		t.Fatalf("Active()=%d, want 2", c.Active())
	}
	if c.Order() != 4 {
		t.Fatalf("Order()=%d, want 4", c.Order())
	}

	got := c.Coefficients()
	for i, want := range twoSectionCoeffs() {
		if got[i] != want {
			t.Errorf("section %d: got %v, want %v", i, got[i], want)
		}
	}
	for i := 2; i < MaxSections; i++ {
		if !c.Section(i).IsIdentity() {
			t.Errorf("bypassed section %d is not identity: %v", i, c.Section(i).Coefficients)
		}
	}
}

func TestNewCascade_TruncatesToMax(t *testing.T) {
	coeffs := make([]Coefficients, MaxSections+2)
	for i := range coeffs {
		coeffs[i] = passthrough()
	}

	c := NewCascade(coeffs...)
	if c.Active() != MaxSections {
		t.Fatalf("Active()=%d, want %d", c.Active(), MaxSections)
	}
}

func TestCascade_Empty_IsPassthrough(t *testing.T) {
	c := NewCascade()
	buf := []float64{1, -0.5, 0.25, 0}
	want := append([]float64(nil), buf...)
	c.ProcessBlock(buf)

	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d: got %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestCascade_ProcessSample_Series(t *testing.T) {
	coeffs := twoSectionCoeffs()
	c := NewCascade(coeffs...)
	s1 := NewSection(coeffs[0])
	s2 := NewSection(coeffs[1])

	for i := range 8 {
		x := 1.0
		if i%3 == 0 {
			x = -0.5
		}
		want := s2.ProcessSample(s1.ProcessSample(x))
		if got := c.ProcessSample(x); !almostEqual(got, want, eps) {
			t.Fatalf("sample %d: got %.15f, want %.15f", i, got, want)
		}
	}
}

func TestCascade_ProcessBlock_MatchesSample(t *testing.T) {
	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8, -0.1, 0.4}

	ref := NewCascade(twoSectionCoeffs()...)
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	c := NewCascade(twoSectionCoeffs()...)
	got := append([]float64(nil), input...)
	c.ProcessBlock(got)

	for i := range got {
		if !almostEqual(got[i], want[i], eps) {
			t.Errorf("sample %d: block=%.15f, sample=%.15f", i, got[i], want[i])
		}
	}
}

func TestCascade_SetCoefficients_KeepsActiveState(t *testing.T) {
	coeffs := twoSectionCoeffs()
	c := NewCascade(coeffs...)
	c.ProcessSample(1)
	c.ProcessSample(0.5)
	before := c.State()

	// Same length, different coefficients.
	next := []Coefficients{coeffs[1], coeffs[0]}
	c.SetCoefficients(next)

	after := c.State()
	for i := range 2 {
		if after[i] != before[i] {
			t.Fatalf("section %d state changed: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestCascade_SetCoefficients_BypassResets(t *testing.T) {
	coeffs := []Coefficients{
		twoSectionCoeffs()[0],
		twoSectionCoeffs()[1],
		twoSectionCoeffs()[0],
	}
	c := NewCascade(coeffs...)
	for range 16 {
		c.ProcessSample(1)
	}
	if c.Section(2).State() == [2]float64{} {
		t.Fatal("third section should carry state before bypass")
	}

	c.SetCoefficients(coeffs[:1])
	if c.Active() != 1 {
		t.Fatalf("Active()=%d, want 1", c.Active())
	}
	for i := 1; i < MaxSections; i++ {
		if st := c.Section(i).State(); st != [2]float64{} {
			t.Fatalf("bypassed section %d kept state %v", i, st)
		}
	}

	// Re-enabling starts the section from silence.
	c.SetCoefficients(coeffs)
	for i := 1; i < 3; i++ {
		if st := c.Section(i).State(); st != [2]float64{} {
			t.Fatalf("re-enabled section %d has stale state %v", i, st)
		}
	}
}

func TestCascade_SetActive(t *testing.T) {
	c := NewCascade(twoSectionCoeffs()...)
	c.ProcessSample(1)

	c.SetActive(1)
	if c.Active() != 1 {
		t.Fatalf("Active()=%d, want 1", c.Active())
	}
	if st := c.Section(1).State(); st != [2]float64{} {
		t.Fatalf("deactivated section kept state %v", st)
	}
	if c.Section(1).Coefficients != twoSectionCoeffs()[1] {
		t.Fatal("SetActive must not touch coefficients")
	}

	c.SetActive(MaxSections + 3)
	if c.Active() != MaxSections {
		t.Fatalf("Active()=%d, want %d", c.Active(), MaxSections)
	}
	c.SetActive(-1)
	if c.Active() != 0 {
		t.Fatalf("Active()=%d, want 0", c.Active())
	}
}

func TestCascade_Reset(t *testing.T) {
	c := NewCascade(twoSectionCoeffs()...)
	c.ProcessSample(1)
	c.Reset()

	if c.State() != [MaxSections][2]float64{} {
		t.Fatalf("state not cleared: %v", c.State())
	}
	if c.Active() != 2 {
		t.Fatalf("Reset changed active count to %d", c.Active())
	}
}

func TestCascade_FlushesDenormals(t *testing.T) {
	c := NewCascade(Coefficients{B0: 1, A1: -0.5})
	c.Section(0).SetState([2]float64{1e-310, 0})

	buf := []float64{0}
	c.ProcessBlock(buf)

	if st := c.Section(0).State(); st != [2]float64{} {
		t.Fatalf("denormal state survived: %v", st)
	}
}

func TestCascade_ProcessBlock_ZeroAlloc(t *testing.T) {
	c := NewCascade(twoSectionCoeffs()...)
	buf := make([]float64, 256)
	c.ProcessBlock(buf)

	short := twoSectionCoeffs()[:1]
	full := twoSectionCoeffs()

	allocs := testing.AllocsPerRun(100, func() {
		c.SetCoefficients(short)
		c.ProcessBlock(buf)
		c.SetCoefficients(full)
		c.ProcessBlock(buf)
	})
	if allocs != 0 {
		t.Fatalf("cascade allocated %.1f times per run", allocs)
	}
}
