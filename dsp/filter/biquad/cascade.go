package biquad

// MaxSections is the number of second-order sections a Cascade can hold.
// Four sections realize a 48 dB/oct (8th order) cut filter.
const MaxSections = 4

// Cascade is a fixed-capacity series chain of biquad sections. Only the
// first Active sections process audio; the remaining sections are bypassed
// and hold zero state.
//
// The storage is a fixed array so that changing the active length never
// allocates and can be done from the audio thread.
type Cascade struct {
	sections [MaxSections]Section
	active   int
}

// NewCascade creates a cascade with one active section per coefficient set.
// Coefficient sets beyond MaxSections are ignored.
func NewCascade(coeffs ...Coefficients) *Cascade {
	c := &Cascade{}
	c.SetCoefficients(coeffs)

	return c
}

// SetCoefficients applies coeffs to exactly the first len(coeffs) sections
// and bypasses the rest.
//
// Sections that stay active keep their state and glide to the new
// coefficients, so a cutoff sweep does not produce the discontinuity of a
// restarted filter. Sections that become bypassed are reset, which
// guarantees that a later re-activation starts from silence rather than
// from stale state.
func (c *Cascade) SetCoefficients(coeffs []Coefficients) {
	n := len(coeffs)
	if n > MaxSections {
		n = MaxSections
	}

	for i := 0; i < n; i++ {
		c.sections[i].UpdateCoefficients(coeffs[i])
	}

	for i := n; i < MaxSections; i++ {
		c.sections[i].setIdentity()
	}

	c.active = n
}

// SetActive changes the number of processing sections without touching
// their coefficients. n is clamped to [0, MaxSections]. Sections that
// leave the active range are reset.
func (c *Cascade) SetActive(n int) {
	n = max(0, min(n, MaxSections))
	for i := n; i < c.active; i++ {
		c.sections[i].Reset()
	}

	c.active = n
}

// ProcessSample cascades x through all active sections in order.
func (c *Cascade) ProcessSample(x float64) float64 {
	for i := 0; i < c.active; i++ {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters a block in-place through the active sections.
// Zero-alloc.
func (c *Cascade) ProcessBlock(buf []float64) {
	for i := 0; i < c.active; i++ {
		c.sections[i].ProcessBlock(buf)
		c.sections[i].FlushDenormals()
	}
}

// Reset clears the state of every section.
func (c *Cascade) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// Settle finishes every section's glide at once.
func (c *Cascade) Settle() {
	for i := range c.sections {
		c.sections[i].Settle()
	}
}

// Active returns the number of sections currently processing audio.
func (c *Cascade) Active() int { return c.active }

// Order returns the filter order realized by the active sections.
func (c *Cascade) Order() int { return 2 * c.active }

// Section returns a pointer to the i-th section for inspection.
func (c *Cascade) Section(i int) *Section {
	return &c.sections[i]
}

// Coefficients returns the coefficient sets of the active sections.
func (c *Cascade) Coefficients() []Coefficients {
	out := make([]Coefficients, c.active)
	for i := range out {
		out[i] = c.sections[i].Coefficients
	}

	return out
}

// State returns a snapshot of all section integrator states, including
// bypassed sections.
func (c *Cascade) State() [MaxSections][2]float64 {
	var states [MaxSections][2]float64
	for i := range c.sections {
		states[i] = c.sections[i].State()
	}

	return states
}

// SetState restores previously saved section states.
func (c *Cascade) SetState(states [MaxSections][2]float64) {
	for i := range c.sections {
		c.sections[i].SetState(states[i])
	}
}
