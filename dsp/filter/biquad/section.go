//nolint:funcorder
package biquad

import (
	"math"
	"sync"

	"github.com/W47K3R9/LudEQ/dsp/core"
	archregistry "github.com/W47K3R9/LudEQ/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

// GlideSamples is the length of the transition UpdateCoefficients applies
// to a running section.
const GlideSamples = 64

// Coefficients holds the transfer function of a single second-order
// section (biquad), with a0 normalized to 1 and not stored:
//
//	H(z) = (B0 + B1*z^-1 + B2*z^-2) / (1 + A1*z^-1 + A2*z^-2)
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns the pass-through coefficient set (B0=1, all else 0).
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// IsIdentity reports whether c passes its input through unchanged.
func (c Coefficients) IsIdentity() bool {
	return c == Coefficients{B0: 1}
}

// svf is a coefficient set in trapezoidal state-variable form: integrator
// gain g = tan(pi*fc/fs), damping k = 1/Q and the weights of the input,
// band and low outputs.
type svf struct {
	g, k       float64
	m0, m1, m2 float64
}

// passThrough is what realize returns for Identity.
var passThrough = svf{g: 1, k: 2, m0: 1}

// realize maps c onto the state-variable form by inverting the bilinear
// transform. Sets outside the stability triangle have no such form and
// are realized as a pass-through.
func realize(c Coefficients) svf {
	if !c.IsStable() {
		return passThrough
	}

	lo := 1 + c.A1 + c.A2 // A(z) at DC
	hi := 1 - c.A1 + c.A2 // A(z) at Nyquist
	g := math.Sqrt(lo / hi)
	kg := 2 * (1 - c.A2) / hi
	m0 := (c.B0 - c.B1 + c.B2) / hi

	return svf{
		g:  g,
		k:  kg / g,
		m0: m0,
		m1: (2*(c.B0-c.B2)/hi - m0*kg) / g,
		m2: (c.B0+c.B1+c.B2)/lo - m0,
	}
}

func (v svf) params() archregistry.Params {
	a1 := 1 / (1 + v.g*(v.g+v.k))
	a2 := v.g * a1

	return archregistry.Params{
		A1: a1, A2: a2, A3: v.g * a2,
		M0: v.m0, M1: v.m1, M2: v.m2,
	}
}

// stepTo returns the per-sample increment that reaches to in n samples.
func (v svf) stepTo(to svf, n int) svf {
	f := 1 / float64(n)

	return svf{
		g:  (to.g - v.g) * f,
		k:  (to.k - v.k) * f,
		m0: (to.m0 - v.m0) * f,
		m1: (to.m1 - v.m1) * f,
		m2: (to.m2 - v.m2) * f,
	}
}

func (v svf) plus(d svf) svf {
	return svf{g: v.g + d.g, k: v.k + d.k, m0: v.m0 + d.m0, m1: v.m1 + d.m1, m2: v.m2 + d.m2}
}

// Section is a single biquad filter with coefficients and internal state.
//
// The transfer function given by Coefficients is run as a trapezoidal
// state-variable filter. Its two integrator states keep their meaning
// across coefficient changes and their energy never grows without input,
// so the filter stays bounded under arbitrarily fast modulation. When the
// coefficients of a running section change, the realized response moves
// to the new set linearly over GlideSamples samples.
//
// Coefficients is the target response; change it with UpdateCoefficients.
// The zero Section outputs silence until it is given coefficients.
type Section struct {
	Coefficients

	cur, target, step svf
	glide             int
	kern              archregistry.Params

	s1, s2 float64
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockName     string
	processBlockInitOnce sync.Once
)

// Kernel selects the block kernel for the running CPU, if that has not
// happened yet, and returns its name. The selection reads the kernel
// registry under its lock, so callers that feed an audio callback should
// run Kernel once beforehand.
func Kernel() string {
	processBlockInitOnce.Do(initProcessBlockKernel)

	return processBlockName
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	s := &Section{}
	s.UpdateCoefficients(c)

	return s
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	if s.glide > 0 {
		s.advance()
	}

	p := &s.kern
	v3 := x - s.s2
	v1 := p.A1*s.s1 + p.A2*v3
	v2 := s.s2 + p.A2*s.s1 + p.A3*v3
	s.s1 = 2*v1 - s.s1
	s.s2 = 2*v2 - s.s2

	return p.M0*x + p.M1*v1 + p.M2*v2
}

// advance moves the realized response one sample along the glide.
func (s *Section) advance() {
	s.glide--
	if s.glide == 0 {
		s.cur = s.target
	} else {
		s.cur = s.cur.plus(s.step)
	}

	s.kern = s.cur.params()
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
//
// Samples inside a glide run one at a time; the rest go through the block
// kernel chosen once per process from the registered implementations
// that the running CPU supports.
func (s *Section) ProcessBlock(buf []float64) {
	if len(buf) == 0 {
		return
	}

	processBlockInitOnce.Do(initProcessBlockKernel)

	i := 0
	for ; s.glide > 0 && i < len(buf); i++ {
		buf[i] = s.ProcessSample(buf[i])
	}

	if i < len(buf) {
		s.s1, s.s2 = processBlockImpl(s.kern, s.s1, s.s2, buf[i:])
	}
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	if entry.ProcessBlock == nil {
		panic("biquad: selected kernel missing ProcessBlock")
	}

	processBlockImpl = entry.ProcessBlock
	processBlockName = entry.Name
}

// ProcessBlockTo filters src into dst. Both slices must have the same length.
// Zero-alloc.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	dst = dst[:len(src)]
	copy(dst, src)
	s.ProcessBlock(dst)
}

// UpdateCoefficients makes c the section's response without clearing its
// state, so the filter continues from its history instead of restarting
// from silence. A section that already had coefficients glides to c over
// GlideSamples samples; a zero Section takes c at once. Updating with
// identical coefficients is a no-op.
func (s *Section) UpdateCoefficients(c Coefficients) {
	if c == s.Coefficients && s.cur.g != 0 {
		return
	}

	s.Coefficients = c
	s.target = realize(c)

	if s.cur.g == 0 {
		s.Settle()
		return
	}

	s.step = s.cur.stepTo(s.target, GlideSamples)
	s.glide = GlideSamples
}

// Settle finishes a glide in progress at once.
func (s *Section) Settle() {
	s.glide = 0
	s.cur = s.target
	s.kern = s.cur.params()
}

// Gliding reports whether the realized response is still moving towards
// Coefficients.
func (s *Section) Gliding() bool {
	return s.glide > 0
}

// setIdentity bypasses the section: history is cleared and the response
// switches to pass-through at once.
func (s *Section) setIdentity() {
	s.Coefficients = Identity()
	s.target = passThrough
	s.Reset()
}

// FlushDenormals zeroes integrator values too small to matter, keeping a
// decaying filter out of the slow subnormal range.
func (s *Section) FlushDenormals() {
	s.s1 = core.FlushDenormals(s.s1)
	s.s2 = core.FlushDenormals(s.s2)
}

// Reset clears the integrator state. With no history left to carry over,
// a glide in progress is finished as well.
func (s *Section) Reset() {
	s.s1 = 0
	s.s2 = 0
	s.Settle()
}

// State returns the current integrator state [s1, s2].
func (s *Section) State() [2]float64 {
	return [2]float64{s.s1, s.s2}
}

// SetState restores a previously saved integrator state.
func (s *Section) SetState(state [2]float64) {
	s.s1 = state[0]
	s.s2 = state[1]
}
