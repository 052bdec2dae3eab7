package eq

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync/atomic"

	"github.com/W47K3R9/LudEQ/dsp/core"
	"github.com/W47K3R9/LudEQ/dsp/filter/biquad"
	"github.com/W47K3R9/LudEQ/dsp/filter/design"
)

// MaxChannels is the largest channel count Prepare accepts.
const MaxChannels = 32

// State is the engine lifecycle state.
type State int32

const (
	StateUnprepared State = iota
	StatePrepared
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateUnprepared:
		return "unprepared"
	case StatePrepared:
		return "prepared"
	case StateProcessing:
		return "processing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// chain is the per-channel filter path.
type chain struct {
	lowCut  biquad.Cascade
	peak    biquad.Section
	highCut biquad.Cascade
}

// Engine is the equalizer processor. Prepare, Reset and Release belong to
// the non-real-time side; ProcessBlock belongs to the audio goroutine. The
// two sides must not run concurrently, which is the usual host contract.
// State and ClampCount may be called from any goroutine.
type Engine struct {
	state  atomic.Int32
	clamps atomic.Uint64

	sampleRate float64
	maxBlock   int
	chains     []chain

	// params is the last applied, sanitized snapshot. The coefficient
	// arrays below always correspond to it.
	params  Parameters
	lowCut  [biquad.MaxSections]biquad.Coefficients
	nLow    int
	peak    biquad.Coefficients
	highCut [biquad.MaxSections]biquad.Coefficients
	nHigh   int
}

// NewEngine returns an unprepared engine holding the default parameters.
func NewEngine() *Engine {
	return &Engine{params: DefaultParameters()}
}

// Prepare allocates per-channel filter state for the given stream format
// and computes coefficients for the current parameters. Any previous
// filter state is discarded, so a sample-rate change never mixes state
// designed for different rates. Prepare also selects the block kernel, so
// the first ProcessBlock takes no lock.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize, numChannels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, maxBlockSize)
	}
	if numChannels <= 0 || numChannels > MaxChannels {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidChannels, numChannels, MaxChannels)
	}

	biquad.Kernel()

	e.sampleRate = sampleRate
	e.maxBlock = maxBlockSize
	e.chains = make([]chain, numChannels)

	e.designLowCut()
	e.designPeak()
	e.designHighCut()
	for i := range e.chains {
		e.applyLowCut(&e.chains[i])
		e.chains[i].peak.UpdateCoefficients(e.peak)
		e.applyHighCut(&e.chains[i])
	}

	e.state.Store(int32(StatePrepared))

	return nil
}

// Release drops all filter state and returns to StateUnprepared.
func (e *Engine) Release() {
	e.chains = nil
	e.state.Store(int32(StateUnprepared))
}

// Reset zeroes every filter's history without touching coefficients.
// It does nothing on an unprepared engine.
func (e *Engine) Reset() {
	if e.State() == StateUnprepared {
		return
	}

	for i := range e.chains {
		c := &e.chains[i]
		c.lowCut.Reset()
		c.peak.Reset()
		c.highCut.Reset()
	}

	e.state.Store(int32(StatePrepared))
}

// ProcessBlock filters buf in place with parameters p.
//
// buf holds one slice per channel. p is clamped to the layout ranges;
// coefficients are recomputed only for bands whose parameters changed and
// glide in over biquad.GlideSamples samples without clearing filter
// history. On the first block after Prepare or Reset there is no history
// and they apply at once. Channels beyond the prepared count are silenced.
// Blocks longer than the prepared maximum are processed all the same. On
// an unprepared engine buf is left untouched.
//
// ProcessBlock does not allocate, lock or block.
func (e *Engine) ProcessBlock(buf [][]float64, p Parameters) {
	st := e.State()
	if st == StateUnprepared {
		return
	}
	e.state.Store(int32(StateProcessing))

	e.update(p)
	if st == StatePrepared {
		for i := range e.chains {
			c := &e.chains[i]
			c.lowCut.Settle()
			c.peak.Settle()
			c.highCut.Settle()
		}
	}

	for i, ch := range buf {
		if i >= len(e.chains) {
			clear(ch)
			continue
		}

		c := &e.chains[i]
		c.lowCut.ProcessBlock(ch)
		c.peak.ProcessBlock(ch)
		c.peak.FlushDenormals()
		c.highCut.ProcessBlock(ch)
	}
}

// update applies p, touching only the bands that changed.
func (e *Engine) update(p Parameters) {
	p, n := p.Sanitize()
	if n > 0 {
		e.clamps.Add(uint64(n))
	}

	old := e.params
	e.params = p

	if p.LowCutFreq != old.LowCutFreq || p.LowCutSlope != old.LowCutSlope {
		e.designLowCut()
		for i := range e.chains {
			e.applyLowCut(&e.chains[i])
		}
	}

	if p.PeakFreq != old.PeakFreq || p.PeakGainDB != old.PeakGainDB || p.PeakQ != old.PeakQ {
		e.designPeak()
		for i := range e.chains {
			e.chains[i].peak.UpdateCoefficients(e.peak)
		}
	}

	if p.HighCutFreq != old.HighCutFreq || p.HighCutSlope != old.HighCutSlope {
		e.designHighCut()
		for i := range e.chains {
			e.applyHighCut(&e.chains[i])
		}
	}
}

func (e *Engine) designLowCut() {
	e.nLow = design.ButterworthHPInto(&e.lowCut, e.params.LowCutFreq, e.params.LowCutSlope, e.sampleRate)
}

func (e *Engine) designPeak() {
	e.peak = design.Peak(e.params.PeakFreq, e.params.PeakGainDB, e.params.PeakQ, e.sampleRate)
}

func (e *Engine) designHighCut() {
	e.nHigh = design.ButterworthLPInto(&e.highCut, e.params.HighCutFreq, e.params.HighCutSlope, e.sampleRate)
}

func (e *Engine) applyLowCut(c *chain) {
	c.lowCut.SetCoefficients(e.lowCut[:e.nLow])
}

func (e *Engine) applyHighCut(c *chain) {
	c.highCut.SetCoefficients(e.highCut[:e.nHigh])
}

// State returns the lifecycle state. Safe for concurrent use.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// ClampCount returns the number of out-of-range parameter fields that
// ProcessBlock has clamped so far. Safe for concurrent use.
func (e *Engine) ClampCount() uint64 {
	return e.clamps.Load()
}

// SampleRate returns the prepared sample rate, or 0 when unprepared.
func (e *Engine) SampleRate() float64 {
	if e.State() == StateUnprepared {
		return 0
	}

	return e.sampleRate
}

// MaxBlockSize returns the block size passed to Prepare.
func (e *Engine) MaxBlockSize() int {
	return e.maxBlock
}

// Channels returns the prepared channel count.
func (e *Engine) Channels() int {
	return len(e.chains)
}

// Parameters returns the last applied snapshot.
func (e *Engine) Parameters() Parameters {
	return e.params
}

// Response returns the composite magnitude in dB at freq for the
// coefficients currently applied. It returns 0 on an unprepared engine.
func (e *Engine) Response(freq float64) float64 {
	if e.State() == StateUnprepared {
		return 0
	}

	h := complex(1, 0)
	for i := range e.nLow {
		h *= e.lowCut[i].Response(freq, e.sampleRate)
	}
	h *= e.peak.Response(freq, e.sampleRate)
	for i := range e.nHigh {
		h *= e.highCut[i].Response(freq, e.sampleRate)
	}

	return core.LinearToDB(cmplx.Abs(h))
}
