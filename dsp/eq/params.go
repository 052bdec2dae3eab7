package eq

import (
	"math"

	"github.com/W47K3R9/LudEQ/dsp/filter/design"
)

// Parameters is one snapshot of every equalizer setting. It is a plain
// value and is copied, never shared, between goroutines.
type Parameters struct {
	LowCutFreq   float64
	HighCutFreq  float64
	PeakFreq     float64
	PeakGainDB   float64
	PeakQ        float64
	LowCutSlope  design.Slope
	HighCutSlope design.Slope
}

// DefaultParameters returns the layout defaults: a flat response.
func DefaultParameters() Parameters {
	var p Parameters
	for _, s := range layout {
		p.Set(s.ID, s.Default)
	}

	return p
}

// Value returns the field addressed by id as a float64. Slopes are
// returned as their choice index.
func (p *Parameters) Value(id ParamID) float64 {
	switch id {
	case ParamLowCut:
		return p.LowCutFreq
	case ParamHighCut:
		return p.HighCutFreq
	case ParamPeakFreq:
		return p.PeakFreq
	case ParamPeakGain:
		return p.PeakGainDB
	case ParamPeakQ:
		return p.PeakQ
	case ParamLowCutSlope:
		return float64(p.LowCutSlope)
	case ParamHighCutSlope:
		return float64(p.HighCutSlope)
	default:
		return math.NaN()
	}
}

// Set stores v in the field addressed by id without validation. Slope
// values are rounded to the nearest index. Unknown ids are ignored.
func (p *Parameters) Set(id ParamID, v float64) {
	switch id {
	case ParamLowCut:
		p.LowCutFreq = v
	case ParamHighCut:
		p.HighCutFreq = v
	case ParamPeakFreq:
		p.PeakFreq = v
	case ParamPeakGain:
		p.PeakGainDB = v
	case ParamPeakQ:
		p.PeakQ = v
	case ParamLowCutSlope:
		p.LowCutSlope = slopeFromValue(v)
	case ParamHighCutSlope:
		p.HighCutSlope = slopeFromValue(v)
	}
}

func slopeFromValue(v float64) design.Slope {
	if math.IsNaN(v) {
		return design.Slope12
	}

	return design.ClampSlope(int(math.Round(math.Max(-1, math.Min(v, float64(design.MaxSlope)+1)))))
}

// Sanitize clamps every field to its layout range and returns the result
// together with the number of fields that had to be changed. It does not
// snap to steps. Sanitize does not allocate.
func (p Parameters) Sanitize() (Parameters, int) {
	clamped := 0
	for i := range layout {
		s := &layout[i]
		v := p.Value(s.ID)
		c := s.Clamp(v)
		if c != v { // also true for NaN
			clamped++
			p.Set(s.ID, c)
		}
	}

	return p, clamped
}
