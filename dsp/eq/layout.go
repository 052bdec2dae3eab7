package eq

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/W47K3R9/LudEQ/dsp/core"
	"github.com/W47K3R9/LudEQ/dsp/filter/design"
)

// ParamID indexes the automatable parameters.
type ParamID int

const (
	ParamLowCut ParamID = iota
	ParamHighCut
	ParamPeakFreq
	ParamPeakGain
	ParamPeakQ
	ParamLowCutSlope
	ParamHighCutSlope

	NumParams = int(ParamHighCutSlope) + 1
)

// ParamSpec describes one host-visible parameter.
type ParamSpec struct {
	ID      ParamID
	Name    string // stable host identifier, also the state key
	Unit    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
	Choices []string // non-nil for choice parameters
}

var layout = [NumParams]ParamSpec{
	{ID: ParamLowCut, Name: "Low Cut", Unit: "Hz", Min: design.MinFrequency, Max: design.MaxFrequency, Step: 1, Default: 20},
	{ID: ParamHighCut, Name: "High Cut", Unit: "Hz", Min: design.MinFrequency, Max: design.MaxFrequency, Step: 1, Default: 20000},
	{ID: ParamPeakFreq, Name: "Peak Freq", Unit: "Hz", Min: design.MinFrequency, Max: design.MaxFrequency, Step: 1, Default: 1000},
	{ID: ParamPeakGain, Name: "Peak Gain", Unit: "dB", Min: design.MinGainDB, Max: design.MaxGainDB, Step: 0.1, Default: 0},
	{ID: ParamPeakQ, Name: "Peak Q", Min: design.MinQ, Max: design.MaxQ, Step: 0.05, Default: 1},
	{ID: ParamLowCutSlope, Name: "Low Cut Slope", Min: 0, Max: float64(design.MaxSlope), Step: 1, Default: 0, Choices: design.SlopeNames()},
	{ID: ParamHighCutSlope, Name: "High Cut Slope", Min: 0, Max: float64(design.MaxSlope), Step: 1, Default: 0, Choices: design.SlopeNames()},
}

// Layout returns the parameter table in ParamID order. The returned slice
// is a copy and may be modified by the caller.
func Layout() []ParamSpec {
	out := make([]ParamSpec, NumParams)
	copy(out, layout[:])

	return out
}

// Spec returns the description of id. It panics for an unknown id.
func Spec(id ParamID) ParamSpec {
	return layout[id]
}

// Lookup finds a parameter by Name (case-insensitive) or Slug.
func Lookup(name string) (ParamSpec, bool) {
	name = strings.TrimSpace(name)
	for _, s := range layout {
		if strings.EqualFold(s.Name, name) || s.Slug() == name {
			return s, true
		}
	}

	return ParamSpec{}, false
}

func (id ParamID) String() string {
	if id < 0 || int(id) >= NumParams {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}

	return layout[id].Name
}

// Valid reports whether id names a parameter.
func (id ParamID) Valid() bool {
	return id >= 0 && int(id) < NumParams
}

// Slug is the lower-case, underscore-separated form of Name, e.g.
// "peak_gain". It is used for topics and command-line keys.
func (s ParamSpec) Slug() string {
	return strings.ReplaceAll(strings.ToLower(s.Name), " ", "_")
}

// IsChoice reports whether the parameter selects from Choices.
func (s ParamSpec) IsChoice() bool {
	return s.Choices != nil
}

// Clamp limits v to [Min, Max]. NaN maps to Default.
func (s ParamSpec) Clamp(v float64) float64 {
	return core.ClampFinite(v, s.Min, s.Max, s.Default)
}

// Snap rounds v to the nearest Step from Min, then clamps.
func (s ParamSpec) Snap(v float64) float64 {
	v = s.Clamp(v)
	v = core.Snap(v, s.Min, s.Step)
	// Remove the representation error of fractional steps, e.g. 0.30000000000000004.
	if s.Step < 1 {
		scale := math.Round(1 / s.Step)
		v = math.Round(v*scale) / scale
	}

	return s.Clamp(v)
}

// InRange reports whether v lies within [Min, Max].
func (s ParamSpec) InRange(v float64) bool {
	return v >= s.Min && v <= s.Max
}

// Normalize maps v to [0, 1] linearly over [Min, Max].
func (s ParamSpec) Normalize(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}

	return (s.Clamp(v) - s.Min) / (s.Max - s.Min)
}

// Denormalize maps n in [0, 1] back to a snapped parameter value.
func (s ParamSpec) Denormalize(n float64) float64 {
	n = core.ClampFinite(n, 0, 1, s.Normalize(s.Default))

	return s.Snap(s.Min + n*(s.Max-s.Min))
}

// Format renders v for display, e.g. "1000 Hz", "+6.0 dB", "24dB/Oct".
func (s ParamSpec) Format(v float64) string {
	v = s.Clamp(v)
	switch {
	case s.IsChoice():
		return s.Choices[int(math.Round(v-s.Min))]
	case s.Unit == "Hz":
		return fmt.Sprintf("%.0f Hz", v)
	case s.Unit == "dB":
		return fmt.Sprintf("%+.1f dB", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Parse is the inverse of Format. It accepts bare numbers, numbers with the
// unit suffix and, for choice parameters, choice names.
func (s ParamSpec) Parse(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if s.IsChoice() {
		for i, c := range s.Choices {
			if strings.EqualFold(c, text) {
				return s.Min + float64(i), nil
			}
		}
		if slope, err := design.ParseSlope(text); err == nil {
			return float64(slope), nil
		}
	}

	num := strings.TrimSpace(strings.TrimSuffix(text, s.Unit))
	v, err := strconv.ParseFloat(strings.TrimPrefix(num, "+"), 64)
	if err != nil {
		return 0, fmt.Errorf("eq: parse %s value %q: %w", s.Name, text, err)
	}

	return s.Snap(v), nil
}
