package design

import (
	"fmt"
	"strings"

	"github.com/W47K3R9/LudEQ/dsp/filter/biquad"
)

// Slope selects the steepness of a cut filter. Slope n is realized by n+1
// cascaded second-order sections.
type Slope int

const (
	Slope12 Slope = iota
	Slope24
	Slope36
	Slope48
)

// MaxSlope is the steepest supported slope.
const MaxSlope = Slope(biquad.MaxSections - 1)

var slopeNames = [...]string{"12dB/Oct", "24dB/Oct", "36dB/Oct", "48dB/Oct"}

// SlopeNames returns the display names in index order.
func SlopeNames() []string {
	return slopeNames[:]
}

// ClampSlope maps any index to a valid Slope.
func ClampSlope(index int) Slope {
	return Slope(max(0, min(index, int(MaxSlope))))
}

// ParseSlope accepts a display name ("24dB/Oct", case-insensitive) or a
// bare dB/oct figure ("24").
func ParseSlope(s string) (Slope, error) {
	s = strings.TrimSpace(s)
	for i, name := range slopeNames {
		if strings.EqualFold(s, name) || s == strings.TrimSuffix(name, "dB/Oct") {
			return Slope(i), nil
		}
	}

	return 0, fmt.Errorf("design: unknown slope %q", s)
}

// Sections returns the number of second-order sections.
func (s Slope) Sections() int { return int(ClampSlope(int(s))) + 1 }

// Order returns the filter order.
func (s Slope) Order() int { return 2 * s.Sections() }

// DBPerOctave returns the asymptotic attenuation rate.
func (s Slope) DBPerOctave() float64 { return 12 * float64(s.Sections()) }

func (s Slope) String() string {
	return slopeNames[ClampSlope(int(s))]
}
