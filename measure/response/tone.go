package response

import (
	"fmt"
	"math"
)

// Goertzel evaluates a single DFT term of a streamed signal.
//
// The state accumulates every sample passed to ProcessBlock until Reset.
// For an exact reading the analyzed block should hold a whole number of
// periods of the target frequency.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	n          int
}

// NewGoertzel returns an analyzer for frequency, which must lie within
// [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrequency, frequency)
	}

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the accumulated state.
func (g *Goertzel) Reset() {
	g.s0, g.s1, g.n = 0, 0, 0
}

// ProcessBlock feeds samples into the recurrence.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1
	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
	g.n += len(input)
}

// Power returns |X[k]|^2 over the samples processed so far.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Amplitude returns the peak amplitude of a sinusoid at the target
// frequency, 2|X[k]|/N.
func (g *Goertzel) Amplitude() float64 {
	p := g.Power()
	if p <= 0 || g.n == 0 {
		return 0
	}

	return 2 * math.Sqrt(p) / float64(g.n)
}

// ToneLevel returns the amplitude of the frequency component of signal.
func ToneLevel(signal []float64, frequency, sampleRate float64) (float64, error) {
	if len(signal) == 0 {
		return 0, ErrEmpty
	}

	g, err := NewGoertzel(frequency, sampleRate)
	if err != nil {
		return 0, err
	}
	g.ProcessBlock(signal)

	return g.Amplitude(), nil
}

// ToneGainDB returns the level change of a tone between input and output,
// in dB. Both signals must hold the same whole number of periods.
func ToneGainDB(input, output []float64, frequency, sampleRate float64) (float64, error) {
	in, err := ToneLevel(input, frequency, sampleRate)
	if err != nil {
		return 0, err
	}
	out, err := ToneLevel(output, frequency, sampleRate)
	if err != nil {
		return 0, err
	}
	if in <= 0 {
		return 0, fmt.Errorf("%w: no input energy at %v Hz", ErrEmpty, frequency)
	}

	return toDB(out / in), nil
}
