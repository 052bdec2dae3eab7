package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// DefaultSize is the FFT length used when Analyze is called with size <= 0
// and the impulse response is shorter.
const DefaultSize = 8192

// floorDB is returned for magnitudes at or below 1e-15.
const floorDB = -300.0

var (
	ErrEmpty             = errors.New("response: empty impulse response")
	ErrInvalidSampleRate = errors.New("response: sample rate must be > 0")
	ErrInvalidFrequency  = errors.New("response: frequency outside [0, Nyquist]")
)

// Spectrum is the magnitude response of an impulse response.
type Spectrum struct {
	SampleRate float64
	// Size is the FFT length. Magnitude has Size/2+1 bins.
	Size      int
	Magnitude []float64
}

// Analyze computes the magnitude spectrum of ir. The impulse response is
// zero-padded (or truncated) to size, rounded up to a power of two. With
// size <= 0 the length is the next power of two that holds ir, but at least
// DefaultSize.
func Analyze(ir []float64, sampleRate float64, size int) (*Spectrum, error) {
	if len(ir) == 0 {
		return nil, ErrEmpty
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if size <= 0 {
		size = max(len(ir), DefaultSize)
	}
	size = nextPowerOfTwo(size)

	in := make([]complex128, size)
	for i := range min(len(ir), size) {
		in[i] = complex(ir[i], 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("response: fft: %w", err)
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return &Spectrum{SampleRate: sampleRate, Size: size, Magnitude: mag}, nil
}

// Bins returns the number of magnitude bins.
func (s *Spectrum) Bins() int {
	return len(s.Magnitude)
}

// Resolution returns the bin spacing in Hz.
func (s *Spectrum) Resolution() float64 {
	return s.SampleRate / float64(s.Size)
}

// Frequency returns the center frequency of bin k.
func (s *Spectrum) Frequency(k int) float64 {
	return float64(k) * s.Resolution()
}

// MagnitudeAt returns the linear magnitude at freq, interpolated between
// the neighboring bins. Frequencies outside [0, Nyquist] are clamped.
func (s *Spectrum) MagnitudeAt(freq float64) float64 {
	if len(s.Magnitude) == 0 {
		return 0
	}

	pos := freq / s.Resolution()
	last := float64(len(s.Magnitude) - 1)
	switch {
	case math.IsNaN(pos) || pos <= 0:
		return s.Magnitude[0]
	case pos >= last:
		return s.Magnitude[len(s.Magnitude)-1]
	}

	k := int(pos)
	frac := pos - float64(k)

	return s.Magnitude[k]*(1-frac) + s.Magnitude[k+1]*frac
}

// MagnitudeDBAt returns MagnitudeAt in dB, floored at -300 dB.
func (s *Spectrum) MagnitudeDBAt(freq float64) float64 {
	return toDB(s.MagnitudeAt(freq))
}

// SlopeDBPerOctave returns the level difference between 2*freq and freq.
// A 12 dB/oct high-cut measured in its stopband returns about -12.
func (s *Spectrum) SlopeDBPerOctave(freq float64) float64 {
	return s.MagnitudeDBAt(2*freq) - s.MagnitudeDBAt(freq)
}

// PeakFrequency returns the center frequency of the loudest bin within
// [lo, hi].
func (s *Spectrum) PeakFrequency(lo, hi float64) float64 {
	res := s.Resolution()
	first := max(0, int(math.Ceil(lo/res)))
	last := min(len(s.Magnitude)-1, int(math.Floor(hi/res)))

	best := first
	for k := first; k <= last; k++ {
		if s.Magnitude[k] > s.Magnitude[best] {
			best = k
		}
	}

	return s.Frequency(best)
}

func toDB(mag float64) float64 {
	if mag <= 1e-15 {
		return floorDB
	}

	return 20 * math.Log10(mag)
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
