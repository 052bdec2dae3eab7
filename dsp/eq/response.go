package eq

import "math"

// Response returns the composite magnitude response in dB of an engine
// running p at sampleRate, evaluated at each of freqs. It is meant for
// displays and offline checks and allocates freely.
func Response(p Parameters, sampleRate float64, freqs []float64) ([]float64, error) {
	e := NewEngine()
	e.params, _ = p.Sanitize()
	if err := e.Prepare(sampleRate, 1, 1); err != nil {
		return nil, err
	}

	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = e.Response(f)
	}

	return out, nil
}

// LogFrequencies returns n frequencies spaced evenly on a log axis from lo
// to hi inclusive. It is the usual x axis for Response.
func LogFrequencies(lo, hi float64, n int) []float64 {
	if n <= 0 || lo <= 0 || hi <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}

	out := make([]float64, n)
	ratio := hi / lo
	for i := range out {
		out[i] = lo * math.Pow(ratio, float64(i)/float64(n-1))
	}
	out[n-1] = hi

	return out
}
