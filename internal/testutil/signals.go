package testutil

import (
	"math"
	"math/rand/v2"
)

// Sine generates a deterministic sine wave.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates uniform white noise in [-amplitude, amplitude) from a
// fixed seed.
func Noise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Planar returns channels independent copies of mono.
func Planar(channels int, mono []float64) [][]float64 {
	out := make([][]float64, channels)
	for c := range out {
		out[c] = append([]float64(nil), mono...)
	}
	return out
}

// Blocks splits each channel of buf into consecutive views of at most size
// frames. The views share memory with buf.
func Blocks(buf [][]float64, size int) [][][]float64 {
	if len(buf) == 0 || size <= 0 {
		return nil
	}

	n := len(buf[0])
	var out [][][]float64
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		block := make([][]float64, len(buf))
		for c := range buf {
			block[c] = buf[c][start:end]
		}
		out = append(out, block)
	}
	return out
}
