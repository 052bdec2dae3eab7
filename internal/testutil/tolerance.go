package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any sample of any channel is NaN or Inf.
func RequireFinite(t *testing.T, channels ...[]float64) {
	t.Helper()
	for c, data := range channels {
		for i, v := range data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("channel %d index %d: non-finite value %v", c, i, v)
			}
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		maxDiff = math.Max(maxDiff, math.Abs(a[i]-b[i]))
	}
	return maxDiff, nil
}

// RMS returns the root mean square of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// Envelope returns the RMS of consecutive windows of x. A trailing partial
// window is dropped.
func Envelope(x []float64, window int) []float64 {
	if window <= 0 {
		return nil
	}
	out := make([]float64, 0, len(x)/window)
	for start := 0; start+window <= len(x); start += window {
		out = append(out, RMS(x[start:start+window]))
	}
	return out
}

// MaxStepDB returns the largest level change in dB between neighbouring
// envelope values. Windows below floor are ignored.
func MaxStepDB(env []float64, floor float64) float64 {
	var worst float64
	for i := 1; i < len(env); i++ {
		if env[i-1] < floor || env[i] < floor {
			continue
		}
		worst = math.Max(worst, math.Abs(20*math.Log10(env[i]/env[i-1])))
	}
	return worst
}
