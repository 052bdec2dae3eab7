package response

import (
	"errors"
	"math"
	"testing"

	"github.com/W47K3R9/LudEQ/internal/testutil"
)

func TestToneLevel_WholePeriods(t *testing.T) {
	const sr = 48000.0

	tests := []struct {
		freq, amp float64
	}{
		{freq: 1000, amp: 0.5},
		{freq: 100, amp: 1},
		{freq: 12000, amp: 0.25},
	}

	for _, tt := range tests {
		// 4800 samples hold a whole number of periods for every case.
		x := testutil.Sine(tt.freq, sr, tt.amp, 4800)

		got, err := ToneLevel(x, tt.freq, sr)
		if err != nil {
			t.Fatalf("%g Hz: %v", tt.freq, err)
		}
		if !almostEqual(got, tt.amp, 1e-6) {
			t.Errorf("%g Hz: amplitude=%g, want %g", tt.freq, got, tt.amp)
		}
	}
}

func TestToneLevel_RejectsOtherTones(t *testing.T) {
	const sr = 48000.0

	x := testutil.Sine(2000, sr, 1, 4800)

	got, err := ToneLevel(x, 1000, sr)
	if err != nil {
		t.Fatal(err)
	}
	if got > 1e-9 {
		t.Fatalf("level at 1 kHz of a 2 kHz tone = %g, want ~0", got)
	}
}

func TestToneGainDB(t *testing.T) {
	const sr = 48000.0

	in := testutil.Sine(1000, sr, 1, 4800)
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = 0.5 * v
	}

	got, err := ToneGainDB(in, out, 1000, sr)
	if err != nil {
		t.Fatal(err)
	}
	if want := 20 * math.Log10(0.5); !almostEqual(got, want, 1e-6) {
		t.Fatalf("gain=%g dB, want %g", got, want)
	}

	if _, err := ToneGainDB(make([]float64, 10), out, 1000, sr); !errors.Is(err, ErrEmpty) {
		t.Fatalf("silent input: err=%v, want ErrEmpty", err)
	}
}

func TestGoertzel_StreamingMatchesOneShot(t *testing.T) {
	const sr = 44100.0

	x := testutil.Sine(441, sr, 0.8, 4410)

	g, err := NewGoertzel(441, sr)
	if err != nil {
		t.Fatal(err)
	}
	for _, blk := range [][]float64{x[:1000], x[1000:1001], x[1001:]} {
		g.ProcessBlock(blk)
	}

	want, err := ToneLevel(x, 441, sr)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Amplitude(); !almostEqual(got, want, 1e-9) {
		t.Fatalf("streamed=%g one-shot=%g", got, want)
	}

	g.Reset()
	if g.Amplitude() != 0 {
		t.Fatal("Reset did not clear state")
	}
}

func TestNewGoertzel_Errors(t *testing.T) {
	if _, err := NewGoertzel(1000, 0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("sr=0: err=%v", err)
	}
	for _, f := range []float64{-1, 24001, math.NaN()} {
		if _, err := NewGoertzel(f, 48000); !errors.Is(err, ErrInvalidFrequency) {
			t.Errorf("freq=%v: err=%v, want ErrInvalidFrequency", f, err)
		}
	}
	if _, err := ToneLevel(nil, 1000, 48000); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty: err=%v", err)
	}
}
