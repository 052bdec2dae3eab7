package eq

import (
	"math"
	"testing"
)

func TestLayout_Table(t *testing.T) {
	tests := []struct {
		id                       ParamID
		name, unit               string
		minV, maxV, step, defVal float64
	}{
		{ParamLowCut, "Low Cut", "Hz", 20, 20000, 1, 20},
		{ParamHighCut, "High Cut", "Hz", 20, 20000, 1, 20000},
		{ParamPeakFreq, "Peak Freq", "Hz", 20, 20000, 1, 1000},
		{ParamPeakGain, "Peak Gain", "dB", -12, 12, 0.1, 0},
		{ParamPeakQ, "Peak Q", "", 0.1, 10, 0.05, 1},
		{ParamLowCutSlope, "Low Cut Slope", "", 0, 3, 1, 0},
		{ParamHighCutSlope, "High Cut Slope", "", 0, 3, 1, 0},
	}

	specs := Layout()
	if len(specs) != len(tests) || NumParams != len(tests) {
		t.Fatalf("layout has %d entries (NumParams=%d), want %d", len(specs), NumParams, len(tests))
	}

	for i, tt := range tests {
		s := specs[i]
		if s.ID != tt.id || s.Name != tt.name || s.Unit != tt.unit {
			t.Errorf("entry %d = {%v %q %q}, want {%v %q %q}", i, s.ID, s.Name, s.Unit, tt.id, tt.name, tt.unit)
		}
		if s.Min != tt.minV || s.Max != tt.maxV || s.Step != tt.step || s.Default != tt.defVal {
			t.Errorf("%s: range [%g, %g] step %g default %g, want [%g, %g] step %g default %g",
				s.Name, s.Min, s.Max, s.Step, s.Default, tt.minV, tt.maxV, tt.step, tt.defVal)
		}
	}
}

func TestLayout_SlopeChoices(t *testing.T) {
	want := []string{"12dB/Oct", "24dB/Oct", "36dB/Oct", "48dB/Oct"}
	for _, id := range []ParamID{ParamLowCutSlope, ParamHighCutSlope} {
		s := Spec(id)
		if !s.IsChoice() {
			t.Fatalf("%s is not a choice parameter", s.Name)
		}
		if len(s.Choices) != len(want) {
			t.Fatalf("%s: %d choices, want %d", s.Name, len(s.Choices), len(want))
		}
		for i := range want {
			if s.Choices[i] != want[i] {
				t.Errorf("%s choice %d = %q, want %q", s.Name, i, s.Choices[i], want[i])
			}
		}
	}

	if Spec(ParamPeakQ).IsChoice() {
		t.Error("Peak Q reported as choice")
	}
}

func TestLayout_ReturnsCopy(t *testing.T) {
	specs := Layout()
	specs[0].Name = "changed"

	if Spec(ParamLowCut).Name != "Low Cut" {
		t.Fatal("Layout exposed the package table")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want ParamID
		ok   bool
	}{
		{in: "Peak Gain", want: ParamPeakGain, ok: true},
		{in: "peak q", want: ParamPeakQ, ok: true},
		{in: "high_cut_slope", want: ParamHighCutSlope, ok: true},
		{in: " Low Cut ", want: ParamLowCut, ok: true},
		{in: "gain", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		s, ok := Lookup(tt.in)
		if ok != tt.ok || (ok && s.ID != tt.want) {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.in, s.ID, ok, tt.want, tt.ok)
		}
	}
}

func TestParamID_StringAndValid(t *testing.T) {
	if got := ParamPeakFreq.String(); got != "Peak Freq" {
		t.Errorf("String() = %q", got)
	}
	if got := ParamID(42).String(); got != "ParamID(42)" {
		t.Errorf("String() = %q", got)
	}
	if ParamID(-1).Valid() || ParamID(NumParams).Valid() {
		t.Error("out-of-range id reported valid")
	}
	if !ParamHighCutSlope.Valid() {
		t.Error("last id reported invalid")
	}
}

func TestParamSpec_Slug(t *testing.T) {
	want := []string{"low_cut", "high_cut", "peak_freq", "peak_gain", "peak_q", "low_cut_slope", "high_cut_slope"}
	for i, s := range Layout() {
		if got := s.Slug(); got != want[i] {
			t.Errorf("%s.Slug() = %q, want %q", s.Name, got, want[i])
		}
	}
}

func TestParamSpec_Snap(t *testing.T) {
	tests := []struct {
		id       ParamID
		in, want float64
	}{
		{ParamLowCut, 99.6, 100},
		{ParamLowCut, 5, 20},
		{ParamLowCut, math.NaN(), 20},
		{ParamHighCut, math.Inf(1), 20000},
		{ParamPeakGain, 2.34, 2.3},
		{ParamPeakGain, 0.3, 0.3},
		{ParamPeakGain, -40, -12},
		{ParamPeakQ, 0.93, 0.95},
		{ParamPeakQ, 0.12, 0.1},
		{ParamPeakQ, 10.02, 10},
		{ParamLowCutSlope, 1.4, 1},
		{ParamHighCutSlope, 7, 3},
	}

	for _, tt := range tests {
		if got := Spec(tt.id).Snap(tt.in); got != tt.want {
			t.Errorf("%s.Snap(%v) = %v, want %v", tt.id, tt.in, got, tt.want)
		}
	}
}

func TestParamSpec_NormalizeRoundTrip(t *testing.T) {
	gain := Spec(ParamPeakGain)

	if got := gain.Normalize(0); got != 0.5 {
		t.Errorf("Normalize(0) = %v, want 0.5", got)
	}
	if got := gain.Denormalize(1); got != 12 {
		t.Errorf("Denormalize(1) = %v, want 12", got)
	}
	if got := gain.Denormalize(0.5); got != 0 {
		t.Errorf("Denormalize(0.5) = %v, want 0", got)
	}
	if got := gain.Denormalize(math.NaN()); got != 0 {
		t.Errorf("Denormalize(NaN) = %v, want default", got)
	}
	if got := gain.Denormalize(-3); got != -12 {
		t.Errorf("Denormalize(-3) = %v, want -12", got)
	}

	for _, s := range Layout() {
		for _, v := range []float64{s.Min, s.Default, s.Max} {
			if got := s.Denormalize(s.Normalize(v)); math.Abs(got-v) > s.Step/2 {
				t.Errorf("%s: round trip of %v gave %v", s.Name, v, got)
			}
		}
	}
}

func TestParamSpec_Format(t *testing.T) {
	tests := []struct {
		id   ParamID
		v    float64
		want string
	}{
		{ParamPeakFreq, 1000, "1000 Hz"},
		{ParamLowCut, 1, "20 Hz"},
		{ParamPeakGain, 6, "+6.0 dB"},
		{ParamPeakGain, -3.5, "-3.5 dB"},
		{ParamPeakGain, 0, "+0.0 dB"},
		{ParamPeakQ, 1, "1.00"},
		{ParamLowCutSlope, 1, "24dB/Oct"},
		{ParamHighCutSlope, 9, "48dB/Oct"},
	}

	for _, tt := range tests {
		if got := Spec(tt.id).Format(tt.v); got != tt.want {
			t.Errorf("%s.Format(%v) = %q, want %q", tt.id, tt.v, got, tt.want)
		}
	}
}

func TestParamSpec_Parse(t *testing.T) {
	tests := []struct {
		id   ParamID
		in   string
		want float64
	}{
		{ParamPeakFreq, "1000 Hz", 1000},
		{ParamPeakFreq, "2500Hz", 2500},
		{ParamPeakFreq, "440.4", 440},
		{ParamPeakGain, "+6.0 dB", 6},
		{ParamPeakGain, "-3.46", -3.5},
		{ParamPeakQ, "0.707", 0.7},
		{ParamLowCutSlope, "24dB/Oct", 1},
		{ParamLowCutSlope, "48db/oct", 3},
		{ParamHighCutSlope, "36", 2},
		{ParamHighCutSlope, "0", 0},
	}

	for _, tt := range tests {
		got, err := Spec(tt.id).Parse(tt.in)
		if err != nil {
			t.Errorf("%s.Parse(%q): %v", tt.id, tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s.Parse(%q) = %v, want %v", tt.id, tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "loud", "12 kHz"} {
		if _, err := Spec(ParamPeakFreq).Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", bad)
		}
	}
}

func TestParamSpec_FormatParseRoundTrip(t *testing.T) {
	for _, s := range Layout() {
		for _, v := range []float64{s.Min, s.Default, s.Max} {
			got, err := s.Parse(s.Format(v))
			if err != nil {
				t.Fatalf("%s: Parse(Format(%v)): %v", s.Name, v, err)
			}
			if got != s.Snap(v) {
				t.Errorf("%s: round trip of %v gave %v", s.Name, v, got)
			}
		}
	}
}
