package detection

import (
	"math"
	"testing"
)

// gaussianBumps builds a circular profile of count equally spaced bumps
func gaussianBumps(n, count, offset int, sigma float64) []float64 {
	out := make([]float64, n)
	period := n / count
	for i := range out {
		for j := 0; j < count; j++ {
			d := math.Abs(float64(i - (offset + j*period)))
			d = math.Min(d, float64(n)-d)
			out[i] += math.Exp(-d * d / (2 * sigma * sigma))
		}
	}
	return out
}

func TestBaselineHalfWidth(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{1440, 8},
		{360, 3},
		{100, 3},
		{3600, 20},
	}
	for _, tt := range tests {
		if got := BaselineHalfWidth(tt.n); got != tt.want {
			t.Errorf("BaselineHalfWidth(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestRemoveBaseline_Constant(t *testing.T) {
	raw := make([]float64, 360)
	for i := range raw {
		raw[i] = 0.4
	}
	for i, v := range RemoveBaseline(raw) {
		if math.Abs(v) > 1e-12 {
			t.Fatalf("Expected flat baseline to cancel at %d, got %g", i, v)
		}
	}
}

func TestRemoveBaseline_ClampsNegative(t *testing.T) {
	raw := make([]float64, 360)
	raw[100] = 1

	out := RemoveBaseline(raw)
	for i, v := range out {
		if v < 0 {
			t.Fatalf("Expected no negative values, got %g at %d", v, i)
		}
	}
	if out[100] <= 0 {
		t.Error("Expected isolated spike to survive baseline removal")
	}
	if out[101] != 0 {
		t.Errorf("Expected neighbour below baseline to clamp to 0, got %g", out[101])
	}
}

func TestEnhanceEdges(t *testing.T) {
	x := []float64{0, 0, 1, 0, 0}
	got := EnhanceEdges(x)
	want := []float64{0, -1, 2, -1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("EnhanceEdges[%d] = %g, want %g", i, got[i], want[i])
		}
	}

	// wraps around
	got = EnhanceEdges([]float64{1, 0, 0, 0})
	if got[3] != -1 || got[1] != -1 || got[0] != 2 {
		t.Errorf("Expected circular second difference, got %v", got)
	}
}

func TestNewProfile_GaussianBumps(t *testing.T) {
	p := NewProfile(gaussianBumps(1440, 24, 7, 4))

	if p.Len() != 1440 || len(p.Raw) != 1440 {
		t.Fatalf("Expected 1440 steps, got %d/%d", p.Len(), len(p.Raw))
	}

	per := EstimatePeriodicity(p.Enhanced, 20, 28)
	if per.K != 24 {
		t.Errorf("Expected dft_k 24, got %d", per.K)
	}

	peaks := FindPeaks(p.Enhanced, per.K, PeakOptions{ProminenceStd: 0.45, MinSepFactor: 0.7})
	if len(peaks) != 24 {
		t.Fatalf("Expected 24 peaks, got %d: %v", len(peaks), peaks)
	}
	for j, idx := range peaks {
		if idx != 7+60*j {
			t.Errorf("Peak %d at %d, want %d", j, idx, 7+60*j)
		}
	}
}

func TestAngle(t *testing.T) {
	p := AngularProfile{Enhanced: make([]float64, 1440)}
	if got := p.Angle(60); got != 15 {
		t.Errorf("Angle(60) = %g, want 15", got)
	}
	if got := (AngularProfile{}).Angle(3); got != 0 {
		t.Errorf("Expected 0 for empty profile, got %g", got)
	}
}
