package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MaxSignificance caps the significance ratio. It is also reported when only
// one frequency is evaluated.
const MaxSignificance = 99

// FrequencyMagnitude is one bin of the narrow-band spectrum.
type FrequencyMagnitude struct {
	K         int     `json:"k"`
	Magnitude float64 `json:"magnitude"`
}

// Periodicity is the dominant angular frequency of a profile.
type Periodicity struct {
	// K is the frequency with the largest magnitude. The lowest k wins ties.
	K int `json:"k"`

	// Significance is the best magnitude divided by the runner-up, rounded to
	// two places and capped at MaxSignificance.
	Significance float64 `json:"significance"`

	// Spectrum lists the magnitude of every evaluated frequency in k order.
	Spectrum []FrequencyMagnitude `json:"spectrum"`
}

// EstimatePeriodicity evaluates |DFT| of the mean-removed profile at each
// integer k in [kMin, kMax] and returns the strongest.
//
// Only a handful of frequencies are physically plausible, so each bin is
// computed directly in O(N) rather than running a full transform.
func EstimatePeriodicity(profile []float64, kMin, kMax int) Periodicity {
	n := len(profile)
	if n == 0 || kMin > kMax {
		return Periodicity{K: kMin}
	}

	mean := stat.Mean(profile, nil)
	spectrum := make([]FrequencyMagnitude, 0, kMax-kMin+1)
	best := FrequencyMagnitude{K: kMin, Magnitude: -1}

	for k := kMin; k <= kMax; k++ {
		var re, im float64
		for i, v := range profile {
			ang := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += (v - mean) * math.Cos(ang)
			im += (v - mean) * math.Sin(ang)
		}
		fm := FrequencyMagnitude{K: k, Magnitude: math.Hypot(re, im)}
		spectrum = append(spectrum, fm)
		if fm.Magnitude > best.Magnitude {
			best = fm
		}
	}

	significance := float64(MaxSignificance)
	if len(spectrum) > 1 {
		mags := make([]float64, len(spectrum))
		for i, fm := range spectrum {
			mags[i] = fm.Magnitude
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(mags)))
		significance = math.Min(mags[0]/(mags[1]+1e-9), MaxSignificance)
	}

	return Periodicity{
		K:            best.K,
		Significance: math.Round(significance*100) / 100,
		Spectrum:     spectrum,
	}
}
