package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PeakOptions tunes FindPeaks.
type PeakOptions struct {
	// ProminenceStd is how many standard deviations above the mean a peak
	// must rise.
	ProminenceStd float64

	// MinSepFactor scales the expected spacing N/k into the minimum distance
	// between kept peaks.
	MinSepFactor float64
}

// MinSeparation is floor(n/k * factor), or 0 when k is not positive.
func MinSeparation(n, k int, factor float64) int {
	if k <= 0 {
		return 0
	}
	return int(math.Floor(float64(n) / float64(k) * factor))
}

// FindPeaks returns the sorted indices of the circular peaks of arr for an
// expected frequency k.
//
// # Algorithm
//
//  1. Threshold = mean + ProminenceStd*std (population std)
//  2. Candidates are indices strictly above the threshold and >= both
//     circular neighbours
//  3. Scanning in index order, a candidate closer than MinSeparation to the
//     last kept peak replaces it only if strictly larger; otherwise it is
//     dropped
//  4. If the wraparound gap between the last and first kept peaks is below
//     MinSeparation, the smaller of the two is dropped (the last one on a tie)
func FindPeaks(arr []float64, k int, opts PeakOptions) []int {
	n := len(arr)
	if n == 0 {
		return nil
	}

	mean, std := stat.PopMeanStdDev(arr, nil)
	threshold := mean + opts.ProminenceStd*std

	var candidates []int
	for i, v := range arr {
		prev := arr[(i-1+n)%n]
		next := arr[(i+1)%n]
		if v > threshold && v >= prev && v >= next {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sep := MinSeparation(n, k, opts.MinSepFactor)
	kept := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if len(kept) == 0 {
			kept = append(kept, idx)
			continue
		}
		last := kept[len(kept)-1]
		if (idx-last+n)%n < sep {
			if arr[idx] > arr[last] {
				kept[len(kept)-1] = idx
			}
			continue
		}
		kept = append(kept, idx)
	}

	if len(kept) > 1 {
		first, last := kept[0], kept[len(kept)-1]
		if (first-last+n)%n < sep {
			if arr[first] >= arr[last] {
				kept = kept[:len(kept)-1]
			} else {
				kept = kept[1:]
			}
		}
	}

	sort.Ints(kept)
	return kept
}

// FusePairs halves a peak set that looks like doubled edge responses.
//
// When len(peaks) lies in [2*expected-2, 2*expected+4], consecutive peaks
// (0,1), (2,3), ... are replaced by their circular midpoint; an odd last
// peak pairs with the first. Any other count is returned unchanged.
func FusePairs(peaks []int, n, expected int) []int {
	count := len(peaks)
	if count == 0 || count < 2*expected-2 || count > 2*expected+4 {
		return peaks
	}

	fused := make([]int, 0, (count+1)/2)
	for i := 0; i < count; i += 2 {
		a := peaks[i]
		b := peaks[(i+1)%count]
		gap := float64(((b-a)%n + n) % n)
		fused = append(fused, roundHalfUp(float64(a)+gap/2)%n)
	}
	sort.Ints(fused)
	return fused
}

// SpokeEstimate is the outcome of spoke counting on one profile.
type SpokeEstimate struct {
	Periodicity Periodicity `json:"periodicity"`
	Peaks       []int       `json:"peaks"`
	Angles      []float64   `json:"angles"`
	ProfileMax  float64     `json:"profile_max"`
	ProfileMean float64     `json:"profile_mean"`
}

// Detected is the number of spokes found.
func (s SpokeEstimate) Detected() int {
	return len(s.Peaks)
}

// SpokeOptions bundles the frequency window and peak tuning.
type SpokeOptions struct {
	KMin, KMax int
	Expected   int
	Peaks      PeakOptions
}

// DetectSpokes runs frequency estimation, peak finding and pair fusion on the
// enhanced profile.
func DetectSpokes(p AngularProfile, opts SpokeOptions) SpokeEstimate {
	n := p.Len()
	per := EstimatePeriodicity(p.Enhanced, opts.KMin, opts.KMax)
	peaks := FusePairs(FindPeaks(p.Enhanced, per.K, opts.Peaks), n, opts.Expected)

	angles := make([]float64, len(peaks))
	for i, idx := range peaks {
		angles[i] = p.Angle(idx)
	}

	est := SpokeEstimate{Periodicity: per, Peaks: peaks, Angles: angles}
	if n > 0 {
		est.ProfileMax = floats.Max(p.Enhanced)
		est.ProfileMean = stat.Mean(p.Enhanced, nil)
	}
	return est
}
