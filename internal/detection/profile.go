package detection

import (
	"math"

	"github.com/ironsheep/flag-check-mcp/internal/classify"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
)

// AngularProfile is the emblem density as a function of angle.
type AngularProfile struct {
	// Raw is the fraction of classified samples along each ray of the annulus.
	Raw []float64 `json:"raw"`

	// Enhanced is Raw with its baseline removed and edges sharpened. Spoke
	// centres appear as peaks.
	Enhanced []float64 `json:"enhanced"`
}

// Len returns the number of angular steps.
func (p AngularProfile) Len() int {
	return len(p.Enhanced)
}

// Angle converts a profile index to degrees.
func (p AngularProfile) Angle(i int) float64 {
	if len(p.Enhanced) == 0 {
		return 0
	}
	return float64(i) * 360 / float64(len(p.Enhanced))
}

// AnnulusSpec describes where and how densely the profile is sampled.
type AnnulusSpec struct {
	Inner, Outer float64 // fractions of the emblem radius
	Steps        int     // angular resolution
	SamplesMin   int     // minimum radial samples per ray
	Workers      int
}

// BuildProfile samples the annulus around e and returns both profile variants.
func BuildProfile(buf *imaging.PixelBuffer, cls classify.Classifier, e Emblem, spec AnnulusSpec) AngularProfile {
	raw := SampleAnnulus(buf, cls, e.Center, e.Radius*spec.Inner, e.Radius*spec.Outer, spec.Steps, spec.SamplesMin, spec.Workers)
	return NewProfile(raw)
}

// SampleAnnulus measures, for each of steps angles, the fraction of in-bounds
// radial samples between inner and outer that qualify. A ray with no
// in-bounds sample scores 0.
//
// The number of samples per ray is max(samplesMin, floor(outer-inner)),
// spread evenly from inner to outer inclusive.
func SampleAnnulus(buf *imaging.PixelBuffer, cls classify.Classifier, center imaging.Point2D, inner, outer float64, steps, samplesMin, workers int) []float64 {
	if steps <= 0 {
		return nil
	}
	raw := make([]float64, steps)
	samples := max(samplesMin, int(math.Floor(outer-inner)), 2)

	parallelFor(steps, workers, func(lo, hi int) {
		for a := lo; a < hi; a++ {
			ang := float64(a) * 2 * math.Pi / float64(steps)
			c, s := math.Cos(ang), math.Sin(ang)
			hit, total := 0, 0
			for i := 0; i < samples; i++ {
				t := inner + (outer-inner)*float64(i)/float64(samples-1)
				x := roundHalfUp(center.X + t*c)
				y := roundHalfUp(center.Y + t*s)
				if !buf.In(x, y) {
					continue
				}
				if cls.At(buf, x, y) {
					hit++
				}
				total++
			}
			if total > 0 {
				raw[a] = float64(hit) / float64(total)
			}
		}
	})
	return raw
}

// NewProfile derives the enhanced profile from a raw one.
func NewProfile(raw []float64) AngularProfile {
	return AngularProfile{
		Raw:      raw,
		Enhanced: EnhanceEdges(RemoveBaseline(raw)),
	}
}

// BaselineHalfWidth is the moving-average half window for n samples, about 2°.
func BaselineHalfWidth(n int) int {
	return max(3, n/180)
}

// RemoveBaseline subtracts a circular moving average of half width
// BaselineHalfWidth and clamps negative results to 0.
func RemoveBaseline(raw []float64) []float64 {
	n := len(raw)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	k := BaselineHalfWidth(n)
	width := float64(2*k + 1)

	for i := range raw {
		sum := 0.0
		for j := -k; j <= k; j++ {
			sum += raw[((i+j)%n+n)%n]
		}
		out[i] = math.Max(0, raw[i]-sum/width)
	}
	return out
}

// EnhanceEdges returns the negated circular second difference of x, which
// turns concentrated mass into peaks.
func EnhanceEdges(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for i := range x {
		prev := x[(i-1+n)%n]
		next := x[(i+1)%n]
		out[i] = -(prev - 2*x[i] + next)
	}
	return out
}
