package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/flag-check-mcp/internal/classify"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
)

// Emblem is the estimated position and size of the emblem.
type Emblem struct {
	// Center is the centroid of all classified pixels in the search band.
	Center imaging.Point2D `json:"center"`

	// Radius is the median of the farthest classified distance along each ray.
	Radius float64 `json:"radius"`

	// PixelCount is the number of classified pixels in the search band.
	PixelCount int `json:"pixel_count"`
}

// LocateEmblem finds the emblem inside band.
//
// Parameters:
//   - buf: Source pixels.
//   - band: Search region, normally the middle band. Clipped to the buffer.
//   - cls: Emblem pixel classifier.
//   - raySteps: Number of evenly spaced rays cast from the centroid.
//   - workers: Goroutines used for ray casting. 0 means GOMAXPROCS.
//
// Returns:
//   - Emblem: The estimated geometry, valid only when ok is true.
//   - ok: False when no pixel in band qualifies, or when every ray is
//     degenerate (its farthest hit is at distance 0).
//
// # Algorithm
//
//  1. Classify every pixel of band; the centroid is the mean coordinate of
//     the qualifying pixels
//  2. From the centroid, walk each ray outward in unit steps up to
//     min(W, H), stopping at the image edge, and keep the farthest step whose
//     rounded pixel qualifies (the whole image is sampled, not just band)
//  3. Discard rays whose farthest hit is 0; the radius is the upper median of
//     the rest
//
// Taking the farthest hit rather than the first miss lets rays skip the gaps
// between spokes, and the median ignores the few rays that clip the rim.
func LocateEmblem(buf *imaging.PixelBuffer, band imaging.Region, cls classify.Classifier, raySteps, workers int) (Emblem, bool) {
	band = band.Clip(buf)

	var sx, sy int64
	count := 0
	for y := band.Y1; y < band.Y2; y++ {
		for x := band.X1; x < band.X2; x++ {
			if cls.At(buf, x, y) {
				sx += int64(x)
				sy += int64(y)
				count++
			}
		}
	}
	if count == 0 || raySteps < 1 {
		return Emblem{}, false
	}

	center := imaging.Point2D{X: float64(sx) / float64(count), Y: float64(sy) / float64(count)}
	farthest := castRays(buf, cls, center, raySteps, workers)

	hits := make([]float64, 0, len(farthest))
	for _, r := range farthest {
		if r > 0 {
			hits = append(hits, r)
		}
	}
	if len(hits) == 0 {
		return Emblem{}, false
	}
	sort.Float64s(hits)

	return Emblem{
		Center:     center,
		Radius:     hits[len(hits)/2],
		PixelCount: count,
	}, true
}

// castRays returns, per ray, the farthest unit step whose pixel qualifies.
func castRays(buf *imaging.PixelBuffer, cls classify.Classifier, center imaging.Point2D, steps, workers int) []float64 {
	farthest := make([]float64, steps)
	rMax := min(buf.Width, buf.Height)

	parallelFor(steps, workers, func(lo, hi int) {
		for a := lo; a < hi; a++ {
			ang := float64(a) * 2 * math.Pi / float64(steps)
			c, s := math.Cos(ang), math.Sin(ang)
			last := 0
			for r := 0; r < rMax; r++ {
				x := roundHalfUp(center.X + float64(r)*c)
				y := roundHalfUp(center.Y + float64(r)*s)
				if !buf.In(x, y) {
					break
				}
				if cls.At(buf, x, y) {
					last = r
				}
			}
			farthest[a] = float64(last)
		}
	})
	return farthest
}
