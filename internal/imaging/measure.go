package imaging

import (
	"math"
)

// Point represents an integer pixel coordinate
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point2D is a fractional pixel coordinate, used for centroids
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset returns p - q component-wise.
func (p Point2D) Offset(q Point2D) (dx, dy float64) {
	return p.X - q.X, p.Y - q.Y
}

// Distance returns the Euclidean distance between two points.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Round rounds v to the given number of decimal places.
// NaN and infinities collapse to 0 so they never reach a report, and so does
// negative zero.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}
