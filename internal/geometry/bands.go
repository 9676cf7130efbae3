// Package geometry computes the band layout and proportion checks of a
// three-band horizontal flag.
package geometry

import (
	"math"

	"github.com/ironsheep/flag-check-mcp/internal/imaging"
)

// boundarySlack absorbs float rounding so that a ratio sitting exactly on the
// tolerance boundary passes deterministically.
const boundarySlack = 1e-9

// BandLayout is the partition of the image height into three horizontal bands.
type BandLayout struct {
	Height int            `json:"height"`
	Top    imaging.Region `json:"top"`
	Middle imaging.Region `json:"middle"`
	Bottom imaging.Region `json:"bottom"`
}

// SplitBands cuts the image into thirds at round(H/3) and round(2H/3).
// The three bands are contiguous and always sum to the full height.
func SplitBands(width, height int) BandLayout {
	y1 := int(math.Round(float64(height) / 3))
	y2 := int(math.Round(2 * float64(height) / 3))
	return BandLayout{
		Height: height,
		Top:    imaging.Region{X1: 0, Y1: 0, X2: width, Y2: y1},
		Middle: imaging.Region{X1: 0, Y1: y1, X2: width, Y2: y2},
		Bottom: imaging.Region{X1: 0, Y1: y2, X2: width, Y2: height},
	}
}

// Ratios returns each band's height divided by the total height.
func (l BandLayout) Ratios() (top, middle, bottom float64) {
	if l.Height <= 0 {
		return 0, 0, 0
	}
	h := float64(l.Height)
	return float64(l.Top.Height()) / h, float64(l.Middle.Height()) / h, float64(l.Bottom.Height()) / h
}

// MiddleCenter is the point the emblem is expected to be centred on.
func (l BandLayout) MiddleCenter() imaging.Point2D {
	return imaging.Point2D{
		X: float64(l.Middle.Width()) / 2,
		Y: float64(l.Middle.Y1) + float64(l.Middle.Height())/2,
	}
}

// AspectResult is the outcome of the width/height check.
type AspectResult struct {
	Pass   bool
	Actual float64
}

// CheckAspect compares width/height with target using a relative tolerance:
// pass iff |W/H - target| <= target*relTol. Equality passes.
func CheckAspect(width, height int, target, relTol float64) AspectResult {
	if height <= 0 {
		return AspectResult{}
	}
	actual := float64(width) / float64(height)
	return AspectResult{
		Pass:   math.Abs(actual-target) <= target*relTol+boundarySlack,
		Actual: actual,
	}
}

// StripeResult is the outcome of the band proportion check.
type StripeResult struct {
	Pass                bool
	Top, Middle, Bottom float64
}

// CheckStripes passes when every band ratio is within relTol of one third.
func CheckStripes(l BandLayout, relTol float64) StripeResult {
	top, mid, bot := l.Ratios()
	pass := l.Height > 0
	for _, r := range []float64{top, mid, bot} {
		if math.Abs(r-1.0/3) > relTol+boundarySlack {
			pass = false
		}
	}
	return StripeResult{Pass: pass, Top: top, Middle: mid, Bottom: bot}
}
