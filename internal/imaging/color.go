package imaging

import (
	"fmt"
	"image"
	"math"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex formats the color as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// MeanRGB is an arithmetic channel mean. Components are fractional (0-255).
type MeanRGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//   - Width = X2 - X1, Height = Y2 - Y1
type Region struct {
	X1 int `json:"x1"` // Left edge X coordinate (inclusive)
	Y1 int `json:"y1"` // Top edge Y coordinate (inclusive)
	X2 int `json:"x2"` // Right edge X coordinate (exclusive)
	Y2 int `json:"y2"` // Bottom edge Y coordinate (exclusive)
}

// Width returns X2-X1, or 0 for an inverted region.
func (r Region) Width() int {
	if r.X2 <= r.X1 {
		return 0
	}
	return r.X2 - r.X1
}

// Height returns Y2-Y1, or 0 for an inverted region.
func (r Region) Height() int {
	if r.Y2 <= r.Y1 {
		return 0
	}
	return r.Y2 - r.Y1
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Clip intersects the region with the buffer bounds.
func (r Region) Clip(b *PixelBuffer) Region {
	return Region{
		X1: max(r.X1, 0),
		Y1: max(r.Y1, 0),
		X2: min(r.X2, b.Width),
		Y2: min(r.Y2, b.Height),
	}
}

// MeanColor computes the arithmetic mean of each channel across a region.
//
// The region is clipped to the buffer first. An empty region yields a zero
// mean rather than NaN so the value can flow into reports unchanged.
func MeanColor(buf *PixelBuffer, region Region) MeanRGB {
	region = region.Clip(buf)
	if region.Empty() {
		return MeanRGB{}
	}

	var r, g, b uint64
	for y := region.Y1; y < region.Y2; y++ {
		row := y * buf.Width * 4
		for x := region.X1; x < region.X2; x++ {
			i := row + x*4
			r += uint64(buf.Pix[i])
			g += uint64(buf.Pix[i+1])
			b += uint64(buf.Pix[i+2])
		}
	}

	n := float64(region.Width() * region.Height())
	return MeanRGB{R: float64(r) / n, G: float64(g) / n, B: float64(b) / n}
}

// MaxRGBDistance is the Euclidean distance between pure black and pure white.
var MaxRGBDistance = math.Sqrt(255 * 255 * 3)

// Distance returns the Euclidean RGB distance between a mean and a reference.
func (m MeanRGB) Distance(ref RGBColor) float64 {
	dr := m.R - float64(ref.R)
	dg := m.G - float64(ref.G)
	db := m.B - float64(ref.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
