// Package classify decides whether a pixel belongs to the emblem's hue family.
package classify

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
)

// Classifier tests pixels against an HSV window. Build one with New.
type Classifier struct {
	r config.HueRange
}

// New returns a classifier for the given window.
func New(r config.HueRange) Classifier {
	return Classifier{r: r}
}

// HSV converts 8-bit RGB to hue in degrees [0,360), saturation and value in [0,1].
func HSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return c.Hsv()
}

// IsTarget reports whether the pixel lies in the target hue family.
//
// The pixel qualifies when its hue is inside [HueMin, HueMax], its saturation
// is at least SatMin and its value is inside [ValMin, ValMax]. The value band
// keeps near-black shadows and blown-out highlights out of the mask.
func (c Classifier) IsTarget(r, g, b uint8) bool {
	h, s, v := HSV(r, g, b)
	return h >= c.r.HueMin && h <= c.r.HueMax &&
		s >= c.r.SatMin &&
		v >= c.r.ValMin && v <= c.r.ValMax
}

// Keep adapts IsTarget to the predicate shape used by imaging.MaskImage.
func (c Classifier) Keep(px imaging.RGBColor) bool {
	return c.IsTarget(px.R, px.G, px.B)
}

// At classifies the buffer pixel at (x, y). Out-of-bounds pixels never qualify.
func (c Classifier) At(buf *imaging.PixelBuffer, x, y int) bool {
	if !buf.In(x, y) {
		return false
	}
	i := (y*buf.Width + x) * 4
	return c.IsTarget(buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2])
}
