// Package synth draws reference tricolor flags with a spoked emblem.
//
// The renderer is deterministic and pixel exact: a pixel belongs to a shape
// when its integer offset from the emblem centre satisfies the shape test, so
// the emblem is point symmetric whenever the spoke count is even. Rendered
// flags are used for calibration and as fixtures for the checker.
package synth

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// Palette colours.
var (
	Saffron = color.NRGBA{R: 255, G: 153, B: 51, A: 255}
	White   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Green   = color.NRGBA{R: 19, G: 136, B: 8, A: 255}
	Navy    = color.NRGBA{R: 0, G: 0, B: 128, A: 255}
)

// Options controls the rendered flag. Zero fields take the DefaultOptions value.
type Options struct {
	Width  int
	Height int // 0 means Width/1.5

	Spokes            int
	SpokeHalfWidthDeg float64
	Rotation          float64 // degrees, applied to every spoke
	DiameterFraction  float64 // emblem diameter over middle band height
	RimInnerFraction  float64 // rim spans [RimInnerFraction*R, R]
	HubFraction       float64 // hub spans [0, HubFraction*R)
	OmitEmblem        bool

	// Soften is a Gaussian blur radius; 0 keeps hard edges.
	Soften float64

	Top    color.NRGBA
	Middle color.NRGBA
	Bottom color.NRGBA
	Emblem color.NRGBA
}

// DefaultOptions describes a 900x600 flag with a 24-spoke emblem.
func DefaultOptions() Options {
	return Options{
		Width:             900,
		Spokes:            24,
		SpokeHalfWidthDeg: 1.5,
		DiameterFraction:  0.75,
		RimInnerFraction:  0.96,
		HubFraction:       0.16,
		Top:               Saffron,
		Middle:            White,
		Bottom:            Green,
		Emblem:            Navy,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = int(math.Round(float64(o.Width) / 1.5))
	}
	if o.Spokes <= 0 {
		o.Spokes = d.Spokes
	}
	if o.SpokeHalfWidthDeg <= 0 {
		o.SpokeHalfWidthDeg = d.SpokeHalfWidthDeg
	}
	if o.DiameterFraction <= 0 {
		o.DiameterFraction = d.DiameterFraction
	}
	if o.RimInnerFraction <= 0 {
		o.RimInnerFraction = d.RimInnerFraction
	}
	if o.HubFraction <= 0 {
		o.HubFraction = d.HubFraction
	}
	var zero color.NRGBA
	if o.Top == zero {
		o.Top = d.Top
	}
	if o.Middle == zero {
		o.Middle = d.Middle
	}
	if o.Bottom == zero {
		o.Bottom = d.Bottom
	}
	if o.Emblem == zero {
		o.Emblem = d.Emblem
	}
	return o
}

// Geometry is where Render placed the emblem.
type Geometry struct {
	CenterX, CenterY int
	Radius           float64
}

// Layout returns the emblem geometry Render would use for o.
func Layout(o Options) Geometry {
	o = o.withDefaults()
	y1 := int(math.Round(float64(o.Height) / 3))
	y2 := int(math.Round(2 * float64(o.Height) / 3))
	return Geometry{
		CenterX: o.Width / 2,
		CenterY: y1 + (y2-y1)/2,
		Radius:  o.DiameterFraction * float64(y2-y1) / 2,
	}
}

// Render draws the flag described by o.
func Render(o Options) *image.NRGBA {
	o = o.withDefaults()
	img := image.NewNRGBA(image.Rect(0, 0, o.Width, o.Height))

	y1 := int(math.Round(float64(o.Height) / 3))
	y2 := int(math.Round(2 * float64(o.Height) / 3))
	g := Layout(o)
	period := 360 / float64(o.Spokes)

	for y := 0; y < o.Height; y++ {
		band := o.Middle
		switch {
		case y < y1:
			band = o.Top
		case y >= y2:
			band = o.Bottom
		}
		for x := 0; x < o.Width; x++ {
			c := band
			if !o.OmitEmblem && inEmblem(x-g.CenterX, y-g.CenterY, g.Radius, period, o) {
				c = o.Emblem
			}
			img.SetNRGBA(x, y, c)
		}
	}

	if o.Soften > 0 {
		return imaging.Clone(blur.Gaussian(img, o.Soften))
	}
	return img
}

func inEmblem(dx, dy int, r, period float64, o Options) bool {
	d := math.Hypot(float64(dx), float64(dy))
	switch {
	case d > r:
		return false
	case d >= o.RimInnerFraction*r, d < o.HubFraction*r:
		return true
	}

	ang := math.Atan2(float64(dy), float64(dx)) * 180 / math.Pi
	m := math.Mod(ang-o.Rotation, period)
	if m < 0 {
		m += period
	}
	return math.Min(m, period-m) <= o.SpokeHalfWidthDeg
}

// AddNoise perturbs every colour channel by a uniform integer in
// [-amplitude, amplitude], clamped to 0-255. The same seed gives the same
// image.
func AddNoise(img *image.NRGBA, amplitude int, seed uint64) *image.NRGBA {
	out := imaging.Clone(img)
	if amplitude <= 0 {
		return out
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := int(out.Pix[i+c]) + rng.IntN(2*amplitude+1) - amplitude
			out.Pix[i+c] = uint8(min(max(v, 0), 255))
		}
	}
	return out
}
