// Package colorcheck compares band colours against the flag's reference
// palette.
package colorcheck

import (
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
)

// Reference is a named target colour.
type Reference struct {
	Name string
	RGB  imaging.RGBColor
}

// Reference palette.
var (
	Saffron = Reference{Name: "saffron", RGB: imaging.RGBColor{R: 255, G: 153, B: 51}}
	White   = Reference{Name: "white", RGB: imaging.RGBColor{R: 255, G: 255, B: 255}}
	Green   = Reference{Name: "green", RGB: imaging.RGBColor{R: 19, G: 136, B: 8}}
)

// Result is the verdict for one band.
type Result struct {
	Pass      bool
	Mean      imaging.MeanRGB
	Deviation float64 // percent of the black-to-white distance
}

// DeviationPercent expresses the distance from mean to ref as a percentage of
// the largest possible RGB distance.
func DeviationPercent(mean imaging.MeanRGB, ref imaging.RGBColor) float64 {
	return mean.Distance(ref) / imaging.MaxRGBDistance * 100
}

// Check averages region and passes when its deviation from ref is at most
// tolPct percent. An empty region averages to black.
func Check(buf *imaging.PixelBuffer, region imaging.Region, ref Reference, tolPct float64) Result {
	mean := imaging.MeanColor(buf, region)
	dev := DeviationPercent(mean, ref.RGB)
	return Result{Pass: dev <= tolPct, Mean: mean, Deviation: dev}
}
