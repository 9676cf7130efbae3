// Package validate runs the full conformance pipeline on one image and
// assembles the report.
//
// Run is a pure function of its inputs: the same buffer and configuration
// always produce the same report, byte for byte once marshalled.
package validate

import (
	"fmt"
	"math"

	"github.com/ironsheep/flag-check-mcp/internal/classify"
	"github.com/ironsheep/flag-check-mcp/internal/colorcheck"
	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/detection"
	"github.com/ironsheep/flag-check-mcp/internal/geometry"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
)

// Result carries the report together with the intermediate geometry used to
// draw diagnostics. Emblem, Profile and Spokes are nil when no emblem was
// found.
type Result struct {
	Report  Report
	Layout  geometry.BandLayout
	Emblem  *detection.Emblem
	Profile *detection.AngularProfile
	Spokes  *detection.SpokeEstimate
}

// Run validates buf against cfg.
//
// Only caller mistakes are errors: a nil or zero-sized buffer
// (imaging.ErrEmptyImage) and an invalid configuration
// (config.ErrInvalidConfig). Everything the image itself gets wrong is a
// failed check in the report.
func Run(buf *imaging.PixelBuffer, cfg config.Config) (*Result, error) {
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("validate: %w", imaging.ErrEmptyImage)
	}
	if len(buf.Pix) < buf.Width*buf.Height*4 {
		return nil, fmt.Errorf("validate: %w", imaging.ErrShortBuffer)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	layout := geometry.SplitBands(buf.Width, buf.Height)
	res := &Result{Layout: layout}
	rep := &res.Report

	aspect := geometry.CheckAspect(buf.Width, buf.Height, cfg.AspectTarget, cfg.AspectRelTolerance)
	rep.AspectRatio = AspectRatio{
		Status: statusOf(aspect.Pass),
		Actual: imaging.Round(aspect.Actual, 4),
	}

	stripes := geometry.CheckStripes(layout, cfg.StripeRelTolerance)
	rep.StripeProportion = StripeProportion{
		Status: statusOf(stripes.Pass),
		Top:    imaging.Round(stripes.Top, 4),
		Middle: imaging.Round(stripes.Middle, 4),
		Bottom: imaging.Round(stripes.Bottom, 4),
	}

	rep.Colors = Colors{
		Saffron: colorCheck(buf, layout.Top, colorcheck.Saffron, cfg.ColorTolerancePct),
		White:   colorCheck(buf, layout.Middle, colorcheck.White, cfg.ColorTolerancePct),
		Green:   colorCheck(buf, layout.Bottom, colorcheck.Green, cfg.ColorTolerancePct),
	}

	cls := classify.New(cfg.Hue)
	emblem, ok := detection.LocateEmblem(buf, layout.Middle, cls, cfg.RaySteps, cfg.Workers)
	if !ok {
		rep.ChakraPosition = EmblemPosition{Status: Fail, Reason: ReasonEmblemNotFound}
		rep.ChakraSize = EmblemSize{Status: Fail, Reason: ReasonEmblemNotFound}
		rep.ChakraSpokes = EmblemSpokes{Status: Fail, Reason: ReasonEmblemNotFound}
		rep.Notes = []string{"No emblem-hue pixels found in the middle band."}
		return res, nil
	}
	res.Emblem = &emblem

	ideal := layout.MiddleCenter()
	dx, dy := emblem.Center.Offset(ideal)
	offX, offY := imaging.Round(dx, 1), imaging.Round(dy, 1)
	rep.ChakraPosition = EmblemPosition{
		Status:  statusOf(math.Abs(offX) <= cfg.CenterTolerancePx && math.Abs(offY) <= cfg.CenterTolerancePx),
		OffsetX: &offX,
		OffsetY: &offY,
	}

	expected := cfg.EmblemDiameterFraction * float64(layout.Middle.Height())
	actual := 2 * emblem.Radius
	expectedR, actualR := imaging.Round(expected, 2), imaging.Round(actual, 2)
	rep.ChakraSize = EmblemSize{
		Status:   statusOf(math.Abs(actual-expected) <= expected*cfg.EmblemSizeRelTolerance),
		Expected: &expectedR,
		Actual:   &actualR,
	}

	profile := detection.BuildProfile(buf, cls, emblem, detection.AnnulusSpec{
		Inner:      cfg.AnnulusInner,
		Outer:      cfg.AnnulusOuter,
		Steps:      cfg.ProfileSteps,
		SamplesMin: cfg.RadialSamplesMin,
		Workers:    cfg.Workers,
	})
	res.Profile = &profile

	spokes := detection.DetectSpokes(profile, detection.SpokeOptions{
		KMin:     cfg.KMin,
		KMax:     cfg.KMax,
		Expected: cfg.ExpectedSpokes,
		Peaks: detection.PeakOptions{
			ProminenceStd: cfg.ProminenceStd,
			MinSepFactor:  cfg.MinSepFactor,
		},
	})
	res.Spokes = &spokes

	k := spokes.Periodicity.K
	sig := spokes.Periodicity.Significance
	angles := make([]float64, len(spokes.Angles))
	for i, a := range spokes.Angles {
		angles[i] = imaging.Round(a, 2)
	}
	rep.ChakraSpokes = EmblemSpokes{
		Status:          statusOf(spokes.Detected() == cfg.ExpectedSpokes),
		Detected:        spokes.Detected(),
		DFTK:            &k,
		DFTSignificance: &sig,
		Angles:          angles,
	}

	rep.Notes = []string{
		fmt.Sprintf("Emblem center≈(%.1f, %.1f), r≈%.1f.", emblem.Center.X, emblem.Center.Y, emblem.Radius),
		fmt.Sprintf("DFT best k=%d (expect %d), significance=%.2f.", k, cfg.ExpectedSpokes, sig),
		fmt.Sprintf("Spokes detected=%d.", spokes.Detected()),
		fmt.Sprintf("Profile max=%.3f, mean=%.3f.", imaging.Round(spokes.ProfileMax, 3), imaging.Round(spokes.ProfileMean, 3)),
	}
	return res, nil
}

func colorCheck(buf *imaging.PixelBuffer, band imaging.Region, ref colorcheck.Reference, tol float64) ColorCheck {
	r := colorcheck.Check(buf, band, ref, tol)
	return ColorCheck{Status: statusOf(r.Pass), Deviation: imaging.Round(r.Deviation, 2)}
}
