// Package overlay draws the geometry behind a validation report as SVG:
// band boundaries, the expected and detected emblem, the sampled annulus and
// one ray per detected spoke.
package overlay

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// Styles used for each layer.
const (
	styleBand     = "fill:none;stroke:#444;stroke-width:1;stroke-dasharray:6,4"
	styleExpected = "fill:none;stroke:#0a0;stroke-width:1;stroke-dasharray:3,3"
	styleEmblem   = "fill:none;stroke:#d00;stroke-width:2"
	styleAnnulus  = "fill:none;stroke:#f80;stroke-width:1"
	styleSpoke    = "stroke:#d00;stroke-width:1"
	styleCross    = "stroke:#0a0;stroke-width:1"
	styleLabel    = "font-family:monospace;font-size:12px;fill:#000"
)

// Options controls what is drawn besides the geometry itself.
type Options struct {
	Width, Height int

	// Config supplies the expected diameter and annulus fractions.
	Config config.Config

	// Background, when set, is a data URI or URL drawn beneath the overlay.
	Background string

	// Labels adds the per-check verdicts as text.
	Labels bool
}

// Render writes an SVG document for res to w.
func Render(w io.Writer, res *validate.Result, opts Options) error {
	if res == nil {
		return fmt.Errorf("overlay: nil result")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("overlay: %w", imaging.ErrEmptyImage)
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Title("flag validation overlay")

	if opts.Background != "" {
		canvas.Image(0, 0, opts.Width, opts.Height, opts.Background)
	}

	canvas.Gid("bands")
	for _, band := range []imaging.Region{res.Layout.Top, res.Layout.Middle, res.Layout.Bottom} {
		canvas.Rect(band.X1, band.Y1, band.Width(), band.Height(), styleBand)
	}
	canvas.Gend()

	ideal := res.Layout.MiddleCenter()
	ix, iy := px(ideal.X), px(ideal.Y)
	canvas.Gid("expected")
	canvas.Line(ix-8, iy, ix+8, iy, styleCross)
	canvas.Line(ix, iy-8, ix, iy+8, styleCross)
	expectedR := opts.Config.EmblemDiameterFraction * float64(res.Layout.Middle.Height()) / 2
	if expectedR > 0 {
		canvas.Circle(ix, iy, px(expectedR), styleExpected)
	}
	canvas.Gend()

	if e := res.Emblem; e != nil {
		cx, cy := px(e.Center.X), px(e.Center.Y)
		canvas.Gid("emblem")
		canvas.Circle(cx, cy, px(e.Radius), styleEmblem)
		canvas.Circle(cx, cy, 2, "fill:#d00")
		canvas.Gend()

		canvas.Gid("annulus")
		canvas.Circle(cx, cy, px(e.Radius*opts.Config.AnnulusInner), styleAnnulus)
		canvas.Circle(cx, cy, px(e.Radius*opts.Config.AnnulusOuter), styleAnnulus)
		canvas.Gend()

		if res.Spokes != nil {
			canvas.Gid("spokes")
			for _, deg := range res.Spokes.Angles {
				a := deg * math.Pi / 180
				x := e.Center.X + e.Radius*math.Cos(a)
				y := e.Center.Y + e.Radius*math.Sin(a)
				canvas.Line(cx, cy, px(x), px(y), `class="spoke"`, styleSpoke)
			}
			canvas.Gend()
		}
	}

	if opts.Labels {
		drawLabels(canvas, res.Report)
	}

	canvas.End()
	_, err := w.Write(buf.Bytes())
	return err
}

func drawLabels(canvas *svg.SVG, rep validate.Report) {
	lines := []string{
		fmt.Sprintf("aspect %s (%.4f)", rep.AspectRatio.Status, rep.AspectRatio.Actual),
		fmt.Sprintf("stripes %s", rep.StripeProportion.Status),
		fmt.Sprintf("saffron %s  white %s  green %s",
			rep.Colors.Saffron.Status, rep.Colors.White.Status, rep.Colors.Green.Status),
		fmt.Sprintf("position %s  size %s", rep.ChakraPosition.Status, rep.ChakraSize.Status),
		fmt.Sprintf("spokes %s (%d)", rep.ChakraSpokes.Status, rep.ChakraSpokes.Detected),
	}
	canvas.Gid("labels")
	for i, l := range lines {
		canvas.Text(6, 16+14*i, l, styleLabel)
	}
	canvas.Gend()
}

func px(v float64) int {
	return int(math.Floor(v + 0.5))
}
