package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
)

// MaskColor is the paint used for classified pixels in mask previews.
var MaskColor = color.NRGBA{R: 80, G: 120, B: 255, A: 180}

// MaskResult contains the mask preview encoded as base64 PNG
type MaskResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PixelCount  int    `json:"pixel_count"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// MaskImage builds a transparent image the size of buf where every pixel in
// region accepted by keep is painted with MaskColor. It also returns how many
// pixels were painted.
func MaskImage(buf *PixelBuffer, region Region, keep func(RGBColor) bool) (*image.NRGBA, int) {
	mask := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	region = region.Clip(buf)

	count := 0
	for y := region.Y1; y < region.Y2; y++ {
		for x := region.X1; x < region.X2; x++ {
			if keep(buf.RGB(x, y)) {
				mask.SetNRGBA(x, y, MaskColor)
				count++
			}
		}
	}
	return mask, count
}

// RenderMask paints the classified pixels of region over the source image and
// returns the composite as a PNG.
//
// Parameters:
//   - buf: Source pixels.
//   - region: Area to classify, normally the middle band.
//   - keep: Pixel predicate, normally the emblem hue classifier.
//   - scale: Output scale factor. Values other than 1 (and > 0) resize with Lanczos.
func RenderMask(buf *PixelBuffer, region Region, keep func(RGBColor) bool, scale float64) (*MaskResult, error) {
	mask, count := MaskImage(buf, region, keep)

	var out image.Image = blend.Normal(buf.Image(), mask)
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(buf.Width) * scale)
		newHeight := int(float64(buf.Height) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f collapses %dx%d image", scale, buf.Width, buf.Height)
		}
		out = imaging.Resize(out, newWidth, newHeight, imaging.Lanczos)
	}

	var enc bytes.Buffer
	if err := png.Encode(&enc, out); err != nil {
		return nil, fmt.Errorf("failed to encode mask image: %w", err)
	}

	return &MaskResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		PixelCount:  count,
		ImageBase64: base64.StdEncoding.EncodeToString(enc.Bytes()),
		MimeType:    "image/png",
	}, nil
}
