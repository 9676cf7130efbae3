package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

var (
	// ErrEmptyImage is returned for buffers or images with a zero dimension.
	ErrEmptyImage = errors.New("image has zero width or height")

	// ErrShortBuffer is returned when the pixel slice is smaller than width*height*4.
	ErrShortBuffer = errors.New("pixel buffer shorter than width*height*4")
)

// PixelBuffer is an immutable W×H grid of 8-bit RGBA pixels.
//
// Pixels are stored row-major with a stride of 4*Width bytes and the origin at
// the top-left corner, the same layout as image.NRGBA with a zero origin.
// The analysis pipeline never writes to Pix; the caller owns it for the
// lifetime of a validation run.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer wraps a raw RGBA slice.
//
// Returns ErrEmptyImage when either dimension is not positive and
// ErrShortBuffer when pix does not hold width*height pixels.
func NewPixelBuffer(width, height int, pix []uint8) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("new pixel buffer %dx%d: %w", width, height, ErrEmptyImage)
	}
	if len(pix) < width*height*4 {
		return nil, fmt.Errorf("new pixel buffer %dx%d with %d bytes: %w", width, height, len(pix), ErrShortBuffer)
	}
	return &PixelBuffer{Width: width, Height: height, Pix: pix}, nil
}

// FromImage converts any image.Image into a PixelBuffer.
//
// The image is cloned into non-premultiplied RGBA so that decoded JPEG
// (YCbCr), paletted GIF and 16-bit PNG sources all share one layout. Bounds
// that do not start at (0,0) are translated to the origin.
func FromImage(img image.Image) (*PixelBuffer, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("convert image: %w", ErrEmptyImage)
	}

	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	if nrgba.Stride == w*4 {
		return NewPixelBuffer(w, h, nrgba.Pix)
	}

	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		copy(pix[y*w*4:(y+1)*w*4], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
	}
	return NewPixelBuffer(w, h, pix)
}

// In reports whether (x, y) lies inside the buffer.
func (b *PixelBuffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// At returns the pixel at (x, y). The caller must check bounds with In.
func (b *PixelBuffer) At(x, y int) (r, g, bl, a uint8) {
	i := (y*b.Width + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// RGB returns the colour channels at (x, y) without alpha.
func (b *PixelBuffer) RGB(x, y int) RGBColor {
	i := (y*b.Width + x) * 4
	return RGBColor{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

// Bounds returns the full-image region.
func (b *PixelBuffer) Bounds() Region {
	return Region{X1: 0, Y1: 0, X2: b.Width, Y2: b.Height}
}

// Image exposes the buffer as an *image.NRGBA sharing the same pixels.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
