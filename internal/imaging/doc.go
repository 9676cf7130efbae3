// Package imaging provides the pixel-level plumbing for flag conformance checks.
//
// This package owns the PixelBuffer type consumed by the analysis pipeline,
// decoding of encoded images into buffers, a path-keyed buffer cache, regional
// colour statistics and the emblem mask preview. All operations use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. PixelBuffer values are never
// mutated by this module, so one buffer may be analysed by several goroutines.
//
// # Supported Formats
//
// PNG, JPEG and GIF through the standard library, BMP, TIFF and WebP through
// golang.org/x/image. EXIF orientation is honoured when decoding.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Zero-dimension images (ErrEmptyImage)
//   - Pixel slices shorter than the declared dimensions (ErrShortBuffer)
//   - Encoded data above the size limit (ErrImageTooLarge)
//   - File I/O and decode failures
package imaging
