package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxImageBytes is the upload limit applied when none is configured.
const DefaultMaxImageBytes = 5 * 1024 * 1024

var (
	// ErrImageTooLarge is returned when encoded image data exceeds the size limit.
	ErrImageTooLarge = errors.New("image exceeds maximum size")

	// ErrUnsupportedImage is returned when bytes cannot be decoded as an image.
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
)

// Decode decodes encoded image bytes into a PixelBuffer.
//
// Parameters:
//   - data: Encoded PNG, JPEG, GIF, BMP, TIFF or WebP bytes.
//   - maxBytes: Upper bound on len(data). Zero or negative uses DefaultMaxImageBytes.
//
// EXIF orientation is applied so that phone photographs are analysed upright.
//
// # Errors
//
//   - ErrImageTooLarge if data exceeds maxBytes
//   - ErrUnsupportedImage if the bytes are not a supported image
//   - ErrEmptyImage if the decoded image has a zero dimension
func Decode(data []byte, maxBytes int) (*PixelBuffer, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if len(data) > maxBytes {
		return nil, fmt.Errorf("%d bytes (limit %d): %w", len(data), maxBytes, ErrImageTooLarge)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return FromImage(img)
}

// ImageCache provides thread-safe caching of decoded pixel buffers keyed by path.
//
// Once an image is loaded, subsequent Load() calls for the same path return the
// cached buffer without disk I/O. Buffers are treated as immutable, so sharing
// them between concurrent validation runs is safe.
//
// # Memory Management
//
// Cached buffers remain in memory until explicitly removed via Evict() or Clear().
type ImageCache struct {
	mu       sync.RWMutex
	maxBytes int
	images   map[string]*PixelBuffer
}

// NewImageCache creates an empty cache. maxBytes bounds the size of any file
// it will decode; zero or negative uses DefaultMaxImageBytes.
func NewImageCache(maxBytes int) *ImageCache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageCache{
		maxBytes: maxBytes,
		images:   make(map[string]*PixelBuffer),
	}
}

// Load retrieves a buffer from the cache or reads and decodes the file.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
func (c *ImageCache) Load(path string) (*PixelBuffer, error) {
	c.mu.RLock()
	if buf, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return buf, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	buf, err := Decode(data, c.maxBytes)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = buf
	c.mu.Unlock()

	return buf, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*PixelBuffer)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format name reported by the decoder: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp".
	Format string `json:"format"`

	// AspectRatio is Width/Height rounded to four decimals.
	AspectRatio float64 `json:"aspect_ratio"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo reads the header of an image file and returns its metadata.
//
// Only the header is decoded, so this is cheap even for large files and does
// not populate the cache.
func LoadImageInfo(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image header: %w", ErrEmptyImage)
	}

	return &ImageInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		AspectRatio:   Round(float64(cfg.Width)/float64(cfg.Height), 4),
		FileSizeBytes: stat.Size(),
	}, nil
}
