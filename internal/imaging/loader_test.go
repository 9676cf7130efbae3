package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/bmp"
)

// createTestImage writes a uniform PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
	if err := os.WriteFile(path, encodePNG(t, createInMemoryImage(width, height, c)), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(30, 20, color.RGBA{255, 153, 51, 255}))

	buf, err := Decode(data, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buf.Width != 30 || buf.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", buf.Width, buf.Height)
	}
	if c := buf.RGB(15, 10); c != (RGBColor{255, 153, 51}) {
		t.Errorf("pixel: got %+v", c)
	}
}

func TestDecode_OtherFormats(t *testing.T) {
	img := createInMemoryImage(16, 8, color.RGBA{0, 0, 128, 255})

	var jp bytes.Buffer
	if err := jpeg.Encode(&jp, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	var bm bytes.Buffer
	if err := bmp.Encode(&bm, img); err != nil {
		t.Fatal(err)
	}

	for name, data := range map[string][]byte{"jpeg": jp.Bytes(), "bmp": bm.Bytes()} {
		buf, err := Decode(data, 0)
		if err != nil {
			t.Errorf("%s: Decode failed: %v", name, err)
			continue
		}
		if buf.Width != 16 || buf.Height != 8 {
			t.Errorf("%s: got %dx%d", name, buf.Width, buf.Height)
		}
	}
}

func TestDecode_TooLarge(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(30, 20, color.White))

	_, err := Decode(data, len(data)-1)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("got %v, want ErrImageTooLarge", err)
	}
	if _, err := Decode(data, len(data)); err != nil {
		t.Errorf("data at the limit should decode: %v", err)
	}
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := Decode([]byte("this is not an image"), 0)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("got %v, want ErrUnsupportedImage", err)
	}
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache(0)
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
	if cache.maxBytes != DefaultMaxImageBytes {
		t.Errorf("maxBytes: got %d, want default", cache.maxBytes)
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache(0)
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	// First load
	buf1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if buf1.Width != 100 || buf1.Height != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", buf1.Width, buf1.Height)
	}

	// Second load should return cached buffer
	buf2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if buf1 != buf2 {
		t.Error("second Load did not return cached buffer")
	}
}

func TestImageCache_Load_Errors(t *testing.T) {
	cache := NewImageCache(0)

	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(bad); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("invalid image: got %v, want ErrUnsupportedImage", err)
	}

	big := createTestImage(t, 200, 200, color.RGBA{1, 2, 3, 255})
	st, err := os.Stat(big)
	if err != nil {
		t.Fatal(err)
	}
	small := NewImageCache(int(st.Size()) - 1)
	if _, err := small.Load(big); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("oversized image: got %v, want ErrImageTooLarge", err)
	}
	if cache.Len() != 0 || small.Len() != 0 {
		t.Errorf("failed loads should not be cached")
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache(0)
	a := createTestImage(t, 10, 10, color.Black)
	b := createTestImage(t, 12, 12, color.White)

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	if cache.Len() != 2 {
		t.Fatalf("len: got %d, want 2", cache.Len())
	}

	cache.Evict(a)
	cache.Evict("/never/loaded.png")
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache(0)
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent load error: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("len: got %d, want 1", cache.Len())
	}
}

func TestLoadImageInfo(t *testing.T) {
	imgPath := createTestImage(t, 300, 200, color.RGBA{128, 128, 128, 255})

	info, err := LoadImageInfo(imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 300 || info.Height != 200 {
		t.Errorf("dimensions: got %dx%d, want 300x200", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.AspectRatio != 1.5 {
		t.Errorf("AspectRatio: got %v, want 1.5", info.AspectRatio)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes: got %d, want > 0", info.FileSizeBytes)
	}
}

func TestLoadImageInfo_Errors(t *testing.T) {
	if _, err := LoadImageInfo("/nonexistent/image.png"); err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImageInfo(bad); err == nil {
		t.Error("LoadImageInfo should fail for undecodable header")
	}
}
