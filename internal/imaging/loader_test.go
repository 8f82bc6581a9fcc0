package imaging

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createTestImage writes a solid PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "code.png")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, createInMemoryImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	path := createTestImage(t, 40, 20, color.RGBA{10, 20, 30, 255})
	l := NewLoader(time.Second)

	img, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader(time.Second)

	_, err := l.LoadFile(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLoader_LoadFile_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(path, []byte("4H 65 6C 6C 6F"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(time.Second)
	if _, err := l.LoadFile(path); err == nil {
		t.Error("expected decode error for non-image file")
	}
}

func TestLoader_LoadFile_Reloads(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	l := NewLoader(time.Second)

	if _, err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, createInMemoryImage(25, 10, color.Black)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("second LoadFile failed: %v", err)
	}
	if img.Bounds().Dx() != 25 {
		t.Errorf("width after rewrite: got %d, want 25", img.Bounds().Dx())
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadFile(path); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound after removal, got %v", err)
	}
}

func TestLoader_LoadFile_Concurrent(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	l := NewLoader(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.LoadFile(path); err != nil {
				t.Errorf("LoadFile failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestLoader_LoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/code.png":
			w.Header().Set("Content-Type", "image/png")
			png.Encode(w, createInMemoryImage(30, 15, color.Black))
		case "/text":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(5 * time.Second)

	t.Run("image", func(t *testing.T) {
		img, err := l.LoadURL(context.Background(), srv.URL+"/code.png")
		if err != nil {
			t.Fatalf("LoadURL failed: %v", err)
		}
		if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 15 {
			t.Errorf("dimensions: got %dx%d, want 30x15", img.Bounds().Dx(), img.Bounds().Dy())
		}
	})

	tests := []struct {
		name string
		url  string
	}{
		{"not found", srv.URL + "/missing.png"},
		{"not an image", srv.URL + "/text"},
		{"malformed", "://nope"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.LoadURL(context.Background(), tt.url)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("expected ErrInvalidURL, got %v", err)
			}
		})
	}
}

func TestLoader_LoadURL_Reloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1))
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, createInMemoryImage(10*n, 10, color.Black))
	}))

	l := NewLoader(5 * time.Second)
	for want := 10; want <= 20; want += 10 {
		img, err := l.LoadURL(context.Background(), srv.URL+"/code.png")
		if err != nil {
			t.Fatalf("LoadURL failed: %v", err)
		}
		if img.Bounds().Dx() != want {
			t.Errorf("width: got %d, want %d", img.Bounds().Dx(), want)
		}
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits: got %d, want 2", got)
	}

	srv.Close()
	if _, err := l.LoadURL(context.Background(), srv.URL+"/code.png"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL once the server is gone, got %v", err)
	}
}

func TestLoader_LoadURL_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		png.Encode(w, createInMemoryImage(5, 5, color.Black))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(time.Second)
	if _, err := l.LoadURL(ctx, srv.URL); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL for canceled request, got %v", err)
	}
}

func TestLoader_CaptureScreen(t *testing.T) {
	l := NewLoader(time.Second)

	var got image.Rectangle
	l.capture = func(r image.Rectangle) (*image.RGBA, error) {
		got = r
		return image.NewRGBA(r), nil
	}

	img, err := l.CaptureScreen(Region{X: 10, Y: 20, Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("CaptureScreen failed: %v", err)
	}
	if got != image.Rect(10, 20, 110, 70) {
		t.Errorf("captured rect: got %v, want (10,20)-(110,70)", got)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestLoader_CaptureScreen_Errors(t *testing.T) {
	l := NewLoader(time.Second)
	l.capture = func(r image.Rectangle) (*image.RGBA, error) {
		return nil, errors.New("no display")
	}

	if _, err := l.CaptureScreen(Region{Width: 0, Height: 10}); !errors.Is(err, ErrCapture) {
		t.Errorf("empty region: expected ErrCapture, got %v", err)
	}
	if _, err := l.CaptureScreen(Region{Width: 10, Height: 10}); !errors.Is(err, ErrCapture) {
		t.Errorf("failing capture: expected ErrCapture, got %v", err)
	}
}

func TestInfoFor(t *testing.T) {
	img := createInMemoryImage(200, 100, color.White)

	info := InfoFor(img, Source{Kind: SourceFile, Location: "/tmp/code.png"})
	if info.Width != 200 || info.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 200x100", info.Width, info.Height)
	}
	if info.AspectRatio != 2 {
		t.Errorf("AspectRatio: got %f, want 2", info.AspectRatio)
	}
	if info.Source.Kind != SourceFile {
		t.Errorf("Source.Kind: got %s, want file", info.Source.Kind)
	}
}
