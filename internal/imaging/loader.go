package imaging

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// maxDownloadBytes caps the size of an image fetched from a URL.
const maxDownloadBytes = 32 << 20

var (
	// ErrInvalidURL covers unreachable URLs, non-2xx responses and bodies
	// that are not images.
	ErrInvalidURL = errors.New("invalid image URL")

	// ErrFileNotFound is returned when a local image path does not exist.
	ErrFileNotFound = errors.New("did not find specified local image")

	// ErrCapture is returned when a screen region cannot be captured.
	ErrCapture = errors.New("screen capture failed")
)

// SourceKind identifies where an image came from.
type SourceKind string

const (
	SourceURL    SourceKind = "url"
	SourceFile   SourceKind = "file"
	SourceScreen SourceKind = "screen"
)

// Source describes an acquired image.
type Source struct {
	Kind     SourceKind `json:"kind"`
	Location string     `json:"location"`
}

// ImageInfo contains metadata about an acquired image.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Source Source `json:"source"`

	// AspectRatio is width divided by height.
	AspectRatio float64 `json:"aspect_ratio"`
}

// InfoFor describes img as acquired from src.
func InfoFor(img image.Image, src Source) *ImageInfo {
	b := img.Bounds()
	info := &ImageInfo{Width: b.Dx(), Height: b.Dy(), Source: src}
	if b.Dy() > 0 {
		info.AspectRatio = float64(b.Dx()) / float64(b.Dy())
	}
	return info
}

// Loader acquires images from files, URLs and the screen.
//
// Every load reads the source again: a challenge URL may serve a fresh
// code on each request and a file may change on disk. Loader is safe for
// concurrent use.
type Loader struct {
	client  *http.Client
	capture func(image.Rectangle) (*image.RGBA, error)
}

// NewLoader creates a loader whose HTTP requests time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		client:  &http.Client{Timeout: timeout},
		capture: captureRect,
	}
}

// LoadFile decodes the image at path.
//
// Supported formats are those registered by disintegration/imaging: PNG,
// JPEG, GIF, TIFF and BMP. JPEG EXIF orientation is applied.
func (l *Loader) LoadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

// LoadURL downloads and decodes the image at rawURL.
func (l *Loader) LoadURL(ctx context.Context, rawURL string) (image.Image, error) {
	rawURL = strings.TrimSpace(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrInvalidURL, rawURL, resp.Status)
	}

	img, err := imaging.Decode(io.LimitReader(resp.Body, maxDownloadBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrInvalidURL, err)
	}

	return img, nil
}

// CaptureScreen grabs region from the screen.
func (l *Loader) CaptureScreen(region Region) (image.Image, error) {
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	img, err := l.capture(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return img, nil
}
