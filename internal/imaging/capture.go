package imaging

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Region is a rectangle of the virtual screen.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate rejects empty or negative regions.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	return nil
}

// Rect returns the region as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// PrimaryDisplay returns the bounds of display 0.
func PrimaryDisplay() (Region, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return Region{}, fmt.Errorf("%w: no active displays found", ErrCapture)
	}
	b := screenshot.GetDisplayBounds(0)
	return Region{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, nil
}

func captureRect(rect image.Rectangle) (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	return screenshot.CaptureRect(rect)
}
