package imaging

import (
	"fmt"
	"math"
	"sync"
)

// Layout places an image inside a canvas.
type Layout struct {
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`

	// Width and Height are the displayed image size.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Scale converts source pixels to displayed pixels.
	Scale float64 `json:"scale"`

	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
}

// Viewport fits an image to a canvas and keeps the layout stable across
// small canvas changes.
//
// The layout is recomputed when a new image is set or when either canvas
// dimension moves by more than Threshold pixels since the last layout.
type Viewport struct {
	// Threshold is the resize threshold in pixels.
	Threshold int

	// Center places the image in the middle of the canvas instead of the
	// top-left corner.
	Center bool

	mu       sync.Mutex
	layout   Layout
	imgW     int
	imgH     int
	newImage bool
}

// NewViewport returns a viewport with the given threshold and centering.
func NewViewport(threshold int, center bool) *Viewport {
	return &Viewport{Threshold: threshold, Center: center, newImage: true}
}

// SetImage records the source size of a new image and forces the next Fit
// to lay it out again.
func (v *Viewport) SetImage(width, height int) {
	v.mu.Lock()
	v.imgW, v.imgH = width, height
	v.newImage = true
	v.mu.Unlock()
}

// Configure updates the threshold and centering. A change in centering
// forces the next Fit to lay the image out again.
func (v *Viewport) Configure(threshold int, center bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if center != v.Center {
		v.newImage = true
	}
	v.Threshold, v.Center = threshold, center
}

// Fit returns the layout for a canvas of the given size and reports whether
// it was recomputed.
func (v *Viewport) Fit(canvasWidth, canvasHeight int) (Layout, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.imgW <= 0 || v.imgH <= 0 {
		return Layout{}, false, fmt.Errorf("no image in viewport")
	}
	if canvasWidth <= 0 || canvasHeight <= 0 {
		return Layout{}, false, fmt.Errorf("invalid canvas size %dx%d", canvasWidth, canvasHeight)
	}

	if !v.newImage &&
		abs(v.layout.CanvasWidth-canvasWidth) <= v.Threshold &&
		abs(v.layout.CanvasHeight-canvasHeight) <= v.Threshold {
		return v.layout, false, nil
	}

	v.layout = FitLayout(v.imgW, v.imgH, canvasWidth, canvasHeight, v.Center)
	v.newImage = false
	return v.layout, true, nil
}

// FitLayout scales an image of imgW x imgH to fill as much of the canvas as
// possible without changing its aspect ratio.
func FitLayout(imgW, imgH, canvasW, canvasH int, center bool) Layout {
	aspect := float64(imgW) / float64(imgH)
	l := Layout{CanvasWidth: canvasW, CanvasHeight: canvasH}

	if aspect < float64(canvasW)/float64(canvasH) {
		l.Width, l.Height = int(math.Round(float64(canvasH)*aspect)), canvasH
	} else {
		l.Width, l.Height = canvasW, int(math.Round(float64(canvasW)/aspect))
	}
	if l.Width < 1 {
		l.Width = 1
	}
	if l.Height < 1 {
		l.Height = 1
	}

	l.Scale = float64(l.Width) / float64(imgW)
	if center {
		l.OffsetX = (canvasW - l.Width) / 2
		l.OffsetY = (canvasH - l.Height) / 2
	}
	return l
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
