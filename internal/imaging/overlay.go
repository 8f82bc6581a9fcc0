package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Mark is a labelled rectangle in source image coordinates (top-left origin).
type Mark struct {
	Label string
	Rect  image.Rectangle
}

// OverlayOptions controls RenderOverlay.
type OverlayOptions struct {
	// Alpha dims the image with a dark overlay, 0-100 percent.
	Alpha int

	// ShowMarks draws each mark's rectangle and label.
	ShowMarks bool

	// BoxColor and LabelColor are "#RRGGBB" or "#RRGGBBAA".
	BoxColor   string
	LabelColor string
}

// ImageResult is a rendered image encoded as base64 PNG.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

var (
	canvasBackground = color.NRGBA{R: 190, G: 190, B: 190, A: 255}
	dimColor         = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	defaultBoxColor  = color.NRGBA{R: 255, A: 255}
	defaultLabel     = color.NRGBA{R: 255, G: 165, A: 255}
)

// RenderOverlay draws img into a canvas laid out by layout, optionally dims
// it and outlines every mark with its label above the box.
func RenderOverlay(img image.Image, marks []Mark, layout Layout, opts OverlayOptions) (*ImageResult, error) {
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("invalid layout %dx%d", layout.Width, layout.Height)
	}

	shown := imaging.Resize(img, layout.Width, layout.Height, imaging.Lanczos)
	if opts.Alpha > 0 {
		alpha := float64(clamp(opts.Alpha, 0, 100)) / 100
		shade := imaging.New(layout.Width, layout.Height, dimColor)
		shown = imaging.Overlay(shown, shade, image.Pt(0, 0), alpha)
	}

	canvas := imaging.New(layout.CanvasWidth, layout.CanvasHeight, canvasBackground)
	canvas = imaging.Paste(canvas, shown, image.Pt(layout.OffsetX, layout.OffsetY))

	if opts.ShowMarks {
		boxColor := parseColorOr(opts.BoxColor, defaultBoxColor)
		labelColor := parseColorOr(opts.LabelColor, defaultLabel)
		origin := img.Bounds().Min

		for _, m := range marks {
			r := m.Rect.Sub(origin)
			scaled := image.Rect(
				layout.OffsetX+int(float64(r.Min.X)*layout.Scale),
				layout.OffsetY+int(float64(r.Min.Y)*layout.Scale),
				layout.OffsetX+int(float64(r.Max.X)*layout.Scale),
				layout.OffsetY+int(float64(r.Max.Y)*layout.Scale),
			)
			drawRect(canvas, scaled, boxColor)
			drawLabel(canvas, scaled, m.Label, labelColor)
		}
	}

	return EncodePNG(canvas)
}

// parseHexColor parses "#RRGGBB" or "#RRGGBBAA".
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) > 0 && hex[0] != '#' {
		hex = "#" + hex
	}

	var a uint8 = 255
	switch len(hex) {
	case 7:
	case 9:
		v, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		a = uint8(v)
		hex = hex[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func parseColorOr(hex string, fallback color.NRGBA) color.NRGBA {
	if hex == "" {
		return fallback
	}
	c, err := parseHexColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

// drawRect outlines r, clipped to the canvas.
func drawRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	b := img.Bounds()
	set := func(x, y int) {
		if image.Pt(x, y).In(b) {
			img.Set(x, y, blend(img.NRGBAAt(x, y), c))
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y-1)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X-1, y)
	}
}

// drawLabel writes text centred horizontally just above r.
func drawLabel(img *image.NRGBA, r image.Rectangle, text string, c color.NRGBA) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}

	width := d.MeasureString(text).Ceil()
	x := r.Min.X + (r.Dx()-width)/2
	y := r.Min.Y - 2
	if y-face.Ascent < 0 {
		y = r.Max.Y + face.Ascent + 1
	}
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(text)
}

// blend mixes a translucent colour over dst using go-colorful's RGB blend.
func blend(dst, src color.NRGBA) color.NRGBA {
	if src.A == 255 {
		return src
	}
	under, _ := colorful.MakeColor(dst)
	over, _ := colorful.MakeColor(color.NRGBA{R: src.R, G: src.G, B: src.B, A: 255})
	r, g, b := under.BlendRgb(over, float64(src.A)/255).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
