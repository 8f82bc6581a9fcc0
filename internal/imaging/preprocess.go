package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// PreprocessOptions controls the clean-up applied before OCR.
type PreprocessOptions struct {
	// Grayscale drops colour information.
	Grayscale bool

	// Contrast adjusts contrast in the range -1..1; 0 leaves it unchanged.
	Contrast float64

	// Sharpen applies a 3x3 sharpening kernel.
	Sharpen bool

	// Threshold binarizes at the given level when non-zero.
	Threshold uint8

	// Scale resizes the image by this factor when it is not 0 or 1.
	// Box coordinates from OCR must be divided by the same factor.
	Scale float64
}

// DefaultPreprocess is tuned for dark code text on light backgrounds.
var DefaultPreprocess = PreprocessOptions{
	Grayscale: true,
	Contrast:  0.2,
	Sharpen:   true,
	Scale:     1,
}

// Preprocess returns a cleaned-up copy of img. The input is not modified.
func Preprocess(img image.Image, opts PreprocessOptions) image.Image {
	out := img

	if opts.Scale > 0 && opts.Scale != 1 {
		w := int(float64(out.Bounds().Dx()) * opts.Scale)
		h := int(float64(out.Bounds().Dy()) * opts.Scale)
		if w > 0 && h > 0 {
			out = imaging.Resize(out, w, h, imaging.Lanczos)
		}
	}
	if opts.Grayscale {
		out = effect.Grayscale(out)
	}
	if opts.Contrast != 0 {
		out = adjust.Contrast(out, opts.Contrast)
	}
	if opts.Sharpen {
		out = effect.Sharpen(out)
	}
	if opts.Threshold > 0 {
		out = segment.Threshold(out, opts.Threshold)
	}
	return out
}
