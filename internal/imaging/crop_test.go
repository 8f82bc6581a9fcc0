package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCropRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	cropped, err := CropRegion(img, 50, 0, 100, 50)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}

	if cropped.Bounds() != image.Rect(50, 0, 100, 50) {
		t.Errorf("bounds: got %v, want (50,0)-(100,50)", cropped.Bounds())
	}

	// Top-right quadrant is green and keeps its original coordinates.
	if r, g, b := rgb8(cropped.At(60, 10)); r != 0 || g != 255 || b != 0 {
		t.Errorf("pixel at (60,10): got (%d,%d,%d), want green", r, g, b)
	}
}

func TestCropRegion_Invalid(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"outside right", 50, 0, 101, 50},
		{"negative", -1, 0, 50, 50},
		{"inverted", 60, 0, 50, 50},
		{"empty", 10, 10, 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropRegion(img, tt.x1, tt.y1, tt.x2, tt.y2); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	res, err := EncodePNG(createInMemoryImage(12, 8, color.Black))
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if res.Width != 12 || res.Height != 8 {
		t.Errorf("dimensions: got %dx%d, want 12x8", res.Width, res.Height)
	}

	out := decodeResult(t, res)
	if out.Bounds().Dx() != 12 {
		t.Errorf("decoded width: got %d, want 12", out.Bounds().Dx())
	}
}
