package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func decodeResult(t *testing.T, res *ImageResult) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func rgb8(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestRenderOverlay(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	layout := FitLayout(100, 100, 100, 100, true)

	res, err := RenderOverlay(img, nil, layout, OverlayOptions{})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}
	if res.Width != 100 || res.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", res.Width, res.Height)
	}
	if res.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", res.MimeType)
	}

	out := decodeResult(t, res)
	if r, g, b := rgb8(out.At(50, 50)); r != 255 || g != 255 || b != 255 {
		t.Errorf("undimmed pixel: got (%d,%d,%d), want white", r, g, b)
	}
}

func TestRenderOverlay_Dim(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	layout := FitLayout(100, 100, 100, 100, true)

	res, err := RenderOverlay(img, nil, layout, OverlayOptions{Alpha: 50})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}

	// Half of white blended with (30,30,30).
	r, g, b := rgb8(decodeResult(t, res).At(50, 50))
	for _, v := range []uint8{r, g, b} {
		if v < 138 || v > 147 {
			t.Errorf("dimmed pixel: got (%d,%d,%d), want about 142", r, g, b)
			break
		}
	}
}

func TestRenderOverlay_Background(t *testing.T) {
	img := createInMemoryImage(200, 100, color.Black)
	layout := FitLayout(200, 100, 100, 100, true)

	res, err := RenderOverlay(img, nil, layout, OverlayOptions{})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}

	out := decodeResult(t, res)
	if r, _, _ := rgb8(out.At(50, 5)); r != canvasBackground.R {
		t.Errorf("letterbox pixel: got %d, want %d", r, canvasBackground.R)
	}
	if r, _, _ := rgb8(out.At(50, 50)); r != 0 {
		t.Errorf("image pixel: got %d, want 0", r)
	}
}

func TestRenderOverlay_Marks(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	layout := FitLayout(100, 100, 100, 100, true)
	marks := []Mark{{Label: "4", Rect: image.Rect(10, 40, 30, 70)}}

	res, err := RenderOverlay(img, marks, layout, OverlayOptions{
		ShowMarks:  true,
		BoxColor:   "#00FF00",
		LabelColor: "#0000FF",
	})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}
	out := decodeResult(t, res)

	if r, g, b := rgb8(out.At(10, 55)); r != 0 || g != 255 || b != 0 {
		t.Errorf("box edge: got (%d,%d,%d), want green", r, g, b)
	}
	if r, g, b := rgb8(out.At(20, 55)); r != 255 || g != 255 || b != 255 {
		t.Errorf("box interior: got (%d,%d,%d), want white", r, g, b)
	}

	label := false
	for y := 20; y < 40 && !label; y++ {
		for x := 10; x < 30; x++ {
			if r, g, b := rgb8(out.At(x, y)); r == 0 && g == 0 && b == 255 {
				label = true
				break
			}
		}
	}
	if !label {
		t.Error("expected label pixels above the box")
	}
}

func TestRenderOverlay_MarksHidden(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	layout := FitLayout(100, 100, 100, 100, true)
	marks := []Mark{{Label: "4", Rect: image.Rect(10, 40, 30, 70)}}

	res, err := RenderOverlay(img, marks, layout, OverlayOptions{BoxColor: "#00FF00"})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}
	if r, g, b := rgb8(decodeResult(t, res).At(10, 55)); r != 255 || g != 255 || b != 255 {
		t.Errorf("hidden box edge: got (%d,%d,%d), want white", r, g, b)
	}
}

func TestRenderOverlay_InvalidLayout(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)
	if _, err := RenderOverlay(img, nil, Layout{}, OverlayOptions{}); err == nil {
		t.Error("expected error for empty layout")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"#FFA500", color.NRGBA{255, 165, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"#FFF", color.NRGBA{}, true},
		{"#GG0000", color.NRGBA{}, true},
		{"#FF0000ZZ", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseHexColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHexColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseColorOr(t *testing.T) {
	fallback := color.NRGBA{1, 2, 3, 255}
	if got := parseColorOr("", fallback); got != fallback {
		t.Errorf("empty: got %v, want fallback", got)
	}
	if got := parseColorOr("junk", fallback); got != fallback {
		t.Errorf("invalid: got %v, want fallback", got)
	}
}
